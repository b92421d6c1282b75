package models

// Interaction names an edge list collected from one kind of activity.
// Graphs for different interactions are never merged.
type Interaction string

const (
	Mentions Interaction = "mentions"
	Replies  Interaction = "replies"
	Retweets Interaction = "retweets"
)

// Edge is one observed interaction from StartNode to EndNode.
type Edge struct {
	StartNode string `json:"start_node"`
	EndNode   string `json:"end_node"`
}

// ClusterRecord is the per-cluster evaluation row.
type ClusterRecord struct {
	Method                string  `json:"method"`
	Cluster               int     `json:"cluster"`
	Size                  int     `json:"size"`
	Conductance           float64 `json:"conductance"`
	ClusteringCoefficient float64 `json:"clustering_coefficient"`
	PercentCelebrities    float64 `json:"percent_celebrities"`
	PercentMedia          float64 `json:"percent_media"`
	PercentPoliticians    float64 `json:"percent_politicians"`
	CountCelebrities      int     `json:"count_celebrities"`
	CountMedia            int     `json:"count_media"`
	CountPoliticians      int     `json:"count_politicians"`
	PercentOthers         float64 `json:"percent_others"`
	CountOthers           int     `json:"count_others"`
}

// SummaryRecord is the whole-partition evaluation row.
type SummaryRecord struct {
	Method         string  `json:"method"`
	NumClusters    int     `json:"num_clusters"`
	AvgMaxPercent  float64 `json:"avg_max_percent"`
	AvgMinPercent  float64 `json:"avg_min_percent"`
	AvgConductance float64 `json:"avg_conductance"`
	Homogeneity    float64 `json:"homogeneity"`
	Completeness   float64 `json:"completeness"`
	VMeasure       float64 `json:"v_measure"`
}

// LabeledRow is one node of a partition enriched with its category and profile.
type LabeledRow struct {
	User        string `json:"user"`
	Partition   string `json:"partition"`
	Type        string `json:"type"`
	Affiliation string `json:"affiliation,omitempty"`
	Description string `json:"description,omitempty"`
	Followers   int64  `json:"followers"`
}

// Score is a per-node centrality value.
type Score struct {
	Node  string  `json:"node"`
	Value float64 `json:"value"`
}

// Combination identifies one unit of work in a clustering sweep.
type Combination struct {
	Interaction Interaction `json:"interaction" yaml:"interaction"`
	Method      string      `json:"method" yaml:"method"`
	View        string      `json:"view,omitempty" yaml:"view,omitempty"`
	K           int         `json:"k,omitempty" yaml:"k,omitempty"`
}
