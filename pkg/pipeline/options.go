package pipeline

import (
	"fmt"

	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
	"github.com/gilchrisn/interaction-clustering/pkg/transform"
)

// Selection picks which edges survive the category subgraph step.
type Selection string

const (
	// EdgesInto keeps edges whose target is in the universe.
	EdgesInto Selection = "edges_into"
	// EdgesFrom keeps edges whose source is in the universe.
	EdgesFrom Selection = "edges_from"
)

// Options configures one sweep.
type Options struct {
	Interactions  []models.Interaction `yaml:"interactions" json:"interactions"`
	Methods       []string             `yaml:"methods" json:"methods"`
	Views         []string             `yaml:"views" json:"views"`
	ClusterCounts []int                `yaml:"cluster_counts" json:"cluster_counts"`
	Workers       int                  `yaml:"workers" json:"workers"`
	Seed          int64                `yaml:"random_seed" json:"random_seed"`
	Selection     Selection            `yaml:"selection" json:"selection"`
	// MinInDegree drops universe nodes with fewer distinct in-neighbors in
	// the full interaction graph. 0 disables the filter.
	MinInDegree int `yaml:"min_indegree" json:"min_indegree"`
	// SampleFraction keeps this fraction of the raw edge list. 1 keeps all.
	SampleFraction float64           `yaml:"sample_fraction" json:"sample_fraction"`
	Transform      transform.Options `yaml:"transform" json:"transform"`
	// WeightedConductance makes conductance use edge weights.
	WeightedConductance bool `yaml:"weighted_conductance" json:"weighted_conductance"`
	// OutputDir receives manifest.yaml. Empty skips the manifest.
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// DefaultOptions sweeps every interaction with all three methods over the
// eight base views and k in {2, 3, 4}.
func DefaultOptions() Options {
	return Options{
		Interactions:        []models.Interaction{models.Mentions, models.Replies, models.Retweets},
		Methods:             []string{clustering.MethodLouvain, clustering.MethodSpectral, clustering.MethodFuzzy},
		Views:               append([]string(nil), transform.DefaultViews...),
		ClusterCounts:       []int{2, 3, 4},
		Workers:             4,
		Seed:                42,
		Selection:           EdgesInto,
		SampleFraction:      1,
		Transform:           transform.DefaultOptions(),
		WeightedConductance: true,
	}
}

// Validate checks the options and returns every problem found.
func (o Options) Validate() error {
	var errs models.ValidationErrors
	if len(o.Interactions) == 0 {
		errs = append(errs, models.ValidationError{Field: "interactions", Message: "at least one interaction is required"})
	}
	if len(o.Methods) == 0 {
		errs = append(errs, models.ValidationError{Field: "methods", Message: "at least one method is required"})
	}
	for _, v := range o.Views {
		if _, err := transform.Lookup(v); err != nil {
			errs = append(errs, models.ValidationError{Field: "views", Message: "unknown view", Value: v})
		}
	}
	for _, k := range o.ClusterCounts {
		if k < 1 {
			errs = append(errs, models.ValidationError{Field: "cluster_counts", Message: "must be positive", Value: fmt.Sprint(k)})
		}
	}
	if o.Workers < 1 {
		errs = append(errs, models.ValidationError{Field: "workers", Message: "must be at least 1", Value: fmt.Sprint(o.Workers)})
	}
	if o.Selection != EdgesInto && o.Selection != EdgesFrom {
		errs = append(errs, models.ValidationError{Field: "selection", Message: "must be edges_into or edges_from", Value: string(o.Selection)})
	}
	if o.MinInDegree < 0 {
		errs = append(errs, models.ValidationError{Field: "min_indegree", Message: "must not be negative", Value: fmt.Sprint(o.MinInDegree)})
	}
	if o.SampleFraction <= 0 || o.SampleFraction > 1 {
		errs = append(errs, models.ValidationError{Field: "sample_fraction", Message: "must be in (0, 1]", Value: fmt.Sprint(o.SampleFraction)})
	}
	if o.Transform.ZeroDegree != transform.Isolate && o.Transform.ZeroDegree != transform.Fail {
		errs = append(errs, models.ValidationError{Field: "transform.zero_degree", Message: "must be isolate or fail", Value: string(o.Transform.ZeroDegree)})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RunName names the outputs of one combination.
func RunName(c models.Combination) string {
	if c.Method == clustering.MethodLouvain {
		return fmt.Sprintf("community_%s", c.Interaction)
	}
	return fmt.Sprintf("%s_%s_%dclusters_%s", c.Method, c.Interaction, c.K, c.View)
}
