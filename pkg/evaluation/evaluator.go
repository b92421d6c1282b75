package evaluation

import (
	"fmt"
	"strconv"

	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// Sink receives evaluation rows as soon as they are computed.
type Sink interface {
	AppendCluster(models.ClusterRecord) error
	AppendSummary(models.SummaryRecord) error
}

// Report is everything Evaluate produced for one partition.
type Report struct {
	Clusters []models.ClusterRecord
	Summary  models.SummaryRecord
}

// Evaluator scores partitions against the category ground truth.
type Evaluator struct {
	Categories labeling.Categories
	// Weighted makes conductance use edge weights.
	Weighted bool
	Sink     Sink
}

// NewEvaluator creates an evaluator writing to sink. sink may be nil.
func NewEvaluator(cats labeling.Categories, weighted bool, sink Sink) *Evaluator {
	return &Evaluator{Categories: cats, Weighted: weighted, Sink: sink}
}

// Evaluate scores assignment over g under the run name method. Clusters are
// visited in label order; only assigned nodes present in g are evaluated.
// Each cluster row is appended to the sink before the next is computed and
// the summary row last.
func (e *Evaluator) Evaluate(method string, g *graph.Graph, assignment clustering.Assignment) (*Report, error) {
	nodes := g.Nodes()
	clusters := assignment.Clusters(nodes)
	labels := assignment.Labels()

	report := &Report{Clusters: make([]models.ClusterRecord, 0, len(labels))}
	var (
		assigned       int
		maxSum, minSum float64
		condSum        float64
		classes, preds []string
	)

	for _, label := range labels {
		members := clusters[label]
		if len(members) == 0 {
			continue
		}
		idx, err := strconv.Atoi(label)
		if err != nil {
			return nil, fmt.Errorf("cluster label %q is not an index: %w", label, err)
		}

		comp := Compose(members, e.Categories)
		rec := models.ClusterRecord{
			Method:                method,
			Cluster:               idx,
			Size:                  comp.Size,
			Conductance:           Conductance(g, graph.NewNodeSet(members...), e.Weighted),
			ClusteringCoefficient: ClusteringCoefficient(g, members),
			PercentCelebrities:    comp.PercentCelebrities(),
			PercentMedia:          comp.PercentMedia(),
			PercentPoliticians:    comp.PercentPoliticians(),
			PercentOthers:         comp.PercentOthers(),
			CountCelebrities:      comp.Celebrities,
			CountMedia:            comp.Media,
			CountPoliticians:      comp.Politicians,
			CountOthers:           comp.Others,
		}
		if e.Sink != nil {
			if err := e.Sink.AppendCluster(rec); err != nil {
				return nil, fmt.Errorf("append cluster %d of %s: %w", idx, method, err)
			}
		}
		report.Clusters = append(report.Clusters, rec)

		assigned += comp.Size
		maxSum += comp.MaxPercent() * float64(comp.Size)
		minSum += comp.MinPercent() * float64(comp.Size)
		condSum += rec.Conductance
		for _, m := range members {
			classes = append(classes, e.Categories.TypeOf(m).Class())
			preds = append(preds, label)
		}
	}

	validity := ExternalValidity(classes, preds)
	summary := models.SummaryRecord{
		Method:       method,
		NumClusters:  len(report.Clusters),
		Homogeneity:  validity.Homogeneity,
		Completeness: validity.Completeness,
		VMeasure:     validity.VMeasure,
	}
	if assigned > 0 {
		summary.AvgMaxPercent = maxSum / float64(assigned)
		summary.AvgMinPercent = minSum / float64(assigned)
	}
	if len(report.Clusters) > 0 {
		summary.AvgConductance = condSum / float64(len(report.Clusters))
	}
	if e.Sink != nil {
		if err := e.Sink.AppendSummary(summary); err != nil {
			return nil, fmt.Errorf("append summary of %s: %w", method, err)
		}
	}
	report.Summary = summary
	return report, nil
}
