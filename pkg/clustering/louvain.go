package clustering

import (
	"context"
	"fmt"

	"github.com/gilchrisn/interaction-clustering/pkg/louvain"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// Louvain clusters the undirected projection of Input.Graph and determines k
// itself.
type Louvain struct {
	Config *louvain.Config
}

// NewLouvain creates the Louvain method with the given configuration.
func NewLouvain(config *louvain.Config) *Louvain {
	if config == nil {
		config = louvain.NewConfig()
	}
	return &Louvain{Config: config}
}

func (l *Louvain) Name() string { return MethodLouvain }
func (l *Louvain) UsesK() bool  { return false }

func (l *Louvain) Cluster(ctx context.Context, in Input) (*Result, error) {
	if in.Graph == nil || in.Graph.NumNodes() == 0 {
		return nil, fmt.Errorf("louvain needs a non-empty graph: %w", models.ErrInputData)
	}

	lg := louvain.FromUndirected(in.Graph.Undirected())
	res, err := louvain.Run(lg, l.Config, ctx)
	if err != nil {
		return nil, fmt.Errorf("louvain: %w", err)
	}

	assignment, k := labelsFromIndices(in.Graph.Nodes(), res.Membership)
	return &Result{
		Method:      MethodLouvain,
		Assignment:  assignment,
		NumClusters: k,
		Modularity:  res.Modularity,
		Iterations:  res.Statistics.TotalIterations,
		Converged:   true,
	}, nil
}
