// Package centrality scores nodes of an interaction graph with PageRank,
// betweenness and closeness.
package centrality

import (
	"fmt"
	"math"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// Metric names a centrality measure.
type Metric string

const (
	PageRank    Metric = "pagerank"
	Betweenness Metric = "betweenness"
	Closeness   Metric = "closeness"
)

// Metrics lists every metric in export order.
var Metrics = []Metric{PageRank, Betweenness, Closeness}

// Calculator computes centralities for graphs
type Calculator struct {
	dampingFactor     float64
	tolerance         float64
	weighted          bool
	closenessWeighted bool
}

// NewCalculator creates a calculator with damping 0.85, tolerance 1e-6, edge
// weights enabled for PageRank and betweenness, and hop-count closeness.
func NewCalculator() *Calculator {
	return &Calculator{
		dampingFactor: 0.85,
		tolerance:     1e-6,
		weighted:      true,
	}
}

// WithDampingFactor sets the damping factor (default: 0.85)
func (c *Calculator) WithDampingFactor(factor float64) *Calculator {
	c.dampingFactor = factor
	return c
}

// WithTolerance sets the convergence tolerance (default: 1e-6)
func (c *Calculator) WithTolerance(tolerance float64) *Calculator {
	c.tolerance = tolerance
	return c
}

// WithWeights decides whether edge weights are used by PageRank, as
// transition weights, and by betweenness, as path lengths.
func (c *Calculator) WithWeights(weighted bool) *Calculator {
	c.weighted = weighted
	return c
}

// WithClosenessWeights makes closeness use edge weights as path lengths
// instead of hop counts (default: false).
func (c *Calculator) WithClosenessWeights(weighted bool) *Calculator {
	c.closenessWeighted = weighted
	return c
}

// Compute returns the scores of metric for every node of g, in node order.
func (c *Calculator) Compute(g *graph.Graph, metric Metric) ([]models.Score, error) {
	if g.NumNodes() == 0 {
		return nil, fmt.Errorf("graph has no nodes: %w", models.ErrInputData)
	}

	var scores map[int64]float64
	switch metric {
	case PageRank:
		scores = network.PageRank(graph.ToGonum(g, c.weighted), c.dampingFactor, c.tolerance)
	case Betweenness:
		scores = c.betweenness(graph.ToGonum(g, c.weighted), g.NumNodes())
	case Closeness:
		scores = closeness(path.DijkstraAllPaths(graph.ToGonum(g, c.closenessWeighted)), g.NumNodes())
	default:
		return nil, fmt.Errorf("unknown centrality metric %q", metric)
	}

	out := make([]models.Score, g.NumNodes())
	for i := range out {
		out[i] = models.Score{Node: g.ID(i), Value: scores[int64(i)]}
	}
	return out, nil
}

// All computes every metric.
func (c *Calculator) All(g *graph.Graph) (map[Metric][]models.Score, error) {
	out := make(map[Metric][]models.Score, len(Metrics))
	for _, m := range Metrics {
		scores, err := c.Compute(g, m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		out[m] = scores
	}
	return out, nil
}

// betweenness is normalized by 1/((n-1)(n-2)), the number of ordered pairs
// that exclude the node.
func (c *Calculator) betweenness(g gonumgraph.WeightedDirected, n int) map[int64]float64 {
	var raw map[int64]float64
	if c.weighted {
		raw = network.BetweennessWeighted(g, path.DijkstraAllPaths(g))
	} else {
		raw = network.Betweenness(g)
	}
	if n <= 2 {
		return map[int64]float64{}
	}
	scale := 1 / float64((n-1)*(n-2))
	for id, v := range raw {
		raw[id] = v * scale
	}
	return raw
}

// closeness uses inward distances: the score of u depends on how far the
// nodes that can reach u are. With r-1 such nodes at total distance d,
// closeness is (r-1)/d scaled by (r-1)/(n-1).
func closeness(paths path.AllShortest, n int) map[int64]float64 {
	out := make(map[int64]float64, n)
	if n < 2 {
		return out
	}
	for u := 0; u < n; u++ {
		total := 0.0
		reach := 0
		for v := 0; v < n; v++ {
			if v == u {
				continue
			}
			d := paths.Weight(int64(v), int64(u))
			if math.IsInf(d, 1) {
				continue
			}
			total += d
			reach++
		}
		if total > 0 {
			out[int64(u)] = float64(reach) / total * float64(reach) / float64(n-1)
		}
	}
	return out
}
