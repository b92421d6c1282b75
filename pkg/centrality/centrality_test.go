package centrality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

func build(pairs ...string) *graph.Graph {
	edges := make([]models.Edge, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		edges = append(edges, models.Edge{StartNode: pairs[i], EndNode: pairs[i+1]})
	}
	return graph.Build(edges)
}

func byNode(scores []models.Score) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for _, s := range scores {
		out[s.Node] = s.Value
	}
	return out
}

func TestPageRankSumsToOne(t *testing.T) {
	g := build("a", "b", "b", "c", "c", "a", "d", "a")
	scores, err := NewCalculator().Compute(g, PageRank)
	require.NoError(t, err)
	require.Len(t, scores, 4)

	sum := 0.0
	for _, s := range scores {
		sum += s.Value
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	m := byNode(scores)
	assert.Greater(t, m["a"], m["d"])
}

func TestPageRankCycleIsUniform(t *testing.T) {
	g := build("a", "b", "b", "c", "c", "a")
	scores, err := NewCalculator().WithTolerance(1e-10).Compute(g, PageRank)
	require.NoError(t, err)
	for _, s := range scores {
		assert.InDelta(t, 1.0/3, s.Value, 1e-6)
	}
}

func TestBetweennessPath(t *testing.T) {
	// a -> b -> c: only b lies on a shortest path, for the single pair (a, c).
	g := build("a", "b", "b", "c")
	scores, err := NewCalculator().Compute(g, Betweenness)
	require.NoError(t, err)

	m := byNode(scores)
	assert.InDelta(t, 0.5, m["b"], 1e-12)
	assert.Equal(t, 0.0, m["a"])
	assert.Equal(t, 0.0, m["c"])
}

func TestBetweennessUsesWeights(t *testing.T) {
	// a reaches c directly with length 5, or through b with length 2.
	g := build("a", "b", "b", "c", "a", "c", "a", "c", "a", "c", "a", "c", "a", "c")

	weighted, err := NewCalculator().Compute(g, Betweenness)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, byNode(weighted)["b"], 1e-12)

	unweighted, err := NewCalculator().WithWeights(false).Compute(g, Betweenness)
	require.NoError(t, err)
	assert.Equal(t, 0.0, byNode(unweighted)["b"])
}

func TestClosenessInward(t *testing.T) {
	g := build("a", "b", "b", "c")
	scores, err := NewCalculator().Compute(g, Closeness)
	require.NoError(t, err)

	m := byNode(scores)
	assert.Equal(t, 0.0, m["a"])
	// b is reached by a at distance 1: (1/1) * (1/2).
	assert.InDelta(t, 0.5, m["b"], 1e-12)
	// c is reached by b (1) and a (2): (2/3) * (2/2).
	assert.InDelta(t, 2.0/3, m["c"], 1e-12)
}

func TestClosenessCountsHops(t *testing.T) {
	g := build("a", "b", "a", "b", "b", "c")

	scores, err := NewCalculator().Compute(g, Closeness)
	require.NoError(t, err)
	// the doubled a->b edge does not lengthen the path a->b->c.
	assert.InDelta(t, 2.0/3, byNode(scores)["c"], 1e-12)
	assert.InDelta(t, 0.5, byNode(scores)["b"], 1e-12)

	scores, err = NewCalculator().WithClosenessWeights(true).Compute(g, Closeness)
	require.NoError(t, err)
	// b at 1, a at 2+1: (2/4) * (2/2).
	assert.InDelta(t, 0.5, byNode(scores)["c"], 1e-12)
}

func TestAll(t *testing.T) {
	g := build("a", "b", "b", "c", "c", "a")
	all, err := NewCalculator().All(g)
	require.NoError(t, err)
	for _, m := range Metrics {
		assert.Len(t, all[m], 3)
	}
}

func TestComputeErrors(t *testing.T) {
	_, err := NewCalculator().Compute(graph.New(), PageRank)
	assert.ErrorIs(t, err, models.ErrInputData)

	_, err = NewCalculator().Compute(build("a", "b"), Metric("eigenvector"))
	assert.Error(t, err)
}
