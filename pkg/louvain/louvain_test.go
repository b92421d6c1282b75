package louvain

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

func testConfig() *Config {
	return NewConfig().WithLogger(zerolog.Nop())
}

type weightedEdge struct {
	u, v int
	w    float64
}

func buildGraph(t *testing.T, n int, edges []weightedEdge) *Graph {
	t.Helper()
	g := NewGraph(n)
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e.u, e.v, e.w))
	}
	return g
}

// oracleModularity evaluates the partition with gonum's implementation.
func oracleModularity(n int, edges []weightedEdge, membership []int) float64 {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range edges {
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(int64(e.u)), T: simple.Node(int64(e.v)), W: e.w})
	}
	groups := make(map[int][]gonumgraph.Node)
	k := 0
	for node, c := range membership {
		groups[c] = append(groups[c], simple.Node(int64(node)))
		if c+1 > k {
			k = c + 1
		}
	}
	communities := make([][]gonumgraph.Node, 0, k)
	for c := 0; c < k; c++ {
		communities = append(communities, groups[c])
	}
	return community.Q(g, communities, 1)
}

func twoCliques() (int, []weightedEdge) {
	var edges []weightedEdge
	for _, base := range []int{0, 4} {
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				edges = append(edges, weightedEdge{base + i, base + j, 1})
			}
		}
	}
	edges = append(edges, weightedEdge{3, 4, 1})
	return 8, edges
}

func TestRunTwoCliques(t *testing.T) {
	n, edges := twoCliques()
	g := buildGraph(t, n, edges)

	result, err := Run(g, testConfig(), context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.NumCommunities())
	for i := 1; i < 4; i++ {
		assert.Equal(t, result.Membership[0], result.Membership[i])
		assert.Equal(t, result.Membership[4], result.Membership[4+i])
	}
	assert.NotEqual(t, result.Membership[0], result.Membership[4])
	assert.InDelta(t, oracleModularity(n, edges, result.Membership), result.Modularity, 1e-9)
}

func TestRunInteractionTriangle(t *testing.T) {
	// a->b twice, b->c, c->a projected onto an undirected graph.
	g := graph.Build([]models.Edge{
		{StartNode: "a", EndNode: "b"},
		{StartNode: "a", EndNode: "b"},
		{StartNode: "b", EndNode: "c"},
		{StartNode: "c", EndNode: "a"},
	})
	lg := FromUndirected(g.Undirected())
	require.Equal(t, 3, lg.NumNodes)
	assert.Equal(t, 4.0, lg.TotalWeight)

	result, err := Run(lg, testConfig(), context.Background())
	require.NoError(t, err)

	// Merging everything has modularity 0; every split scores lower.
	assert.Equal(t, []int{0, 0, 0}, result.Membership)
	assert.InDelta(t, 0.0, result.Modularity, 1e-12)

	edges := []weightedEdge{{0, 1, 2}, {1, 2, 1}, {0, 2, 1}}
	assert.InDelta(t, oracleModularity(3, edges, result.Membership), result.Modularity, 1e-12)
}

func TestRunDeterministicForSeed(t *testing.T) {
	n, edges := twoCliques()
	g := buildGraph(t, n, edges)

	first, err := Run(g, testConfig(), context.Background())
	require.NoError(t, err)
	second, err := Run(g, testConfig(), context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Membership, second.Membership)
	assert.Equal(t, first.Modularity, second.Modularity)
}

func TestRunEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		numNodes  int
		edges     []weightedEdge
		wantComms int
	}{
		{"SingleNode", 1, nil, 1},
		{"TwoIsolated", 2, nil, 2},
		{"TwoConnected", 2, []weightedEdge{{0, 1, 1}}, 1},
		{"SelfLoopOnly", 2, []weightedEdge{{0, 0, 1}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.numNodes, tt.edges)
			result, err := Run(g, testConfig(), context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantComms, result.NumCommunities())
			assert.Len(t, result.Membership, tt.numNodes)
			assert.False(t, math.IsNaN(result.Modularity))
		})
	}
}

func TestRunRejectsEmptyGraph(t *testing.T) {
	_, err := Run(NewGraph(0), testConfig(), context.Background())
	assert.Error(t, err)
}

func TestRunHonoursCancellation(t *testing.T) {
	n, edges := twoCliques()
	g := buildGraph(t, n, edges)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(g, testConfig(), ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModularityMatchesOracle(t *testing.T) {
	n, edges := twoCliques()
	g := buildGraph(t, n, edges)

	partitions := [][]int{
		{0, 0, 0, 0, 1, 1, 1, 1},
		{0, 1, 2, 3, 4, 5, 6, 7},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 1, 1, 2, 2, 3, 3},
	}
	for _, p := range partitions {
		assert.InDelta(t, oracleModularity(n, edges, p), Modularity(g, p, 1), 1e-9)
	}
}

func TestAddEdgeValidation(t *testing.T) {
	g := NewGraph(2)
	assert.Error(t, g.AddEdge(0, 2, 1))
	assert.Error(t, g.AddEdge(0, 1, 0))
	require.NoError(t, g.AddEdge(1, 1, 2))
	assert.Equal(t, 4.0, g.Degrees[1])
	assert.Equal(t, 2.0, g.TotalWeight)
}

func TestConfigDefaults(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, 10, c.MaxLevels())
	assert.Equal(t, 1.0, c.Resolution())
	assert.Equal(t, int64(42), c.RandomSeed())

	c.Set("louvain.resolution", 0.5)
	assert.Equal(t, 0.5, c.Resolution())
}
