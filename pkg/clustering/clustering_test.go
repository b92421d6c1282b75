package clustering

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/louvain"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
	"github.com/gilchrisn/interaction-clustering/pkg/transform"
)

func edgeList(pairs ...string) []models.Edge {
	out := make([]models.Edge, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Edge{StartNode: pairs[i], EndNode: pairs[i+1]})
	}
	return out
}

// twoGroups is two directed triangles joined by one edge.
func twoGroups() *graph.Graph {
	return graph.Build(edgeList(
		"a", "b", "b", "c", "c", "a", "b", "a", "c", "b", "a", "c",
		"x", "y", "y", "z", "z", "x", "y", "x", "z", "y", "x", "z",
		"c", "x",
	))
}

func viewInput(t *testing.T, g *graph.Graph, view string, k int) Input {
	t.Helper()
	v, err := transform.Lookup(view)
	require.NoError(t, err)
	m, err := v.Build(g, transform.DefaultOptions())
	require.NoError(t, err)
	return Input{Nodes: g.Nodes(), Matrix: m, Graph: g, K: k}
}

func sameCluster(a Assignment, nodes ...string) bool {
	for _, n := range nodes[1:] {
		if a[n] != a[nodes[0]] {
			return false
		}
	}
	return true
}

func TestLouvainMethod(t *testing.T) {
	m := NewLouvain(louvain.NewConfig().WithLogger(zerolog.Nop()))
	res, err := m.Cluster(context.Background(), Input{Graph: twoGroups()})
	require.NoError(t, err)

	assert.Equal(t, MethodLouvain, res.Method)
	assert.Equal(t, 2, res.NumClusters)
	assert.True(t, sameCluster(res.Assignment, "a", "b", "c"))
	assert.True(t, sameCluster(res.Assignment, "x", "y", "z"))
	assert.Equal(t, "0", res.Assignment["a"])
	assert.Equal(t, "1", res.Assignment["x"])
	assert.Greater(t, res.Modularity, 0.0)
}

func TestLouvainEndToEndScenario(t *testing.T) {
	g := graph.Build(edgeList("a", "b", "a", "b", "b", "c", "c", "a"))
	m := NewLouvain(louvain.NewConfig().WithLogger(zerolog.Nop()))

	res, err := m.Cluster(context.Background(), Input{Graph: g})
	require.NoError(t, err)
	assert.Equal(t, Assignment{"a": "0", "b": "0", "c": "0"}, res.Assignment)
	assert.Equal(t, 1, res.NumClusters)
}

func TestLouvainEmptyGraph(t *testing.T) {
	_, err := NewLouvain(nil).Cluster(context.Background(), Input{Graph: graph.New()})
	assert.True(t, errors.Is(err, models.ErrInputData))
}

func TestSpectralSingleCluster(t *testing.T) {
	g := twoGroups()
	for _, view := range transform.DefaultViews {
		t.Run(view, func(t *testing.T) {
			res, err := NewSpectral(1).Cluster(context.Background(), viewInput(t, g, view, 1))
			require.NoError(t, err)
			assert.Equal(t, 1, res.NumClusters)
			for _, n := range g.Nodes() {
				assert.Equal(t, "0", res.Assignment[n])
			}
		})
	}
}

func TestSpectralSeparatesGroups(t *testing.T) {
	g := twoGroups()
	res, err := NewSpectral(7).Cluster(context.Background(), viewInput(t, g, "undirected_weighted", 2))
	require.NoError(t, err)

	assert.Equal(t, 2, res.NumClusters)
	assert.True(t, sameCluster(res.Assignment, "a", "b", "c"))
	assert.True(t, sameCluster(res.Assignment, "x", "y", "z"))
	assert.NotEqual(t, res.Assignment["a"], res.Assignment["x"])
}

func TestSpectralDeterministic(t *testing.T) {
	g := twoGroups()
	in := viewInput(t, g, "vectors_weighted", 3)
	first, err := NewSpectral(3).Cluster(context.Background(), in)
	require.NoError(t, err)
	second, err := NewSpectral(3).Cluster(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.Assignment, second.Assignment)
}

func TestSpectralKTooLarge(t *testing.T) {
	g := graph.Build(edgeList("a", "b"))
	_, err := NewSpectral(1).Cluster(context.Background(), viewInput(t, g, "outgoing_weighted", 3))
	assert.True(t, errors.Is(err, models.ErrDegenerateMatrix))
}

func TestCosineAffinity(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 0,
		2, 0,
		0, 0,
	})
	s := CosineAffinity(x)
	assert.InDelta(t, 1.0, s.At(0, 1), 1e-12)
	assert.Equal(t, 0.0, s.At(2, 0))
	assert.Equal(t, 0.0, s.At(2, 2))
}

func TestFuzzyCrispLimit(t *testing.T) {
	x := mat.NewDense(6, 1, []float64{0, 0.1, 0.2, 10, 10.1, 10.2})
	nodes := []string{"a", "b", "c", "x", "y", "z"}
	f := NewFuzzyCMeans(5, zerolog.Nop())

	res, err := f.Fit(context.Background(), Input{Nodes: nodes, Matrix: x, K: 2})
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.InDelta(t, 1.0, res.PartitionCoefficient, 1e-12)

	weights := res.MembershipWeights()
	for _, n := range nodes {
		require.Len(t, weights[n], 2)
		assert.InDelta(t, 1.0, weights[n][0]+weights[n][1], 1e-12)
	}

	hard, k := res.ToHardLabels(ArgMax{})
	assert.Equal(t, 2, k)
	assert.True(t, sameCluster(hard, "a", "b", "c"))
	assert.True(t, sameCluster(hard, "x", "y", "z"))
	assert.NotEqual(t, hard["a"], hard["x"])
}

func TestFuzzySoftMemberships(t *testing.T) {
	x := mat.NewDense(5, 1, []float64{0, 0.2, 5, 9.8, 10})
	nodes := []string{"a", "b", "mid", "y", "z"}
	f := NewFuzzyCMeans(5, zerolog.Nop())
	f.M = 2

	res, err := f.Fit(context.Background(), Input{Nodes: nodes, Matrix: x, K: 2})
	require.NoError(t, err)
	assert.True(t, res.Converged)

	weights := res.MembershipWeights()
	assert.InDelta(t, 0.5, weights["mid"][0], 0.05)
	assert.Greater(t, floatsMax(weights["a"]), 0.9)

	hard, _ := res.ToHardLabels(Threshold{Min: 0.8})
	_, assigned := hard["mid"]
	assert.False(t, assigned)
	assert.Contains(t, hard, "a")
	assert.Contains(t, hard, "z")
}

func TestFuzzyNonConvergence(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	f := NewFuzzyCMeans(1, zerolog.Nop())
	f.M = 2
	f.MaxIter = 1
	f.Error = 0

	res, err := f.Cluster(context.Background(), Input{Nodes: []string{"a", "b", "c", "d"}, Matrix: x, K: 2})
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Len(t, res.Assignment, 4)
}

func floatsMax(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func TestMembershipChangeIsFrobenius(t *testing.T) {
	prev := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	u := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	// the spectral norm of the difference is 2; Frobenius is sqrt(4*1).
	assert.InDelta(t, 2.0, membershipChange(u, prev), 1e-12)

	u = mat.NewDense(2, 2, []float64{2, 0, 0, 2})
	// difference is the identity: spectral 1, Frobenius sqrt(2).
	assert.InDelta(t, math.Sqrt2, membershipChange(u, prev), 1e-12)
}

func TestHardLabelRules(t *testing.T) {
	c, ok := ArgMax{}.Label([]float64{0.2, 0.5, 0.3})
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	_, ok = Threshold{Min: 0.6}.Label([]float64{0.2, 0.5, 0.3})
	assert.False(t, ok)

	assert.IsType(t, ArgMax{}, RuleFor(0))
	assert.IsType(t, Threshold{}, RuleFor(0.4))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewLouvain(nil), NewSpectral(1), NewFuzzyCMeans(1, zerolog.Nop()))
	assert.Equal(t, []string{"fuzzy", "louvain", "spectral"}, r.List())

	m, ok := r.Get("spectral")
	require.True(t, ok)
	assert.True(t, m.UsesK())

	_, ok = r.Get("dbscan")
	assert.False(t, ok)
}

func TestAssignmentHelpers(t *testing.T) {
	a := Assignment{"a": "0", "b": "10", "c": "2", "d": "0"}
	assert.Equal(t, []string{"0", "2", "10"}, a.Labels())
	clusters := a.Clusters([]string{"d", "c", "b", "a", "missing"})
	assert.Equal(t, []string{"d", "a"}, clusters["0"])
	assert.Equal(t, []string{"b"}, clusters["10"])
}
