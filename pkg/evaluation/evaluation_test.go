package evaluation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

func build(pairs ...string) *graph.Graph {
	edges := make([]models.Edge, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		edges = append(edges, models.Edge{StartNode: pairs[i], EndNode: pairs[i+1]})
	}
	return graph.Build(edges)
}

func complete(nodes ...string) []string {
	var pairs []string
	for _, u := range nodes {
		for _, v := range nodes {
			if u != v {
				pairs = append(pairs, u, v)
			}
		}
	}
	return pairs
}

// twoCompleteClusters is two disjoint complete digraphs.
func twoCompleteClusters() *graph.Graph {
	return build(append(complete("a", "b", "c"), complete("x", "y", "z")...)...)
}

type memorySink struct {
	clusters  []models.ClusterRecord
	summaries []models.SummaryRecord
	failAfter int
}

func (s *memorySink) AppendCluster(r models.ClusterRecord) error {
	if s.failAfter > 0 && len(s.clusters) >= s.failAfter {
		return errors.New("disk full")
	}
	s.clusters = append(s.clusters, r)
	return nil
}

func (s *memorySink) AppendSummary(r models.SummaryRecord) error {
	s.summaries = append(s.summaries, r)
	return nil
}

func TestConductanceDisconnectedClusters(t *testing.T) {
	g := twoCompleteClusters()
	for _, weighted := range []bool{true, false} {
		assert.Equal(t, 0.0, Conductance(g, graph.NewNodeSet("a", "b", "c"), weighted))
		assert.Equal(t, 0.0, Conductance(g, graph.NewNodeSet("x", "y", "z"), weighted))
	}
}

func TestConductance(t *testing.T) {
	// a->b (2), b->a, b->c, c->b, c->a
	g := build("a", "b", "a", "b", "b", "a", "b", "c", "c", "b", "c", "a")

	// S={a}: cut = a->b(2) + b->a(1) + c->a(1) = 4; vol(S)=2, vol(T)=4.
	assert.InDelta(t, 2.0, Conductance(g, graph.NewNodeSet("a"), true), 1e-12)
	// Unweighted: cut = 3, vol(S)=1, vol(T)=4.
	assert.InDelta(t, 3.0, Conductance(g, graph.NewNodeSet("a"), false), 1e-12)

	// A sink cluster has zero volume but a non-empty cut.
	sink := build("a", "z", "b", "z")
	assert.Equal(t, 1.0, Conductance(sink, graph.NewNodeSet("z"), true))
	// Everything in one cluster.
	assert.Equal(t, 0.0, Conductance(g, graph.NewNodeSet("a", "b", "c"), true))
}

func TestClusteringCoefficient(t *testing.T) {
	g := twoCompleteClusters()
	assert.InDelta(t, 1.0, ClusteringCoefficient(g, []string{"a", "b", "c"}), 1e-12)

	// Path a-b-c has no triangle.
	path := build("a", "b", "b", "c")
	assert.Equal(t, 0.0, ClusteringCoefficient(path, []string{"a", "b", "c"}))

	// Triangle with one heavier edge: ŵ = (1, 1/2, 1/2), every node scores cbrt(1/4).
	tri := build("a", "b", "a", "b", "b", "c", "c", "a")
	assert.InDelta(t, math.Cbrt(0.25), ClusteringCoefficient(tri, []string{"a", "b", "c"}), 1e-12)

	assert.InDelta(t, 1.0, ClusteringCoefficient(g, []string{"a", "b", "c", "x", "y", "z"}), 1e-12)

	// x is isolated in the induced subgraph and counts as zero.
	assert.InDelta(t, 0.75, ClusteringCoefficient(g, []string{"a", "b", "c", "x"}), 1e-12)

	// A pendant d lowers c to 1/3 and scores zero itself.
	pendant := build(append(complete("a", "b", "c"), "c", "d")...)
	assert.InDelta(t, 7.0/12, ClusteringCoefficient(pendant, []string{"a", "b", "c", "d"}), 1e-12)
	assert.Equal(t, 0.0, ClusteringCoefficient(g, nil))
}

func TestExternalValidity(t *testing.T) {
	t.Run("pure clusters are homogeneous", func(t *testing.T) {
		v := ExternalValidity(
			[]string{"c", "c", "m", "m", "p"},
			[]string{"0", "0", "1", "2", "3"},
		)
		assert.InDelta(t, 1.0, v.Homogeneity, 1e-12)
		assert.Less(t, v.Completeness, 1.0)
	})

	t.Run("perfect match", func(t *testing.T) {
		v := ExternalValidity([]string{"c", "c", "m"}, []string{"1", "1", "0"})
		assert.InDelta(t, 1.0, v.Homogeneity, 1e-12)
		assert.InDelta(t, 1.0, v.Completeness, 1e-12)
		assert.InDelta(t, 1.0, v.VMeasure, 1e-12)
	})

	t.Run("single cluster", func(t *testing.T) {
		v := ExternalValidity([]string{"c", "m"}, []string{"0", "0"})
		assert.InDelta(t, 0.0, v.Homogeneity, 1e-12)
		assert.Equal(t, 1.0, v.Completeness)
		assert.InDelta(t, 0.0, v.VMeasure, 1e-12)
	})

	t.Run("known values", func(t *testing.T) {
		// Reference values from the entropy definitions.
		v := ExternalValidity([]string{"a", "a", "b", "b"}, []string{"0", "0", "0", "1"})
		assert.InDelta(t, 0.3112781244591328, v.Homogeneity, 1e-9)
		assert.InDelta(t, 0.38368854659634444, v.Completeness, 1e-9)
		assert.InDelta(t, 0.3437110184854509, v.VMeasure, 1e-9)
	})
}

func TestCompose(t *testing.T) {
	cats := labeling.NewCategories([]string{"a"}, []string{"b", "b2"}, []string{"c"})
	comp := Compose([]string{"a", "b", "b2", "c", "z"}, cats)

	assert.Equal(t, Composition{Size: 5, Celebrities: 1, Media: 2, Politicians: 1, Others: 1}, comp)
	assert.InDelta(t, 0.4, comp.MaxPercent(), 1e-12)
	assert.InDelta(t, 0.2, comp.MinPercent(), 1e-12)
}

func TestEvaluatorTwoClusters(t *testing.T) {
	g := twoCompleteClusters()
	cats := labeling.NewCategories([]string{"a", "b", "c"}, nil, []string{"x", "y", "z"})
	sink := &memorySink{}
	ev := NewEvaluator(cats, true, sink)

	assignment := clustering.Assignment{"a": "0", "b": "0", "c": "0", "x": "1", "y": "1", "z": "1"}
	report, err := ev.Evaluate("community_mentions", g, assignment)
	require.NoError(t, err)

	require.Len(t, report.Clusters, 2)
	assert.Equal(t, report.Clusters, sink.clusters)
	assert.Equal(t, []models.SummaryRecord{report.Summary}, sink.summaries)

	first := report.Clusters[0]
	assert.Equal(t, "community_mentions", first.Method)
	assert.Equal(t, 0, first.Cluster)
	assert.Equal(t, 3, first.Size)
	assert.Equal(t, 0.0, first.Conductance)
	assert.InDelta(t, 1.0, first.ClusteringCoefficient, 1e-12)
	assert.Equal(t, 1.0, first.PercentCelebrities)
	assert.Equal(t, 3, first.CountCelebrities)

	s := report.Summary
	assert.Equal(t, 2, s.NumClusters)
	assert.Equal(t, 1.0, s.AvgMaxPercent)
	assert.Equal(t, 0.0, s.AvgMinPercent)
	assert.Equal(t, 0.0, s.AvgConductance)
	assert.InDelta(t, 1.0, s.Homogeneity, 1e-12)
	assert.InDelta(t, 1.0, s.Completeness, 1e-12)
	assert.InDelta(t, 1.0, s.VMeasure, 1e-12)
}

func TestEvaluatorIsIdempotent(t *testing.T) {
	g := build("a", "b", "a", "b", "b", "c", "c", "a", "c", "d", "d", "e", "e", "c", "x", "a")
	cats := labeling.NewCategories([]string{"a", "d"}, []string{"b"}, []string{"c", "e"})
	ev := NewEvaluator(cats, true, nil)
	assignment := clustering.Assignment{"a": "0", "b": "0", "c": "1", "d": "1", "e": "2", "x": "2"}

	first, err := ev.Evaluate("run", g, assignment)
	require.NoError(t, err)
	second, err := ev.Evaluate("run", g, assignment)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluatorSinkFailure(t *testing.T) {
	g := twoCompleteClusters()
	ev := NewEvaluator(labeling.Categories{}, true, &memorySink{failAfter: 1})
	_, err := ev.Evaluate("run", g, clustering.Assignment{"a": "0", "x": "1"})
	assert.Error(t, err)
}

func TestAttributeMixing(t *testing.T) {
	cats := labeling.NewCategories([]string{"c1", "c2"}, []string{"m1"}, nil)

	t.Run("perfectly assortative", func(t *testing.T) {
		g := build("c1", "c2", "c2", "c1", "m1", "x")
		mx := AttributeMixing(g, cats)
		assert.Equal(t, 3, mx.Edges)
		assert.InDelta(t, 2.0/3, mx.Dict()["c"]["c"], 1e-12)
		assert.InDelta(t, 1.0/3, mx.Dict()["m"]["o"], 1e-12)
		assert.InDelta(t, 0.4, mx.Assortativity(), 1e-12)
	})

	t.Run("disassortative", func(t *testing.T) {
		g := build("c1", "m1", "m1", "c2")
		mx := AttributeMixing(g, cats)
		assert.InDelta(t, -1.0, mx.Assortativity(), 1e-12)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0.0, AttributeMixing(graph.New(), cats).Assortativity())
	})
}
