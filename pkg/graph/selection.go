package graph

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// NodeSet is a set of node identifiers.
type NodeSet map[string]struct{}

// NewNodeSet builds a set from the given identifiers.
func NewNodeSet(ids ...string) NodeSet {
	s := make(NodeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s NodeSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set containing every member of s and others.
func (s NodeSet) Union(others ...NodeSet) NodeSet {
	out := make(NodeSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, o := range others {
		for id := range o {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s NodeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// EdgesInto keeps the edges of g whose target is in target. Only nodes touched
// by a surviving edge appear in the result.
func EdgesInto(g *Graph, target NodeSet) *Graph {
	return selectEdges(g, func(e WeightedEdge) bool { return target.Has(e.To) })
}

// EdgesFrom keeps the edges of g whose source is in source. Only nodes touched
// by a surviving edge appear in the result.
func EdgesFrom(g *Graph, source NodeSet) *Graph {
	return selectEdges(g, func(e WeightedEdge) bool { return source.Has(e.From) })
}

func selectEdges(g *Graph, keep func(WeightedEdge) bool) *Graph {
	out := New()
	for _, e := range g.Edges() {
		if keep(e) {
			out.SetEdge(e.From, e.To, e.Weight)
		}
	}
	return out
}

// FilterInDegree returns the nodes of g whose unweighted in-degree is at least min.
func FilterInDegree(g *Graph, min int) NodeSet {
	out := make(NodeSet)
	for i, id := range g.ids {
		if len(g.pred[i]) >= min {
			out[id] = struct{}{}
		}
	}
	return out
}

// SampleEdges keeps a random fraction p of the edge list, preserving order.
func SampleEdges(edges []models.Edge, p float64, rng *rand.Rand) []models.Edge {
	if p >= 1 {
		return edges
	}
	if p <= 0 {
		return nil
	}
	n := int(math.Round(p * float64(len(edges))))
	picked := rng.Perm(len(edges))[:n]
	sort.Ints(picked)
	out := make([]models.Edge, n)
	for i, idx := range picked {
		out[i] = edges[idx]
	}
	return out
}

// Normalize lowercases both endpoints of every edge.
func Normalize(edges []models.Edge) []models.Edge {
	out := make([]models.Edge, len(edges))
	for i, e := range edges {
		out[i] = models.Edge{StartNode: strings.ToLower(e.StartNode), EndNode: strings.ToLower(e.EndNode)}
	}
	return out
}
