package graph

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"
)

// ToGonum converts g to a gonum weighted directed graph. Gonum node IDs are
// the node indices of g. When weighted is false every edge has weight one.
func ToGonum(g *Graph, weighted bool) *simple.WeightedDirectedGraph {
	out := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for i := range g.ids {
		out.AddNode(simple.Node(int64(i)))
	}
	for u := range g.ids {
		for _, v := range g.Successors(u) {
			w := g.succ[u][v]
			if !weighted {
				w = 1
			}
			out.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(int64(u)),
				T: simple.Node(int64(v)),
				W: w,
			})
		}
	}
	return out
}

// ToGonumUndirected converts the undirected projection of g to a gonum
// weighted undirected graph.
func ToGonumUndirected(g *Graph) *simple.WeightedUndirectedGraph {
	u := g.Undirected()
	out := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range u.ids {
		out.AddNode(simple.Node(int64(i)))
	}
	for i := range u.ids {
		nbrs, weights := u.Neighbors(i)
		for k, j := range nbrs {
			if j <= i {
				continue
			}
			out.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(int64(i)),
				T: simple.Node(int64(j)),
				W: weights[k],
			})
		}
	}
	return out
}
