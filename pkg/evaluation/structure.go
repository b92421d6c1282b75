// Package evaluation scores partitions: per-cluster structure and category
// composition, and whole-partition agreement with the category ground truth.
package evaluation

import (
	"math"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
)

// Conductance returns cut(S, T) / min(vol(S), vol(T)) for the cluster S and
// its complement T in g. The cut counts edges in both directions and volumes
// are out-degree sums. A zero denominator gives 0 when nothing crosses the cut
// and 1 otherwise.
func Conductance(g *graph.Graph, cluster graph.NodeSet, weighted bool) float64 {
	var cut, volS, volT float64
	for u := 0; u < g.NumNodes(); u++ {
		inS := cluster.Has(g.ID(u))
		for _, v := range g.Successors(u) {
			w := 1.0
			if weighted {
				w = g.WeightAt(u, v)
			}
			if inS {
				volS += w
			} else {
				volT += w
			}
			if inS != cluster.Has(g.ID(v)) {
				cut += w
			}
		}
	}

	denom := math.Min(volS, volT)
	if denom == 0 {
		if cut == 0 {
			return 0
		}
		return 1
	}
	return cut / denom
}

// ClusteringCoefficient is the average weighted local clustering coefficient
// of the undirected projection of g induced by nodes. Edge weights are
// normalized by the largest weight in that subgraph and each triangle
// contributes the geometric mean of its three weights. Nodes with fewer than
// two neighbours contribute zero. Members missing from g are ignored.
func ClusteringCoefficient(g *graph.Graph, nodes []string) float64 {
	sub := g.Induced(nodes).Undirected()
	n := sub.NumNodes()
	if n == 0 {
		return 0
	}
	maxW := sub.MaxWeight()
	if maxW == 0 {
		return 0
	}

	total := 0.0
	for u := 0; u < n; u++ {
		nbrs, weights := sub.Neighbors(u)
		deg := len(nbrs)
		if deg < 2 {
			continue
		}
		sum := 0.0
		for a := 0; a < deg; a++ {
			for b := a + 1; b < deg; b++ {
				wvw := sub.Weight(nbrs[a], nbrs[b])
				if wvw == 0 {
					continue
				}
				sum += math.Cbrt((weights[a] / maxW) * (weights[b] / maxW) * (wvw / maxW))
			}
		}
		total += 2 * sum / float64(deg*(deg-1))
	}
	return total / float64(n)
}
