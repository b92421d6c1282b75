package graph

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// Adjacency returns the n×n matrix A with A[i][j] the weight of edge i->j
// (or 1 when weighted is false), in node insertion order.
func Adjacency(g *Graph, weighted bool) (*mat.Dense, error) {
	n := g.NumNodes()
	if n == 0 {
		return nil, fmt.Errorf("adjacency of empty graph: %w", models.ErrInputData)
	}
	a := mat.NewDense(n, n, nil)
	for u := 0; u < n; u++ {
		for v, w := range g.succ[u] {
			if !weighted {
				w = 1
			}
			a.Set(u, v, w)
		}
	}
	return a, nil
}

// UndirectedAdjacency returns the symmetric adjacency of the undirected
// projection of g.
func UndirectedAdjacency(g *Graph, weighted bool) (*mat.Dense, error) {
	n := g.NumNodes()
	if n == 0 {
		return nil, fmt.Errorf("adjacency of empty graph: %w", models.ErrInputData)
	}
	u := g.Undirected()
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j, w := range u.adj[i] {
			if !weighted {
				w = 1
			}
			a.Set(i, j, w)
		}
	}
	return a, nil
}
