package louvain

import (
	"fmt"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
)

// Graph represents a weighted undirected graph using simple arrays
type Graph struct {
	NumNodes    int         `json:"num_nodes"`
	Adjacency   [][]int     `json:"-"`            // adjacency[i] = neighbours of node i, self excluded
	Weights     [][]float64 `json:"-"`            // weights[i][j] = weight of edge to adjacency[i][j]
	SelfLoops   []float64   `json:"-"`            // selfLoops[i] = weight of the loop on node i
	Degrees     []float64   `json:"degrees"`      // degrees[i] = weighted degree, loops count twice
	TotalWeight float64     `json:"total_weight"` // sum of all edge weights
}

// NewGraph creates a new graph with n nodes
func NewGraph(numNodes int) *Graph {
	return &Graph{
		NumNodes:  numNodes,
		Adjacency: make([][]int, numNodes),
		Weights:   make([][]float64, numNodes),
		SelfLoops: make([]float64, numNodes),
		Degrees:   make([]float64, numNodes),
	}
}

// FromUndirected converts an undirected projection, keeping its node order.
func FromUndirected(u *graph.Undirected) *Graph {
	g := NewGraph(u.NumNodes())
	for i := 0; i < u.NumNodes(); i++ {
		nbrs, weights := u.Neighbors(i)
		for k, j := range nbrs {
			if j > i {
				_ = g.AddEdge(i, j, weights[k])
			}
		}
	}
	return g
}

// AddEdge adds a weighted edge between two nodes
func (g *Graph) AddEdge(u, v int, weight float64) error {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return fmt.Errorf("node index out of range: u=%d, v=%d, numNodes=%d", u, v, g.NumNodes)
	}
	if weight <= 0 {
		return fmt.Errorf("edge weight must be positive: %f", weight)
	}

	if u == v {
		g.SelfLoops[u] += weight
		g.Degrees[u] += 2 * weight
	} else {
		g.Adjacency[u] = append(g.Adjacency[u], v)
		g.Weights[u] = append(g.Weights[u], weight)
		g.Adjacency[v] = append(g.Adjacency[v], u)
		g.Weights[v] = append(g.Weights[v], weight)
		g.Degrees[u] += weight
		g.Degrees[v] += weight
	}
	g.TotalWeight += weight
	return nil
}

// GetNeighbors returns neighbors and their edge weights for a node
func (g *Graph) GetNeighbors(node int) ([]int, []float64) {
	if node < 0 || node >= g.NumNodes {
		return nil, nil
	}
	return g.Adjacency[node], g.Weights[node]
}

// Validate checks graph consistency
func (g *Graph) Validate() error {
	if g.NumNodes <= 0 {
		return fmt.Errorf("graph must have positive number of nodes")
	}

	for i := 0; i < g.NumNodes; i++ {
		if len(g.Adjacency[i]) != len(g.Weights[i]) {
			return fmt.Errorf("adjacency and weights arrays inconsistent for node %d", i)
		}
		for j, neighbor := range g.Adjacency[i] {
			if neighbor < 0 || neighbor >= g.NumNodes {
				return fmt.Errorf("invalid neighbor %d for node %d", neighbor, i)
			}
			if g.Weights[i][j] <= 0 {
				return fmt.Errorf("non-positive weight %f for edge %d-%d", g.Weights[i][j], i, neighbor)
			}
		}
	}
	return nil
}
