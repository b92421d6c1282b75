// Package graph holds the directed weighted interaction graph and the
// selections and matrix views derived from it.
package graph

import (
	"sort"
	"strings"

	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// Graph is a simple directed graph with positive edge weights. Nodes keep
// their insertion order, which is the row/column order of every matrix view.
type Graph struct {
	ids   []string
	index map[string]int
	succ  []map[int]float64
	pred  []map[int]float64
	edges int
}

// WeightedEdge is an edge between node identifiers.
type WeightedEdge struct {
	From   string
	To     string
	Weight float64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// Build creates a graph from an ordered edge list. Identifiers are lowercased,
// self-loops are skipped, and repeated pairs increment the edge weight by one.
func Build(edges []models.Edge) *Graph {
	g := New()
	for _, e := range edges {
		from := strings.ToLower(e.StartNode)
		to := strings.ToLower(e.EndNode)
		if from == to {
			continue
		}
		g.IncrementEdge(from, to, 1)
	}
	return g
}

// AddNode inserts a node if missing and returns its index.
func (g *Graph) AddNode(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.ids)
	g.ids = append(g.ids, id)
	g.index[id] = i
	g.succ = append(g.succ, make(map[int]float64))
	g.pred = append(g.pred, make(map[int]float64))
	return i
}

// SetEdge sets the weight of from->to. Self-loops and non-positive weights are
// ignored and reported as false.
func (g *Graph) SetEdge(from, to string, weight float64) bool {
	if from == to || weight <= 0 {
		return false
	}
	u := g.AddNode(from)
	v := g.AddNode(to)
	if _, ok := g.succ[u][v]; !ok {
		g.edges++
	}
	g.succ[u][v] = weight
	g.pred[v][u] = weight
	return true
}

// IncrementEdge adds by to the weight of from->to, creating the edge when absent.
func (g *Graph) IncrementEdge(from, to string, by float64) bool {
	if from == to || by <= 0 {
		return false
	}
	u := g.AddNode(from)
	v := g.AddNode(to)
	w, ok := g.succ[u][v]
	if !ok {
		g.edges++
	}
	g.succ[u][v] = w + by
	g.pred[v][u] = w + by
	return true
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.ids) }

// NumEdges returns the number of directed edges.
func (g *Graph) NumEdges() int { return g.edges }

// Nodes returns node identifiers in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// ID returns the identifier of node index i.
func (g *Graph) ID(i int) string { return g.ids[i] }

// Index returns the index of a node identifier.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Has reports whether id is a node of g.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Weight returns the weight of from->to, or 0 when there is no such edge.
func (g *Graph) Weight(from, to string) float64 {
	u, ok := g.index[from]
	if !ok {
		return 0
	}
	v, ok := g.index[to]
	if !ok {
		return 0
	}
	return g.succ[u][v]
}

// WeightAt returns the weight of the edge between node indices.
func (g *Graph) WeightAt(u, v int) float64 { return g.succ[u][v] }

// HasEdge reports whether from->to exists.
func (g *Graph) HasEdge(from, to string) bool { return g.Weight(from, to) > 0 }

// Successors returns the sorted indices of the out-neighbours of u.
func (g *Graph) Successors(u int) []int { return sortedKeys(g.succ[u]) }

// Predecessors returns the sorted indices of the in-neighbours of v.
func (g *Graph) Predecessors(v int) []int { return sortedKeys(g.pred[v]) }

// OutDegree returns the (optionally weighted) out-degree of node index u.
func (g *Graph) OutDegree(u int, weighted bool) float64 {
	if !weighted {
		return float64(len(g.succ[u]))
	}
	var d float64
	for _, w := range g.succ[u] {
		d += w
	}
	return d
}

// InDegree returns the (optionally weighted) in-degree of node index v.
func (g *Graph) InDegree(v int, weighted bool) float64 {
	if !weighted {
		return float64(len(g.pred[v]))
	}
	var d float64
	for _, w := range g.pred[v] {
		d += w
	}
	return d
}

// Edges returns every edge ordered by source then target insertion order.
func (g *Graph) Edges() []WeightedEdge {
	out := make([]WeightedEdge, 0, g.edges)
	for u := range g.ids {
		for _, v := range g.Successors(u) {
			out = append(out, WeightedEdge{From: g.ids[u], To: g.ids[v], Weight: g.succ[u][v]})
		}
	}
	return out
}

// Induced returns the subgraph on the given nodes. Nodes not in g are ignored;
// isolated members are kept.
func (g *Graph) Induced(nodes []string) *Graph {
	sub := New()
	keep := make(map[int]bool, len(nodes))
	for _, id := range nodes {
		if i, ok := g.index[id]; ok {
			keep[i] = true
			sub.AddNode(id)
		}
	}
	for _, id := range sub.ids {
		u := g.index[id]
		for _, v := range g.Successors(u) {
			if keep[v] {
				sub.SetEdge(id, g.ids[v], g.succ[u][v])
			}
		}
	}
	return sub
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
