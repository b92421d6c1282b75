package graph

// Undirected is the undirected projection of a Graph. Reciprocal directed
// edges collapse into one edge whose weight is the sum of both directions.
type Undirected struct {
	ids         []string
	adj         []map[int]float64
	totalWeight float64
}

// Undirected projects g onto an undirected graph with the same node order.
func (g *Graph) Undirected() *Undirected {
	u := &Undirected{
		ids: g.Nodes(),
		adj: make([]map[int]float64, len(g.ids)),
	}
	for i := range u.adj {
		u.adj[i] = make(map[int]float64)
	}
	for i := range g.ids {
		for j, w := range g.succ[i] {
			u.adj[i][j] += w
			u.adj[j][i] += w
			u.totalWeight += w
		}
	}
	return u
}

// Unweighted returns a copy of u where every edge has weight one.
func (u *Undirected) Unweighted() *Undirected {
	out := &Undirected{ids: u.ids, adj: make([]map[int]float64, len(u.adj))}
	for i, nbrs := range u.adj {
		out.adj[i] = make(map[int]float64, len(nbrs))
		for j := range nbrs {
			out.adj[i][j] = 1
			if i < j {
				out.totalWeight++
			}
		}
	}
	return out
}

// NumNodes returns the number of nodes.
func (u *Undirected) NumNodes() int { return len(u.ids) }

// Nodes returns node identifiers in projection order.
func (u *Undirected) Nodes() []string {
	out := make([]string, len(u.ids))
	copy(out, u.ids)
	return out
}

// Neighbors returns the sorted neighbours of i and the matching weights.
func (u *Undirected) Neighbors(i int) ([]int, []float64) {
	nbrs := sortedKeys(u.adj[i])
	weights := make([]float64, len(nbrs))
	for k, j := range nbrs {
		weights[k] = u.adj[i][j]
	}
	return nbrs, weights
}

// Weight returns the weight of the undirected edge {i, j}.
func (u *Undirected) Weight(i, j int) float64 { return u.adj[i][j] }

// Degree returns the number of distinct neighbours of i.
func (u *Undirected) Degree(i int) int { return len(u.adj[i]) }

// TotalWeight returns the sum of undirected edge weights.
func (u *Undirected) TotalWeight() float64 { return u.totalWeight }

// MaxWeight returns the largest edge weight, or 0 for an edgeless graph.
func (u *Undirected) MaxWeight() float64 {
	var m float64
	for _, nbrs := range u.adj {
		for _, w := range nbrs {
			if w > m {
				m = w
			}
		}
	}
	return m
}
