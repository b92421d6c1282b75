package evaluation

import (
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
)

// MixingClasses is the row and column order of a Mixing matrix.
var MixingClasses = []string{"c", "m", "p", labeling.OtherClass}

// Mixing is the normalized category mixing matrix of a directed graph:
// entry (i, j) is the fraction of edges going from class i to class j.
type Mixing struct {
	Classes []string
	Matrix  *mat.Dense
	Edges   int
}

// AttributeMixing counts every edge of g once, unweighted.
func AttributeMixing(g *graph.Graph, cats labeling.Categories) Mixing {
	index := make(map[string]int, len(MixingClasses))
	for i, c := range MixingClasses {
		index[c] = i
	}
	k := len(MixingClasses)
	m := mat.NewDense(k, k, nil)

	edges := g.Edges()
	for _, e := range edges {
		i := index[cats.TypeOf(e.From).Class()]
		j := index[cats.TypeOf(e.To).Class()]
		m.Set(i, j, m.At(i, j)+1)
	}
	if len(edges) > 0 {
		m.Scale(1/float64(len(edges)), m)
	}
	return Mixing{Classes: MixingClasses, Matrix: m, Edges: len(edges)}
}

// Assortativity returns the attribute assortativity coefficient
// r = (Σ e_ii - Σ a_i b_i) / (1 - Σ a_i b_i). It is 0 when the graph has no
// edges or every edge stays within one class.
func (mx Mixing) Assortativity() float64 {
	if mx.Edges == 0 {
		return 0
	}
	k, _ := mx.Matrix.Dims()
	trace := mat.Trace(mx.Matrix)
	ab := 0.0
	for i := 0; i < k; i++ {
		ab += mat.Sum(mx.Matrix.RowView(i)) * mat.Sum(mx.Matrix.ColView(i))
	}
	if ab == 1 {
		return 0
	}
	return (trace - ab) / (1 - ab)
}

// Dict returns the mixing matrix as nested maps, skipping empty entries.
func (mx Mixing) Dict() map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for i, from := range mx.Classes {
		for j, to := range mx.Classes {
			v := mx.Matrix.At(i, j)
			if v == 0 {
				continue
			}
			if out[from] == nil {
				out[from] = make(map[string]float64)
			}
			out[from][to] = v
		}
	}
	return out
}
