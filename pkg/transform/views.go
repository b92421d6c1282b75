package transform

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
)

// View names one adjacency representation of a graph.
type View struct {
	Name string
	// Features marks views whose rows are per-node feature vectors rather
	// than a square similarity matrix.
	Features bool
	build    func(g *graph.Graph, opts Options) (*mat.Dense, error)
}

// Build derives the view's matrix from g in node insertion order.
func (v View) Build(g *graph.Graph, opts Options) (*mat.Dense, error) {
	m, err := v.build(g, opts)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", v.Name, err)
	}
	return m, nil
}

func directed(weighted bool, f func(*mat.Dense) *mat.Dense) func(*graph.Graph, Options) (*mat.Dense, error) {
	return func(g *graph.Graph, _ Options) (*mat.Dense, error) {
		a, err := graph.Adjacency(g, weighted)
		if err != nil {
			return nil, err
		}
		if f == nil {
			return a, nil
		}
		return f(a), nil
	}
}

func undirected(weighted bool) func(*graph.Graph, Options) (*mat.Dense, error) {
	return func(g *graph.Graph, _ Options) (*mat.Dense, error) {
		return graph.UndirectedAdjacency(g, weighted)
	}
}

func transposeDense(a *mat.Dense) *mat.Dense { return Transpose(a) }
func sumDense(a *mat.Dense) *mat.Dense       { return SumSymmetrize(a) }
func productDense(a *mat.Dense) *mat.Dense   { return ProductSymmetrize(a) }
func bibDense(a *mat.Dense) *mat.Dense       { return BibliometricSymmetrize(a) }
func vectorsDense(a *mat.Dense) *mat.Dense   { return DegreeVectorEmbed(a) }

var views = map[string]View{
	"undirected_weighted":   {Name: "undirected_weighted", build: undirected(true)},
	"undirected_unweighted": {Name: "undirected_unweighted", build: undirected(false)},
	"outgoing_weighted":     {Name: "outgoing_weighted", build: directed(true, nil)},
	"outgoing_unweighted":   {Name: "outgoing_unweighted", build: directed(false, nil)},
	"incoming_weighted":     {Name: "incoming_weighted", build: directed(true, transposeDense)},
	"incoming_unweighted":   {Name: "incoming_unweighted", build: directed(false, transposeDense)},
	"vectors_weighted":      {Name: "vectors_weighted", Features: true, build: directed(true, vectorsDense)},
	"vectors_unweighted":    {Name: "vectors_unweighted", Features: true, build: directed(false, vectorsDense)},
	"sum":                   {Name: "sum", build: directed(true, sumDense)},
	"product":               {Name: "product", build: directed(true, productDense)},
	"bibliometric":          {Name: "bibliometric", build: directed(true, bibDense)},
	"degree_discounted": {Name: "degree_discounted", build: func(g *graph.Graph, opts Options) (*mat.Dense, error) {
		a, err := graph.Adjacency(g, true)
		if err != nil {
			return nil, err
		}
		return DegreeDiscounted(a, opts)
	}},
}

// DefaultViews are the views swept by default, in sweep order.
var DefaultViews = []string{
	"undirected_weighted",
	"undirected_unweighted",
	"outgoing_weighted",
	"outgoing_unweighted",
	"incoming_unweighted",
	"incoming_weighted",
	"vectors_weighted",
	"vectors_unweighted",
}

// Lookup returns the view registered under name.
func Lookup(name string) (View, error) {
	v, ok := views[name]
	if !ok {
		return View{}, fmt.Errorf("unknown view %q", name)
	}
	return v, nil
}

// Names lists every registered view.
func Names() []string {
	out := make([]string, 0, len(views))
	for name := range views {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
