package labeling

import (
	"github.com/gilchrisn/interaction-clustering/pkg/graph"
)

// DegreeVector counts the weighted interactions a node exchanges with each
// category. OOut is the out-weight sent to nodes outside every category.
type DegreeVector struct {
	Node string  `json:"node"`
	Type string  `json:"type"`
	CIn  float64 `json:"c_indeg"`
	MIn  float64 `json:"m_indeg"`
	PIn  float64 `json:"p_indeg"`
	COut float64 `json:"c_outdeg"`
	MOut float64 `json:"m_outdeg"`
	POut float64 `json:"p_outdeg"`
	TOut float64 `json:"t_outdeg"`
	OOut float64 `json:"o_outdeg"`
}

// DegreeVectors computes a DegreeVector for every node of g in node order.
// Membership is tested per category list, so a node listed twice counts
// toward both.
func DegreeVectors(g *graph.Graph, cats Categories) []DegreeVector {
	out := make([]DegreeVector, g.NumNodes())
	for i := 0; i < g.NumNodes(); i++ {
		id := g.ID(i)
		v := DegreeVector{Node: id, Type: cats.TypeOf(id).Class()}
		for _, j := range g.Predecessors(i) {
			w := g.WeightAt(j, i)
			src := g.ID(j)
			if cats.Celebrities.Has(src) {
				v.CIn += w
			}
			if cats.Media.Has(src) {
				v.MIn += w
			}
			if cats.Politicians.Has(src) {
				v.PIn += w
			}
		}
		for _, j := range g.Successors(i) {
			w := g.WeightAt(i, j)
			dst := g.ID(j)
			v.TOut += w
			if cats.Celebrities.Has(dst) {
				v.COut += w
			}
			if cats.Media.Has(dst) {
				v.MOut += w
			}
			if cats.Politicians.Has(dst) {
				v.POut += w
			}
		}
		v.OOut = v.TOut - v.COut - v.MOut - v.POut
		out[i] = v
	}
	return out
}
