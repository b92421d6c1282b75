// Package transform derives alternative adjacency representations from a
// directed adjacency matrix.
package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// ZeroDegreePolicy decides how degree-discounted symmetrization treats nodes
// whose in- or out-degree is zero.
type ZeroDegreePolicy string

const (
	// Isolate uses 0 for d^-x when d is zero, so the node has no similarity
	// contribution through that degree.
	Isolate ZeroDegreePolicy = "isolate"
	// Fail returns ErrDegenerateMatrix.
	Fail ZeroDegreePolicy = "fail"
)

// Options holds the degree-discount exponents and zero-degree policy.
type Options struct {
	Alpha      float64          `yaml:"alpha" json:"alpha"`
	Beta       float64          `yaml:"beta" json:"beta"`
	ZeroDegree ZeroDegreePolicy `yaml:"zero_degree" json:"zero_degree"`
}

// DefaultOptions returns α=β=0.5 with the isolate policy.
func DefaultOptions() Options {
	return Options{Alpha: 0.5, Beta: 0.5, ZeroDegree: Isolate}
}

// Transpose returns Aᵗ, the incoming-weight view.
func Transpose(a mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(a.T())
}

// SumSymmetrize returns A + Aᵗ.
func SumSymmetrize(a mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Add(a, a.T())
	return &out
}

// ProductSymmetrize returns A·Aᵗ.
func ProductSymmetrize(a mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, a.T())
	return &out
}

// BibliometricSymmetrize returns A·Aᵗ + Aᵗ·A.
func BibliometricSymmetrize(a mat.Matrix) *mat.Dense {
	var co, cc mat.Dense
	co.Mul(a, a.T())
	cc.Mul(a.T(), a)
	co.Add(&co, &cc)
	return &co
}

// DegreeDiscounted returns
//
//	Dout^-α A Din^-β Aᵗ Dout^-α + Din^-β Aᵗ Dout^-α A Din^-β
//
// where Dout and Din are the diagonal row and column sums of A.
func DegreeDiscounted(a mat.Matrix, opts Options) (*mat.Dense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("degree-discounted symmetrization of %dx%d matrix: %w", r, c, models.ErrDegenerateMatrix)
	}
	out := make([]float64, r)
	in := make([]float64, r)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			v := a.At(i, j)
			out[i] += v
			in[j] += v
		}
	}
	dOut, err := inversePower(out, opts.Alpha, opts.ZeroDegree, "out")
	if err != nil {
		return nil, err
	}
	dIn, err := inversePower(in, opts.Beta, opts.ZeroDegree, "in")
	if err != nil {
		return nil, err
	}

	var bib, cit mat.Dense
	bib.Mul(dOut, a)
	bib.Mul(&bib, dIn)
	bib.Mul(&bib, a.T())
	bib.Mul(&bib, dOut)

	cit.Mul(dIn, a.T())
	cit.Mul(&cit, dOut)
	cit.Mul(&cit, a)
	cit.Mul(&cit, dIn)

	bib.Add(&bib, &cit)
	return &bib, nil
}

func inversePower(deg []float64, exp float64, policy ZeroDegreePolicy, side string) (*mat.DiagDense, error) {
	d := make([]float64, len(deg))
	for i, v := range deg {
		if v == 0 {
			if policy == Fail {
				return nil, fmt.Errorf("node %d has zero %s-degree: %w", i, side, models.ErrDegenerateMatrix)
			}
			continue
		}
		d[i] = math.Pow(v, -exp)
	}
	return mat.NewDiagDense(len(d), d), nil
}

// DegreeVectorEmbed returns the n×2n matrix whose row i is row i of A
// followed by row i of Aᵗ.
func DegreeVectorEmbed(a mat.Matrix) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, 2*c, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(a)
	out.Slice(0, r, c, 2*c).(*mat.Dense).Copy(a.T())
	return out
}
