package clustering

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// Spectral partitions the rows of Input.Matrix into exactly K clusters using
// a cosine affinity and a normalized spectral embedding.
type Spectral struct {
	Seed      int64
	NInit     int
	MaxIter   int
	Tolerance float64
}

// NewSpectral returns Spectral with 10 k-means restarts of up to 300 iterations.
func NewSpectral(seed int64) *Spectral {
	return &Spectral{Seed: seed, NInit: 10, MaxIter: 300, Tolerance: 1e-8}
}

func (s *Spectral) Name() string { return MethodSpectral }
func (s *Spectral) UsesK() bool  { return true }

func (s *Spectral) Cluster(ctx context.Context, in Input) (*Result, error) {
	n, err := checkMatrixInput(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embedding, err := SpectralEmbedding(CosineAffinity(in.Matrix), in.K)
	if err != nil {
		return nil, err
	}

	points := make([][]float64, n)
	for i := range points {
		points[i] = mat.Row(nil, i, embedding)
	}
	km := kmeans{
		k:       in.K,
		nInit:   s.NInit,
		maxIter: s.MaxIter,
		tol:     s.Tolerance,
		rng:     rand.New(rand.NewSource(s.Seed)),
	}
	fit := km.fit(points)

	assignment, k := labelsFromIndices(in.Nodes, fit.labels)
	return &Result{
		Method:      MethodSpectral,
		Assignment:  assignment,
		NumClusters: k,
		Iterations:  fit.iterations,
		Converged:   fit.converged,
	}, nil
}

// CosineAffinity returns the pairwise cosine similarity of the rows of x.
// Rows of zeros have zero similarity to everything.
func CosineAffinity(x mat.Matrix) *mat.SymDense {
	r, c := x.Dims()
	rows := make([][]float64, r)
	norms := make([]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		mat.Row(rows[i], i, x)
		norms[i] = floats.Norm(rows[i], 2)
	}
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		if norms[i] == 0 {
			continue
		}
		for j := i; j < r; j++ {
			if norms[j] == 0 {
				continue
			}
			s.SetSym(i, j, floats.Dot(rows[i], rows[j])/(norms[i]*norms[j]))
		}
	}
	return s
}

// SpectralEmbedding returns the n×k embedding given by the k leading
// eigenvectors of D^-1/2 S D^-1/2, scaled by D^-1/2. The diagonal of s is
// ignored and isolated rows use degree 1. Each eigenvector's sign is fixed so
// that its largest-magnitude entry is positive.
func SpectralEmbedding(s mat.Symmetric, k int) (*mat.Dense, error) {
	n := s.SymmetricDim()
	if k < 1 || k > n {
		return nil, fmt.Errorf("embedding of %d nodes into %d dimensions: %w", n, k, models.ErrDegenerateMatrix)
	}

	dd := make([]float64, n)
	for i := 0; i < n; i++ {
		deg := 0.0
		for j := 0; j < n; j++ {
			if i != j {
				deg += s.At(i, j)
			}
		}
		if deg <= 0 {
			deg = 1
		}
		dd[i] = math.Sqrt(deg)
	}

	norm := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			norm.SetSym(i, j, s.At(i, j)/(dd[i]*dd[j]))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(norm, true); !ok {
		return nil, fmt.Errorf("eigendecomposition did not converge: %w", models.ErrDegenerateMatrix)
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Eigenvalues are ascending, so the leading vectors are the last k columns.
	embedding := mat.NewDense(n, k, nil)
	col := make([]float64, n)
	for c := 0; c < k; c++ {
		mat.Col(col, n-1-c, &vectors)
		maxIdx := 0
		for i, v := range col {
			if math.Abs(v) > math.Abs(col[maxIdx]) {
				maxIdx = i
			}
		}
		sign := 1.0
		if col[maxIdx] < 0 {
			sign = -1
		}
		for i, v := range col {
			embedding.Set(i, c, sign*v/dd[i])
		}
	}
	return embedding, nil
}
