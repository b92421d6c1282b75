package clustering

import (
	"context"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FuzzyCMeans computes soft memberships of every row of Input.Matrix in K
// clusters. M is the fuzziness exponent; M <= 1 runs the crisp limit where
// each node belongs entirely to its nearest center.
type FuzzyCMeans struct {
	M       float64
	Error   float64
	MaxIter int
	Seed    int64
	// Rule turns memberships into hard labels for Cluster.
	Rule   HardLabelRule
	Logger zerolog.Logger
}

// NewFuzzyCMeans returns fuzzy c-means with m=1, tolerance 0.005, at most 1000
// iterations and argmax hard labels.
func NewFuzzyCMeans(seed int64, logger zerolog.Logger) *FuzzyCMeans {
	return &FuzzyCMeans{M: 1, Error: 0.005, MaxIter: 1000, Seed: seed, Rule: ArgMax{}, Logger: logger}
}

func (f *FuzzyCMeans) Name() string { return MethodFuzzy }
func (f *FuzzyCMeans) UsesK() bool  { return true }

// FuzzyResult holds soft memberships; row i of Membership belongs to Nodes[i].
type FuzzyResult struct {
	Nodes      []string
	Membership *mat.Dense
	Centers    *mat.Dense
	Iterations int
	Converged  bool
	// PartitionCoefficient is the fuzzy partition coefficient, 1 for a crisp partition.
	PartitionCoefficient float64
}

// MembershipWeights returns each node's membership per cluster.
func (r *FuzzyResult) MembershipWeights() map[string][]float64 {
	out := make(map[string][]float64, len(r.Nodes))
	for i, n := range r.Nodes {
		out[n] = mat.Row(nil, i, r.Membership)
	}
	return out
}

// ToHardLabels collapses memberships into an assignment. Nodes the rule
// rejects are left out.
func (r *FuzzyResult) ToHardLabels(rule HardLabelRule) (Assignment, int) {
	if rule == nil {
		rule = ArgMax{}
	}
	idx := make([]int, len(r.Nodes))
	for i := range r.Nodes {
		c, ok := rule.Label(mat.Row(nil, i, r.Membership))
		if !ok {
			c = -1
		}
		idx[i] = c
	}
	return labelsFromIndices(r.Nodes, idx)
}

// Fit runs the algorithm and returns the soft memberships.
func (f *FuzzyCMeans) Fit(ctx context.Context, in Input) (*FuzzyResult, error) {
	n, err := checkMatrixInput(in)
	if err != nil {
		return nil, err
	}
	_, dim := in.Matrix.Dims()
	c := in.K
	rng := rand.New(rand.NewSource(f.Seed))

	points := make([][]float64, n)
	for i := range points {
		points[i] = mat.Row(nil, i, in.Matrix)
	}

	u := mat.NewDense(n, c, nil)
	for i := 0; i < n; i++ {
		row := make([]float64, c)
		for j := range row {
			row[j] = rng.Float64()
		}
		floats.Scale(1/floats.Sum(row), row)
		u.SetRow(i, row)
	}

	centers := mat.NewDense(c, dim, nil)
	res := &FuzzyResult{Nodes: in.Nodes, Membership: u, Centers: centers}
	prev := mat.NewDense(n, c, nil)
	dist := make([]float64, c)

	for it := 0; it < f.MaxIter; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Iterations = it + 1
		prev.Copy(u)

		f.updateCenters(points, u, centers)

		for i, p := range points {
			for j := 0; j < c; j++ {
				d := floats.Distance(p, centers.RawRowView(j), 2)
				dist[j] = math.Max(d, epsilon)
			}
			u.SetRow(i, f.memberships(dist))
		}

		if membershipChange(u, prev) < f.Error {
			res.Converged = true
			break
		}
	}

	var uu mat.Dense
	uu.Mul(u.T(), u)
	res.PartitionCoefficient = mat.Trace(&uu) / float64(n)

	if !res.Converged {
		f.Logger.Warn().
			Int("k", c).
			Int("iterations", res.Iterations).
			Msg("fuzzy c-means reached max iterations without converging")
	}
	return res, nil
}

// membershipChange is the Frobenius norm of u - prev.
func membershipChange(u, prev *mat.Dense) float64 {
	return floats.Distance(u.RawMatrix().Data, prev.RawMatrix().Data, 2)
}

// epsilon is the distance floor that keeps the membership update finite.
const epsilon = 2.220446049250313e-16

func (f *FuzzyCMeans) updateCenters(points [][]float64, u, centers *mat.Dense) {
	c, dim := centers.Dims()
	for j := 0; j < c; j++ {
		num := make([]float64, dim)
		den := 0.0
		for i, p := range points {
			w := f.weight(u.At(i, j))
			if w == 0 {
				continue
			}
			floats.AddScaled(num, w, p)
			den += w
		}
		if den == 0 {
			continue
		}
		floats.Scale(1/den, num)
		centers.SetRow(j, num)
	}
}

func (f *FuzzyCMeans) weight(u float64) float64 {
	if f.M <= 1 {
		return u
	}
	return math.Pow(u, f.M)
}

func (f *FuzzyCMeans) memberships(dist []float64) []float64 {
	out := make([]float64, len(dist))
	if f.M <= 1 {
		out[floats.MinIdx(dist)] = 1
		return out
	}
	exp := 2 / (f.M - 1)
	for j := range dist {
		sum := 0.0
		for k := range dist {
			sum += math.Pow(dist[j]/dist[k], exp)
		}
		out[j] = 1 / sum
	}
	return out
}

// Cluster fits the memberships and collapses them with f.Rule.
func (f *FuzzyCMeans) Cluster(ctx context.Context, in Input) (*Result, error) {
	res, err := f.Fit(ctx, in)
	if err != nil {
		return nil, err
	}
	assignment, k := res.ToHardLabels(f.Rule)
	return &Result{
		Method:      MethodFuzzy,
		Assignment:  assignment,
		NumClusters: k,
		Iterations:  res.Iterations,
		Converged:   res.Converged,
	}, nil
}
