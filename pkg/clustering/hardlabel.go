package clustering

import "gonum.org/v1/gonum/floats"

// HardLabelRule picks a single cluster from a membership vector. ok is false
// when the node should stay unassigned.
type HardLabelRule interface {
	Label(weights []float64) (cluster int, ok bool)
}

// ArgMax assigns the cluster with the largest membership; ties go to the
// lowest index.
type ArgMax struct{}

func (ArgMax) Label(weights []float64) (int, bool) {
	if len(weights) == 0 {
		return 0, false
	}
	return floats.MaxIdx(weights), true
}

// Threshold behaves like ArgMax but leaves nodes unassigned when their
// largest membership is below Min.
type Threshold struct {
	Min float64
}

func (t Threshold) Label(weights []float64) (int, bool) {
	if len(weights) == 0 {
		return 0, false
	}
	i := floats.MaxIdx(weights)
	return i, weights[i] >= t.Min
}

// RuleFor returns ArgMax for min <= 0 and Threshold otherwise.
func RuleFor(min float64) HardLabelRule {
	if min <= 0 {
		return ArgMax{}
	}
	return Threshold{Min: min}
}
