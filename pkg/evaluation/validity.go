package evaluation

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Validity holds the external validity of a clustering against classes.
type Validity struct {
	Homogeneity  float64
	Completeness float64
	VMeasure     float64
}

// ExternalValidity compares predicted cluster labels with ground-truth
// classes. Homogeneity is 1 when every cluster holds a single class,
// completeness is 1 when every class sits in a single cluster, and V-measure
// is their harmonic mean.
func ExternalValidity(classes, clusters []string) Validity {
	n := len(classes)
	if n == 0 || n != len(clusters) {
		return Validity{Homogeneity: 1, Completeness: 1, VMeasure: 1}
	}

	classCount := make(map[string]int)
	clusterCount := make(map[string]int)
	joint := make(map[string]int)
	for i := range classes {
		classCount[classes[i]]++
		clusterCount[clusters[i]]++
		joint[classes[i]+"\x00"+clusters[i]]++
	}

	hClass := entropy(classCount, n)
	hCluster := entropy(clusterCount, n)
	hJoint := entropy(joint, n)

	v := Validity{Homogeneity: 1, Completeness: 1}
	if hClass > 0 {
		// H(C|K) = H(C,K) - H(K)
		v.Homogeneity = 1 - (hJoint-hCluster)/hClass
	}
	if hCluster > 0 {
		v.Completeness = 1 - (hJoint-hClass)/hCluster
	}
	if v.Homogeneity+v.Completeness > 0 {
		v.VMeasure = 2 * v.Homogeneity * v.Completeness / (v.Homogeneity + v.Completeness)
	}
	return v
}

// entropy returns the Shannon entropy in nats of the count distribution,
// summed in key order so repeated calls agree bit for bit.
func entropy(counts map[string]int, n int) float64 {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := make([]float64, len(keys))
	for i, k := range keys {
		p[i] = float64(counts[k]) / float64(n)
	}
	return stat.Entropy(p)
}
