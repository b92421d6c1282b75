// Package clustering runs the clustering strategies of a sweep behind one
// Method interface and normalizes their output to node -> label assignments.
package clustering

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

const (
	MethodLouvain  = "louvain"
	MethodSpectral = "spectral"
	MethodFuzzy    = "fuzzy"
)

// Assignment maps a node identifier to its cluster label "0".."k-1".
type Assignment map[string]string

// Clusters groups the assigned nodes by label, following nodes order.
func (a Assignment) Clusters(nodes []string) map[string][]string {
	out := make(map[string][]string)
	for _, n := range nodes {
		if label, ok := a[n]; ok {
			out[label] = append(out[label], n)
		}
	}
	return out
}

// Labels returns the distinct labels sorted numerically.
func (a Assignment) Labels() []string {
	seen := make(map[string]struct{})
	for _, l := range a {
		seen[l] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		x, errX := strconv.Atoi(out[i])
		y, errY := strconv.Atoi(out[j])
		if errX != nil || errY != nil {
			return out[i] < out[j]
		}
		return x < y
	})
	return out
}

// Input is what a Method clusters. Matrix rows align with Nodes. Methods that
// work on the graph itself ignore Matrix.
type Input struct {
	Nodes  []string
	Matrix *mat.Dense
	Graph  *graph.Graph
	K      int
}

// Result is the normalized output of one clustering invocation.
type Result struct {
	Method      string
	Assignment  Assignment
	NumClusters int
	// Modularity is set by Louvain.
	Modularity float64
	// Iterations and Converged are set by iterative methods.
	Iterations int
	Converged  bool
}

// Method is one clustering strategy.
type Method interface {
	Name() string
	// UsesK reports whether the method takes a target cluster count.
	UsesK() bool
	Cluster(ctx context.Context, in Input) (*Result, error)
}

// Registry manages available methods
type Registry struct {
	methods map[string]Method
}

// NewRegistry creates a registry holding the given methods.
func NewRegistry(methods ...Method) *Registry {
	r := &Registry{methods: make(map[string]Method)}
	for _, m := range methods {
		r.Register(m)
	}
	return r
}

// Register adds a method to the registry
func (r *Registry) Register(m Method) {
	r.methods[m.Name()] = m
}

// Get retrieves a method by name
func (r *Registry) Get(name string) (Method, bool) {
	m, ok := r.methods[name]
	return m, ok
}

// List returns all registered method names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// labelsFromIndices renumbers raw cluster indices by first appearance along
// nodes and returns the assignment and cluster count. Negative indices leave
// the node unassigned.
func labelsFromIndices(nodes []string, idx []int) (Assignment, int) {
	ids := make(map[int]int)
	out := make(Assignment, len(nodes))
	for i, n := range nodes {
		if idx[i] < 0 {
			continue
		}
		id, ok := ids[idx[i]]
		if !ok {
			id = len(ids)
			ids[idx[i]] = id
		}
		out[n] = strconv.Itoa(id)
	}
	return out, len(ids)
}

func checkMatrixInput(in Input) (int, error) {
	if len(in.Nodes) == 0 || in.Matrix == nil {
		return 0, fmt.Errorf("no nodes to cluster: %w", models.ErrInputData)
	}
	r, _ := in.Matrix.Dims()
	if r != len(in.Nodes) {
		return 0, fmt.Errorf("matrix has %d rows for %d nodes: %w", r, len(in.Nodes), models.ErrInputData)
	}
	if in.K < 1 || in.K > r {
		return 0, fmt.Errorf("k=%d with %d nodes: %w", in.K, r, models.ErrDegenerateMatrix)
	}
	return r, nil
}
