// Package louvain implements multi-level modularity optimization on an
// undirected weighted graph.
package louvain

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// gainEpsilon absorbs floating point noise when comparing modularity gains.
const gainEpsilon = 1e-12

// Result represents the algorithm output
type Result struct {
	Levels     []LevelInfo `json:"levels"`
	Membership []int       `json:"membership"` // membership[i] = community of input node i
	Modularity float64     `json:"modularity"`
	NumLevels  int         `json:"num_levels"`
	Statistics Statistics  `json:"statistics"`
}

// NumCommunities returns the number of distinct communities in Membership.
func (r *Result) NumCommunities() int {
	max := -1
	for _, c := range r.Membership {
		if c > max {
			max = c
		}
	}
	return max + 1
}

// LevelInfo contains information about each hierarchical level
type LevelInfo struct {
	Level          int     `json:"level"`
	NumNodes       int     `json:"num_nodes"`
	NumCommunities int     `json:"num_communities"`
	Modularity     float64 `json:"modularity"`
	NumMoves       int     `json:"num_moves"`
	Iterations     int     `json:"iterations"`
	RuntimeMS      int64   `json:"runtime_ms"`
}

// Statistics contains algorithm performance metrics
type Statistics struct {
	TotalIterations int   `json:"total_iterations"`
	TotalMoves      int   `json:"total_moves"`
	RuntimeMS       int64 `json:"runtime_ms"`
	MemoryPeakMB    int64 `json:"memory_peak_mb"`
}

// Community represents the state of communities (simple arrays)
type Community struct {
	NodeToCommunity          []int     // nodeToComm[i] = community ID of node i
	CommunitySizes           []int     // number of nodes in community c
	CommunityWeights         []float64 // sum of degrees in community c
	CommunityInternalWeights []float64 // internal weight of c, both directions counted
	NumCommunities           int
}

// NewCommunity initializes each node in its own community
func NewCommunity(graph *Graph) *Community {
	n := graph.NumNodes
	comm := &Community{
		NodeToCommunity:          make([]int, n),
		CommunitySizes:           make([]int, n),
		CommunityWeights:         make([]float64, n),
		CommunityInternalWeights: make([]float64, n),
		NumCommunities:           n,
	}
	for i := 0; i < n; i++ {
		comm.NodeToCommunity[i] = i
		comm.CommunitySizes[i] = 1
		comm.CommunityWeights[i] = graph.Degrees[i]
		comm.CommunityInternalWeights[i] = 2 * graph.SelfLoops[i]
	}
	return comm
}

// CalculateModularity computes Newman's modularity at the given resolution
func CalculateModularity(graph *Graph, comm *Community, resolution float64) float64 {
	if graph.TotalWeight == 0 {
		return 0.0
	}

	modularity := 0.0
	m2 := 2.0 * graph.TotalWeight
	for c := 0; c < comm.NumCommunities; c++ {
		if comm.CommunitySizes[c] == 0 {
			continue
		}
		total := comm.CommunityWeights[c] / m2
		modularity += comm.CommunityInternalWeights[c]/m2 - resolution*total*total
	}
	return modularity
}

// CalculateModularityGain returns the modularity change of inserting an
// isolated node into targetComm, scaled by the total weight m.
func CalculateModularityGain(graph *Graph, comm *Community, node, targetComm int, edgeWeight, resolution float64) float64 {
	nodeDegree := graph.Degrees[node]
	commTotal := comm.CommunityWeights[targetComm]
	m2 := 2.0 * graph.TotalWeight

	return edgeWeight - resolution*nodeDegree*commTotal/m2
}

// GetEdgeWeightToComm calculates total edge weight from node to community
func GetEdgeWeightToComm(graph *Graph, comm *Community, node, targetComm int) float64 {
	weight := 0.0
	neighbors, weights := graph.GetNeighbors(node)
	for i, neighbor := range neighbors {
		if comm.NodeToCommunity[neighbor] == targetComm {
			weight += weights[i]
		}
	}
	return weight
}

func (comm *Community) remove(graph *Graph, node, c int, edgeWeight float64) {
	comm.CommunitySizes[c]--
	comm.CommunityWeights[c] -= graph.Degrees[node]
	comm.CommunityInternalWeights[c] -= 2 * (edgeWeight + graph.SelfLoops[node])
	comm.NodeToCommunity[node] = -1
}

func (comm *Community) insert(graph *Graph, node, c int, edgeWeight float64) {
	comm.CommunitySizes[c]++
	comm.CommunityWeights[c] += graph.Degrees[node]
	comm.CommunityInternalWeights[c] += 2 * (edgeWeight + graph.SelfLoops[node])
	comm.NodeToCommunity[node] = c
}

// MoveNode moves a node to a different community
func MoveNode(graph *Graph, comm *Community, node, oldComm, newComm int) {
	if oldComm == newComm {
		return
	}
	comm.remove(graph, node, oldComm, GetEdgeWeightToComm(graph, comm, node, oldComm))
	comm.insert(graph, node, newComm, GetEdgeWeightToComm(graph, comm, node, newComm))
}

// OneLevel performs one level of local optimization. Nodes are visited in an
// order drawn from rng; among equal gains the current community wins, then
// the lowest community ID.
func OneLevel(ctx context.Context, graph *Graph, comm *Community, config *Config, rng *rand.Rand, logger zerolog.Logger) (int, int, error) {
	totalMoves := 0
	resolution := config.Resolution()

	nodes := make([]int, graph.NumNodes)
	for i := range nodes {
		nodes[i] = i
	}

	iteration := 0
	for ; iteration < config.MaxIterations(); iteration++ {
		select {
		case <-ctx.Done():
			return totalMoves, iteration, ctx.Err()
		default:
		}

		iterationMoves := 0
		rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })

		for _, node := range nodes {
			oldComm := comm.NodeToCommunity[node]

			neighborComms := make(map[int]float64)
			neighbors, weights := graph.GetNeighbors(node)
			for i, neighbor := range neighbors {
				neighborComms[comm.NodeToCommunity[neighbor]] += weights[i]
			}
			candidates := make([]int, 0, len(neighborComms))
			for c := range neighborComms {
				if c != oldComm {
					candidates = append(candidates, c)
				}
			}
			sort.Ints(candidates)

			comm.remove(graph, node, oldComm, neighborComms[oldComm])

			bestComm := oldComm
			bestGain := CalculateModularityGain(graph, comm, node, oldComm, neighborComms[oldComm], resolution)
			for _, c := range candidates {
				gain := CalculateModularityGain(graph, comm, node, c, neighborComms[c], resolution)
				if gain > bestGain+gainEpsilon {
					bestComm = c
					bestGain = gain
				}
			}

			comm.insert(graph, node, bestComm, neighborComms[bestComm])
			if bestComm != oldComm {
				iterationMoves++
			}
		}

		totalMoves += iterationMoves

		if config.EnableProgress() && iteration%10 == 0 {
			logger.Info().
				Int("iteration", iteration+1).
				Int("moves", iterationMoves).
				Float64("modularity", CalculateModularity(graph, comm, resolution)).
				Msg("Local optimization progress")
		}

		if iterationMoves == 0 {
			logger.Debug().Int("iteration", iteration+1).Msg("Converged: no moves")
			iteration++
			break
		}
	}

	return totalMoves, iteration, nil
}

// AggregateGraph creates a super-graph whose nodes are the non-empty
// communities, numbered by first appearance in node order. It also returns
// the super-node of every node of graph.
func AggregateGraph(graph *Graph, comm *Community, logger zerolog.Logger) (*Graph, []int, error) {
	commToSuper := make(map[int]int)
	mapping := make([]int, graph.NumNodes)
	for node := 0; node < graph.NumNodes; node++ {
		c := comm.NodeToCommunity[node]
		s, ok := commToSuper[c]
		if !ok {
			s = len(commToSuper)
			commToSuper[c] = s
		}
		mapping[node] = s
	}

	numSuperNodes := len(commToSuper)
	if numSuperNodes == 0 {
		return nil, nil, fmt.Errorf("no valid communities found")
	}

	superEdges := make(map[[2]int]float64)
	for node := 0; node < graph.NumNodes; node++ {
		si := mapping[node]
		if loop := graph.SelfLoops[node]; loop > 0 {
			superEdges[[2]int{si, si}] += loop
		}
		neighbors, weights := graph.GetNeighbors(node)
		for i, neighbor := range neighbors {
			if neighbor < node {
				continue
			}
			sj := mapping[neighbor]
			if sj < si {
				superEdges[[2]int{sj, si}] += weights[i]
			} else {
				superEdges[[2]int{si, sj}] += weights[i]
			}
		}
	}

	keys := make([][2]int, 0, len(superEdges))
	for k := range superEdges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a][0] != keys[b][0] {
			return keys[a][0] < keys[b][0]
		}
		return keys[a][1] < keys[b][1]
	})

	superGraph := NewGraph(numSuperNodes)
	for _, k := range keys {
		if err := superGraph.AddEdge(k[0], k[1], superEdges[k]); err != nil {
			return nil, nil, err
		}
	}

	logger.Debug().
		Int("original_nodes", graph.NumNodes).
		Int("super_nodes", numSuperNodes).
		Float64("compression_ratio", float64(numSuperNodes)/float64(graph.NumNodes)).
		Msg("Graph aggregation completed")

	return superGraph, mapping, nil
}

// Run executes the complete Louvain algorithm
func Run(graph *Graph, config *Config, ctx context.Context) (*Result, error) {
	startTime := time.Now()
	logger := config.Logger()

	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}

	logger.Debug().
		Int("nodes", graph.NumNodes).
		Float64("total_weight", graph.TotalWeight).
		Msg("Starting Louvain algorithm")

	result := &Result{Levels: make([]LevelInfo, 0)}
	membership := make([]int, graph.NumNodes)
	for i := range membership {
		membership[i] = i
	}

	if graph.TotalWeight > 0 {
		rng := rand.New(rand.NewSource(config.RandomSeed()))
		resolution := config.Resolution()
		current := graph

		for level := 0; level < config.MaxLevels(); level++ {
			levelStart := time.Now()
			comm := NewCommunity(current)
			initialMod := CalculateModularity(current, comm, resolution)

			moves, iterations, err := OneLevel(ctx, current, comm, config, rng, logger)
			if err != nil {
				return nil, fmt.Errorf("local optimization failed at level %d: %w", level, err)
			}
			finalMod := CalculateModularity(current, comm, resolution)

			superGraph, mapping, err := AggregateGraph(current, comm, logger)
			if err != nil {
				return nil, fmt.Errorf("aggregation failed at level %d: %w", level, err)
			}
			for i := range membership {
				membership[i] = mapping[membership[i]]
			}

			result.Levels = append(result.Levels, LevelInfo{
				Level:          level,
				NumNodes:       current.NumNodes,
				NumCommunities: superGraph.NumNodes,
				Modularity:     finalMod,
				NumMoves:       moves,
				Iterations:     iterations,
				RuntimeMS:      time.Since(levelStart).Milliseconds(),
			})
			result.Statistics.TotalMoves += moves
			result.Statistics.TotalIterations += iterations

			if moves == 0 || finalMod-initialMod < config.MinModularityGain() {
				logger.Debug().Int("level", level).Msg("No improvement, stopping")
				break
			}
			if superGraph.NumNodes == 1 {
				logger.Debug().Int("level", level).Msg("Single community remaining, stopping")
				break
			}
			current = superGraph
		}
	}

	result.Membership = renumber(membership)
	result.NumLevels = len(result.Levels)
	result.Modularity = Modularity(graph, result.Membership, config.Resolution())
	result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()
	result.Statistics.MemoryPeakMB = getMemoryUsage()

	logger.Debug().
		Int("levels", result.NumLevels).
		Int("communities", result.NumCommunities()).
		Float64("final_modularity", result.Modularity).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Louvain algorithm completed")

	return result, nil
}

// Modularity evaluates a membership vector on graph.
func Modularity(graph *Graph, membership []int, resolution float64) float64 {
	k := 0
	for _, c := range membership {
		if c+1 > k {
			k = c + 1
		}
	}
	comm := &Community{
		NodeToCommunity:          membership,
		CommunitySizes:           make([]int, k),
		CommunityWeights:         make([]float64, k),
		CommunityInternalWeights: make([]float64, k),
		NumCommunities:           k,
	}
	for node, c := range membership {
		comm.CommunitySizes[c]++
		comm.CommunityWeights[c] += graph.Degrees[node]
		comm.CommunityInternalWeights[c] += 2*graph.SelfLoops[node] + GetEdgeWeightToComm(graph, comm, node, c)
	}
	return CalculateModularity(graph, comm, resolution)
}

// renumber relabels communities 0..k-1 by first appearance.
func renumber(membership []int) []int {
	ids := make(map[int]int)
	out := make([]int, len(membership))
	for i, c := range membership {
		id, ok := ids[c]
		if !ok {
			id = len(ids)
			ids[c] = id
		}
		out[i] = id
	}
	return out
}

// getMemoryUsage returns current memory usage in MB
func getMemoryUsage() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
