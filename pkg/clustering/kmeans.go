package clustering

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// kmeans is Lloyd's algorithm with k-means++ seeding and nInit restarts; the
// run with the lowest inertia wins.
type kmeans struct {
	k       int
	nInit   int
	maxIter int
	tol     float64
	rng     *rand.Rand
}

type kmeansResult struct {
	labels     []int
	centers    [][]float64
	inertia    float64
	iterations int
	converged  bool
}

func (km kmeans) fit(points [][]float64) kmeansResult {
	var best kmeansResult
	best.inertia = math.Inf(1)
	runs := km.nInit
	if runs < 1 {
		runs = 1
	}
	for r := 0; r < runs; r++ {
		res := km.run(points)
		if res.inertia < best.inertia {
			best = res
		}
	}
	return best
}

func (km kmeans) run(points [][]float64) kmeansResult {
	centers := km.seed(points)
	labels := make([]int, len(points))
	dim := len(points[0])

	res := kmeansResult{}
	for it := 0; it < km.maxIter; it++ {
		res.iterations = it + 1
		for i, p := range points {
			labels[i], _ = nearest(p, centers)
		}

		next := make([][]float64, km.k)
		counts := make([]int, km.k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, p := range points {
			floats.Add(next[labels[i]], p)
			counts[labels[i]]++
		}
		shift := 0.0
		for c := range next {
			if counts[c] == 0 {
				// Empty cluster keeps its previous center.
				copy(next[c], centers[c])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
			d := floats.Distance(next[c], centers[c], 2)
			shift += d * d
		}
		centers = next
		if shift <= km.tol {
			res.converged = true
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		var d float64
		labels[i], d = nearest(p, centers)
		inertia += d * d
	}
	res.labels = labels
	res.centers = centers
	res.inertia = inertia
	return res
}

// seed picks initial centers with k-means++.
func (km kmeans) seed(points [][]float64) [][]float64 {
	centers := make([][]float64, 0, km.k)
	first := points[km.rng.Intn(len(points))]
	centers = append(centers, append([]float64(nil), first...))

	dist := make([]float64, len(points))
	for len(centers) < km.k {
		total := 0.0
		for i, p := range points {
			_, d := nearest(p, centers)
			dist[i] = d * d
			total += dist[i]
		}
		next := 0
		if total > 0 {
			target := km.rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target <= 0 {
					next = i
					break
				}
				next = i
			}
		} else {
			next = km.rng.Intn(len(points))
		}
		centers = append(centers, append([]float64(nil), points[next]...))
	}
	return centers
}

func nearest(p []float64, centers [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := floats.Distance(p, center, 2); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}
