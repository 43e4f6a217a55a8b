package umap

import (
	"math"
	"sort"
)

const (
	smoothKTolerance = 1e-5
	minKDistScale    = 1e-3
	smoothKIters     = 64
)

// SmoothKNNDist computes, for every point, the distance to its
// localConnectivity-th nearest non-zero neighbor (rho) and the bandwidth
// sigma such that the neighbor memberships sum to log2(k) * bandwidth.
// knnDists rows are sorted ascending with the point itself at position 0.
func SmoothKNNDist(knnDists [][]float64, k int, localConnectivity, bandwidth float64) (sigmas, rhos []float64) {
	n := len(knnDists)
	sigmas = make([]float64, n)
	rhos = make([]float64, n)
	target := math.Log2(float64(k)) * bandwidth

	var meanAll float64
	var count int
	for _, row := range knnDists {
		for _, d := range row {
			meanAll += d
			count++
		}
	}
	if count > 0 {
		meanAll /= float64(count)
	}

	for i, row := range knnDists {
		nonZero := make([]float64, 0, len(row))
		for _, d := range row {
			if d > 0 {
				nonZero = append(nonZero, d)
			}
		}

		if float64(len(nonZero)) >= localConnectivity {
			index := int(math.Floor(localConnectivity))
			interpolation := localConnectivity - float64(index)
			if index > 0 {
				rhos[i] = nonZero[index-1]
				if interpolation > smoothKTolerance && index < len(nonZero) {
					rhos[i] += interpolation * (nonZero[index] - nonZero[index-1])
				}
			} else {
				rhos[i] = interpolation * nonZero[0]
			}
		} else if len(nonZero) > 0 {
			rhos[i] = nonZero[len(nonZero)-1]
		}

		lo, hi, mid := 0.0, math.Inf(1), 1.0
		for iter := 0; iter < smoothKIters; iter++ {
			var psum float64
			for j := 1; j < len(row); j++ {
				d := row[j] - rhos[i]
				if d > 0 {
					psum += math.Exp(-d / mid)
				} else {
					psum++
				}
			}
			if math.Abs(psum-target) < smoothKTolerance {
				break
			}
			if psum > target {
				hi = mid
				mid = (lo + hi) / 2
			} else {
				lo = mid
				if math.IsInf(hi, 1) {
					mid *= 2
				} else {
					mid = (lo + hi) / 2
				}
			}
		}
		sigmas[i] = mid

		if rhos[i] > 0 {
			var meanRow float64
			for _, d := range row {
				meanRow += d
			}
			meanRow /= float64(len(row))
			sigmas[i] = math.Max(sigmas[i], minKDistScale*meanRow)
		} else {
			sigmas[i] = math.Max(sigmas[i], minKDistScale*meanAll)
		}
	}

	return sigmas, rhos
}

// Edge is a weighted directed edge of the fuzzy graph.
type Edge struct {
	Head, Tail int
	Weight     float64
}

// FuzzySimplicialSet builds the symmetric fuzzy neighborhood graph from kNN
// results. Each directed membership is exp(-(d - rho) / sigma); the two
// directions are combined with a fuzzy union (setOpMixRatio = 1) or
// intersection (setOpMixRatio = 0), or an interpolation of the two.
// Edges are returned sorted by (Head, Tail) with zero weights removed.
func FuzzySimplicialSet(knnIndices [][]int, knnDists [][]float64, k int, setOpMixRatio, localConnectivity float64) []Edge {
	n := len(knnIndices)
	sigmas, rhos := SmoothKNNDist(knnDists, k, localConnectivity, 1.0)

	directed := make([]map[int]float64, n)
	for i := range directed {
		directed[i] = make(map[int]float64, len(knnIndices[i]))
	}
	for i := range knnIndices {
		for j, nb := range knnIndices[i] {
			if nb < 0 || nb == i {
				continue
			}
			var val float64
			d := knnDists[i][j] - rhos[i]
			if d <= 0 || sigmas[i] == 0 {
				val = 1
			} else {
				val = math.Exp(-d / sigmas[i])
			}
			directed[i][nb] = val
		}
	}

	var edges []Edge
	for i := 0; i < n; i++ {
		seen := make(map[int]bool)
		var tails []int
		for j := range directed[i] {
			tails = append(tails, j)
			seen[j] = true
		}
		// Include reverse edges that only exist as j → i.
		for j := 0; j < n; j++ {
			if !seen[j] {
				if _, ok := directed[j][i]; ok {
					tails = append(tails, j)
				}
			}
		}
		sort.Ints(tails)
		for _, j := range tails {
			p := directed[i][j]
			pT := directed[j][i]
			prod := p * pT
			w := setOpMixRatio*(p+pT-prod) + (1-setOpMixRatio)*prod
			if w > 0 {
				edges = append(edges, Edge{Head: i, Tail: j, Weight: w})
			}
		}
	}
	return edges
}
