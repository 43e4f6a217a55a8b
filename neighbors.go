package umap

import (
	"cmp"
	"slices"
)

// defaultLeafSize is the KD-tree leaf size used for neighbor search.
const defaultLeafSize = 30

// KNNFromMatrix extracts the k nearest neighbors of every row of a flat n×n
// distance matrix. Each row's neighbors are sorted by ascending distance,
// ties broken by index, so the point itself normally comes first. NaN sorts
// ahead of every number, so a NaN anywhere in a row appears among its
// neighbors.
func KNNFromMatrix(distMatrix []float64, n, k, numWorkers int) (indices [][]int, distances [][]float64) {
	k = min(k, n)
	indices = make([][]int, n)
	distances = make([][]float64, n)

	parallelRows(n, numWorkers, func(start, end int) {
		order := make([]int, n)
		for i := start; i < end; i++ {
			row := distMatrix[i*n : (i+1)*n]
			for j := range order {
				order[j] = j
			}
			slices.SortStableFunc(order, func(a, b int) int {
				return cmp.Compare(row[a], row[b])
			})
			idx := make([]int, k)
			dist := make([]float64, k)
			for j := 0; j < k; j++ {
				idx[j] = order[j]
				dist[j] = row[order[j]]
			}
			indices[i] = idx
			distances[i] = dist
		}
	})

	return indices, distances
}

// NearestNeighbors finds the k nearest neighbors (self included) of every
// row of flat row-major data. Axis-decomposable metrics use a KD-tree; any
// other metric falls back to a full pairwise matrix.
func NearestNeighbors(data []float64, n, dims, k int, metric DistanceMetric, numWorkers int) ([][]int, [][]float64) {
	k = min(k, n)
	if KDTreeValidMetric(metric) {
		tree := NewKDTree(data, n, dims, metric, defaultLeafSize)
		return tree.QueryKNN(k, numWorkers)
	}
	distMatrix := ComputePairwiseDistancesParallel(data, n, dims, metric, numWorkers)
	return KNNFromMatrix(distMatrix, n, k, numWorkers)
}
