package umap

import (
	"container/heap"
	"math"
	"sort"
)

// KDTree is a KD-tree spatial index for k-nearest-neighbor queries. Points
// are stored in a flat row-major array and reordered internally via an
// index permutation array.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int
	dims     int
	leafSize int
	metric   DistanceMetric
	idxArray []int // permutation: tree-order position → original index
	nodes    []kdNode
	// boundsMin[node*dims + j] = min value of feature j in node
	boundsMin []float64
	// boundsMax[node*dims + j] = max value of feature j in node
	boundsMax []float64
}

type kdNode struct {
	start, end int
	leaf       bool
	used       bool
}

// KDTreeValidMetric reports whether the metric supports KD-tree acceleration.
// KD-trees require metrics that decompose along coordinate axes.
func KDTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, SquaredEuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}

	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)
	t := &KDTree{
		data:      dataCopy,
		n:         n,
		dims:      dims,
		leafSize:  leafSize,
		metric:    metric,
		idxArray:  idxArray,
		nodes:     make([]kdNode, maxNodes),
		boundsMin: make([]float64, maxNodes*dims),
		boundsMax: make([]float64, maxNodes*dims),
	}
	if n > 0 {
		t.buildNode(0, 0, n)
	}
	return t
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	for v := 1; v < leaves; v *= 2 {
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2
}

func (t *KDTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, kdNode{})
		t.boundsMin = append(t.boundsMin, make([]float64, t.dims)...)
		t.boundsMax = append(t.boundsMax, make([]float64, t.dims)...)
	}

	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = kdNode{start: start, end: end, leaf: true, used: true}
		return
	}

	// Split on the dimension with greatest spread, at the median.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.boundsMax[nodeID*t.dims+d] - t.boundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	sub := t.idxArray[start:end]
	dims, data := t.dims, t.data
	sort.Slice(sub, func(i, j int) bool {
		return data[sub[i]*dims+splitDim] < data[sub[j]*dims+splitDim]
	})
	mid := start + count/2

	t.nodes[nodeID] = kdNode{start: start, end: end, used: true}
	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

func (t *KDTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.boundsMin[base+d] = math.Inf(1)
		t.boundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		pt := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[pt*t.dims+d]
			if v < t.boundsMin[base+d] {
				t.boundsMin[base+d] = v
			}
			if v > t.boundsMax[base+d] {
				t.boundsMax[base+d] = v
			}
		}
	}
}

// NumPoints returns the number of indexed points.
func (t *KDTree) NumPoints() int { return t.n }

// QueryKNN finds the k nearest neighbors of every indexed point, the point
// itself included. Results are sorted by ascending distance. Queries are
// spread over numWorkers goroutines; the tree is read-only during queries.
func (t *KDTree) QueryKNN(k, numWorkers int) (indices [][]int, distances [][]float64) {
	indices = make([][]int, t.n)
	distances = make([][]float64, t.n)

	parallelRows(t.n, numWorkers, func(start, end int) {
		for q := start; q < end; q++ {
			query := t.data[q*t.dims : (q+1)*t.dims]
			h := &knnHeap{}
			t.knnSearch(0, query, k, h)

			nResults := h.Len()
			idx := make([]int, nResults)
			dist := make([]float64, nResults)
			for i := nResults - 1; i >= 0; i-- {
				item := heap.Pop(h).(knnItem)
				idx[i] = item.index
				dist[i] = item.dist
			}
			indices[q] = idx
			distances[q] = dist
		}
	})

	return indices, distances
}

func (t *KDTree) knnSearch(nodeID int, query []float64, k int, h *knnHeap) {
	if nodeID >= len(t.nodes) || !t.nodes[nodeID].used {
		return
	}
	node := t.nodes[nodeID]

	if node.leaf {
		for i := node.start; i < node.end; i++ {
			pt := t.idxArray[i]
			d := t.metric.Distance(query, t.data[pt*t.dims:(pt+1)*t.dims])
			if h.Len() < k {
				heap.Push(h, knnItem{index: pt, dist: d})
			} else if d < (*h)[0].dist {
				(*h)[0] = knnItem{index: pt, dist: d}
				heap.Fix(h, 0)
			}
		}
		return
	}

	left := 2*nodeID + 1
	right := 2*nodeID + 2
	leftRdist := t.minRdistPoint(left, query)
	rightRdist := t.minRdistPoint(right, query)

	nearChild, farChild := left, right
	farRdist := rightRdist
	if rightRdist < leftRdist {
		nearChild, farChild = right, left
		farRdist = leftRdist
	}

	t.knnSearch(nearChild, query, k, h)

	// Prune far child if its lower bound exceeds the current k-th distance.
	if h.Len() < k || distToRdist(t.metric, (*h)[0].dist) > farRdist {
		t.knnSearch(farChild, query, k, h)
	}
}

// minRdistPoint returns a lower bound, in reduced-distance space, on the
// distance between point and any point in node.
func (t *KDTree) minRdistPoint(node int, point []float64) float64 {
	if node >= len(t.nodes) || !t.nodes[node].used {
		return math.Inf(1)
	}
	base := node * t.dims

	var rdist float64
	for j := 0; j < t.dims; j++ {
		lo := t.boundsMin[base+j]
		hi := t.boundsMax[base+j]
		var d float64
		if point[j] < lo {
			d = lo - point[j]
		} else if point[j] > hi {
			d = point[j] - hi
		}
		switch m := t.metric.(type) {
		case ChebyshevMetric:
			rdist = math.Max(rdist, d)
		case ManhattanMetric:
			rdist += d
		case MinkowskiMetric:
			rdist += math.Pow(d, m.P)
		default:
			rdist += d * d
		}
	}
	return rdist
}

// distToRdist converts a true distance into the metric's reduced space.
func distToRdist(m DistanceMetric, d float64) float64 {
	switch v := m.(type) {
	case EuclideanMetric:
		return d * d
	case MinkowskiMetric:
		return math.Pow(d, v.P)
	default:
		return d
	}
}

type knnItem struct {
	index int
	dist  float64
}

// knnHeap is a max-heap of knnItem (largest distance on top) used as a
// bounded priority queue for KNN queries.
type knnHeap []knnItem

func (h knnHeap) Len() int            { return len(h) }
func (h knnHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h knnHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x interface{}) { *h = append(*h, x.(knnItem)) }
func (h *knnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
