package umap

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var errSpectralUnavailable = errors.New("umap: spectral initialisation unavailable")

// spectralLayout embeds the fuzzy graph using the eigenvectors of its
// symmetric normalized Laplacian, skipping the trivial first eigenvector.
// It fails on graphs that are disconnected or too small for dim.
func spectralLayout(edges []Edge, n, dim int) ([][]float64, error) {
	if n <= dim+1 {
		return nil, errSpectralUnavailable
	}
	if components(edges, n) != 1 {
		return nil, errSpectralUnavailable
	}

	degree := make([]float64, n)
	for _, e := range edges {
		degree[e.Head] += e.Weight
	}
	for _, d := range degree {
		if d == 0 {
			return nil, errSpectralUnavailable
		}
	}

	lap := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		lap.SetSym(i, i, 1)
	}
	for _, e := range edges {
		if e.Head == e.Tail {
			continue
		}
		v := -e.Weight / math.Sqrt(degree[e.Head]*degree[e.Tail])
		lap.SetSym(e.Head, e.Tail, v)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(lap, true); !ok {
		return nil, errSpectralUnavailable
	}
	vectors := mat.NewDense(n, n, nil)
	eig.VectorsTo(vectors)

	// Eigenvalues come back ascending; columns 1..dim are the smallest
	// non-trivial ones.
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, dim)
		for d := 0; d < dim; d++ {
			out[i][d] = vectors.At(i, d+1)
		}
	}
	return out, nil
}

// components counts connected components of the graph.
func components(edges []Edge, n int) int {
	ds := newDisjointSet(n)
	for _, e := range edges {
		ds.union(e.Head, e.Tail)
	}
	return ds.sets
}

// randomLayout places points uniformly in [-10, 10]^dim.
func randomLayout(n, dim int, rng *rand.Rand) [][]float64 {
	u := distuv.Uniform{Min: -10, Max: 10, Src: rng}
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, dim)
		for d := range out[i] {
			out[i][d] = u.Rand()
		}
	}
	return out
}

// expandWithNoise scales a spectral layout so its largest coordinate is 10
// and jitters it slightly so coincident points can separate.
func expandWithNoise(emb [][]float64, rng *rand.Rand) {
	var maxAbs float64
	for _, row := range emb {
		for _, v := range row {
			maxAbs = math.Max(maxAbs, math.Abs(v))
		}
	}
	expansion := 1.0
	if maxAbs > 0 {
		expansion = 10 / maxAbs
	}
	noise := distuv.Normal{Mu: 0, Sigma: 1e-4, Src: rng}
	for _, row := range emb {
		for d := range row {
			row[d] = row[d]*expansion + noise.Rand()
		}
	}
}

// rescale maps each column of emb linearly onto [0, 10].
func rescale(emb [][]float64) {
	if len(emb) == 0 {
		return
	}
	dim := len(emb[0])
	for d := 0; d < dim; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range emb {
			lo = math.Min(lo, row[d])
			hi = math.Max(hi, row[d])
		}
		span := hi - lo
		for _, row := range emb {
			if span > 0 {
				row[d] = 10 * (row[d] - lo) / span
			} else {
				row[d] = 0
			}
		}
	}
}
