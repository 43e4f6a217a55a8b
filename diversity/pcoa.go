package diversity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// eigvalZeroTol treats eigenvalues this close to zero as exactly zero.
const eigvalZeroTol = 1e-8

// PCoA performs principal coordinate analysis (classical multidimensional
// scaling) of dm. The result has one axis per sample, named PC1, PC2, ...,
// ordered by decreasing eigenvalue. Negative eigenvalues, which arise for
// non-Euclidean distances, are clipped to zero.
func PCoA(dm *DistanceMatrix) (*Ordination, error) {
	if dm == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidDistanceMatrix)
	}
	n := dm.Size()
	if n == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInvalidDistanceMatrix)
	}

	// Gower centring of A = -d²/2.
	a := make([]float64, n*n)
	rowMean := make([]float64, n)
	var grand float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := dm.At(i, j)
			v := -0.5 * d * d
			a[i*n+j] = v
			rowMean[i] += v
		}
		grand += rowMean[i]
		rowMean[i] /= float64(n)
	}
	grand /= float64(n * n)
	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b.SetSym(i, j, a[i*n+j]-rowMean[i]-rowMean[j]+grand)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(b, true) {
		return nil, errors.New("diversity: PCoA eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	eigvals := make([]float64, n)
	coords := mat.NewDense(n, n, nil)
	var total float64
	for j := 0; j < n; j++ {
		src := n - 1 - j
		v := vals[src]
		if v < 0 || math.Abs(v) < eigvalZeroTol {
			v = 0
		}
		eigvals[j] = v
		total += v
		s := math.Sqrt(v)
		for i := 0; i < n; i++ {
			coords.Set(i, j, vecs.At(i, src)*s)
		}
	}
	orientColumns(coords)

	prop := make([]float64, n)
	axes := make([]string, n)
	rows := make([][]float64, n)
	for j := range axes {
		axes[j] = fmt.Sprintf("PC%d", j+1)
		if total > 0 {
			prop[j] = eigvals[j] / total
		}
	}
	for i := range rows {
		rows[i] = mat.Row(nil, i, coords)
	}
	return &Ordination{
		ShortMethodName:     "PCoA",
		LongMethodName:      "Principal Coordinate Analysis",
		SampleIDs:           append([]string(nil), dm.IDs...),
		Axes:                axes,
		Coordinates:         rows,
		Eigvals:             eigvals,
		ProportionExplained: prop,
	}, nil
}
