package diversity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Center subtracts the column means of ord's coordinates and rotates them
// onto their principal axes, ordered by decreasing variance. Each axis is
// oriented so its largest-magnitude coordinate is positive. Labels and
// method names are preserved; eigenvalues and proportions are reported as
// zero.
func Center(ord *Ordination) (*Ordination, error) {
	if ord == nil {
		return nil, errors.New("diversity: nil ordination")
	}
	n, d := len(ord.Coordinates), len(ord.Axes)
	if len(ord.SampleIDs) != n {
		return nil, fmt.Errorf("diversity: %d sample IDs for %d coordinate rows", len(ord.SampleIDs), n)
	}

	x := mat.NewDense(max(n, 1), max(d, 1), nil)
	for i, row := range ord.Coordinates {
		if len(row) != d {
			return nil, fmt.Errorf("diversity: coordinate row %d has %d values, expected %d", i, len(row), d)
		}
		for j, v := range row {
			x.Set(i, j, v)
		}
	}
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, x)
		mean := stat.Mean(col[:n], nil)
		for i := 0; i < n; i++ {
			x.Set(i, j, x.At(i, j)-mean)
		}
	}

	scores := x
	if n >= 2 && d >= 1 {
		var err error
		if scores, err = principalScores(x, d); err != nil {
			return nil, err
		}
	}

	coords := make([][]float64, n)
	for i := range coords {
		coords[i] = make([]float64, d)
		for j := range coords[i] {
			coords[i][j] = scores.At(i, j)
		}
	}
	return &Ordination{
		ShortMethodName:     ord.ShortMethodName,
		LongMethodName:      ord.LongMethodName,
		SampleIDs:           append([]string(nil), ord.SampleIDs...),
		Axes:                append([]string(nil), ord.Axes...),
		Coordinates:         coords,
		Eigvals:             make([]float64, d),
		ProportionExplained: make([]float64, d),
	}, nil
}

// principalScores projects the centred matrix x onto the eigenvectors of its
// covariance, largest eigenvalue first.
func principalScores(x *mat.Dense, d int) (*mat.Dense, error) {
	cov := mat.NewSymDense(d, nil)
	stat.CovarianceMatrix(cov, x, nil)

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return nil, errors.New("diversity: eigendecomposition of covariance failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// EigenSym returns ascending eigenvalues.
	rot := mat.NewDense(d, d, nil)
	for j := 0; j < d; j++ {
		rot.SetCol(j, mat.Col(nil, d-1-j, &vecs))
	}
	var scores mat.Dense
	scores.Mul(x, rot)
	orientColumns(&scores)
	return &scores, nil
}

// orientColumns flips the sign of every column whose largest-magnitude entry
// is negative.
func orientColumns(m *mat.Dense) {
	r, c := m.Dims()
	for j := 0; j < c; j++ {
		var best float64
		for i := 0; i < r; i++ {
			if v := m.At(i, j); math.Abs(v) > math.Abs(best) {
				best = v
			}
		}
		if best < 0 {
			for i := 0; i < r; i++ {
				m.Set(i, j, -m.At(i, j))
			}
		}
	}
}
