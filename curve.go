package umap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const curveSamples = 300

// FindABParams fits a and b of the low-dimensional membership curve
// 1 / (1 + a*x^(2b)) to the offset exponential decay defined by spread and
// minDist, by least squares over [0, 3*spread].
func FindABParams(spread, minDist float64) (a, b float64, err error) {
	xv := make([]float64, curveSamples)
	floats.Span(xv, 0, spread*3)
	yv := make([]float64, curveSamples)
	for i, x := range xv {
		if x < minDist {
			yv[i] = 1
		} else {
			yv[i] = math.Exp(-(x - minDist) / spread)
		}
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			var sse float64
			for i, x := range xv {
				r := 1/(1+p[0]*math.Pow(x, 2*p[1])) - yv[i]
				sse += r * r
			}
			return sse
		},
	}

	result, err := optimize.Minimize(problem, []float64{1, 1}, nil, &optimize.NelderMead{})
	if result == nil {
		return 0, 0, fmt.Errorf("umap: fitting a/b curve parameters: %w", err)
	}
	a, b = result.X[0], result.X[1]
	if !(a > 0) || !(b > 0) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, 0, fmt.Errorf("umap: curve fit for spread=%g min_dist=%g produced invalid a=%g b=%g", spread, minDist, a, b)
	}
	return a, b, nil
}
