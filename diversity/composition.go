package diversity

import (
	"fmt"
	"math"
)

// AitchisonMetric is the Euclidean distance between the centred log-ratio
// transforms of two strictly positive compositions. Zero parts yield NaN, so
// callers add a pseudocount first.
type AitchisonMetric struct{}

func (AitchisonMetric) Distance(a, b []float64) float64 {
	return math.Sqrt(AitchisonMetric{}.ReducedDistance(a, b))
}

// ReducedDistance returns the squared distance.
func (AitchisonMetric) ReducedDistance(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	var ma, mb float64
	for i := range a {
		ma += math.Log(a[i])
		mb += math.Log(b[i])
	}
	n := float64(len(a))
	ma /= n
	mb /= n
	var sum float64
	for i := range a {
		d := (math.Log(a[i]) - ma) - (math.Log(b[i]) - mb)
		sum += d * d
	}
	return sum
}

// CLR returns the centred log-ratio transform of every row of counts. All
// values must be strictly positive.
func CLR(counts [][]float64) ([][]float64, error) {
	out := make([][]float64, len(counts))
	for i, row := range counts {
		logs := make([]float64, len(row))
		var mean float64
		for j, v := range row {
			if !(v > 0) {
				return nil, fmt.Errorf("diversity: clr requires positive values, row %d column %d is %v", i, j, v)
			}
			logs[j] = math.Log(v)
			mean += logs[j]
		}
		if len(row) > 0 {
			mean /= float64(len(row))
		}
		for j := range logs {
			logs[j] -= mean
		}
		out[i] = logs
	}
	return out, nil
}

func addPseudocount(counts [][]float64, pc float64) [][]float64 {
	out := make([][]float64, len(counts))
	for i, row := range counts {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v + pc
		}
	}
	return out
}

// checkComposition reports the first part that is not strictly positive.
// Such parts have no logarithm, so the aitchison metric is undefined there.
func checkComposition(ids []string, rows [][]float64) error {
	for i, row := range rows {
		for j, v := range row {
			if !(v > 0) {
				return fmt.Errorf("%w: sample %s has non-positive part %v at feature %d after the pseudocount; use a larger pseudocount",
					ErrNonPositiveComposition, ids[i], v, j)
			}
		}
	}
	return nil
}
