package umap

import (
	"fmt"
	"math"
	"sort"
)

// DistanceMetric provides distance computation with optional reduced distance
// for tree-pruning optimizations (e.g., squared Euclidean skips sqrt).
//
// Implementations may be called from several goroutines at once by
// ComputePairwiseDistancesParallel and must not mutate shared state.
type DistanceMetric interface {
	Distance(a, b []float64) float64
	ReducedDistance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
// ReducedDistance delegates to the same function.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64        { return f(a, b) }
func (f DistanceFunc) ReducedDistance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
// ReducedDistance returns squared Euclidean distance (skips sqrt).
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return math.Sqrt(euclideanSumOfSquares(a, b))
}

func (EuclideanMetric) ReducedDistance(a, b []float64) float64 {
	return euclideanSumOfSquares(a, b)
}

func euclideanSumOfSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// SquaredEuclideanMetric computes the squared Euclidean distance.
type SquaredEuclideanMetric struct{}

func (SquaredEuclideanMetric) Distance(a, b []float64) float64 { return euclideanSumOfSquares(a, b) }

func (m SquaredEuclideanMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

func (m ManhattanMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// CosineMetric computes the cosine distance: 1 - cosine_similarity.
// Two zero vectors are at distance 0; a zero vector and a non-zero vector
// are at distance 1.
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	switch {
	case normA == 0 && normB == 0:
		return 0
	case normA == 0 || normB == 0:
		return 1
	}
	return 1.0 - dot/math.Sqrt(normA*normB)
}

func (m CosineMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// CorrelationMetric computes 1 - Pearson correlation of a and b.
type CorrelationMetric struct{}

func (CorrelationMetric) Distance(a, b []float64) float64 {
	n := float64(len(a))
	if n == 0 {
		return 0
	}
	var muA, muB float64
	for i := range a {
		muA += a[i]
		muB += b[i]
	}
	muA /= n
	muB /= n

	var dot, normA, normB float64
	for i := range a {
		sa := a[i] - muA
		sb := b[i] - muB
		dot += sa * sb
		normA += sa * sa
		normB += sb * sb
	}
	switch {
	case normA == 0 && normB == 0:
		return 0
	case dot == 0:
		return 1
	}
	return 1.0 - dot/math.Sqrt(normA*normB)
}

func (m CorrelationMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 {
	var maxVal float64
	for i := range a {
		if v := math.Abs(a[i] - b[i]); v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

func (m ChebyshevMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1. Panics if P < 1.
// ReducedDistance returns sum(|a[i]-b[i]|^P) without the final root.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	return math.Pow(m.rawSum(a, b), 1.0/m.P)
}

func (m MinkowskiMetric) ReducedDistance(a, b []float64) float64 {
	return m.rawSum(a, b)
}

func (m MinkowskiMetric) rawSum(a, b []float64) float64 {
	if m.P < 1 {
		panic("MinkowskiMetric: P must be >= 1")
	}
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(a[i]-b[i]), m.P)
	}
	return sum
}

// CanberraMetric computes sum(|a-b| / (|a|+|b|)), skipping terms where both
// coordinates are zero.
type CanberraMetric struct{}

func (CanberraMetric) Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		denom := math.Abs(a[i]) + math.Abs(b[i])
		if denom > 0 {
			sum += math.Abs(a[i]-b[i]) / denom
		}
	}
	return sum
}

func (m CanberraMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// BrayCurtisMetric computes sum|a-b| / sum|a+b|, the usual dissimilarity
// for abundance profiles.
type BrayCurtisMetric struct{}

func (BrayCurtisMetric) Distance(a, b []float64) float64 {
	var num, denom float64
	for i := range a {
		num += math.Abs(a[i] - b[i])
		denom += math.Abs(a[i] + b[i])
	}
	if denom == 0 {
		return 0
	}
	return num / denom
}

func (m BrayCurtisMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// Boolean dissimilarities treat any non-zero coordinate as present.

// countBinary counts true-true, true-false, false-true, false-false pairs.
func countBinary(a, b []float64) (ntt, ntf, nft, nff float64) {
	for i := range a {
		x := a[i] != 0
		y := b[i] != 0
		switch {
		case x && y:
			ntt++
		case x:
			ntf++
		case y:
			nft++
		default:
			nff++
		}
	}
	return
}

// Hamming is the fraction of coordinates that differ.
func Hamming(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	var count float64
	for i := range a {
		if a[i] != b[i] {
			count++
		}
	}
	return count / float64(len(a))
}

// Jaccard is the fraction of coordinates that differ among those where at
// least one vector is non-zero.
func Jaccard(a, b []float64) float64 {
	var nonzero, unequal float64
	for i := range a {
		if a[i] != 0 || b[i] != 0 {
			nonzero++
			if a[i] != b[i] {
				unequal++
			}
		}
	}
	if nonzero == 0 {
		return 0
	}
	return unequal / nonzero
}

func Dice(a, b []float64) float64 {
	ntt, ntf, nft, _ := countBinary(a, b)
	denom := 2*ntt + ntf + nft
	if denom == 0 {
		return 0
	}
	return (ntf + nft) / denom
}

func Matching(a, b []float64) float64 {
	ntt, ntf, nft, nff := countBinary(a, b)
	n := ntt + ntf + nft + nff
	if n == 0 {
		return 0
	}
	return (ntf + nft) / n
}

func Kulsinski(a, b []float64) float64 {
	ntt, ntf, nft, nff := countBinary(a, b)
	n := ntt + ntf + nft + nff
	denom := ntf + nft + n
	if denom == 0 {
		return 0
	}
	return (ntf + nft - ntt + n) / denom
}

func RogersTanimoto(a, b []float64) float64 {
	ntt, ntf, nft, nff := countBinary(a, b)
	n := ntt + ntf + nft + nff
	denom := n + ntf + nft
	if denom == 0 {
		return 0
	}
	return 2 * (ntf + nft) / denom
}

func RussellRao(a, b []float64) float64 {
	ntt, ntf, nft, nff := countBinary(a, b)
	n := ntt + ntf + nft + nff
	if n == 0 {
		return 0
	}
	return (n - ntt) / n
}

// SokalMichener is identical to RogersTanimoto for boolean input.
func SokalMichener(a, b []float64) float64 { return RogersTanimoto(a, b) }

func SokalSneath(a, b []float64) float64 {
	ntt, ntf, nft, _ := countBinary(a, b)
	denom := ntt + 2*(ntf+nft)
	if denom == 0 {
		return 0
	}
	return 2 * (ntf + nft) / denom
}

func Yule(a, b []float64) float64 {
	ntt, ntf, nft, nff := countBinary(a, b)
	denom := ntt*nff + ntf*nft
	if denom == 0 {
		return 0
	}
	return 2 * ntf * nft / denom
}

// PrecomputedMetric is the sentinel metric name meaning the input rows are
// already a square distance matrix.
const PrecomputedMetric = "precomputed"

// metricConstructors maps accepted metric names (including aliases) to a
// constructor. The Minkowski exponent is only consulted by "minkowski".
var metricConstructors = map[string]func(p float64) DistanceMetric{
	"euclidean":      func(float64) DistanceMetric { return EuclideanMetric{} },
	"l2":             func(float64) DistanceMetric { return EuclideanMetric{} },
	"sqeuclidean":    func(float64) DistanceMetric { return SquaredEuclideanMetric{} },
	"manhattan":      func(float64) DistanceMetric { return ManhattanMetric{} },
	"l1":             func(float64) DistanceMetric { return ManhattanMetric{} },
	"cityblock":      func(float64) DistanceMetric { return ManhattanMetric{} },
	"taxicab":        func(float64) DistanceMetric { return ManhattanMetric{} },
	"chebyshev":      func(float64) DistanceMetric { return ChebyshevMetric{} },
	"linfinity":      func(float64) DistanceMetric { return ChebyshevMetric{} },
	"minkowski":      func(p float64) DistanceMetric { return MinkowskiMetric{P: p} },
	"cosine":         func(float64) DistanceMetric { return CosineMetric{} },
	"correlation":    func(float64) DistanceMetric { return CorrelationMetric{} },
	"canberra":       func(float64) DistanceMetric { return CanberraMetric{} },
	"braycurtis":     func(float64) DistanceMetric { return BrayCurtisMetric{} },
	"hamming":        func(float64) DistanceMetric { return DistanceFunc(Hamming) },
	"jaccard":        func(float64) DistanceMetric { return DistanceFunc(Jaccard) },
	"dice":           func(float64) DistanceMetric { return DistanceFunc(Dice) },
	"matching":       func(float64) DistanceMetric { return DistanceFunc(Matching) },
	"kulsinski":      func(float64) DistanceMetric { return DistanceFunc(Kulsinski) },
	"rogerstanimoto": func(float64) DistanceMetric { return DistanceFunc(RogersTanimoto) },
	"russellrao":     func(float64) DistanceMetric { return DistanceFunc(RussellRao) },
	"sokalmichener":  func(float64) DistanceMetric { return DistanceFunc(SokalMichener) },
	"sokalsneath":    func(float64) DistanceMetric { return DistanceFunc(SokalSneath) },
	"yule":           func(float64) DistanceMetric { return DistanceFunc(Yule) },
}

// ValidMetrics returns the sorted list of metric names accepted by
// MetricByName, not including PrecomputedMetric.
func ValidMetrics() []string {
	names := make([]string, 0, len(metricConstructors))
	for name := range metricConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsValidMetric reports whether name is a known metric or PrecomputedMetric.
func IsValidMetric(name string) bool {
	if name == PrecomputedMetric {
		return true
	}
	_, ok := metricConstructors[name]
	return ok
}

// MetricByName resolves a metric name. p is the Minkowski exponent and is
// ignored by every other metric.
func MetricByName(name string, p float64) (DistanceMetric, error) {
	ctor, ok := metricConstructors[name]
	if !ok {
		return nil, fmt.Errorf("umap: unknown metric %q", name)
	}
	if name == "minkowski" && p < 1 {
		return nil, fmt.Errorf("umap: minkowski metric requires p >= 1, got %g", p)
	}
	return ctor(p), nil
}

// ComputePairwiseDistances computes the full n*n distance matrix.
// data is flat row-major with n rows and dims columns.
// Returns flat []float64 of length n*n.
func ComputePairwiseDistances(data []float64, n, dims int, metric DistanceMetric) []float64 {
	result := make([]float64, n*n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := metric.Distance(data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims])
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}

	return result
}
