package umap

import (
	"math"
	"sort"
	"testing"
)

const floatTol = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// --- EuclideanMetric tests ---

func TestEuclideanDistance_IdenticalVectors(t *testing.T) {
	m := EuclideanMetric{}
	a := []float64{1, 2, 3}
	d := m.Distance(a, a)
	if d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestEuclideanDistance_ZeroVectors(t *testing.T) {
	m := EuclideanMetric{}
	a := []float64{0, 0, 0}
	b := []float64{0, 0, 0}
	d := m.Distance(a, b)
	if d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestEuclideanDistance_UnitVectors(t *testing.T) {
	m := EuclideanMetric{}
	a := []float64{1, 0, 0}
	b := []float64{0, 1, 0}
	// sqrt((1-0)^2 + (0-1)^2 + (0-0)^2) = sqrt(2)
	expected := math.Sqrt(2)
	d := m.Distance(a, b)
	if !almostEqual(d, expected, floatTol) {
		t.Errorf("expected %v, got %v", expected, d)
	}
}

func TestEuclideanDistance_HandComputed(t *testing.T) {
	m := EuclideanMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	// sqrt((4-1)^2 + (6-2)^2 + (3-3)^2) = sqrt(9+16+0) = 5
	d := m.Distance(a, b)
	if !almostEqual(d, 5.0, floatTol) {
		t.Errorf("expected 5.0, got %v", d)
	}
}

func TestEuclideanReducedDistance(t *testing.T) {
	m := EuclideanMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	// squared: 9+16+0 = 25
	rd := m.ReducedDistance(a, b)
	if !almostEqual(rd, 25.0, floatTol) {
		t.Errorf("expected 25.0, got %v", rd)
	}
}

// --- ManhattanMetric tests ---

func TestManhattanDistance_IdenticalVectors(t *testing.T) {
	m := ManhattanMetric{}
	a := []float64{3, 4, 5}
	if d := m.Distance(a, a); d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestManhattanDistance_HandComputed(t *testing.T) {
	m := ManhattanMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	// |4-1| + |6-2| + |3-3| = 3+4+0 = 7
	d := m.Distance(a, b)
	if !almostEqual(d, 7.0, floatTol) {
		t.Errorf("expected 7.0, got %v", d)
	}
}

func TestManhattanReducedDistance_EqualsDistance(t *testing.T) {
	m := ManhattanMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	d := m.Distance(a, b)
	rd := m.ReducedDistance(a, b)
	if d != rd {
		t.Errorf("ReducedDistance (%v) != Distance (%v)", rd, d)
	}
}

// --- CosineMetric tests ---

func TestCosineDistance_ParallelVectors(t *testing.T) {
	m := CosineMetric{}
	a := []float64{1, 2, 3}
	b := []float64{2, 4, 6}
	// cosine similarity = 1, distance = 0
	d := m.Distance(a, b)
	if !almostEqual(d, 0.0, floatTol) {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestCosineDistance_OrthogonalVectors(t *testing.T) {
	m := CosineMetric{}
	a := []float64{1, 0}
	b := []float64{0, 1}
	// cosine similarity = 0, distance = 1
	d := m.Distance(a, b)
	if !almostEqual(d, 1.0, floatTol) {
		t.Errorf("expected 1, got %v", d)
	}
}

func TestCosineDistance_IdenticalVectors(t *testing.T) {
	m := CosineMetric{}
	a := []float64{3, 4}
	d := m.Distance(a, a)
	if !almostEqual(d, 0.0, floatTol) {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestCosineDistance_HandComputed(t *testing.T) {
	m := CosineMetric{}
	a := []float64{1, 0, 0}
	b := []float64{1, 1, 0}
	// dot = 1, |a|=1, |b|=sqrt(2)
	// cosine_sim = 1/sqrt(2), distance = 1 - 1/sqrt(2) ~ 0.292893
	expected := 1.0 - 1.0/math.Sqrt(2)
	d := m.Distance(a, b)
	if !almostEqual(d, expected, floatTol) {
		t.Errorf("expected %v, got %v", expected, d)
	}
}

func TestCosineReducedDistance_EqualsDistance(t *testing.T) {
	m := CosineMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}
	d := m.Distance(a, b)
	rd := m.ReducedDistance(a, b)
	if d != rd {
		t.Errorf("ReducedDistance (%v) != Distance (%v)", rd, d)
	}
}

// --- ChebyshevMetric tests ---

func TestChebyshevDistance_IdenticalVectors(t *testing.T) {
	m := ChebyshevMetric{}
	a := []float64{1, 2, 3}
	if d := m.Distance(a, a); d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestChebyshevDistance_HandComputed(t *testing.T) {
	m := ChebyshevMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	// max(|4-1|, |6-2|, |3-3|) = max(3, 4, 0) = 4
	d := m.Distance(a, b)
	if !almostEqual(d, 4.0, floatTol) {
		t.Errorf("expected 4.0, got %v", d)
	}
}

func TestChebyshevReducedDistance_EqualsDistance(t *testing.T) {
	m := ChebyshevMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	d := m.Distance(a, b)
	rd := m.ReducedDistance(a, b)
	if d != rd {
		t.Errorf("ReducedDistance (%v) != Distance (%v)", rd, d)
	}
}

// --- MinkowskiMetric tests ---

func TestMinkowskiDistance_IdenticalVectors(t *testing.T) {
	m := MinkowskiMetric{P: 3}
	a := []float64{1, 2, 3}
	if d := m.Distance(a, a); d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestMinkowskiDistance_P1_EqualsManhattan(t *testing.T) {
	mink := MinkowskiMetric{P: 1}
	manh := ManhattanMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	dm := mink.Distance(a, b)
	dh := manh.Distance(a, b)
	if !almostEqual(dm, dh, floatTol) {
		t.Errorf("Minkowski P=1 (%v) != Manhattan (%v)", dm, dh)
	}
}

func TestMinkowskiDistance_P2_EqualsEuclidean(t *testing.T) {
	mink := MinkowskiMetric{P: 2}
	eucl := EuclideanMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	dm := mink.Distance(a, b)
	de := eucl.Distance(a, b)
	if !almostEqual(dm, de, floatTol) {
		t.Errorf("Minkowski P=2 (%v) != Euclidean (%v)", dm, de)
	}
}

func TestMinkowskiDistance_P3_HandComputed(t *testing.T) {
	m := MinkowskiMetric{P: 3}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	// (|3|^3 + |4|^3 + |0|^3)^(1/3) = (27+64)^(1/3) = 91^(1/3)
	expected := math.Pow(91.0, 1.0/3.0)
	d := m.Distance(a, b)
	if !almostEqual(d, expected, floatTol) {
		t.Errorf("expected %v, got %v", expected, d)
	}
}

func TestMinkowskiDistance_NegativeP_Panics(t *testing.T) {
	m := MinkowskiMetric{P: -1}
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for negative P, got none")
		}
	}()
	m.Distance(a, b)
}

func TestMinkowskiReducedDistance_P2_IsSquaredEuclidean(t *testing.T) {
	m := MinkowskiMetric{P: 2}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	// reduced distance for P=2 is sum(|a[i]-b[i]|^P) = 25
	rd := m.ReducedDistance(a, b)
	if !almostEqual(rd, 25.0, floatTol) {
		t.Errorf("expected 25.0, got %v", rd)
	}
}

// --- DistanceFunc adapter tests ---

func TestDistanceFunc_Adapter(t *testing.T) {
	fn := DistanceFunc(func(a, b []float64) float64 {
		sum := 0.0
		for i := range a {
			sum += math.Abs(a[i] - b[i])
		}
		return sum
	})
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}

	d := fn.Distance(a, b)
	if !almostEqual(d, 7.0, floatTol) {
		t.Errorf("expected 7.0, got %v", d)
	}

	rd := fn.ReducedDistance(a, b)
	if d != rd {
		t.Errorf("ReducedDistance (%v) != Distance (%v) for DistanceFunc adapter", rd, d)
	}
}

func TestDistanceFunc_SatisfiesInterface(t *testing.T) {
	fn := DistanceFunc(func(a, b []float64) float64 { return 0 })
	var _ DistanceMetric = fn // compile-time check
}

// --- Zero vector tests for all metrics ---

func TestAllMetrics_ZeroVectors(t *testing.T) {
	zero := []float64{0, 0, 0}
	// Kulsinski and Russell-Rao count shared absences as dissimilar.
	nonzeroSelf := map[string]bool{"kulsinski": true, "russellrao": true}
	for _, name := range ValidMetrics() {
		if nonzeroSelf[name] {
			continue
		}
		m, err := MetricByName(name, 3)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if d := m.Distance(zero, zero); d != 0 {
			t.Errorf("%s: expected 0 for zero vectors, got %v", name, d)
		}
	}
}

func TestCosineDistance_OneZeroVector(t *testing.T) {
	d := CosineMetric{}.Distance([]float64{0, 0}, []float64{1, 2})
	if d != 1 {
		t.Errorf("expected 1, got %v", d)
	}
}

// --- Abundance metrics ---

func TestBrayCurtis_HandComputed(t *testing.T) {
	a := []float64{1, 2, 0, 4}
	b := []float64{1, 4, 3, 5}
	// (0+2+3+1) / (2+6+3+9) = 6/20
	d := BrayCurtisMetric{}.Distance(a, b)
	if !almostEqual(d, 0.3, floatTol) {
		t.Errorf("expected 0.3, got %v", d)
	}
}

func TestCanberra_SkipsDoubleZeros(t *testing.T) {
	a := []float64{1, 0, 2}
	b := []float64{3, 0, 2}
	// |1-3|/(1+3) + 0 + 0 = 0.5
	d := CanberraMetric{}.Distance(a, b)
	if !almostEqual(d, 0.5, floatTol) {
		t.Errorf("expected 0.5, got %v", d)
	}
}

func TestCorrelation_PerfectlyCorrelated(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{10, 20, 30}
	if d := (CorrelationMetric{}).Distance(a, b); !almostEqual(d, 0, floatTol) {
		t.Errorf("expected 0, got %v", d)
	}
	c := []float64{3, 2, 1}
	if d := (CorrelationMetric{}).Distance(a, c); !almostEqual(d, 2, floatTol) {
		t.Errorf("expected 2 for anti-correlated vectors, got %v", d)
	}
}

func TestSquaredEuclidean_HandComputed(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	if d := (SquaredEuclideanMetric{}).Distance(a, b); !almostEqual(d, 25, floatTol) {
		t.Errorf("expected 25, got %v", d)
	}
}

// --- Boolean metrics ---

func TestBooleanMetrics_HandComputed(t *testing.T) {
	a := []float64{1, 1, 0, 0, 3}
	b := []float64{1, 0, 1, 0, 2}
	// ntt=2, ntf=1, nft=1, nff=1, n=5
	tests := []struct {
		name string
		fn   func(a, b []float64) float64
		want float64
	}{
		{"hamming", Hamming, 3.0 / 5.0},
		{"jaccard", Jaccard, 3.0 / 4.0},
		{"dice", Dice, 2.0 / 6.0},
		{"matching", Matching, 2.0 / 5.0},
		{"kulsinski", Kulsinski, (2.0 - 2.0 + 5.0) / 7.0},
		{"rogerstanimoto", RogersTanimoto, 4.0 / 7.0},
		{"russellrao", RussellRao, 3.0 / 5.0},
		{"sokalmichener", SokalMichener, 4.0 / 7.0},
		{"sokalsneath", SokalSneath, 4.0 / 6.0},
		{"yule", Yule, 2.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(a, b); !almostEqual(got, tt.want, floatTol) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Metric registry ---

func TestMetricByName_Aliases(t *testing.T) {
	tests := []struct {
		name string
		want DistanceMetric
	}{
		{"euclidean", EuclideanMetric{}},
		{"l2", EuclideanMetric{}},
		{"l1", ManhattanMetric{}},
		{"cityblock", ManhattanMetric{}},
		{"linfinity", ChebyshevMetric{}},
		{"braycurtis", BrayCurtisMetric{}},
	}
	for _, tt := range tests {
		m, err := MetricByName(tt.name, 2)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if m != tt.want {
			t.Errorf("%s: got %T, want %T", tt.name, m, tt.want)
		}
	}
}

func TestMetricByName_Minkowski(t *testing.T) {
	m, err := MetricByName("minkowski", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mk, ok := m.(MinkowskiMetric); !ok || mk.P != 3 {
		t.Errorf("got %#v, want MinkowskiMetric{P: 3}", m)
	}
	if _, err := MetricByName("minkowski", 0.5); err == nil {
		t.Error("expected error for p < 1")
	}
}

func TestMetricByName_Unknown(t *testing.T) {
	if _, err := MetricByName("unknown_metric", 2); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestIsValidMetric(t *testing.T) {
	if !IsValidMetric(PrecomputedMetric) {
		t.Error("precomputed should be valid")
	}
	if !IsValidMetric("yule") {
		t.Error("yule should be valid")
	}
	if IsValidMetric("aitchison") {
		t.Error("aitchison is not a built-in umap metric")
	}
}

func TestValidMetrics_Sorted(t *testing.T) {
	names := ValidMetrics()
	if !sort.StringsAreSorted(names) {
		t.Errorf("ValidMetrics not sorted: %v", names)
	}
	for _, n := range names {
		if n == PrecomputedMetric {
			t.Error("ValidMetrics should not list precomputed")
		}
	}
}

// --- ComputePairwiseDistances tests ---

func TestComputePairwiseDistances_3Points(t *testing.T) {
	// Points: (0,0), (3,0), (0,4)
	data := []float64{
		0, 0,
		3, 0,
		0, 4,
	}
	n, dims := 3, 2

	dist := ComputePairwiseDistances(data, n, dims, EuclideanMetric{})

	if len(dist) != 9 {
		t.Fatalf("expected length 9, got %d", len(dist))
	}

	// Expected: 3-4-5 triangle
	expected := []float64{
		0, 3, 4,
		3, 0, 5,
		4, 5, 0,
	}

	for i := 0; i < 9; i++ {
		if !almostEqual(dist[i], expected[i], floatTol) {
			row, col := i/n, i%n
			t.Errorf("dist[%d,%d] = %v, expected %v", row, col, dist[i], expected[i])
		}
	}
}

func TestComputePairwiseDistances_Symmetry(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	n, dims := 4, 2

	dist := ComputePairwiseDistances(data, n, dims, EuclideanMetric{})

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !almostEqual(dist[i*n+j], dist[j*n+i], floatTol) {
				t.Errorf("dist[%d,%d]=%v != dist[%d,%d]=%v", i, j, dist[i*n+j], j, i, dist[j*n+i])
			}
		}
	}
}

func TestComputePairwiseDistances_DiagonalZero(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	n, dims := 3, 2

	dist := ComputePairwiseDistances(data, n, dims, EuclideanMetric{})

	for i := 0; i < n; i++ {
		if dist[i*n+i] != 0 {
			t.Errorf("diagonal dist[%d,%d] = %v, expected 0", i, i, dist[i*n+i])
		}
	}
}

func TestComputePairwiseDistances_ManhattanMetric(t *testing.T) {
	data := []float64{0, 0, 3, 4}
	n, dims := 2, 2

	dist := ComputePairwiseDistances(data, n, dims, ManhattanMetric{})

	// d(0,1) = |3|+|4| = 7
	if !almostEqual(dist[0*n+1], 7.0, floatTol) {
		t.Errorf("expected 7.0, got %v", dist[0*n+1])
	}
	if !almostEqual(dist[1*n+0], 7.0, floatTol) {
		t.Errorf("expected 7.0, got %v", dist[1*n+0])
	}
}
