package diversity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TrevorS/umap"
	"github.com/TrevorS/umap/phylo"
)

func TestDistances_EmptyTable(t *testing.T) {
	for _, shape := range [][2]int{{1, 1}, {3, 2}, {6, 4}} {
		samples := make([]string, shape[0])
		counts := make([][]float64, shape[0])
		for i := range samples {
			samples[i] = string(rune('A' + i))
			counts[i] = make([]float64, shape[1])
		}
		features := make([]string, shape[1])
		for j := range features {
			features[j] = string(rune('a' + j))
		}
		table, err := NewFeatureTable(samples, features, counts)
		require.NoError(t, err)

		_, err = Distances(table, DefaultDistanceOptions())
		require.ErrorIs(t, err, ErrEmptyTable)

		opts := DefaultDistanceOptions()
		opts.Metric = MetricName(Aitchison)
		_, err = Distances(table, opts)
		require.ErrorIs(t, err, ErrEmptyTable)
	}
}

func TestDistances_UnknownMetric(t *testing.T) {
	opts := DefaultDistanceOptions()
	opts.Metric = MetricName("peanut")
	_, err := Distances(fixtureTable(t), opts)
	require.ErrorIs(t, err, ErrUnknownMetric)
	require.ErrorContains(t, err, "peanut")
	require.ErrorContains(t, err, Aitchison)
	require.ErrorContains(t, err, "braycurtis")
}

func TestDistances_MetricCheckedBeforeTable(t *testing.T) {
	empty, err := NewFeatureTable([]string{"a"}, []string{"x"}, [][]float64{{0}})
	require.NoError(t, err)
	opts := DefaultDistanceOptions()
	opts.Metric = MetricName("peanut")
	_, err = Distances(empty, opts)
	require.ErrorIs(t, err, ErrUnknownMetric)
}

func TestDistances_Fixture(t *testing.T) {
	table := fixtureTable(t)
	for _, metric := range []string{"euclidean", Aitchison, "braycurtis", "jaccard"} {
		t.Run(metric, func(t *testing.T) {
			opts := DefaultDistanceOptions()
			opts.Metric = MetricName(metric)
			opts.UMAP = threeNeighbors(t)
			dm, err := Distances(table, opts)
			require.NoError(t, err)
			requireValidMatrix(t, dm, table.SampleIDs)
		})
	}
}

func TestDistances_ZeroMetricIsEuclidean(t *testing.T) {
	table := fixtureTable(t)
	opts := DefaultDistanceOptions()
	opts.UMAP = threeNeighbors(t)
	implicit, err := Distances(table, opts)
	require.NoError(t, err)

	opts.Metric = MetricName("euclidean")
	explicit, err := Distances(table, opts)
	require.NoError(t, err)
	require.Equal(t, explicit.Data, implicit.Data)
}

func TestDistances_Deterministic(t *testing.T) {
	table := fixtureTable(t)
	opts := DefaultDistanceOptions()
	opts.Metric = MetricName(Aitchison)
	opts.UMAP = threeNeighbors(t)
	opts.Workers = 1
	first, err := Distances(table, opts)
	require.NoError(t, err)
	second, err := Distances(table, opts)
	require.NoError(t, err)
	require.Equal(t, first.Data, second.Data)
}

func TestDistances_AitchisonIgnoresInput(t *testing.T) {
	table := fixtureTable(t)
	before := table.Clone()
	opts := DefaultDistanceOptions()
	opts.Metric = MetricName(Aitchison)
	opts.UMAP = threeNeighbors(t)
	_, err := Distances(table, opts)
	require.NoError(t, err)
	require.Equal(t, before.Counts, table.Counts)
}

func TestDistances_CustomMetric(t *testing.T) {
	table := fixtureTable(t)
	opts := DefaultDistanceOptions()
	opts.Metric = MetricFunc(umap.DistanceFunc(func(a, b []float64) float64 {
		var s float64
		for i := range a {
			d := a[i] - b[i]
			s += d * d * d * d
		}
		return s
	}))
	opts.UMAP = threeNeighbors(t)
	dm, err := Distances(table, opts)
	require.NoError(t, err)
	requireValidMatrix(t, dm, table.SampleIDs)
}

func TestDistances_Precomputed(t *testing.T) {
	src := fixtureMatrix(t)
	rows := make([][]float64, src.Size())
	for i := range rows {
		rows[i] = append([]float64(nil), src.Data[i*5:(i+1)*5]...)
	}
	table, err := NewFeatureTable(src.IDs, src.IDs, rows)
	require.NoError(t, err)

	opts := DefaultDistanceOptions()
	opts.Metric = MetricName(umap.PrecomputedMetric)
	opts.UMAP = threeNeighbors(t)
	dm, err := Distances(table, opts)
	require.NoError(t, err)
	requireValidMatrix(t, dm, src.IDs)

	_, err = Distances(fixtureTable(t), opts)
	require.ErrorIs(t, err, ErrInvalidTable)
}

func TestDistances_OverlayConflicts(t *testing.T) {
	for _, text := range []string{"{'metric': 'cosine'}", "{'n_components': 2}"} {
		overlay, err := umap.ParseOptions(text)
		require.NoError(t, err)
		opts := DefaultDistanceOptions()
		opts.UMAP = overlay
		_, err = Distances(fixtureTable(t), opts)
		require.Error(t, err, text)
	}
}

func TestDistances_UnknownOptionKey(t *testing.T) {
	_, err := umap.ParseOptions("{'n_neighbours': 3}")
	require.Error(t, err)
}

func TestDistancesPhylogenetic_Methods(t *testing.T) {
	table := fixtureTable(t)
	tree := fixtureTree(t)
	for _, method := range phylo.Methods() {
		t.Run(string(method), func(t *testing.T) {
			opts := DefaultPhylogeneticOptions()
			opts.Metric = method
			opts.UMAP = threeNeighbors(t)
			dm, err := DistancesPhylogenetic(table, tree, opts)
			require.NoError(t, err)
			requireValidMatrix(t, dm, table.SampleIDs)
		})
	}
}

func TestDistancesPhylogenetic_Variants(t *testing.T) {
	table := fixtureTable(t)
	tree := fixtureTree(t)
	alpha := 0.5

	opts := DefaultPhylogeneticOptions()
	opts.Metric = phylo.GeneralizedUniFrac
	opts.Alpha = &alpha
	opts.VarianceAdjusted = true
	opts.BypassTips = true
	opts.Threads = 3
	opts.UMAP = threeNeighbors(t)
	dm, err := DistancesPhylogenetic(table, tree, opts)
	require.NoError(t, err)
	requireValidMatrix(t, dm, table.SampleIDs)
}

func TestDistancesPhylogenetic_AlphaRequiresGeneralized(t *testing.T) {
	alpha := 0.5
	opts := DefaultPhylogeneticOptions()
	opts.Alpha = &alpha
	_, err := DistancesPhylogenetic(fixtureTable(t), fixtureTree(t), opts)
	require.ErrorContains(t, err, "alpha")
}

func TestDistancesPhylogenetic_Errors(t *testing.T) {
	table := fixtureTable(t)

	opts := DefaultPhylogeneticOptions()
	opts.Metric = "peanut_unifrac"
	_, err := DistancesPhylogenetic(table, fixtureTree(t), opts)
	require.ErrorIs(t, err, phylo.ErrUnknownMethod)

	small, err := phylo.ParseNewickString("(O1:1,O2:1);")
	require.NoError(t, err)
	_, err = DistancesPhylogenetic(table, small, DefaultPhylogeneticOptions())
	require.ErrorIs(t, err, phylo.ErrMissingTips)

	empty, err := NewFeatureTable([]string{"a", "b"}, []string{"O1"}, [][]float64{{0}, {0}})
	require.NoError(t, err)
	_, err = DistancesPhylogenetic(empty, fixtureTree(t), DefaultPhylogeneticOptions())
	require.ErrorIs(t, err, ErrEmptyTable)
}

func TestValidMetrics_IncludesAitchison(t *testing.T) {
	require.Contains(t, ValidMetrics(), Aitchison)
	require.Contains(t, ValidMetrics(), "euclidean")
	require.NotContains(t, ValidMetrics(), umap.PrecomputedMetric)
}

func TestDistances_ZeroOptionsUseDefaults(t *testing.T) {
	table := fixtureTable(t)
	opts := DefaultDistanceOptions()
	opts.Metric = MetricName(Aitchison)
	opts.UMAP = threeNeighbors(t)
	opts.Workers = 1
	want, err := Distances(table, opts)
	require.NoError(t, err)

	got, err := Distances(table, DistanceOptions{
		Metric:  MetricName(Aitchison),
		UMAP:    threeNeighbors(t),
		Workers: 1,
	})
	require.NoError(t, err)
	require.Equal(t, want.Data, got.Data)
}

func TestDistances_AitchisonRejectsNonPositiveParts(t *testing.T) {
	opts := DefaultDistanceOptions()
	opts.Metric = MetricName(Aitchison)
	opts.UMAP = threeNeighbors(t)
	opts.Pseudocount = -1
	_, err := Distances(fixtureTable(t), opts)
	require.ErrorIs(t, err, ErrNonPositiveComposition)
	require.ErrorContains(t, err, "S1")
}

func TestDistances_NonFiniteMetric(t *testing.T) {
	opts := DefaultDistanceOptions()
	opts.Metric = MetricFunc(umap.DistanceFunc(func(a, b []float64) float64 {
		return math.NaN()
	}))
	opts.UMAP = threeNeighbors(t)
	_, err := Distances(fixtureTable(t), opts)
	require.ErrorIs(t, err, umap.ErrNonFiniteDistance)
}

func TestDistancesPhylogenetic_ZeroOptionsUseDefaults(t *testing.T) {
	table := fixtureTable(t)
	tree := fixtureTree(t)
	opts := DefaultPhylogeneticOptions()
	opts.UMAP = threeNeighbors(t)
	want, err := DistancesPhylogenetic(table, tree, opts)
	require.NoError(t, err)

	got, err := DistancesPhylogenetic(table, tree, PhylogeneticOptions{UMAP: threeNeighbors(t)})
	require.NoError(t, err)
	require.Equal(t, want.Data, got.Data)
}
