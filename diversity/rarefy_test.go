package diversity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRarefy_EverySampleAtDepth(t *testing.T) {
	table := fixtureTable(t)
	out, err := Rarefy(table, 2, 42)
	require.NoError(t, err)
	require.Equal(t, table.SampleIDs, out.SampleIDs)
	for _, total := range out.SampleTotals() {
		require.Equal(t, 2.0, total)
	}
	// Every retained feature is observed somewhere.
	for j := range out.FeatureIDs {
		var col float64
		for _, row := range out.Counts {
			col += row[j]
		}
		require.Positive(t, col)
	}
}

func TestRarefy_NeverExceedsOriginal(t *testing.T) {
	table := fixtureTable(t)
	out, err := Rarefy(table, 3, 7)
	require.NoError(t, err)

	orig := make(map[string]map[string]float64)
	for i, id := range table.SampleIDs {
		orig[id] = make(map[string]float64)
		for j, f := range table.FeatureIDs {
			orig[id][f] = table.Counts[i][j]
		}
	}
	for i, id := range out.SampleIDs {
		for j, f := range out.FeatureIDs {
			require.LessOrEqual(t, out.Counts[i][j], orig[id][f])
		}
	}
}

func TestRarefy_DropsShallowSamples(t *testing.T) {
	out, err := Rarefy(fixtureTable(t), 5, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"S1", "S2", "S5"}, out.SampleIDs)
}

func TestRarefy_FullDepthIsIdentity(t *testing.T) {
	table, err := NewFeatureTable([]string{"a"}, []string{"x", "y", "z"}, [][]float64{{2, 0, 3}})
	require.NoError(t, err)
	out, err := Rarefy(table, 5, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "z"}, out.FeatureIDs)
	require.Equal(t, [][]float64{{2, 3}}, out.Counts)
}

func TestRarefy_Deterministic(t *testing.T) {
	table := fixtureTable(t)
	a, err := Rarefy(table, 2, 99)
	require.NoError(t, err)
	b, err := Rarefy(table, 2, 99)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestRarefy_Errors(t *testing.T) {
	table := fixtureTable(t)

	_, err := Rarefy(table, 0, 1)
	require.Error(t, err)

	_, err = Rarefy(table, 100, 1)
	require.ErrorIs(t, err, ErrNoSamplesRemain)

	frac, err := NewFeatureTable([]string{"a"}, []string{"x"}, [][]float64{{1.5}})
	require.NoError(t, err)
	_, err = Rarefy(frac, 1, 1)
	require.ErrorIs(t, err, ErrInvalidTable)
}
