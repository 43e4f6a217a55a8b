package diversity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TrevorS/umap"
	"github.com/TrevorS/umap/phylo"
)

func fixtureTable(t *testing.T) *FeatureTable {
	t.Helper()
	table, err := NewFeatureTable(
		[]string{"S1", "S2", "S3", "S4", "S5", "S6"},
		[]string{"O1", "O2", "O3", "O4"},
		[][]float64{
			{1, 2, 0, 4},
			{1, 4, 3, 5},
			{0, 0, 1, 2},
			{0, 1, 2, 1},
			{1, 2, 2, 0},
			{0, 1, 1, 0},
		})
	require.NoError(t, err)
	return table
}

func fixtureTree(t *testing.T) *phylo.Tree {
	t.Helper()
	tree, err := phylo.ParseNewickString("((O1:0.25, (O4:0.25, O2:0.50):0.1):0.25, O3:0.75)root;")
	require.NoError(t, err)
	return tree
}

func fixtureMatrix(t *testing.T) *DistanceMatrix {
	t.Helper()
	dm, err := NewDistanceMatrix(
		[]string{"S0", "S1", "S2", "S3", "S4"},
		[]float64{
			0, 1, 2, 3, 4,
			1, 0, 4, 5, 6,
			2, 4, 0, 6, 7,
			3, 5, 6, 0, 8,
			4, 6, 7, 8, 0,
		})
	require.NoError(t, err)
	return dm
}

func threeNeighbors(t *testing.T) umap.Options {
	t.Helper()
	opts, err := umap.ParseOptions("{'n_neighbors': 3}")
	require.NoError(t, err)
	return opts
}

// requireValidMatrix checks the structural guarantees of every distance
// result: square over ids, symmetric, zero diagonal and non-negative.
func requireValidMatrix(t *testing.T, dm *DistanceMatrix, ids []string) {
	t.Helper()
	require.Equal(t, ids, dm.IDs)
	n := len(ids)
	require.Len(t, dm.Data, n*n)
	for i := 0; i < n; i++ {
		require.Zero(t, dm.At(i, i))
		for j := 0; j < n; j++ {
			require.GreaterOrEqual(t, dm.At(i, j), 0.0)
			require.Equal(t, dm.At(i, j), dm.At(j, i))
		}
	}
}
