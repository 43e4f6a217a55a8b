package viz

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TrevorS/umap/diversity"
)

func sampleOrdination() *diversity.Ordination {
	return &diversity.Ordination{
		ShortMethodName:     "PCoA",
		SampleIDs:           []string{"S1", "S2", "S3", "S4"},
		Axes:                []string{"PC1", "PC2", "PC3"},
		Coordinates:         [][]float64{{1, 2, 0}, {-1, 0.5, 0}, {0.3, -2, 0}, {-0.3, -0.5, 0}},
		Eigvals:             []float64{3, 1, 0},
		ProportionExplained: []float64{0.75, 0.25, 0},
	}
}

func TestRender_SVG(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "body-site"
	opts.ColorBy = map[string]string{"S1": "gut", "S2": "gut", "S3": "tongue", "S4": "palm"}
	out, err := Render(sampleOrdination(), opts)
	require.NoError(t, err)
	svg := string(out)
	require.Contains(t, svg, "<svg")
	require.Contains(t, svg, "body-site")
	require.Contains(t, svg, "PC1 (75.0%)")
	for _, cat := range []string{"gut", "palm", "tongue"} {
		require.Contains(t, svg, cat)
	}
}

func TestRender_Deterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.ColorBy = map[string]string{"S1": "a", "S2": "b", "S3": "a", "S4": "c"}
	a, err := Render(sampleOrdination(), opts)
	require.NoError(t, err)
	b, err := Render(sampleOrdination(), opts)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestScatter_PNG(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = "png"
	var buf bytes.Buffer
	require.NoError(t, Scatter(&buf, sampleOrdination(), opts))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestScatter_ZeroOptions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Scatter(&buf, sampleOrdination(), Options{YAxis: 2}))
	require.True(t, strings.Contains(buf.String(), "PC3"))
}

func TestScatter_Errors(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultOptions()
	opts.YAxis = 3
	require.Error(t, Scatter(&buf, sampleOrdination(), opts))

	opts = DefaultOptions()
	opts.ColorBy = map[string]string{"S1": "gut"}
	err := Scatter(&buf, sampleOrdination(), opts)
	require.ErrorIs(t, err, ErrMissingSamples)
	require.ErrorContains(t, err, "S4")

	opts = DefaultOptions()
	opts.Format = "bmp"
	require.Error(t, Scatter(&buf, sampleOrdination(), opts))

	require.Error(t, Scatter(&buf, nil, DefaultOptions()))
}
