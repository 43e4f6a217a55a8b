package diversity

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/sampleuv"
)

// ErrNoSamplesRemain is returned by Rarefy when every sample is shallower
// than the requested depth.
var ErrNoSamplesRemain = errors.New("diversity: no samples remain after rarefaction")

// Rarefy subsamples every sample of table to exactly depth observations
// without replacement. Samples with fewer than depth observations are
// dropped, as are features absent from every remaining sample. Counts must
// be whole numbers. The same seed always yields the same table.
func Rarefy(table *FeatureTable, depth int, seed int64) (*FeatureTable, error) {
	if depth < 1 {
		return nil, fmt.Errorf("diversity: sampling depth must be >= 1, got %d", depth)
	}
	if table == nil {
		return nil, ErrEmptyTable
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	s := uint64(seed)
	rng := rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))

	nf := len(table.FeatureIDs)
	var ids []string
	var rows [][]float64
	cum := make([]int, nf)
	for i, row := range table.Counts {
		total := 0
		for j, c := range row {
			if c != math.Trunc(c) {
				return nil, fmt.Errorf("%w: sample %q feature %q has non-integer count %v", ErrInvalidTable, table.SampleIDs[i], table.FeatureIDs[j], c)
			}
			total += int(c)
			cum[j] = total
		}
		if total < depth {
			continue
		}

		// Draw depth observation positions from [0, total) and map each back
		// to the feature owning it.
		draws := make([]int, depth)
		sampleuv.WithoutReplacement(draws, total, rng)
		out := make([]float64, nf)
		for _, p := range draws {
			f := sort.Search(nf, func(j int) bool { return cum[j] > p })
			out[f]++
		}
		ids = append(ids, table.SampleIDs[i])
		rows = append(rows, out)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: depth %d", ErrNoSamplesRemain, depth)
	}

	var keep []int
	for j := 0; j < nf; j++ {
		for _, row := range rows {
			if row[j] > 0 {
				keep = append(keep, j)
				break
			}
		}
	}
	featureIDs := make([]string, len(keep))
	for k, j := range keep {
		featureIDs[k] = table.FeatureIDs[j]
	}
	for i, row := range rows {
		trimmed := make([]float64, len(keep))
		for k, j := range keep {
			trimmed[k] = row[j]
		}
		rows[i] = trimmed
	}
	return &FeatureTable{SampleIDs: ids, FeatureIDs: featureIDs, Counts: rows}, nil
}
