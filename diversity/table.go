package diversity

import (
	"fmt"
	"math"
)

// FeatureTable holds non-negative counts of features (columns) observed in
// samples (rows).
type FeatureTable struct {
	SampleIDs  []string
	FeatureIDs []string
	Counts     [][]float64 // Counts[sample][feature]
}

// NewFeatureTable validates and wraps counts. The slices are not copied.
func NewFeatureTable(sampleIDs, featureIDs []string, counts [][]float64) (*FeatureTable, error) {
	t := &FeatureTable{SampleIDs: sampleIDs, FeatureIDs: featureIDs, Counts: counts}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that IDs are unique, the table is rectangular and every
// count is finite and non-negative.
func (t *FeatureTable) Validate() error {
	if len(t.Counts) != len(t.SampleIDs) {
		return fmt.Errorf("%w: %d sample IDs for %d rows", ErrInvalidTable, len(t.SampleIDs), len(t.Counts))
	}
	if err := uniqueIDs("sample", t.SampleIDs); err != nil {
		return err
	}
	if err := uniqueIDs("feature", t.FeatureIDs); err != nil {
		return err
	}
	for i, row := range t.Counts {
		if len(row) != len(t.FeatureIDs) {
			return fmt.Errorf("%w: sample %q has %d counts, expected %d", ErrInvalidTable, t.SampleIDs[i], len(row), len(t.FeatureIDs))
		}
		for j, c := range row {
			if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
				return fmt.Errorf("%w: sample %q feature %q has count %v", ErrInvalidTable, t.SampleIDs[i], t.FeatureIDs[j], c)
			}
		}
	}
	return nil
}

func uniqueIDs(kind string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate %s ID %q", ErrInvalidTable, kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Sum returns the total of all counts.
func (t *FeatureTable) Sum() float64 {
	var sum float64
	for _, row := range t.Counts {
		for _, c := range row {
			sum += c
		}
	}
	return sum
}

// SampleTotals returns the per-sample count totals.
func (t *FeatureTable) SampleTotals() []float64 {
	totals := make([]float64, len(t.Counts))
	for i, row := range t.Counts {
		for _, c := range row {
			totals[i] += c
		}
	}
	return totals
}

// Clone returns a deep copy of t.
func (t *FeatureTable) Clone() *FeatureTable {
	counts := make([][]float64, len(t.Counts))
	for i, row := range t.Counts {
		counts[i] = append([]float64(nil), row...)
	}
	return &FeatureTable{
		SampleIDs:  append([]string(nil), t.SampleIDs...),
		FeatureIDs: append([]string(nil), t.FeatureIDs...),
		Counts:     counts,
	}
}
