package tsvio

import (
	"fmt"
	"io"
	"strings"

	"github.com/TrevorS/umap/diversity"
)

const tableHeader = "#OTU ID"

// ReadTable parses a BIOM classic TSV table: an optional
// "# Constructed from biom file" comment, a header row whose first cell is
// "#OTU ID" followed by sample IDs, then one row per feature. The returned
// table is oriented samples by features.
func ReadTable(r io.Reader) (*diversity.FeatureTable, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	start := -1
	for i, rec := range records {
		first := strings.TrimSpace(rec[0])
		if first == tableHeader || !strings.HasPrefix(first, "#") {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("read table: missing header row")
	}
	header := records[start]
	sampleIDs := append([]string(nil), header[1:]...)

	var featureIDs []string
	byFeature := make([][]float64, 0, len(records)-start-1)
	for i, rec := range records[start+1:] {
		if strings.HasPrefix(rec[0], "#") {
			continue
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("read table: line %d has %d fields, expected %d", start+i+2, len(rec), len(header))
		}
		vals, err := parseFloats(rec[1:], start+i+2)
		if err != nil {
			return nil, fmt.Errorf("read table: %w", err)
		}
		featureIDs = append(featureIDs, rec[0])
		byFeature = append(byFeature, vals)
	}

	counts := make([][]float64, len(sampleIDs))
	for s := range counts {
		counts[s] = make([]float64, len(featureIDs))
		for f := range featureIDs {
			counts[s][f] = byFeature[f][s]
		}
	}
	return diversity.NewFeatureTable(sampleIDs, featureIDs, counts)
}

// WriteTable writes t in the format read by ReadTable.
func WriteTable(w io.Writer, t *diversity.FeatureTable) error {
	if _, err := io.WriteString(w, "# Constructed from biom file\n"); err != nil {
		return err
	}
	cw := newWriter(w)
	if err := cw.Write(append([]string{tableHeader}, t.SampleIDs...)); err != nil {
		return err
	}
	row := make([]string, len(t.SampleIDs)+1)
	for f, id := range t.FeatureIDs {
		row[0] = id
		for s := range t.SampleIDs {
			row[s+1] = formatFloat(t.Counts[s][f])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
