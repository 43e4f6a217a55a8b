package tsvio

import (
	"fmt"
	"io"

	"github.com/TrevorS/umap/diversity"
)

// ReadDistanceMatrix parses a labelled square matrix: a header row of
// sample IDs (after an empty corner cell) and one row per sample.
func ReadDistanceMatrix(r io.Reader) (*diversity.DistanceMatrix, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read distance matrix: empty input")
	}
	ids := append([]string(nil), records[0][1:]...)
	n := len(ids)
	if len(records)-1 != n {
		return nil, fmt.Errorf("read distance matrix: %d rows for %d IDs", len(records)-1, n)
	}
	data := make([]float64, 0, n*n)
	for i, rec := range records[1:] {
		if len(rec) != n+1 {
			return nil, fmt.Errorf("read distance matrix: line %d has %d fields, expected %d", i+2, len(rec), n+1)
		}
		if rec[0] != ids[i] {
			return nil, fmt.Errorf("read distance matrix: row %d is %q, expected %q", i+1, rec[0], ids[i])
		}
		vals, err := parseFloats(rec[1:], i+2)
		if err != nil {
			return nil, fmt.Errorf("read distance matrix: %w", err)
		}
		data = append(data, vals...)
	}
	return diversity.NewDistanceMatrix(ids, data)
}

// WriteDistanceMatrix writes dm in the format read by ReadDistanceMatrix.
func WriteDistanceMatrix(w io.Writer, dm *diversity.DistanceMatrix) error {
	cw := newWriter(w)
	if err := cw.Write(append([]string{""}, dm.IDs...)); err != nil {
		return err
	}
	n := dm.Size()
	for i, id := range dm.IDs {
		if err := cw.Write(append([]string{id}, formatFloats(dm.Data[i*n:(i+1)*n])...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
