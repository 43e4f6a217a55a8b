// Package tsvio reads and writes the tab-separated text formats exchanged
// by the command line tools: BIOM-style feature tables, labelled distance
// matrices, ordination results and sample metadata.
package tsvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false
	return cr
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

// readRecords returns every non-blank record of r.
func readRecords(r io.Reader) ([][]string, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read tsv: %w", err)
	}
	out := records[:0]
	for _, rec := range records {
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseFloats(fields []string, line int) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d column %d: %w", line, i+2, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatFloats(vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = formatFloat(v)
	}
	return out
}

// ReadFile opens path and decodes it with read.
func ReadFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// WriteFile creates path and encodes v into it with write.
func WriteFile[T any](path string, v T, write func(io.Writer, T) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	if err := write(f, v); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
