package tsvio

import (
	"fmt"
	"io"
	"strings"
)

// Metadata is a table of per-sample string annotations.
type Metadata struct {
	IDs     []string
	Columns []string
	Values  [][]string // Values[sample][column]
}

// ReadMetadata parses a sample metadata file. The first row names the ID
// column and the annotation columns; later rows starting with "#" (such as
// "#q2:types") are directives and are skipped.
func ReadMetadata(r io.Reader) (*Metadata, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read metadata: empty input")
	}
	md := &Metadata{Columns: append([]string(nil), records[0][1:]...)}
	seen := make(map[string]struct{})
	for i, rec := range records[1:] {
		if strings.HasPrefix(rec[0], "#") {
			continue
		}
		id := strings.TrimSpace(rec[0])
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("read metadata: duplicate sample ID %q", id)
		}
		seen[id] = struct{}{}
		vals := make([]string, len(md.Columns))
		for j := range vals {
			if j+1 < len(rec) {
				vals[j] = strings.TrimSpace(rec[j+1])
			}
		}
		if len(rec) > len(md.Columns)+1 {
			return nil, fmt.Errorf("read metadata: line %d has %d fields, expected %d", i+2, len(rec), len(md.Columns)+1)
		}
		md.IDs = append(md.IDs, id)
		md.Values = append(md.Values, vals)
	}
	return md, nil
}

// Column returns the values of the named column keyed by sample ID.
func (m *Metadata) Column(name string) (map[string]string, error) {
	for j, c := range m.Columns {
		if c == name {
			out := make(map[string]string, len(m.IDs))
			for i, id := range m.IDs {
				out[id] = m.Values[i][j]
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("metadata has no column %q; columns are %s", name, strings.Join(m.Columns, ", "))
}
