package tsvio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TrevorS/umap/diversity"
)

// Section headers of the ordination results text format.
const (
	sectionEigvals     = "Eigvals"
	sectionProportion  = "Proportion explained"
	sectionSpecies     = "Species"
	sectionSite        = "Site"
	sectionBiplot      = "Biplot"
	sectionConstraints = "Site constraints"
)

// WriteOrdination writes ord as an ordination results file: eigenvalues,
// proportions explained and per-sample coordinates, with the empty species,
// biplot and site constraint sections other tools expect.
func WriteOrdination(w io.Writer, ord *diversity.Ordination) error {
	cw := newWriter(w)
	d := ord.Dims()
	section := func(records ...[]string) error {
		for _, rec := range records {
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	if err := section([]string{sectionEigvals, strconv.Itoa(d)}, formatFloats(padded(ord.Eigvals, d))); err != nil {
		return err
	}
	if err := section([]string{sectionProportion, strconv.Itoa(d)}, formatFloats(padded(ord.ProportionExplained, d))); err != nil {
		return err
	}
	if err := section([]string{sectionSpecies, "0", "0"}); err != nil {
		return err
	}
	site := [][]string{{sectionSite, strconv.Itoa(len(ord.SampleIDs)), strconv.Itoa(d)}}
	for i, id := range ord.SampleIDs {
		site = append(site, append([]string{id}, formatFloats(ord.Coordinates[i])...))
	}
	if err := section(site...); err != nil {
		return err
	}
	if err := section([]string{sectionBiplot, "0", "0"}); err != nil {
		return err
	}
	for _, rec := range [][]string{{sectionConstraints, "0", "0"}} {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func padded(vals []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, vals)
	return out
}

// ReadOrdination parses the format written by WriteOrdination. The file
// carries neither method names nor axis labels, so axes are named PC1, PC2,
// and so on.
func ReadOrdination(r io.Reader) (*diversity.Ordination, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	ord := &diversity.Ordination{}
	for i := 0; i < len(records); {
		rec := records[i]
		if len(rec) < 2 {
			return nil, fmt.Errorf("read ordination: malformed section header %q", strings.Join(rec, "\t"))
		}
		name := rec[0]
		rows, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("read ordination: section %q: %w", name, err)
		}
		i++
		switch name {
		case sectionEigvals, sectionProportion:
			var vals []float64
			if rows > 0 {
				if i >= len(records) {
					return nil, fmt.Errorf("read ordination: section %q is truncated", name)
				}
				if vals, err = parseFloats(records[i], i+1); err != nil {
					return nil, fmt.Errorf("read ordination: %w", err)
				}
				i++
			}
			if name == sectionEigvals {
				ord.Eigvals = vals
			} else {
				ord.ProportionExplained = vals
			}
		case sectionSite:
			if i+rows > len(records) {
				return nil, fmt.Errorf("read ordination: section %q is truncated", name)
			}
			for _, row := range records[i : i+rows] {
				vals, err := parseFloats(row[1:], i+1)
				if err != nil {
					return nil, fmt.Errorf("read ordination: %w", err)
				}
				ord.SampleIDs = append(ord.SampleIDs, row[0])
				ord.Coordinates = append(ord.Coordinates, vals)
			}
			i += rows
		case sectionSpecies, sectionBiplot, sectionConstraints:
			i += rows
		default:
			return nil, fmt.Errorf("read ordination: unknown section %q", name)
		}
	}
	if len(ord.Coordinates) > 0 {
		d := len(ord.Coordinates[0])
		ord.Axes = make([]string, d)
		for j := range ord.Axes {
			ord.Axes[j] = fmt.Sprintf("PC%d", j+1)
		}
	}
	return ord, nil
}
