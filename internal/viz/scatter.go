// Package viz renders ordinations as scatter plots coloured by a sample
// annotation.
package viz

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/TrevorS/umap/diversity"
)

// ErrMissingSamples is returned when ColorBy lacks an entry for a sample.
var ErrMissingSamples = errors.New("viz: samples missing from colour annotation")

// Options configures Scatter.
type Options struct {
	// XAxis and YAxis index the ordination axes to plot. Default: 0 and 1.
	XAxis, YAxis int

	Title string

	// ColorBy maps sample IDs to a category. Each category gets its own
	// colour, glyph and legend entry. nil plots every sample alike.
	ColorBy map[string]string

	// Format is any gonum/plot output format: svg, png, pdf, eps, jpg or
	// tif. Default: svg.
	Format string

	// Width and Height of the figure. Default: 6 by 6 inches.
	Width, Height vg.Length
}

// DefaultOptions returns a 6×6 inch SVG of the first two axes.
func DefaultOptions() Options {
	return Options{XAxis: 0, YAxis: 1, Format: "svg", Width: 6 * vg.Inch, Height: 6 * vg.Inch}
}

// Render draws ord and returns the encoded image.
func Render(ord *diversity.Ordination, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Scatter(&buf, ord, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Scatter draws two axes of ord to w.
func Scatter(w io.Writer, ord *diversity.Ordination, opts Options) error {
	if ord == nil {
		return errors.New("viz: nil ordination")
	}
	if opts.Format == "" {
		opts.Format = "svg"
	}
	if opts.Width == 0 {
		opts.Width = 6 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 6 * vg.Inch
	}
	d := ord.Dims()
	for _, a := range []int{opts.XAxis, opts.YAxis} {
		if a < 0 || a >= d {
			return fmt.Errorf("viz: axis %d out of range for %d axes", a, d)
		}
	}

	groups, order, err := group(ord.SampleIDs, opts.ColorBy)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = axisLabel(ord, opts.XAxis)
	p.Y.Label.Text = axisLabel(ord, opts.YAxis)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, name := range order {
		xys := make(plotter.XYs, len(groups[name]))
		for k, s := range groups[name] {
			xys[k].X = ord.Coordinates[s][opts.XAxis]
			xys[k].Y = ord.Coordinates[s][opts.YAxis]
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("viz: %w", err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = plotutil.Shape(i)
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		if opts.ColorBy != nil {
			p.Legend.Add(name, sc)
		}
	}

	wt, err := p.WriterTo(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return fmt.Errorf("viz: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// group partitions sample indices by category, with categories sorted so
// colours are stable across runs.
func group(ids []string, colorBy map[string]string) (map[string][]int, []string, error) {
	groups := make(map[string][]int)
	if colorBy == nil {
		all := make([]int, len(ids))
		for i := range all {
			all[i] = i
		}
		groups[""] = all
		return groups, []string{""}, nil
	}
	var missing []string
	for i, id := range ids {
		cat, ok := colorBy[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		groups[cat] = append(groups[cat], i)
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingSamples, strings.Join(missing, ", "))
	}
	order := make([]string, 0, len(groups))
	for cat := range groups {
		order = append(order, cat)
	}
	sort.Strings(order)
	return groups, order, nil
}

func axisLabel(ord *diversity.Ordination, axis int) string {
	name := ord.Axes[axis]
	if axis < len(ord.ProportionExplained) && ord.ProportionExplained[axis] > 0 {
		return fmt.Sprintf("%s (%.1f%%)", name, 100*ord.ProportionExplained[axis])
	}
	return name
}
