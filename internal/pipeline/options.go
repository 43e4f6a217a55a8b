package pipeline

import (
	"errors"
	"fmt"

	"github.com/TrevorS/umap"
	"github.com/TrevorS/umap/diversity"
)

const (
	// DefaultMetric is the feature-space metric used for distances.
	DefaultMetric = "euclidean"

	// DefaultRarefySeed seeds rarefaction.
	DefaultRarefySeed = int64(42)

	// DefaultPseudocount is added before the aitchison metric.
	DefaultPseudocount = 1.0

	// DefaultPlotFormat is the visualization output format.
	DefaultPlotFormat = "svg"
)

// Options configures a pipeline run. Field tags name the keys of a TOML run
// file.
type Options struct {
	// SamplingDepth rarefies every sample to this many observations before
	// distances are computed. 0 skips rarefaction.
	SamplingDepth int `toml:"sampling_depth"`

	// RarefySeed seeds rarefaction. nil means 42; 0 is a valid seed.
	RarefySeed *int64 `toml:"rarefy_seed"`

	// Metric names the distance metric. Default: euclidean.
	Metric string `toml:"metric"`

	// Pseudocount is added before the aitchison metric. nil means 1. A set
	// value must be positive.
	Pseudocount *float64 `toml:"pseudocount"`

	// UMAPArgs is a textual mapping of extra embedder parameters, such as
	// "{'n_neighbors': 3}".
	UMAPArgs string `toml:"umap_args"`

	// ColorBy names the metadata column used to colour the plot. Default:
	// the first metadata column.
	ColorBy string `toml:"color_by"`

	// PlotFormat is the visualization format. Default: svg.
	PlotFormat string `toml:"plot_format"`

	// Workers bounds parallelism. 0 means runtime.NumCPU().
	Workers int `toml:"workers"`

	umapOptions umap.Options
}

// ValidateAndSetDefaults fills unset fields and checks the rest.
func (o *Options) ValidateAndSetDefaults() error {
	if o.SamplingDepth < 0 {
		return fmt.Errorf("sampling depth must be >= 0, got %d", o.SamplingDepth)
	}
	if o.RarefySeed == nil {
		seed := DefaultRarefySeed
		o.RarefySeed = &seed
	}
	if o.Metric == "" {
		o.Metric = DefaultMetric
	}
	if o.Pseudocount == nil {
		pc := DefaultPseudocount
		o.Pseudocount = &pc
	}
	if !(*o.Pseudocount > 0) {
		return fmt.Errorf("pseudocount must be > 0, got %g", *o.Pseudocount)
	}
	if o.PlotFormat == "" {
		o.PlotFormat = DefaultPlotFormat
	}
	if o.Workers < 0 {
		return errors.New("workers must be >= 0")
	}
	parsed, err := umap.ParseOptions(o.UMAPArgs)
	if err != nil {
		return err
	}
	o.umapOptions = parsed
	return nil
}

func (o *Options) distanceOptions() diversity.DistanceOptions {
	d := diversity.DefaultDistanceOptions()
	d.Metric = diversity.MetricName(o.Metric)
	d.Pseudocount = *o.Pseudocount
	d.UMAP = o.umapOptions
	d.Workers = o.Workers
	return d
}
