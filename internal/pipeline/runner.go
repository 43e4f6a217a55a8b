// Package pipeline chains the optional rarefy, UMAP distance, PCoA and
// visualization stages into one run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/TrevorS/umap/diversity"
	"github.com/TrevorS/umap/internal/tsvio"
	"github.com/TrevorS/umap/internal/viz"
)

// Result holds every artifact of a run.
type Result struct {
	RunID string

	// RarefiedTable is the table distances were computed from: the
	// rarefied table, or the input table when rarefaction was skipped.
	RarefiedTable  *diversity.FeatureTable
	DistanceMatrix *diversity.DistanceMatrix
	PCoAResults    *diversity.Ordination

	// Plot is the encoded scatter plot of the first two PCoA axes.
	Plot []byte

	Stats Stats
}

// Stats records stage timings.
type Stats struct {
	RarefyTime   time.Duration
	DistanceTime time.Duration
	PCoATime     time.Duration
	PlotTime     time.Duration
}

// Runner executes pipeline runs. It holds no per-run state and may be
// shared between goroutines.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Run executes rarefy → distances → PCoA → plot. Any stage failure aborts
// the run and is returned wrapped with the stage name. metadata may be nil,
// in which case the plot is not coloured.
func (r *Runner) Run(ctx context.Context, table *diversity.FeatureTable, metadata *tsvio.Metadata, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID)

	column, colorBy, err := colourColumn(metadata, opts.ColorBy)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Rarefy
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	if opts.SamplingDepth > 0 {
		rarefied, err := diversity.Rarefy(table, opts.SamplingDepth, *opts.RarefySeed)
		if err != nil {
			return nil, fmt.Errorf("rarefy: %w", err)
		}
		result.RarefiedTable = rarefied
		result.Stats.RarefyTime = time.Since(start)
		logger.Info("rarefied table",
			"depth", opts.SamplingDepth,
			"samples", len(rarefied.SampleIDs),
			"dropped", len(table.SampleIDs)-len(rarefied.SampleIDs),
			"duration", result.Stats.RarefyTime)
	} else {
		result.RarefiedTable = table
		logger.Debug("skipping rarefaction")
	}

	// Stage 2: Distances
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = time.Now()
	dopts := opts.distanceOptions()
	dopts.Logger = logger
	dm, err := diversity.Distances(result.RarefiedTable, dopts)
	if err != nil {
		return nil, fmt.Errorf("distances: %w", err)
	}
	result.DistanceMatrix = dm
	result.Stats.DistanceTime = time.Since(start)
	logger.Info("computed umap distances",
		"metric", opts.Metric,
		"samples", dm.Size(),
		"duration", result.Stats.DistanceTime)

	// Stage 3: PCoA
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = time.Now()
	pc, err := diversity.PCoA(dm)
	if err != nil {
		return nil, fmt.Errorf("pcoa: %w", err)
	}
	result.PCoAResults = pc
	result.Stats.PCoATime = time.Since(start)
	logger.Info("computed pcoa", "axes", pc.Dims(), "duration", result.Stats.PCoATime)

	// Stage 4: Plot
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = time.Now()
	vopts := viz.DefaultOptions()
	vopts.Format = opts.PlotFormat
	vopts.Title = column
	vopts.ColorBy = colorBy
	plot, err := viz.Render(pc, vopts)
	if err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}
	result.Plot = plot
	result.Stats.PlotTime = time.Since(start)
	logger.Info("rendered plot", "format", opts.PlotFormat, "bytes", len(plot), "duration", result.Stats.PlotTime)

	return result, nil
}

// colourColumn resolves the metadata column used to colour the plot,
// defaulting to the first column.
func colourColumn(md *tsvio.Metadata, name string) (string, map[string]string, error) {
	if md == nil {
		if name != "" {
			return "", nil, fmt.Errorf("color column %q given without metadata", name)
		}
		return "", nil, nil
	}
	if name == "" {
		if len(md.Columns) == 0 {
			return "", nil, nil
		}
		name = md.Columns[0]
	}
	values, err := md.Column(name)
	return name, values, err
}
