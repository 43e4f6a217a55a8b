package diversity

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/TrevorS/umap"
	"github.com/TrevorS/umap/phylo"
)

const (
	// DefaultDistanceComponents is the embedding dimension used before
	// distances are measured.
	DefaultDistanceComponents = 3
	// DefaultDistanceRandomState seeds the distance-stage embedding.
	DefaultDistanceRandomState int64 = 42
)

// DistanceOptions configures Distances.
type DistanceOptions struct {
	// Metric compares samples in feature space. Default: euclidean.
	Metric Metric

	// NComponents is the embedding dimension. 0 means 3.
	NComponents int

	// Pseudocount is added to every count before the aitchison metric is
	// applied. Ignored by other metrics. 0 means 1.
	Pseudocount float64

	// RandomState seeds the embedding. 0 means 42; set UMAP.RandomState to
	// seed with 0. UMAP.RandomState, when set, takes precedence.
	RandomState int64

	// UMAP overlays additional embedder parameters, typically parsed with
	// umap.ParseOptions. It must not set metric or n_components.
	UMAP umap.Options

	// Workers bounds the parallelism of distance computations. 0 means
	// runtime.NumCPU().
	Workers int

	// Logger receives progress messages. nil discards them.
	Logger *log.Logger
}

// DefaultDistanceOptions returns euclidean distances over a three
// dimensional embedding seeded with 42.
func DefaultDistanceOptions() DistanceOptions {
	return DistanceOptions{
		NComponents: DefaultDistanceComponents,
		Pseudocount: 1,
		RandomState: DefaultDistanceRandomState,
	}
}

// Distances embeds the samples of table with UMAP and returns the
// Euclidean distances between the embedded samples, labelled in table order.
//
// The metric is validated before anything else, then the table must contain
// at least one non-zero count. With the precomputed metric the table itself
// must be a square sample-by-sample distance matrix.
func Distances(table *FeatureTable, opts DistanceOptions) (*DistanceMatrix, error) {
	if err := opts.Metric.validate(); err != nil {
		return nil, err
	}
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := checkOverlay(opts.UMAP); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	cfg := embedderConfig(opts.NComponents, opts.RandomState, opts.UMAP, opts.Workers, opts.Logger)
	name := opts.Metric.name()
	data := table.Counts
	switch {
	case opts.Metric.Func != nil:
		cfg.MetricFunc = opts.Metric.Func
	case name == Aitchison:
		data = addPseudocount(table.Counts, opts.Pseudocount)
		if err := checkComposition(table.SampleIDs, data); err != nil {
			return nil, err
		}
		cfg.MetricFunc = AitchisonMetric{}
	default:
		cfg.Metric = name
	}

	logger := cfg.Logger
	logger.Debug("computing umap distances", "metric", name, "samples", len(table.SampleIDs), "features", len(table.FeatureIDs))

	var emb [][]float64
	var err error
	if opts.Metric.precomputed() {
		if len(table.FeatureIDs) != len(table.SampleIDs) {
			return nil, fmt.Errorf("%w: precomputed metric requires a square table, got %dx%d",
				ErrInvalidTable, len(table.SampleIDs), len(table.FeatureIDs))
		}
		emb, err = umap.FitTransformPrecomputed(flatten(data), len(data), cfg)
	} else {
		emb, err = umap.FitTransform(data, cfg)
	}
	if err != nil {
		return nil, err
	}
	return embeddingDistances(table.SampleIDs, emb, cfg.Workers)
}

// applyDefaults fills in zero-valued fields with their defaults.
func (o *DistanceOptions) applyDefaults() {
	if o.NComponents == 0 {
		o.NComponents = DefaultDistanceComponents
	}
	if o.Pseudocount == 0 {
		o.Pseudocount = 1
	}
	if o.RandomState == 0 {
		o.RandomState = DefaultDistanceRandomState
	}
}

// PhylogeneticOptions configures DistancesPhylogenetic.
type PhylogeneticOptions struct {
	// Metric is the UniFrac variant. Empty means unweighted_unifrac.
	Metric phylo.Method

	// VarianceAdjusted applies the variance adjustment to every branch.
	VarianceAdjusted bool

	// Alpha is the generalized UniFrac exponent. It may only be set for
	// generalized_unifrac, where it defaults to 1.
	Alpha *float64

	// BypassTips ignores tip branches.
	BypassTips bool

	// Threads bounds the parallelism of the UniFrac stage. 0 means 1.
	Threads int

	// NComponents is the embedding dimension. 0 means 3.
	NComponents int

	// RandomState seeds the embedding. 0 means 42; set UMAP.RandomState to
	// seed with 0.
	RandomState int64

	// UMAP overlays additional embedder parameters. It must not set metric
	// or n_components.
	UMAP umap.Options

	// Logger receives progress messages. nil discards them.
	Logger *log.Logger
}

// DefaultPhylogeneticOptions returns unweighted UniFrac on one thread.
func DefaultPhylogeneticOptions() PhylogeneticOptions {
	return PhylogeneticOptions{
		Metric:      phylo.UnweightedUniFrac,
		Threads:     1,
		NComponents: DefaultDistanceComponents,
		RandomState: DefaultDistanceRandomState,
	}
}

// DistancesPhylogenetic computes a UniFrac distance matrix over tree, embeds
// it with UMAP as precomputed distances and returns the Euclidean distances
// between the embedded samples.
func DistancesPhylogenetic(table *FeatureTable, tree *phylo.Tree, opts PhylogeneticOptions) (*DistanceMatrix, error) {
	opts.applyDefaults()
	if _, err := phylo.ParseMethod(string(opts.Metric)); err != nil {
		return nil, err
	}
	alpha := 1.0
	if opts.Alpha != nil {
		if opts.Metric != phylo.GeneralizedUniFrac {
			return nil, fmt.Errorf("diversity: alpha may only be set for %s, not %s", phylo.GeneralizedUniFrac, opts.Metric)
		}
		alpha = *opts.Alpha
	}
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := checkOverlay(opts.UMAP); err != nil {
		return nil, err
	}

	cfg := embedderConfig(opts.NComponents, opts.RandomState, opts.UMAP, opts.Threads, opts.Logger)
	cfg.Logger.Debug("computing phylogenetic distances", "metric", opts.Metric, "samples", len(table.SampleIDs))

	dist, err := phylo.UniFrac(table.FeatureIDs, table.Counts, tree, phylo.Options{
		Method:           opts.Metric,
		VarianceAdjusted: opts.VarianceAdjusted,
		Alpha:            alpha,
		BypassTips:       opts.BypassTips,
		Threads:          opts.Threads,
	})
	if err != nil {
		return nil, err
	}
	emb, err := umap.FitTransformPrecomputed(dist, len(table.SampleIDs), cfg)
	if err != nil {
		return nil, err
	}
	return embeddingDistances(table.SampleIDs, emb, cfg.Workers)
}

func (o *PhylogeneticOptions) applyDefaults() {
	if o.Metric == "" {
		o.Metric = phylo.UnweightedUniFrac
	}
	if o.Threads == 0 {
		o.Threads = 1
	}
	if o.NComponents == 0 {
		o.NComponents = DefaultDistanceComponents
	}
	if o.RandomState == 0 {
		o.RandomState = DefaultDistanceRandomState
	}
}

func checkTable(table *FeatureTable) error {
	if table == nil {
		return ErrEmptyTable
	}
	if err := table.Validate(); err != nil {
		return err
	}
	if table.Sum() == 0 {
		return ErrEmptyTable
	}
	return nil
}

var errOverlayConflict = errors.New("diversity: umap options may not set metric or n_components")

func checkOverlay(o umap.Options) error {
	if o.Metric != nil || o.NComponents != nil {
		return errOverlayConflict
	}
	return nil
}

func embedderConfig(nComponents int, seed int64, overlay umap.Options, workers int, logger *log.Logger) umap.Config {
	cfg := umap.DefaultConfig()
	cfg.NComponents = nComponents
	cfg.RandomState = seed
	overlay.Apply(&cfg)
	cfg.Workers = workers
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	cfg.Logger = logger
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return cfg
}

func flatten(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	dims := len(rows[0])
	flat := make([]float64, len(rows)*dims)
	for i, row := range rows {
		copy(flat[i*dims:], row)
	}
	return flat
}

func embeddingDistances(ids []string, emb [][]float64, workers int) (*DistanceMatrix, error) {
	n := len(emb)
	dims := 0
	if n > 0 {
		dims = len(emb[0])
	}
	data := umap.ComputePairwiseDistancesParallel(flatten(emb), n, dims, umap.EuclideanMetric{}, workers)
	return NewDistanceMatrix(append([]string(nil), ids...), data)
}
