package umap

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/charmbracelet/log"
)

// Init selects how the low-dimensional embedding is initialised.
type Init string

const (
	InitSpectral Init = "spectral"
	InitRandom   Init = "random"
)

// Config controls UMAP embedding behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// NNeighbors is the size of the local neighborhood used to build the
	// fuzzy graph. Larger values favour global structure. Must be >= 2.
	// Values above the number of samples are truncated to n-1. Default: 15.
	NNeighbors int

	// NComponents is the dimensionality of the embedding. Must be >= 1.
	// Default: 2.
	NComponents int

	// Metric names the input-space distance. Any name from ValidMetrics, or
	// PrecomputedMetric when the input is a square distance matrix.
	// Ignored when MetricFunc is set. Default: "euclidean".
	Metric string

	// MetricFunc, when non-nil, overrides Metric with a caller-supplied
	// distance. It may be called concurrently from Workers goroutines.
	MetricFunc DistanceMetric

	// MinkowskiP is the exponent used by the "minkowski" metric. Default: 2.
	MinkowskiP float64

	// NEpochs is the number of optimisation epochs. 0 picks 500 for up to
	// 10000 samples and 200 above that.
	NEpochs int

	// LearningRate is the initial SGD step size. Must be > 0. Default: 1.
	LearningRate float64

	// Init is "spectral" or "random". Spectral falls back to random when
	// the graph is disconnected or too small. Default: "spectral".
	Init Init

	// MinDist is the minimum distance between embedded points.
	// Must be in [0, Spread]. Default: 0.1.
	MinDist float64

	// Spread is the effective scale of embedded points. Default: 1.
	Spread float64

	// SetOpMixRatio interpolates between fuzzy union (1) and fuzzy
	// intersection (0) when symmetrising the graph. Default: 1.
	SetOpMixRatio float64

	// LocalConnectivity is the number of nearest neighbors assumed to be
	// fully connected. Must be >= 0. Default: 1.
	LocalConnectivity float64

	// RepulsionStrength weights negative samples. Must be >= 0. Default: 1.
	RepulsionStrength float64

	// NegativeSampleRate is the number of negative samples per positive
	// sample. Must be >= 0. Default: 5.
	NegativeSampleRate int

	// A and B override the fitted curve parameters when both are > 0.
	A, B float64

	// RandomState seeds every random choice; equal seeds give equal
	// embeddings.
	RandomState int64

	// Workers controls the number of goroutines used for neighbor search
	// and pairwise distances. 0 means runtime.NumCPU().
	Workers int

	// Logger receives progress messages. nil discards them.
	Logger *log.Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		NNeighbors:         15,
		NComponents:        2,
		Metric:             "euclidean",
		MinkowskiP:         2,
		LearningRate:       1,
		Init:               InitSpectral,
		MinDist:            0.1,
		Spread:             1,
		SetOpMixRatio:      1,
		LocalConnectivity:  1,
		RepulsionStrength:  1,
		NegativeSampleRate: 5,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.NNeighbors < 2 {
		return fmt.Errorf("umap: NNeighbors must be >= 2, got %d", cfg.NNeighbors)
	}
	if cfg.NComponents < 1 {
		return fmt.Errorf("umap: NComponents must be >= 1, got %d", cfg.NComponents)
	}
	if cfg.MinDist < 0 {
		return fmt.Errorf("umap: MinDist must be >= 0, got %g", cfg.MinDist)
	}
	if cfg.Spread <= 0 {
		return fmt.Errorf("umap: Spread must be > 0, got %g", cfg.Spread)
	}
	if cfg.MinDist > cfg.Spread {
		return fmt.Errorf("umap: MinDist (%g) must be <= Spread (%g)", cfg.MinDist, cfg.Spread)
	}
	if cfg.SetOpMixRatio < 0 || cfg.SetOpMixRatio > 1 {
		return fmt.Errorf("umap: SetOpMixRatio must be in [0, 1], got %g", cfg.SetOpMixRatio)
	}
	if cfg.LocalConnectivity < 0 {
		return fmt.Errorf("umap: LocalConnectivity must be >= 0, got %g", cfg.LocalConnectivity)
	}
	if cfg.RepulsionStrength < 0 {
		return fmt.Errorf("umap: RepulsionStrength must be >= 0, got %g", cfg.RepulsionStrength)
	}
	if cfg.LearningRate <= 0 {
		return fmt.Errorf("umap: LearningRate must be > 0, got %g", cfg.LearningRate)
	}
	if cfg.NegativeSampleRate < 0 {
		return fmt.Errorf("umap: NegativeSampleRate must be >= 0, got %d", cfg.NegativeSampleRate)
	}
	if cfg.NEpochs < 0 {
		return fmt.Errorf("umap: NEpochs must be >= 0, got %d", cfg.NEpochs)
	}
	if cfg.Init != InitSpectral && cfg.Init != InitRandom {
		return fmt.Errorf("umap: Init must be %q or %q, got %q", InitSpectral, InitRandom, cfg.Init)
	}
	if cfg.MetricFunc == nil && !IsValidMetric(cfg.Metric) {
		return fmt.Errorf("umap: unknown metric %q", cfg.Metric)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == "" {
		cfg.Metric = "euclidean"
	}
	if cfg.MinkowskiP == 0 {
		cfg.MinkowskiP = 2
	}
	if cfg.Init == "" {
		cfg.Init = InitSpectral
	}
	if cfg.Spread == 0 {
		cfg.Spread = 1
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
}

// ErrTooFewSamples is returned when there are not enough samples to build a
// neighborhood graph.
var ErrTooFewSamples = errors.New("umap: at least 2 samples are required")

// ErrNonFiniteDistance is returned when a neighbour distance is NaN or
// infinite, typically from a metric applied outside its domain.
var ErrNonFiniteDistance = errors.New("umap: non-finite neighbor distance")

// FitTransform embeds data (one row per sample, all rows the same length)
// into cfg.NComponents dimensions. When cfg.Metric is PrecomputedMetric,
// data must be a square distance matrix.
func FitTransform(data [][]float64, cfg Config) ([][]float64, error) {
	n := len(data)
	dims := 0
	if n > 0 {
		dims = len(data[0])
	}
	flat := make([]float64, n*dims)
	for i, row := range data {
		if len(row) != dims {
			return nil, fmt.Errorf("umap: row %d has %d columns, expected %d", i, len(row), dims)
		}
		copy(flat[i*dims:], row)
	}

	if cfg.MetricFunc == nil && cfg.Metric == PrecomputedMetric {
		if dims != n {
			return nil, fmt.Errorf("umap: precomputed metric requires a square matrix, got %dx%d", n, dims)
		}
		return FitTransformPrecomputed(flat, n, cfg)
	}
	return fit(flat, n, dims, false, cfg)
}

// FitTransformPrecomputed embeds a flat n×n row-major distance matrix. The
// Config.Metric and Config.MetricFunc fields are ignored.
func FitTransformPrecomputed(distMatrix []float64, n int, cfg Config) ([][]float64, error) {
	if len(distMatrix) != n*n {
		return nil, fmt.Errorf("umap: distMatrix length %d does not match n*n = %d (n=%d)", len(distMatrix), n*n, n)
	}
	cfg.MetricFunc = nil
	cfg.Metric = PrecomputedMetric
	return fit(distMatrix, n, n, true, cfg)
}

func fit(flat []float64, n, dims int, precomputed bool, cfg Config) ([][]float64, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, ErrTooFewSamples
	}
	logger := cfg.Logger

	k := cfg.NNeighbors
	if k >= n {
		logger.Warn("n_neighbors is larger than the dataset size; truncating", "n_neighbors", k, "truncated", n-1)
		k = n - 1
	}
	// k counts the point itself, as the neighbor search returns it first.
	searchK := k + 1

	var knnIdx [][]int
	var knnDist [][]float64
	if precomputed {
		knnIdx, knnDist = KNNFromMatrix(flat, n, searchK, cfg.Workers)
	} else {
		metric := cfg.MetricFunc
		if metric == nil {
			var err error
			metric, err = MetricByName(cfg.Metric, cfg.MinkowskiP)
			if err != nil {
				return nil, err
			}
		}
		knnIdx, knnDist = NearestNeighbors(flat, n, dims, searchK, metric, cfg.Workers)
	}
	if err := checkFinite(knnIdx, knnDist); err != nil {
		return nil, err
	}
	logger.Debug("computed nearest neighbors", "samples", n, "k", k)

	edges := FuzzySimplicialSet(knnIdx, knnDist, k, cfg.SetOpMixRatio, cfg.LocalConnectivity)

	nEpochs := cfg.NEpochs
	if nEpochs == 0 {
		nEpochs = 500
		if n > 10000 {
			nEpochs = 200
		}
	}
	edges = pruneEdges(edges, nEpochs)
	logger.Debug("built fuzzy simplicial set", "edges", len(edges), "epochs", nEpochs)

	a, b := cfg.A, cfg.B
	if a <= 0 || b <= 0 {
		var err error
		a, b, err = FindABParams(cfg.Spread, cfg.MinDist)
		if err != nil {
			return nil, err
		}
	}

	seed := uint64(cfg.RandomState)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var emb [][]float64
	if cfg.Init == InitSpectral {
		var err error
		emb, err = spectralLayout(edges, n, cfg.NComponents)
		if err != nil {
			logger.Debug("spectral initialisation failed; using random", "err", err)
			emb = randomLayout(n, cfg.NComponents, rng)
		} else {
			expandWithNoise(emb, rng)
		}
	} else {
		emb = randomLayout(n, cfg.NComponents, rng)
	}
	rescale(emb)

	optimizeLayout(emb, edges, layoutParams{
		a:                  a,
		b:                  b,
		gamma:              cfg.RepulsionStrength,
		initialAlpha:       cfg.LearningRate,
		negativeSampleRate: float64(cfg.NegativeSampleRate),
		nEpochs:            nEpochs,
	}, rng, func(epoch int) {
		if (epoch+1)%100 == 0 {
			logger.Debug("optimising layout", "epoch", epoch+1, "total", nEpochs)
		}
	})

	for i, row := range emb {
		for d, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("umap: embedding diverged at sample %d, component %d", i, d)
			}
		}
	}
	return emb, nil
}

// pruneEdges drops edges too weak to be sampled in nEpochs epochs.
func pruneEdges(edges []Edge, nEpochs int) []Edge {
	var maxW float64
	for _, e := range edges {
		maxW = math.Max(maxW, e.Weight)
	}
	threshold := maxW / float64(nEpochs)
	kept := edges[:0]
	for _, e := range edges {
		if e.Weight >= threshold {
			kept = append(kept, e)
		}
	}
	return kept
}

func checkFinite(knnIdx [][]int, knnDist [][]float64) error {
	for i, row := range knnDist {
		for j, d := range row {
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return fmt.Errorf("%w: sample %d to sample %d is %v", ErrNonFiniteDistance, i, knnIdx[i][j], d)
			}
		}
	}
	return nil
}
