// Package umap implements Uniform Manifold Approximation and Projection
// (UMAP) for dimensionality reduction.
//
// UMAP builds a fuzzy k-nearest-neighbor graph in the input space and then
// optimises a low-dimensional layout whose own fuzzy graph matches it,
// preserving local neighborhood structure.
//
// Basic usage:
//
//	cfg := umap.DefaultConfig()
//	cfg.NNeighbors = 10
//	cfg.NComponents = 3
//	embedding, err := umap.FitTransform(data, cfg)
//	// embedding[i] is the low-dimensional position of data[i]
//
// For precomputed distance matrices:
//
//	embedding, err := umap.FitTransformPrecomputed(distMatrix, n, cfg)
//
// # Metrics
//
// Config.Metric accepts any name returned by [ValidMetrics]. Set
// Config.MetricFunc to use a custom distance; it may be invoked from several
// goroutines at once, so it must not mutate shared state.
//
// # Options text
//
// [ParseOptions] reads the loose "{'n_neighbors': 3}" mapping accepted by
// the command line and rejects unknown keys up front:
//
//	opts, err := umap.ParseOptions("{'n_neighbors': 3, 'min_dist': 0.5}")
//	opts.Apply(&cfg)
package umap
