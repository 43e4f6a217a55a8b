// Package diversity computes sample distances and ordinations for microbiome
// feature tables by way of UMAP embeddings.
//
// The distance stage embeds the samples of a count table with UMAP and
// returns the pairwise Euclidean distances between embedded samples:
//
//	opts := diversity.DefaultDistanceOptions()
//	opts.Metric = diversity.MetricName(diversity.Aitchison)
//	dm, err := diversity.Distances(table, opts)
//
// The embedding stage turns any distance matrix into a three-column
// ordination whose axes are ordered by variance:
//
//	ord, err := diversity.Embed(dm, diversity.DefaultEmbedOptions())
//
// PCoA and Rarefy provide the classical ordination and depth normalisation
// used alongside them.
package diversity
