// Package phylo reads rooted phylogenies in Newick format and computes the
// UniFrac family of phylogenetic beta-diversity distances between samples.
//
//	tree, err := phylo.ParseNewickString("((O1:0.25,(O4:0.25,O2:0.5):0.1):0.25,O3:0.75)root;")
//	opts := phylo.DefaultOptions()
//	opts.Method = phylo.UnweightedUniFrac
//	dm, err := phylo.UniFrac(featureIDs, counts, tree, opts)
//	// dm is a flat n×n row-major distance matrix over the rows of counts
//
// Pairwise distances are spread over Options.Threads goroutines.
package phylo
