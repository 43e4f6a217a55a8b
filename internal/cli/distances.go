package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TrevorS/umap"
	"github.com/TrevorS/umap/diversity"
	"github.com/TrevorS/umap/internal/tsvio"
	"github.com/TrevorS/umap/phylo"
)

func (c *CLI) distancesCommand() *cobra.Command {
	var tablePath, output, umapArgs string
	opts := diversity.DefaultDistanceOptions()
	var metric string

	cmd := &cobra.Command{
		Use:   "distances",
		Short: "Compute UMAP distances between the samples of a feature table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overlay, err := umap.ParseOptions(umapArgs)
			if err != nil {
				return err
			}
			table, err := tsvio.ReadFile(tablePath, tsvio.ReadTable)
			if err != nil {
				return err
			}
			opts.Metric = diversity.MetricName(metric)
			opts.UMAP = overlay
			opts.Logger = c.Logger

			prog := newProgress(c.Logger)
			dm, err := diversity.Distances(table, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Computed %s distances for %d samples", metric, dm.Size()))
			return emit(cmd, output, dm, tsvio.WriteDistanceMatrix)
		},
	}

	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "feature table (BIOM TSV)")
	cmd.Flags().StringVar(&metric, "metric", "euclidean", "distance metric ("+strings.Join(diversity.ValidMetrics(), ", ")+" or precomputed)")
	cmd.Flags().Float64Var(&opts.Pseudocount, "pseudocount", opts.Pseudocount, "pseudocount added before the aitchison metric")
	cmd.Flags().IntVar(&opts.NComponents, "n-components", opts.NComponents, "embedding dimension")
	cmd.Flags().StringVar(&umapArgs, "umap-args", "", `extra UMAP parameters, e.g. "{'n_neighbors': 3}"`)
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel workers (0 = all CPUs)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output distance matrix (default stdout)")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func (c *CLI) phylogeneticCommand() *cobra.Command {
	var tablePath, treePath, output, umapArgs, metric string
	var alpha float64
	opts := diversity.DefaultPhylogeneticOptions()

	cmd := &cobra.Command{
		Use:   "distances-phylogenetic",
		Short: "Compute UMAP distances from a UniFrac distance matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overlay, err := umap.ParseOptions(umapArgs)
			if err != nil {
				return err
			}
			method, err := phylo.ParseMethod(metric)
			if err != nil {
				return err
			}
			table, err := tsvio.ReadFile(tablePath, tsvio.ReadTable)
			if err != nil {
				return err
			}
			tree, err := readTree(treePath)
			if err != nil {
				return err
			}
			opts.Metric = method
			if cmd.Flags().Changed("alpha") {
				opts.Alpha = &alpha
			}
			opts.UMAP = overlay
			opts.Logger = c.Logger

			prog := newProgress(c.Logger)
			dm, err := diversity.DistancesPhylogenetic(table, tree, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Computed %s distances for %d samples", method, dm.Size()))
			return emit(cmd, output, dm, tsvio.WriteDistanceMatrix)
		},
	}

	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "feature table (BIOM TSV)")
	cmd.Flags().StringVar(&treePath, "tree", "", "rooted phylogeny (Newick)")
	cmd.Flags().StringVar(&metric, "metric", string(phylo.UnweightedUniFrac), "UniFrac variant")
	cmd.Flags().IntVar(&opts.Threads, "threads", opts.Threads, "UniFrac threads")
	cmd.Flags().BoolVar(&opts.VarianceAdjusted, "variance-adjusted", false, "apply variance adjustment")
	cmd.Flags().Float64Var(&alpha, "alpha", 1, "generalized UniFrac alpha")
	cmd.Flags().BoolVar(&opts.BypassTips, "bypass-tips", false, "ignore tip branches")
	cmd.Flags().StringVar(&umapArgs, "umap-args", "", `extra UMAP parameters, e.g. "{'n_neighbors': 3}"`)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output distance matrix (default stdout)")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("tree")
	return cmd
}

func readTree(path string) (*phylo.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tree, err := phylo.ReadNewick(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

func (c *CLI) metricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the supported distance metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, m := range diversity.ValidMetrics() {
				fmt.Fprintln(w, m)
			}
			fmt.Fprintln(w, umap.PrecomputedMetric)
			for _, m := range phylo.Methods() {
				fmt.Fprintln(w, m)
			}
			return nil
		},
	}
}
