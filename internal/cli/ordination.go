package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TrevorS/umap/diversity"
	"github.com/TrevorS/umap/internal/tsvio"
)

func (c *CLI) embedCommand() *cobra.Command {
	var dmPath, output string
	opts := diversity.DefaultEmbedOptions()

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed a distance matrix with UMAP as a centred ordination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dm, err := tsvio.ReadFile(dmPath, tsvio.ReadDistanceMatrix)
			if err != nil {
				return err
			}
			opts.Logger = c.Logger
			prog := newProgress(c.Logger)
			ord, err := diversity.Embed(dm, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Embedded %d samples in %d dimensions", dm.Size(), opts.NumberOfDimensions))
			return emit(cmd, output, ord, tsvio.WriteOrdination)
		},
	}

	cmd.Flags().StringVarP(&dmPath, "distance-matrix", "d", "", "input distance matrix (TSV)")
	cmd.Flags().IntVar(&opts.NNeighbors, "n-neighbors", opts.NNeighbors, "neighbourhood size")
	cmd.Flags().Float64Var(&opts.MinDist, "min-dist", opts.MinDist, "minimum distance between embedded points, in [0, 1]")
	cmd.Flags().IntVar(&opts.NumberOfDimensions, "number-of-dimensions", opts.NumberOfDimensions, "embedding dimensions, in [1, 3]")
	cmd.Flags().Int64Var(&opts.RandomState, "random-state", opts.RandomState, "random seed")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel workers (0 = all CPUs)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output ordination (default stdout)")
	_ = cmd.MarkFlagRequired("distance-matrix")
	return cmd
}

func (c *CLI) centerCommand() *cobra.Command {
	var ordPath, output string

	cmd := &cobra.Command{
		Use:   "center",
		Short: "Centre an ordination and rotate it onto its principal axes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ord, err := tsvio.ReadFile(ordPath, tsvio.ReadOrdination)
			if err != nil {
				return err
			}
			centred, err := diversity.Center(ord)
			if err != nil {
				return err
			}
			c.Logger.Debug("centred ordination", "samples", len(centred.SampleIDs), "axes", centred.Dims())
			return emit(cmd, output, centred, tsvio.WriteOrdination)
		},
	}

	cmd.Flags().StringVarP(&ordPath, "ordination", "i", "", "input ordination")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output ordination (default stdout)")
	_ = cmd.MarkFlagRequired("ordination")
	return cmd
}

func (c *CLI) pcoaCommand() *cobra.Command {
	var dmPath, output string

	cmd := &cobra.Command{
		Use:   "pcoa",
		Short: "Principal coordinate analysis of a distance matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dm, err := tsvio.ReadFile(dmPath, tsvio.ReadDistanceMatrix)
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			ord, err := diversity.PCoA(dm)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Computed PCoA of %d samples", dm.Size()))
			return emit(cmd, output, ord, tsvio.WriteOrdination)
		},
	}

	cmd.Flags().StringVarP(&dmPath, "distance-matrix", "d", "", "input distance matrix (TSV)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output ordination (default stdout)")
	_ = cmd.MarkFlagRequired("distance-matrix")
	return cmd
}

func (c *CLI) rarefyCommand() *cobra.Command {
	var tablePath, output string
	var depth int
	var seed int64

	cmd := &cobra.Command{
		Use:   "rarefy",
		Short: "Subsample every sample of a feature table to an even depth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tsvio.ReadFile(tablePath, tsvio.ReadTable)
			if err != nil {
				return err
			}
			rarefied, err := diversity.Rarefy(table, depth, seed)
			if err != nil {
				return err
			}
			c.Logger.Info("Rarefied table", "depth", depth, "kept", len(rarefied.SampleIDs), "dropped", len(table.SampleIDs)-len(rarefied.SampleIDs))
			return emit(cmd, output, rarefied, tsvio.WriteTable)
		},
	}

	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "feature table (BIOM TSV)")
	cmd.Flags().IntVar(&depth, "sampling-depth", 0, "observations kept per sample")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output table (default stdout)")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("sampling-depth")
	return cmd
}
