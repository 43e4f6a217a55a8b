package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/TrevorS/umap/internal/pipeline"
	"github.com/TrevorS/umap/internal/tsvio"
)

// Names of the files written by the pipeline command.
const (
	rarefiedTableFile  = "rarefied-table.tsv"
	distanceMatrixFile = "distance-matrix.tsv"
	pcoaFile           = "pcoa.txt"
	plotFilePrefix     = "plot."
)

func (c *CLI) pipelineCommand() *cobra.Command {
	var tablePath, metadataPath, configPath, outDir string
	var flags pipeline.Options
	var rarefySeed int64
	var pseudocount float64

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Rarefy, compute UMAP distances, run PCoA and plot in one step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			if configPath != "" {
				var err error
				if opts, err = loadRunConfig(configPath); err != nil {
					return err
				}
			}
			flags.RarefySeed = &rarefySeed
			flags.Pseudocount = &pseudocount
			mergeFlags(cmd, &opts, flags)

			table, err := tsvio.ReadFile(tablePath, tsvio.ReadTable)
			if err != nil {
				return err
			}
			var md *tsvio.Metadata
			if metadataPath != "" {
				if md, err = tsvio.ReadFile(metadataPath, tsvio.ReadMetadata); err != nil {
					return err
				}
			}

			prog := newProgress(c.Logger)
			res, err := pipeline.NewRunner(c.Logger).Run(cmd.Context(), table, md, opts)
			if err != nil {
				return err
			}
			if err := writeResults(outDir, res, opts.PlotFormat); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Pipeline run %s wrote %s", res.RunID, outDir))
			return nil
		},
	}

	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "feature table (BIOM TSV)")
	cmd.Flags().StringVarP(&metadataPath, "metadata", "m", "", "sample metadata (TSV)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML run file; flags override its values")
	cmd.Flags().StringVar(&outDir, "output-dir", "", "directory for the results")
	cmd.Flags().IntVar(&flags.SamplingDepth, "sampling-depth", 0, "rarefaction depth (0 = no rarefaction)")
	cmd.Flags().Int64Var(&rarefySeed, "rarefy-seed", pipeline.DefaultRarefySeed, "rarefaction seed")
	cmd.Flags().StringVar(&flags.Metric, "metric", pipeline.DefaultMetric, "distance metric")
	cmd.Flags().Float64Var(&pseudocount, "pseudocount", pipeline.DefaultPseudocount, "pseudocount added before the aitchison metric")
	cmd.Flags().StringVar(&flags.UMAPArgs, "umap-args", "", `extra UMAP parameters, e.g. "{'n_neighbors': 3}"`)
	cmd.Flags().StringVar(&flags.ColorBy, "color-by", "", "metadata column used to colour the plot (default first column)")
	cmd.Flags().StringVar(&flags.PlotFormat, "plot-format", pipeline.DefaultPlotFormat, "plot format: svg, png or pdf")
	cmd.Flags().IntVar(&flags.Workers, "workers", 0, "parallel workers (0 = all CPUs)")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}

// loadRunConfig decodes a TOML run file, rejecting keys that name no option.
func loadRunConfig(path string) (pipeline.Options, error) {
	var opts pipeline.Options
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return opts, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return opts, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return opts, nil
}

// mergeFlags copies every explicitly set flag onto opts. Unset flags only
// apply when opts has no value of its own.
func mergeFlags(cmd *cobra.Command, opts *pipeline.Options, flags pipeline.Options) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("sampling-depth") {
		opts.SamplingDepth = flags.SamplingDepth
	}
	if set("rarefy-seed") || opts.RarefySeed == nil {
		opts.RarefySeed = flags.RarefySeed
	}
	if set("metric") || opts.Metric == "" {
		opts.Metric = flags.Metric
	}
	if set("pseudocount") || opts.Pseudocount == nil {
		opts.Pseudocount = flags.Pseudocount
	}
	if set("umap-args") {
		opts.UMAPArgs = flags.UMAPArgs
	}
	if set("color-by") {
		opts.ColorBy = flags.ColorBy
	}
	if set("plot-format") || opts.PlotFormat == "" {
		opts.PlotFormat = flags.PlotFormat
	}
	if set("workers") {
		opts.Workers = flags.Workers
	}
}

func writeResults(dir string, res *pipeline.Result, format string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := tsvio.WriteFile(filepath.Join(dir, rarefiedTableFile), res.RarefiedTable, tsvio.WriteTable); err != nil {
		return err
	}
	if err := tsvio.WriteFile(filepath.Join(dir, distanceMatrixFile), res.DistanceMatrix, tsvio.WriteDistanceMatrix); err != nil {
		return err
	}
	if err := tsvio.WriteFile(filepath.Join(dir, pcoaFile), res.PCoAResults, tsvio.WriteOrdination); err != nil {
		return err
	}
	plotPath := filepath.Join(dir, plotFilePrefix+format)
	if err := os.WriteFile(plotPath, res.Plot, 0644); err != nil {
		return fmt.Errorf("write file %s: %w", plotPath, err)
	}
	return nil
}
