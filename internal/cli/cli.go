// Package cli implements the umapdist command-line interface.
//
// Every command reads and writes tab-separated text: feature tables in
// BIOM classic format, labelled distance matrices, ordination results and
// sample metadata. Output goes to --output, or to stdout when it is unset.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/TrevorS/umap/internal/tsvio"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "umapdist",
		Short:        "umapdist computes UMAP-based sample distances and ordinations",
		Long:         `umapdist embeds microbiome feature tables with UMAP and derives distance matrices, ordinations and plots from the embedding.`,
		SilenceUsage: true,
	}

	root.AddCommand(c.distancesCommand())
	root.AddCommand(c.phylogeneticCommand())
	root.AddCommand(c.embedCommand())
	root.AddCommand(c.centerCommand())
	root.AddCommand(c.pcoaCommand())
	root.AddCommand(c.rarefyCommand())
	root.AddCommand(c.pipelineCommand())
	root.AddCommand(c.metricsCommand())

	return root
}

// emit writes v to path, or to the command's stdout when path is empty.
func emit[T any](cmd *cobra.Command, path string, v T, write func(io.Writer, T) error) error {
	if path == "" {
		return write(cmd.OutOrStdout(), v)
	}
	return tsvio.WriteFile(path, v, write)
}
