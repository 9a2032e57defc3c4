package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kicad-nettrace/internal/config"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
)

var (
	// Global flags
	verbose bool

	// Set up by PersistentPreRunE
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nettrace",
	Short: "KiCad schematic query and net tracing tools",
	Long: `nettrace reads KiCad schematic files (.kicad_sch) and infers which
named nets each component is wired to, using only wire geometry.

Examples:
  nettrace sch info board.kicad_sch         # Show schematic summary
  nettrace sch components board.kicad_sch  # List placed components
  nettrace sch trace board.kicad_sch U1     # Trace the nets around U1
  nettrace serve                            # Serve the tools over MCP (stdio)

Settings are read from NETTRACE_* environment variables and a .env file
in the working directory; command-line flags take precedence.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	cfg = c

	level := cfg.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	// stdout carries results and the MCP stream, logs go to stderr
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return nil
}

// loadSchematic parses a schematic with the configured logger
func loadSchematic(path string) (*schematic.Document, error) {
	doc, err := schematic.ParseFile(path, schematic.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("error parsing schematic: %w", err)
	}
	if len(doc.Gaps) > 0 {
		logger.Info("some schematic blocks were skipped", "path", doc.Path, "count", len(doc.Gaps))
	}
	return doc, nil
}
