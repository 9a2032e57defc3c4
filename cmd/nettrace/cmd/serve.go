package cmd

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kicad-nettrace/internal/tools"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/doccache"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/trace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schematic tools over MCP on stdin/stdout",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the
schematic query and net tracing tools. Parsed schematics are cached in
memory (NETTRACE_CACHE_SIZE documents) and re-read when they change on disk.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cache, err := doccache.New(cfg.CacheSize, logger, schematic.WithLogger(logger))
	if err != nil {
		return err
	}
	tracer, err := trace.New(&cfg.Trace, trace.WithLogger(logger))
	if err != nil {
		return err
	}

	s := tools.NewServer("kicad-nettrace", rootCmd.Version, tools.New(cache, tracer))

	logger.Info("serving MCP on stdio", "cache_size", cfg.CacheSize)
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
