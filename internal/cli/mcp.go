package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-patterns/internal/mcp"
	"github.com/mvp-joe/project-patterns/internal/pattern"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [path]",
	Short: "Start the MCP server for pattern inventory queries",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
explore the components, hooks and types of your project.

The MCP server:
- Analyzes the project on startup and re-analyzes on file changes
- Provides the analyze_patterns, find_patterns and module_dependents tools
- Communicates via stdio (standard MCP transport)

Example:
  patterns mcp`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	// stdout carries the protocol; diagnostics go to stderr.
	logger := newLogger(os.Stderr, verbose)
	fmt.Fprintf(os.Stderr, "Patterns MCP Server\n")
	fmt.Fprintf(os.Stderr, "Project Root: %s\n\n", root)

	ws, err := newWatchSession(root, cfg, logger, func(*pattern.Result) {})
	if err != nil {
		return err
	}
	defer ws.Close()

	go func() {
		if err := ws.coordinator.Start(ctx); err != nil {
			logger.Error("watcher stopped", "error", err)
		}
	}()

	server, err := mcp.NewMCPServer(ws.coordinator, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
