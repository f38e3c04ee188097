package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
)

// ServerName is reported to MCP clients.
const ServerName = "patterns-mcp"

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	source ResultSource
	logger *slog.Logger
	mcp    *server.MCPServer
}

// NewMCPServer creates an MCP server serving the inventory of source.
func NewMCPServer(source ResultSource, version string, logger *slog.Logger) (*MCPServer, error) {
	if source == nil {
		return nil, fmt.Errorf("result source is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)
	AddPatternTools(mcpServer, source)

	return &MCPServer{
		source: source,
		logger: logger,
		mcp:    mcpServer,
	}, nil
}

// Serve runs the server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
