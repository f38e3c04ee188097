package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mvp-joe/project-patterns/internal/config"
	"github.com/mvp-joe/project-patterns/internal/storage"
)

// projectRoot resolves the optional path argument to an absolute directory.
func projectRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root: %w", err)
	}
	return abs, nil
}

// loadConfig loads .patterns/config.yml from root.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger returns a text logger on w; debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// storePath resolves a store path relative to the project root.
func storePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// openStore opens the snapshot store if storage is enabled.
func openStore(root string, cfg *config.Config) (*storage.Store, error) {
	if !cfg.Storage.Enabled || cfg.Storage.Path == "" {
		return nil, nil
	}
	store, err := storage.Open(storePath(root, cfg.Storage.Path), false)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern store: %w", err)
	}
	return store, nil
}

// createOutput opens path for writing; "-" is stdout and is never closed.
func createOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
