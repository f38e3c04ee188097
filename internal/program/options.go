package program

import (
	"errors"
	"log/slog"
)

var (
	// ErrInvalidRoot indicates the project root is missing or not a directory.
	ErrInvalidRoot = errors.New("invalid project root")

	// ErrInvalidPattern indicates an include pattern failed to compile.
	ErrInvalidPattern = errors.New("invalid include pattern")

	// ErrUnresolved indicates a node's type could not be determined.
	ErrUnresolved = errors.New("type not resolved")
)

// JSX modes understood by the parser setup.
const (
	JSXReact    = "react"
	JSXPreserve = "preserve"
	JSXNone     = "none"
)

// CompilerOptions mirrors the handful of tsconfig compiler options that affect
// how sources are parsed.
type CompilerOptions struct {
	Target  string `mapstructure:"target" yaml:"target"`
	Module  string `mapstructure:"module" yaml:"module"`
	JSX     string `mapstructure:"jsx" yaml:"jsx"`
	AllowJS bool   `mapstructure:"allow_js" yaml:"allow_js"`
	Strict  bool   `mapstructure:"strict" yaml:"strict"`
}

// DefaultCompilerOptions returns the permissive configuration used when the
// caller supplies none.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{
		Target:  "ES2020",
		Module:  "CommonJS",
		JSX:     JSXReact,
		AllowJS: true,
		Strict:  false,
	}
}

// DefaultInclude are the glob patterns matched against root-relative paths.
var DefaultInclude = []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"}

// DefaultSkipPatterns excludes dependency-manager and build-output directories.
var DefaultSkipPatterns = []string{"node_modules", ".git", "dist", "build"}

// DefaultMaxFileSize is the largest file parsed by default (1MB).
const DefaultMaxFileSize int64 = 1024 * 1024

// Options configures program construction.
type Options struct {
	// Include holds glob patterns for source files, relative to the root.
	Include []string
	// SkipPatterns holds path substrings; any match excludes the path.
	SkipPatterns []string
	// MaxFileSize in bytes; larger files are skipped. Zero disables the limit.
	MaxFileSize int64
	// ExtraFiles are additional test files included even outside the root.
	ExtraFiles []string
	Compiler   CompilerOptions
	// Concurrency bounds parallel parsing. Zero means GOMAXPROCS.
	Concurrency int
	Logger      *slog.Logger
}

// DefaultOptions returns options with the documented defaults.
func DefaultOptions() Options {
	return Options{
		Include:      append([]string(nil), DefaultInclude...),
		SkipPatterns: append([]string(nil), DefaultSkipPatterns...),
		MaxFileSize:  DefaultMaxFileSize,
		Compiler:     DefaultCompilerOptions(),
	}
}
