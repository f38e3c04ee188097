package program

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/project-patterns/internal/syntax"
)

// SyntaxError describes the first syntax error found in a file.
type SyntaxError struct {
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at %d:%d near %q", e.Line, e.Column, e.Near)
}

// SourceFile is one parsed file of a Program. It is read-only once built.
type SourceFile struct {
	// Path is the absolute file path.
	Path string
	// RelPath is the slash-separated path relative to the project root.
	RelPath     string
	Source      []byte
	ModTime     time.Time
	ContentHash string
	// Err is set when the file could not be read or contains syntax errors.
	Err  error
	tree *sitter.Tree
}

// Root returns the file's syntax tree root, or nil if the file was not parsed.
func (f *SourceFile) Root() *sitter.Node {
	if f.tree == nil {
		return nil
	}
	return f.tree.RootNode()
}

// Text returns the source text covered by node.
func (f *SourceFile) Text(node *sitter.Node) string {
	return syntax.Text(node, f.Source)
}

// Program is the compiled representation of a project: its parsed source
// files plus a type-resolution service. It is safe for concurrent reads.
type Program struct {
	root         string
	options      Options
	files        []*SourceFile
	skippedFiles int
	checker      *Checker
}

// Build discovers and parses the project's source files under root.
// Per-file read and syntax errors are recorded on the SourceFile; only failures
// that prevent constructing the program at all are returned.
func Build(ctx context.Context, root string, opts Options) (*Program, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, absRoot)
	}

	disc, err := newDiscovery(absRoot, opts)
	if err != nil {
		return nil, err
	}

	candidates, skipped, err := disc.discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c.path] = true
	}
	candidates = append(candidates, disc.extras(opts.ExtraFiles, seen)...)

	logger.Debug("discovered source files", "root", absRoot, "files", len(candidates), "skipped", skipped)

	tsLang := sitter.NewLanguage(typescript.LanguageTypescript())
	tsxLang := sitter.NewLanguage(typescript.LanguageTSX())

	files := make([]*SourceFile, len(candidates))
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lang := tsxLang
			if useTypeScriptGrammar(c.path, opts.Compiler) {
				lang = tsLang
			}
			files[i] = parseFile(c, lang)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		closeFiles(files)
		return nil, fmt.Errorf("program construction interrupted: %w", err)
	}

	return &Program{
		root:         absRoot,
		options:      opts,
		files:        files,
		skippedFiles: skipped,
		checker:      NewChecker(),
	}, nil
}

// useTypeScriptGrammar picks the grammar without JSX support for .ts files,
// and for JavaScript when JSX is disabled.
func useTypeScriptGrammar(path string, compiler CompilerOptions) bool {
	switch filepath.Ext(path) {
	case ".ts":
		return true
	case ".js":
		return compiler.JSX == JSXNone
	}
	return false
}

func parseFile(c candidate, lang *sitter.Language) *SourceFile {
	file := &SourceFile{
		Path:    c.path,
		RelPath: c.relPath,
		ModTime: c.info.ModTime(),
	}

	source, err := os.ReadFile(c.path)
	if err != nil {
		file.Err = fmt.Errorf("failed to read file: %w", err)
		return file
	}
	file.Source = source
	sum := sha256.Sum256(source)
	file.ContentHash = hex.EncodeToString(sum[:])

	tree, err := Parse(source, lang)
	if err != nil {
		file.Err = err
		return file
	}
	file.tree = tree

	if serr := syntaxError(tree.RootNode(), source); serr != nil {
		file.Err = serr
	}
	return file
}

func syntaxError(root *sitter.Node, source []byte) *SyntaxError {
	bad := syntax.FirstError(root)
	if bad == nil {
		return nil
	}
	near := syntax.Text(bad, source)
	if len(near) > 40 {
		near = near[:40]
	}
	return &SyntaxError{Line: syntax.Line(bad), Column: syntax.Column(bad), Near: near}
}

// Parse parses source with the given grammar. The caller owns the tree.
func Parse(source []byte, lang *sitter.Language) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set parser language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser returned no tree")
	}
	return tree, nil
}

// ParseSource builds a single-file SourceFile from in-memory source. TSX is
// used unless relPath ends in .ts. Intended for tools and tests.
func ParseSource(relPath string, source []byte) *SourceFile {
	lang := sitter.NewLanguage(typescript.LanguageTSX())
	if filepath.Ext(relPath) == ".ts" {
		lang = sitter.NewLanguage(typescript.LanguageTypescript())
	}
	sum := sha256.Sum256(source)
	file := &SourceFile{
		Path:        relPath,
		RelPath:     relPath,
		Source:      source,
		ModTime:     time.Now(),
		ContentHash: hex.EncodeToString(sum[:]),
	}
	tree, err := Parse(source, lang)
	if err != nil {
		file.Err = err
		return file
	}
	file.tree = tree
	if serr := syntaxError(tree.RootNode(), source); serr != nil {
		file.Err = serr
	}
	return file
}

// Root returns the absolute project root.
func (p *Program) Root() string { return p.root }

// Files returns the project's source files in enumeration order.
func (p *Program) Files() []*SourceFile { return p.files }

// SkippedFiles returns the number of files excluded for exceeding MaxFileSize.
func (p *Program) SkippedFiles() int { return p.skippedFiles }

// Checker returns the program's type-resolution service.
func (p *Program) Checker() *Checker { return p.checker }

// Options returns the options the program was built with.
func (p *Program) Options() Options { return p.options }

// Close releases all syntax trees.
func (p *Program) Close() {
	closeFiles(p.files)
}

// Close releases the file's syntax tree.
func (f *SourceFile) Close() {
	if f != nil && f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

func closeFiles(files []*SourceFile) {
	for _, f := range files {
		f.Close()
	}
}
