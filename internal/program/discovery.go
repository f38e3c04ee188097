package program

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// candidate is a discovered source file prior to parsing.
type candidate struct {
	path    string
	relPath string
	info    fs.FileInfo
}

// discovery finds the project's own source files.
type discovery struct {
	rootDir      string
	include      []compiledPattern
	skipPatterns []string
	maxFileSize  int64
	allowJS      bool
}

func newDiscovery(rootDir string, opts Options) (*discovery, error) {
	d := &discovery{
		rootDir:      rootDir,
		skipPatterns: opts.SkipPatterns,
		maxFileSize:  opts.MaxFileSize,
		allowJS:      opts.Compiler.AllowJS,
	}

	include := opts.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
		d.include = append(d.include, compiledPattern{pattern: pattern, glob: g})
	}

	return d, nil
}

// discover walks the root and returns the matching files in lexical order, the
// number of files skipped for size, and any walk error.
func (d *discovery) discover(ctx context.Context) ([]candidate, int, error) {
	var files []candidate
	skipped := 0

	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectories are skipped; an unreadable root is fatal.
			if path == d.rootDir {
				return err
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if path != d.rootDir && d.shouldSkip(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldSkip(relPath) || !d.isSource(relPath) || !d.matchesAnyPattern(relPath) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return nil
		}
		if d.maxFileSize > 0 && info.Size() > d.maxFileSize {
			skipped++
			return nil
		}

		files = append(files, candidate{path: path, relPath: relPath, info: info})
		return nil
	})

	return files, skipped, err
}

// extras resolves explicitly included files outside the walk. Only test files
// are kept; declaration files never are.
func (d *discovery) extras(paths []string, seen map[string]bool) []candidate {
	var files []candidate
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		name := filepath.Base(abs)
		if !IsTestFile(name) || !d.isSource(name) {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}
		seen[abs] = true
		files = append(files, candidate{path: abs, relPath: filepath.ToSlash(abs), info: info})
	}
	return files
}

// shouldSkip checks the path-substring denylist.
func (d *discovery) shouldSkip(relPath string) bool {
	for _, s := range d.skipPatterns {
		if s != "" && strings.Contains(relPath, s) {
			return true
		}
	}
	return false
}

// isSource accepts TypeScript and, when allowed, JavaScript files. Declaration
// files are excluded.
func (d *discovery) isSource(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	switch filepath.Ext(path) {
	case ".ts", ".tsx":
		return true
	case ".js", ".jsx":
		return d.allowJS
	}
	return false
}

// matchesAnyPattern checks if a path matches any of the include patterns.
func (d *discovery) matchesAnyPattern(path string) bool {
	for _, cp := range d.include {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed. This makes "**/*.ts" match both "index.ts"
	// and "src/app.ts".
	if !strings.Contains(path, "/") {
		for _, cp := range d.include {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}

// IsTestFile reports whether a file name follows a test naming convention.
func IsTestFile(name string) bool {
	return strings.Contains(name, "test-") || strings.Contains(name, ".test.") || strings.Contains(name, ".spec.")
}
