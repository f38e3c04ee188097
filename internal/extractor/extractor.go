// Package extractor recognizes declaration shapes in a syntax tree and emits
// unenriched pattern stubs. It performs no type or semantic work.
package extractor

import (
	"regexp"
	"time"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/syntax"
)

var (
	componentName = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	hookName      = regexp.MustCompile(`^use[A-Z]`)
)

// Placeholder names for wrapper calls whose wrapped value has no name.
const (
	AnonymousMemo       = "AnonymousMemoComponent"
	AnonymousForwardRef = "AnonymousForwardRefComponent"
	AnonymousHOC        = "AnonymousHOCComponent"
)

// Match pairs an emitted stub with the shape it was recognized from, so later
// stages can enrich it without searching the tree again.
type Match struct {
	Pattern pattern.Pattern
	Shape   syntax.Shape
}

// Extractor walks syntax trees and emits pattern stubs.
type Extractor struct {
	now time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimestamp sets the LastModified value stamped on every stub.
func WithTimestamp(t time.Time) Option {
	return func(e *Extractor) {
		e.now = t
	}
}

// New creates an Extractor. Stubs are stamped with the creation time unless
// WithTimestamp is given.
func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the pattern stubs of file in pre-order.
func (e *Extractor) Extract(file *program.SourceFile) []pattern.Pattern {
	matches := e.Matches(file)
	patterns := make([]pattern.Pattern, len(matches))
	for i, m := range matches {
		patterns[i] = m.Pattern
	}
	return patterns
}

// Matches returns the stubs of file together with their shapes.
func (e *Extractor) Matches(file *program.SourceFile) []Match {
	root := file.Root()
	if root == nil {
		return nil
	}

	var matches []Match
	for node := range syntax.Descendants(root) {
		shape, ok := syntax.Classify(node, file.Source)
		if !ok {
			continue
		}
		name, ok := patternName(shape)
		if !ok {
			continue
		}
		stub := pattern.NewStub(
			name,
			stubType(shape, name),
			file.RelPath,
			syntax.Line(shape.Node()),
			syntax.Column(shape.Node()),
			file.Text(shape.Node()),
			e.now,
		)
		matches = append(matches, Match{Pattern: stub, Shape: shape})
	}
	return matches
}

// patternName resolves the name a shape is emitted under. Wrapper calls fall
// back to a placeholder; every other unnamed shape is dropped.
func patternName(s syntax.Shape) (string, bool) {
	if w, ok := s.(syntax.WrapperCall); ok {
		if w.Name != "" {
			return w.Name, true
		}
		switch w.Wrapper {
		case "memo":
			return AnonymousMemo, true
		case "forwardRef":
			return AnonymousForwardRef, true
		default:
			return AnonymousHOC, true
		}
	}
	name := s.DeclName()
	return name, name != ""
}

// stubType is the provisional classification, refined by semantic analysis.
func stubType(s syntax.Shape, name string) pattern.Type {
	switch s.(type) {
	case syntax.InterfaceDecl:
		return pattern.TypeInterface
	case syntax.TypeAliasDecl:
		return pattern.TypeDefinition
	case syntax.EnumDecl:
		return pattern.TypeEnum
	case syntax.ConstantVar:
		return pattern.TypeConstant
	case syntax.WrapperCall:
		return pattern.TypeComponent
	case syntax.ClassDecl, syntax.MethodDecl:
		return pattern.TypeUtilityFunction
	case syntax.FunctionDecl, syntax.FunctionVar, syntax.FunctionExpr:
		return ClassifyName(name)
	}
	return pattern.TypeUtilityFunction
}

// ClassifyName applies the naming conventions for callables: capitalized names
// are components, use[A-Z] names are hooks.
func ClassifyName(name string) pattern.Type {
	switch {
	case componentName.MatchString(name):
		return pattern.TypeComponent
	case len(name) > 3 && hookName.MatchString(name):
		return pattern.TypeCustomHook
	default:
		return pattern.TypeUtilityFunction
	}
}
