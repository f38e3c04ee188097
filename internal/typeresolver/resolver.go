// Package typeresolver enriches pattern stubs with parameter, return, generic
// and property types. Resolution is best effort: every step reports failure
// explicitly and the caller substitutes a safe default.
package typeresolver

import (
	"errors"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/syntax"
)

// AnyType is the fallback for anything that could not be resolved.
const AnyType = "any"

var errNoBody = errors.New("function has no body")

// TypeService is the subset of the program's type checker the resolver needs.
type TypeService interface {
	TypeOfAnnotation(f *program.SourceFile, node *sitter.Node) (string, error)
	TypeAtLocation(f *program.SourceFile, node *sitter.Node) (string, error)
}

// Resolver resolves types for patterns of one program.
type Resolver struct {
	types TypeService
}

// New creates a Resolver backed by types.
func New(types TypeService) *Resolver {
	return &Resolver{types: types}
}

// Enrich returns a copy of p with type metadata resolved from its shape.
func (r *Resolver) Enrich(p pattern.Pattern, shape syntax.Shape, f *program.SourceFile) pattern.Pattern {
	out := p.Clone()
	md := &out.Metadata

	switch s := shape.(type) {
	case syntax.FunctionDecl, syntax.FunctionVar, syntax.FunctionExpr, syntax.MethodDecl, syntax.WrapperCall:
		fn, ok := syntax.FunctionNode(s)
		if !ok {
			md.ReturnType = AnyType
			break
		}
		md.Parameters = r.parameters(f, fn)
		rt, err := r.returnType(f, fn)
		md.ReturnType = orDefault(rt, err, AnyType)
		md.GenericTypes = genericNames(f, fn)

	case syntax.ClassDecl:
		md.ReturnType = AnyType
		md.GenericTypes = genericNames(f, s.Decl)

	case syntax.InterfaceDecl:
		md.PropTypes = r.memberTypes(f, s.Decl.ChildByFieldName("body"))
		md.GenericTypes = genericNames(f, s.Decl)

	case syntax.TypeAliasDecl:
		if value := s.Decl.ChildByFieldName("value"); value != nil && value.Kind() == "object_type" {
			md.PropTypes = r.memberTypes(f, value)
		}
		md.GenericTypes = genericNames(f, s.Decl)

	case syntax.EnumDecl:
		md.PropTypes = r.enumMembers(f, s.Decl.ChildByFieldName("body"))

	case syntax.ConstantVar:
		t, err := r.types.TypeOfAnnotation(f, s.Declarator.ChildByFieldName("type"))
		if err != nil {
			t, err = r.types.TypeAtLocation(f, s.Value)
		}
		md.ReturnType = orDefault(t, err, AnyType)
	}

	return out
}

func (r *Resolver) parameters(f *program.SourceFile, fn *sitter.Node) []pattern.Parameter {
	params := []pattern.Parameter{}

	// Unparenthesized arrow parameter: x => ...
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return append(params, pattern.Parameter{Name: f.Text(single), Type: AnyType, Required: true})
	}

	for p := range syntax.NamedChildren(fn.ChildByFieldName("parameters")) {
		if p.Kind() != "required_parameter" && p.Kind() != "optional_parameter" {
			continue
		}
		t, err := r.types.TypeOfAnnotation(f, p.ChildByFieldName("type"))
		param := pattern.Parameter{
			Name:     parameterName(f, p.ChildByFieldName("pattern")),
			Type:     orDefault(t, err, AnyType),
			Required: p.Kind() == "required_parameter",
		}
		if value := p.ChildByFieldName("value"); value != nil {
			param.Default = f.Text(value)
		}
		params = append(params, param)
	}
	return params
}

func parameterName(f *program.SourceFile, node *sitter.Node) string {
	if node == nil {
		return "param"
	}
	switch node.Kind() {
	case "identifier", "this":
		return f.Text(node)
	case "object_pattern":
		return "object"
	case "array_pattern":
		return "array"
	case "rest_pattern":
		return parameterName(f, node.NamedChild(0))
	}
	return "param"
}

// returnType prefers the annotation; otherwise an expression body's type, or
// the union of the body's return expressions ("void" when there are none).
func (r *Resolver) returnType(f *program.SourceFile, fn *sitter.Node) (string, error) {
	if t, err := r.types.TypeOfAnnotation(f, fn.ChildByFieldName("return_type")); err == nil {
		return t, nil
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		return "", errNoBody
	}
	if body.Kind() != "statement_block" {
		return r.types.TypeAtLocation(f, body)
	}

	returns := program.ReturnStatements(body)
	if len(returns) == 0 {
		return "void", nil
	}

	types := make([]string, 0, len(returns))
	for _, ret := range returns {
		expr := ret.NamedChild(0)
		if expr == nil {
			types = append(types, "void")
			continue
		}
		t, err := r.types.TypeAtLocation(f, expr)
		if err != nil || t == AnyType {
			return AnyType, nil
		}
		types = append(types, t)
	}
	return program.Union(types), nil
}

// memberTypes maps the property signatures of an interface body or object type
// to their declared types. Optional markers are not part of the rendering.
func (r *Resolver) memberTypes(f *program.SourceFile, body *sitter.Node) map[string]string {
	props := map[string]string{}
	for m := range syntax.NamedChildren(body) {
		if m.Kind() != "property_signature" {
			continue
		}
		nameNode := m.ChildByFieldName("name")
		name := f.Text(nameNode)
		if nameNode != nil && nameNode.Kind() == "string" {
			name = syntax.StringValue(nameNode, f.Source)
		}
		if name == "" {
			continue
		}
		t, err := r.types.TypeOfAnnotation(f, m.ChildByFieldName("type"))
		props[name] = orDefault(t, err, AnyType)
	}
	return props
}

func (r *Resolver) enumMembers(f *program.SourceFile, body *sitter.Node) map[string]string {
	members := map[string]string{}
	for m := range syntax.NamedChildren(body) {
		switch m.Kind() {
		case "property_identifier":
			members[f.Text(m)] = "number"
		case "enum_assignment":
			t, err := r.types.TypeAtLocation(f, m.ChildByFieldName("value"))
			members[f.Text(m.ChildByFieldName("name"))] = orDefault(t, err, "number")
		}
	}
	return members
}

// genericNames lists the names of a declaration's type parameters.
func genericNames(f *program.SourceFile, decl *sitter.Node) []string {
	var names []string
	for tp := range syntax.NamedChildren(decl.ChildByFieldName("type_parameters")) {
		if tp.Kind() != "type_parameter" {
			continue
		}
		if name := f.Text(tp.ChildByFieldName("name")); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func orDefault[T any](v T, err error, def T) T {
	if err != nil {
		return def
	}
	return v
}
