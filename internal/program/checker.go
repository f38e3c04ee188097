package program

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-patterns/internal/syntax"
)

// maxInferenceDepth bounds identifier chasing (const a = b; const b = a).
const maxInferenceDepth = 8

// Checker maps syntax nodes to display type strings. Annotations are rendered
// as written; expression types are inferred from literal shapes and bindings
// visible in enclosing scopes of the same file. It holds no mutable state and
// is safe for concurrent use.
type Checker struct{}

// NewChecker creates a type-resolution service.
func NewChecker() *Checker {
	return &Checker{}
}

// TypeOfAnnotation renders a type annotation (": T") or a bare type node.
func (c *Checker) TypeOfAnnotation(f *SourceFile, node *sitter.Node) (string, error) {
	if node == nil {
		return "", fmt.Errorf("%w: no annotation", ErrUnresolved)
	}
	switch node.Kind() {
	case "type_annotation", "opting_type_annotation", "omitting_type_annotation", "asserts_annotation":
		node = node.NamedChild(0)
		if node == nil {
			return "", fmt.Errorf("%w: empty annotation", ErrUnresolved)
		}
	}
	text := strings.Join(strings.Fields(f.Text(node)), " ")
	if text == "" {
		return "", fmt.Errorf("%w: empty annotation", ErrUnresolved)
	}
	return text, nil
}

// TypeAtLocation infers the type of an expression node.
func (c *Checker) TypeAtLocation(f *SourceFile, node *sitter.Node) (string, error) {
	return c.infer(f, node, 0)
}

// DeclaredReturnType renders the return annotation of a function-like node.
func (c *Checker) DeclaredReturnType(f *SourceFile, fn *sitter.Node) (string, error) {
	if fn == nil {
		return "", fmt.Errorf("%w: no function", ErrUnresolved)
	}
	return c.TypeOfAnnotation(f, fn.ChildByFieldName("return_type"))
}

func (c *Checker) infer(f *SourceFile, node *sitter.Node, depth int) (string, error) {
	if node == nil {
		return "", fmt.Errorf("%w: no expression", ErrUnresolved)
	}
	if depth > maxInferenceDepth {
		return "", fmt.Errorf("%w: inference depth exceeded", ErrUnresolved)
	}

	switch node.Kind() {
	case "string", "template_string":
		return "string", nil
	case "number":
		return "number", nil
	case "true", "false":
		return "boolean", nil
	case "null":
		return "null", nil
	case "undefined":
		return "undefined", nil
	case "regex":
		return "RegExp", nil
	case "jsx_element", "jsx_self_closing_element":
		return "JSX.Element", nil
	case "update_expression":
		return "number", nil

	case "parenthesized_expression", "non_null_expression", "satisfies_expression":
		return c.infer(f, node.NamedChild(0), depth+1)

	case "as_expression":
		return c.TypeOfAnnotation(f, node.NamedChild(node.NamedChildCount()-1))

	case "new_expression":
		ctor := node.ChildByFieldName("constructor")
		if ctor == nil {
			return "", fmt.Errorf("%w: new without constructor", ErrUnresolved)
		}
		return f.Text(ctor), nil

	case "await_expression":
		inner, err := c.infer(f, node.NamedChild(0), depth+1)
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(inner, "Promise<") && strings.HasSuffix(inner, ">") {
			return strings.TrimSuffix(strings.TrimPrefix(inner, "Promise<"), ">"), nil
		}
		return inner, nil

	case "unary_expression":
		switch f.Text(node.ChildByFieldName("operator")) {
		case "!", "delete":
			return "boolean", nil
		case "typeof":
			return "string", nil
		case "void":
			return "undefined", nil
		default:
			return "number", nil
		}

	case "binary_expression":
		return c.inferBinary(f, node, depth)

	case "ternary_expression":
		a, errA := c.infer(f, node.ChildByFieldName("consequence"), depth+1)
		b, errB := c.infer(f, node.ChildByFieldName("alternative"), depth+1)
		if errA != nil || errB != nil {
			return "", fmt.Errorf("%w: ternary branch", ErrUnresolved)
		}
		return Union([]string{a, b}), nil

	case "array":
		return c.inferArray(f, node, depth)

	case "object":
		return c.inferObject(f, node, depth), nil

	case "arrow_function", "function_expression", "function", "generator_function", "function_declaration":
		return c.signature(f, node, depth), nil

	case "identifier":
		if f.Text(node) == "undefined" {
			return "undefined", nil
		}
		b, ok := c.lookup(f, node, f.Text(node))
		if !ok {
			return "", fmt.Errorf("%w: unknown binding %q", ErrUnresolved, f.Text(node))
		}
		return c.bindingType(f, b, depth)

	case "call_expression":
		callee := node.ChildByFieldName("function")
		if callee == nil || callee.Kind() != "identifier" {
			return "", fmt.Errorf("%w: dynamic call", ErrUnresolved)
		}
		b, ok := c.lookup(f, callee, f.Text(callee))
		if !ok || !syntax.IsFunction(b.value) && (b.value == nil || b.value.Kind() != "function_declaration") {
			return "", fmt.Errorf("%w: unknown callee %q", ErrUnresolved, f.Text(callee))
		}
		return c.returnType(f, b.value, depth+1)
	}

	return "", fmt.Errorf("%w: unsupported expression %s", ErrUnresolved, node.Kind())
}

func (c *Checker) inferBinary(f *SourceFile, node *sitter.Node, depth int) (string, error) {
	op := f.Text(node.ChildByFieldName("operator"))
	switch op {
	case "==", "===", "!=", "!==", "<", ">", "<=", ">=", "instanceof", "in":
		return "boolean", nil
	case "-", "*", "/", "%", "**", "<<", ">>", ">>>", "&", "|", "^":
		return "number", nil
	}

	left, errL := c.infer(f, node.ChildByFieldName("left"), depth+1)
	right, errR := c.infer(f, node.ChildByFieldName("right"), depth+1)
	if op == "+" {
		if left == "string" || right == "string" {
			return "string", nil
		}
		if left == "number" && right == "number" {
			return "number", nil
		}
	}
	if errL != nil || errR != nil {
		return "", fmt.Errorf("%w: operand of %s", ErrUnresolved, op)
	}
	return Union([]string{left, right}), nil
}

func (c *Checker) inferArray(f *SourceFile, node *sitter.Node, depth int) (string, error) {
	var elems []string
	for el := range syntax.NamedChildren(node) {
		if el.Kind() == "comment" {
			continue
		}
		t, err := c.infer(f, el, depth+1)
		if err != nil {
			return "any[]", nil
		}
		elems = append(elems, t)
	}
	if len(elems) == 0 {
		return "any[]", nil
	}
	u := Union(elems)
	if strings.Contains(u, " ") {
		return "(" + u + ")[]", nil
	}
	return u + "[]", nil
}

func (c *Checker) inferObject(f *SourceFile, node *sitter.Node, depth int) string {
	var members []string
	for m := range syntax.NamedChildren(node) {
		switch m.Kind() {
		case "pair":
			t, err := c.infer(f, m.ChildByFieldName("value"), depth+1)
			if err != nil {
				t = "any"
			}
			members = append(members, f.Text(m.ChildByFieldName("key"))+": "+t)
		case "shorthand_property_identifier":
			t := "any"
			if b, ok := c.lookup(f, m, f.Text(m)); ok {
				if bt, err := c.bindingType(f, b, depth+1); err == nil {
					t = bt
				}
			}
			members = append(members, f.Text(m)+": "+t)
		case "method_definition":
			members = append(members, f.Text(m.ChildByFieldName("name"))+": "+c.signature(f, m, depth+1))
		}
	}
	if len(members) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(members, "; ") + " }"
}

// signature renders a function-like node as (a: T, b: U) => R.
func (c *Checker) signature(f *SourceFile, fn *sitter.Node, depth int) string {
	var params []string
	if single := fn.ChildByFieldName("parameter"); single != nil {
		params = append(params, f.Text(single)+": any")
	}
	for p := range syntax.NamedChildren(fn.ChildByFieldName("parameters")) {
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			name := f.Text(p.ChildByFieldName("pattern"))
			if p.Kind() == "optional_parameter" {
				name += "?"
			}
			t, err := c.TypeOfAnnotation(f, p.ChildByFieldName("type"))
			if err != nil {
				t = "any"
			}
			params = append(params, name+": "+t)
		}
	}
	ret, err := c.returnType(f, fn, depth+1)
	if err != nil {
		ret = "any"
	}
	return "(" + strings.Join(params, ", ") + ") => " + ret
}

// returnType is the declared return type, the expression-body type, or, for
// block bodies, "void" when nothing is returned and "any" otherwise.
func (c *Checker) returnType(f *SourceFile, fn *sitter.Node, depth int) (string, error) {
	if t, err := c.DeclaredReturnType(f, fn); err == nil {
		return t, nil
	}
	body := fn.ChildByFieldName("body")
	if body == nil {
		return "", fmt.Errorf("%w: no body", ErrUnresolved)
	}
	if body.Kind() != "statement_block" {
		return c.infer(f, body, depth+1)
	}
	if len(ReturnStatements(body)) == 0 {
		return "void", nil
	}
	return "", fmt.Errorf("%w: block body", ErrUnresolved)
}

// ReturnStatements collects the return statements belonging to body, without
// descending into nested functions or classes.
func ReturnStatements(body *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	nested := func(n *sitter.Node) bool {
		return syntax.IsFunction(n) || syntax.OfKind("function_declaration", "generator_function_declaration",
			"method_definition", "class_declaration", "class")(n)
	}
	for n := range syntax.Pruned(body, nested) {
		if n.Kind() == "return_statement" {
			out = append(out, n)
		}
	}
	return out
}

// Union joins distinct types in first-seen order with " | ".
func Union(types []string) string {
	seen := make(map[string]bool, len(types))
	var distinct []string
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			distinct = append(distinct, t)
		}
	}
	return strings.Join(distinct, " | ")
}

// binding is a name declaration found in an enclosing scope.
type binding struct {
	annotation *sitter.Node
	value      *sitter.Node
}

func (c *Checker) bindingType(f *SourceFile, b binding, depth int) (string, error) {
	if b.annotation != nil {
		return c.TypeOfAnnotation(f, b.annotation)
	}
	return c.infer(f, b.value, depth+1)
}

// lookup resolves name from the position of node by walking enclosing scopes
// outward to the file's top level.
func (c *Checker) lookup(f *SourceFile, node *sitter.Node, name string) (binding, bool) {
	for scope := range syntax.Ancestors(node) {
		switch scope.Kind() {
		case "arrow_function", "function_expression", "function", "function_declaration",
			"generator_function", "generator_function_declaration", "method_definition":
			if b, ok := c.lookupParam(f, scope, name); ok {
				return b, true
			}
		case "statement_block", "program":
			if b, ok := c.lookupBlock(f, scope, name); ok {
				return b, true
			}
		}
	}
	return binding{}, false
}

func (c *Checker) lookupParam(f *SourceFile, fn *sitter.Node, name string) (binding, bool) {
	if single := fn.ChildByFieldName("parameter"); single != nil && f.Text(single) == name {
		return binding{}, true
	}
	for p := range syntax.NamedChildren(fn.ChildByFieldName("parameters")) {
		pattern := p.ChildByFieldName("pattern")
		if pattern == nil || pattern.Kind() != "identifier" || f.Text(pattern) != name {
			continue
		}
		return binding{annotation: p.ChildByFieldName("type"), value: p.ChildByFieldName("value")}, true
	}
	return binding{}, false
}

func (c *Checker) lookupBlock(f *SourceFile, block *sitter.Node, name string) (binding, bool) {
	for stmt := range syntax.NamedChildren(block) {
		if stmt.Kind() == "export_statement" {
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				stmt = decl
			}
		}
		switch stmt.Kind() {
		case "lexical_declaration", "variable_declaration":
			for d := range syntax.NamedChildren(stmt) {
				if d.Kind() != "variable_declarator" {
					continue
				}
				n := d.ChildByFieldName("name")
				if n != nil && n.Kind() == "identifier" && f.Text(n) == name {
					return binding{annotation: d.ChildByFieldName("type"), value: d.ChildByFieldName("value")}, true
				}
			}
		case "function_declaration", "generator_function_declaration":
			if f.Text(stmt.ChildByFieldName("name")) == name {
				return binding{value: stmt}, true
			}
		}
	}
	return binding{}, false
}
