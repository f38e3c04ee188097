package syntax

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Shape is one of the declaration shapes recognized in a TypeScript syntax tree.
// The set of variants is closed; consumers switch over the concrete types.
type Shape interface {
	// Node is the syntax node whose subtree the declaration covers.
	Node() *sitter.Node
	// DeclName is the resolved declaration name, empty when none could be resolved.
	DeclName() string
	isShape()
}

// FunctionDecl is a named function declaration: function f() {}.
type FunctionDecl struct {
	Decl *sitter.Node
	Name string
}

// FunctionVar is a variable whose initializer is a function or arrow expression.
type FunctionVar struct {
	Declarator *sitter.Node
	Func       *sitter.Node
	Name       string
}

// FunctionExpr is a function or arrow expression outside a variable initializer,
// named after itself or its immediate parent (object pair, class field).
type FunctionExpr struct {
	Func *sitter.Node
	Name string
}

// InterfaceDecl is an interface declaration.
type InterfaceDecl struct {
	Decl *sitter.Node
	Name string
}

// TypeAliasDecl is a type alias declaration.
type TypeAliasDecl struct {
	Decl *sitter.Node
	Name string
}

// EnumDecl is an enum declaration.
type EnumDecl struct {
	Decl *sitter.Node
	Name string
}

// ConstantVar is a top-level UPPER_CASE const binding to a non-function value.
type ConstantVar struct {
	Declarator *sitter.Node
	Value      *sitter.Node
	Name       string
}

// ClassDecl is a class declaration.
type ClassDecl struct {
	Decl *sitter.Node
	Name string
}

// MethodDecl is a method definition inside a class body.
type MethodDecl struct {
	Decl *sitter.Node
	Name string
}

// WrapperCall is a higher-order-component call such as memo(X), forwardRef(fn),
// withRouter(X) or connect(mapState)(X).
type WrapperCall struct {
	Call *sitter.Node
	// Wrapper is the wrapping function's name (memo, forwardRef, connect, ...).
	Wrapper string
	// Target is the wrapped argument, nil when the call has no arguments.
	Target *sitter.Node
	// Curried is set for hoc(config)(Target) calls.
	Curried bool
	Name    string
}

func (s FunctionDecl) Node() *sitter.Node  { return s.Decl }
func (s FunctionVar) Node() *sitter.Node   { return s.Declarator }
func (s FunctionExpr) Node() *sitter.Node  { return s.Func }
func (s InterfaceDecl) Node() *sitter.Node { return s.Decl }
func (s TypeAliasDecl) Node() *sitter.Node { return s.Decl }
func (s EnumDecl) Node() *sitter.Node      { return s.Decl }
func (s ConstantVar) Node() *sitter.Node   { return s.Declarator }
func (s ClassDecl) Node() *sitter.Node     { return s.Decl }
func (s MethodDecl) Node() *sitter.Node    { return s.Decl }
func (s WrapperCall) Node() *sitter.Node   { return s.Call }

func (s FunctionDecl) DeclName() string  { return s.Name }
func (s FunctionVar) DeclName() string   { return s.Name }
func (s FunctionExpr) DeclName() string  { return s.Name }
func (s InterfaceDecl) DeclName() string { return s.Name }
func (s TypeAliasDecl) DeclName() string { return s.Name }
func (s EnumDecl) DeclName() string      { return s.Name }
func (s ConstantVar) DeclName() string   { return s.Name }
func (s ClassDecl) DeclName() string     { return s.Name }
func (s MethodDecl) DeclName() string    { return s.Name }
func (s WrapperCall) DeclName() string   { return s.Name }

func (FunctionDecl) isShape()  {}
func (FunctionVar) isShape()   {}
func (FunctionExpr) isShape()  {}
func (InterfaceDecl) isShape() {}
func (TypeAliasDecl) isShape() {}
func (EnumDecl) isShape()      {}
func (ConstantVar) isShape()   {}
func (ClassDecl) isShape()     {}
func (MethodDecl) isShape()    {}
func (WrapperCall) isShape()   {}

// hocNames lists wrapper functions recognized besides memo, forwardRef and with*.
var hocNames = map[string]bool{
	"withRouter":      true,
	"withStyles":      true,
	"withTheme":       true,
	"withTranslation": true,
	"connect":         true,
	"inject":          true,
	"observer":        true,
}

var constantName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// IsFunction reports whether node is a function or arrow expression.
func IsFunction(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

// IsWrapperName reports whether name is a recognized component-wrapping function.
func IsWrapperName(name string) bool {
	return name == "memo" || name == "forwardRef" || hocNames[name] || strings.HasPrefix(name, "with")
}

// FunctionNode returns the function-like node behind a shape: the declaration,
// the initializer, the method, or an inline function passed to a wrapper.
func FunctionNode(s Shape) (*sitter.Node, bool) {
	switch s := s.(type) {
	case FunctionDecl:
		return s.Decl, true
	case FunctionVar:
		return s.Func, true
	case FunctionExpr:
		return s.Func, true
	case MethodDecl:
		return s.Decl, true
	case WrapperCall:
		if IsFunction(s.Target) {
			return s.Target, true
		}
		return nil, false
	case InterfaceDecl, TypeAliasDecl, EnumDecl, ConstantVar, ClassDecl:
		return nil, false
	}
	return nil, false
}

// Classify maps node to a declaration shape. It returns false for nodes that do
// not start a recognized declaration.
func Classify(node *sitter.Node, source []byte) (Shape, bool) {
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		return FunctionDecl{Decl: node, Name: fieldText(node, "name", source)}, true

	case "variable_declarator":
		return classifyDeclarator(node, source)

	case "arrow_function", "function_expression", "function", "generator_function":
		parent := node.Parent()
		if parent != nil && parent.Kind() == "variable_declarator" && Same(parent.ChildByFieldName("value"), node) {
			return nil, false
		}
		return FunctionExpr{Func: node, Name: functionExprName(node, source)}, true

	case "interface_declaration":
		return InterfaceDecl{Decl: node, Name: fieldText(node, "name", source)}, true

	case "type_alias_declaration":
		return TypeAliasDecl{Decl: node, Name: fieldText(node, "name", source)}, true

	case "enum_declaration":
		return EnumDecl{Decl: node, Name: fieldText(node, "name", source)}, true

	case "class_declaration", "abstract_class_declaration":
		return ClassDecl{Decl: node, Name: fieldText(node, "name", source)}, true

	case "method_definition":
		if parent := node.Parent(); parent == nil || parent.Kind() != "class_body" {
			return nil, false
		}
		return MethodDecl{Decl: node, Name: fieldText(node, "name", source)}, true

	case "call_expression":
		return classifyCall(node, source)
	}
	return nil, false
}

func classifyDeclarator(node *sitter.Node, source []byte) (Shape, bool) {
	nameNode := node.ChildByFieldName("name")
	value := node.ChildByFieldName("value")
	name := ""
	if nameNode != nil && nameNode.Kind() == "identifier" {
		name = Text(nameNode, source)
	}

	if IsFunction(value) {
		return FunctionVar{Declarator: node, Func: value, Name: name}, true
	}
	if value == nil || !constantName.MatchString(name) || !isTopLevelConst(node, source) {
		return nil, false
	}
	if value.Kind() == "call_expression" {
		if _, ok := classifyCall(value, source); ok {
			return nil, false
		}
	}
	return ConstantVar{Declarator: node, Value: value, Name: name}, true
}

// isTopLevelConst reports whether a declarator belongs to a module-level const statement.
func isTopLevelConst(declarator *sitter.Node, source []byte) bool {
	stmt := declarator.Parent()
	if stmt == nil || stmt.Kind() != "lexical_declaration" {
		return false
	}
	if kw := stmt.Child(0); kw == nil || Text(kw, source) != "const" {
		return false
	}
	parent := stmt.Parent()
	if parent != nil && parent.Kind() == "export_statement" {
		parent = parent.Parent()
	}
	return parent != nil && parent.Kind() == "program"
}

func functionExprName(node *sitter.Node, source []byte) string {
	if name := fieldText(node, "name", source); name != "" {
		return name
	}
	parent := node.Parent()
	if parent == nil || nestedInFunction(parent) {
		return ""
	}
	switch parent.Kind() {
	case "pair":
		if !Same(parent.ChildByFieldName("value"), node) {
			return ""
		}
		key := parent.ChildByFieldName("key")
		if key != nil && key.Kind() == "string" {
			return StringValue(key, source)
		}
		return Text(key, source)
	case "public_field_definition", "field_definition":
		if !Same(parent.ChildByFieldName("value"), node) {
			return ""
		}
		return fieldText(parent, "name", source)
	}
	return ""
}

// nestedInFunction reports whether node sits inside a function body. Object
// and field members there are local values, not declarations.
func nestedInFunction(node *sitter.Node) bool {
	return Any(Ancestors(node), func(a *sitter.Node) bool {
		switch a.Kind() {
		case "function_declaration", "generator_function_declaration", "method_definition":
			return true
		}
		return IsFunction(a)
	})
}

func classifyCall(node *sitter.Node, source []byte) (Shape, bool) {
	fn := node.ChildByFieldName("function")
	args := node.ChildByFieldName("arguments")
	if fn == nil || args == nil {
		return nil, false
	}

	// hoc(config) is handled by the enclosing hoc(config)(Target) call.
	if parent := node.Parent(); parent != nil && parent.Kind() == "call_expression" &&
		Same(parent.ChildByFieldName("function"), node) && IsWrapperName(calleeName(fn, source)) {
		return nil, false
	}

	curried := false
	callee := calleeName(fn, source)
	if fn.Kind() == "call_expression" {
		inner := fn.ChildByFieldName("function")
		callee = calleeName(inner, source)
		curried = true
	}
	if callee == "" || !IsWrapperName(callee) {
		return nil, false
	}

	target := args.NamedChild(0)
	return WrapperCall{
		Call:    node,
		Wrapper: callee,
		Target:  target,
		Curried: curried,
		Name:    wrappedName(target, source),
	}, true
}

// calleeName returns the identifier called. Member calls only count as
// React.memo and React.forwardRef; other receivers (items.with, b.withX) are
// ordinary method calls.
func calleeName(fn *sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return Text(fn, source)
	case "member_expression":
		object := fn.ChildByFieldName("object")
		if object == nil || object.Kind() != "identifier" || Text(object, source) != "React" {
			return ""
		}
		switch prop := fieldText(fn, "property", source); prop {
		case "memo", "forwardRef":
			return prop
		}
	}
	return ""
}

func wrappedName(target *sitter.Node, source []byte) string {
	if target == nil {
		return ""
	}
	switch target.Kind() {
	case "identifier":
		return Text(target, source)
	case "function_expression", "function":
		return fieldText(target, "name", source)
	}
	return ""
}

func fieldText(node *sitter.Node, field string, source []byte) string {
	return Text(node.ChildByFieldName(field), source)
}
