package syntax

import (
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for declaration shapes:
// - Classify recognizes function declarations, function-valued variables,
//   interfaces, type aliases, enums, classes, methods and wrapper calls
// - Inline function initializers are reported once, through their declarator
// - Only module-level UPPER_CASE const declarators become constants
// - Object-literal members are named functions at module level and unnamed inside functions
// - Curried wrappers (connect(map)(Target)) are reported once, on the outer call
// - FunctionNode returns the function behind function-like shapes only
// - Node helpers: Text, Line, Column, StringValue, FirstError, Pruned

func parseTSX(t *testing.T, src string) (*sitter.Tree, []byte) {
	t.Helper()
	parser := sitter.NewParser()
	defer parser.Close()
	require.NoError(t, parser.SetLanguage(sitter.NewLanguage(typescript.LanguageTSX())))
	source := []byte(src)
	tree := parser.Parse(source, nil)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)
	return tree, source
}

type shapeInfo struct {
	kind string
	name string
}

func collectShapes(t *testing.T, src string) []shapeInfo {
	t.Helper()
	tree, source := parseTSX(t, src)
	var out []shapeInfo
	for n := range Descendants(tree.RootNode()) {
		s, ok := Classify(n, source)
		if !ok {
			continue
		}
		var kind string
		switch s.(type) {
		case FunctionDecl:
			kind = "func"
		case FunctionVar:
			kind = "var"
		case FunctionExpr:
			kind = "expr"
		case InterfaceDecl:
			kind = "interface"
		case TypeAliasDecl:
			kind = "type"
		case EnumDecl:
			kind = "enum"
		case ConstantVar:
			kind = "const"
		case ClassDecl:
			kind = "class"
		case MethodDecl:
			kind = "method"
		case WrapperCall:
			kind = "wrapper"
		}
		out = append(out, shapeInfo{kind: kind, name: s.DeclName()})
	}
	return out
}

func TestClassify_Declarations(t *testing.T) {
	t.Parallel()

	src := `
export function useThing() { return 1; }
const Button = () => <button />;
export interface Props { label: string }
type ID = string | number;
enum Color { Red, Green }
export const API_URL = "https://example.com";
const lowercase = 5;
class Store {
  load() { return null; }
}
`
	got := collectShapes(t, src)
	assert.Equal(t, []shapeInfo{
		{"func", "useThing"},
		{"var", "Button"},
		{"interface", "Props"},
		{"type", "ID"},
		{"enum", "Color"},
		{"const", "API_URL"},
		{"class", "Store"},
		{"method", "load"},
	}, got)
}

func TestClassify_NestedConstantsIgnored(t *testing.T) {
	t.Parallel()

	src := `
function f() {
  const LIMIT = 10;
  return LIMIT;
}
let MUTABLE = 1;
`
	got := collectShapes(t, src)
	assert.Equal(t, []shapeInfo{{"func", "f"}}, got)
}

func TestClassify_ObjectMembers(t *testing.T) {
	t.Parallel()

	src := `
export const helpers = {
  format: (v: string) => v.trim(),
  "parse-id": function (s: string) { return Number(s); },
};
function outer() {
  return { inner: () => 1 };
}
`
	got := collectShapes(t, src)
	assert.Equal(t, []shapeInfo{
		{"expr", "format"},
		{"expr", "parse-id"},
		{"func", "outer"},
		{"expr", ""},
	}, got)
}

func TestClassify_Wrappers(t *testing.T) {
	t.Parallel()

	src := `
const Base = () => <div />;
export const Memo = React.memo(Base);
export default connect(mapState)(Base);
const Fancy = forwardRef(function FancyInput(props, ref) { return <input ref={ref} />; });
const Sum = compute(Base);
const next = items.with(0, other);
const timed = builder.withTimeout(5);
const wrapped = Other.memo(Base);
`
	tree, source := parseTSX(t, src)
	var wrappers []WrapperCall
	for n := range Descendants(tree.RootNode()) {
		if s, ok := Classify(n, source); ok {
			if w, ok := s.(WrapperCall); ok {
				wrappers = append(wrappers, w)
			}
		}
	}

	require.Len(t, wrappers, 3)
	assert.Equal(t, "memo", wrappers[0].Wrapper)
	assert.Equal(t, "Base", wrappers[0].Name)
	assert.False(t, wrappers[0].Curried)

	assert.Equal(t, "connect", wrappers[1].Wrapper)
	assert.True(t, wrappers[1].Curried)
	assert.Equal(t, "Base", wrappers[1].Name)

	assert.Equal(t, "forwardRef", wrappers[2].Wrapper)
	assert.Equal(t, "FancyInput", wrappers[2].Name)
	fn, ok := FunctionNode(wrappers[2])
	require.True(t, ok)
	assert.Equal(t, "function_expression", fn.Kind())

	_, ok = FunctionNode(wrappers[0])
	assert.False(t, ok)
}

func TestClassify_MemberCallsAreNotWrappers(t *testing.T) {
	t.Parallel()

	tree, source := parseTSX(t, "const next = items.with(0, v);\nconst q = obj.withX(y);\nconst r = React.useMemo(f);\n")
	for n := range Descendants(tree.RootNode()) {
		if n.Kind() != "call_expression" {
			continue
		}
		s, ok := Classify(n, source)
		assert.False(t, ok, Text(n, source))
		assert.Nil(t, s)
	}
}

func TestIsWrapperName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"memo", "forwardRef", "withRouter", "withAuth", "connect", "observer"} {
		assert.True(t, IsWrapperName(name), name)
	}
	for _, name := range []string{"compute", "useMemo", "Memo", ""} {
		assert.False(t, IsWrapperName(name), name)
	}
}

func TestNodeHelpers(t *testing.T) {
	t.Parallel()

	tree, source := parseTSX(t, "const a = 'hi';\n  let b = `tpl`;\n")
	root := tree.RootNode()

	strs := Filter(Descendants(root), OfKind("string", "template_string"))
	var values []string
	for n := range strs {
		values = append(values, StringValue(n, source))
	}
	assert.Equal(t, []string{"hi", "tpl"}, values)

	decls := FindChildrenByType(root, "lexical_declaration")
	require.Len(t, decls, 2)
	assert.Equal(t, 1, Line(decls[0]))
	assert.Equal(t, 2, Line(decls[1]))
	assert.Equal(t, 3, Column(decls[1]))
	assert.Equal(t, "let b = `tpl`;", Text(decls[1], source))
	assert.True(t, HasChild(root, "lexical_declaration"))
	assert.Nil(t, FirstError(root))
	assert.Equal(t, "", Text(nil, source))

	// Pruned does not descend into skipped nodes
	identifiers := Count(Pruned(root, OfKind("lexical_declaration")), OfKind("identifier"))
	assert.Equal(t, 0, identifiers)
	assert.Equal(t, 2, Count(Descendants(root), OfKind("identifier")))
}

func TestFirstError(t *testing.T) {
	t.Parallel()

	tree, source := parseTSX(t, "const ok = 1;\nconst = ;\n")
	bad := FirstError(tree.RootNode())
	require.NotNil(t, bad)
	assert.Equal(t, 2, Line(bad))
	assert.NotEmpty(t, Text(bad, source))
}
