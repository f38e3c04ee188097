package semantic

import (
	"math"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-patterns/internal/syntax"
)

var (
	isUI          = syntax.OfKind("jsx_element", "jsx_self_closing_element")
	isBranch      = syntax.OfKind("if_statement", "for_statement", "for_in_statement", "while_statement", "do_statement", "switch_statement", "catch_clause", "ternary_expression")
	isControlFlow = syntax.OfKind("if_statement", "switch_statement", "for_statement", "for_in_statement", "while_statement", "do_statement", "try_statement", "catch_clause")
)

// ContainsUI reports whether the subtree contains JSX markup.
func ContainsUI(node *sitter.Node) bool {
	return syntax.Any(syntax.Descendants(node), isUI)
}

// HasControlFlow reports whether the subtree contains conditionals, loops or
// exception handling.
func HasControlFlow(node *sitter.Node) bool {
	return syntax.Any(syntax.Descendants(node), isControlFlow)
}

// Complexity is 1 plus one per branch, loop, switch, catch clause or ternary.
func Complexity(node *sitter.Node) int {
	return 1 + syntax.Count(syntax.Descendants(node), isBranch)
}

// Coupling weighs imports, calls to non-builtin identifiers and property
// accesses in the subtree, capped at cfg.CouplingCap.
func Coupling(node *sitter.Node, source []byte, cfg Config) float64 {
	raw := syntax.Fold(syntax.Descendants(node), 0.0, func(acc float64, n *sitter.Node) float64 {
		switch n.Kind() {
		case "import_statement":
			return acc + cfg.ImportWeight
		case "call_expression":
			fn := n.ChildByFieldName("function")
			if fn != nil && fn.Kind() == "identifier" && !cfg.isBuiltin(syntax.Text(fn, source)) {
				return acc + cfg.CallWeight
			}
		case "member_expression":
			return acc + cfg.PropertyAccessWeight
		}
		return acc
	})
	return math.Min(raw, cfg.CouplingCap)
}

// Cohesion starts at cfg.CohesionBase and loses points per return statement,
// binary expression and conditional, floored at cfg.CohesionFloor.
func Cohesion(node *sitter.Node, cfg Config) float64 {
	score := syntax.Fold(syntax.Descendants(node), cfg.CohesionBase, func(acc float64, n *sitter.Node) float64 {
		switch n.Kind() {
		case "return_statement":
			return acc - cfg.ReturnPenalty
		case "binary_expression":
			return acc - cfg.BinaryPenalty
		case "if_statement", "switch_statement":
			return acc - cfg.BranchPenalty
		}
		return acc
	})
	return math.Max(score, cfg.CohesionFloor)
}

// Abstraction starts at cfg.AbstractionBase and gains points per generic type
// parameter, implemented or extended type, and abstract method.
func Abstraction(node *sitter.Node, cfg Config) float64 {
	score := syntax.Fold(syntax.Descendants(node), cfg.AbstractionBase, func(acc float64, n *sitter.Node) float64 {
		switch n.Kind() {
		case "type_parameter":
			return acc + cfg.GenericBonus
		case "implements_clause", "extends_type_clause":
			return acc + cfg.HeritageBonus*float64(n.NamedChildCount())
		case "extends_clause":
			return acc + cfg.HeritageBonus
		case "abstract_method_signature":
			return acc + cfg.AbstractMethodBonus
		}
		return acc
	})
	return math.Min(math.Max(score, cfg.AbstractionMin), cfg.AbstractionMax)
}

// Maintainability is max(0, 100 - complexity - coupling).
func Maintainability(complexity int, coupling float64) float64 {
	return math.Max(0, 100-float64(complexity)-coupling)
}

// Dependencies lists the module specifiers imported within the subtree,
// including dynamic import() and require() calls, in source order without
// duplicates.
func Dependencies(node *sitter.Node, source []byte) []string {
	deps := syntax.Fold(syntax.Descendants(node), []string{}, func(acc []string, n *sitter.Node) []string {
		if spec := moduleSpecifier(n, source); spec != "" {
			return append(acc, spec)
		}
		return acc
	})
	seen := make(map[string]bool, len(deps))
	out := deps[:0]
	for _, d := range deps {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func moduleSpecifier(n *sitter.Node, source []byte) string {
	switch n.Kind() {
	case "import_statement":
		return syntax.StringValue(n.ChildByFieldName("source"), source)
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn == nil || (fn.Kind() != "import" && syntax.Text(fn, source) != "require") {
			return ""
		}
		args := n.ChildByFieldName("arguments")
		if args == nil {
			return ""
		}
		if arg := args.NamedChild(0); arg != nil && arg.Kind() == "string" {
			return syntax.StringValue(arg, source)
		}
	}
	return ""
}

// UsageCount counts identifier references to name in the file rooted at root,
// ignoring the declaration's own name node and import/export clauses.
func UsageCount(root, declName *sitter.Node, name string, source []byte) int {
	if root == nil || name == "" {
		return 0
	}
	skip := syntax.OfKind("import_statement", "export_clause")
	isRef := syntax.OfKind("identifier", "type_identifier", "shorthand_property_identifier")
	return syntax.Count(syntax.Pruned(root, skip), func(n *sitter.Node) bool {
		return isRef(n) && !syntax.Same(n, declName) && syntax.Text(n, source) == name
	})
}

// callsStateHook reports whether the subtree calls one of the state hooks,
// directly or as a member (React.useState).
func callsStateHook(node *sitter.Node, source []byte, hooks map[string]bool) bool {
	return syntax.Any(syntax.Descendants(node), func(n *sitter.Node) bool {
		if n.Kind() != "call_expression" {
			return false
		}
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return false
		}
		name := syntax.Text(fn, source)
		if fn.Kind() == "member_expression" {
			name = syntax.Text(fn.ChildByFieldName("property"), source)
		}
		return hooks[name]
	})
}

func (c Config) isBuiltin(name string) bool {
	for _, prefix := range c.BuiltinPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
