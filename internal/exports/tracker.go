// Package exports determines how declarations leave their file and answers
// export/import queries over a finished pattern set.
package exports

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/syntax"
)

// DefaultName is the export name recorded for default exports.
const DefaultName = "default"

// Tracker annotates patterns with export information. Only the pattern's own
// file is consulted.
type Tracker struct{}

// New creates a Tracker.
func New() *Tracker {
	return &Tracker{}
}

// Enrich returns a copy of p with Exports filled from the file's top-level
// export statements.
func (t *Tracker) Enrich(p pattern.Pattern, shape syntax.Shape, f *program.SourceFile) pattern.Pattern {
	out := p.Clone()
	out.Exports = dedupe(Detect(shape, f))
	return out
}

// Detect lists every way the declaration behind shape is exported.
func Detect(shape syntax.Shape, f *program.SourceFile) []pattern.ExportInfo {
	root := f.Root()
	infos := []pattern.ExportInfo{}

	switch s := shape.(type) {
	case syntax.FunctionDecl, syntax.InterfaceDecl, syntax.TypeAliasDecl, syntax.EnumDecl, syntax.ClassDecl:
		infos = append(infos, direct(s.Node(), s.DeclName())...)
		infos = append(infos, byReference(root, s.DeclName(), f.Source)...)

	case syntax.FunctionVar:
		infos = append(infos, direct(s.Declarator.Parent(), s.Name)...)
		infos = append(infos, byReference(root, s.Name, f.Source)...)

	case syntax.ConstantVar:
		infos = append(infos, direct(s.Declarator.Parent(), s.Name)...)
		infos = append(infos, byReference(root, s.Name, f.Source)...)

	case syntax.FunctionExpr:
		// export default function name() {} may parse as an expression.
		infos = append(infos, direct(s.Func, s.Name)...)

	case syntax.WrapperCall:
		infos = append(infos, callSite(root, s.Call, f.Source)...)

	case syntax.MethodDecl:
	}

	return infos
}

// direct reports an export modifier on the statement anchoring a declaration.
func direct(anchor *sitter.Node, name string) []pattern.ExportInfo {
	if anchor == nil {
		return nil
	}
	parent := anchor.Parent()
	if parent == nil || parent.Kind() != "export_statement" {
		return nil
	}
	if isDefault(parent) {
		return []pattern.ExportInfo{{Type: pattern.ExportDefault, Name: DefaultName}}
	}
	return []pattern.ExportInfo{{Type: pattern.ExportNamed, Name: name}}
}

// byReference scans top-level export statements for references to name:
// export { name }, export { name as alias }, export { name } from "m" and
// export default name.
func byReference(root *sitter.Node, name string, source []byte) []pattern.ExportInfo {
	if root == nil || name == "" {
		return nil
	}

	var infos []pattern.ExportInfo
	for stmt := range syntax.NamedChildren(root) {
		if stmt.Kind() != "export_statement" {
			continue
		}

		if clause := syntax.FindChildByType(stmt, "export_clause"); clause != nil {
			from := syntax.StringValue(stmt.ChildByFieldName("source"), source)
			for spec := range syntax.NamedChildren(clause) {
				if spec.Kind() != "export_specifier" {
					continue
				}
				local := specifierName(spec.ChildByFieldName("name"), source)
				if local != name {
					continue
				}
				exported := local
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					exported = specifierName(alias, source)
				}
				infos = append(infos, clauseExport(exported, from))
			}
			continue
		}

		value := stmt.ChildByFieldName("value")
		if isDefault(stmt) && value != nil && value.Kind() == "identifier" && syntax.Text(value, source) == name {
			infos = append(infos, pattern.ExportInfo{Type: pattern.ExportDefault, Name: DefaultName})
		}
	}
	return infos
}

func clauseExport(exported, from string) pattern.ExportInfo {
	switch {
	case from != "":
		return pattern.ExportInfo{Type: pattern.ExportReExport, Name: exported, Path: from, IsReExport: true}
	case exported == DefaultName:
		return pattern.ExportInfo{Type: pattern.ExportDefault, Name: DefaultName}
	default:
		return pattern.ExportInfo{Type: pattern.ExportNamed, Name: exported}
	}
}

// callSite copies the export status of a wrapper call's position:
// export default hoc(X), or export const Y = hoc(X) and references to Y.
func callSite(root, call *sitter.Node, source []byte) []pattern.ExportInfo {
	parent := call.Parent()
	if parent == nil {
		return nil
	}
	switch parent.Kind() {
	case "export_statement":
		if isDefault(parent) {
			return []pattern.ExportInfo{{Type: pattern.ExportDefault, Name: DefaultName}}
		}
	case "variable_declarator":
		if !syntax.Same(parent.ChildByFieldName("value"), call) {
			return nil
		}
		nameNode := parent.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			return nil
		}
		name := syntax.Text(nameNode, source)
		infos := direct(parent.Parent(), name)
		return append(infos, byReference(root, name, source)...)
	}
	return nil
}

func isDefault(stmt *sitter.Node) bool {
	return syntax.HasChild(stmt, "default")
}

func specifierName(node *sitter.Node, source []byte) string {
	if node != nil && node.Kind() == "string" {
		return syntax.StringValue(node, source)
	}
	return syntax.Text(node, source)
}

func dedupe(infos []pattern.ExportInfo) []pattern.ExportInfo {
	seen := make(map[pattern.ExportInfo]bool, len(infos))
	out := make([]pattern.ExportInfo, 0, len(infos))
	for _, info := range infos {
		if !seen[info] {
			seen[info] = true
			out = append(out, info)
		}
	}
	return out
}
