package syntax

import (
	"iter"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Text returns the source text covered by node.
func Text(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// Line returns the 1-based start line of node.
func Line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// Column returns the 1-based start column of node.
func Column(node *sitter.Node) int {
	return int(node.StartPosition().Column) + 1
}

// Same reports whether a and b denote the same syntax node.
func Same(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

// Descendants yields node and every node below it in pre-order.
// The sequence is lazy: a consumer that stops early stops the walk.
func Descendants(node *sitter.Node) iter.Seq[*sitter.Node] {
	return Pruned(node, nil)
}

// Pruned is like Descendants but does not descend below nodes for which skip
// returns true. Skipped nodes themselves are still yielded, except for the root
// which is always yielded and always descended into.
func Pruned(node *sitter.Node, skip func(*sitter.Node) bool) iter.Seq[*sitter.Node] {
	return func(yield func(*sitter.Node) bool) {
		if node == nil || !yield(node) {
			return
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			if !walk(node.Child(i), skip, yield) {
				return
			}
		}
	}
}

func walk(node *sitter.Node, skip func(*sitter.Node) bool, yield func(*sitter.Node) bool) bool {
	if node == nil {
		return true
	}
	if !yield(node) {
		return false
	}
	if skip != nil && skip(node) {
		return true
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if !walk(node.Child(i), skip, yield) {
			return false
		}
	}
	return true
}

// Children yields the direct children of node, named or not.
func Children(node *sitter.Node) iter.Seq[*sitter.Node] {
	return func(yield func(*sitter.Node) bool) {
		if node == nil {
			return
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			if !yield(node.Child(i)) {
				return
			}
		}
	}
}

// NamedChildren yields the named children of node.
func NamedChildren(node *sitter.Node) iter.Seq[*sitter.Node] {
	return func(yield func(*sitter.Node) bool) {
		if node == nil {
			return
		}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if !yield(node.NamedChild(i)) {
				return
			}
		}
	}
}

// Ancestors yields the parents of node, innermost first.
func Ancestors(node *sitter.Node) iter.Seq[*sitter.Node] {
	return func(yield func(*sitter.Node) bool) {
		if node == nil {
			return
		}
		for p := node.Parent(); p != nil; p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}

// Fold reduces seq to a single value.
func Fold[A any](seq iter.Seq[*sitter.Node], init A, f func(A, *sitter.Node) A) A {
	acc := init
	for n := range seq {
		acc = f(acc, n)
	}
	return acc
}

// Count returns the number of nodes in seq matching pred.
func Count(seq iter.Seq[*sitter.Node], pred func(*sitter.Node) bool) int {
	return Fold(seq, 0, func(acc int, n *sitter.Node) int {
		if pred(n) {
			return acc + 1
		}
		return acc
	})
}

// Any reports whether some node in seq matches pred, stopping at the first hit.
func Any(seq iter.Seq[*sitter.Node], pred func(*sitter.Node) bool) bool {
	for n := range seq {
		if pred(n) {
			return true
		}
	}
	return false
}

// Filter yields the nodes of seq matching pred.
func Filter(seq iter.Seq[*sitter.Node], pred func(*sitter.Node) bool) iter.Seq[*sitter.Node] {
	return func(yield func(*sitter.Node) bool) {
		for n := range seq {
			if pred(n) && !yield(n) {
				return
			}
		}
	}
}

// OfKind returns a predicate matching any of the given node kinds.
func OfKind(kinds ...string) func(*sitter.Node) bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(n *sitter.Node) bool {
		return set[n.Kind()]
	}
}

// FindChildByType finds the first direct child with the given kind.
func FindChildByType(node *sitter.Node, kind string) *sitter.Node {
	for child := range Children(node) {
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// FindChildrenByType finds all direct children with the given kind.
func FindChildrenByType(node *sitter.Node, kind string) []*sitter.Node {
	var results []*sitter.Node
	for child := range Children(node) {
		if child.Kind() == kind {
			results = append(results, child)
		}
	}
	return results
}

// HasChild reports whether node has a direct child (named or anonymous) of kind.
func HasChild(node *sitter.Node, kind string) bool {
	return FindChildByType(node, kind) != nil
}

// FirstError returns the first ERROR or MISSING node under root, or nil.
func FirstError(root *sitter.Node) *sitter.Node {
	if root == nil || !root.HasError() {
		return nil
	}
	for n := range Pruned(root, func(n *sitter.Node) bool { return !n.HasError() }) {
		if n.IsError() || n.IsMissing() {
			return n
		}
	}
	return root
}

// StringValue returns the contents of a string literal node without quotes.
func StringValue(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if frag := FindChildByType(node, "string_fragment"); frag != nil {
		return Text(frag, source)
	}
	return strings.Trim(Text(node, source), "\"'`")
}
