package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// typeShapes are the node kinds that can occur where a type expression is
// expected. Shapes without a target-side mapping are still listed so that the
// resolver sees them (and rejects them) instead of skipping them silently.
var typeShapes = map[string]bool{
	"predefined_type":       true,
	"identifier":            true,
	"qualified_name":        true,
	"generic_name":          true,
	"nullable_type":         true,
	"array_type":            true,
	"tuple_type":            true,
	"pointer_type":          true,
	"function_pointer_type": true,
	"ref_type":              true,
}

// IsTypeExpr reports whether a node is a type-expression shape.
func IsTypeExpr(n *sitter.Node) bool {
	return n != nil && typeShapes[n.Type()]
}

// NamedChildren returns the named children of a node in order.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		children = append(children, n.NamedChild(i))
	}
	return children
}

// FindChild returns the first named child of the given kind, or nil.
func FindChild(n *sitter.Node, kind string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == kind {
			return child
		}
	}
	return nil
}

// TypeExpr returns the first named child that is a type-expression shape.
// In C# declaration syntax the declared type always precedes the declared
// name, so the first type-shaped child is the declaration's type.
func TypeExpr(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); IsTypeExpr(child) {
			return child
		}
	}
	return nil
}

// LastIdentifier returns the last direct identifier child, or nil. Used as a
// fallback for declared names when the grammar exposes no name field: in
// member declarations the name is the final identifier before the parameter
// list or accessor block.
func LastIdentifier(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	var last *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "identifier" {
			last = child
		}
	}
	return last
}

// DeclName returns a declaration's name node: the name field when the grammar
// provides one, otherwise the first identifier child (sufficient for type and
// namespace declarations, where no identifier precedes the name).
func DeclName(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if name := n.ChildByFieldName("name"); name != nil {
		return name
	}
	return FindChild(n, "identifier")
}

// MemberName returns a member declaration's name node: the name field when
// present, otherwise the last identifier child (the declared type may itself
// be an identifier, so the first one is not safe here).
func MemberName(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if name := n.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
		return name
	}
	return LastIdentifier(n)
}

// HasToken reports whether the node has a direct child token of the given
// kind, anonymous tokens included (e.g. the get/set/init keywords of an
// accessor declaration).
func HasToken(n *sitter.Node, kind string) bool {
	if n == nil {
		return false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == kind {
			return true
		}
	}
	return false
}

// HasModifier reports whether the node carries the given modifier keyword.
// Modifiers all parse as named nodes of the one "modifier" kind, so telling
// the extension receiver's "this" apart from "ref" or "out" takes the source
// text, not the node type.
func HasModifier(f *File, n *sitter.Node, keyword string) bool {
	if n == nil {
		return false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "modifier" && f.Text(c) == keyword {
			return true
		}
	}
	return false
}
