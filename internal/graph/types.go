package graph

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tehKaiN/gdunsharp/internal/parser"
)

// TypeID is a stable handle into the graph's type arena.
type TypeID int

// NoType is the absent-type sentinel.
const NoType TypeID = -1

// TypeKind tags the variants of Type.
type TypeKind uint8

const (
	KindClass TypeKind = iota
	KindStruct
	KindInterface
	KindEnum
	KindTypeParam
	KindNullable
	KindSpecialization
)

// TypeKey builds the identity key a type registers under: the simple name,
// with the arity appended in C# reflection style when the type is generic,
// so a generic and a non-generic of the same name stay distinct.
func TypeKey(name string, arity int) string {
	if arity > 0 {
		return fmt.Sprintf("%s`%d", name, arity)
	}
	return name
}

// DeclContext is one physical occurrence of a class-like type: the parsed
// file, the declaration and its member-list node (opaque references), the
// namespace in effect at the occurrence, and a snapshot of the import
// directives seen so far in that file, in source order.
type DeclContext struct {
	File      *parser.File
	Decl      *sitter.Node
	Members   *sitter.Node
	Namespace NamespaceID
	Imports   []string
}

// EnumEntry is one enum member; Value is the literal text copied verbatim,
// empty when the member declares none.
type EnumEntry struct {
	Name  string
	Value string
}

// Param is one method parameter; Default is the default-value expression
// text copied verbatim, empty when absent.
type Param struct {
	Name    string
	Type    TypeID
	Default string
}

// Method is one method declaration site. Bodies are never interpreted; the
// node reference is carried opaquely. Overloads stay separate entries, so
// methods live in a plain ordered list rather than a name-keyed table.
type Method struct {
	Name       string
	Return     TypeID
	TypeParams []TypeID
	Params     []Param
	Extension  bool
	Body       *sitter.Node
}

// Type is the closed tagged variant for every node in the type arena. The
// kind tag selects which payload fields are meaningful.
type Type struct {
	ID        TypeID
	Kind      TypeKind
	Name      string
	Key       string
	Namespace NamespaceID

	// Dummy marks an externally-defined stand-in (unresolved names and the
	// built-in primitives): looked up like any other type, never emitted.
	Dummy bool
	// Display overrides the rendered name; empty means the simple name.
	Display string

	// Class-like payload.
	TypeParams []TypeID
	Fields     *FieldTable
	Props      *PropertyTable
	Methods    []*Method
	Bases      []TypeID
	Contexts   []*DeclContext
	Imports    []NamespaceID
	paramScope *TypeScope

	// Enum payload. Underlying holds the raw base-type name when declared.
	Entries    []EnumEntry
	Underlying string

	// Nullable payload.
	Elem TypeID

	// Specialization payload.
	Def  TypeID
	Args []TypeID
}

// ClassLike reports whether the type carries the class/struct/interface
// payload (dummies included).
func (t *Type) ClassLike() bool {
	switch t.Kind {
	case KindClass, KindStruct, KindInterface:
		return true
	}
	return false
}

// Generic reports whether the type declares generic parameters.
func (t *Type) Generic() bool {
	return len(t.TypeParams) > 0
}

// Emittable reports whether the type produces a forward declaration and a
// definition file: class-likes and enums, except dummies. Placeholders,
// wrappers and specializations only ever appear inline in member text.
func (t *Type) Emittable() bool {
	switch t.Kind {
	case KindClass, KindStruct, KindInterface, KindEnum:
		return !t.Dummy
	}
	return false
}

// ParamScope returns the generic-parameter scope, nil for non-generic types.
func (t *Type) ParamScope() *TypeScope {
	return t.paramScope
}

// AddContext appends a declaration occurrence.
func (t *Type) AddContext(ctx *DeclContext) {
	t.Contexts = append(t.Contexts, ctx)
}

// AddBase appends a resolved base type, skipping duplicates by identity
// (partial declarations may restate the base list).
func (t *Type) AddBase(id TypeID) {
	for _, b := range t.Bases {
		if b == id {
			return
		}
	}
	t.Bases = append(t.Bases, id)
}

// AddImport appends a referenced namespace, skipping duplicates by identity.
func (t *Type) AddImport(ns NamespaceID) {
	for _, existing := range t.Imports {
		if existing == ns {
			return
		}
	}
	t.Imports = append(t.Imports, ns)
}

// DisplayName renders the name a type contributes to member lines: the
// override or simple name for ordinary types, `std::optional<Elem>` for
// nullable wrappers, and `Def<Arg1, Arg2>` synthesized from the definition
// and argument displays for specializations.
func (g *Graph) DisplayName(id TypeID) string {
	t := g.Type(id)
	switch t.Kind {
	case KindNullable:
		return "std::optional<" + g.DisplayName(t.Elem) + ">"
	case KindSpecialization:
		parts := make([]string, len(t.Args))
		for i, arg := range t.Args {
			parts[i] = g.DisplayName(arg)
		}
		return g.DisplayName(t.Def) + "<" + strings.Join(parts, ", ") + ">"
	default:
		if t.Display != "" {
			return t.Display
		}
		return t.Name
	}
}
