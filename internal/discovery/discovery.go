package discovery

import (
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tehKaiN/gdunsharp/internal/graph"
	"github.com/tehKaiN/gdunsharp/internal/parser"
	"github.com/tehKaiN/gdunsharp/internal/report"
)

// ErrMalformed reports a declaration whose required parts are missing from the
// parse tree. Unlike unresolved names, this is a grammar-level mismatch the
// later passes cannot degrade around, so the run aborts.
var ErrMalformed = errors.New("malformed declaration")

// Pass materializes namespaces and type shells from parsed files. Members are
// not touched here; each declaration site is recorded as a context for the
// resolution pass.
type Pass struct {
	graph    *graph.Graph
	reporter *report.Reporter
}

// NewPass creates a discovery pass writing into the given graph.
func NewPass(g *graph.Graph, rep *report.Reporter) *Pass {
	return &Pass{graph: g, reporter: rep}
}

// Run scans one file's top-level declarations in source order.
func (p *Pass) Run(file *parser.File) error {
	s := &fileScan{pass: p, file: file, ns: p.graph.Root()}
	return s.scan(file.Root())
}

// fileScan is the per-file running state: the current namespace (root until
// the file's namespace declaration is seen) and the accumulated import list.
// Imports only ever grow within a file.
type fileScan struct {
	pass    *Pass
	file    *parser.File
	ns      graph.NamespaceID
	imports []string
}

func (s *fileScan) scan(node *sitter.Node) error {
	for _, child := range parser.NamedChildren(node) {
		var err error
		switch child.Type() {
		case "using_directive":
			s.addImport(child)
		case "namespace_declaration", "file_scoped_namespace_declaration":
			err = s.enterNamespace(child)
		case "class_declaration", "record_declaration":
			err = s.addClassLike(child, graph.KindClass)
		case "struct_declaration":
			err = s.addClassLike(child, graph.KindStruct)
		case "interface_declaration":
			err = s.addClassLike(child, graph.KindInterface)
		case "enum_declaration":
			err = s.addEnum(child)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// addImport records a using directive's namespace name. Static and alias
// forms carry extra children, but the imported name is always the last
// name-shaped child.
func (s *fileScan) addImport(directive *sitter.Node) {
	var name *sitter.Node
	for _, c := range parser.NamedChildren(directive) {
		if c.Type() == "identifier" || c.Type() == "qualified_name" {
			name = c
		}
	}
	if name != nil {
		s.imports = append(s.imports, s.file.Text(name))
	}
}

// enterNamespace reassigns the current namespace, materializing the dotted
// path segment by segment from the root. Block-scoped namespaces nest their
// declarations in a declaration_list; file-scoped ones hang them off the
// declaration node itself or leave them as later top-level siblings.
// Scanning both spellings covers every grammar layout.
func (s *fileScan) enterNamespace(decl *sitter.Node) error {
	name := parser.DeclName(decl)
	if name == nil {
		return errors.Wrapf(ErrMalformed, "%s: namespace declaration has no name", s.file.Path)
	}
	s.ns = s.pass.graph.EnsureNamespacePath(strings.Split(s.file.Text(name), "."))
	if body := parser.FindChild(decl, "declaration_list"); body != nil {
		return s.scan(body)
	}
	return s.scan(decl)
}

// addClassLike registers a class, struct, interface or record shell under the
// current namespace and appends a declaration context to it. Partial types
// accumulate one context per declaration site.
func (s *fileScan) addClassLike(decl *sitter.Node, kind graph.TypeKind) error {
	name := parser.DeclName(decl)
	if name == nil {
		return errors.Wrapf(ErrMalformed, "%s: %s has no name", s.file.Path, decl.Type())
	}
	members := parser.FindChild(decl, "declaration_list")
	if members == nil {
		// Positional records carry no member block; nothing to model.
		if decl.Type() == "record_declaration" {
			return nil
		}
		return errors.Wrapf(ErrMalformed, "%s: %s %s has no member list",
			s.file.Path, decl.Type(), s.file.Text(name))
	}

	params := typeParamNames(s.file, decl)
	key := graph.TypeKey(s.file.Text(name), len(params))
	id, ok := s.pass.graph.LookupIn(s.ns, key)
	if !ok {
		id = s.pass.graph.AddClassLike(kind, s.ns, s.file.Text(name), params)
	}
	t := s.pass.graph.Type(id)
	if !t.ClassLike() {
		s.pass.reporter.Warnf(s.file.Path, "%s collides with enum %s, skipping declaration",
			s.file.Text(name), t.Name)
		return nil
	}
	t.AddContext(&graph.DeclContext{
		File:      s.file,
		Decl:      decl,
		Members:   members,
		Namespace: s.ns,
		Imports:   append([]string(nil), s.imports...),
	})
	return nil
}

// addEnum registers an enum and parses its members in place. Entry values are
// self-contained literals, so there is no forward-reference risk in reading
// them during discovery. The first declaration of a name wins; a repeated
// enum name is a no-op, never a merge. A name already held by a class-like
// type is reported and skipped, mirroring the class side of the collision.
func (s *fileScan) addEnum(decl *sitter.Node) error {
	name := parser.DeclName(decl)
	if name == nil {
		return errors.Wrapf(ErrMalformed, "%s: enum declaration has no name", s.file.Path)
	}
	members := parser.FindChild(decl, "enum_member_declaration_list")
	if members == nil {
		return errors.Wrapf(ErrMalformed, "%s: enum %s has no member list",
			s.file.Path, s.file.Text(name))
	}

	key := graph.TypeKey(s.file.Text(name), 0)
	if id, ok := s.pass.graph.LookupIn(s.ns, key); ok {
		if existing := s.pass.graph.Type(id); existing.Kind != graph.KindEnum {
			s.pass.reporter.Warnf(s.file.Path, "enum %s collides with %s, skipping declaration",
				s.file.Text(name), existing.Name)
		}
		return nil
	}

	underlying := ""
	if base := parser.FindChild(decl, "base_list"); base != nil {
		if bt := parser.TypeExpr(base); bt != nil {
			underlying = s.file.Text(bt)
		}
	}

	enum := s.pass.graph.Type(s.pass.graph.AddEnum(s.ns, s.file.Text(name), underlying))
	for _, m := range parser.NamedChildren(members) {
		if m.Type() != "enum_member_declaration" {
			continue
		}
		if entry, ok := s.enumEntry(m); ok {
			enum.Entries = append(enum.Entries, entry)
		}
	}
	return nil
}

// enumEntry reads one member's name and, when present, its verbatim value
// expression. Not every grammar revision exposes the value as a field, so
// the fallback takes the named child following the name.
func (s *fileScan) enumEntry(member *sitter.Node) (graph.EnumEntry, bool) {
	name := parser.DeclName(member)
	if name == nil {
		return graph.EnumEntry{}, false
	}
	entry := graph.EnumEntry{Name: s.file.Text(name)}
	if value := member.ChildByFieldName("value"); value != nil {
		entry.Value = s.file.Text(value)
	} else {
		for _, c := range parser.NamedChildren(member) {
			if c.StartByte() > name.EndByte() {
				entry.Value = s.file.Text(c)
				break
			}
		}
	}
	return entry, true
}

// typeParamNames reads the declared generic-parameter names in order, empty
// for non-generic declarations.
func typeParamNames(file *parser.File, decl *sitter.Node) []string {
	list := parser.FindChild(decl, "type_parameter_list")
	if list == nil {
		return nil
	}
	var names []string
	for _, p := range parser.NamedChildren(list) {
		if p.Type() != "type_parameter" {
			continue
		}
		if name := parser.DeclName(p); name != nil {
			names = append(names, file.Text(name))
		}
	}
	return names
}
