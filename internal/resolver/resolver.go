package resolver

import (
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tehKaiN/gdunsharp/internal/graph"
	"github.com/tehKaiN/gdunsharp/internal/parser"
	"github.com/tehKaiN/gdunsharp/internal/report"
)

// ErrUnsupportedShape reports a type expression the target language cannot
// represent. Unlike an unknown name, degrading here would silently corrupt
// the output, so the run aborts before anything is written.
var ErrUnsupportedShape = errors.New("unsupported type shape")

// Resolver walks every declaration context recorded by discovery and fills in
// members, base lists and consolidated imports. Unknown names degrade to
// dummy types; only shape-level mismatches abort.
type Resolver struct {
	graph    *graph.Graph
	reporter *report.Reporter
}

// New creates a resolver over the given graph.
func New(g *graph.Graph, rep *report.Reporter) *Resolver {
	return &Resolver{graph: g, reporter: rep}
}

// Run resolves all class-like entities discovered so far. Dummies synthesized
// along the way extend the arena but never re-enter the worklist: the ID
// snapshot is taken once.
func (r *Resolver) Run() error {
	for _, id := range r.graph.TypeIDs() {
		t := r.graph.Type(id)
		if !t.ClassLike() || t.Dummy {
			continue
		}
		for _, ctx := range t.Contexts {
			if err := r.resolveContext(t, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveContext processes one declaration site: members in source order,
// then the base list, then the context's imports.
func (r *Resolver) resolveContext(t *graph.Type, ctx *graph.DeclContext) error {
	chain := r.buildChain(t, ctx)

	for _, member := range parser.NamedChildren(ctx.Members) {
		var err error
		switch member.Type() {
		case "field_declaration":
			err = r.resolveField(t, ctx, chain, member)
		case "property_declaration":
			err = r.resolveProperty(t, ctx, chain, member)
		case "method_declaration":
			err = r.resolveMethod(t, ctx, chain, member)
		}
		if err != nil {
			return err
		}
	}

	if err := r.resolveBases(t, ctx, chain); err != nil {
		return err
	}
	r.consolidateImports(t, ctx)
	return nil
}

// buildChain constructs the lookup chain for a context, in priority order:
// the owner's generic-parameter scope, the context namespace and its
// enclosing namespaces nearest first (root excluded), each resolvable import
// in directive order, and finally the root. An import beats the root, so a
// directive can shadow a global name.
func (r *Resolver) buildChain(t *graph.Type, ctx *graph.DeclContext) []graph.Scope {
	var chain []graph.Scope
	if t.Generic() {
		chain = append(chain, t.ParamScope())
	}
	for ns := ctx.Namespace; ns != r.graph.Root(); ns = r.graph.Namespace(ns).Parent {
		chain = append(chain, r.graph.Namespace(ns))
	}
	for _, imp := range ctx.Imports {
		target, ok := r.resolveNamespacePath(ctx.Namespace, imp)
		if !ok {
			r.reporter.Warnf(ctx.File.Path, "using directive %s does not name a known namespace, skipping", imp)
			continue
		}
		chain = append(chain, r.graph.Namespace(target))
	}
	chain = append(chain, r.graph.Namespace(r.graph.Root()))
	return chain
}

// resolveNamespacePath resolves a dotted namespace path by walking it from
// the context namespace, then each enclosing namespace outward, then the
// root, taking the first base where the full segment path exists.
func (r *Resolver) resolveNamespacePath(from graph.NamespaceID, dotted string) (graph.NamespaceID, bool) {
	parts := strings.Split(dotted, ".")
	for base := from; base != graph.NoNamespace; base = r.graph.Namespace(base).Parent {
		if target, ok := r.graph.DescendNamespace(base, parts); ok {
			return target, true
		}
	}
	return graph.NoNamespace, false
}

func lookupChain(chain []graph.Scope, key string) (graph.TypeID, bool) {
	for _, scope := range chain {
		if id, ok := scope.LookupType(key); ok {
			return id, true
		}
	}
	return graph.NoType, false
}

// dummyFor returns the degradation stand-in for an unresolvable name,
// creating and reporting it on first use in the context's namespace. The
// registration makes later references to the same name resolve silently.
func (r *Resolver) dummyFor(ctx *graph.DeclContext, name, key string) graph.TypeID {
	if id, ok := r.graph.LookupIn(ctx.Namespace, key); ok {
		return id
	}
	r.reporter.Warnf(ctx.File.Path, "unresolved type name %s", name)
	return r.graph.AddDummy(ctx.Namespace, name, key)
}

// resolveExpr resolves one type expression, dispatching on node shape.
func (r *Resolver) resolveExpr(ctx *graph.DeclContext, chain []graph.Scope, expr *sitter.Node) (graph.TypeID, error) {
	switch expr.Type() {
	case "predefined_type", "identifier":
		name := ctx.File.Text(expr)
		if id, ok := lookupChain(chain, graph.TypeKey(name, 0)); ok {
			return id, nil
		}
		return r.dummyFor(ctx, name, graph.TypeKey(name, 0)), nil
	case "qualified_name":
		return r.resolveQualified(ctx, chain, expr)
	case "nullable_type":
		inner := parser.TypeExpr(expr)
		if inner == nil {
			return graph.NoType, errors.Wrapf(ErrUnsupportedShape, "%s: nullable type has no element", ctx.File.Path)
		}
		elem, err := r.resolveExpr(ctx, chain, inner)
		if err != nil {
			return graph.NoType, err
		}
		return r.graph.AddNullable(elem), nil
	case "generic_name":
		return r.resolveGeneric(ctx, chain, expr)
	case "array_type":
		return r.resolveArray(ctx, chain, expr)
	case "tuple_type":
		return graph.NoType, errors.Wrapf(ErrUnsupportedShape, "%s: tuple type %s cannot be represented",
			ctx.File.Path, ctx.File.Text(expr))
	default:
		return graph.NoType, errors.Wrapf(ErrUnsupportedShape, "%s: unhandled type expression %s",
			ctx.File.Path, expr.Type())
	}
}

// resolveQualified resolves Qualifier.Name: the qualifier as a namespace
// path, then the final segment in that namespace's scope only. Failure
// anywhere degrades to a dummy keyed by the full dotted text, exactly like
// an unresolved simple name.
func (r *Resolver) resolveQualified(ctx *graph.DeclContext, chain []graph.Scope, expr *sitter.Node) (graph.TypeID, error) {
	full := ctx.File.Text(expr)
	qual, last := qualifiedParts(expr)
	if qual == nil || last == nil {
		return r.dummyFor(ctx, full, full), nil
	}
	target, ok := r.resolveNamespacePath(ctx.Namespace, ctx.File.Text(qual))
	if !ok {
		return r.dummyFor(ctx, ctx.File.Text(last), full), nil
	}

	ns := r.graph.Namespace(target)
	switch last.Type() {
	case "identifier":
		if id, ok := ns.LookupType(graph.TypeKey(ctx.File.Text(last), 0)); ok {
			return id, nil
		}
	case "generic_name":
		nameNode, argNodes := genericParts(last)
		if nameNode == nil {
			break
		}
		def, ok := ns.LookupType(graph.TypeKey(ctx.File.Text(nameNode), len(argNodes)))
		if !ok {
			break
		}
		args, err := r.resolveArgs(ctx, chain, argNodes)
		if err != nil {
			return graph.NoType, err
		}
		return r.graph.AddSpecialization(def, args), nil
	}
	return r.dummyFor(ctx, ctx.File.Text(last), full), nil
}

// resolveGeneric resolves Name<A, B, ...> into a specialization. Arguments
// resolve left to right; their order fixes the synthesized display name. An
// unresolvable definition degrades to a dummy registered under the arity
// key, and resolution continues.
func (r *Resolver) resolveGeneric(ctx *graph.DeclContext, chain []graph.Scope, expr *sitter.Node) (graph.TypeID, error) {
	nameNode, argNodes := genericParts(expr)
	if nameNode == nil {
		return graph.NoType, errors.Wrapf(ErrUnsupportedShape, "%s: generic name has no identifier", ctx.File.Path)
	}
	args, err := r.resolveArgs(ctx, chain, argNodes)
	if err != nil {
		return graph.NoType, err
	}

	name := ctx.File.Text(nameNode)
	key := graph.TypeKey(name, len(args))
	def, ok := lookupChain(chain, key)
	if !ok {
		def = r.dummyFor(ctx, name, key)
	}
	return r.graph.AddSpecialization(def, args), nil
}

func (r *Resolver) resolveArgs(ctx *graph.DeclContext, chain []graph.Scope, nodes []*sitter.Node) ([]graph.TypeID, error) {
	args := make([]graph.TypeID, 0, len(nodes))
	for _, n := range nodes {
		id, err := r.resolveExpr(ctx, chain, n)
		if err != nil {
			return nil, err
		}
		args = append(args, id)
	}
	return args, nil
}

// resolveArray desugars T[] into the built-in sequence type specialized on
// the element; jagged arrays recurse naturally. A rank specifier containing
// a comma is multi-dimensional; silently dropping a dimension would corrupt
// every downstream consumer, so it is rejected outright.
func (r *Resolver) resolveArray(ctx *graph.DeclContext, chain []graph.Scope, expr *sitter.Node) (graph.TypeID, error) {
	if rank := parser.FindChild(expr, "array_rank_specifier"); rank != nil {
		if strings.Contains(ctx.File.Text(rank), ",") {
			return graph.NoType, errors.Wrapf(ErrUnsupportedShape, "%s: multi-dimensional array %s",
				ctx.File.Path, ctx.File.Text(expr))
		}
	}
	elemNode := parser.TypeExpr(expr)
	if elemNode == nil {
		return graph.NoType, errors.Wrapf(ErrUnsupportedShape, "%s: array type has no element", ctx.File.Path)
	}
	elem, err := r.resolveExpr(ctx, chain, elemNode)
	if err != nil {
		return graph.NoType, err
	}
	return r.graph.AddSpecialization(r.graph.SequenceType(), []graph.TypeID{elem}), nil
}

// resolveField records one field per declarator; all declarators of one
// declaration share the declared type.
func (r *Resolver) resolveField(t *graph.Type, ctx *graph.DeclContext, chain []graph.Scope, member *sitter.Node) error {
	decl := parser.FindChild(member, "variable_declaration")
	if decl == nil {
		decl = member
	}
	typeNode := parser.TypeExpr(decl)
	if typeNode == nil {
		return errors.Wrapf(ErrUnsupportedShape, "%s: field declaration has no type", ctx.File.Path)
	}
	id, err := r.resolveExpr(ctx, chain, typeNode)
	if err != nil {
		return err
	}
	for _, d := range parser.NamedChildren(decl) {
		if d.Type() != "variable_declarator" {
			continue
		}
		if name := parser.DeclName(d); name != nil {
			t.Fields.Put(ctx.File.Text(name), id)
		}
	}
	return nil
}

// resolveProperty records one property; accessor bodies stay opaque, only
// their presence is captured.
func (r *Resolver) resolveProperty(t *graph.Type, ctx *graph.DeclContext, chain []graph.Scope, member *sitter.Node) error {
	typeNode := parser.TypeExpr(member)
	name := parser.MemberName(member)
	if typeNode == nil || name == nil {
		return errors.Wrapf(ErrUnsupportedShape, "%s: property declaration missing type or name", ctx.File.Path)
	}
	id, err := r.resolveExpr(ctx, chain, typeNode)
	if err != nil {
		return err
	}

	prop := graph.Property{Name: ctx.File.Text(name), Type: id}
	if acc := parser.FindChild(member, "accessor_list"); acc != nil {
		prop.Accessors = acc
		for _, a := range parser.NamedChildren(acc) {
			if a.Type() != "accessor_declaration" {
				continue
			}
			if parser.HasToken(a, "get") {
				prop.HasGetter = true
			}
			if parser.HasToken(a, "set") || parser.HasToken(a, "init") {
				prop.HasSetter = true
			}
		}
	} else if parser.FindChild(member, "arrow_expression_clause") != nil {
		// Expression-bodied properties are getters.
		prop.HasGetter = true
	}
	t.Props.Put(prop)
	return nil
}

// resolveMethod records one method. Generic methods get a transient scope
// consulted before the owner's, so a method parameter shadows a class
// parameter of the same name.
func (r *Resolver) resolveMethod(t *graph.Type, ctx *graph.DeclContext, chain []graph.Scope, member *sitter.Node) error {
	retNode := parser.TypeExpr(member)
	name := parser.MemberName(member)
	if retNode == nil || name == nil {
		return errors.Wrapf(ErrUnsupportedShape, "%s: method declaration missing return type or name", ctx.File.Path)
	}

	m := &graph.Method{Name: ctx.File.Text(name), Body: parser.FindChild(member, "block")}

	methodChain := chain
	if list := parser.FindChild(member, "type_parameter_list"); list != nil {
		scope := graph.NewTypeScope()
		for _, p := range parser.NamedChildren(list) {
			if p.Type() != "type_parameter" {
				continue
			}
			pn := parser.DeclName(p)
			if pn == nil {
				continue
			}
			id := r.graph.AddTypeParam(ctx.File.Text(pn))
			scope.Register(graph.TypeKey(ctx.File.Text(pn), 0), id)
			m.TypeParams = append(m.TypeParams, id)
		}
		methodChain = append([]graph.Scope{scope}, chain...)
	}

	ret, err := r.resolveExpr(ctx, methodChain, retNode)
	if err != nil {
		return err
	}
	m.Return = ret

	if params := parser.FindChild(member, "parameter_list"); params != nil {
		for _, p := range parser.NamedChildren(params) {
			if p.Type() != "parameter" {
				continue
			}
			if len(m.Params) == 0 && parser.HasModifier(ctx.File, p, "this") {
				m.Extension = true
			}
			param, err := r.resolveParam(ctx, methodChain, p)
			if err != nil {
				return err
			}
			m.Params = append(m.Params, param)
		}
	}

	t.Methods = append(t.Methods, m)
	return nil
}

// resolveParam reads one parameter's type, name and default. Not every
// grammar revision wraps the default in an equals_value_clause; the fallback
// takes the named child following the name, which can only be the default
// expression.
func (r *Resolver) resolveParam(ctx *graph.DeclContext, chain []graph.Scope, node *sitter.Node) (graph.Param, error) {
	typeNode := parser.TypeExpr(node)
	name := parser.MemberName(node)
	if typeNode == nil || name == nil {
		return graph.Param{}, errors.Wrapf(ErrUnsupportedShape, "%s: parameter missing type or name", ctx.File.Path)
	}
	id, err := r.resolveExpr(ctx, chain, typeNode)
	if err != nil {
		return graph.Param{}, err
	}

	param := graph.Param{Name: ctx.File.Text(name), Type: id}
	if def := parser.FindChild(node, "equals_value_clause"); def != nil {
		if value := parser.NamedChildren(def); len(value) > 0 {
			param.Default = ctx.File.Text(value[0])
		}
	} else {
		for _, c := range parser.NamedChildren(node) {
			if c.StartByte() > name.EndByte() {
				param.Default = ctx.File.Text(c)
				break
			}
		}
	}
	return param, nil
}

// resolveBases resolves the declaration's base list through the same chain,
// appending previously-unseen entries.
func (r *Resolver) resolveBases(t *graph.Type, ctx *graph.DeclContext, chain []graph.Scope) error {
	base := parser.FindChild(ctx.Decl, "base_list")
	if base == nil {
		return nil
	}
	for _, b := range parser.NamedChildren(base) {
		if !parser.IsTypeExpr(b) {
			continue
		}
		id, err := r.resolveExpr(ctx, chain, b)
		if err != nil {
			return err
		}
		t.AddBase(id)
	}
	return nil
}

// consolidateImports merges the context's resolvable imports into the type's
// import list, skipping duplicates by identity. Unresolvable directives were
// already reported during chain construction.
func (r *Resolver) consolidateImports(t *graph.Type, ctx *graph.DeclContext) {
	for _, imp := range ctx.Imports {
		if target, ok := r.resolveNamespacePath(ctx.Namespace, imp); ok {
			t.AddImport(target)
		}
	}
}

// qualifiedParts splits a qualified_name into qualifier and final segment,
// falling back to positional children when the fields are absent.
func qualifiedParts(expr *sitter.Node) (*sitter.Node, *sitter.Node) {
	qual := expr.ChildByFieldName("qualifier")
	last := expr.ChildByFieldName("name")
	children := parser.NamedChildren(expr)
	if qual == nil && len(children) > 0 {
		qual = children[0]
	}
	if last == nil && len(children) > 1 {
		last = children[len(children)-1]
	}
	return qual, last
}

// genericParts splits a generic_name into its identifier and the type
// argument nodes in order.
func genericParts(expr *sitter.Node) (*sitter.Node, []*sitter.Node) {
	name := parser.FindChild(expr, "identifier")
	var args []*sitter.Node
	for _, c := range parser.NamedChildren(parser.FindChild(expr, "type_argument_list")) {
		if parser.IsTypeExpr(c) {
			args = append(args, c)
		}
	}
	return name, args
}
