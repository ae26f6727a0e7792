package graph

// NamespaceID is a stable handle into the graph's namespace arena.
type NamespaceID int

// NoNamespace is the absent-namespace sentinel (the root's parent).
const NoNamespace NamespaceID = -1

// Namespace is one node of the namespace tree. The root has an empty name
// and no parent. Children keep creation order so emission walks are
// deterministic.
type Namespace struct {
	ID     NamespaceID
	Name   string
	Parent NamespaceID
	Types  *TypeScope

	children map[string]NamespaceID
	order    []NamespaceID
}

// LookupType resolves an identity key among the namespace's own types.
func (n *Namespace) LookupType(key string) (TypeID, bool) {
	return n.Types.LookupType(key)
}

// Children returns the owned subnamespaces in creation order.
func (n *Namespace) Children() []NamespaceID {
	return n.order
}

// Graph is the whole-program symbol table: the namespace tree plus an arena
// of every type entity, threaded mutably through discovery and resolution
// and read-only through emission. Parent and ownership links are IDs into
// the arenas, never owning references.
type Graph struct {
	namespaces []*Namespace
	types      []*Type

	root NamespaceID
	seq  TypeID
}

// NewGraph creates a graph holding the root namespace and the built-in
// types.
func NewGraph() *Graph {
	g := &Graph{}
	g.root = g.addNamespace("", NoNamespace)
	g.registerBuiltins()
	return g
}

// Root returns the root namespace's ID.
func (g *Graph) Root() NamespaceID {
	return g.root
}

// Namespace returns the namespace for an ID.
func (g *Graph) Namespace(id NamespaceID) *Namespace {
	return g.namespaces[id]
}

// Type returns the type for an ID.
func (g *Graph) Type(id TypeID) *Type {
	return g.types[id]
}

// NamespaceIDs returns every namespace ID in creation order.
func (g *Graph) NamespaceIDs() []NamespaceID {
	ids := make([]NamespaceID, len(g.namespaces))
	for i := range g.namespaces {
		ids[i] = NamespaceID(i)
	}
	return ids
}

// TypeIDs returns every type ID in creation order. Callers that mutate the
// arena while iterating get a snapshot of the IDs that existed at call time.
func (g *Graph) TypeIDs() []TypeID {
	ids := make([]TypeID, len(g.types))
	for i := range g.types {
		ids[i] = TypeID(i)
	}
	return ids
}

// SequenceType returns the built-in generic sequence definition that
// single-dimensional arrays desugar into.
func (g *Graph) SequenceType() TypeID {
	return g.seq
}

func (g *Graph) addNamespace(name string, parent NamespaceID) NamespaceID {
	id := NamespaceID(len(g.namespaces))
	g.namespaces = append(g.namespaces, &Namespace{
		ID:       id,
		Name:     name,
		Parent:   parent,
		Types:    NewTypeScope(),
		children: make(map[string]NamespaceID),
	})
	return id
}

// EnsureNamespace returns the child namespace of the given name, creating it
// on first use.
func (g *Graph) EnsureNamespace(parent NamespaceID, name string) NamespaceID {
	p := g.namespaces[parent]
	if id, ok := p.children[name]; ok {
		return id
	}
	id := g.addNamespace(name, parent)
	p.children[name] = id
	p.order = append(p.order, id)
	return id
}

// EnsureNamespacePath materializes a dotted namespace path from the root,
// segment by segment, reusing existing nodes.
func (g *Graph) EnsureNamespacePath(parts []string) NamespaceID {
	ns := g.root
	for _, part := range parts {
		ns = g.EnsureNamespace(ns, part)
	}
	return ns
}

// DescendNamespace follows a segment path strictly downward from a base
// namespace; false if any segment is missing.
func (g *Graph) DescendNamespace(base NamespaceID, parts []string) (NamespaceID, bool) {
	ns := base
	for _, part := range parts {
		child, ok := g.namespaces[ns].children[part]
		if !ok {
			return NoNamespace, false
		}
		ns = child
	}
	return ns, true
}

// Path returns the name segments from the root (exclusive) down to ns; empty
// for the root itself.
func (g *Graph) Path(id NamespaceID) []string {
	var parts []string
	for ns := id; ns != g.root; ns = g.namespaces[ns].Parent {
		parts = append([]string{g.namespaces[ns].Name}, parts...)
	}
	return parts
}

// LookupIn resolves an identity key among one namespace's own types.
func (g *Graph) LookupIn(ns NamespaceID, key string) (TypeID, bool) {
	return g.namespaces[ns].LookupType(key)
}

func (g *Graph) addType(t *Type) TypeID {
	t.ID = TypeID(len(g.types))
	g.types = append(g.types, t)
	return t.ID
}

// AddClassLike creates a class/struct/interface shell, registers it in the
// namespace under its arity-qualified key, and registers each generic
// parameter into the type's own nested scope.
func (g *Graph) AddClassLike(kind TypeKind, ns NamespaceID, name string, paramNames []string) TypeID {
	t := &Type{
		Kind:      kind,
		Name:      name,
		Key:       TypeKey(name, len(paramNames)),
		Namespace: ns,
		Fields:    NewFieldTable(),
		Props:     NewPropertyTable(),
	}
	id := g.addType(t)
	if len(paramNames) > 0 {
		t.paramScope = NewTypeScope()
		for _, pname := range paramNames {
			pid := g.AddTypeParam(pname)
			t.paramScope.Register(pname, pid)
			t.TypeParams = append(t.TypeParams, pid)
		}
	}
	g.namespaces[ns].Types.Register(t.Key, id)
	return id
}

// AddEnum creates an enum shell registered under its plain name; entries are
// filled in by discovery. Underlying carries the declared base-type name.
func (g *Graph) AddEnum(ns NamespaceID, name string, underlying string) TypeID {
	t := &Type{
		Kind:       KindEnum,
		Name:       name,
		Key:        name,
		Namespace:  ns,
		Underlying: underlying,
	}
	id := g.addType(t)
	g.namespaces[ns].Types.Register(name, id)
	return id
}

// AddTypeParam creates a generic-parameter placeholder. It is registered
// only in its owner's parameter scope, never in a namespace.
func (g *Graph) AddTypeParam(name string) TypeID {
	return g.addType(&Type{
		Kind:      KindTypeParam,
		Name:      name,
		Key:       name,
		Namespace: NoNamespace,
	})
}

// AddDummy returns the dummy registered under key in the namespace, creating
// it on first use, so every unresolved mention of a name shares one stand-in.
func (g *Graph) AddDummy(ns NamespaceID, name string, key string) TypeID {
	if id, ok := g.LookupIn(ns, key); ok {
		return id
	}
	t := &Type{
		Kind:      KindClass,
		Name:      name,
		Key:       key,
		Namespace: ns,
		Dummy:     true,
		Fields:    NewFieldTable(),
		Props:     NewPropertyTable(),
	}
	id := g.addType(t)
	g.namespaces[ns].Types.Register(key, id)
	return id
}

// AddNullable wraps a base type. Wrappers are arena-owned but unregistered:
// nothing ever looks one up by name.
func (g *Graph) AddNullable(elem TypeID) TypeID {
	return g.addType(&Type{
		Kind:      KindNullable,
		Name:      g.types[elem].Name + "?",
		Key:       g.types[elem].Key + "?",
		Namespace: g.types[elem].Namespace,
		Elem:      elem,
	})
}

// AddSpecialization binds a generic definition to resolved arguments. No
// interning: every instantiation site gets its own object, which is
// harmless because only the synthesized display text reaches the output.
func (g *Graph) AddSpecialization(def TypeID, args []TypeID) TypeID {
	return g.addType(&Type{
		Kind:      KindSpecialization,
		Name:      g.types[def].Name,
		Key:       g.types[def].Key,
		Namespace: g.types[def].Namespace,
		Def:       def,
		Args:      args,
	})
}
