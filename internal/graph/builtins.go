package graph

// Built-in C# type names, registered as dummies in the root scope so that
// the global-fallback step of the scope chain resolves them. Display names
// follow what a godot-cpp consumer expects; `int` stays `int` so sequence
// specializations render as `List<int>`.
var builtins = []struct {
	name    string
	display string
}{
	{"void", "void"},
	{"bool", "bool"},
	{"int", "int"},
	{"uint", "uint32_t"},
	{"long", "int64_t"},
	{"ulong", "uint64_t"},
	{"short", "int16_t"},
	{"ushort", "uint16_t"},
	{"byte", "uint8_t"},
	{"sbyte", "int8_t"},
	{"float", "float"},
	{"double", "double"},
	{"decimal", "double"},
	{"char", "char16_t"},
	{"string", "String"},
	{"object", "Variant"},
}

// Built-in generic collections. List`1 doubles as the sequence type that
// single-dimensional arrays desugar into.
var builtinGenerics = []struct {
	name    string
	display string
	arity   int
}{
	{"List", "List", 1},
	{"Dictionary", "HashMap", 2},
	{"HashSet", "HashSet", 1},
}

func (g *Graph) registerBuiltins() {
	for _, b := range builtins {
		id := g.AddDummy(g.root, b.name, b.name)
		g.types[id].Display = b.display
	}
	for _, b := range builtinGenerics {
		id := g.AddDummy(g.root, b.name, TypeKey(b.name, b.arity))
		g.types[id].Display = b.display
		if b.name == "List" {
			g.seq = id
		}
	}
}

// BuiltinDisplay maps a built-in name to its display form; false when the
// name is not a registered built-in. Used for enum underlying types, which
// are captured as raw text during discovery.
func (g *Graph) BuiltinDisplay(name string) (string, bool) {
	id, ok := g.LookupIn(g.root, name)
	if !ok {
		return "", false
	}
	t := g.types[id]
	if !t.Dummy || t.Display == "" {
		return "", false
	}
	return t.Display, true
}
