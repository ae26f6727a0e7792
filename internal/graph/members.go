package graph

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Field is one resolved field declaration.
type Field struct {
	Name string
	Type TypeID
}

// FieldTable keeps fields in insertion order, keyed by name with last-write-
// wins semantics: a redeclared name keeps its original position but takes the
// later-resolved type.
type FieldTable struct {
	index   map[string]int
	entries []Field
}

// NewFieldTable creates an empty table.
func NewFieldTable() *FieldTable {
	return &FieldTable{index: make(map[string]int)}
}

// Put records a field, replacing any earlier entry with the same name.
func (t *FieldTable) Put(name string, ty TypeID) {
	if i, ok := t.index[name]; ok {
		t.entries[i].Type = ty
		return
	}
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, Field{Name: name, Type: ty})
}

// Get returns the field registered under a name.
func (t *FieldTable) Get(name string) (Field, bool) {
	if i, ok := t.index[name]; ok {
		return t.entries[i], true
	}
	return Field{}, false
}

// Entries returns the fields in insertion order.
func (t *FieldTable) Entries() []Field {
	return t.entries
}

// Len returns the number of fields.
func (t *FieldTable) Len() int {
	return len(t.entries)
}

// Property is one resolved property declaration. Accessor bodies are opaque;
// only their presence is modeled.
type Property struct {
	Name      string
	Type      TypeID
	HasGetter bool
	HasSetter bool
	Accessors *sitter.Node
}

// PropertyTable mirrors FieldTable's ordering and replacement semantics for
// properties.
type PropertyTable struct {
	index   map[string]int
	entries []Property
}

// NewPropertyTable creates an empty table.
func NewPropertyTable() *PropertyTable {
	return &PropertyTable{index: make(map[string]int)}
}

// Put records a property, replacing any earlier entry with the same name.
func (t *PropertyTable) Put(p Property) {
	if i, ok := t.index[p.Name]; ok {
		t.entries[i] = p
		return
	}
	t.index[p.Name] = len(t.entries)
	t.entries = append(t.entries, p)
}

// Get returns the property registered under a name.
func (t *PropertyTable) Get(name string) (Property, bool) {
	if i, ok := t.index[name]; ok {
		return t.entries[i], true
	}
	return Property{}, false
}

// Entries returns the properties in insertion order.
func (t *PropertyTable) Entries() []Property {
	return t.entries
}

// Len returns the number of properties.
func (t *PropertyTable) Len() int {
	return len(t.entries)
}
