package graph

// Scope is anything a type name can be looked up in during resolution:
// namespaces, a generic class's parameter scope, a generic method's
// parameter scope.
type Scope interface {
	LookupType(key string) (TypeID, bool)
}

// TypeScope maps identity keys to owned types, preserving insertion order so
// that every walk over a scope is deterministic.
type TypeScope struct {
	byKey map[string]TypeID
	order []TypeID
}

// NewTypeScope creates an empty scope.
func NewTypeScope() *TypeScope {
	return &TypeScope{byKey: make(map[string]TypeID)}
}

// Register binds a key to a type. Returns false if the key is already taken;
// the existing binding is left untouched.
func (s *TypeScope) Register(key string, id TypeID) bool {
	if _, exists := s.byKey[key]; exists {
		return false
	}
	s.byKey[key] = id
	s.order = append(s.order, id)
	return true
}

// LookupType resolves a key to a registered type.
func (s *TypeScope) LookupType(key string) (TypeID, bool) {
	id, ok := s.byKey[key]
	return id, ok
}

// Types returns the registered types in registration order.
func (s *TypeScope) Types() []TypeID {
	return s.order
}

// Len returns the number of registered types.
func (s *TypeScope) Len() int {
	return len(s.order)
}
