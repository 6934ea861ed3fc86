package edm

// PropertyType is a typed, named attribute of the remote data model.
type PropertyType struct {
	ID       string `json:"id"`
	Type     FQN    `json:"type"`
	Title    string `json:"title,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// PropertyTypeRegistry maps fully-qualified property names to property types.
// The zero value is an empty registry. Never mutated after construction.
type PropertyTypeRegistry struct {
	byFQN map[FQN]PropertyType
}

// NewPropertyTypeRegistry indexes property types by FQN. Later duplicates win.
func NewPropertyTypeRegistry(types []PropertyType) PropertyTypeRegistry {
	byFQN := make(map[FQN]PropertyType, len(types))
	for _, pt := range types {
		byFQN[pt.Type] = pt
	}
	return PropertyTypeRegistry{byFQN: byFQN}
}

// Get returns the property type registered for fqn.
func (r PropertyTypeRegistry) Get(fqn FQN) (PropertyType, bool) {
	pt, ok := r.byFQN[fqn]
	return pt, ok
}

// ID returns the property type id for fqn, or "" when the registry has no entry.
func (r PropertyTypeRegistry) ID(fqn FQN) string {
	return r.byFQN[fqn].ID
}

// Len returns the number of registered property types.
func (r PropertyTypeRegistry) Len() int { return len(r.byFQN) }
