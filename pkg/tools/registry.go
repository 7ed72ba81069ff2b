package tools

// Registry is an ordered, name-keyed collection of tools. Registries are
// immutable after construction; Restrict returns a new Registry.
type Registry struct {
	order  []string
	byName map[string]Tool
}

// NewRegistry builds a registry from the given tools in order. A later tool
// with a duplicate name replaces the earlier one in place.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.byName[t.Name()]; !exists {
			r.order = append(r.order, t.Name())
		}
		r.byName[t.Name()] = t
	}
	return r
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Tools returns the tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// Restrict returns a registry containing only the named tools, preserving
// registration order. Names with no registered tool are ignored.
func (r *Registry) Restrict(allowed []string) *Registry {
	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}

	restricted := &Registry{byName: make(map[string]Tool)}
	for _, name := range r.order {
		if allowedSet[name] {
			restricted.order = append(restricted.order, name)
			restricted.byName[name] = r.byName[name]
		}
	}
	return restricted
}
