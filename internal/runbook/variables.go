package runbook

// Environment holds the current variable bindings for one runbook run,
// seeded from each VariableSpec's Default and extended by the caller.
type Environment struct {
	bindings map[string]string
}

// NewEnvironment builds an Environment initialized from rb's declared
// variable defaults.
func NewEnvironment(rb *Runbook) *Environment {
	env := &Environment{bindings: make(map[string]string, len(rb.Variables))}
	for name, spec := range rb.Variables {
		if spec.Default != "" {
			env.bindings[name] = spec.Default
		}
	}
	return env
}

// Set binds name to value, overriding any default.
func (e *Environment) Set(name, value string) {
	e.bindings[name] = value
}

// Get returns name's current binding and whether it is bound at all.
func (e *Environment) Get(name string) (string, bool) {
	v, ok := e.bindings[name]
	return v, ok
}

// All returns a copy of every current binding.
func (e *Environment) All() map[string]string {
	out := make(map[string]string, len(e.bindings))
	for k, v := range e.bindings {
		out[k] = v
	}
	return out
}
