package preferences

import (
	"sync"
)

// FlagType is the value type of an actor flag
type FlagType string

const (
	FlagTypeString FlagType = "string"
	FlagTypeBool   FlagType = "bool"
	FlagTypeNumber FlagType = "number"
)

// FlagDefinition describes one actor flag shown in the character options
type FlagDefinition struct {
	Name    string
	Label   string
	Hint    string
	Section string
	Type    FlagType
}

// Registry holds the actor flag schema. Registering a name twice replaces
// the earlier definition and keeps its position.
type Registry struct {
	mu    sync.RWMutex
	flags map[string]FlagDefinition
	order []string
}

// NewRegistry creates an empty flag registry
func NewRegistry() *Registry {
	return &Registry{flags: make(map[string]FlagDefinition)}
}

// Register adds or replaces a flag definition. It reports whether the name was new.
func (r *Registry) Register(def FlagDefinition) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.flags[def.Name]
	if !exists {
		r.order = append(r.order, def.Name)
	}
	r.flags[def.Name] = def
	return !exists
}

// Lookup returns the definition of a flag
func (r *Registry) Lookup(name string) (FlagDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.flags[name]
	return def, ok
}

// Definitions returns every flag in registration order
func (r *Registry) Definitions() []FlagDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FlagDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.flags[name])
	}
	return out
}
