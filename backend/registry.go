package backend

import (
	"sort"
	"sync"

	"github.com/src-d/go-crossquery/query"
)

// Registry maps backend identifiers to their adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry returns a new empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register adds an adapter under its backend identifier, replacing any
// previous adapter with the same name.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Adapter resolves the adapter for the given backend identifier.
func (r *Registry) Adapter(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[name]
	if !ok {
		return nil, query.ErrBackendNotFound.New(name)
	}
	return a, nil
}

// Backends returns the identifiers of all registered adapters, sorted.
func (r *Registry) Backends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
