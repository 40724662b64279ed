package adapter

import (
	"fmt"
	"sort"
	"sync"
)

const (
	BlueprintCaviarNine = "caviarnine-v1"
	BlueprintOciswap    = "ociswap-v2"
)

// Registry maps blueprint names to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]PoolAdapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]PoolAdapter)}
}

// Register adds or replaces the adapter for blueprint.
func (r *Registry) Register(blueprint string, adapter PoolAdapter) {
	r.mu.Lock()
	r.adapters[blueprint] = adapter
	r.mu.Unlock()
}

// Lookup returns the adapter registered for blueprint.
func (r *Registry) Lookup(blueprint string) (PoolAdapter, error) {
	r.mu.RLock()
	adapter, ok := r.adapters[blueprint]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlueprint, blueprint)
	}
	return adapter, nil
}

// Blueprints returns the registered blueprint names in order.
func (r *Registry) Blueprints() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
