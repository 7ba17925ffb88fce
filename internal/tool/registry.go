package tool

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrToolNotRegistered is returned by [Registry.Get] when no tool is
// registered under the requested identifier.
var ErrToolNotRegistered = errors.New("tool: not registered")

// entry pairs a Tool with its declared capabilities.
type entry struct {
	tool         Tool
	capabilities []Capability
}

// Registry maps tool identifiers to implementations and their declared
// capabilities. It is populated once at process start and read-only afterwards;
// all methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds t under its own name with the given capabilities.
// Registering the same name twice returns an error rather than silently
// replacing the earlier tool.
func (r *Registry) Register(t Tool, capabilities ...Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool: cannot register a tool with an empty name")
	}
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("tool: %q is already registered", name)
	}
	r.entries[name] = entry{tool: t, capabilities: capabilities}
	return nil
}

// Get returns the tool registered under id, or [ErrToolNotRegistered].
func (r *Registry) Get(id string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotRegistered, id)
	}
	return e.tool, nil
}

// IDs returns all registered tool identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ByCapability returns the sorted identifiers of all tools declaring the
// given capability. The sorted order keeps router output deterministic.
func (r *Registry) ByCapability(c Capability) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, e := range r.entries {
		for _, have := range e.capabilities {
			if have == c {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// Capabilities returns the declared capabilities of the tool registered under
// id. Returns nil when id is unknown.
func (r *Registry) Capabilities(id string) []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	caps := make([]Capability, len(e.capabilities))
	copy(caps, e.capabilities)
	return caps
}
