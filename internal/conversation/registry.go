package conversation

import (
	"context"
	"sort"
	"sync"

	"github.com/Proton-105/voice-journal/internal/state"
)

// Factory builds the machine of a session on first use.
type Factory func(ctx context.Context, sessionID string) (*Machine, error)

// Registry keeps one machine per session id.
type Registry struct {
	mu       sync.Mutex
	machines map[string]*Machine
	factory  Factory
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		machines: make(map[string]*Machine),
		factory:  factory,
	}
}

// Get returns the machine for sessionID, creating it through the factory when missing.
// Failed creations are not cached.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Machine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.machines[sessionID]; ok {
		return m, nil
	}

	m, err := r.factory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	r.machines[sessionID] = m
	return m, nil
}

// Lookup returns an existing machine without creating one.
func (r *Registry) Lookup(sessionID string) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.machines[sessionID]
	return m, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.machines)
}

// IDs returns the live session ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.machines))
	for id := range r.machines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CountByState groups live sessions by their current state.
func (r *Registry) CountByState() map[state.State]int {
	r.mu.Lock()
	machines := make([]*Machine, 0, len(r.machines))
	for _, m := range r.machines {
		machines = append(machines, m)
	}
	r.mu.Unlock()

	counts := make(map[state.State]int, len(state.States))
	for _, m := range machines {
		counts[m.State()]++
	}
	return counts
}
