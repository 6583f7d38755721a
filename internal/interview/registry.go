package interview

import "sync"

// Registry tracks live machines by id so the presentation surface can
// address independent sessions. Each machine still owns its session record
// exclusively; the registry only routes to it.
type Registry struct {
	mu       sync.RWMutex
	machines map[string]*Machine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{machines: make(map[string]*Machine)}
}

// Add registers a machine under its id.
func (r *Registry) Add(m *Machine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.machines[m.ID()] = m
}

// Get retrieves a machine by id.
func (r *Registry) Get(id string) (*Machine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.machines[id]
	return m, ok
}

// Remove drops a machine from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.machines, id)
}

// Len returns the number of live machines.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.machines)
}
