package backend

import (
	"sort"
	"sync"
)

// Entry describes a registered backend.
type Entry struct {
	// Name is the unique identifier of the backend.
	Name string

	// Priority orders backends for OpenDefault, higher first.
	Priority int

	// Factory creates targets.
	Factory Factory

	// Available reports whether the backend can run on this system.
	Available func() bool
}

// Registry manages registered backends.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewRegistry creates an empty registry.
// Most code should use the global registry via Register and Open.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

var globalRegistry = NewRegistry()

// Register adds a backend to the global registry. A nil available means the
// backend is always available. Registering an existing name replaces it.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names, highest priority first.
func List() []string {
	return globalRegistry.List()
}

// Available returns the names of available backends, highest priority first.
func Available() []string {
	return globalRegistry.Available()
}

// Open creates a target with the named backend.
func Open(name string, opts Options) (Target, error) {
	return globalRegistry.Open(name, opts)
}

// OpenDefault creates a target with the best available backend.
func OpenDefault(opts Options) (Target, error) {
	return globalRegistry.OpenDefault(opts)
}

// Register adds a backend to r.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &Entry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from r.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered backend names, highest priority first.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns the names of available backends, highest priority first.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Get returns a copy of the entry for name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Open creates a target with the named backend.
func (r *Registry) Open(name string, opts Options) (Target, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if !e.Available() {
		return nil, &UnavailableError{Name: name}
	}
	return e.Factory(opts)
}

// OpenDefault tries every available backend in priority order and returns
// the first target created. If all fail, the last error is returned.
func (r *Registry) OpenDefault(opts Options) (Target, error) {
	r.mu.RLock()
	names := r.sortedNames(true)
	r.mu.RUnlock()

	if len(names) == 0 {
		return nil, ErrNoBackendAvailable
	}

	var lastErr error
	for _, name := range names {
		t, err := r.Open(name, opts)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// sortedNames must be called with the lock held. Equal priorities sort by
// name so the order is stable.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
