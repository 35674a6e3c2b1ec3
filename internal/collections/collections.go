package collections

import "sync"

// Definition holds the configuration for one named media collection
type Definition struct {
	Name             string
	Disk             string
	CuratorType      string
	IsSingleFile     bool
	AnonymousAllowed bool
}

// UseDisk sets the disk media in this collection is stored on
func (d *Definition) UseDisk(disk string) *Definition {
	d.Disk = disk
	return d
}

// SingleFile restricts the collection to at most one record per curator.
// Storing a new record replaces the previous one atomically.
func (d *Definition) SingleFile() *Definition {
	d.IsSingleFile = true
	return d
}

// OnlyFor restricts the collection to curators of the given type
func (d *Definition) OnlyFor(curatorType string) *Definition {
	d.CuratorType = curatorType
	return d
}

// AllowAnonymous permits records without a curator in this collection
func (d *Definition) AllowAnonymous() *Definition {
	d.AnonymousAllowed = true
	return d
}

// Registry maps collection names to their definitions. Collections are
// expected to be defined once at startup; the lock only makes concurrent
// mutation safe, it is not meant for per-request coordination.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates an empty collection registry
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
	}
}

// Define creates a fresh definition under name, silently replacing any
// prior definition with that name, and returns it for further configuration
func (r *Registry) Define(name string) *Definition {
	r.mu.Lock()
	defer r.mu.Unlock()

	def := &Definition{Name: name}
	r.defs[name] = def
	return def
}

// Get returns the definition for name, or false when unregistered
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	return def, ok
}

// Has reports whether a collection is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// All returns a snapshot of the current registry
func (r *Registry) All() map[string]*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]*Definition, len(r.defs))
	for name, def := range r.defs {
		snapshot[name] = def
	}
	return snapshot
}

// Clear resets the registry to empty
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defs = make(map[string]*Definition)
}
