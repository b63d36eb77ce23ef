// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration mirror with change-listener propagation.

package control

import "sync"

// ConfigStore mirrors the effective pipeline configuration as a dynamic
// key/value map, for observability and tooling. The facade's immutable
// Config remains the source of truth; this store reflects it.
type ConfigStore struct {
	mu        sync.RWMutex
	values    map[string]any
	listeners []func()
}

// NewConfigStore initializes an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

// Snapshot returns a copy of all values.
func (cs *ConfigStore) Snapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.values))
	for k, v := range cs.values {
		out[k] = v
	}
	return out
}

// Get returns one value and whether it is set.
func (cs *ConfigStore) Get(key string) (any, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	v, ok := cs.values[key]
	return v, ok
}

// Set merges new values and notifies listeners, in registration order,
// outside the lock.
func (cs *ConfigStore) Set(values map[string]any) {
	cs.mu.Lock()
	for k, v := range values {
		cs.values[k] = v
	}
	listeners := make([]func(), len(cs.listeners))
	copy(listeners, cs.listeners)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnChange registers a listener invoked after every Set.
func (cs *ConfigStore) OnChange(fn func()) {
	cs.mu.Lock()
	cs.listeners = append(cs.listeners, fn)
	cs.mu.Unlock()
}
