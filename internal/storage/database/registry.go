package database

import (
	"fmt"
	"sync"
)

// ManagerFactory is a function that creates a backend manager rooted at path.
type ManagerFactory func(path string) Manager

var (
	backendMu        sync.RWMutex
	backendFactories = make(map[string]ManagerFactory)
)

// RegisterBackend registers a backend factory with the given name.
// Backends call this from their init function.
func RegisterBackend(name string, factory ManagerFactory) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendFactories[name] = factory
}

// OpenBackend creates a manager for the named backend rooted at path.
func OpenBackend(name, path string) (Manager, error) {
	backendMu.RLock()
	factory, ok := backendFactories[name]
	backendMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown database backend: %s", name)
	}

	return factory(path), nil
}

// AvailableBackends returns a list of registered backend names.
func AvailableBackends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()

	names := make([]string, 0, len(backendFactories))
	for name := range backendFactories {
		names = append(names, name)
	}
	return names
}

// IsBackendAvailable checks if a backend with the given name is registered.
func IsBackendAvailable(name string) bool {
	backendMu.RLock()
	_, ok := backendFactories[name]
	backendMu.RUnlock()
	return ok
}
