package lex

import "sync"

// The Terraform test framework re-creates the provider between steps, so
// fakes live in a process-wide registry keyed by namespace.
var (
	memoryRegistryMu sync.Mutex
	memoryRegistry   = make(map[string]*MemoryAPI)
)

// GetOrCreateMemoryAPI returns the fake registered under namespace,
// creating it on first use.
func GetOrCreateMemoryAPI(namespace string) *MemoryAPI {
	memoryRegistryMu.Lock()
	defer memoryRegistryMu.Unlock()

	if m, ok := memoryRegistry[namespace]; ok {
		return m
	}
	m := NewMemoryAPI()
	memoryRegistry[namespace] = m
	return m
}

// ResetMemoryAPIs drops every registered fake.
func ResetMemoryAPIs() {
	memoryRegistryMu.Lock()
	defer memoryRegistryMu.Unlock()

	memoryRegistry = make(map[string]*MemoryAPI)
}
