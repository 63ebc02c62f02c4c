package target

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data     []byte
	modified time.Time
}

// MemoryTarget keeps objects in process. It is safe for concurrent use.
type MemoryTarget struct {
	name string

	mu      sync.RWMutex
	objects map[string]memoryObject
	puts    int
	now     func() time.Time
}

// NewMemoryTarget returns an empty store.
func NewMemoryTarget(name string) *MemoryTarget {
	return &MemoryTarget{
		name:    name,
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

func (m *MemoryTarget) Name() string { return m.name }

func (m *MemoryTarget) Put(_ context.Context, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts++
	if _, ok := m.objects[key]; ok {
		return ErrExists
	}
	m.objects[key] = memoryObject{
		data:     append([]byte(nil), body...),
		modified: m.now(),
	}
	return nil
}

func (m *MemoryTarget) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

// List returns matching objects sorted by key.
func (m *MemoryTarget) List(_ context.Context, prefix string) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var objects []Object
	for k, obj := range m.objects {
		if strings.HasPrefix(k, prefix) {
			objects = append(objects, Object{Key: k, Size: int64(len(obj.data)), Modified: obj.modified})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Puts returns how many Put calls the store has received.
func (m *MemoryTarget) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// Memory stores outlive a single CLI invocation in tests, so they are
// shared by name.
var (
	memoryTargetsMu sync.Mutex
	memoryTargets   = make(map[string]*MemoryTarget)
)

// GetOrCreateMemoryTarget returns the store registered under name,
// creating it on first use.
func GetOrCreateMemoryTarget(name string) *MemoryTarget {
	memoryTargetsMu.Lock()
	defer memoryTargetsMu.Unlock()

	if m, ok := memoryTargets[name]; ok {
		return m
	}
	m := NewMemoryTarget(name)
	memoryTargets[name] = m
	return m
}

// ResetMemoryTargets drops every registered store.
func ResetMemoryTargets() {
	memoryTargetsMu.Lock()
	defer memoryTargetsMu.Unlock()

	memoryTargets = make(map[string]*MemoryTarget)
}
