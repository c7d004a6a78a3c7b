package testsupport

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"kamishibai/internal/storage"
)

// MemoryStore is an in-memory ObjectStore for tests. Optional hooks let
// tests inject failures for specific keys.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailGet, FailPut, and FailDownload, when set, are consulted before the
	// operation; a non-nil return aborts it.
	FailGet      func(key string) error
	FailPut      func(key string) error
	FailDownload func(key string) error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Seed stores an object without going through Put hooks.
func (m *MemoryStore) Seed(key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
}

// Object returns the stored bytes and whether the key exists.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[key]
	return append([]byte(nil), body...), ok
}

func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	// Reverse order on purpose: callers must not depend on listing order.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.FailGet != nil {
		if err := m.FailGet(key); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotExist, key)
	}
	return append([]byte(nil), body...), nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if m.FailPut != nil {
		if err := m.FailPut(key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	return nil
}

func (m *MemoryStore) Download(ctx context.Context, key, localPath string) error {
	if m.FailDownload != nil {
		if err := m.FailDownload(key); err != nil {
			return err
		}
	}
	body, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	return os.WriteFile(localPath, body, 0o644)
}
