package testsupport

import (
	"context"
	"sort"
	"sync"

	"assetsync/internal/objectstore"
	"assetsync/internal/services"
)

// StoreCall records one call against MemoryStore.
type StoreCall struct {
	Op          string
	Key         string
	ContentType string
	Size        int
}

// MemoryStore is an in-memory objectstore.Store with a call log and per-key
// failure injection.
type MemoryStore struct {
	mu          sync.Mutex
	objects     map[string][]byte
	types       map[string]string
	calls       []StoreCall
	failPut     map[string]error
	failGet     map[string]error
	failAllPuts error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: map[string][]byte{},
		types:   map[string]string{},
		failPut: map[string]error{},
		failGet: map[string]error{},
	}
}

// FailPut makes Put for key return err.
func (m *MemoryStore) FailPut(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPut[key] = err
}

// FailAllPuts makes every Put return err; nil clears it.
func (m *MemoryStore) FailAllPuts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAllPuts = err
}

// FailGet makes Get for key return err.
func (m *MemoryStore) FailGet(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGet[key] = err
}

// Seed stores an object without logging a call.
func (m *MemoryStore) Seed(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
}

func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, StoreCall{Op: "put", Key: key, ContentType: contentType, Size: len(data)})
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrStorage, "memory", "put", key, err)
	}
	if err := m.failAllPuts; err != nil {
		return services.Wrap(services.ErrStorage, "memory", "put", key, err)
	}
	if err, ok := m.failPut[key]; ok {
		return services.Wrap(services.ErrStorage, "memory", "put", key, err)
	}
	m.objects[key] = append([]byte(nil), data...)
	m.types[key] = contentType
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, StoreCall{Op: "get", Key: key})
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "memory", "get", key, err)
	}
	if err, ok := m.failGet[key]; ok {
		return nil, services.Wrap(services.ErrStorage, "memory", "get", key, err)
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, services.Wrap(services.ErrStorage, "memory", "get", key, objectstore.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, StoreCall{Op: "delete", Key: key})
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

// Object returns a stored object and whether it exists.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// ContentType returns the content type a key was stored with.
func (m *MemoryStore) ContentType(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[key]
}

// Keys lists stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Calls returns a copy of the call log.
func (m *MemoryStore) Calls() []StoreCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StoreCall(nil), m.calls...)
}

// CountOp counts logged calls with the given op.
func (m *MemoryStore) CountOp(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, call := range m.calls {
		if call.Op == op {
			n++
		}
	}
	return n
}

var _ objectstore.Store = (*MemoryStore)(nil)
