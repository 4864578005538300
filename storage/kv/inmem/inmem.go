// Package inmemkv provides an in-memory kv.Backend, mainly for tests.
package inmemkv

import (
	"context"
	"sync"

	"github.com/nexuslms/nexus/storage/kv"
)

type Backend struct {
	table map[string][]byte
	mutex sync.RWMutex
}

var _ kv.Backend = (*Backend)(nil)

func Open() *Backend {
	return &Backend{table: make(map[string][]byte)}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	value, ok := b.table[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.set(key, value)
	return nil
}

func (b *Backend) SetMulti(_ context.Context, values map[string][]byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for key, value := range values {
		b.set(key, value)
	}
	return nil
}

func (b *Backend) Clear(_ context.Context) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.table = make(map[string][]byte)
	return nil
}

func (b *Backend) set(key string, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	b.table[key] = cp
}
