package kv

import (
	"context"
	"sync"

	"totem-kiosk/internal/domain"
)

// MemoryRepo is a map-backed Repository.
type MemoryRepo struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemory() *MemoryRepo {
	return &MemoryRepo{values: make(map[string][]byte)}
}

func (r *MemoryRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (r *MemoryRepo) Put(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	r.values[key] = append([]byte(nil), value...)
	r.mu.Unlock()
	return nil
}
