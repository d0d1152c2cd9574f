package store

import (
	"bytes"
	"context"
	"sync"
)

// MemoryBackend keeps slot documents in process memory. Nothing survives a
// restart; it is used for tests and throwaway sessions.
type MemoryBackend struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	closed bool
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// Get implements Backend.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}
	doc, ok := b.docs[key]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return bytes.Clone(doc), nil
}

// Put implements Backend.
func (b *MemoryBackend) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.docs[key] = bytes.Clone(value)
	return nil
}

// Close implements Backend.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
