package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONFileBackend stores every slot in a single JSON object on disk. Writes
// go to a temporary file that is renamed over the original.
type JSONFileBackend struct {
	mu     sync.RWMutex
	path   string
	docs   map[string]json.RawMessage
	closed bool
}

var _ Backend = (*JSONFileBackend)(nil)

// NewJSONFileBackend opens or creates the JSON document at path.
func NewJSONFileBackend(path string) (*JSONFileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("json store path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	b := &JSONFileBackend{
		path: path,
		docs: make(map[string]json.RawMessage),
	}
	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *JSONFileBackend) load() error {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &b.docs); err != nil {
		return NewStoreError("file", "load", "store file is not a JSON object", errors.Join(ErrInvalidEntity, err))
	}
	return nil
}

func (b *JSONFileBackend) persist() error {
	data, err := json.MarshalIndent(b.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// Get implements Backend.
func (b *JSONFileBackend) Get(_ context.Context, key string) ([]byte, error) {
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
func (b *JSONFileBackend) Put(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return NewStoreError(key, "save", "document is not valid JSON", ErrInvalidEntity)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	prev, had := b.docs[key]
	b.docs[key] = json.RawMessage(bytes.Clone(value))
	if err := b.persist(); err != nil {
		if had {
			b.docs[key] = prev
		} else {
			delete(b.docs, key)
		}
		return err
	}
	return nil
}

// Close implements Backend.
func (b *JSONFileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
