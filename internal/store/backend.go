package store

import "context"

// Backend is durable storage of raw JSON documents addressed by slot key.
type Backend interface {
	// Get returns the document stored under key, or an error wrapping
	// ErrSlotNotFound when nothing has been stored yet.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the document stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the backend.
	Close() error
}

// UpdateFn transforms the current document of a slot into its replacement.
// current is nil when the slot is empty.
type UpdateFn func(current []byte) ([]byte, error)

// Updater is implemented by backends that can perform a read-modify-write
// of one slot atomically on their own, for example inside a SQL transaction.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFn) error
}
