// Package store provides the persisted, slot-based key-value store behind
// the trainer. A Backend holds raw JSON documents by key; Slots layers typed,
// named accessors with default values and atomic read-modify-write updates on
// top of any backend. Memory and JSON-file backends live here; SQL backends
// live under internal/platform.
package store
