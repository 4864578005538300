// Package kv defines the keyed-blob backend contract the store persists
// through. Each key holds one entity collection serialized as a JSON array;
// mutations always write the full payload back, never an incremental patch.
package kv

import "context"

type Backend interface {
	// Get returns the payload stored under key, and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set persists the payload under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// SetMulti persists several keys as a single logical unit so that a
	// reader never observes a partially applied cascade.
	SetMulti(ctx context.Context, values map[string][]byte) error

	// Clear removes every key.
	Clear(ctx context.Context) error
}
