// Package keyvalue defines the generic data store contract the dashboard
// reads and writes, plus local backends that implement it.
//
// The contract mirrors the on-chain store: an availability probe and
// get/set over opaque byte values. Payloads are UTF-8 JSON by convention,
// but this layer imposes no schema; validity is entirely the caller's
// responsibility.
package keyvalue

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// Store is the key-value contract surface.
type Store interface {
	// IsAvailable reports whether the store can currently serve calls.
	IsAvailable(ctx context.Context) bool

	// GetData returns the value stored under key, or ErrNotFound.
	GetData(ctx context.Context, key string) ([]byte, error)

	// SetData stores value under key, overwriting any previous value.
	SetData(ctx context.Context, key string, value []byte) error
}
