// Package store persists the transaction log under a fixed key of a key-value
// backend.
//
// The backing store is injectable: Memory for tests, File and Bolt for local
// persistence, Redis when the log must live outside the machine.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Backend is a key-value store.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
