// Package storage provides the key-value slots that hold the persisted status snapshot.
// Each slot stores opaque byte values under string keys; the whole snapshot is
// replaced on every write.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Slot.Get when nothing is stored under the key
var ErrNotFound = errors.New("storage: key not found")

// Slot is a durable key-value slot
type Slot interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases any connection held by the slot.
	Close() error
}

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// validateKey rejects keys that cannot be used as a file name
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	if key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid storage key: %q", key)
	}
	return nil
}
