// Package kv defines the string key-value persistence port the ledger and
// budget are stored through, with in-memory and file backed adapters.
package kv

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("kv: empty key")

// Store persists opaque string values under string keys.
type Store interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put overwrites the value stored under key.
	Put(ctx context.Context, key, value string) error
}
