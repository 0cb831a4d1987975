// Package blob is a small key/value store for serialized documents
// such as anonymous carts.
package blob

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by Set when the value does not fit.
var ErrQuotaExceeded = errors.New("blob store quota exceeded")

// Store persists opaque values under string keys.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
