// Package metadata is the client's local key/value store. The session store
// keeps the bearer token and the user profile here.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value stored under key; found is false when absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set inserts or replaces the value of key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
