// Package kv provides the durable key-value stores session state is persisted in.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound indicates that no value is stored under the requested key.
var ErrNotFound = errors.New("kv: key not found")

// Store is the persistence contract used for session state.
type Store interface {
	// Get returns the value for key or ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key without expiry.
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
