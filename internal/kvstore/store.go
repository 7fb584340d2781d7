// Package kvstore holds small keyed blobs, the durable side of the timer and
// draft state. Every key is read and written on its own.
package kvstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Del removes the keys, absent keys are ignored.
	Del(ctx context.Context, keys ...string) error
}
