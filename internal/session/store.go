// Package session persists the values a signed-up user keeps between runs.
package session

import (
	"context"
	"errors"
)

var (
	ErrEmptyKey       = errors.New("session key is empty")
	ErrStoreClosed    = errors.New("session store closed")
	ErrUnknownBackend = errors.New("unknown session store")
)

// Store is a flat string key/value store.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Close() error
}
