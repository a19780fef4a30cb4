// Package cache holds short-lived copies of upstream provider responses.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented TTL cache. Implementations must be safe for concurrent use.
type Store interface {
	// Get reports whether a live entry exists for key.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// ErrorHandler receives backend failures that Remember swallowed.
type ErrorHandler func(op, key string, err error)

// Remember returns the cached value for key or calls load and caches its result for ttl.
// Failed loads are not cached. Backend errors are reported to onErr and otherwise ignored,
// so a broken cache degrades to calling load every time.
func Remember(ctx context.Context, store Store, key string, ttl time.Duration, onErr ErrorHandler, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if store == nil || ttl <= 0 {
		return load(ctx)
	}

	value, ok, err := store.Get(ctx, key)
	switch {
	case err != nil:
		if onErr != nil {
			onErr("get", key, err)
		}
	case ok:
		return value, nil
	}

	value, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if setErr := store.Set(ctx, key, value, ttl); setErr != nil && onErr != nil {
		onErr("set", key, setErr)
	}
	return value, nil
}
