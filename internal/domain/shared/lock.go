package shared

import (
	"context"
	"time"
)

// Locker grants short-lived exclusive ownership of a named resource.
// Implementations never block waiting for a holder to release.
type Locker interface {
	// TryLock acquires key for ttl. It returns an owner token and true when the
	// lock was acquired, or false when another owner currently holds it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// Unlock releases key if it is still held by token
	Unlock(ctx context.Context, key, token string) error

	// Close closes the locker and releases resources
	Close() error
}

// DefaultLockTTL bounds how long a crashed holder keeps a resource locked
const DefaultLockTTL = 30 * time.Second

// WithLock runs fn while holding key. When the key is already held it fails
// with ErrConcurrencyConflict without running fn.
func WithLock(ctx context.Context, locker Locker, key string, ttl time.Duration, fn func() error) error {
	token, ok, err := locker.TryLock(ctx, key, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConcurrencyConflict
	}
	defer func() {
		_ = locker.Unlock(context.WithoutCancel(ctx), key, token)
	}()
	return fn()
}
