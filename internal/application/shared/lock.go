package shared

import (
	"context"
	"time"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PropertyLockKey names the lock that serializes invoicing and payment of
// one property's readings
func PropertyLockKey(propertyID uuid.UUID) string {
	return "property:" + propertyID.String()
}

// WithPropertyLock runs fn while holding the property's lock. A property
// already locked by another request fails with shared.ErrConcurrencyConflict.
func WithPropertyLock(ctx context.Context, locker shared.Locker, ttl time.Duration, propertyID uuid.UUID, fn func() error) error {
	if ttl <= 0 {
		ttl = shared.DefaultLockTTL
	}
	return shared.WithLock(ctx, locker, PropertyLockKey(propertyID), ttl, fn)
}
