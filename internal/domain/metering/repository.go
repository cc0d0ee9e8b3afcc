package metering

import (
	"context"

	"github.com/google/uuid"
)

// ReadingRepository defines persistence operations for meter readings
type ReadingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Reading, error)

	// FindLatestByProperty returns the most recently recorded reading (highest
	// sequence) of a property, or nil when it has none
	FindLatestByProperty(ctx context.Context, propertyID uuid.UUID) (*Reading, error)

	// FindByProperty returns the property's readings, most recent period first
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]Reading, error)

	// FindByProperties returns the readings of several properties in one query
	FindByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]Reading, error)

	// FindByPeriod returns every reading of a billing period
	FindByPeriod(ctx context.Context, period Period) ([]Reading, error)

	// FindUninvoiced returns the period's readings that have no active invoice
	FindUninvoiced(ctx context.Context, period Period) ([]Reading, error)

	// FindUnpaidByProperty returns the property's readings with no active
	// invoice or whose active invoice is not paid, most recent period first
	FindUnpaidByProperty(ctx context.Context, propertyID uuid.UUID) ([]Reading, error)

	Save(ctx context.Context, reading *Reading) error
}
