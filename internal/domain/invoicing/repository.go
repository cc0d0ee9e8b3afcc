package invoicing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindActiveByReading returns the non-retired invoice of a reading, or nil
	FindActiveByReading(ctx context.Context, readingID uuid.UUID) (*Invoice, error)

	// FindActiveByReadings returns the non-retired invoices of several readings keyed by reading id
	FindActiveByReadings(ctx context.Context, readingIDs []uuid.UUID) (map[uuid.UUID]*Invoice, error)

	ExistsActiveForReading(ctx context.Context, readingID uuid.UUID) (bool, error)

	// FindByBatch returns the invoices of a payment batch ordered by number
	FindByBatch(ctx context.Context, batchID string) ([]Invoice, error)

	// Create inserts a new invoice; a second active invoice for the same
	// reading fails with shared.ErrConcurrencyConflict
	Create(ctx context.Context, invoice *Invoice) error

	// Update persists changes using optimistic locking on Version
	Update(ctx context.Context, invoice *Invoice) error
}
