package metering

import (
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeReadingRecorded = "ReadingRecorded"
	AggregateTypeReading     = "Reading"
)

// ReadingRecordedEvent is raised when a meter reading is stored
type ReadingRecordedEvent struct {
	shared.BaseDomainEvent
	PropertyID  uuid.UUID       `json:"property_id"`
	Sequence    int64           `json:"sequence"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Consumption decimal.Decimal `json:"consumption"`
}

// NewReadingRecordedEvent creates a ReadingRecordedEvent
func NewReadingRecordedEvent(r *Reading) *ReadingRecordedEvent {
	return &ReadingRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReadingRecorded, AggregateTypeReading, r.ID),
		PropertyID:      r.PropertyID,
		Sequence:        r.Sequence,
		Month:           r.Period.Month,
		Year:            r.Period.Year,
		Consumption:     r.Consumption,
	}
}
