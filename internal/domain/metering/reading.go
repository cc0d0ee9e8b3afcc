package metering

import (
	"fmt"
	"time"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CodeNonMonotonicReading is returned when a meter value goes backwards
const CodeNonMonotonicReading = "NON_MONOTONIC_READING"

// ErrNonMonotonicReading matches any rejection of a lower-than-previous meter value
var ErrNonMonotonicReading = shared.NewDomainError(CodeNonMonotonicReading, "Reading is lower than the previous reading")

// NonMonotonicError builds the rejection carrying both meter values
func NonMonotonicError(current, previous decimal.Decimal) *shared.DomainError {
	return shared.NewDomainError(CodeNonMonotonicReading,
		fmt.Sprintf("Current reading (%s) cannot be lower than the previous reading (%s)", current.String(), previous.String()))
}

// Period identifies a billing month
type Period struct {
	Month int
	Year  int
}

// NewPeriod validates and creates a billing period
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, shared.NewValidationError(fmt.Sprintf("Month must be between 1 and 12 (got %d)", month))
	}
	if year < 1900 || year > 9999 {
		return Period{}, shared.NewValidationError(fmt.Sprintf("Year is out of range (got %d)", year))
	}
	return Period{Month: month, Year: year}, nil
}

// PeriodOf returns the calendar period containing t
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// String renders the period as M/YYYY
func (p Period) String() string {
	return fmt.Sprintf("%d/%d", p.Month, p.Year)
}

// Reading is an immutable metered value for a property in a period.
// Sequence orders readings of one property by recording time, starting at 1.
type Reading struct {
	shared.BaseAggregateRoot
	PropertyID    uuid.UUID
	Sequence      int64
	Period        Period
	PreviousValue decimal.Decimal
	CurrentValue  decimal.Decimal
	Consumption   decimal.Decimal
	ReadAt        time.Time
}

// NewReading records currentValue for a property following last, the most
// recently recorded reading of that property (nil for the first one).
func NewReading(propertyID uuid.UUID, period Period, last *Reading, currentValue decimal.Decimal, readAt time.Time) (*Reading, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewValidationError("Property ID cannot be empty")
	}
	if _, err := NewPeriod(period.Month, period.Year); err != nil {
		return nil, err
	}
	if currentValue.IsNegative() {
		return nil, shared.NewValidationError(fmt.Sprintf("Meter value cannot be negative (got %s)", currentValue.String()))
	}
	if !shared.FitsScale(currentValue) {
		return nil, shared.NewValidationError(fmt.Sprintf("Meter value cannot have more than %d decimal places (got %s)",
			shared.DecimalScale, currentValue.String()))
	}
	if last != nil && last.PropertyID != propertyID {
		return nil, shared.NewValidationError("Previous reading belongs to another property")
	}

	previous := decimal.Zero
	sequence := int64(1)
	if last != nil {
		previous = last.CurrentValue
		sequence = last.Sequence + 1
	}
	if currentValue.LessThan(previous) {
		return nil, NonMonotonicError(currentValue, previous)
	}
	if readAt.IsZero() {
		readAt = time.Now()
	}

	r := &Reading{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PropertyID:        propertyID,
		Sequence:          sequence,
		Period:            period,
		PreviousValue:     previous,
		CurrentValue:      currentValue,
		Consumption:       currentValue.Sub(previous),
		ReadAt:            readAt,
	}
	r.Raise(NewReadingRecordedEvent(r))
	return r, nil
}
