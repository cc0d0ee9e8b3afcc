package metering

import (
	"time"

	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordReadingRequest represents a single meter reading. The period
// defaults to the current calendar month when omitted.
type RecordReadingRequest struct {
	CurrentValue decimal.Decimal `json:"current_value" binding:"decimal_gte0,decimal_scale"`
	Month        int             `json:"month" binding:"omitempty,min=1,max=12"`
	Year         int             `json:"year" binding:"omitempty,min=1900,max=9999"`
}

// PeriodQuery selects a billing period
type PeriodQuery struct {
	Month int `form:"month" json:"month" binding:"required,min=1,max=12"`
	Year  int `form:"year" json:"year" binding:"required,min=1900,max=9999"`
}

// AuditQuery selects the period to audit and an optional alert threshold
type AuditQuery struct {
	PeriodQuery
	Threshold string `form:"threshold"`
}

// ReadingResponse represents a reading in API responses
type ReadingResponse struct {
	ID            uuid.UUID       `json:"id"`
	PropertyID    uuid.UUID       `json:"property_id"`
	Sequence      int64           `json:"sequence"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	PreviousValue decimal.Decimal `json:"previous_value"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	Consumption   decimal.Decimal `json:"consumption"`
	ReadAt        time.Time       `json:"read_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToReadingResponse converts a domain Reading to ReadingResponse
func ToReadingResponse(r *metering.Reading) ReadingResponse {
	return ReadingResponse{
		ID:            r.ID,
		PropertyID:    r.PropertyID,
		Sequence:      r.Sequence,
		Month:         r.Period.Month,
		Year:          r.Period.Year,
		PreviousValue: r.PreviousValue,
		CurrentValue:  r.CurrentValue,
		Consumption:   r.Consumption,
		ReadAt:        r.ReadAt,
		CreatedAt:     r.CreatedAt,
	}
}

// ToReadingResponses converts a slice of readings
func ToReadingResponses(readings []metering.Reading) []ReadingResponse {
	out := make([]ReadingResponse, len(readings))
	for i := range readings {
		out[i] = ToReadingResponse(&readings[i])
	}
	return out
}

// AuditRow is one line of the consumption audit
type AuditRow struct {
	ReadingID     uuid.UUID       `json:"reading_id"`
	PropertyID    uuid.UUID       `json:"property_id"`
	AccountNumber string          `json:"account_number"`
	MemberName    string          `json:"member_name"`
	Consumption   decimal.Decimal `json:"consumption"`
	Average       decimal.Decimal `json:"average"`
	Alert         bool            `json:"alert"`
}
