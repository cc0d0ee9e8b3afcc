package invoicing

import (
	"time"

	apptariff "github.com/aqueduct/backend/internal/application/tariff"
	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateInvoicesRequest selects the billing period to invoice
type GenerateInvoicesRequest struct {
	Month int `json:"month" form:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" form:"year" binding:"required,min=1900,max=9999"`
}

// MarkPaidRequest represents a request to settle a pending invoice
type MarkPaidRequest struct {
	PaymentMethod string     `json:"payment_method" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD OTHER"`
	PaidAt        *time.Time `json:"paid_at"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	ReadingID     uuid.UUID       `json:"reading_id"`
	PropertyID    uuid.UUID       `json:"property_id"`
	Number        string          `json:"number"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	BatchID       string          `json:"batch_id,omitempty"`
	RetiredAt     *time.Time      `json:"retired_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		ReadingID:     inv.ReadingID,
		PropertyID:    inv.PropertyID,
		Number:        inv.Number,
		Total:         inv.Total,
		Status:        inv.Status.String(),
		PaidAt:        inv.PaidAt,
		PaymentMethod: string(inv.PaymentMethod),
		BatchID:       inv.BatchID,
		RetiredAt:     inv.RetiredAt,
		CreatedAt:     inv.CreatedAt,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

// GenerationFailure describes a reading that could not be invoiced
type GenerationFailure struct {
	PropertyID uuid.UUID `json:"property_id"`
	ReadingID  uuid.UUID `json:"reading_id"`
	Code       string    `json:"code,omitempty"`
	Reason     string    `json:"reason"`
}

// GenerationResult summarizes a period invoicing run. SkippedCount counts
// the readings found without an invoice that this run did not invoice,
// because they failed or were invoiced concurrently. Readings that already
// had an invoice are not counted.
type GenerationResult struct {
	Month        int                 `json:"month"`
	Year         int                 `json:"year"`
	IssuedCount  int                 `json:"issued_count"`
	SkippedCount int                 `json:"skipped_count"`
	Failures     []GenerationFailure `json:"failures"`
}

// PreviewLine is the priced projection of one reading
type PreviewLine struct {
	ReadingID     uuid.UUID                   `json:"reading_id"`
	PropertyID    uuid.UUID                   `json:"property_id"`
	AccountNumber string                      `json:"account_number"`
	Month         int                         `json:"month"`
	Year          int                         `json:"year"`
	PreviousValue decimal.Decimal             `json:"previous_value"`
	CurrentValue  decimal.Decimal             `json:"current_value"`
	Breakdown     apptariff.BreakdownResponse `json:"breakdown"`
}

// PeriodPreview prices every reading of a period without persisting anything
type PeriodPreview struct {
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Lines         []PreviewLine   `json:"lines"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
}
