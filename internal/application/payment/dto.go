package payment

import (
	"time"

	appinvoicing "github.com/aqueduct/backend/internal/application/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest represents a payment taken at the counter
type PaymentRequest struct {
	PaymentMethod string     `json:"payment_method" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD OTHER"`
	PaidAt        *time.Time `json:"paid_at"`
}

// OutstandingLine is one unpaid reading priced under the tariff in force
type OutstandingLine struct {
	ReadingID     uuid.UUID       `json:"reading_id"`
	Sequence      int64           `json:"sequence"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	PreviousValue decimal.Decimal `json:"previous_value"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	Consumption   decimal.Decimal `json:"consumption"`
	Amount        decimal.Decimal `json:"amount"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
}

// OutstandingResponse lists a property's unpaid readings, most recent
// period first. TotalDebt is the exact sum of the line amounts.
type OutstandingResponse struct {
	PropertyID    uuid.UUID         `json:"property_id"`
	AccountNumber string            `json:"account_number"`
	Lines         []OutstandingLine `json:"lines"`
	TotalDebt     decimal.Decimal   `json:"total_debt"`
}

// PaymentResult describes a confirmed payment batch
type PaymentResult struct {
	BatchID    string                         `json:"batch_id"`
	PropertyID uuid.UUID                      `json:"property_id"`
	InvoiceIDs []uuid.UUID                    `json:"invoice_ids"`
	Invoices   []appinvoicing.InvoiceResponse `json:"invoices"`
	TotalPaid  decimal.Decimal                `json:"total_paid"`
	PaidAt     time.Time                      `json:"paid_at"`
}

// ReceiptResponse is the printable projection of a payment batch
type ReceiptResponse struct {
	BatchID       string                         `json:"batch_id"`
	PropertyID    uuid.UUID                      `json:"property_id"`
	AccountNumber string                         `json:"account_number"`
	MemberName    string                         `json:"member_name"`
	Invoices      []appinvoicing.InvoiceResponse `json:"invoices"`
	TotalPaid     decimal.Decimal                `json:"total_paid"`
	Currency      string                         `json:"currency,omitempty"`
	PaymentDate   time.Time                      `json:"payment_date"`
}

// SearchResult is the counter view of a property found by a search term
type SearchResult struct {
	PropertyID    uuid.UUID           `json:"property_id"`
	AccountNumber string              `json:"account_number"`
	MeterSerial   string              `json:"meter_serial"`
	Status        string              `json:"status"`
	MemberID      uuid.UUID           `json:"member_id"`
	MemberName    string              `json:"member_name"`
	NationalID    string              `json:"national_id"`
	Outstanding   OutstandingResponse `json:"outstanding"`
}
