package invoicing

import (
	"time"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeInvoiceIssued         = "InvoiceIssued"
	EventTypeInvoicePaid           = "InvoicePaid"
	EventTypePaymentBatchConfirmed = "PaymentBatchConfirmed"
	AggregateTypeInvoice           = "Invoice"
	AggregateTypePropertyAccount   = "PropertyAccount"
)

// InvoiceIssuedEvent is raised when a pending period invoice is created
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	ReadingID  uuid.UUID       `json:"reading_id"`
	PropertyID uuid.UUID       `json:"property_id"`
	Number     string          `json:"number"`
	Total      decimal.Decimal `json:"total"`
}

// NewInvoiceIssuedEvent creates an InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, inv.ID),
		ReadingID:       inv.ReadingID,
		PropertyID:      inv.PropertyID,
		Number:          inv.Number,
		Total:           inv.Total,
	}
}

// InvoicePaidEvent is raised when an invoice becomes paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	PropertyID    uuid.UUID       `json:"property_id"`
	Number        string          `json:"number"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	BatchID       string          `json:"batch_id,omitempty"`
}

// NewInvoicePaidEvent creates an InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID),
		PropertyID:      inv.PropertyID,
		Number:          inv.Number,
		Total:           inv.Total,
		PaymentMethod:   inv.PaymentMethod,
		BatchID:         inv.BatchID,
	}
}

// PaymentBatchConfirmedEvent is raised once per confirmed payment batch
type PaymentBatchConfirmedEvent struct {
	shared.BaseDomainEvent
	BatchID      string          `json:"batch_id"`
	InvoiceCount int             `json:"invoice_count"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	PaidAt       time.Time       `json:"paid_at"`
}

// NewPaymentBatchConfirmedEvent creates a PaymentBatchConfirmedEvent keyed by property
func NewPaymentBatchConfirmedEvent(propertyID uuid.UUID, batchID string, count int, total decimal.Decimal, paidAt time.Time) *PaymentBatchConfirmedEvent {
	return &PaymentBatchConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchConfirmed, AggregateTypePropertyAccount, propertyID),
		BatchID:         batchID,
		InvoiceCount:    count,
		TotalPaid:       total,
		PaidAt:          paidAt,
	}
}
