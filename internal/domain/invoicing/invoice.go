package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// PaymentMethod is a label describing how an invoice was settled; payments
// are never processed externally
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// ParsePaymentMethod normalizes a label, defaulting an empty one to cash
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return PaymentMethodCash, nil
	}
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("Invalid payment method: %s", s))
	}
	return m, nil
}

// Invoice is a priced billing record for exactly one reading. A reading has at
// most one non-retired invoice at any time.
type Invoice struct {
	shared.BaseAggregateRoot
	ReadingID     uuid.UUID
	PropertyID    uuid.UUID
	Number        string
	Total         decimal.Decimal
	Status        InvoiceStatus
	PaidAt        *time.Time
	PaymentMethod PaymentMethod
	BatchID       string
	RetiredAt     *time.Time
}

func newInvoice(reading *metering.Reading, number string, total decimal.Decimal) (*Invoice, error) {
	if reading == nil || reading.ID == uuid.Nil {
		return nil, shared.NewValidationError("Invoice requires a persisted reading")
	}
	if total.IsNegative() {
		return nil, shared.NewValidationError("Invoice total cannot be negative")
	}
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReadingID:         reading.ID,
		PropertyID:        reading.PropertyID,
		Number:            number,
		Total:             total,
		Status:            InvoiceStatusPending,
	}, nil
}

// NewPeriodInvoice creates a pending invoice numbered FAC-{year}-{account}-{reading}
func NewPeriodInvoice(reading *metering.Reading, accountNumber string, total decimal.Decimal) (*Invoice, error) {
	if reading == nil {
		return nil, shared.NewValidationError("Invoice requires a persisted reading")
	}
	inv, err := newInvoice(reading, PeriodInvoiceNumber(reading.Period.Year, accountNumber, reading.Sequence), total)
	if err != nil {
		return nil, err
	}
	inv.Raise(NewInvoiceIssuedEvent(inv))
	return inv, nil
}

// NewBatchInvoice creates an already-paid invoice belonging to a payment batch
func NewBatchInvoice(reading *metering.Reading, batchID string, total decimal.Decimal, method PaymentMethod, when time.Time) (*Invoice, error) {
	if reading == nil {
		return nil, shared.NewValidationError("Invoice requires a persisted reading")
	}
	if batchID == "" {
		return nil, shared.NewValidationError("Batch ID cannot be empty")
	}
	inv, err := newInvoice(reading, BatchInvoiceNumber(batchID, reading.Sequence), total)
	if err != nil {
		return nil, err
	}
	inv.BatchID = batchID
	if err := inv.settle(method, when); err != nil {
		return nil, err
	}
	return inv, nil
}

// NewDirectPaymentInvoice creates an already-paid invoice numbered REC-{timestamp}
func NewDirectPaymentInvoice(reading *metering.Reading, total decimal.Decimal, method PaymentMethod, when time.Time) (*Invoice, error) {
	inv, err := newInvoice(reading, DirectPaymentNumber(when), total)
	if err != nil {
		return nil, err
	}
	if err := inv.settle(method, when); err != nil {
		return nil, err
	}
	return inv, nil
}

// IsPaid reports whether the invoice has been settled
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// IsRetired reports whether the invoice was superseded
func (i *Invoice) IsRetired() bool {
	return i.RetiredAt != nil
}

// MarkPaid transitions Pending to Paid. It is the only legal status change.
func (i *Invoice) MarkPaid(method PaymentMethod, when time.Time) error {
	if i.IsPaid() {
		return shared.NewDomainError(CodeAlreadyPaid, fmt.Sprintf("Invoice %s is already paid", i.Number))
	}
	if i.IsRetired() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Invoice %s was retired and cannot be paid", i.Number))
	}
	if err := i.settle(method, when); err != nil {
		return err
	}
	i.Touch()
	return nil
}

func (i *Invoice) settle(method PaymentMethod, when time.Time) error {
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid payment method: %s", method))
	}
	if when.IsZero() {
		when = time.Now()
	}
	i.Status = InvoiceStatusPaid
	i.PaidAt = &when
	i.PaymentMethod = method
	i.Raise(NewInvoicePaidEvent(i))
	return nil
}

// Retire withdraws a pending invoice so that its reading can be billed again
// through a payment batch. Paid invoices are never retired.
func (i *Invoice) Retire(when time.Time) error {
	if i.IsPaid() {
		return shared.NewDomainError(CodeAlreadyPaid, fmt.Sprintf("Invoice %s is paid and cannot be retired", i.Number))
	}
	if i.IsRetired() {
		return nil
	}
	if when.IsZero() {
		when = time.Now()
	}
	i.RetiredAt = &when
	i.Touch()
	return nil
}
