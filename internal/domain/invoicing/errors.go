package invoicing

import "github.com/aqueduct/backend/internal/domain/shared"

// Error codes for invoicing and payment
const (
	CodeAlreadyPaid     = "ALREADY_PAID"
	CodeAlreadyInvoiced = "ALREADY_INVOICED"
	CodeNothingToPay    = "NOTHING_TO_PAY"
)

var (
	// ErrAlreadyPaid is returned when paying an invoice or reading that is already settled
	ErrAlreadyPaid = shared.NewDomainError(CodeAlreadyPaid, "Invoice is already paid")

	// ErrAlreadyInvoiced is returned when a reading already has an active invoice
	ErrAlreadyInvoiced = shared.NewDomainError(CodeAlreadyInvoiced, "Reading already has an active invoice")

	// ErrNothingToPay is returned when a property has no outstanding readings
	ErrNothingToPay = shared.NewDomainError(CodeNothingToPay, "There are no outstanding periods to pay")

	// ErrInvoiceNotFound is returned when an invoice does not exist
	ErrInvoiceNotFound = shared.NewNotFoundError("Invoice")

	// ErrBatchNotFound is returned when no invoices carry a batch id
	ErrBatchNotFound = shared.NewNotFoundError("Payment batch")
)
