package invoicing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the read-only projection of a confirmed payment batch
type Receipt struct {
	BatchID     string
	Invoices    []Invoice
	TotalPaid   decimal.Decimal
	PaymentDate time.Time
}

// BuildReceipt projects the invoices of a batch. It fails with
// ErrBatchNotFound when the batch has no invoices.
func BuildReceipt(batchID string, invoices []Invoice) (*Receipt, error) {
	if len(invoices) == 0 {
		return nil, ErrBatchNotFound
	}
	r := &Receipt{
		BatchID:   batchID,
		Invoices:  invoices,
		TotalPaid: decimal.Zero,
	}
	for _, inv := range invoices {
		r.TotalPaid = r.TotalPaid.Add(inv.Total)
		if inv.PaidAt != nil && inv.PaidAt.After(r.PaymentDate) {
			r.PaymentDate = *inv.PaidAt
		}
	}
	return r, nil
}
