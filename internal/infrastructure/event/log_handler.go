package event

import (
	"context"

	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LogHandler writes one structured line per billing event, giving operators
// an audit trail of readings, invoices and collections.
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a LogHandler
func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger.Named("billing-events")}
}

// EventTypes implements shared.EventHandler
func (h *LogHandler) EventTypes() []string {
	return []string{
		metering.EventTypeReadingRecorded,
		invoicing.EventTypeInvoiceIssued,
		invoicing.EventTypeInvoicePaid,
		invoicing.EventTypePaymentBatchConfirmed,
	}
}

// Handle implements shared.EventHandler
func (h *LogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	switch e := event.(type) {
	case *metering.ReadingRecordedEvent:
		fields = append(fields,
			zap.String("property_id", e.PropertyID.String()),
			zap.Int64("sequence", e.Sequence),
			zap.String("consumption", e.Consumption.String()),
		)
	case *invoicing.InvoiceIssuedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.Number),
			zap.String("property_id", e.PropertyID.String()),
			zap.String("total", e.Total.String()),
		)
	case *invoicing.InvoicePaidEvent:
		fields = append(fields,
			zap.String("invoice_number", e.Number),
			zap.String("payment_method", string(e.PaymentMethod)),
			zap.String("batch_id", e.BatchID),
			zap.String("total", e.Total.String()),
		)
	case *invoicing.PaymentBatchConfirmedEvent:
		fields = append(fields,
			zap.String("batch_id", e.BatchID),
			zap.Int("invoice_count", e.InvoiceCount),
			zap.String("total_paid", e.TotalPaid.String()),
		)
	}
	h.logger.Info("Billing event", fields...)
	return nil
}
