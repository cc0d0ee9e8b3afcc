package telemetry

import (
	"context"
	"errors"

	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BillingMetrics is built without a meter
var ErrMeterNil = errors.New("NewBillingMetrics: meter cannot be nil")

// BillingMetrics turns billing domain events into OTEL counters. It is
// subscribed to the event bus as a regular handler.
type BillingMetrics struct {
	logger *zap.Logger

	readingsRecorded metric.Int64Counter
	consumption      metric.Float64Counter
	invoicesIssued   metric.Int64Counter
	amountInvoiced   metric.Float64Counter
	invoicesPaid     metric.Int64Counter
	batchesConfirmed metric.Int64Counter
	amountCollected  metric.Float64Counter
}

// NewBillingMetrics registers the billing instruments on meter
func NewBillingMetrics(meter metric.Meter, logger *zap.Logger) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BillingMetrics{logger: logger}
	var err error
	if bm.readingsRecorded, err = meter.Int64Counter("aqueduct_readings_recorded_total",
		metric.WithDescription("Meter readings stored"), metric.WithUnit("{readings}")); err != nil {
		return nil, err
	}
	if bm.consumption, err = meter.Float64Counter("aqueduct_consumption_volume_total",
		metric.WithDescription("Billed water volume"), metric.WithUnit("m3")); err != nil {
		return nil, err
	}
	if bm.invoicesIssued, err = meter.Int64Counter("aqueduct_invoices_issued_total",
		metric.WithDescription("Pending period invoices issued"), metric.WithUnit("{invoices}")); err != nil {
		return nil, err
	}
	if bm.amountInvoiced, err = meter.Float64Counter("aqueduct_amount_invoiced_total",
		metric.WithDescription("Amount billed on issued invoices")); err != nil {
		return nil, err
	}
	if bm.invoicesPaid, err = meter.Int64Counter("aqueduct_invoices_paid_total",
		metric.WithDescription("Invoices settled"), metric.WithUnit("{invoices}")); err != nil {
		return nil, err
	}
	if bm.batchesConfirmed, err = meter.Int64Counter("aqueduct_payment_batches_total",
		metric.WithDescription("Confirmed payment batches"), metric.WithUnit("{batches}")); err != nil {
		return nil, err
	}
	if bm.amountCollected, err = meter.Float64Counter("aqueduct_amount_collected_total",
		metric.WithDescription("Amount collected on paid invoices")); err != nil {
		return nil, err
	}
	return bm, nil
}

// EventTypes implements shared.EventHandler
func (bm *BillingMetrics) EventTypes() []string {
	return []string{
		metering.EventTypeReadingRecorded,
		invoicing.EventTypeInvoiceIssued,
		invoicing.EventTypeInvoicePaid,
		invoicing.EventTypePaymentBatchConfirmed,
	}
}

// Handle implements shared.EventHandler
func (bm *BillingMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *metering.ReadingRecordedEvent:
		bm.readingsRecorded.Add(ctx, 1)
		bm.consumption.Add(ctx, e.Consumption.InexactFloat64())
	case *invoicing.InvoiceIssuedEvent:
		bm.invoicesIssued.Add(ctx, 1)
		bm.amountInvoiced.Add(ctx, e.Total.InexactFloat64())
	case *invoicing.InvoicePaidEvent:
		attrs := metric.WithAttributes(attribute.String("payment_method", string(e.PaymentMethod)))
		bm.invoicesPaid.Add(ctx, 1, attrs)
		bm.amountCollected.Add(ctx, e.Total.InexactFloat64(), attrs)
	case *invoicing.PaymentBatchConfirmedEvent:
		bm.batchesConfirmed.Add(ctx, 1)
	default:
		bm.logger.Debug("Unhandled billing event", zap.String("event_type", event.EventType()))
	}
	return nil
}
