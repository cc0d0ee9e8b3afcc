package payment

import (
	"context"
	"time"

	appinvoicing "github.com/aqueduct/backend/internal/application/invoicing"
	appshared "github.com/aqueduct/backend/internal/application/shared"
	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoicePayer settles a single pending invoice
type InvoicePayer interface {
	MarkPaid(ctx context.Context, invoiceID uuid.UUID, req appinvoicing.MarkPaidRequest) (*appinvoicing.InvoiceResponse, error)
}

// PaymentService reconciles a property's unpaid readings into payment
// batches at the counter
type PaymentService struct {
	txScope        appshared.TransactionScope
	readingRepo    metering.ReadingRepository
	invoiceRepo    invoicing.InvoiceRepository
	propertyRepo   membership.PropertyRepository
	memberRepo     membership.MemberRepository
	tariffRepo     tariff.TariffConfigRepository
	invoicePayer   InvoicePayer
	locker         shared.Locker
	lockTTL        time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
	currency       string
}

// PaymentServiceConfig holds the dependencies of PaymentService
type PaymentServiceConfig struct {
	TxScope        appshared.TransactionScope
	ReadingRepo    metering.ReadingRepository
	InvoiceRepo    invoicing.InvoiceRepository
	PropertyRepo   membership.PropertyRepository
	MemberRepo     membership.MemberRepository
	TariffRepo     tariff.TariffConfigRepository
	InvoicePayer   InvoicePayer
	Locker         shared.Locker
	LockTTL        time.Duration
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
	Now            func() time.Time
	// Currency is the label printed on receipts
	Currency string
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	publisher := cfg.EventPublisher
	if publisher == nil {
		publisher = shared.NopEventPublisher{}
	}
	return &PaymentService{
		txScope:        cfg.TxScope,
		readingRepo:    cfg.ReadingRepo,
		invoiceRepo:    cfg.InvoiceRepo,
		propertyRepo:   cfg.PropertyRepo,
		memberRepo:     cfg.MemberRepo,
		tariffRepo:     cfg.TariffRepo,
		invoicePayer:   cfg.InvoicePayer,
		locker:         cfg.Locker,
		lockTTL:        cfg.LockTTL,
		eventPublisher: publisher,
		logger:         logger,
		now:            now,
		currency:       cfg.Currency,
	}
}

// outstandingItem pairs an unpaid reading with its projected amount and its
// pending invoice, if any
type outstandingItem struct {
	reading metering.Reading
	amount  decimal.Decimal
	invoice *invoicing.Invoice
}

// collectOutstanding prices every reading of the property without a paid
// invoice under the tariff in force at the given instant
func collectOutstanding(
	ctx context.Context,
	readings metering.ReadingRepository,
	invoices invoicing.InvoiceRepository,
	tariffs tariff.TariffConfigRepository,
	propertyID uuid.UUID,
	at time.Time,
) ([]outstandingItem, decimal.Decimal, error) {
	unpaid, err := readings.FindUnpaidByProperty(ctx, propertyID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if len(unpaid) == 0 {
		return nil, decimal.Zero, nil
	}

	cfg, err := tariff.EffectiveAt(ctx, tariffs, at)
	if err != nil {
		return nil, decimal.Zero, err
	}
	ids := make([]uuid.UUID, len(unpaid))
	for i := range unpaid {
		ids[i] = unpaid[i].ID
	}
	pending, err := invoices.FindActiveByReadings(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]outstandingItem, 0, len(unpaid))
	total := decimal.Zero
	for _, r := range unpaid {
		amount, err := tariff.Price(r.Consumption, cfg)
		if err != nil {
			return nil, decimal.Zero, err
		}
		items = append(items, outstandingItem{reading: r, amount: amount, invoice: pending[r.ID]})
		total = total.Add(amount)
	}
	return items, total, nil
}

// Outstanding lists the property's unpaid readings, most recent period
// first, each priced under the tariff in force now
func (s *PaymentService) Outstanding(ctx context.Context, propertyID uuid.UUID) (*OutstandingResponse, error) {
	property, err := s.findProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	items, total, err := collectOutstanding(ctx, s.readingRepo, s.invoiceRepo, s.tariffRepo, propertyID, s.now())
	if err != nil {
		return nil, err
	}
	return toOutstandingResponse(property, items, total), nil
}

// ConfirmPayment settles every outstanding reading of a property in one
// batch. The outstanding set is recomputed at confirmation time; each
// reading gets one paid invoice and all of them share a fresh batch id.
// Pending invoices of those readings are retired first. Nothing is written
// unless the whole batch is. An empty outstanding set fails with
// invoicing.ErrNothingToPay.
func (s *PaymentService) ConfirmPayment(ctx context.Context, propertyID uuid.UUID, req PaymentRequest) (*PaymentResult, error) {
	method, when, err := s.paymentTerms(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.findProperty(ctx, propertyID); err != nil {
		return nil, err
	}

	var (
		batch    []*invoicing.Invoice
		batchID  string
		totalPay decimal.Decimal
	)
	err = appshared.WithPropertyLock(ctx, s.locker, s.lockTTL, propertyID, func() error {
		return s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			items, total, err := collectOutstanding(ctx, repos.Readings(), repos.Invoices(), repos.Tariffs(), propertyID, s.now())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return invoicing.ErrNothingToPay
			}

			batchID = invoicing.NewBatchID(when)
			batch = make([]*invoicing.Invoice, 0, len(items))
			for i := range items {
				item := &items[i]
				if item.invoice != nil {
					if err := item.invoice.Retire(when); err != nil {
						return err
					}
					if err := repos.Invoices().Update(ctx, item.invoice); err != nil {
						return err
					}
				}
				inv, err := invoicing.NewBatchInvoice(&item.reading, batchID, item.amount, method, when)
				if err != nil {
					return err
				}
				if err := repos.Invoices().Create(ctx, inv); err != nil {
					return err
				}
				batch = append(batch, inv)
			}
			totalPay = total
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment batch confirmed",
		zap.String("batch_id", batchID),
		zap.String("property_id", propertyID.String()),
		zap.Int("invoices", len(batch)),
		zap.String("total_paid", totalPay.String()),
		zap.String("method", string(method)),
	)

	events := make([]shared.DomainEvent, 0, len(batch)+1)
	result := &PaymentResult{
		BatchID:    batchID,
		PropertyID: propertyID,
		InvoiceIDs: make([]uuid.UUID, 0, len(batch)),
		Invoices:   make([]appinvoicing.InvoiceResponse, 0, len(batch)),
		TotalPaid:  totalPay,
		PaidAt:     when,
	}
	for _, inv := range batch {
		result.InvoiceIDs = append(result.InvoiceIDs, inv.ID)
		result.Invoices = append(result.Invoices, appinvoicing.ToInvoiceResponse(inv))
		events = append(events, inv.PullEvents()...)
	}
	events = append(events, invoicing.NewPaymentBatchConfirmedEvent(propertyID, batchID, len(batch), totalPay, when))
	s.publish(ctx, events...)

	return result, nil
}

// Receipt returns the printable projection of a confirmed batch
func (s *PaymentService) Receipt(ctx context.Context, batchID string) (*ReceiptResponse, error) {
	invoices, err := s.invoiceRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	receipt, err := invoicing.BuildReceipt(batchID, invoices)
	if err != nil {
		return nil, err
	}

	resp := &ReceiptResponse{
		BatchID:     receipt.BatchID,
		PropertyID:  invoices[0].PropertyID,
		Invoices:    appinvoicing.ToInvoiceResponses(receipt.Invoices),
		TotalPaid:   receipt.TotalPaid,
		Currency:    s.currency,
		PaymentDate: receipt.PaymentDate,
	}
	property, err := s.propertyRepo.FindByID(ctx, resp.PropertyID)
	if err != nil {
		return nil, err
	}
	if property != nil {
		resp.AccountNumber = property.AccountNumber
		member, err := s.memberRepo.FindByID(ctx, property.MemberID)
		if err != nil {
			return nil, err
		}
		if member != nil {
			resp.MemberName = member.Name
		}
	}
	return resp, nil
}

// PayReading settles a single reading at the counter. An active pending
// invoice is marked paid; without one, a paid invoice numbered
// REC-{timestamp} is created. A reading already paid fails with
// invoicing.ErrAlreadyPaid.
func (s *PaymentService) PayReading(ctx context.Context, readingID uuid.UUID, req PaymentRequest) (*appinvoicing.InvoiceResponse, error) {
	method, when, err := s.paymentTerms(req)
	if err != nil {
		return nil, err
	}
	reading, err := s.readingRepo.FindByID(ctx, readingID)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, shared.NewNotFoundError("Reading")
	}

	var inv *invoicing.Invoice
	err = appshared.WithPropertyLock(ctx, s.locker, s.lockTTL, reading.PropertyID, func() error {
		return s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			active, err := repos.Invoices().FindActiveByReading(ctx, readingID)
			if err != nil {
				return err
			}
			if active != nil {
				if active.IsPaid() {
					return invoicing.ErrAlreadyPaid
				}
				if err := active.MarkPaid(method, when); err != nil {
					return err
				}
				inv = active
				return repos.Invoices().Update(ctx, active)
			}

			cfg, err := tariff.EffectiveAt(ctx, repos.Tariffs(), s.now())
			if err != nil {
				return err
			}
			total, err := tariff.Price(reading.Consumption, cfg)
			if err != nil {
				return err
			}
			inv, err = invoicing.NewDirectPaymentInvoice(reading, total, method, when)
			if err != nil {
				return err
			}
			return repos.Invoices().Create(ctx, inv)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reading paid",
		zap.String("reading_id", readingID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.String("total", inv.Total.String()),
	)
	s.publish(ctx, inv.PullEvents()...)

	resp := appinvoicing.ToInvoiceResponse(inv)
	return &resp, nil
}

// PayInvoice settles a pending invoice
func (s *PaymentService) PayInvoice(ctx context.Context, invoiceID uuid.UUID, req PaymentRequest) (*appinvoicing.InvoiceResponse, error) {
	return s.invoicePayer.MarkPaid(ctx, invoiceID, appinvoicing.MarkPaidRequest{
		PaymentMethod: req.PaymentMethod,
		PaidAt:        req.PaidAt,
	})
}

// Search finds the best matching property for term, an exact account number
// first, and returns it with its outstanding view
func (s *PaymentService) Search(ctx context.Context, term string) (*SearchResult, error) {
	property, err := s.propertyRepo.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewNotFoundError("Property")
	}
	member, err := s.memberRepo.FindByID(ctx, property.MemberID)
	if err != nil {
		return nil, err
	}
	items, total, err := collectOutstanding(ctx, s.readingRepo, s.invoiceRepo, s.tariffRepo, property.ID, s.now())
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		PropertyID:    property.ID,
		AccountNumber: property.AccountNumber,
		MeterSerial:   property.MeterSerial,
		Status:        property.Status.String(),
		MemberID:      property.MemberID,
		Outstanding:   *toOutstandingResponse(property, items, total),
	}
	if member != nil {
		result.MemberName = member.Name
		result.NationalID = member.NationalID
	}
	return result, nil
}

func (s *PaymentService) paymentTerms(req PaymentRequest) (invoicing.PaymentMethod, time.Time, error) {
	method, err := invoicing.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return "", time.Time{}, err
	}
	when := s.now()
	if req.PaidAt != nil && !req.PaidAt.IsZero() {
		when = *req.PaidAt
	}
	return method, when, nil
}

func (s *PaymentService) findProperty(ctx context.Context, id uuid.UUID) (*membership.Property, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewNotFoundError("Property")
	}
	return property, nil
}

func (s *PaymentService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish payment events", zap.Error(err))
	}
}

func toOutstandingResponse(property *membership.Property, items []outstandingItem, total decimal.Decimal) *OutstandingResponse {
	resp := &OutstandingResponse{
		PropertyID:    property.ID,
		AccountNumber: property.AccountNumber,
		Lines:         make([]OutstandingLine, 0, len(items)),
		TotalDebt:     total,
	}
	for _, item := range items {
		line := OutstandingLine{
			ReadingID:     item.reading.ID,
			Sequence:      item.reading.Sequence,
			Month:         item.reading.Period.Month,
			Year:          item.reading.Period.Year,
			PreviousValue: item.reading.PreviousValue,
			CurrentValue:  item.reading.CurrentValue,
			Consumption:   item.reading.Consumption,
			Amount:        item.amount,
		}
		if item.invoice != nil {
			id := item.invoice.ID
			line.InvoiceID = &id
			line.InvoiceNumber = item.invoice.Number
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}
