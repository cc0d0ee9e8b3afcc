package invoicing

import (
	"context"
	"errors"
	"sort"
	"time"

	appshared "github.com/aqueduct/backend/internal/application/shared"
	apptariff "github.com/aqueduct/backend/internal/application/tariff"
	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService issues period invoices and settles them
type InvoiceService struct {
	txScope        appshared.TransactionScope
	readingRepo    metering.ReadingRepository
	invoiceRepo    invoicing.InvoiceRepository
	propertyRepo   membership.PropertyRepository
	tariffRepo     tariff.TariffConfigRepository
	locker         shared.Locker
	lockTTL        time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// InvoiceServiceConfig holds the dependencies of InvoiceService
type InvoiceServiceConfig struct {
	TxScope        appshared.TransactionScope
	ReadingRepo    metering.ReadingRepository
	InvoiceRepo    invoicing.InvoiceRepository
	PropertyRepo   membership.PropertyRepository
	TariffRepo     tariff.TariffConfigRepository
	Locker         shared.Locker
	LockTTL        time.Duration
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(cfg InvoiceServiceConfig) *InvoiceService {
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
	return &InvoiceService{
		txScope:        cfg.TxScope,
		readingRepo:    cfg.ReadingRepo,
		invoiceRepo:    cfg.InvoiceRepo,
		propertyRepo:   cfg.PropertyRepo,
		tariffRepo:     cfg.TariffRepo,
		locker:         cfg.Locker,
		lockTTL:        cfg.LockTTL,
		eventPublisher: publisher,
		logger:         logger,
		now:            now,
	}
}

// Issue invoices a reading under the tariff in force. Issuing a reading that
// already has an active invoice returns that invoice unchanged.
func (s *InvoiceService) Issue(ctx context.Context, readingID uuid.UUID) (*InvoiceResponse, error) {
	reading, err := s.findReading(ctx, readingID)
	if err != nil {
		return nil, err
	}
	inv, _, err := s.issue(ctx, reading)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// issue returns the reading's active invoice, creating it when missing. The
// boolean reports whether this call created it.
func (s *InvoiceService) issue(ctx context.Context, reading *metering.Reading) (*invoicing.Invoice, bool, error) {
	var (
		inv     *invoicing.Invoice
		created bool
	)
	err := appshared.WithPropertyLock(ctx, s.locker, s.lockTTL, reading.PropertyID, func() error {
		return s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			existing, err := repos.Invoices().FindActiveByReading(ctx, reading.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				inv = existing
				return nil
			}

			property, err := repos.Properties().FindByID(ctx, reading.PropertyID)
			if err != nil {
				return err
			}
			if property == nil {
				return shared.NewNotFoundError("Property")
			}
			cfg, err := tariff.EffectiveAt(ctx, repos.Tariffs(), s.now())
			if err != nil {
				return err
			}
			total, err := tariff.Price(reading.Consumption, cfg)
			if err != nil {
				return err
			}

			inv, err = invoicing.NewPeriodInvoice(reading, property.AccountNumber, total)
			if err != nil {
				return err
			}
			if err := repos.Invoices().Create(ctx, inv); err != nil {
				return err
			}
			created = true
			return nil
		})
	})
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		// another writer got there first; its invoice is the answer
		existing, findErr := s.invoiceRepo.FindActiveByReading(ctx, reading.ID)
		if findErr == nil && existing != nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("invoice issued",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("number", inv.Number),
			zap.String("reading_id", reading.ID.String()),
			zap.String("total", inv.Total.String()),
		)
		s.publish(ctx, inv)
	}
	return inv, created, nil
}

// HasInvoice reports whether a reading has an active invoice
func (s *InvoiceService) HasInvoice(ctx context.Context, readingID uuid.UUID) (bool, error) {
	return s.invoiceRepo.ExistsActiveForReading(ctx, readingID)
}

// GenerateForPeriod invoices every reading of a period that has no active
// invoice. Each reading is its own unit of work: a failure is recorded in
// the result and the run moves on to the next reading.
func (s *InvoiceService) GenerateForPeriod(ctx context.Context, month, year int) (*GenerationResult, error) {
	period, err := metering.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}
	readings, err := s.readingRepo.FindUninvoiced(ctx, period)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{
		Month:    period.Month,
		Year:     period.Year,
		Failures: []GenerationFailure{},
	}
	for i := range readings {
		r := &readings[i]
		_, created, err := s.issue(ctx, r)
		if err != nil {
			result.SkippedCount++
			result.Failures = append(result.Failures, GenerationFailure{
				PropertyID: r.PropertyID,
				ReadingID:  r.ID,
				Code:       shared.ErrorCode(err),
				Reason:     err.Error(),
			})
			s.logger.Warn("reading not invoiced",
				zap.String("reading_id", r.ID.String()),
				zap.String("property_id", r.PropertyID.String()),
				zap.Error(err),
			)
			continue
		}
		if created {
			result.IssuedCount++
		} else {
			result.SkippedCount++
		}
	}

	s.logger.Info("period invoicing finished",
		zap.String("period", period.String()),
		zap.Int("issued", result.IssuedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", len(result.Failures)),
	)
	return result, nil
}

// MarkPaid settles a pending invoice. Paying it twice fails with
// invoicing.ErrAlreadyPaid.
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID uuid.UUID, req MarkPaidRequest) (*InvoiceResponse, error) {
	method, err := invoicing.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	when := s.now()
	if req.PaidAt != nil && !req.PaidAt.IsZero() {
		when = *req.PaidAt
	}

	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoicing.ErrInvoiceNotFound
	}

	err = appshared.WithPropertyLock(ctx, s.locker, s.lockTTL, inv.PropertyID, func() error {
		return s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			current, err := repos.Invoices().FindByID(ctx, invoiceID)
			if err != nil {
				return err
			}
			if current == nil {
				return invoicing.ErrInvoiceNotFound
			}
			if err := current.MarkPaid(method, when); err != nil {
				return err
			}
			if err := repos.Invoices().Update(ctx, current); err != nil {
				return err
			}
			inv = current
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice paid",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.String("method", string(method)),
	)
	s.publish(ctx, inv)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetInvoice returns an invoice by id
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoicing.ErrInvoiceNotFound
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// PreviewPeriod prices every reading of a period under the tariff in force,
// ordered by account number
func (s *InvoiceService) PreviewPeriod(ctx context.Context, month, year int) (*PeriodPreview, error) {
	period, err := metering.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}
	cfg, err := tariff.EffectiveAt(ctx, s.tariffRepo, s.now())
	if err != nil {
		return nil, err
	}
	readings, err := s.readingRepo.FindByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	accounts := make(map[uuid.UUID]string)
	preview := &PeriodPreview{
		Month:         period.Month,
		Year:          period.Year,
		Lines:         make([]PreviewLine, 0, len(readings)),
		ExpectedTotal: decimal.Zero,
	}
	for i := range readings {
		r := &readings[i]
		account, ok := accounts[r.PropertyID]
		if !ok {
			if account, err = s.accountNumber(ctx, r.PropertyID); err != nil {
				return nil, err
			}
			accounts[r.PropertyID] = account
		}
		line, err := previewLine(r, account, cfg)
		if err != nil {
			return nil, err
		}
		preview.Lines = append(preview.Lines, line)
		preview.ExpectedTotal = preview.ExpectedTotal.Add(line.Breakdown.Total)
	}
	sort.SliceStable(preview.Lines, func(i, j int) bool {
		return preview.Lines[i].AccountNumber < preview.Lines[j].AccountNumber
	})
	return preview, nil
}

// PreviewReading prices a single reading under the tariff in force
func (s *InvoiceService) PreviewReading(ctx context.Context, readingID uuid.UUID) (*PreviewLine, error) {
	reading, err := s.findReading(ctx, readingID)
	if err != nil {
		return nil, err
	}
	cfg, err := tariff.EffectiveAt(ctx, s.tariffRepo, s.now())
	if err != nil {
		return nil, err
	}
	account, err := s.accountNumber(ctx, reading.PropertyID)
	if err != nil {
		return nil, err
	}
	line, err := previewLine(reading, account, cfg)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func previewLine(r *metering.Reading, account string, cfg *tariff.TariffConfig) (PreviewLine, error) {
	b, err := tariff.Itemize(r.Consumption, cfg)
	if err != nil {
		return PreviewLine{}, err
	}
	return PreviewLine{
		ReadingID:     r.ID,
		PropertyID:    r.PropertyID,
		AccountNumber: account,
		Month:         r.Period.Month,
		Year:          r.Period.Year,
		PreviousValue: r.PreviousValue,
		CurrentValue:  r.CurrentValue,
		Breakdown:     apptariff.ToBreakdownResponse(b),
	}, nil
}

func (s *InvoiceService) findReading(ctx context.Context, id uuid.UUID) (*metering.Reading, error) {
	reading, err := s.readingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, shared.NewNotFoundError("Reading")
	}
	return reading, nil
}

func (s *InvoiceService) accountNumber(ctx context.Context, propertyID uuid.UUID) (string, error) {
	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return "", err
	}
	if property == nil {
		return "", nil
	}
	return property.AccountNumber, nil
}

func (s *InvoiceService) publish(ctx context.Context, inv *invoicing.Invoice) {
	events := inv.PullEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish invoice events",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
	}
}
