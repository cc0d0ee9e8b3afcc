package metering

import (
	"context"
	"time"

	appshared "github.com/aqueduct/backend/internal/application/shared"
	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReadingService records meter readings and answers questions about them
type ReadingService struct {
	txScope        appshared.TransactionScope
	readingRepo    metering.ReadingRepository
	propertyRepo   membership.PropertyRepository
	memberRepo     membership.MemberRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
	auditThreshold decimal.Decimal
	maxErrors      int
}

// ReadingServiceConfig holds the dependencies of ReadingService
type ReadingServiceConfig struct {
	TxScope        appshared.TransactionScope
	ReadingRepo    metering.ReadingRepository
	PropertyRepo   membership.PropertyRepository
	MemberRepo     membership.MemberRepository
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
	Now            func() time.Time
	// AuditThreshold is used when AuditConsumption is called without one
	AuditThreshold decimal.Decimal
	// ImportMaxErrors caps the row errors kept by ImportReadings
	ImportMaxErrors int
}

// NewReadingService creates a new ReadingService
func NewReadingService(cfg ReadingServiceConfig) *ReadingService {
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
	threshold := cfg.AuditThreshold
	if !threshold.IsPositive() {
		threshold = metering.DefaultAuditThreshold
	}
	return &ReadingService{
		txScope:        cfg.TxScope,
		readingRepo:    cfg.ReadingRepo,
		propertyRepo:   cfg.PropertyRepo,
		memberRepo:     cfg.MemberRepo,
		eventPublisher: publisher,
		logger:         logger,
		now:            now,
		auditThreshold: threshold,
		maxErrors:      cfg.ImportMaxErrors,
	}
}

// RecordReading stores a new reading for a property. The previous value is
// the current value of the most recently recorded reading, whatever its
// period. A lower value fails with metering.ErrNonMonotonicReading and
// nothing is stored.
func (s *ReadingService) RecordReading(ctx context.Context, propertyID uuid.UUID, req RecordReadingRequest) (*ReadingResponse, error) {
	period := metering.PeriodOf(s.now())
	if req.Month != 0 || req.Year != 0 {
		p, err := metering.NewPeriod(req.Month, req.Year)
		if err != nil {
			return nil, err
		}
		period = p
	}

	reading, err := s.record(ctx, propertyID, period, req.CurrentValue)
	if err != nil {
		return nil, err
	}
	resp := ToReadingResponse(reading)
	return &resp, nil
}

// record runs one reading insertion as its own unit of work and publishes
// the resulting events after commit
func (s *ReadingService) record(ctx context.Context, propertyID uuid.UUID, period metering.Period, value decimal.Decimal) (*metering.Reading, error) {
	var reading *metering.Reading
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		property, err := repos.Properties().FindByID(ctx, propertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return shared.NewNotFoundError("Property")
		}

		last, err := repos.Readings().FindLatestByProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		reading, err = metering.NewReading(propertyID, period, last, value, s.now())
		if err != nil {
			return err
		}
		return repos.Readings().Save(ctx, reading)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reading recorded",
		zap.String("reading_id", reading.ID.String()),
		zap.String("property_id", propertyID.String()),
		zap.String("period", period.String()),
		zap.String("consumption", reading.Consumption.String()),
	)

	if events := reading.PullEvents(); len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish reading events",
				zap.String("reading_id", reading.ID.String()),
				zap.Error(err),
			)
		}
	}
	return reading, nil
}

// History returns a property's readings, most recent period first
func (s *ReadingService) History(ctx context.Context, propertyID uuid.UUID) ([]ReadingResponse, error) {
	if err := s.ensureProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	readings, err := s.readingRepo.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return ToReadingResponses(readings), nil
}

// Latest returns the most recently recorded reading of a property, or nil
// when it has none
func (s *ReadingService) Latest(ctx context.Context, propertyID uuid.UUID) (*ReadingResponse, error) {
	if err := s.ensureProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	reading, err := s.readingRepo.FindLatestByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, nil
	}
	resp := ToReadingResponse(reading)
	return &resp, nil
}

// AuditConsumption compares every reading of a period against the average
// consumption of the same property's other readings. A zero threshold uses
// the configured default.
func (s *ReadingService) AuditConsumption(ctx context.Context, month, year int, threshold decimal.Decimal) ([]AuditRow, error) {
	period, err := metering.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}
	if threshold.IsZero() {
		threshold = s.auditThreshold
	}
	if !threshold.IsPositive() {
		return nil, shared.NewValidationError("Audit threshold must be positive")
	}

	readings, err := s.readingRepo.FindByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return []AuditRow{}, nil
	}

	propertyIDs := make([]uuid.UUID, 0, len(readings))
	seen := make(map[uuid.UUID]bool)
	for _, r := range readings {
		if !seen[r.PropertyID] {
			seen[r.PropertyID] = true
			propertyIDs = append(propertyIDs, r.PropertyID)
		}
	}
	all, err := s.readingRepo.FindByProperties(ctx, propertyIDs)
	if err != nil {
		return nil, err
	}
	byProperty := make(map[uuid.UUID][]metering.Reading)
	for _, r := range all {
		byProperty[r.PropertyID] = append(byProperty[r.PropertyID], r)
	}

	owners := newOwnerDirectory(s.propertyRepo, s.memberRepo)
	rows := make([]AuditRow, 0, len(readings))
	for _, r := range readings {
		check := metering.AuditConsumption(r, byProperty[r.PropertyID], threshold)
		owner, err := owners.lookup(ctx, r.PropertyID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, AuditRow{
			ReadingID:     r.ID,
			PropertyID:    r.PropertyID,
			AccountNumber: owner.accountNumber,
			MemberName:    owner.memberName,
			Consumption:   r.Consumption,
			Average:       check.Average.Round(2),
			Alert:         check.Alert,
		})
	}
	sortAuditRows(rows)
	return rows, nil
}

func (s *ReadingService) ensureProperty(ctx context.Context, propertyID uuid.UUID) error {
	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if property == nil {
		return shared.NewNotFoundError("Property")
	}
	return nil
}
