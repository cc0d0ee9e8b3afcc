package persistence

import (
	"context"
	"errors"

	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// readingsNewestPeriodFirst orders by calendar period, then by recording order
	readingsNewestPeriodFirst = "period_year DESC, period_month DESC, sequence DESC"

	activeInvoiceExists = "EXISTS (SELECT 1 FROM invoices WHERE invoices.reading_id = readings.id AND invoices.retired_at IS NULL)"
	paidInvoiceExists   = "EXISTS (SELECT 1 FROM invoices WHERE invoices.reading_id = readings.id AND invoices.retired_at IS NULL AND invoices.status = ?)"
)

// GormReadingRepository implements ReadingRepository using GORM
type GormReadingRepository struct {
	db *gorm.DB
}

// NewGormReadingRepository creates a new GormReadingRepository
func NewGormReadingRepository(db *gorm.DB) *GormReadingRepository {
	return &GormReadingRepository{db: db}
}

// FindByID finds a reading by ID
func (r *GormReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.Reading, error) {
	var model models.ReadingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestByProperty returns the reading with the highest sequence
func (r *GormReadingRepository) FindLatestByProperty(ctx context.Context, propertyID uuid.UUID) (*metering.Reading, error) {
	var model models.ReadingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("sequence DESC").
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProperty returns a property's readings, most recent period first
func (r *GormReadingRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]metering.Reading, error) {
	var readingModels []models.ReadingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order(readingsNewestPeriodFirst).
		Find(&readingModels).Error; err != nil {
		return nil, err
	}
	return readingsToDomain(readingModels), nil
}

// FindByProperties returns the readings of several properties, most recent period first
func (r *GormReadingRepository) FindByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]metering.Reading, error) {
	if len(propertyIDs) == 0 {
		return []metering.Reading{}, nil
	}
	var readingModels []models.ReadingModel
	if err := r.db.WithContext(ctx).
		Where("property_id IN ?", propertyIDs).
		Order(readingsNewestPeriodFirst).
		Find(&readingModels).Error; err != nil {
		return nil, err
	}
	return readingsToDomain(readingModels), nil
}

// FindByPeriod returns every reading of a billing period
func (r *GormReadingRepository) FindByPeriod(ctx context.Context, period metering.Period) ([]metering.Reading, error) {
	var readingModels []models.ReadingModel
	if err := r.db.WithContext(ctx).
		Where("period_year = ? AND period_month = ?", period.Year, period.Month).
		Order("property_id ASC, sequence ASC").
		Find(&readingModels).Error; err != nil {
		return nil, err
	}
	return readingsToDomain(readingModels), nil
}

// FindUninvoiced returns the period's readings without an active invoice
func (r *GormReadingRepository) FindUninvoiced(ctx context.Context, period metering.Period) ([]metering.Reading, error) {
	var readingModels []models.ReadingModel
	if err := r.db.WithContext(ctx).
		Where("period_year = ? AND period_month = ?", period.Year, period.Month).
		Where("NOT " + activeInvoiceExists).
		Order("property_id ASC, sequence ASC").
		Find(&readingModels).Error; err != nil {
		return nil, err
	}
	return readingsToDomain(readingModels), nil
}

// FindUnpaidByProperty returns the property's readings that have no paid
// active invoice, most recent period first
func (r *GormReadingRepository) FindUnpaidByProperty(ctx context.Context, propertyID uuid.UUID) ([]metering.Reading, error) {
	var readingModels []models.ReadingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("NOT "+paidInvoiceExists, invoicing.InvoiceStatusPaid).
		Order(readingsNewestPeriodFirst).
		Find(&readingModels).Error; err != nil {
		return nil, err
	}
	return readingsToDomain(readingModels), nil
}

// Save creates or updates a reading. A second reading claiming the same
// sequence for a property fails with shared.ErrConcurrencyConflict.
func (r *GormReadingRepository) Save(ctx context.Context, reading *metering.Reading) error {
	model := models.ReadingModelFromDomain(reading)
	if err := saveAggregate(r.db.WithContext(ctx), model, &model.AggregateModel); err != nil {
		if isUniqueViolation(err) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	reading.Version = model.Version
	return nil
}

func readingsToDomain(readingModels []models.ReadingModel) []metering.Reading {
	readings := make([]metering.Reading, len(readingModels))
	for i, model := range readingModels {
		readings[i] = *model.ToDomain()
	}
	return readings
}

// Ensure GormReadingRepository implements ReadingRepository
var _ metering.ReadingRepository = (*GormReadingRepository)(nil)
