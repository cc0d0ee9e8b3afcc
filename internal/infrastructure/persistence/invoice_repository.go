package persistence

import (
	"context"
	"errors"

	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByReading returns the non-retired invoice of a reading
func (r *GormInvoiceRepository) FindActiveByReading(ctx context.Context, readingID uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("reading_id = ? AND retired_at IS NULL", readingID).
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByReadings returns the non-retired invoices of several readings keyed by reading id
func (r *GormInvoiceRepository) FindActiveByReadings(ctx context.Context, readingIDs []uuid.UUID) (map[uuid.UUID]*invoicing.Invoice, error) {
	result := make(map[uuid.UUID]*invoicing.Invoice, len(readingIDs))
	if len(readingIDs) == 0 {
		return result, nil
	}
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("reading_id IN ? AND retired_at IS NULL", readingIDs).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	for i := range invoiceModels {
		inv := invoiceModels[i].ToDomain()
		result[inv.ReadingID] = inv
	}
	return result, nil
}

// ExistsActiveForReading checks whether a reading already has a non-retired invoice
func (r *GormInvoiceRepository) ExistsActiveForReading(ctx context.Context, readingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("reading_id = ? AND retired_at IS NULL", readingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByBatch returns the invoices of a payment batch ordered by number
func (r *GormInvoiceRepository) FindByBatch(ctx context.Context, batchID string) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("number ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Create inserts a new invoice. The partial unique index on reading_id turns
// a concurrent second invoice for the same reading into a conflict.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if model.Version < 1 {
		model.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	invoice.Version = model.Version
	return nil
}

// Update persists changes with optimistic locking
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	expected := model.Version
	model.Version = expected + 1

	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Omit("id", "created_at").
		Where("id = ? AND version = ?", invoice.ID, expected).
		Updates(model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return shared.ErrConcurrencyConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	invoice.Version = model.Version
	return nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
