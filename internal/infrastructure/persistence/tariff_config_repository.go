package persistence

import (
	"context"
	"errors"

	"github.com/aqueduct/backend/internal/domain/tariff"
	"github.com/aqueduct/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTariffConfigRepository implements TariffConfigRepository using GORM
type GormTariffConfigRepository struct {
	db *gorm.DB
}

// NewGormTariffConfigRepository creates a new GormTariffConfigRepository
func NewGormTariffConfigRepository(db *gorm.DB) *GormTariffConfigRepository {
	return &GormTariffConfigRepository{db: db}
}

// FindByID finds a tariff configuration by ID
func (r *GormTariffConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*tariff.TariffConfig, error) {
	var model models.TariffConfigModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns the active configurations, newest effective date first
func (r *GormTariffConfigRepository) FindActive(ctx context.Context) ([]tariff.TariffConfig, error) {
	var configModels []models.TariffConfigModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("effective_from DESC, created_at DESC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}
	return tariffConfigsToDomain(configModels), nil
}

// FindAll returns every configuration, newest effective date first
func (r *GormTariffConfigRepository) FindAll(ctx context.Context) ([]tariff.TariffConfig, error) {
	var configModels []models.TariffConfigModel
	if err := r.db.WithContext(ctx).
		Order("effective_from DESC, created_at DESC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}
	return tariffConfigsToDomain(configModels), nil
}

// Save creates or updates a tariff configuration
func (r *GormTariffConfigRepository) Save(ctx context.Context, cfg *tariff.TariffConfig) error {
	model := models.TariffConfigModelFromDomain(cfg)
	if err := saveAggregate(r.db.WithContext(ctx), model, &model.AggregateModel); err != nil {
		return err
	}
	cfg.Version = model.Version
	return nil
}

func tariffConfigsToDomain(configModels []models.TariffConfigModel) []tariff.TariffConfig {
	configs := make([]tariff.TariffConfig, len(configModels))
	for i, model := range configModels {
		configs[i] = *model.ToDomain()
	}
	return configs
}

// Ensure GormTariffConfigRepository implements TariffConfigRepository
var _ tariff.TariffConfigRepository = (*GormTariffConfigRepository)(nil)
