package tariff

import (
	"context"

	"github.com/google/uuid"
)

// TariffConfigRepository defines persistence operations for tariff configurations
type TariffConfigRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TariffConfig, error)
	FindActive(ctx context.Context) ([]TariffConfig, error)
	FindAll(ctx context.Context) ([]TariffConfig, error)
	Save(ctx context.Context, cfg *TariffConfig) error
}
