package tariff

import (
	"fmt"
	"time"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TariffConfig holds the two-tier pricing parameters: a fixed charge, a
// basic tier billed at BasicRate up to BasicLimit cubic meters and an
// excess tier billed at ExcessRate beyond it.
type TariffConfig struct {
	shared.BaseAggregateRoot
	FixedCharge   decimal.Decimal
	BasicLimit    decimal.Decimal
	BasicRate     decimal.Decimal
	ExcessRate    decimal.Decimal
	EffectiveFrom time.Time
	Active        bool
}

// NewTariffConfig creates an active tariff configuration effective from the given instant
func NewTariffConfig(fixedCharge, basicLimit, basicRate, excessRate decimal.Decimal, effectiveFrom time.Time) (*TariffConfig, error) {
	cfg := &TariffConfig{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FixedCharge:       fixedCharge,
		BasicLimit:        basicLimit,
		BasicRate:         basicRate,
		ExcessRate:        excessRate,
		EffectiveFrom:     effectiveFrom,
		Active:            true,
	}
	if cfg.EffectiveFrom.IsZero() {
		cfg.EffectiveFrom = cfg.CreatedAt
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every pricing parameter is non-negative and fits the
// stored decimal scale
func (c *TariffConfig) Validate() error {
	checks := []struct {
		name  string
		value decimal.Decimal
	}{
		{"fixed charge", c.FixedCharge},
		{"basic limit", c.BasicLimit},
		{"basic rate", c.BasicRate},
		{"excess rate", c.ExcessRate},
	}
	for _, chk := range checks {
		if chk.value.IsNegative() {
			return shared.NewDomainError(CodeInvalidTariffConfig,
				fmt.Sprintf("Tariff %s cannot be negative (got %s)", chk.name, chk.value.String()))
		}
		if !shared.FitsScale(chk.value) {
			return shared.NewDomainError(CodeInvalidTariffConfig,
				fmt.Sprintf("Tariff %s cannot have more than %d decimal places (got %s)",
					chk.name, shared.DecimalScale, chk.value.String()))
		}
	}
	return nil
}

// Deactivate retires the configuration so it is no longer selected
func (c *TariffConfig) Deactivate() {
	if !c.Active {
		return
	}
	c.Active = false
	c.Touch()
}

// Price returns the amount owed for consumption under this configuration
func (c *TariffConfig) Price(consumption decimal.Decimal) (decimal.Decimal, error) {
	return Price(consumption, c)
}
