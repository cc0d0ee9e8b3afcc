package tariff

import (
	"time"

	"github.com/aqueduct/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfigureTariffRequest represents a request to put a new tariff in force
type ConfigureTariffRequest struct {
	FixedCharge   decimal.Decimal `json:"fixed_charge" binding:"decimal_gte0,decimal_scale"`
	BasicLimit    decimal.Decimal `json:"basic_limit" binding:"decimal_gte0,decimal_scale"`
	BasicRate     decimal.Decimal `json:"basic_rate" binding:"decimal_gte0,decimal_scale"`
	ExcessRate    decimal.Decimal `json:"excess_rate" binding:"decimal_gte0,decimal_scale"`
	EffectiveFrom *time.Time      `json:"effective_from"`
}

// TariffResponse represents a tariff configuration in API responses
type TariffResponse struct {
	ID            uuid.UUID       `json:"id"`
	FixedCharge   decimal.Decimal `json:"fixed_charge"`
	BasicLimit    decimal.Decimal `json:"basic_limit"`
	BasicRate     decimal.Decimal `json:"basic_rate"`
	ExcessRate    decimal.Decimal `json:"excess_rate"`
	EffectiveFrom time.Time       `json:"effective_from"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToTariffResponse converts a domain TariffConfig to TariffResponse
func ToTariffResponse(c *tariff.TariffConfig) TariffResponse {
	return TariffResponse{
		ID:            c.ID,
		FixedCharge:   c.FixedCharge,
		BasicLimit:    c.BasicLimit,
		BasicRate:     c.BasicRate,
		ExcessRate:    c.ExcessRate,
		EffectiveFrom: c.EffectiveFrom,
		Active:        c.Active,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ToTariffResponses converts a slice of configurations
func ToTariffResponses(configs []tariff.TariffConfig) []TariffResponse {
	out := make([]TariffResponse, len(configs))
	for i := range configs {
		out[i] = ToTariffResponse(&configs[i])
	}
	return out
}

// BreakdownResponse itemizes how an amount was priced
type BreakdownResponse struct {
	Consumption  decimal.Decimal `json:"consumption"`
	FixedCharge  decimal.Decimal `json:"fixed_charge"`
	BasicVolume  decimal.Decimal `json:"basic_volume"`
	BasicAmount  decimal.Decimal `json:"basic_amount"`
	ExcessVolume decimal.Decimal `json:"excess_volume"`
	ExcessAmount decimal.Decimal `json:"excess_amount"`
	Total        decimal.Decimal `json:"total"`
}

// ToBreakdownResponse converts a pricing breakdown
func ToBreakdownResponse(b tariff.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		Consumption:  b.Consumption,
		FixedCharge:  b.FixedCharge,
		BasicVolume:  b.BasicVolume,
		BasicAmount:  b.BasicAmount,
		ExcessVolume: b.ExcessVolume,
		ExcessAmount: b.ExcessAmount,
		Total:        b.Total,
	}
}
