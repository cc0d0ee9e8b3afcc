package tariff

import (
	"fmt"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Breakdown itemizes a priced consumption
type Breakdown struct {
	Consumption  decimal.Decimal
	FixedCharge  decimal.Decimal
	BasicVolume  decimal.Decimal
	BasicAmount  decimal.Decimal
	ExcessVolume decimal.Decimal
	ExcessAmount decimal.Decimal
	Total        decimal.Decimal
}

// ConsumptionAmount is the variable part of the bill (basic plus excess tiers)
func (b Breakdown) ConsumptionAmount() decimal.Decimal {
	return b.BasicAmount.Add(b.ExcessAmount)
}

// Price maps a consumption to the amount owed under cfg. Each tier amount
// is rounded to shared.DecimalScale.
//
//	consumption <= limit: fixed + consumption*basicRate
//	consumption >  limit: fixed + limit*basicRate + (consumption-limit)*excessRate
//
// Every caller that needs an amount goes through this function or Itemize.
func Price(consumption decimal.Decimal, cfg *TariffConfig) (decimal.Decimal, error) {
	b, err := Itemize(consumption, cfg)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}

// Itemize prices consumption under cfg and returns the tier breakdown
func Itemize(consumption decimal.Decimal, cfg *TariffConfig) (Breakdown, error) {
	if cfg == nil {
		return Breakdown{}, ErrNoActiveTariff
	}
	if err := cfg.Validate(); err != nil {
		return Breakdown{}, err
	}
	if consumption.IsNegative() {
		return Breakdown{}, shared.NewDomainError(CodeInvalidConsumption,
			fmt.Sprintf("Consumption cannot be negative (got %s)", consumption.String()))
	}

	b := Breakdown{
		Consumption: consumption,
		FixedCharge: cfg.FixedCharge,
	}
	if consumption.LessThanOrEqual(cfg.BasicLimit) {
		b.BasicVolume = consumption
		b.ExcessVolume = decimal.Zero
	} else {
		b.BasicVolume = cfg.BasicLimit
		b.ExcessVolume = consumption.Sub(cfg.BasicLimit)
	}
	b.BasicAmount = shared.RoundAmount(b.BasicVolume.Mul(cfg.BasicRate))
	b.ExcessAmount = shared.RoundAmount(b.ExcessVolume.Mul(cfg.ExcessRate))
	b.Total = b.FixedCharge.Add(b.BasicAmount).Add(b.ExcessAmount)
	return b, nil
}
