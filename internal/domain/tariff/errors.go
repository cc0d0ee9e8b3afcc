package tariff

import "github.com/aqueduct/backend/internal/domain/shared"

// Error codes for tariff pricing
const (
	CodeInvalidTariffConfig = "INVALID_TARIFF_CONFIG"
	CodeInvalidConsumption  = "INVALID_CONSUMPTION"
)

var (
	// ErrInvalidTariffConfig is returned when a config has negative parameters or none is active
	ErrInvalidTariffConfig = shared.NewDomainError(CodeInvalidTariffConfig, "Tariff configuration is invalid")

	// ErrNoActiveTariff is returned when no tariff configuration is currently effective
	ErrNoActiveTariff = shared.NewDomainError(CodeInvalidTariffConfig, "No active tariff configuration found")

	// ErrInvalidConsumption is returned when pricing a negative consumption
	ErrInvalidConsumption = shared.NewDomainError(CodeInvalidConsumption, "Consumption cannot be negative")
)
