package tariff

import (
	"context"
	"time"
)

// SelectEffective picks the configuration in force at the given instant:
// among active configs with EffectiveFrom <= at, the one with the latest
// EffectiveFrom (ties go to the most recently created). It returns
// ErrNoActiveTariff when none qualifies.
func SelectEffective(configs []TariffConfig, at time.Time) (*TariffConfig, error) {
	var best *TariffConfig
	for i := range configs {
		c := &configs[i]
		if !c.Active || c.EffectiveFrom.After(at) {
			continue
		}
		if best == nil ||
			c.EffectiveFrom.After(best.EffectiveFrom) ||
			(c.EffectiveFrom.Equal(best.EffectiveFrom) && c.CreatedAt.After(best.CreatedAt)) {
			best = c
		}
	}
	if best == nil {
		return nil, ErrNoActiveTariff
	}
	return best, nil
}

// EffectiveAt loads the active configurations and selects the one in force at
// the given instant
func EffectiveAt(ctx context.Context, repo TariffConfigRepository, at time.Time) (*TariffConfig, error) {
	configs, err := repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return SelectEffective(configs, at)
}
