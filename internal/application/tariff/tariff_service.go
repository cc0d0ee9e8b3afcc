package tariff

import (
	"context"
	"time"

	appshared "github.com/aqueduct/backend/internal/application/shared"
	"github.com/aqueduct/backend/internal/domain/tariff"
	"go.uber.org/zap"
)

// TariffService administers tariff configurations and answers which one is
// in force
type TariffService struct {
	txScope appshared.TransactionScope
	repo    tariff.TariffConfigRepository
	logger  *zap.Logger
	now     func() time.Time
}

// TariffServiceConfig holds the dependencies of TariffService
type TariffServiceConfig struct {
	TxScope appshared.TransactionScope
	Repo    tariff.TariffConfigRepository
	Logger  *zap.Logger
	Now     func() time.Time
}

// NewTariffService creates a new TariffService
func NewTariffService(cfg TariffServiceConfig) *TariffService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TariffService{
		txScope: cfg.TxScope,
		repo:    cfg.Repo,
		logger:  logger,
		now:     now,
	}
}

// Current returns the configuration in force now. It fails with
// tariff.ErrNoActiveTariff when none is active.
func (s *TariffService) Current(ctx context.Context) (*TariffResponse, error) {
	cfg, err := tariff.EffectiveAt(ctx, s.repo, s.now())
	if err != nil {
		return nil, err
	}
	resp := ToTariffResponse(cfg)
	return &resp, nil
}

// Configure creates a new active configuration. When it takes effect
// immediately every other active configuration is deactivated; when it is
// scheduled for later, the configuration currently in force stays active
// until then and any other pending schedule is dropped.
func (s *TariffService) Configure(ctx context.Context, req ConfigureTariffRequest) (*TariffResponse, error) {
	now := s.now()
	effectiveFrom := now
	if req.EffectiveFrom != nil && !req.EffectiveFrom.IsZero() {
		effectiveFrom = *req.EffectiveFrom
	}

	cfg, err := tariff.NewTariffConfig(req.FixedCharge, req.BasicLimit, req.BasicRate, req.ExcessRate, effectiveFrom)
	if err != nil {
		return nil, err
	}

	var deactivated int
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		active, err := repos.Tariffs().FindActive(ctx)
		if err != nil {
			return err
		}

		var inForce *tariff.TariffConfig
		if effectiveFrom.After(now) {
			inForce, _ = tariff.SelectEffective(active, now)
		}
		for i := range active {
			prev := &active[i]
			if inForce != nil && prev.ID == inForce.ID {
				continue
			}
			prev.Deactivate()
			if err := repos.Tariffs().Save(ctx, prev); err != nil {
				return err
			}
			deactivated++
		}
		return repos.Tariffs().Save(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tariff configured",
		zap.String("tariff_id", cfg.ID.String()),
		zap.Time("effective_from", cfg.EffectiveFrom),
		zap.String("fixed_charge", cfg.FixedCharge.String()),
		zap.String("basic_limit", cfg.BasicLimit.String()),
		zap.Int("deactivated", deactivated),
	)

	resp := ToTariffResponse(cfg)
	return &resp, nil
}

// List returns every configuration, newest effective date first
func (s *TariffService) List(ctx context.Context) ([]TariffResponse, error) {
	configs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToTariffResponses(configs), nil
}
