// Package lock provides the per-property lockers that serialize payment
// confirmation and invoice issuance across API instances.
package lock

import (
	"fmt"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backend names accepted in configuration
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// LockerFactory creates lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	billingConfig         config.BillingConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory locker when Redis is unavailable
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(redisCfg config.RedisConfig, billingCfg config.BillingConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           redisCfg,
		billingConfig:         billingCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: billingCfg.LockAllowInMemoryFallback,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisLocker creates a Redis-based locker
func (f *LockerFactory) CreateRedisLocker() (shared.Locker, error) {
	locker, err := NewRedisLocker(f.redisConfig, f.billingConfig.LockKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis locker: %w", err)
	}
	return locker, nil
}

// CreateInMemoryLocker creates an in-memory locker.
// WARNING: in-memory locks are not shared across process instances, so two
// instances may settle the same property concurrently. The partial unique
// index on invoices still rejects the loser.
func (f *LockerFactory) CreateInMemoryLocker() shared.Locker {
	return NewInMemoryLocker()
}

// CreateLocker creates the configured locker. With the redis backend it
// falls back to memory when Redis is unreachable and fallback is allowed.
func (f *LockerFactory) CreateLocker() (shared.Locker, error) {
	if f.billingConfig.LockBackend == BackendMemory {
		f.logger.Info("using in-memory property locker")
		return f.CreateInMemoryLocker(), nil
	}

	locker, err := f.CreateRedisLocker()
	if err == nil {
		f.logger.Info("using Redis property locker")
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for property locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory property locker. "+
		"Concurrent payments on different instances rely on the database constraint only.",
		zap.Error(err),
	)
	return f.CreateInMemoryLocker(), nil
}
