package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "aqueduct:lock:"

// unlockScript deletes the key only while it still holds the caller's token
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker using Redis SET NX PX.
// This is suitable for distributed deployments where several API instances
// must not settle the same property at once.
type RedisLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLocker creates a new Redis-based locker
func NewRedisLocker(cfg config.RedisConfig, keyPrefix string) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisLockerWithClient(client, keyPrefix), nil
}

// NewRedisLockerWithClient creates a locker with an existing Redis client
func NewRedisLockerWithClient(client *redis.Client, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisLocker{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// TryLock acquires key for ttl. SETNX with expiry is a single atomic operation.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock releases key if token still owns it
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	if err := unlockScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (l *RedisLocker) GetClient() *redis.Client {
	return l.client
}

// Ensure RedisLocker implements Locker
var _ shared.Locker = (*RedisLocker)(nil)
