package lock

import (
	"context"
	"sync"
	"time"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// holder represents the current owner of a key
type holder struct {
	token     string
	expiresAt time.Time
}

// InMemoryLocker implements Locker using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryLocker struct {
	mu        sync.Mutex
	holders   map[string]holder
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLocker creates a new in-memory locker.
// It starts a background goroutine to drop expired holders.
func NewInMemoryLocker() *InMemoryLocker {
	l := &InMemoryLocker{
		holders:  make(map[string]holder),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// TryLock acquires key for ttl unless an unexpired holder exists
func (l *InMemoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if h, exists := l.holders[key]; exists && now.Before(h.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.holders[key] = holder{
		token:     token,
		expiresAt: now.Add(ttl),
	}
	return token, true, nil
}

// Unlock releases key if token still owns it
func (l *InMemoryLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, exists := l.holders[key]; exists && h.token == token {
		delete(l.holders, key)
	}
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (l *InMemoryLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired holders
func (l *InMemoryLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryLocker) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, h := range l.holders {
		if now.After(h.expiresAt) {
			delete(l.holders, key)
		}
	}
}

// Size returns the number of held keys (for testing/monitoring)
func (l *InMemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.holders)
}

// Ensure InMemoryLocker implements Locker
var _ shared.Locker = (*InMemoryLocker)(nil)
