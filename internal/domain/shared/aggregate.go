package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit timestamps shared by every
// billing record.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns an entity with a fresh ID, created now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch marks the entity as modified
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// BaseAggregateRoot adds the optimistic-lock version and the events raised
// since the aggregate was created or loaded.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot creates a version 1 aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// Raise queues an event for publication after the aggregate is saved
func (a *BaseAggregateRoot) Raise(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// PendingEvents returns the queued events without draining them
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.pending
}

// PullEvents drains the queue. Each event is returned once.
func (a *BaseAggregateRoot) PullEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
