package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact raised by an aggregate, published after the
// aggregate has been persisted.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent implements the DomainEvent accessors. Billing events embed
// it and add their payload fields.
type BaseDomainEvent struct {
	ID       uuid.UUID `json:"id"`
	Type     string    `json:"type"`
	At       time.Time `json:"occurred_at"`
	RootID   uuid.UUID `json:"aggregate_id"`
	RootType string    `json:"aggregate_type"`
}

// NewBaseDomainEvent stamps a new event for the aggregate aggID of kind aggType
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:       uuid.New(),
		Type:     eventType,
		At:       time.Now(),
		RootID:   aggID,
		RootType: aggType,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.RootID }
func (e *BaseDomainEvent) AggregateType() string  { return e.RootType }

// EventHandler reacts to published events. An empty EventTypes means the
// handler receives every event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher publishes events after the state change that raised them
// has committed.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is an EventPublisher that handlers can subscribe to. Types passed
// to Subscribe override the handler's own EventTypes.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// NopEventPublisher discards every event
type NopEventPublisher struct{}

// Publish implements EventPublisher
func (NopEventPublisher) Publish(context.Context, ...DomainEvent) error { return nil }
