package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type raisedEvent struct {
	BaseDomainEvent
}

func TestNewBaseAggregateRoot(t *testing.T) {
	a := NewBaseAggregateRoot()

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, 1, a.Version)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	assert.Empty(t, a.PendingEvents())
}

func TestBaseAggregateRoot_PullEvents(t *testing.T) {
	a := NewBaseAggregateRoot()
	a.Raise(&raisedEvent{NewBaseDomainEvent("First", "Test", a.ID)})
	a.Raise(&raisedEvent{NewBaseDomainEvent("Second", "Test", a.ID)})
	require.Len(t, a.PendingEvents(), 2)

	events := a.PullEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "First", events[0].EventType())
	assert.Equal(t, "Second", events[1].EventType())
	assert.Empty(t, a.PullEvents())
}

func TestBaseEntity_Touch(t *testing.T) {
	e := NewBaseEntity()
	before := e.UpdatedAt
	e.Touch()
	assert.False(t, e.UpdatedAt.Before(before))
	assert.Equal(t, before, e.CreatedAt)
}
