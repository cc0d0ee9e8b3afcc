package testutil

import (
	"context"
	"sync"

	"github.com/aqueduct/backend/internal/domain/shared"
)

// RecordingPublisher is a shared.EventPublisher that keeps every published
// event in order.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// NewRecordingPublisher creates an empty RecordingPublisher.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records the events, then returns the configured error.
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

// SetError sets the error returned by Publish.
func (p *RecordingPublisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Events returns a copy of the published events.
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the event types in publication order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// CountOf returns how many events of eventType were published.
func (p *RecordingPublisher) CountOf(eventType string) int {
	n := 0
	for _, t := range p.Types() {
		if t == eventType {
			n++
		}
	}
	return n
}

var _ shared.EventPublisher = (*RecordingPublisher)(nil)
