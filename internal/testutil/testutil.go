// Package testutil provides shared helpers for package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/topicflow/core"
)

// RecordingBus collects published events for assertions.
type RecordingBus struct {
	mu     sync.Mutex
	events []core.TopicEvent
}

// Publish records the event.
func (b *RecordingBus) Publish(event core.TopicEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

// Events returns a copy of all recorded events.
func (b *RecordingBus) Events() []core.TopicEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.TopicEvent, len(b.events))
	copy(out, b.events)
	return out
}

// ByType returns recorded events matching the given type.
func (b *RecordingBus) ByType(eventType string) []core.TopicEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []core.TopicEvent
	for _, e := range b.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// NewRunContext builds a run context with fresh data, stack, and a
// recording bus.
func NewRunContext(conversationID string) (*core.RunContext, *RecordingBus) {
	bus := &RecordingBus{}
	rc := core.NewRunContext(
		context.Background(),
		conversationID,
		core.NewID(),
		core.NewContext(),
		core.NewCallStack(),
		bus,
		nil,
	)
	return rc, bus
}
