package core

import (
	"context"

	"github.com/hupe1980/topicflow/logging"
)

// RunContext carries execution state & helpers for a topic/activity run.
// It encapsulates the per-invocation scope passed to every Activity Run and
// HandleResponse call. It aggregates:
//
//   - The ambient cancellation Context
//   - Identifiers (ConversationID, InvocationID, CorrelationID)
//   - The conversation's Context bag (Data)
//   - The conversation's sub-topic CallStack
//   - The queue of the topic currently executing (for mid-run extension)
//   - The event publisher for lifecycle notifications
//
// A RunContext is scoped to one topic step; ForTopic derives a copy bound to
// a specific topic's name and queue.
type RunContext struct {
	Context        context.Context
	ConversationID string
	InvocationID   string
	CorrelationID  string
	TopicName      string
	Data           *Context
	Stack          *CallStack
	Queue          ActivityQueue
	Bus            EventPublisher

	*loggerAdapter
}

// NewRunContext constructs a RunContext for one inbound message.
func NewRunContext(
	ctx context.Context,
	conversationID, invocationID string,
	data *Context,
	stack *CallStack,
	bus EventPublisher,
	logger logging.Logger,
) *RunContext {
	if data == nil {
		data = NewContext()
	}
	return &RunContext{
		Context:        ctx,
		ConversationID: conversationID,
		InvocationID:   invocationID,
		CorrelationID:  invocationID,
		Data:           data,
		Stack:          stack,
		Bus:            bus,
		loggerAdapter:  newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// Get returns the value and existence flag for a conversation context key.
func (rc *RunContext) Get(key string) (any, bool) { return rc.Data.Get(key) }

// Set stores a key/value pair in the conversation context.
func (rc *RunContext) Set(key string, value any) { rc.Data.Set(key, value) }

// Delete removes a conversation context key.
func (rc *RunContext) Delete(key string) { rc.Data.Delete(key) }

// Contains reports whether the conversation context holds the key.
func (rc *RunContext) Contains(key string) bool { return rc.Data.Contains(key) }

// Enqueue appends activities to the queue of the topic currently running.
// It is a no-op outside a topic run.
func (rc *RunContext) Enqueue(activities ...Activity) {
	if rc.Queue == nil {
		rc.LogWarn("enqueue requested outside a topic run", "count", len(activities))
		return
	}
	rc.Queue.Enqueue(activities...)
}

// Notify publishes a one-way lifecycle notification (card hooks, custom
// events) on the bus. It is a no-op when no bus is configured.
func (rc *RunContext) Notify(eventType string, data any) {
	if rc.Bus == nil {
		return
	}
	ev := NewTopicEvent(eventType, rc.TopicName, rc.ConversationID, data)
	rc.Bus.Publish(ev.WithCorrelation(rc.CorrelationID))
}

// ForTopic returns a shallow copy bound to the named topic and its queue.
func (rc *RunContext) ForTopic(topicName string, queue ActivityQueue) *RunContext {
	c := *rc
	c.TopicName = topicName
	c.Queue = queue
	return &c
}
