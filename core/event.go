package core

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types published by the engine and topics.
const (
	// EventTypeTopicActivated is published when a topic is selected for a message.
	EventTypeTopicActivated = "topic.activated"
	// EventTypeTopicWaiting is published when a topic pauses for user input.
	EventTypeTopicWaiting = "topic.waiting"
	// EventTypeTopicCompleted is published when a topic reaches Completed.
	EventTypeTopicCompleted = "topic.completed"
	// EventTypeTopicFailed is published when a topic reaches Failed.
	EventTypeTopicFailed = "topic.failed"
	// EventTypeTopicCancelled is published when a topic reaches Cancelled.
	EventTypeTopicCancelled = "topic.cancelled"
	// EventTypeSubTopicTriggered is published when a call-stack frame is pushed.
	EventTypeSubTopicTriggered = "subtopic.triggered"
	// EventTypeSubTopicResumed is published when a caller regains control.
	EventTypeSubTopicResumed = "subtopic.resumed"
)

// Card/UI lifecycle hooks. These are one-way notifications consumed by the
// (external) rendering layer; the engine never depends on a response from
// them.
const (
	EventTypeCardEmitted      = "card.emitted"
	EventTypeCardSending      = "card.sending"
	EventTypeCardSent         = "card.sent"
	EventTypeCardRendered     = "card.rendered"
	EventTypeCardDataReceived = "card.data_received"
	EventTypeModelBound       = "model.bound"
	EventTypeValidationFailed = "validation.failed"
)

// TopicEvent is an append-only lifecycle notification record. After
// publication it should be treated as immutable. Correlation chains link all
// events raised while handling a single inbound message.
type TopicEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	TopicName      string    `json:"topic_name,omitempty"`
	ConversationID string    `json:"conversation_id"`
	Data           any       `json:"data,omitempty"`
	CorrelationID  string    `json:"correlation_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewTopicEvent creates an event with a fresh ID and UTC timestamp.
func NewTopicEvent(eventType, topicName, conversationID string, data any) TopicEvent {
	return TopicEvent{
		EventID:        NewID(),
		EventType:      eventType,
		TopicName:      topicName,
		ConversationID: conversationID,
		Data:           data,
		Timestamp:      time.Now().UTC(),
	}
}

// WithCorrelation returns a copy of the event carrying the correlation id.
func (e TopicEvent) WithCorrelation(correlationID string) TopicEvent {
	e.CorrelationID = correlationID
	return e
}

// NewID generates a new unique identifier for events, activities and
// invocations.
func NewID() string { return uuid.NewString() }

// EventPublisher is the narrow publishing surface components need. The
// eventbus package provides the full implementation with subscription and
// history queries.
type EventPublisher interface {
	Publish(ev TopicEvent)
}
