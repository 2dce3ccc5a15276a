package core

import "errors"

// Sentinel errors shared across the engine. Wrap with fmt.Errorf("%w", ...)
// to add detail while keeping errors.Is checks working.
var (
	// ErrNoTopicMatched indicates no registered topic scored above the
	// configured confidence threshold for an inbound message.
	ErrNoTopicMatched = errors.New("no topic matched the message")

	// ErrTopicNotFound indicates a lookup for a named topic failed.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrNoWaitingActivity indicates an external response arrived for a topic
	// that has no activity waiting for input.
	ErrNoWaitingActivity = errors.New("no activity is waiting for input")

	// ErrMissingCorrelation indicates an external response arrived but the
	// waiting markers it should correlate against are absent from the
	// conversation context. The engine refuses to guess the recipient.
	ErrMissingCorrelation = errors.New("no waiting markers found for response")

	// ErrResponseTimeout indicates an event-trigger activity waited past its
	// deadline without receiving a correlated response.
	ErrResponseTimeout = errors.New("timed out waiting for event response")

	// ErrTopicTerminated indicates an attempt to register a topic instance
	// that has already reached a terminal lifecycle state.
	ErrTopicTerminated = errors.New("topic is terminated")
)
