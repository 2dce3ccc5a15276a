package core

import "context"

// Manager routes inbound user messages to topics and drives call-stack
// transitions. engine.Engine is the canonical implementation.
//
// Implementations SHOULD:
//   - Route messages to the active waiting topic directly, bypassing scoring
//   - Otherwise select the highest-scoring registered topic above the
//     configured threshold, ties broken by registration order
//   - After a step, follow the NextTopic context value before returning
//     control to the user (the regain-control resumption)
//   - Serialize steps per conversation while allowing full concurrency
//     across conversations
//   - Materialize one topic instance per conversation from the registered
//     factory, keeping the registry itself read-mostly
type Manager interface {
	// Register makes a topic definition available for routing.
	Register(factory TopicFactory) error

	// Handle processes one inbound user message for a conversation and
	// returns the resulting step outcome.
	Handle(ctx context.Context, conversationID, message string) (*TopicResult, error)
}
