// Package topic provides the Topic run loop and the topic Registry for
// TopicFlow.
//
// A Topic is an ordered queue of activities plus an intent-confidence
// function. Each Run call drains the queue from the current cursor until a
// pause point (wait for input, wait for sub-topic) or a terminal outcome.
// The queue may grow while a run is in flight; the loop re-checks its length
// after every activity rather than iterating a fixed snapshot, which is what
// allows the repeat controller to enqueue work based on data just collected.
//
// A Topic instance carries run state (cursor, waiting activity, cached
// terminal result), so instances must never be shared across conversations.
// The Registry therefore maps topic names to factories in registration
// order; the engine materializes one instance per conversation and uses the
// registration order to break score ties.
package topic
