// Package engine provides the topic manager: the central coordinator that
// routes inbound user messages to topics, drives sub-topic call/return via
// the conversation call stack, and publishes lifecycle events.
//
// The engine serializes message handling per conversation while allowing
// full concurrency across conversations. Within one handled message it may
// run several topics back to back: a sub-topic trigger transfers control
// down immediately, and a finished topic's NextTopic context value transfers
// control sideways or back up to a suspended caller.
//
// Topics register as factories. The engine materializes one instance per
// conversation, so topic run state, including suspensions and cached
// terminal results, is isolated between conversations.
package engine
