// Package core provides the foundational domain types, interfaces and execution
// contexts used by TopicFlow. It defines the core abstractions for:
//
//   - Activities (units of conversational work with a validated lifecycle)
//   - ActivityResult (the single outcome contract an activity returns)
//   - Context (the per-conversation key/value bag shared across activities)
//   - TopicEvent (immutable lifecycle notification records)
//   - CallStack (per-conversation sub-topic call/return frames)
//   - RunContext (scoped execution state handed to every activity run)
//   - Conversation / ConversationStore (the persistence seam for hosts)
//
// The package intentionally keeps implementation concerns (topic run loops,
// routing, the event bus, concrete activities) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
