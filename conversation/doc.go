// Package conversation provides conversation store implementations for
// TopicFlow. The in-memory store is the default used by the engine; hosts
// needing durability implement core.ConversationStore themselves and
// snapshot the conversation Context (plus the engine's call stack) at
// suspension boundaries.
package conversation
