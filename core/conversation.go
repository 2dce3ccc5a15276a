package core

import (
	"sync"
	"time"
)

// Conversation is the per-conversation container: the Context bag plus the
// name of the currently active topic. It is safe for concurrent access,
// though the engine serializes steps per conversation.
type Conversation struct {
	ID      string    `json:"id"`
	Context *Context  `json:"context"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	mu          sync.RWMutex
	activeTopic string
}

// NewConversation creates a conversation with an empty context.
func NewConversation(id string) *Conversation {
	now := time.Now()
	return &Conversation{ID: id, Context: NewContext(), Created: now, Updated: now}
}

// ActiveTopic returns the name of the currently active topic, or "" when the
// conversation is idle.
func (c *Conversation) ActiveTopic() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeTopic
}

// SetActiveTopic records the currently active topic and bumps Updated.
func (c *Conversation) SetActiveTopic(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeTopic = name
	c.Updated = time.Now()
}

// ConversationStore manages conversation lifecycles. The in-memory default
// lives in the conversation package; hosts that need durability substitute
// their own implementation and snapshot Context plus the engine's CallStack
// at suspension boundaries.
//
// Get returns the live conversation (not a copy): the engine mutates it in
// place while handling messages.
type ConversationStore interface {
	Get(id string) (*Conversation, error)
	Create(id string) (*Conversation, error)
	Delete(id string) error
}
