package conversation

import (
	"sync"

	"github.com/hupe1980/topicflow/core"
)

// InMemoryStore is a volatile ConversationStore implementation storing
// conversations in a process local map. It is safe for concurrent access.
// Unlike a durable store it returns live conversations: the engine mutates
// the returned Context in place while handling messages.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*core.Conversation)}
}

// Get returns an existing conversation or creates one lazily.
func (s *InMemoryStore) Get(id string) (*core.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[id]; ok {
		return conv, nil
	}
	return s.createLocked(id), nil
}

// Create forces the creation (or overwriting) of a conversation with the given id.
func (s *InMemoryStore) Create(id string) (*core.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(id), nil
}

// Delete discards a conversation. Deleting a missing conversation is a no-op.
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
	return nil
}

// Len returns the number of stored conversations.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// createLocked allocates and stores a new conversation; caller must already
// hold the write lock.
func (s *InMemoryStore) createLocked(id string) *core.Conversation {
	conv := core.NewConversation(id)
	s.conversations[id] = conv
	return conv
}
