package core

import "sync"

// Frame records one suspended "wait for sub-topic" hand-off: which topic
// called which sub-topic and what data flows back on completion.
type Frame struct {
	CallingTopicName string `json:"calling_topic_name"`
	SubTopicName     string `json:"sub_topic_name"`
	ResumeData       any    `json:"resume_data,omitempty"`
	CompletionData   any    `json:"completion_data,omitempty"`
}

// CallStack tracks sub-topic call/return frames per conversation. Multiple
// outstanding frames per conversation are supported; Pop always matches by
// sub-topic name, most-recently-pushed-first, so re-entrant calls resume the
// right caller. Safe for concurrent use across conversations.
type CallStack struct {
	mu     sync.Mutex
	frames map[string][]Frame
}

// NewCallStack creates an empty call stack.
func NewCallStack() *CallStack {
	return &CallStack{frames: map[string][]Frame{}}
}

// Push appends a frame to the conversation's stack.
func (cs *CallStack) Push(conversationID string, f Frame) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.frames[conversationID] = append(cs.frames[conversationID], f)
}

// Pop removes and returns the most recently pushed frame whose SubTopicName
// matches. It returns false when no frame names the sub-topic.
func (cs *CallStack) Pop(conversationID, subTopicName string) (Frame, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	stack := cs.frames[conversationID]
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].SubTopicName != subTopicName {
			continue
		}
		f := stack[i]
		cs.frames[conversationID] = append(stack[:i], stack[i+1:]...)
		if len(cs.frames[conversationID]) == 0 {
			delete(cs.frames, conversationID)
		}
		return f, true
	}
	return Frame{}, false
}

// Peek returns the top frame for the conversation without removing it.
func (cs *CallStack) Peek(conversationID string) (Frame, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	stack := cs.frames[conversationID]
	if len(stack) == 0 {
		return Frame{}, false
	}
	return stack[len(stack)-1], true
}

// Depth returns the number of outstanding frames for the conversation.
func (cs *CallStack) Depth(conversationID string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.frames[conversationID])
}

// Clear drops all frames for a conversation (conversation teardown).
func (cs *CallStack) Clear(conversationID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.frames, conversationID)
}
