package core

// ResultMode discriminates the exclusive outcome a result represents.
type ResultMode int

const (
	// ModeContinue signals the topic should proceed to its next activity.
	ModeContinue ResultMode = iota
	// ModeEnd signals the topic is done with its queue.
	ModeEnd
	// ModeWaitForInput signals the topic must pause for external input.
	ModeWaitForInput
	// ModeWaitForSubTopic signals the topic hands control to a named sub-topic.
	ModeWaitForSubTopic
	// ModeCancelled signals the activity was cancelled cooperatively.
	ModeCancelled
)

// String returns the string representation of the result mode.
func (m ResultMode) String() string {
	switch m {
	case ModeContinue:
		return "continue"
	case ModeEnd:
		return "end"
	case ModeWaitForInput:
		return "wait_for_input"
	case ModeWaitForSubTopic:
		return "wait_for_sub_topic"
	case ModeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ActivityResult is the immutable outcome contract an activity returns.
// Exactly one mode is active per result; the factory functions below enforce
// this by construction. A zero value behaves like Continue with no message.
type ActivityResult struct {
	mode         ResultMode
	message      string
	payload      any
	subTopicName string
	resumeData   any
}

// Continue reports the activity finished and the topic may run the next
// activity in the same invocation.
func Continue(message string) ActivityResult {
	return ActivityResult{mode: ModeContinue, message: message}
}

// ContinueWithData is Continue carrying a payload for downstream activities.
func ContinueWithData(message string, payload any) ActivityResult {
	return ActivityResult{mode: ModeContinue, message: message, payload: payload}
}

// End reports the topic's queue is terminally finished.
func End(message string) ActivityResult {
	return ActivityResult{mode: ModeEnd, message: message}
}

// EndWithData is End carrying a final payload.
func EndWithData(message string, payload any) ActivityResult {
	return ActivityResult{mode: ModeEnd, message: message, payload: payload}
}

// WaitForInput pauses the topic until external input arrives. The prompt is
// surfaced to the user.
func WaitForInput(prompt string) ActivityResult {
	return ActivityResult{mode: ModeWaitForInput, message: prompt}
}

// WaitForInputWithData is WaitForInput carrying a payload (e.g. a card).
func WaitForInputWithData(prompt string, payload any) ActivityResult {
	return ActivityResult{mode: ModeWaitForInput, message: prompt, payload: payload}
}

// WaitForSubTopic suspends the topic and requests the named sub-topic run in
// its place. resumeData is staged on the call-stack frame and handed back to
// this topic when the sub-topic completes.
func WaitForSubTopic(subTopicName string, resumeData any, message string) ActivityResult {
	return ActivityResult{mode: ModeWaitForSubTopic, message: message, subTopicName: subTopicName, resumeData: resumeData}
}

// Cancelled reports cooperative cancellation, distinct from failure.
func Cancelled(message string) ActivityResult {
	return ActivityResult{mode: ModeCancelled, message: message}
}

// Mode returns the exclusive outcome mode.
func (r ActivityResult) Mode() ResultMode { return r.mode }

// IsContinue reports whether the topic should proceed without suspension.
func (r ActivityResult) IsContinue() bool { return r.mode == ModeContinue }

// IsEnd reports whether the result is terminal for the topic.
func (r ActivityResult) IsEnd() bool { return r.mode == ModeEnd }

// IsWaiting reports whether the topic must pause for external input.
func (r ActivityResult) IsWaiting() bool { return r.mode == ModeWaitForInput }

// IsWaitingForSubTopic reports whether control should pass to a sub-topic.
func (r ActivityResult) IsWaitingForSubTopic() bool { return r.mode == ModeWaitForSubTopic }

// IsCancelled reports whether the activity was cancelled.
func (r ActivityResult) IsCancelled() bool { return r.mode == ModeCancelled }

// Message returns the optional human-readable message or prompt.
func (r ActivityResult) Message() string { return r.message }

// Payload returns the optional data attached to the result.
func (r ActivityResult) Payload() any { return r.payload }

// SubTopicName returns the named sub-topic for WaitForSubTopic results.
func (r ActivityResult) SubTopicName() string { return r.subTopicName }

// ResumeData returns the data staged for resumption on WaitForSubTopic results.
func (r ActivityResult) ResumeData() any { return r.resumeData }
