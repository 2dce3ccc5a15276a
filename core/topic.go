package core

// TopicState models the lifecycle of a topic across run-loop steps.
type TopicState int

const (
	// TopicCreated is the initial state after construction.
	TopicCreated TopicState = iota
	// TopicStarting marks a topic about to drain its queue for the first time.
	TopicStarting
	// TopicRunning marks an in-flight run-loop step.
	TopicRunning
	// TopicWaitingForUserInput marks a topic paused for external input.
	TopicWaitingForUserInput
	// TopicWaitingForSubTopic marks a topic suspended behind a sub-topic.
	TopicWaitingForSubTopic
	// TopicResuming marks a suspended topic being re-entered.
	TopicResuming
	// TopicCompleted is the terminal success state.
	TopicCompleted
	// TopicFailed is the terminal failure state.
	TopicFailed
	// TopicCancelled is the terminal cooperative-cancellation state.
	TopicCancelled
)

// String returns the string representation of the topic state.
func (s TopicState) String() string {
	switch s {
	case TopicCreated:
		return "Created"
	case TopicStarting:
		return "Starting"
	case TopicRunning:
		return "Running"
	case TopicWaitingForUserInput:
		return "WaitingForUserInput"
	case TopicWaitingForSubTopic:
		return "WaitingForSubTopic"
	case TopicResuming:
		return "Resuming"
	case TopicCompleted:
		return "Completed"
	case TopicFailed:
		return "Failed"
	case TopicCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the topic can never run again.
func (s TopicState) IsTerminal() bool {
	switch s {
	case TopicCompleted, TopicFailed, TopicCancelled:
		return true
	default:
		return false
	}
}

// ScoreFunc is a topic's intent-confidence function over an inbound message,
// returning a value in [0,1]. The engine never interprets language itself;
// scoring is fully pluggable (see the scorer package for building blocks).
type ScoreFunc func(message string) float64

// TopicResult is the outcome of one topic run-loop step, propagated back
// through the engine to the caller as a single response record.
type TopicResult struct {
	TopicName string `json:"topic_name"`
	Message   string `json:"message,omitempty"`
	Payload   any    `json:"payload,omitempty"`

	// SubTopicName names the sub-topic requested by a WaitForSubTopic step.
	SubTopicName string `json:"sub_topic_name,omitempty"`

	// ResumeData is the data staged by a WaitForSubTopic step for the
	// call-stack frame the engine pushes.
	ResumeData any `json:"resume_data,omitempty"`

	// NextTopicName mirrors the NextTopic context value observed when the
	// step finished; the engine consumes the context key itself.
	NextTopicName string `json:"next_topic_name,omitempty"`

	IsWaiting            bool `json:"is_waiting"`
	IsWaitingForSubTopic bool `json:"is_waiting_for_sub_topic"`
	IsEnd                bool `json:"is_end"`
	IsCancelled          bool `json:"is_cancelled"`
	IsFailed             bool `json:"is_failed"`

	// Err carries the failure reason when IsFailed is set. Errors never
	// escape the engine boundary as panics.
	Err error `json:"-"`
}

// TopicFactory produces a fresh topic instance. Factories are what hosts
// register: the engine materializes one instance per conversation from the
// factory, so topic run state (cursor, waiting activity, cached terminal
// result) never leaks across conversations. A factory must return a new
// value on every call; returning a shared instance reintroduces exactly the
// cross-conversation bleed the factory contract exists to prevent.
type TopicFactory func() TopicRunner

// TopicRunner is the contract topics expose to the engine. topic.Topic is
// the canonical implementation.
type TopicRunner interface {
	// Name returns the unique topic name.
	Name() string

	// ScoreIntent returns the confidence in [0,1] that the message belongs
	// to this topic.
	ScoreIntent(message string) float64

	// State returns the current lifecycle state.
	State() TopicState

	// Run drains the activity queue from the current cursor until a pause
	// point or terminal outcome. Invoking Run on a Completed topic is a
	// no-op returning the cached terminal result.
	Run(rc *RunContext, input any) (*TopicResult, error)
}
