package core

import "fmt"

// Reserved context keys used by the sub-topic call/return mechanism. The
// engine reads KeyNextTopic after every topic finishes; the other keys carry
// data across the call-stack boundary to the resuming caller.
const (
	// KeyNextTopic names the topic the engine should switch to once the
	// current topic finishes its step.
	KeyNextTopic = "NextTopic"

	// KeyResumeData carries the data the caller staged when it triggered the
	// sub-topic, handed back on resumption.
	KeyResumeData = "ResumeData"

	// KeySubTopicCompletionData carries the completed sub-topic's result,
	// observed by the resuming caller's next activity.
	KeySubTopicCompletionData = "SubTopicCompletionData"
)

// WaitingEventKey returns the context key under which a waiting activity
// records the event name it expects a response for.
func WaitingEventKey(activityID string) string {
	return fmt.Sprintf("%s_WaitingForEvent", activityID)
}

// ResponseKeyKey returns the context key under which a waiting activity
// records the key the eventual response payload should be stored under.
func ResponseKeyKey(activityID string) string {
	return fmt.Sprintf("%s_ResponseKey", activityID)
}
