package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/topicflow/core"
)

// DefaultResponseTimeout bounds how long a blocking event trigger waits for
// a correlated external response.
const DefaultResponseTimeout = 30 * time.Second

// EventTriggerOptions configures an EventTriggerActivity.
type EventTriggerOptions struct {
	// WaitForResponse blocks the owning topic until a correlated response
	// arrives or the timeout elapses.
	WaitForResponse bool

	// ResponseKey is the context key the response payload is stored under.
	// Mandatory in wait-for-response mode.
	ResponseKey string

	// Timeout bounds the wait for a response. A zero timeout fails
	// immediately when no response is delivered in the same step.
	Timeout time.Duration

	// Message overrides the message surfaced with the run result.
	Message string
}

// WithWaitForResponse enables blocking mode with the given response key and
// timeout.
func WithWaitForResponse(responseKey string, timeout time.Duration) func(*EventTriggerOptions) {
	return func(o *EventTriggerOptions) {
		o.WaitForResponse = true
		o.ResponseKey = responseKey
		o.Timeout = timeout
	}
}

// EventTriggerActivity emits a named external event and either continues
// immediately (fire-and-forget) or suspends the owning topic until a
// correlated response arrives.
//
// In blocking mode the activity records its waiting markers
// ({id}_WaitingForEvent, {id}_ResponseKey) in the conversation context
// before suspending; the markers are cleared exactly when the activity
// leaves the waiting state, whether by response, timeout or cancellation.
type EventTriggerActivity struct {
	BaseActivity
	eventName string
	payload   any
	opts      EventTriggerOptions

	tmu     sync.Mutex
	settled bool
	timer   *time.Timer
}

// NewEventTriggerActivity validates the configuration and constructs the
// activity. An empty event name, or blocking mode without a response key,
// is a construction error, never a runtime one.
func NewEventTriggerActivity(eventName string, payload any, optFns ...func(o *EventTriggerOptions)) (*EventTriggerActivity, error) {
	opts := EventTriggerOptions{Timeout: DefaultResponseTimeout}
	for _, fn := range optFns {
		fn(&opts)
	}

	if eventName == "" {
		return nil, fmt.Errorf("event trigger: event name must not be empty")
	}
	if opts.WaitForResponse && opts.ResponseKey == "" {
		return nil, fmt.Errorf("event trigger %q: wait-for-response mode requires a response key", eventName)
	}

	return &EventTriggerActivity{
		BaseActivity: NewBaseActivity(fmt.Sprintf("event-trigger(%s)", eventName)),
		eventName:    eventName,
		payload:      payload,
		opts:         opts,
	}, nil
}

// EventName returns the external event name this activity emits.
func (a *EventTriggerActivity) EventName() string { return a.eventName }

// ResponseKey returns the context key a response is stored under.
func (a *EventTriggerActivity) ResponseKey() string { return a.opts.ResponseKey }

// Run emits the event and, in blocking mode, writes the waiting markers,
// arms the response timeout and suspends the topic.
func (a *EventTriggerActivity) Run(rc *core.RunContext, _ any) (core.ActivityResult, error) {
	rc.Notify(a.eventName, a.payload)
	rc.LogDebug("external event emitted", "event", a.eventName, "wait", a.opts.WaitForResponse)

	msg := a.opts.Message
	if !a.opts.WaitForResponse {
		if msg == "" {
			msg = fmt.Sprintf("event %q emitted", a.eventName)
		}
		return core.ContinueWithData(msg, a.payload), nil
	}

	rc.Set(core.WaitingEventKey(a.ID()), a.eventName)
	rc.Set(core.ResponseKeyKey(a.ID()), a.opts.ResponseKey)

	a.tmu.Lock()
	a.timer = time.AfterFunc(a.opts.Timeout, func() { a.onTimeout(rc) })
	a.tmu.Unlock()

	if msg == "" {
		msg = fmt.Sprintf("waiting for response to event %q", a.eventName)
	}
	return core.WaitForInput(msg), nil
}

// HandleResponse correlates an external response against the waiting
// markers, stores the payload under the declared response key and completes
// the activity. A response without matching markers is a hard error.
func (a *EventTriggerActivity) HandleResponse(rc *core.RunContext, response any) (core.ActivityResult, error) {
	a.tmu.Lock()
	if a.settled {
		a.tmu.Unlock()
		if err := a.Err(); err != nil {
			return core.ActivityResult{}, err
		}
		return core.ActivityResult{}, fmt.Errorf("event %q: %w", a.eventName, core.ErrMissingCorrelation)
	}
	if !rc.Contains(core.WaitingEventKey(a.ID())) {
		a.tmu.Unlock()
		return core.ActivityResult{}, fmt.Errorf("event %q: %w", a.eventName, core.ErrMissingCorrelation)
	}
	a.settled = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.tmu.Unlock()

	rc.Set(a.opts.ResponseKey, response)
	rc.Delete(core.WaitingEventKey(a.ID()))
	rc.Delete(core.ResponseKeyKey(a.ID()))

	if err := core.CompleteResponseTransitions(a); err != nil {
		return core.ActivityResult{}, err
	}

	rc.LogDebug("event response collected", "event", a.eventName, "response_key", a.opts.ResponseKey)
	return core.ContinueWithData(fmt.Sprintf("response received for event %q", a.eventName), response), nil
}

// onTimeout fails the activity when the deadline elapses with no response.
// The timeout reason is surfaced through Err, not swallowed.
func (a *EventTriggerActivity) onTimeout(rc *core.RunContext) {
	a.tmu.Lock()
	if a.settled {
		a.tmu.Unlock()
		return
	}
	a.settled = true
	a.tmu.Unlock()

	rc.Delete(core.WaitingEventKey(a.ID()))
	rc.Delete(core.ResponseKeyKey(a.ID()))

	err := fmt.Errorf("event %q: %w after %s", a.eventName, core.ErrResponseTimeout, a.opts.Timeout)
	a.setErr(err)
	// The activity may still be Executing when the deadline is zero; both
	// Executing and WaitingForUserInput legally transition to Failed.
	_ = a.SetState(core.ActivityFailed)

	rc.LogError("event response timed out", "event", a.eventName, "timeout", a.opts.Timeout)
}
