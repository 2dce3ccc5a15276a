package topic

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/topicflow/core"
)

// Options configures a Topic.
type Options struct {
	// ErrorTopic names a designated error-handling topic. When set, a failed
	// step stages it as NextTopic so the engine routes there instead of
	// terminating the conversation step silently.
	ErrorTopic string
}

// WithErrorTopic designates the error-handling topic.
func WithErrorTopic(name string) func(*Options) {
	return func(o *Options) { o.ErrorTopic = name }
}

// Topic is an ordered queue of activities plus an intent-confidence
// function. It runs its queue to completion or to a pause point and tracks
// a lifecycle mirroring the suspension model: Created → Starting → Running →
// WaitingForUserInput | WaitingForSubTopic → Resuming → Completed | Failed |
// Cancelled.
//
// A Topic instance belongs to one conversation's flow; once terminated it is
// never re-run (re-invoking Run returns the cached terminal result).
type Topic struct {
	name  string
	score core.ScoreFunc
	opts  Options

	mu      sync.Mutex
	state   core.TopicState
	queue   []core.Activity
	cursor  int
	waiting core.Activity
	final   *core.TopicResult
}

// New constructs a topic with the given name and intent-confidence function.
// A nil score function scores every message at zero, which keeps the topic
// reachable only via sub-topic triggers or explicit NextTopic routing.
func New(name string, score core.ScoreFunc, optFns ...func(o *Options)) *Topic {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Topic{name: name, score: score, opts: opts, state: core.TopicCreated}
}

// Name returns the unique topic name.
func (t *Topic) Name() string { return t.name }

// State returns the current lifecycle state.
func (t *Topic) State() core.TopicState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// ScoreIntent returns the intent confidence for the message, clamped to [0,1].
func (t *Topic) ScoreIntent(message string) float64 {
	if t.score == nil {
		return 0
	}
	s := t.score(message)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Add appends activities to the queue and returns the topic for chaining.
func (t *Topic) Add(activities ...core.Activity) *Topic {
	t.Enqueue(activities...)
	return t
}

// Enqueue adds activities to the queue. Before the first run they are
// appended in order. While a run is in flight they are inserted right after
// the current activity, so dynamically produced work (repeat iterations,
// follow-up questions) runs before anything queued behind it, such as a
// summary step.
func (t *Topic) Enqueue(activities ...core.Activity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == core.TopicCreated || t.cursor >= len(t.queue) {
		t.queue = append(t.queue, activities...)
		return
	}
	idx := t.cursor + 1
	q := make([]core.Activity, 0, len(t.queue)+len(activities))
	q = append(q, t.queue[:idx]...)
	q = append(q, activities...)
	q = append(q, t.queue[idx:]...)
	t.queue = q
}

// QueueLen returns the current queue length.
func (t *Topic) QueueLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// Run drains the queue from the current cursor. Depending on the topic's
// state this is a fresh start, a resumption from a pause point, or a no-op
// when the topic already terminated. input carries the inbound user message
// (or external response) and is consumed by the first activity it reaches.
func (t *Topic) Run(rc *core.RunContext, input any) (*core.TopicResult, error) {
	t.mu.Lock()
	switch {
	case t.state.IsTerminal():
		final := t.finalLocked()
		t.mu.Unlock()
		return final, nil
	case t.state == core.TopicCreated:
		t.state = core.TopicStarting
	case t.state == core.TopicWaitingForUserInput, t.state == core.TopicWaitingForSubTopic:
		t.state = core.TopicResuming
	default:
		t.state = core.TopicRunning
	}
	resumeInput := t.state == core.TopicResuming && t.waiting != nil
	t.mu.Unlock()

	rc = rc.ForTopic(t.name, t)

	var seed string
	if resumeInput {
		res, msg, done, err := t.resumeWaiting(rc, input)
		if err != nil || done {
			return res, err
		}
		seed = msg
		input = nil
	}

	t.mu.Lock()
	t.state = core.TopicRunning
	t.mu.Unlock()

	return t.drain(rc, input, seed)
}

// resumeWaiting delivers an external response to the waiting activity.
// done reports that the run ended inside the handler (failure or a handler
// that suspended again); otherwise the caller continues draining, seeded
// with the handler's message so it survives as the terminal message when
// every remaining activity stays silent.
func (t *Topic) resumeWaiting(rc *core.RunContext, input any) (*core.TopicResult, string, bool, error) {
	t.mu.Lock()
	w := t.waiting
	t.mu.Unlock()

	if w == nil {
		return nil, "", true, fmt.Errorf("topic %q: %w", t.name, core.ErrNoWaitingActivity)
	}

	// A waiting activity may have failed while suspended (response timeout).
	if w.State() == core.ActivityFailed {
		var cause error
		if f, ok := w.(interface{ Err() error }); ok {
			cause = f.Err()
		}
		if cause == nil {
			cause = fmt.Errorf("activity %q failed while waiting", w.Name())
		}
		return t.fail(rc, cause), "", true, nil
	}

	res, err := w.HandleResponse(rc, input)
	if err != nil {
		// Correlation problems are hard errors: the topic keeps waiting
		// rather than guessing; everything else fails the step.
		if errors.Is(err, core.ErrMissingCorrelation) || errors.Is(err, core.ErrNoWaitingActivity) {
			t.mu.Lock()
			t.state = core.TopicWaitingForUserInput
			t.mu.Unlock()
			return nil, "", true, err
		}
		return t.fail(rc, err), "", true, nil
	}

	t.mu.Lock()
	t.waiting = nil
	t.cursor++
	t.mu.Unlock()

	rc.LogDebug("waiting activity completed", "topic", t.name, "activity", w.Name())

	switch res.Mode() {
	case core.ModeEnd:
		return t.complete(rc, res), "", true, nil
	case core.ModeCancelled:
		return t.cancel(rc, res.Message()), "", true, nil
	case core.ModeWaitForSubTopic:
		return t.suspendForSubTopic(res), "", true, nil
	default:
		return nil, res.Message(), false, nil
	}
}

// drain pops and runs activities until the queue empties or an activity
// requests a suspension or terminal outcome. lastMessage seeds the terminal
// message for runs resumed from a response handler.
func (t *Topic) drain(rc *core.RunContext, input any, lastMessage string) (*core.TopicResult, error) {
	for {
		if err := rc.Err(); err != nil {
			return t.cancel(rc, err.Error()), nil
		}

		t.mu.Lock()
		if t.cursor >= len(t.queue) {
			t.mu.Unlock()
			break
		}
		act := t.queue[t.cursor]
		t.mu.Unlock()

		if err := act.SetState(core.ActivityExecuting); err != nil {
			return t.fail(rc, err), nil
		}

		res, err := act.Run(rc, input)
		input = nil
		if err != nil {
			_ = act.SetState(core.ActivityFailed)
			return t.fail(rc, err), nil
		}

		if terr := core.ApplyRunTransition(act, res); terr != nil {
			// The activity may have raced into Failed (zero-deadline event
			// timeouts); prefer its own failure reason over the transition
			// error.
			if f, ok := act.(interface{ Err() error }); ok && f.Err() != nil {
				return t.fail(rc, f.Err()), nil
			}
			return t.fail(rc, terr), nil
		}

		rc.LogDebug("activity finished", "topic", t.name, "activity", act.Name(), "mode", res.Mode().String())

		switch res.Mode() {
		case core.ModeContinue:
			if res.Message() != "" {
				lastMessage = res.Message()
			}
			t.mu.Lock()
			t.cursor++
			t.mu.Unlock()

		case core.ModeWaitForInput:
			t.mu.Lock()
			t.waiting = act
			t.state = core.TopicWaitingForUserInput
			t.mu.Unlock()
			return &core.TopicResult{
				TopicName: t.name,
				Message:   res.Message(),
				Payload:   res.Payload(),
				IsWaiting: true,
			}, nil

		case core.ModeWaitForSubTopic:
			t.mu.Lock()
			t.cursor++
			t.mu.Unlock()
			return t.suspendForSubTopic(res), nil

		case core.ModeEnd:
			t.mu.Lock()
			t.cursor++
			t.mu.Unlock()
			return t.complete(rc, res), nil

		case core.ModeCancelled:
			return t.cancel(rc, res.Message()), nil
		}
	}

	// Queue exhausted without an explicit End; the topic is done.
	return t.complete(rc, core.End(lastMessage)), nil
}

// suspendForSubTopic records the suspension and reports the hand-down
// request upward; the engine pushes the call-stack frame.
func (t *Topic) suspendForSubTopic(res core.ActivityResult) *core.TopicResult {
	t.mu.Lock()
	t.state = core.TopicWaitingForSubTopic
	t.mu.Unlock()
	return &core.TopicResult{
		TopicName:            t.name,
		Message:              res.Message(),
		Payload:              res.Payload(),
		SubTopicName:         res.SubTopicName(),
		ResumeData:           res.ResumeData(),
		IsWaitingForSubTopic: true,
	}
}

func (t *Topic) complete(rc *core.RunContext, res core.ActivityResult) *core.TopicResult {
	final := &core.TopicResult{
		TopicName:     t.name,
		Message:       res.Message(),
		Payload:       res.Payload(),
		NextTopicName: rc.Data.GetString(core.KeyNextTopic),
		IsEnd:         true,
	}
	t.mu.Lock()
	t.state = core.TopicCompleted
	t.final = final
	t.mu.Unlock()
	return final
}

func (t *Topic) cancel(rc *core.RunContext, message string) *core.TopicResult {
	final := &core.TopicResult{
		TopicName:   t.name,
		Message:     message,
		IsCancelled: true,
	}
	t.mu.Lock()
	t.state = core.TopicCancelled
	t.final = final
	t.mu.Unlock()
	rc.LogInfo("topic cancelled", "topic", t.name)
	return final
}

func (t *Topic) fail(rc *core.RunContext, cause error) *core.TopicResult {
	if t.opts.ErrorTopic != "" {
		rc.Set(core.KeyNextTopic, t.opts.ErrorTopic)
	}
	final := &core.TopicResult{
		TopicName:     t.name,
		Message:       cause.Error(),
		NextTopicName: rc.Data.GetString(core.KeyNextTopic),
		IsFailed:      true,
		Err:           cause,
	}
	t.mu.Lock()
	t.state = core.TopicFailed
	t.final = final
	t.mu.Unlock()
	rc.LogError("topic failed", "topic", t.name, "error", cause)
	return final
}

// finalLocked returns the cached terminal result; caller holds the lock.
func (t *Topic) finalLocked() *core.TopicResult {
	if t.final != nil {
		return t.final
	}
	return &core.TopicResult{TopicName: t.name, IsEnd: t.state == core.TopicCompleted}
}
