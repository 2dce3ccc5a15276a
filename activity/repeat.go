package activity

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/topicflow/core"
)

// ActivityFactory produces one iteration of a repeated activity pattern.
// The iteration id starts at zero and increments per produced activity.
type ActivityFactory func(iteration int, rc *core.RunContext) core.Activity

// ContinueFunc decides, from the user's reply to a continuation prompt,
// whether another iteration should run.
type ContinueFunc func(response any) bool

// RepeatOptions configures a RepeatController.
type RepeatOptions struct {
	// FixedCount enqueues exactly N iterations up front. Mutually exclusive
	// with user-prompted mode.
	FixedCount int

	// Prompt is the continuation question asked after each iteration in
	// user-prompted mode.
	Prompt string

	// ContinueFunc interprets the user's reply to the prompt. Defaults to
	// accepting yes/y/continue/sure/ok (case-insensitive).
	ContinueFunc ContinueFunc
}

// WithFixedCount selects fixed-count mode.
func WithFixedCount(n int) func(*RepeatOptions) {
	return func(o *RepeatOptions) { o.FixedCount = n }
}

// WithContinuationPrompt selects user-prompted mode with the given question.
func WithContinuationPrompt(prompt string) func(*RepeatOptions) {
	return func(o *RepeatOptions) { o.Prompt = prompt }
}

// WithContinueFunc overrides the reply interpretation.
func WithContinueFunc(fn ContinueFunc) func(*RepeatOptions) {
	return func(o *RepeatOptions) { o.ContinueFunc = fn }
}

// DefaultContinueFunc accepts the usual affirmative replies.
func DefaultContinueFunc(response any) bool {
	s, ok := response.(string)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "continue", "sure", "ok":
		return true
	default:
		return false
	}
}

// RepeatController drives zero-or-more iterations of an activity-producing
// factory, either a fixed count or governed by a per-iteration continuation
// decision. Iterations are enqueued onto the owning topic's queue while the
// run loop drains it, so each iteration can react to data just collected.
//
// Completed iteration results accumulate in order; they are exposed via
// Results and mirrored into the conversation context under "{name}_Results"
// for a final summary step. The iteration count is unbounded only in
// user-prompted mode and is always finite within a conversation.
type RepeatController struct {
	BaseActivity
	factory ActivityFactory
	opts    RepeatOptions

	resMu   sync.Mutex // guards results and next
	results []any
	next    int
}

// NewRepeatController validates the mode selection and constructs the
// controller.
func NewRepeatController(name string, factory ActivityFactory, optFns ...func(o *RepeatOptions)) (*RepeatController, error) {
	if factory == nil {
		return nil, fmt.Errorf("repeat %q: factory must not be nil", name)
	}
	opts := RepeatOptions{ContinueFunc: DefaultContinueFunc}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FixedCount > 0 && opts.Prompt != "" {
		return nil, fmt.Errorf("repeat %q: fixed count and continuation prompt are mutually exclusive", name)
	}
	if opts.FixedCount <= 0 && opts.Prompt == "" {
		return nil, fmt.Errorf("repeat %q: either a fixed count or a continuation prompt is required", name)
	}
	if opts.ContinueFunc == nil {
		opts.ContinueFunc = DefaultContinueFunc
	}

	return &RepeatController{
		BaseActivity: NewBaseActivity(name),
		factory:      factory,
		opts:         opts,
	}, nil
}

// Results returns the completed iteration results in order.
func (c *RepeatController) Results() []any {
	c.resMu.Lock()
	defer c.resMu.Unlock()
	out := make([]any, len(c.results))
	copy(out, c.results)
	return out
}

// ResultsKey returns the context key the accumulated results live under.
func (c *RepeatController) ResultsKey() string {
	return fmt.Sprintf("%s_Results", c.Name())
}

// Run seeds the owning topic's queue with the first iteration(s).
func (c *RepeatController) Run(rc *core.RunContext, _ any) (core.ActivityResult, error) {
	if c.opts.FixedCount > 0 {
		acts := make([]core.Activity, 0, c.opts.FixedCount)
		for i := 0; i < c.opts.FixedCount; i++ {
			acts = append(acts, c.wrap(c.nextIteration(), rc))
		}
		rc.Enqueue(acts...)
		return core.Continue(fmt.Sprintf("running %d iterations of %q", c.opts.FixedCount, c.Name())), nil
	}

	rc.Enqueue(c.wrap(c.nextIteration(), rc), c.newDecision())
	return core.Continue(fmt.Sprintf("starting %q", c.Name())), nil
}

func (c *RepeatController) nextIteration() int {
	c.resMu.Lock()
	defer c.resMu.Unlock()
	n := c.next
	c.next++
	return n
}

func (c *RepeatController) record(rc *core.RunContext, payload any) {
	c.resMu.Lock()
	c.results = append(c.results, payload)
	snapshot := make([]any, len(c.results))
	copy(snapshot, c.results)
	c.resMu.Unlock()

	rc.Set(c.ResultsKey(), snapshot)
	rc.Notify(core.EventTypeModelBound, payload)
}

func (c *RepeatController) wrap(iteration int, rc *core.RunContext) *repeatIteration {
	inner := c.factory(iteration, rc)
	return &repeatIteration{
		BaseActivity: NewBaseActivity(fmt.Sprintf("%s[%d]", c.Name(), iteration)),
		inner:        inner,
		ctrl:         c,
	}
}

func (c *RepeatController) newDecision() *repeatDecision {
	return &repeatDecision{
		BaseActivity: NewBaseActivity(fmt.Sprintf("%s-continue", c.Name())),
		ctrl:         c,
	}
}

// repeatIteration runs one produced activity and records its result on
// completion, mirroring the lifecycle transitions onto the inner activity.
type repeatIteration struct {
	BaseActivity
	inner core.Activity
	ctrl  *RepeatController
}

func (a *repeatIteration) Run(rc *core.RunContext, input any) (core.ActivityResult, error) {
	if err := a.inner.SetState(core.ActivityExecuting); err != nil {
		return core.ActivityResult{}, err
	}
	res, err := a.inner.Run(rc, input)
	if err != nil {
		a.setErr(err)
		_ = a.inner.SetState(core.ActivityFailed)
		return res, err
	}
	if err := core.ApplyRunTransition(a.inner, res); err != nil {
		return res, err
	}
	if res.IsContinue() || res.IsEnd() {
		a.ctrl.record(rc, res.Payload())
	}
	return res, nil
}

func (a *repeatIteration) HandleResponse(rc *core.RunContext, response any) (core.ActivityResult, error) {
	res, err := a.inner.HandleResponse(rc, response)
	if err != nil {
		a.setErr(err)
		_ = a.SetState(core.ActivityFailed)
		return res, err
	}
	if err := core.CompleteResponseTransitions(a); err != nil {
		return res, err
	}
	a.ctrl.record(rc, res.Payload())
	return res, nil
}

// repeatDecision asks the continuation question and, on an affirmative
// reply, enqueues the next iteration plus another decision.
type repeatDecision struct {
	BaseActivity
	ctrl *RepeatController
}

func (a *repeatDecision) Run(_ *core.RunContext, _ any) (core.ActivityResult, error) {
	return core.WaitForInput(a.ctrl.opts.Prompt), nil
}

func (a *repeatDecision) HandleResponse(rc *core.RunContext, response any) (core.ActivityResult, error) {
	if a.ctrl.opts.ContinueFunc(response) {
		rc.Enqueue(a.ctrl.wrap(a.ctrl.nextIteration(), rc), a.ctrl.newDecision())
		if err := core.CompleteResponseTransitions(a); err != nil {
			return core.ActivityResult{}, err
		}
		return core.Continue("continuing"), nil
	}

	if err := core.CompleteResponseTransitions(a); err != nil {
		return core.ActivityResult{}, err
	}
	return core.Continue(fmt.Sprintf("collected %d result(s) for %q", len(a.ctrl.Results()), a.ctrl.Name())), nil
}
