package activity

import (
	"github.com/hupe1980/topicflow/core"
)

// RunFunc is the signature of a plain Go function exposed as an activity.
type RunFunc func(rc *core.RunContext, input any) (core.ActivityResult, error)

// FuncActivity is a generic adapter that exposes a plain Go function as a
// TopicFlow activity. It is the workhorse for building topics: questions,
// lookups, card emission and plain data shuffling are all FuncActivities.
//
// A FuncActivity has no internal mutable state beyond its lifecycle and is
// safe to run from the owning topic's run loop.
type FuncActivity struct {
	BaseActivity
	fn         RunFunc
	responseFn RunFunc
}

// FuncOption customizes a FuncActivity.
type FuncOption func(*FuncActivity)

// WithResponseFunc supplies the handler invoked when an external response
// arrives for this activity. Without it, a WaitForInput result from fn can
// never complete.
func WithResponseFunc(fn RunFunc) FuncOption {
	return func(a *FuncActivity) { a.responseFn = fn }
}

// NewFuncActivity constructs a FuncActivity from a name and run function.
func NewFuncActivity(name string, fn RunFunc, optFns ...FuncOption) *FuncActivity {
	a := &FuncActivity{BaseActivity: NewBaseActivity(name), fn: fn}
	for _, o := range optFns {
		o(a)
	}
	return a
}

// Run invokes the wrapped function.
func (a *FuncActivity) Run(rc *core.RunContext, input any) (core.ActivityResult, error) {
	if a.fn == nil {
		return core.Continue(""), nil
	}
	res, err := a.fn(rc, input)
	if err != nil {
		a.setErr(err)
	}
	return res, err
}

// HandleResponse delivers an external response to the response function and
// walks the waiting-path lifecycle transitions.
func (a *FuncActivity) HandleResponse(rc *core.RunContext, response any) (core.ActivityResult, error) {
	if a.responseFn == nil {
		return a.BaseActivity.HandleResponse(rc, response)
	}

	res, err := a.responseFn(rc, response)
	if err != nil {
		a.setErr(err)
		_ = a.SetState(core.ActivityFailed)
		return res, err
	}

	if err := core.CompleteResponseTransitions(a); err != nil {
		return res, err
	}
	return res, nil
}
