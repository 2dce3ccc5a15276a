package activity

import (
	"fmt"
	"sync"

	"github.com/hupe1980/topicflow/core"
)

// BaseActivity bundles identity, validated lifecycle state and failure
// bookkeeping shared by all activity implementations. Embed it in concrete
// activities and supply a Run method to satisfy core.Activity. All exported
// methods are goroutine-safe.
type BaseActivity struct {
	id   string
	name string

	mu    sync.Mutex
	state core.ActivityState
	err   error
}

// NewBaseActivity constructs a BaseActivity in the Created state with a
// generated id.
func NewBaseActivity(name string) BaseActivity {
	return BaseActivity{id: core.NewID(), name: name, state: core.ActivityCreated}
}

// ID returns the unique identifier for this activity instance.
func (b *BaseActivity) ID() string { return b.id }

// Name returns the human-readable activity name.
func (b *BaseActivity) Name() string { return b.name }

// State returns the current lifecycle state.
func (b *BaseActivity) State() core.ActivityState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetState performs a validated lifecycle transition. Illegal transitions
// (skipped states, re-entering terminal states) are rejected.
func (b *BaseActivity) SetState(s core.ActivityState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !core.CanTransition(b.state, s) {
		return fmt.Errorf("activity %q: illegal transition %v -> %v", b.name, b.state, s)
	}
	b.state = s
	return nil
}

// Err returns the recorded failure reason, if any.
func (b *BaseActivity) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// setErr records the failure reason surfaced by Err.
func (b *BaseActivity) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// HandleResponse rejects responses by default; activities that wait for
// input override this.
func (b *BaseActivity) HandleResponse(_ *core.RunContext, _ any) (core.ActivityResult, error) {
	return core.ActivityResult{}, fmt.Errorf("activity %q does not accept responses: %w", b.name, core.ErrNoWaitingActivity)
}
