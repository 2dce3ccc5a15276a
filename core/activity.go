package core

import "fmt"

// ActivityState models the lifecycle of a single activity. Transitions are
// validated; an activity can never skip a state.
type ActivityState int

const (
	// ActivityCreated is the initial state after construction.
	ActivityCreated ActivityState = iota
	// ActivityExecuting marks an in-flight Run call.
	ActivityExecuting
	// ActivityExecuted marks a Run that returned Continue or End.
	ActivityExecuted
	// ActivityWaitingForUserInput marks a Run that returned WaitForInput.
	ActivityWaitingForUserInput
	// ActivityUserInputCollected marks a delivered external response being processed.
	ActivityUserInputCollected
	// ActivityCompleted is the terminal success state of the waiting path.
	ActivityCompleted
	// ActivityFailed is the terminal failure state.
	ActivityFailed
	// ActivityCancelled is the terminal cooperative-cancellation state.
	ActivityCancelled
)

// String returns the string representation of the activity state.
func (s ActivityState) String() string {
	switch s {
	case ActivityCreated:
		return "Created"
	case ActivityExecuting:
		return "Executing"
	case ActivityExecuted:
		return "Executed"
	case ActivityWaitingForUserInput:
		return "WaitingForUserInput"
	case ActivityUserInputCollected:
		return "UserInputCollected"
	case ActivityCompleted:
		return "Completed"
	case ActivityFailed:
		return "Failed"
	case ActivityCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transition is possible from s.
func (s ActivityState) IsTerminal() bool {
	switch s {
	case ActivityExecuted, ActivityCompleted, ActivityFailed, ActivityCancelled:
		return true
	default:
		return false
	}
}

// activityTransitions is the exhaustive transition table. Anything absent is
// an illegal transition.
var activityTransitions = map[ActivityState][]ActivityState{
	ActivityCreated:   {ActivityExecuting},
	ActivityExecuting: {ActivityExecuted, ActivityWaitingForUserInput, ActivityFailed, ActivityCancelled},
	ActivityWaitingForUserInput: {
		ActivityUserInputCollected, ActivityFailed, ActivityCancelled,
	},
	ActivityUserInputCollected: {ActivityCompleted, ActivityFailed},
}

// CanTransition reports whether from → to is a legal lifecycle transition.
func CanTransition(from, to ActivityState) bool {
	for _, next := range activityTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Activity is the unit of conversational work. Implementations embed
// activity.BaseActivity for identity and state plumbing and provide Run (and
// HandleResponse when they accept external input).
//
// Contract:
//   - Run must be cancel-aware via rc.Context and must never block a thread
//     to wait for external input; waiting is expressed by returning a
//     WaitForInput result after writing correlation markers to the context
//   - HandleResponse is invoked when an external response arrives for a
//     waiting activity; implementations own the UserInputCollected →
//     Completed transitions and must clear their waiting markers
//   - SetState rejects any transition not in the lifecycle table
type Activity interface {
	// ID returns the unique identifier for this activity instance.
	ID() string

	// Name returns the human-readable activity name.
	Name() string

	// State returns the current lifecycle state.
	State() ActivityState

	// SetState performs a validated lifecycle transition.
	SetState(s ActivityState) error

	// Run executes the activity. input is the inbound message for the first
	// activity of a run step and nil otherwise.
	Run(rc *RunContext, input any) (ActivityResult, error)

	// HandleResponse delivers an external response to a waiting activity.
	HandleResponse(rc *RunContext, response any) (ActivityResult, error)
}

// ActivityQueue is the seam through which activities extend the queue of the
// topic currently running them (e.g. the repeat controller enqueuing the
// next iteration based on data just collected).
type ActivityQueue interface {
	Enqueue(activities ...Activity)
}

// ApplyRunTransition moves a just-executed activity into the state implied by
// its result. The caller must have transitioned the activity to Executing
// before Run.
func ApplyRunTransition(a Activity, res ActivityResult) error {
	var target ActivityState
	switch res.Mode() {
	case ModeContinue, ModeEnd, ModeWaitForSubTopic:
		target = ActivityExecuted
	case ModeWaitForInput:
		target = ActivityWaitingForUserInput
	case ModeCancelled:
		target = ActivityCancelled
	default:
		return fmt.Errorf("unknown result mode %v for activity %q", res.Mode(), a.Name())
	}
	return a.SetState(target)
}

// CompleteResponseTransitions walks a waiting activity through
// UserInputCollected to Completed after a successful response.
func CompleteResponseTransitions(a Activity) error {
	if err := a.SetState(ActivityUserInputCollected); err != nil {
		return err
	}
	return a.SetState(ActivityCompleted)
}
