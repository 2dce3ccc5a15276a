package activity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topicflow/core"
	"github.com/hupe1980/topicflow/internal/testutil"
)

func TestBaseActivityLifecycle(t *testing.T) {
	a := NewFuncActivity("noop", nil)

	assert.NotEmpty(t, a.ID())
	assert.Equal(t, "noop", a.Name())
	assert.Equal(t, core.ActivityCreated, a.State())

	require.NoError(t, a.SetState(core.ActivityExecuting))
	require.NoError(t, a.SetState(core.ActivityExecuted))

	// Executed is terminal for the run path.
	assert.Error(t, a.SetState(core.ActivityExecuting))
}

func TestBaseActivityRejectsInvalidTransition(t *testing.T) {
	a := NewFuncActivity("noop", nil)

	err := a.SetState(core.ActivityCompleted)
	require.Error(t, err)
	assert.Equal(t, core.ActivityCreated, a.State())
}

func TestBaseActivityResponseWithoutHandler(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")
	a := NewFuncActivity("noop", nil)

	_, err := a.HandleResponse(rc, "surprise")
	assert.ErrorIs(t, err, core.ErrNoWaitingActivity)
}

func TestFuncActivityRunError(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")
	boom := errors.New("boom")

	a := NewFuncActivity("fails", func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
		return core.ActivityResult{}, boom
	})

	require.NoError(t, a.SetState(core.ActivityExecuting))
	_, err := a.Run(rc, nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, a.Err(), boom)
}

func TestFuncActivityResponseError(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")
	boom := errors.New("bad response")

	a := NewFuncActivity("asks",
		func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
			return core.WaitForInput("?"), nil
		},
		WithResponseFunc(func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
			return core.ActivityResult{}, boom
		}),
	)

	require.NoError(t, a.SetState(core.ActivityExecuting))
	res, err := a.Run(rc, nil)
	require.NoError(t, err)
	require.NoError(t, core.ApplyRunTransition(a, res))

	_, err = a.HandleResponse(rc, "anything")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, core.ActivityFailed, a.State())
}
