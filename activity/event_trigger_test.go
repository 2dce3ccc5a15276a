package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topicflow/core"
	"github.com/hupe1980/topicflow/internal/testutil"
)

func TestNewEventTriggerActivityValidation(t *testing.T) {
	_, err := NewEventTriggerActivity("", nil)
	assert.Error(t, err)

	_, err = NewEventTriggerActivity("test.event", nil, func(o *EventTriggerOptions) {
		o.WaitForResponse = true
	})
	assert.Error(t, err)
}

func TestEventTriggerFireAndForget(t *testing.T) {
	rc, bus := testutil.NewRunContext("conv-1")

	a, err := NewEventTriggerActivity("test.event", "test data")
	require.NoError(t, err)

	require.NoError(t, a.SetState(core.ActivityExecuting))
	res, err := a.Run(rc, nil)
	require.NoError(t, err)

	assert.True(t, res.IsContinue())
	assert.False(t, res.IsWaiting())
	assert.NotEmpty(t, res.Message())
	assert.Equal(t, "test data", res.Payload())

	emitted := bus.ByType("test.event")
	require.Len(t, emitted, 1)
	assert.Equal(t, "test data", emitted[0].Data)

	// No waiting markers in fire-and-forget mode.
	assert.False(t, rc.Contains(core.WaitingEventKey(a.ID())))
}

func TestEventTriggerWaitAndResume(t *testing.T) {
	rc, bus := testutil.NewRunContext("conv-1")

	a, err := NewEventTriggerActivity("payment.requested", map[string]any{"amount": 10},
		WithWaitForResponse("wait_response", time.Minute))
	require.NoError(t, err)

	require.NoError(t, a.SetState(core.ActivityExecuting))
	res, err := a.Run(rc, nil)
	require.NoError(t, err)
	require.NoError(t, core.ApplyRunTransition(a, res))

	assert.True(t, res.IsWaiting())
	assert.Equal(t, core.ActivityWaitingForUserInput, a.State())
	assert.Equal(t, "payment.requested", rc.Data.GetString(core.WaitingEventKey(a.ID())))
	assert.Equal(t, "wait_response", rc.Data.GetString(core.ResponseKeyKey(a.ID())))
	require.Len(t, bus.ByType("payment.requested"), 1)

	res, err = a.HandleResponse(rc, "payment confirmed")
	require.NoError(t, err)

	assert.True(t, res.IsContinue())
	assert.Equal(t, core.ActivityCompleted, a.State())

	stored, ok := rc.Get("wait_response")
	require.True(t, ok)
	assert.Equal(t, "payment confirmed", stored)

	// Markers are cleared exactly when the wait settles.
	assert.False(t, rc.Contains(core.WaitingEventKey(a.ID())))
	assert.False(t, rc.Contains(core.ResponseKeyKey(a.ID())))
}

func TestEventTriggerResponseWithoutMarkersIsRejected(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	a, err := NewEventTriggerActivity("test.event", nil,
		WithWaitForResponse("wait_response", time.Minute))
	require.NoError(t, err)

	// No Run, no markers: the response cannot be correlated.
	_, err = a.HandleResponse(rc, "orphan response")
	assert.ErrorIs(t, err, core.ErrMissingCorrelation)
}

func TestEventTriggerZeroTimeoutFails(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	a, err := NewEventTriggerActivity("test.event", nil,
		WithWaitForResponse("wait_response", 0))
	require.NoError(t, err)

	require.NoError(t, a.SetState(core.ActivityExecuting))
	_, err = a.Run(rc, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return a.State() == core.ActivityFailed
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, a.Err(), core.ErrResponseTimeout)
	assert.False(t, rc.Contains(core.WaitingEventKey(a.ID())))
	assert.False(t, rc.Contains(core.ResponseKeyKey(a.ID())))

	// A late response after the timeout is rejected with the timeout reason.
	_, err = a.HandleResponse(rc, "too late")
	assert.ErrorIs(t, err, core.ErrResponseTimeout)
}

func TestEventTriggerDoubleResponse(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	a, err := NewEventTriggerActivity("test.event", nil,
		WithWaitForResponse("wait_response", time.Minute))
	require.NoError(t, err)

	require.NoError(t, a.SetState(core.ActivityExecuting))
	res, err := a.Run(rc, nil)
	require.NoError(t, err)
	require.NoError(t, core.ApplyRunTransition(a, res))

	_, err = a.HandleResponse(rc, "first")
	require.NoError(t, err)

	_, err = a.HandleResponse(rc, "second")
	assert.ErrorIs(t, err, core.ErrMissingCorrelation)
}
