package topic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topicflow/activity"
	"github.com/hupe1980/topicflow/core"
	"github.com/hupe1980/topicflow/internal/testutil"
)

func step(name, message string) core.Activity {
	return activity.NewFuncActivity(name, func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
		return core.Continue(message), nil
	})
}

func TestTopicRunDrainsQueue(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	tp := New("greeting", nil).
		Add(step("hello", "hello"), step("bye", "goodbye"))

	res, err := tp.Run(rc, "hi")
	require.NoError(t, err)

	assert.True(t, res.IsEnd)
	assert.Equal(t, "goodbye", res.Message)
	assert.Equal(t, core.TopicCompleted, tp.State())
}

func TestTopicRunConsumesInputOnce(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	var inputs []any

	record := func(name string) core.Activity {
		return activity.NewFuncActivity(name, func(_ *core.RunContext, input any) (core.ActivityResult, error) {
			inputs = append(inputs, input)
			return core.Continue(""), nil
		})
	}

	tp := New("echo", nil).Add(record("first"), record("second"))

	_, err := tp.Run(rc, "the message")
	require.NoError(t, err)

	require.Len(t, inputs, 2)
	assert.Equal(t, "the message", inputs[0])
	assert.Nil(t, inputs[1])
}

func TestTopicSuspendAndResume(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	ask := activity.NewFuncActivity("ask",
		func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
			return core.WaitForInput("what is your name?"), nil
		},
		activity.WithResponseFunc(func(rc *core.RunContext, response any) (core.ActivityResult, error) {
			rc.Set("name", response)
			return core.Continue(""), nil
		}),
	)

	tp := New("intake", nil).Add(ask, step("thank", "thanks"))

	res, err := tp.Run(rc, "hi")
	require.NoError(t, err)
	assert.True(t, res.IsWaiting)
	assert.Equal(t, "what is your name?", res.Message)
	assert.Equal(t, core.TopicWaitingForUserInput, tp.State())

	res, err = tp.Run(rc, "Ada")
	require.NoError(t, err)
	assert.True(t, res.IsEnd)
	assert.Equal(t, "thanks", res.Message)

	name, ok := rc.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Ada", name)
}

func TestTopicResumeMessageSurvivesSilentTrailingActivities(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	ask := activity.NewFuncActivity("ask",
		func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
			return core.WaitForInput("what is your name?"), nil
		},
		activity.WithResponseFunc(func(rc *core.RunContext, response any) (core.ActivityResult, error) {
			rc.Set("name", response)
			return core.Continue("noted, Ada"), nil
		}),
	)

	tp := New("intake", nil).Add(ask, step("persist", ""), step("audit", ""))

	res, err := tp.Run(rc, "hi")
	require.NoError(t, err)
	require.True(t, res.IsWaiting)

	// The handler's message is the last one spoken; the silent trailing
	// activities must not erase it from the terminal result.
	res, err = tp.Run(rc, "Ada")
	require.NoError(t, err)
	assert.True(t, res.IsEnd)
	assert.Equal(t, "noted, Ada", res.Message)
}

func TestTopicResumeWithoutHandlerKeepsWaiting(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	ask := activity.NewFuncActivity("ask", func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
		return core.WaitForInput("?"), nil
	})

	tp := New("stuck", nil).Add(ask)

	res, err := tp.Run(rc, "hi")
	require.NoError(t, err)
	assert.True(t, res.IsWaiting)

	_, err = tp.Run(rc, "a response")
	require.ErrorIs(t, err, core.ErrNoWaitingActivity)
	assert.Equal(t, core.TopicWaitingForUserInput, tp.State())
}

func TestTopicTerminalRunsAreIdempotent(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	tp := New("oneshot", nil).Add(step("only", "done"))

	first, err := tp.Run(rc, "go")
	require.NoError(t, err)

	second, err := tp.Run(rc, "go again")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestTopicQueueExtendsMidRun(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	planner := activity.NewFuncActivity("planner", func(rc *core.RunContext, _ any) (core.ActivityResult, error) {
		rc.Enqueue(step("extra", "added at runtime"))
		return core.Continue(""), nil
	})

	tp := New("dynamic", nil).Add(planner)

	res, err := tp.Run(rc, "go")
	require.NoError(t, err)

	assert.True(t, res.IsEnd)
	assert.Equal(t, "added at runtime", res.Message)
}

func TestTopicMidRunEnqueueRunsBeforeLaterActivities(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	var order []string
	named := func(name string) core.Activity {
		return activity.NewFuncActivity(name, func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
			order = append(order, name)
			return core.Continue(""), nil
		})
	}

	planner := activity.NewFuncActivity("planner", func(rc *core.RunContext, _ any) (core.ActivityResult, error) {
		rc.Enqueue(named("inserted-1"), named("inserted-2"))
		return core.Continue(""), nil
	})

	// The summary is queued up front but inserted work must run first.
	tp := New("dynamic", nil).Add(planner, named("summary"))

	_, err := tp.Run(rc, "go")
	require.NoError(t, err)

	assert.Equal(t, []string{"inserted-1", "inserted-2", "summary"}, order)
}

func TestTopicExplicitEndSkipsRemainder(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	ran := false

	tp := New("short", nil).Add(
		activity.NewFuncActivity("finish", func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
			return core.End("all set"), nil
		}),
		activity.NewFuncActivity("never", func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
			ran = true
			return core.Continue(""), nil
		}),
	)

	res, err := tp.Run(rc, "go")
	require.NoError(t, err)

	assert.True(t, res.IsEnd)
	assert.Equal(t, "all set", res.Message)
	assert.False(t, ran)
}

func TestTopicActivityErrorFailsStep(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	boom := errors.New("backend unavailable")

	tp := New("fragile", nil, WithErrorTopic("error_handler")).Add(
		activity.NewFuncActivity("lookup", func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
			return core.ActivityResult{}, boom
		}),
	)

	res, err := tp.Run(rc, "go")
	require.NoError(t, err)

	assert.True(t, res.IsFailed)
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, "error_handler", res.NextTopicName)
	assert.Equal(t, core.TopicFailed, tp.State())
	assert.Equal(t, "error_handler", rc.Data.GetString(core.KeyNextTopic))
}

func TestTopicCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := core.NewRunContext(ctx, "conv-1", core.NewID(), core.NewContext(), core.NewCallStack(), nil, nil)

	tp := New("doomed", nil).Add(step("never", ""))

	res, err := tp.Run(rc, "go")
	require.NoError(t, err)

	assert.True(t, res.IsCancelled)
	assert.Equal(t, core.TopicCancelled, tp.State())
}

func TestTopicSubTopicSuspension(t *testing.T) {
	rc, _ := testutil.NewRunContext("conv-1")

	trigger := activity.NewFuncActivity("delegate", func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
		return core.WaitForSubTopic("billing", map[string]any{"order": 42}, "handing over"), nil
	})

	tp := New("parent", nil).Add(trigger, step("after", "back again"))

	res, err := tp.Run(rc, "go")
	require.NoError(t, err)

	assert.True(t, res.IsWaitingForSubTopic)
	assert.Equal(t, "billing", res.SubTopicName)
	assert.Equal(t, map[string]any{"order": 42}, res.ResumeData)
	assert.Equal(t, core.TopicWaitingForSubTopic, tp.State())

	// Control returns with no fresh user input; the queue picks up after
	// the trigger.
	res, err = tp.Run(rc, nil)
	require.NoError(t, err)
	assert.True(t, res.IsEnd)
	assert.Equal(t, "back again", res.Message)
}

func TestTopicScoreIntentClamps(t *testing.T) {
	low := New("low", func(string) float64 { return -0.5 })
	high := New("high", func(string) float64 { return 3.2 })
	none := New("none", nil)

	assert.Equal(t, 0.0, low.ScoreIntent("x"))
	assert.Equal(t, 1.0, high.ScoreIntent("x"))
	assert.Equal(t, 0.0, none.ScoreIntent("x"))
}
