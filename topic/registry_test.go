package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topicflow/activity"
	"github.com/hupe1980/topicflow/core"
	"github.com/hupe1980/topicflow/internal/testutil"
	"github.com/hupe1980/topicflow/scorer"
)

func bareTopic(name string, score core.ScoreFunc) core.TopicFactory {
	return func() core.TopicRunner { return New(name, score) }
}

func TestRegistryRegisterAndPrototype(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(bareTopic("alpha", nil)))
	require.NoError(t, r.Register(bareTopic("beta", nil)))

	got, err := r.Prototype("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name())

	_, err = r.Prototype("missing")
	assert.ErrorIs(t, err, core.ErrTopicNotFound)
	_, err = r.Materialize("missing")
	assert.ErrorIs(t, err, core.ErrTopicNotFound)
}

func TestRegistryRejectsInvalidFactories(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(func() core.TopicRunner { return nil }))
	assert.Error(t, r.Register(bareTopic("", nil)))
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(bareTopic(name, nil)))
	}

	var names []string
	for _, tp := range r.Prototypes() {
		names = append(names, tp.Name())
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
	assert.Equal(t, 3, r.Len())
}

func TestRegistryMaterializeProducesFreshInstances(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(func() core.TopicRunner {
		return New("orders", nil).Add(activity.NewFuncActivity("noop",
			func(_ *core.RunContext, _ any) (core.ActivityResult, error) {
				return core.End("done"), nil
			}))
	}))

	first, err := r.Materialize("orders")
	require.NoError(t, err)
	second, err := r.Materialize("orders")
	require.NoError(t, err)
	require.NotSame(t, first, second)

	// Running one instance to completion must not touch the other or the
	// prototype the registry scores with.
	rc, _ := testutil.NewRunContext("conv-1")
	_, err = first.Run(rc, "go")
	require.NoError(t, err)
	assert.True(t, first.State().IsTerminal())
	assert.Equal(t, core.TopicCreated, second.State())

	proto, err := r.Prototype("orders")
	require.NoError(t, err)
	assert.Equal(t, core.TopicCreated, proto.State())
}

func TestRegistryDefaultPolicyRejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(bareTopic("orders", nil)))
	assert.Error(t, r.Register(bareTopic("orders", nil)))
	assert.Equal(t, 1, r.Len())
}

func TestRegistryCustomPolicy(t *testing.T) {
	r := NewRegistry(WithReregistrationPolicy(func(_, _ core.TopicRunner) error {
		return nil
	}))

	require.NoError(t, r.Register(bareTopic("orders", nil)))
	require.NoError(t, r.Register(bareTopic("payments", nil)))
	require.NoError(t, r.Register(bareTopic("orders", scorer.Constant(1))))
	assert.Equal(t, 2, r.Len())

	// The replacement keeps the original slot and the new definition wins.
	var names []string
	for _, tp := range r.Prototypes() {
		names = append(names, tp.Name())
	}
	assert.Equal(t, []string{"orders", "payments"}, names)

	got, err := r.Prototype("orders")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.ScoreIntent("anything"))
}
