package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topicflow/core"
)

func TestBusPublishFansOut(t *testing.T) {
	bus := New()

	var typed, all []string

	bus.Subscribe(core.EventTypeTopicCompleted, func(e core.TopicEvent) {
		typed = append(typed, e.TopicName)
	})
	bus.SubscribeAll(func(e core.TopicEvent) {
		all = append(all, e.EventType)
	})

	bus.Publish(core.NewTopicEvent(core.EventTypeTopicActivated, "greeting", "conv-1", nil))
	bus.Publish(core.NewTopicEvent(core.EventTypeTopicCompleted, "greeting", "conv-1", nil))

	assert.Equal(t, []string{"greeting"}, typed)
	assert.Equal(t, []string{core.EventTypeTopicActivated, core.EventTypeTopicCompleted}, all)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := New()

	var count int
	cancel := bus.SubscribeAll(func(core.TopicEvent) { count++ })

	bus.Publish(core.NewTopicEvent(core.EventTypeTopicActivated, "a", "conv-1", nil))
	cancel()
	bus.Publish(core.NewTopicEvent(core.EventTypeTopicActivated, "a", "conv-1", nil))

	assert.Equal(t, 1, count)
}

func TestBusPanicIsolation(t *testing.T) {
	bus := New()

	var reached bool
	bus.SubscribeAll(func(core.TopicEvent) { panic("subscriber bug") })
	bus.SubscribeAll(func(core.TopicEvent) { reached = true })

	require.NotPanics(t, func() {
		bus.Publish(core.NewTopicEvent(core.EventTypeTopicActivated, "a", "conv-1", nil))
	})
	assert.True(t, reached)
	assert.Len(t, bus.History(), 1)
}

func TestBusHistoryVisibleToSubscribers(t *testing.T) {
	bus := New()

	var seen int
	bus.SubscribeAll(func(core.TopicEvent) {
		seen = len(bus.History())
	})

	bus.Publish(core.NewTopicEvent(core.EventTypeTopicActivated, "a", "conv-1", nil))

	// The triggering event is already in history when the handler runs.
	assert.Equal(t, 1, seen)
}

func TestBusHistoryQueries(t *testing.T) {
	bus := New()

	e1 := core.NewTopicEvent(core.EventTypeTopicActivated, "greeting", "conv-1", nil).WithCorrelation("msg-1")
	e2 := core.NewTopicEvent(core.EventTypeTopicCompleted, "greeting", "conv-1", nil).WithCorrelation("msg-1")
	e3 := core.NewTopicEvent(core.EventTypeTopicActivated, "billing", "conv-2", nil).WithCorrelation("msg-2")

	bus.Publish(e1)
	bus.Publish(e2)
	bus.Publish(e3)

	assert.Len(t, bus.EventsForConversation("conv-1"), 2)
	assert.Len(t, bus.EventsForTopic("greeting", "conv-1"), 2)
	assert.Empty(t, bus.EventsForTopic("greeting", "conv-2"))

	chain := bus.CorrelationChain("msg-1")
	require.Len(t, chain, 2)
	assert.Equal(t, core.EventTypeTopicActivated, chain[0].EventType)
	assert.Equal(t, core.EventTypeTopicCompleted, chain[1].EventType)
}

func TestBusMaxHistory(t *testing.T) {
	bus := New(WithMaxHistory(2))

	bus.Publish(core.NewTopicEvent(core.EventTypeTopicActivated, "a", "conv-1", nil))
	bus.Publish(core.NewTopicEvent(core.EventTypeTopicActivated, "b", "conv-1", nil))
	bus.Publish(core.NewTopicEvent(core.EventTypeTopicActivated, "c", "conv-1", nil))

	history := bus.History()
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].TopicName)
	assert.Equal(t, "c", history[1].TopicName)
}
