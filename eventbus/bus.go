package eventbus

import (
	"sync"

	"github.com/hupe1980/topicflow/core"
	"github.com/hupe1980/topicflow/logging"
)

// Handler consumes a published event.
type Handler func(event core.TopicEvent)

// Options configures a Bus.
type Options struct {
	// Logger receives diagnostics, including recovered subscriber panics.
	Logger logging.Logger

	// MaxHistory caps the retained event history. Zero keeps everything.
	MaxHistory int
}

// WithLogger sets the bus logger.
func WithLogger(logger logging.Logger) func(*Options) {
	return func(o *Options) { o.Logger = logger }
}

// WithMaxHistory bounds the retained history; the oldest events are dropped
// first once the cap is exceeded.
func WithMaxHistory(n int) func(*Options) {
	return func(o *Options) { o.MaxHistory = n }
}

type subscription struct {
	id        string
	eventType string // empty matches every type
	handler   Handler
}

// Bus is a synchronous in-process event bus with history.
//
// Publish appends the event to history before any subscriber runs, so a
// subscriber that queries the history always sees the event that triggered
// it. Handlers run on the publisher's goroutine in subscription order.
type Bus struct {
	opts Options

	mu      sync.RWMutex
	subs    []subscription
	history []core.TopicEvent
}

// New constructs a Bus.
func New(optFns ...func(o *Options)) *Bus {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Bus{opts: opts}
}

// Compile-time interface check.
var _ core.EventPublisher = (*Bus)(nil)

// Subscribe registers a handler for one event type and returns a cancel
// function that removes the subscription.
func (b *Bus) Subscribe(eventType string, handler Handler) func() {
	return b.subscribe(eventType, handler)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) func() {
	return b.subscribe("", handler)
}

func (b *Bus) subscribe(eventType string, handler Handler) func() {
	if handler == nil {
		return func() {}
	}

	sub := subscription{id: core.NewID(), eventType: eventType, handler: handler}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == sub.id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish records the event and delivers it to matching subscribers.
func (b *Bus) Publish(event core.TopicEvent) {
	b.mu.Lock()
	b.history = append(b.history, event)
	if b.opts.MaxHistory > 0 && len(b.history) > b.opts.MaxHistory {
		b.history = b.history[len(b.history)-b.opts.MaxHistory:]
	}
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		if sub.eventType != "" && sub.eventType != event.EventType {
			continue
		}
		b.deliver(sub, event)
	}
}

func (b *Bus) deliver(sub subscription, event core.TopicEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.opts.Logger.Error("event subscriber panicked",
				"event_type", event.EventType,
				"event_id", event.EventID,
				"panic", r,
			)
		}
	}()
	sub.handler(event)
}

// History returns a copy of the retained event history in publish order.
func (b *Bus) History() []core.TopicEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.TopicEvent, len(b.history))
	copy(out, b.history)
	return out
}

// EventsForConversation returns retained events for one conversation.
func (b *Bus) EventsForConversation(conversationID string) []core.TopicEvent {
	return b.filter(func(e core.TopicEvent) bool {
		return e.ConversationID == conversationID
	})
}

// EventsForTopic returns retained events for one topic within a
// conversation.
func (b *Bus) EventsForTopic(topicName, conversationID string) []core.TopicEvent {
	return b.filter(func(e core.TopicEvent) bool {
		return e.TopicName == topicName && e.ConversationID == conversationID
	})
}

// CorrelationChain returns retained events sharing a correlation ID, in
// publish order. This reconstructs the causal chain of one inbound message.
func (b *Bus) CorrelationChain(correlationID string) []core.TopicEvent {
	return b.filter(func(e core.TopicEvent) bool {
		return e.CorrelationID == correlationID
	})
}

func (b *Bus) filter(keep func(core.TopicEvent) bool) []core.TopicEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []core.TopicEvent
	for _, e := range b.history {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
