// Package topicflow provides a high-level façade over the core Engine and
// service abstractions (topics, conversations, event bus & logging) enabling
// rapid construction of message-driven workflow systems. Most applications
// interact with this package by:
//  1. Creating a TopicFlow via New() (optionally overriding default in-memory services)
//  2. Registering one or more topics built from activities
//  3. Handling inbound messages per conversation (Handle)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable
// conversation store and a structured logger.
package topicflow

import (
	"context"

	"github.com/hupe1980/topicflow/conversation"
	"github.com/hupe1980/topicflow/core"
	"github.com/hupe1980/topicflow/engine"
	"github.com/hupe1980/topicflow/eventbus"
	"github.com/hupe1980/topicflow/logging"
)

// Options configures the TopicFlow instance.
type Options struct {
	// EngineConfig holds routing parameters (confidence threshold, topic
	// switch budget).
	EngineConfig engine.Config

	// ConversationStore persists per-conversation context. Defaults to the
	// in-memory implementation if not provided.
	ConversationStore core.ConversationStore

	// Bus carries lifecycle events to subscribers. Defaults to a fresh
	// eventbus.Bus.
	Bus *eventbus.Bus

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// TopicFlow is the high-level façade aggregating the underlying engine and
// services.
type TopicFlow struct {
	opts   Options
	engine *engine.Engine
	bus    *eventbus.Bus
	convs  core.ConversationStore
}

// New creates a new TopicFlow instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *TopicFlow {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ConversationStore == nil {
		opts.ConversationStore = conversation.NewInMemoryStore()
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.New(eventbus.WithLogger(opts.Logger))
	}

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Conversations = opts.ConversationStore
		o.Bus = opts.Bus
		o.Logger = opts.Logger
	})

	return &TopicFlow{opts: opts, engine: e, bus: opts.Bus, convs: opts.ConversationStore}
}

// RegisterTopic adds a topic definition to the underlying engine. The
// factory is invoked once per conversation that routes to the topic, which
// keeps run state isolated between conversations.
func (f *TopicFlow) RegisterTopic(factory core.TopicFactory) error {
	return f.engine.Register(factory)
}

// Handle processes one inbound user message for a conversation and returns
// the step outcome: either a reply (topic completed), a prompt (topic
// waiting for input), or a failure record.
func (f *TopicFlow) Handle(ctx context.Context, conversationID, message string) (*core.TopicResult, error) {
	return f.engine.Handle(ctx, conversationID, message)
}

// EndConversation retires a conversation, releasing its stored context,
// call-stack frames and topic instances.
func (f *TopicFlow) EndConversation(conversationID string) error {
	return f.engine.EndConversation(conversationID)
}

// Bus exposes the event bus for subscriptions and history queries.
func (f *TopicFlow) Bus() *eventbus.Bus { return f.bus }

// Conversations exposes the conversation store.
func (f *TopicFlow) Conversations() core.ConversationStore { return f.convs }

// Engine exposes the underlying engine for advanced use.
func (f *TopicFlow) Engine() *engine.Engine { return f.engine }
