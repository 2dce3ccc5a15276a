package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/topicflow/conversation"
	"github.com/hupe1980/topicflow/core"
	"github.com/hupe1980/topicflow/eventbus"
	"github.com/hupe1980/topicflow/logging"
	"github.com/hupe1980/topicflow/topic"
)

// Config defines tuning parameters for the Engine's routing behavior.
type Config struct {
	// MinConfidence is the intent-scoring threshold. A topic is only
	// eligible when its score is strictly greater than this value, so the
	// zero default means any positive score can match.
	MinConfidence float64

	// MaxTopicSwitches bounds how many topics a single inbound message may
	// traverse (sub-topic descents plus NextTopic hand-offs). It guards
	// against hand-off cycles between misconfigured topics. Zero falls back
	// to the default.
	MaxTopicSwitches int
}

// DefaultConfig provides the default engine configuration.
//
// MinConfidence 0 requires a strictly positive score to match; 16 topic
// switches is far beyond any sane flow depth while still terminating a
// hand-off cycle quickly.
var DefaultConfig = Config{
	MinConfidence:    0,
	MaxTopicSwitches: 16,
}

// Options configures an Engine instance using the functional options
// pattern. All dependencies have in-memory defaults so a bare New() yields
// a working engine for development and tests.
type Options struct {
	// Config contains routing parameters. Defaults to DefaultConfig.
	Config Config

	// Registry holds the routable topics. Defaults to a fresh registry with
	// the default re-registration policy.
	Registry *topic.Registry

	// Conversations persists per-conversation context and active-topic
	// tracking. Defaults to the in-memory store.
	Conversations core.ConversationStore

	// Bus receives lifecycle events. Defaults to a fresh eventbus.Bus.
	Bus core.EventPublisher

	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger
}

// WithConfig overrides the engine configuration.
func WithConfig(cfg Config) func(*Options) {
	return func(o *Options) { o.Config = cfg }
}

// WithRegistry supplies a pre-built topic registry.
func WithRegistry(r *topic.Registry) func(*Options) {
	return func(o *Options) { o.Registry = r }
}

// WithConversationStore supplies a conversation store.
func WithConversationStore(s core.ConversationStore) func(*Options) {
	return func(o *Options) { o.Conversations = s }
}

// WithBus supplies an event publisher.
func WithBus(b core.EventPublisher) func(*Options) {
	return func(o *Options) { o.Bus = b }
}

// WithLogger supplies a logger.
func WithLogger(l logging.Logger) func(*Options) {
	return func(o *Options) { o.Logger = l }
}

// Engine is the canonical core.Manager implementation.
//
// Routing rules, in order:
//  1. A conversation whose active topic is suspended (waiting for user
//     input or for a sub-topic) routes the message straight to that topic,
//     bypassing intent scoring.
//  2. Otherwise every registered topic scores the message; the highest
//     score strictly above MinConfidence wins, ties broken by registration
//     order.
//  3. No eligible topic yields ErrNoTopicMatched.
//
// After a topic finishes a step, the engine follows control transfers
// before returning: a WaitForSubTopic outcome pushes a call-stack frame and
// runs the sub-topic immediately; a terminal outcome consumes the NextTopic
// context value and runs the named topic, which is how suspended callers
// regain control.
type Engine struct {
	config   Config
	registry *topic.Registry
	convs    core.ConversationStore
	stack    *core.CallStack
	bus      core.EventPublisher
	logger   logging.Logger

	// Per-conversation step serialization and per-conversation topic
	// instances. Instances are materialized lazily from the registry's
	// factories so run state never bleeds between conversations; the
	// registry itself stays read-mostly. Both maps are pruned by
	// EndConversation.
	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	instances map[string]map[string]core.TopicRunner
}

// Compile-time interface check.
var _ core.Manager = (*Engine)(nil)

// New creates an Engine. All dependencies default to in-memory
// implementations when not provided.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = topic.NewRegistry()
	}
	if opts.Conversations == nil {
		opts.Conversations = conversation.NewInMemoryStore()
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.New(eventbus.WithLogger(opts.Logger))
	}
	if opts.Config.MaxTopicSwitches <= 0 {
		opts.Config.MaxTopicSwitches = DefaultConfig.MaxTopicSwitches
	}

	return &Engine{
		config:    opts.Config,
		registry:  opts.Registry,
		convs:     opts.Conversations,
		stack:     core.NewCallStack(),
		bus:       opts.Bus,
		logger:    opts.Logger,
		locks:     make(map[string]*sync.Mutex),
		instances: make(map[string]map[string]core.TopicRunner),
	}
}

// Register makes a topic definition available for routing. The factory is
// invoked once per conversation that routes to the topic.
func (e *Engine) Register(factory core.TopicFactory) error {
	return e.registry.Register(factory)
}

// Registry exposes the topic registry for introspection.
func (e *Engine) Registry() *topic.Registry { return e.registry }

// Stack exposes the conversation call stack. Durable hosts snapshot it
// together with conversation context at suspension boundaries.
func (e *Engine) Stack() *core.CallStack { return e.stack }

// Handle processes one inbound user message for a conversation.
//
// Steps for the same conversation are serialized; concurrent calls for
// different conversations proceed independently.
func (e *Engine) Handle(ctx context.Context, conversationID, message string) (*core.TopicResult, error) {
	lock := e.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := e.convs.Get(conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation %q: %w", conversationID, err)
	}

	rc := core.NewRunContext(ctx, conversationID, core.NewID(), conv.Context, e.stack, e.bus, e.logger)

	target, input, err := e.route(rc, conv, message)
	if err != nil {
		return nil, err
	}

	return e.runFlow(rc, conv, target, input)
}

// EndConversation tears down all engine-side state for a conversation: the
// stored conversation, its call-stack frames, its topic instances and its
// step lock. Hosts that retire conversations should call this rather than
// deleting from the conversation store directly, which would leave the
// engine-side maps populated.
func (e *Engine) EndConversation(conversationID string) error {
	lock := e.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.convs.Delete(conversationID); err != nil {
		return fmt.Errorf("delete conversation %q: %w", conversationID, err)
	}
	e.stack.Clear(conversationID)

	e.mu.Lock()
	delete(e.instances, conversationID)
	delete(e.locks, conversationID)
	e.mu.Unlock()

	e.logger.Debug("conversation ended", "conversation_id", conversationID)
	return nil
}

// conversationLock returns the mutex serializing steps for one conversation.
func (e *Engine) conversationLock(conversationID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[conversationID] = lock
	}
	return lock
}

// liveInstance looks up the conversation's existing instance of the named
// topic without materializing one.
func (e *Engine) liveInstance(conversationID, name string) (core.TopicRunner, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.instances[conversationID][name]
	return t, ok
}

// topicInstance returns the conversation's live instance of the named topic,
// materializing a fresh one from the registry when none exists or when the
// previous instance already terminated. Re-materializing on terminal state
// is what re-arms a completed flow for the conversation's next visit.
func (e *Engine) topicInstance(conversationID, name string) (core.TopicRunner, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	insts, ok := e.instances[conversationID]
	if !ok {
		insts = make(map[string]core.TopicRunner)
		e.instances[conversationID] = insts
	}
	if t, ok := insts[name]; ok && !t.State().IsTerminal() {
		return t, nil
	}

	t, err := e.registry.Materialize(name)
	if err != nil {
		return nil, err
	}
	insts[name] = t
	return t, nil
}

// route picks the topic that handles this message. A suspended active topic
// short-circuits scoring; the message becomes its resume input.
func (e *Engine) route(rc *core.RunContext, conv *core.Conversation, message string) (core.TopicRunner, any, error) {
	if active := conv.ActiveTopic(); active != "" {
		if t, ok := e.liveInstance(rc.ConversationID, active); ok {
			switch t.State() {
			case core.TopicWaitingForUserInput, core.TopicWaitingForSubTopic:
				rc.LogDebug("routing to suspended topic", "topic", active, "state", t.State().String())
				return t, message, nil
			}
		}
		// Active topic terminated out of band; fall through to scoring.
		conv.SetActiveTopic("")
	}

	// Scoring reads the registry's prototypes; only the winner is
	// materialized for this conversation.
	var (
		best      core.TopicRunner
		bestScore float64
	)
	for _, t := range e.registry.Prototypes() {
		score := t.ScoreIntent(message)
		if score <= e.config.MinConfidence {
			continue
		}
		// Strict comparison keeps the earliest registration on ties.
		if best == nil || score > bestScore {
			best, bestScore = t, score
		}
	}
	if best == nil {
		return nil, nil, fmt.Errorf("message for conversation %q: %w", conv.ID, core.ErrNoTopicMatched)
	}

	rc.LogDebug("topic selected by intent score", "topic", best.Name(), "score", bestScore)

	inst, err := e.topicInstance(rc.ConversationID, best.Name())
	if err != nil {
		return nil, nil, err
	}

	e.publish(rc, core.EventTypeTopicActivated, inst.Name(), map[string]any{"score": bestScore})

	return inst, message, nil
}

// runFlow runs topics until the message is fully handled: a topic suspends
// for user input, or control transfers are exhausted.
func (e *Engine) runFlow(rc *core.RunContext, conv *core.Conversation, t core.TopicRunner, input any) (*core.TopicResult, error) {
	for switches := 0; ; switches++ {
		if switches >= e.config.MaxTopicSwitches {
			return nil, fmt.Errorf("conversation %q exceeded %d topic switches in one step", conv.ID, e.config.MaxTopicSwitches)
		}

		res, err := t.Run(rc, input)
		if err != nil {
			return nil, err
		}
		input = nil

		switch {
		case res.IsWaiting:
			conv.SetActiveTopic(t.Name())
			e.publish(rc, core.EventTypeTopicWaiting, t.Name(), res.Message)
			return res, nil

		case res.IsWaitingForSubTopic:
			sub, err := e.topicInstance(rc.ConversationID, res.SubTopicName)
			if err != nil {
				return nil, fmt.Errorf("sub-topic for %q: %w", t.Name(), err)
			}
			e.stack.Push(rc.ConversationID, core.Frame{
				CallingTopicName: t.Name(),
				SubTopicName:     res.SubTopicName,
				ResumeData:       res.ResumeData,
			})
			conv.SetActiveTopic(sub.Name())
			e.publish(rc, core.EventTypeSubTopicTriggered, sub.Name(), map[string]any{
				"calling_topic": t.Name(),
			})
			t = sub

		default:
			e.publishTerminal(rc, res)

			next := rc.Data.GetString(core.KeyNextTopic)
			if next == "" {
				conv.SetActiveTopic("")
				return res, nil
			}
			rc.Data.Delete(core.KeyNextTopic)

			nt, err := e.topicInstance(rc.ConversationID, next)
			if err != nil {
				conv.SetActiveTopic("")
				return res, fmt.Errorf("next topic after %q: %w", t.Name(), err)
			}

			if nt.State() == core.TopicWaitingForSubTopic {
				// A suspended caller regains control.
				e.publish(rc, core.EventTypeSubTopicResumed, nt.Name(), map[string]any{
					"completed_topic": t.Name(),
				})
			}

			conv.SetActiveTopic(nt.Name())
			t = nt
		}
	}
}

func (e *Engine) publishTerminal(rc *core.RunContext, res *core.TopicResult) {
	switch {
	case res.IsFailed:
		e.publish(rc, core.EventTypeTopicFailed, res.TopicName, res.Message)
	case res.IsCancelled:
		e.publish(rc, core.EventTypeTopicCancelled, res.TopicName, res.Message)
	default:
		e.publish(rc, core.EventTypeTopicCompleted, res.TopicName, res.Message)
	}
}

func (e *Engine) publish(rc *core.RunContext, eventType, topicName string, data any) {
	if e.bus == nil {
		return
	}
	ev := core.NewTopicEvent(eventType, topicName, rc.ConversationID, data).
		WithCorrelation(rc.CorrelationID)
	e.bus.Publish(ev)
}
