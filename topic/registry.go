package topic

import (
	"fmt"
	"sync"

	"github.com/hupe1980/topicflow/core"
)

// ReregistrationPolicy decides whether a factory may replace an existing
// registration with the same name. existing and replacement are the
// prototype instances produced by the respective factories. Returning an
// error rejects the registration.
type ReregistrationPolicy func(existing, replacement core.TopicRunner) error

// DefaultReregistrationPolicy rejects replacing a registered definition.
// Conversations may still hold live instances materialized from the existing
// factory; swapping the definition under them is rarely intended, so hot
// replacement is opt-in via WithReregistrationPolicy.
func DefaultReregistrationPolicy(existing, _ core.TopicRunner) error {
	return fmt.Errorf("topic %q is already registered", existing.Name())
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	ReregistrationPolicy ReregistrationPolicy
}

// WithReregistrationPolicy overrides the replacement policy.
func WithReregistrationPolicy(p ReregistrationPolicy) func(*RegistryOptions) {
	return func(o *RegistryOptions) { o.ReregistrationPolicy = p }
}

// Registry holds topic factories in registration order. The registry is
// read-mostly: registration happens at setup time, and steady-state traffic
// only reads prototypes for intent scoring and calls factories to
// materialize per-conversation instances. Order matters: intent scoring
// ties are broken by whichever topic registered first.
type Registry struct {
	opts      RegistryOptions
	mu        sync.RWMutex
	order     []string
	factories map[string]core.TopicFactory
	protos    map[string]core.TopicRunner
}

// NewRegistry constructs an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		ReregistrationPolicy: DefaultReregistrationPolicy,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		opts:      opts,
		factories: make(map[string]core.TopicFactory),
		protos:    make(map[string]core.TopicRunner),
	}
}

// Register adds a topic factory. The factory is invoked once to obtain a
// prototype, which supplies the name and serves read-only intent scoring.
// Registering a name twice consults the re-registration policy; on
// acceptance the replacement keeps the original registration slot so
// tie-break ordering stays stable.
func (r *Registry) Register(factory core.TopicFactory) error {
	if factory == nil {
		return fmt.Errorf("topic factory must not be nil")
	}
	proto := factory()
	if proto == nil {
		return fmt.Errorf("topic factory returned nil")
	}
	if proto.Name() == "" {
		return fmt.Errorf("topic name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.protos[proto.Name()]; ok {
		if err := r.opts.ReregistrationPolicy(existing, proto); err != nil {
			return fmt.Errorf("register topic %q: %w", proto.Name(), err)
		}
		r.factories[proto.Name()] = factory
		r.protos[proto.Name()] = proto
		return nil
	}

	r.order = append(r.order, proto.Name())
	r.factories[proto.Name()] = factory
	r.protos[proto.Name()] = proto
	return nil
}

// Prototype returns the prototype registered under name. Prototypes are
// never run; they exist for scoring and metadata.
func (r *Registry) Prototype(name string) (core.TopicRunner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.protos[name]
	if !ok {
		return nil, fmt.Errorf("topic %q: %w", name, core.ErrTopicNotFound)
	}
	return p, nil
}

// Prototypes returns all registered prototypes in registration order.
func (r *Registry) Prototypes() []core.TopicRunner {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.TopicRunner, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.protos[name])
	}
	return out
}

// Materialize invokes the factory registered under name and returns the
// fresh instance.
func (r *Registry) Materialize(name string) (core.TopicRunner, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("topic %q: %w", name, core.ErrTopicNotFound)
	}
	t := factory()
	if t == nil || t.Name() != name {
		return nil, fmt.Errorf("factory for topic %q produced an invalid instance", name)
	}
	return t, nil
}

// Len returns the number of registered topics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
