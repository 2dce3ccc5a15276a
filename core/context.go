package core

import "sync"

// Context is the per-conversation key/value bag carrying all data produced
// and consumed across activities and topics. It is safe for concurrent
// access.
//
// Contract:
//   - A missing key is a well-defined default (zero value / false), never
//     an error
//   - Keys returns a defensive copy to avoid external mutation
//   - Clone performs a shallow copy of the map for safe divergence
//
// Lifetime is one conversation: created at conversation start, discarded (or
// externally snapshotted by the host) at conversation end.
type Context struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewContext creates an empty conversation context.
func NewContext() *Context {
	return &Context{values: map[string]any{}}
}

// Get returns the value and existence flag for a key.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Set stores a key/value pair, overwriting any previous value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Delete removes a key. Deleting a missing key is a no-op.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Contains reports whether the key is present.
func (c *Context) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[key]
	return ok
}

// Keys returns a copy of all present keys in unspecified order.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of stored keys.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// GetString returns the string stored under key or "" if absent or not a string.
func (c *Context) GetString(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// GetInt returns the int stored under key or 0 if absent or not an int.
func (c *Context) GetInt(key string) int {
	v, _ := c.Get(key)
	i, _ := v.(int)
	return i
}

// GetFloat returns the float64 stored under key or 0 if absent or not a float64.
func (c *Context) GetFloat(key string) float64 {
	v, _ := c.Get(key)
	f, _ := v.(float64)
	return f
}

// GetBool returns the bool stored under key or false if absent or not a bool.
func (c *Context) GetBool(key string) bool {
	v, _ := c.Get(key)
	b, _ := v.(bool)
	return b
}

// Clone returns a shallow copy of the context safe for independent mutation.
func (c *Context) Clone() *Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := &Context{values: make(map[string]any, len(c.values))}
	for k, v := range c.values {
		clone.values[k] = v
	}
	return clone
}

// Value retrieves a typed value from the context. The second return is false
// when the key is absent or holds a different type.
func Value[T any](c *Context, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
