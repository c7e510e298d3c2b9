// Package container provides a keyed singleton registry for shared services.
// Keys form a fixed roster: registering the same key twice is an error, and
// resolved values are memoized so each provider runs at most once.
package container

import (
	"fmt"
	"sync"
)

// Provider lazily produces a service value. It is invoked at most once per
// key, on first resolve.
type Provider func() (any, error)

// ErrNotFound is returned by Resolve for unregistered keys.
type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("container: no provider registered for %q", e.Key)
}

// Container is a keyed registry of lazily-resolved singletons. Registration
// happens at startup; Resolve is safe for concurrent use afterwards.
type Container struct {
	mu        sync.Mutex
	providers map[string]Provider
	values    map[string]any
}

// New creates an empty container.
func New() *Container {
	return &Container{
		providers: make(map[string]Provider),
		values:    make(map[string]any),
	}
}

// Register binds a provider to a key. The key must not already exist;
// duplicate registration is a startup-time failure, never a silent override.
func (c *Container) Register(key string, p Provider) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.providers[key]; exists {
		return fmt.Errorf("container: key already registered: %s", key)
	}
	c.providers[key] = p
	return nil
}

// RegisterValue binds an already-constructed value to a key.
func (c *Container) RegisterValue(key string, v any) error {
	return c.Register(key, func() (any, error) { return v, nil })
}

// Has reports whether a provider is registered for the key.
func (c *Container) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.providers[key]
	return ok
}

// Resolve returns the value for a key, invoking its provider on first use
// and caching the result permanently. Subsequent calls return the identical
// instance. Provider errors are not cached, so a failed resolve can be
// retried.
func (c *Container) Resolve(key string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.values[key]; ok {
		return v, nil
	}
	p, ok := c.providers[key]
	if !ok {
		return nil, &ErrNotFound{Key: key}
	}
	v, err := p()
	if err != nil {
		return nil, fmt.Errorf("container: resolving %s: %w", key, err)
	}
	c.values[key] = v
	return v, nil
}

// Keys returns all registered keys.
func (c *Container) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.providers))
	for k := range c.providers {
		keys = append(keys, k)
	}
	return keys
}

// Resolve returns the value for key asserted to type T.
func Resolve[T any](c *Container, key string) (T, error) {
	var zero T
	v, err := c.Resolve(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: %s holds %T, not %T", key, v, zero)
	}
	return t, nil
}
