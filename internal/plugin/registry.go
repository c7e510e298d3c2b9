package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/soyeahso/botway/internal/container"
	"github.com/soyeahso/botway/internal/events"
	"github.com/soyeahso/botway/internal/logging"
)

// Registry holds the ordered list of installed plugins and wires their
// dependencies at startup.
type Registry struct {
	mu        sync.RWMutex
	plugins   map[string]Plugin
	order     []string // insertion order for deterministic lifecycle
	bus       *events.Bus
	container *container.Container
	log       *logging.Logger
}

// NewRegistry creates a plugin registry.
func NewRegistry(bus *events.Bus, c *container.Container, log *logging.Logger) *Registry {
	return &Registry{
		plugins:   make(map[string]Plugin),
		bus:       bus,
		container: c,
		log:       log.Sub("plugins"),
	}
}

// Register adds a plugin without initializing it. The plugin is bound into
// the container under its name, and its lifecycle hooks are subscribed to
// the event bus with the plugin as owner, so a plugin never observes events
// it raised itself.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin already registered: %s", name)
	}

	if err := r.container.RegisterValue("plugin."+name, p); err != nil {
		return err
	}

	r.plugins[name] = p
	r.order = append(r.order, name)
	r.subscribeHooks(p)

	r.log.Info().Str("plugin", name).Msg("plugin registered")
	return nil
}

// subscribeHooks bridges a plugin's lifecycle hooks onto the event bus.
func (r *Registry) subscribeHooks(p Plugin) {
	name := p.Name()
	if o, ok := p.(ActivityObserver); ok {
		events.On(r.bus, events.EventActivity, name, p,
			func(ctx context.Context, e *events.ActivityEvent) any {
				o.OnActivity(ctx, e)
				return nil
			})
	}
	if o, ok := p.(ErrorObserver); ok {
		events.On(r.bus, events.EventError, name, p,
			func(ctx context.Context, e *events.ErrorEvent) any {
				o.OnError(ctx, e)
				return nil
			})
	}
	if o, ok := p.(SentObserver); ok {
		events.On(r.bus, events.EventActivitySent, name, p,
			func(ctx context.Context, e *events.ActivitySentEvent) any {
				o.OnActivitySent(ctx, e)
				return nil
			})
	}
	if o, ok := p.(ResponseObserver); ok {
		events.On(r.bus, events.EventActivityResponse, name, p,
			func(ctx context.Context, e *events.ActivityResponseEvent) any {
				o.OnActivityResponse(ctx, e)
				return nil
			})
	}
}

// emitter returns the Emitter bound to a plugin: events it raises are
// rebroadcast under both the bare name and "{pluginName}.{name}".
func (r *Registry) emitter(p Plugin) Emitter {
	return func(ctx context.Context, event string, payload events.Payload) {
		r.bus.Emit(ctx, p, event, payload)
		r.bus.Emit(ctx, p, p.Name()+"."+event, payload)
	}
}

// InitAll initializes all registered plugins in registration order, handing
// each its scoped API.
func (r *Registry) InitAll(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		p := r.plugins[name]
		api := &API{
			Log:       r.log.Sub(name),
			Bus:       r.bus,
			Container: r.container,
			Emit:      r.emitter(p),
		}

		r.log.Info().Str("plugin", name).Msg("initializing plugin")
		if err := p.Init(ctx, api); err != nil {
			return fmt.Errorf("init plugin %s: %w", name, err)
		}
	}
	return nil
}

// CloseAll shuts down all plugins in reverse registration order.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		p := r.plugins[name]
		r.log.Info().Str("plugin", name).Msg("closing plugin")
		if err := p.Close(); err != nil {
			r.log.Error().Err(err).Str("plugin", name).Msg("plugin close error")
		}
	}
}

// Get returns a plugin by name, or nil if not found.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugins[name]
}

// List returns all registered plugin names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Senders returns the registered plugins with the sender capability, in
// registration order.
func (r *Registry) Senders() []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var senders []Sender
	for _, name := range r.order {
		if s, ok := r.plugins[name].(Sender); ok {
			senders = append(senders, s)
		}
	}
	return senders
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}
