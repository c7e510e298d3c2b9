package events

import (
	"context"
	"sync"

	"github.com/soyeahso/botway/internal/logging"
)

// Handler handles one event. Returning a non-nil value stops delivery to
// later subscribers and becomes the result of the emit.
type Handler func(ctx context.Context, p Payload) any

type subscriber struct {
	name  string
	owner any
	fn    Handler
}

// Bus is an ordered publish/subscribe registry keyed by event name.
// Subscriptions happen at startup; Emit is safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]subscriber
	log  *logging.Logger
}

// NewBus creates an event bus.
func NewBus(log *logging.Logger) *Bus {
	return &Bus{
		subs: make(map[string][]subscriber),
		log:  log.Sub("events"),
	}
}

// On registers a handler for the named event. The owner identifies the
// subscribing component: emits whose sender is the owner are not delivered
// back to it. The name tags the handler for logging.
func (b *Bus) On(event, name string, owner any, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[event] = append(b.subs[event], subscriber{name: name, owner: owner, fn: fn})
	b.log.Debug().Str("event", event).Str("handler", name).Msg("subscriber registered")
}

// Emit delivers an event to subscribers sequentially in registration order.
// Subscribers owned by the sender are skipped. The first non-nil handler
// result short-circuits remaining subscribers and is returned.
func (b *Bus) Emit(ctx context.Context, sender any, event string, p Payload) any {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs[event]))
	copy(subs, b.subs[event])
	b.mu.RUnlock()

	for _, s := range subs {
		if s.owner != nil && s.owner == sender {
			continue
		}
		if v := s.fn(ctx, p); v != nil {
			return v
		}
	}
	return nil
}

// Count returns the number of subscribers registered for an event.
func (b *Bus) Count(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[event])
}

// On registers a typed handler: events whose payload is not a T are ignored.
func On[T Payload](b *Bus, event, name string, owner any, fn func(ctx context.Context, p T) any) {
	b.On(event, name, owner, func(ctx context.Context, p Payload) any {
		t, ok := p.(T)
		if !ok {
			return nil
		}
		return fn(ctx, t)
	})
}
