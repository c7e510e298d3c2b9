// Package plugin defines the capability-tagged components that extend the
// engine and the registry that owns their lifecycle. Plugins receive their
// dependencies explicitly through the API handed to Init; there is no
// reflective injection.
package plugin

import (
	"context"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/container"
	"github.com/soyeahso/botway/internal/events"
	"github.com/soyeahso/botway/internal/logging"
	"github.com/soyeahso/botway/internal/stream"
)

// Plugin is the interface all plugins implement.
type Plugin interface {
	// Name returns a unique identifier for the plugin (e.g. "devtools").
	Name() string

	// Init hands the plugin its dependencies. Plugins subscribe to events
	// and resolve container services here.
	Init(ctx context.Context, api *API) error

	// Close shuts down the plugin and releases resources.
	Close() error
}

// Sender is the capability of plugins that can transmit and stream
// activities to the platform.
type Sender interface {
	Plugin

	// Send delivers one outbound activity addressed by the reference.
	Send(ctx context.Context, a *activity.Activity, ref activity.ConversationReference) (*activity.Activity, error)

	// CreateStream produces a live stream bound to one conversation.
	CreateStream(ctx context.Context, ref activity.ConversationReference) stream.Stream
}

// Lifecycle hooks generic plugins may implement. The pipeline calls them for
// observation only; they cannot alter the request outcome.
type (
	// ActivityObserver is notified of each inbound activity before the
	// handler chain runs.
	ActivityObserver interface {
		OnActivity(ctx context.Context, e *events.ActivityEvent)
	}

	// ErrorObserver is notified of faults raised during processing.
	ErrorObserver interface {
		OnError(ctx context.Context, e *events.ErrorEvent)
	}

	// SentObserver is notified of each outbound activity or stream chunk.
	SentObserver interface {
		OnActivitySent(ctx context.Context, e *events.ActivitySentEvent)
	}

	// ResponseObserver is notified of the Response produced per request.
	ResponseObserver interface {
		OnActivityResponse(ctx context.Context, e *events.ActivityResponseEvent)
	}
)

// Emitter publishes an event on behalf of a plugin. The registry rebroadcasts
// it under both the bare name and "{pluginName}.{name}".
type Emitter func(ctx context.Context, event string, p events.Payload)

// API is the dependency surface handed to a plugin at Init.
type API struct {
	// Log is a plugin-scoped child logger.
	Log *logging.Logger

	// Bus is the application event bus.
	Bus *events.Bus

	// Container resolves shared services by key. Missing optional services
	// surface as *container.ErrNotFound, which a plugin may ignore.
	Container *container.Container

	// Emit publishes an event attributed to this plugin.
	Emit Emitter
}
