// Package app is the orchestration core: it owns the router, dependency
// container, event bus and plugin registry, and turns each inbound activity
// into exactly one Response.
package app

import (
	"context"
	"regexp"
	"time"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/api"
	"github.com/soyeahso/botway/internal/container"
	"github.com/soyeahso/botway/internal/events"
	"github.com/soyeahso/botway/internal/logging"
	"github.com/soyeahso/botway/internal/plugin"
	"github.com/soyeahso/botway/internal/router"
	"github.com/soyeahso/botway/internal/store"
)

// Handler processes one activity. Returning a non-nil value makes it the
// candidate response body; calling Context.Next passes control to the next
// matched handler, not calling it short-circuits the chain.
type Handler func(c *Context) (any, error)

// App composes the engine. Construct it once at process start; registration
// methods are not safe for use once traffic is being served.
type App struct {
	log       *logging.Logger
	bus       *events.Bus
	container *container.Container
	plugins   *plugin.Registry
	router    *router.Router[Handler]

	storage        store.Storage
	client         api.Client
	appID          string
	connectionName string
}

// Option configures the App.
type Option func(*App)

// WithLogger sets the root logger.
func WithLogger(log *logging.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithStorage sets the key-value storage used by the sign-in flow.
func WithStorage(s store.Storage) Option {
	return func(a *App) { a.storage = s }
}

// WithClient sets the platform API client. Without one, delegated token
// resolution is skipped and the sign-in handlers report upstream failure.
func WithClient(c api.Client) Option {
	return func(a *App) { a.client = c }
}

// WithAppID sets the bot's application id.
func WithAppID(id string) Option {
	return func(a *App) { a.appID = id }
}

// WithConnectionName sets the OAuth connection used for best-effort
// delegated token resolution.
func WithConnectionName(name string) Option {
	return func(a *App) { a.connectionName = name }
}

// New creates an App. The built-in sign-in routes are registered first, so
// application routes for the same invokes run after them.
func New(opts ...Option) (*App, error) {
	a := &App{
		router:  router.New[Handler](),
		storage: store.NewMemory(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logging.New(nil, "info")
	}
	a.log = a.log.Sub("app")

	a.bus = events.NewBus(a.log)
	a.container = container.New()
	a.plugins = plugin.NewRegistry(a.bus, a.container, a.log)

	for key, v := range map[string]any{
		"logger":  a.log,
		"storage": a.storage,
	} {
		if err := a.container.RegisterValue(key, v); err != nil {
			return nil, err
		}
	}
	if a.client != nil {
		if err := a.container.RegisterValue("api", a.client); err != nil {
			return nil, err
		}
	}
	// Lazily computed: the id is not always known until startup completes.
	if err := a.container.Register("botId", func() (any, error) {
		return a.appID, nil
	}); err != nil {
		return nil, err
	}

	// Built-in sign-in handshake routes. These are ordinary routes and are
	// matched and chained like any application handler.
	a.OnInvoke(activity.InvokeTokenExchange, a.onTokenExchange)
	a.OnInvoke(activity.InvokeVerifyState, a.onVerifyState)

	return a, nil
}

// Route registers a raw route.
func (a *App) Route(r router.Route[Handler]) {
	a.router.Register(r)
}

// OnActivity registers a handler for every activity of the given type.
func (a *App) OnActivity(t activity.Type, h Handler) {
	a.router.Register(router.Route[Handler]{Type: t, Handler: h})
}

// OnMessage registers a handler for message activities whose text matches
// the wildcard pattern, case-insensitively. "*" matches every message.
func (a *App) OnMessage(pattern string, h Handler) {
	a.router.Register(router.Route[Handler]{
		Type:    activity.TypeMessage,
		Text:    router.Glob(pattern),
		Handler: h,
	})
}

// OnMessageRegex registers a handler for message activities whose text
// matches the regular expression.
func (a *App) OnMessageRegex(re *regexp.Regexp, h Handler) {
	a.router.Register(router.Route[Handler]{
		Type:    activity.TypeMessage,
		Text:    router.Regex(re),
		Handler: h,
	})
}

// OnInvoke registers a handler for invoke activities with the given name.
func (a *App) OnInvoke(name string, h Handler) {
	a.router.Register(router.Route[Handler]{
		Type:    activity.TypeInvoke,
		Name:    name,
		Handler: h,
	})
}

// OnEvent registers a handler for event activities with the given name.
func (a *App) OnEvent(name string, h Handler) {
	a.router.Register(router.Route[Handler]{
		Type:    activity.TypeEvent,
		Name:    name,
		Handler: h,
	})
}

// OnError subscribes to faults raised during processing.
func (a *App) OnError(name string, fn func(ctx context.Context, e *events.ErrorEvent)) {
	events.On(a.bus, events.EventError, name, nil,
		func(ctx context.Context, e *events.ErrorEvent) any {
			fn(ctx, e)
			return nil
		})
}

// OnActivitySent subscribes to outbound activities and stream chunks.
func (a *App) OnActivitySent(name string, fn func(ctx context.Context, e *events.ActivitySentEvent)) {
	events.On(a.bus, events.EventActivitySent, name, nil,
		func(ctx context.Context, e *events.ActivitySentEvent) any {
			fn(ctx, e)
			return nil
		})
}

// OnActivityResponse subscribes to the Response produced per request.
func (a *App) OnActivityResponse(name string, fn func(ctx context.Context, e *events.ActivityResponseEvent)) {
	events.On(a.bus, events.EventActivityResponse, name, nil,
		func(ctx context.Context, e *events.ActivityResponseEvent) any {
			fn(ctx, e)
			return nil
		})
}

// Subscribe registers a raw event-bus handler, including for plugin
// namespaced events ("{plugin}.{event}").
func (a *App) Subscribe(event, name string, fn events.Handler) {
	a.bus.On(event, name, nil, fn)
}

// AddPlugin installs a plugin.
func (a *App) AddPlugin(p plugin.Plugin) error {
	return a.plugins.Register(p)
}

// Plugins returns the plugin registry.
func (a *App) Plugins() *plugin.Registry { return a.plugins }

// Bus returns the event bus.
func (a *App) Bus() *events.Bus { return a.bus }

// Container returns the dependency container.
func (a *App) Container() *container.Container { return a.container }

// Storage returns the configured storage.
func (a *App) Storage() store.Storage { return a.storage }

// Start initializes all plugins and announces startup.
func (a *App) Start(ctx context.Context) error {
	if err := a.plugins.InitAll(ctx); err != nil {
		return err
	}
	a.bus.Emit(ctx, a, events.EventStart, &events.StartEvent{Time: time.Now()})
	a.log.Info().
		Str("appId", a.appID).
		Int("routes", a.router.Len()).
		Int("plugins", a.plugins.Count()).
		Msg("application started")
	return nil
}

// Close shuts down all plugins.
func (a *App) Close() {
	a.plugins.CloseAll()
}
