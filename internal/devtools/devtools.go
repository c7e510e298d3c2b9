// Package devtools provides a local activity inspector plugin: it serves a
// WebSocket feed of activity, send and response events so a developer can
// watch traffic flow through the bot in real time.
package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/events"
	"github.com/soyeahso/botway/internal/logging"
	"github.com/soyeahso/botway/internal/plugin"
)

// Frame is one inspector feed entry.
type Frame struct {
	Event    string             `json:"event"`
	Time     time.Time          `json:"time"`
	Activity *activity.Activity `json:"activity,omitempty"`
	Response *activity.Response `json:"response,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Plugin is the devtools inspector. It is a generic plugin: it observes
// lifecycle events and cannot alter request outcomes.
type Plugin struct {
	addr string
	log  *logging.Logger

	mu      sync.Mutex
	clients map[string]*websocket.Conn

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

var _ plugin.Plugin = (*Plugin)(nil)

// New creates a devtools plugin listening on the given port.
func New(port int) *Plugin {
	return &Plugin{
		addr:    fmt.Sprintf("127.0.0.1:%d", port),
		clients: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Local inspector only; the listener is bound to loopback.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return "devtools" }

// Init subscribes to the lifecycle events and starts the inspector server.
func (p *Plugin) Init(ctx context.Context, api *plugin.API) error {
	p.log = api.Log

	events.On(api.Bus, events.EventActivity, "devtools", p,
		func(_ context.Context, e *events.ActivityEvent) any {
			p.broadcast(Frame{Event: events.EventActivity, Time: time.Now(), Activity: e.Activity})
			return nil
		})
	events.On(api.Bus, events.EventActivitySent, "devtools", p,
		func(_ context.Context, e *events.ActivitySentEvent) any {
			p.broadcast(Frame{Event: events.EventActivitySent, Time: time.Now(), Activity: e.Activity})
			return nil
		})
	events.On(api.Bus, events.EventActivityResponse, "devtools", p,
		func(_ context.Context, e *events.ActivityResponseEvent) any {
			p.broadcast(Frame{Event: events.EventActivityResponse, Time: time.Now(), Activity: e.Activity, Response: e.Response})
			return nil
		})
	events.On(api.Bus, events.EventError, "devtools", p,
		func(_ context.Context, e *events.ErrorEvent) any {
			p.broadcast(Frame{Event: events.EventError, Time: time.Now(), Activity: e.Activity, Error: e.Err.Error()})
			return nil
		})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /socket", p.handleSocket)

	p.httpServer = &http.Server{
		Addr:        p.addr,
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("devtools listen on %s: %w", p.addr, err)
	}

	p.log.Info().Str("addr", ln.Addr().String()).Msg("devtools inspector listening")

	go func() {
		if err := p.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Error().Err(err).Msg("devtools server exited")
		}
	}()

	return nil
}

// Close shuts down the inspector server and its clients.
func (p *Plugin) Close() error {
	p.mu.Lock()
	for id, conn := range p.clients {
		conn.Close()
		delete(p.clients, id)
	}
	p.mu.Unlock()

	if p.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return p.httpServer.Shutdown(ctx)
	}
	return nil
}

// handleSocket upgrades an inspector client and keeps the connection until
// it drops. Clients are feed-only; inbound frames are discarded.
func (p *Plugin) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	id := uuid.New().String()
	p.mu.Lock()
	p.clients[id] = conn
	p.mu.Unlock()

	p.log.Debug().Str("client", id).Str("remote", r.RemoteAddr).Msg("inspector connected")

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.clients, id)
			p.mu.Unlock()
			conn.Close()
			p.log.Debug().Str("client", id).Msg("inspector disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcast fans one frame out to every connected client. Slow or dead
// clients are dropped rather than blocking the feed.
func (p *Plugin) broadcast(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to encode frame")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for id, conn := range p.clients {
		conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			p.log.Debug().Err(err).Str("client", id).Msg("dropping inspector client")
			conn.Close()
			delete(p.clients, id)
		}
	}
}
