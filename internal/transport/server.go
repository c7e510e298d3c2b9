// Package transport hosts the activity HTTP endpoint: it turns platform
// POSTs into Process calls and writes the resulting Response verbatim.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/app"
	"github.com/soyeahso/botway/internal/config"
	"github.com/soyeahso/botway/internal/logging"
)

// Server receives inbound activities over HTTP and forwards them to the app.
type Server struct {
	cfg        config.ServerConfig
	app        *app.App
	log        *logging.Logger
	httpServer *http.Server
}

// New creates an activity server.
func New(cfg config.ServerConfig, a *app.App, log *logging.Logger) *Server {
	return &Server{
		cfg: cfg,
		app: a,
		log: log.Sub("transport"),
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins listening for activities. It blocks until the context is
// cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/messages", s.handleActivity)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      withLogging(mux, s.log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("activity server starting")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down activity server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleActivity decodes one inbound activity and runs it through the
// pipeline. The pipeline never fails: whatever Response it computes is
// returned to the platform as-is.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var act activity.Activity
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20)).Decode(&act); err != nil {
		s.log.Warn().Err(err).Msg("rejecting malformed activity")
		http.Error(w, "malformed activity", http.StatusBadRequest)
		return
	}

	token := bearerToken(r)
	res := s.app.Process(r.Context(), nil, token, &act, nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	if res.Body != nil {
		if err := json.NewEncoder(w).Encode(res.Body); err != nil {
			s.log.Warn().Err(err).Msg("failed to write response body")
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// bearerToken extracts the security token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// withLogging logs one line per request.
func withLogging(next http.Handler, log *logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(started)).
			Msg("request handled")
	})
}
