// Package transport exposes the core operations over an HTTP JSON API.
// It is thin plumbing: decode, call into the core, encode. No decision
// logic lives here.
package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch/internal/cycle"
	"github.com/scholarmatch/scholarmatch/internal/prefs"
)

// Server serves the scoring, preference, and notification endpoints.
type Server struct {
	store  *prefs.Store
	runner *cycle.Runner
	logger *zap.Logger

	httpServer *http.Server
}

// New creates a Server listening on addr. allowedOrigins configures CORS
// for the admin console; empty means same-origin only.
func New(addr string, store *prefs.Store, runner *cycle.Runner, logger *zap.Logger, allowedOrigins []string) *Server {
	s := &Server{
		store:  store,
		runner: runner,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/match", s.handleMatch)
	mux.HandleFunc("PUT /api/v1/users/{id}/preferences", s.handleUpsertPreferences)
	mux.HandleFunc("POST /api/v1/notifications/match", s.handleNotifyMatch)
	mux.HandleFunc("POST /api/v1/cycles/deadline", s.handleDeadlineCycle)

	handler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.logRequests(mux))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("transport listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}
