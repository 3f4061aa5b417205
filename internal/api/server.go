// ABOUTME: HTTP server wiring routes, auth middleware, and graceful shutdown
// ABOUTME: Every protected route passes through the access gate exactly once

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/allnik/advisory/internal/auth"
	"github.com/allnik/advisory/internal/config"
	"github.com/allnik/advisory/internal/store"
)

// shutdownTimeout bounds how long in-flight requests may take to drain.
const shutdownTimeout = 10 * time.Second

// RouteRegistrar registers additional routes on the server's mux, e.g.
// the web admin dashboard.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// Server is the advisory HTTP API server.
type Server struct {
	cfg    *config.Config
	store  store.Store
	issuer *auth.TokenIssuer
	hasher *auth.PasswordHasher
	policy auth.Policy
	logger *slog.Logger

	extra []RouteRegistrar
}

// New creates a Server. The policy is derived from the auth configuration.
func New(cfg *config.Config, st store.Store, issuer *auth.TokenIssuer, hasher *auth.PasswordHasher, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		store:  st,
		issuer: issuer,
		hasher: hasher,
		policy: auth.Policy{OwnerCancel: cfg.Auth.OwnerCancelEnabled()},
		logger: logger.With("component", "api"),
	}
}

// Mount adds a RouteRegistrar whose routes are included in the handler.
func (s *Server) Mount(r RouteRegistrar) {
	s.extra = append(s.extra, r)
}

// Handler builds the complete route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	gate := auth.Middleware(s.issuer, s.cfg.Auth.TokenHeader)
	require := func(action auth.Action) func(http.Handler) http.Handler {
		return auth.Require(s.policy, action)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return gate(h)
	}
	gated := func(action auth.Action, h http.HandlerFunc) http.Handler {
		return gate(require(action)(h))
	}

	// Health endpoints
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ready", s.handleReady)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	// User
	mux.Handle("GET /api/user/profile", protected(s.handleProfile))

	// Requests
	mux.Handle("POST /api/requests", gated(auth.ActionCreateRequest, s.handleCreateRequest))
	mux.Handle("GET /api/requests", protected(s.handleListRequests))
	mux.Handle("GET /api/requests/{id}", protected(s.handleGetRequest))
	mux.Handle("POST /api/requests/{id}/accept", gated(auth.ActionAcceptRequest, s.handleAcceptRequest))
	mux.Handle("POST /api/requests/{id}/complete", gated(auth.ActionCompleteRequest, s.handleCompleteRequest))
	mux.Handle("POST /api/requests/{id}/cancel", gated(auth.ActionCancelRequest, s.handleCancelRequest))

	// Admin
	mux.Handle("GET /api/admin/users", gated(auth.ActionListUsers, s.handleAdminListUsers))
	mux.Handle("GET /api/admin/requests", gated(auth.ActionListAllRequests, s.handleAdminListRequests))

	// Properties
	mux.Handle("POST /api/properties", gated(auth.ActionCreateProperty, s.handleCreateProperty))
	mux.HandleFunc("GET /api/properties", s.handleListProperties)

	for _, r := range s.extra {
		r.RegisterRoutes(mux)
	}

	return mux
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails. In-flight requests get shutdownTimeout to drain.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// handleHealth handles GET /health liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady handles GET /health/ready. The store is opened before the
// server starts, so readiness follows liveness here.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
