// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/wingedpig/claudeui/internal/api/handlers"
	"github.com/wingedpig/claudeui/internal/api/middleware"
	"github.com/wingedpig/claudeui/internal/claude"
	"github.com/wingedpig/claudeui/internal/events"
	"github.com/wingedpig/claudeui/internal/hub"
	"github.com/wingedpig/claudeui/internal/projects"
	"github.com/wingedpig/claudeui/internal/summary"
	"github.com/wingedpig/claudeui/internal/terminal"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host         string
	Port         int
	TLSCert      string // Path to TLS certificate file
	TLSKey       string // Path to TLS private key file
	TLSTailscale bool   // Use certificates from the local Tailscale daemon
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Spawner  *claude.Spawner
	Store    *projects.Store
	Summary  *summary.Service
	Shells   *terminal.Manager
	Hub      *hub.Hub
	EventBus events.EventBus
}

// NewRouter creates the REST router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS)

	// Preflight requests for any path; CORS answers them.
	r.Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	api := r.PathPrefix("/api").Subrouter()

	summaryHandler := handlers.NewSummaryHandler(deps.Summary.Generator())
	api.HandleFunc("/generate-session-summary", summaryHandler.Generate).Methods("POST")

	projectsHandler := handlers.NewProjectsHandler(deps.Store, deps.Summary, deps.Spawner.Registry())
	api.HandleFunc("/projects", projectsHandler.List).Methods("GET")
	api.HandleFunc("/projects/{project}/sessions", projectsHandler.Sessions).Methods("GET")
	api.HandleFunc("/projects/{project}/sessions/{session}", projectsHandler.DeleteSession).Methods("DELETE")
	api.HandleFunc("/projects/{project}/sessions/{session}/messages", projectsHandler.Messages).Methods("GET")
	api.HandleFunc("/projects/{project}/sessions/{session}/summary", projectsHandler.RenameSession).Methods("PUT")
	api.HandleFunc("/projects/{project}/sessions/{session}/summary/lock", projectsHandler.UnlockSummary).Methods("DELETE")

	sessionsHandler := handlers.NewSessionsHandler(deps.Spawner)
	api.HandleFunc("/sessions/active", sessionsHandler.Active).Methods("GET")
	api.HandleFunc("/sessions/{session}/abort", sessionsHandler.Abort).Methods("POST")

	shellHandler := handlers.NewShellHandler(deps.Shells)
	api.HandleFunc("/shell/sessions", shellHandler.ListSessions).Methods("GET")

	eventHandler := handlers.NewEventHandler(deps.EventBus)
	api.HandleFunc("/events", eventHandler.History).Methods("GET")

	// Debug/profiling endpoints
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// NewHandler creates the complete HTTP handler: WebSocket endpoints in
// front of the REST router.
func NewHandler(deps Dependencies, router *mux.Router) http.Handler {
	u := NewUpgradeRouter(router)
	u.Handle("/ws", handlers.NewChatHandler(deps.Spawner, deps.Hub).WebSocket)
	u.Handle("/shell", handlers.NewShellHandler(deps.Shells).WebSocket)
	u.Handle("/api/events/ws", handlers.NewEventHandler(deps.EventBus).WebSocket)
	return u
}

// Server represents the API server.
type Server struct {
	router  *mux.Router
	handler http.Handler
	cfg     ServerConfig
	server  *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	router := NewRouter(deps)
	handler := NewHandler(deps, router)
	return &Server{
		router:  router,
		handler: handler,
		cfg:     cfg,
		server: &http.Server{
			Addr:    cfg.Host + ":" + strconv.Itoa(cfg.Port),
			Handler: handler,
		},
	}
}

// Router returns the REST router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the root handler, including WebSocket endpoints.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe starts the server. TLS is used when a certificate pair or
// Tailscale certificates are configured.
func (s *Server) ListenAndServe() error {
	addr := s.server.Addr

	tlsConfig, err := TLSConfig(s.cfg)
	if err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	if tlsConfig != nil {
		s.server.TLSConfig = tlsConfig
		log.Printf("API server listening on https://%s (TLS enabled)", addr)
		return s.server.ListenAndServeTLS("", "")
	}

	log.Printf("API server listening on http://%s", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server. Hijacked WebSocket
// connections are not tracked by net/http and must be closed separately.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")

	// Create a timeout context if none provided
	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return s.server.Shutdown(shutdownCtx)
}
