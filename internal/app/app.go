// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wingedpig/claudeui/internal/api"
	"github.com/wingedpig/claudeui/internal/claude"
	"github.com/wingedpig/claudeui/internal/config"
	"github.com/wingedpig/claudeui/internal/events"
	"github.com/wingedpig/claudeui/internal/hub"
	"github.com/wingedpig/claudeui/internal/projects"
	"github.com/wingedpig/claudeui/internal/protocol"
	"github.com/wingedpig/claudeui/internal/summary"
	"github.com/wingedpig/claudeui/internal/terminal"
	"github.com/wingedpig/claudeui/internal/watcher"
)

// App is the main application container.
type App struct {
	mu sync.RWMutex

	version   string
	home      string
	config    *config.Config
	eventBus  events.EventBus
	registry  *claude.Registry
	spawner   *claude.Spawner
	store     *projects.Store
	summary   *summary.Service
	shells    *terminal.Manager
	hub       *hub.Hub
	watcher   *watcher.ProjectWatcher
	apiServer *api.Server

	projectsSub events.SubscriptionID

	done     chan struct{}
	stopOnce sync.Once
}

// Options holds configuration options for the app.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	Debug      bool
	Version    string // Application version string
}

// New creates a new App instance.
func New(opts Options) (*App, error) {
	app := &App{
		version: opts.Version,
		home:    os.Getenv("HOME"),
		done:    make(chan struct{}),
	}

	// Load configuration
	loader := config.NewLoader()
	cfg, err := loader.LoadWithDefaults(context.Background(), opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override host/port if specified
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.Debug {
		cfg.Logging.Debug = true
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	app.config = cfg

	// Initialize event bus
	app.eventBus = events.NewMemoryEventBus(events.MemoryBusConfig{
		HistoryMaxEvents: cfg.Events.History.MaxEvents,
		HistoryMaxAge:    config.ParseDuration(cfg.Events.History.MaxAge, time.Hour),
	})

	return app, nil
}

// Config returns the effective configuration.
func (app *App) Config() *config.Config {
	return app.config
}

// Initialize builds every component and the API server.
func (app *App) Initialize(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	cfg := app.config

	app.registry = claude.NewRegistry()
	app.spawner = claude.NewSpawner(claude.SpawnerConfig{
		Binary:      cfg.Claude.Binary,
		Model:       cfg.Claude.Model,
		IdleTimeout: cfg.Claude.IdleTimeoutDuration(),
		HomeDir:     app.home,
		Debug:       cfg.Logging.Debug,
	}, app.registry, app.eventBus)

	app.store = projects.NewStore(cfg.Projects.Dir)

	provider, err := newSummaryProvider(&cfg.Summary)
	if err != nil {
		return err
	}
	gen := summary.NewGenerator(provider, config.ParseDuration(cfg.Summary.Timeout, 15*time.Second), cfg.Summary.MaxWords)
	if name := gen.ProviderName(); name != "" {
		log.Printf("Session titles via %s (%s)", name, cfg.Summary.Model)
	} else {
		log.Printf("Session titles via keyword heuristic")
	}
	app.summary = summary.NewService(gen, app.store, app.registry, app.eventBus)
	app.spawner.OnNewSessionComplete(app.summary.SummarizeSession)

	app.hub = hub.New()

	app.shells = terminal.NewManager(terminal.Config{
		Shell: cfg.Shell.Command,
		Dir:   app.home,
		Term:  cfg.Shell.Term,
		Cols:  cfg.Shell.Cols,
		Rows:  cfg.Shell.Rows,
	}, app.eventBus)

	app.watcher, err = watcher.NewProjectWatcher(cfg.Projects.Dir, app.eventBus, config.ParseDuration(cfg.Projects.Debounce, 300*time.Millisecond))
	if err != nil {
		return fmt.Errorf("failed to watch projects: %w", err)
	}

	app.projectsSub, err = app.eventBus.Subscribe(events.EventProjectsUpdated, app.broadcastProjects)
	if err != nil {
		return fmt.Errorf("failed to subscribe to project updates: %w", err)
	}

	app.apiServer = api.NewServer(api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		TLSCert:      cfg.Server.TLSCert,
		TLSKey:       cfg.Server.TLSKey,
		TLSTailscale: cfg.Server.TLSTailscale,
	}, api.Dependencies{
		Spawner:  app.spawner,
		Store:    app.store,
		Summary:  app.summary,
		Shells:   app.shells,
		Hub:      app.hub,
		EventBus: app.eventBus,
	})

	return nil
}

// newSummaryProvider returns nil when no LLM is configured; titles then
// come from the keyword heuristic.
func newSummaryProvider(cfg *config.SummaryConfig) (summary.Provider, error) {
	name := cfg.ActiveProvider()
	key := cfg.OpenAIKey
	if name == summary.ProviderAnthropic {
		key = cfg.AnthropicKey
	}
	provider, err := summary.NewProvider(summary.ProviderConfig{
		Provider: name,
		Model:    cfg.Model,
		APIKey:   key,
		BaseURL:  cfg.BaseURL,
	})
	if errors.Is(err, summary.ErrNoProvider) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create summary provider: %w", err)
	}
	return provider, nil
}

// broadcastProjects pushes a fresh project list to every chat client.
func (app *App) broadcastProjects(ctx context.Context, event events.Event) error {
	list, err := app.store.ListProjects(ctx)
	if err != nil {
		log.Printf("Warning: failed to list projects: %v", err)
		return err
	}

	changeType, _ := event.Payload["changeType"].(string)
	changedFile, _ := event.Payload["changedFile"].(string)
	sent, err := app.hub.Broadcast(protocol.ProjectsUpdated{
		Type:        protocol.TypeProjectsUpdated,
		Projects:    list,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		ChangeType:  changeType,
		ChangedFile: changedFile,
	})
	if err != nil {
		return err
	}
	if app.config.Logging.Debug {
		log.Printf("Projects update (%s %s) sent to %d clients", changeType, changedFile, sent)
	}
	return nil
}

// Handler returns the root HTTP handler. Only valid after Initialize.
func (app *App) Handler() http.Handler {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.apiServer.Handler()
}

// Start starts all components.
func (app *App) Start(ctx context.Context) error {
	log.Printf("claudeui %s: projects in %s", app.version, app.config.Projects.Dir)

	// Start API server in background
	go func() {
		log.Printf("Starting API server on %s:%d", app.config.Server.Host, app.config.Server.Port)
		if err := app.apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server error: %v", err)
			app.Stop()
		}
	}()

	return nil
}

// Run starts the app and blocks until shutdown.
func (app *App) Run(ctx context.Context) error {
	if err := app.Initialize(ctx); err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		return err
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case <-ctx.Done():
		log.Printf("Context cancelled, shutting down...")
	case <-app.done:
		log.Printf("Shutdown requested...")
	}

	return app.Shutdown(context.Background())
}

// Shutdown gracefully shuts down all components.
func (app *App) Shutdown(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	log.Println("Shutting down...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop API server first to stop accepting new requests
	if app.apiServer != nil {
		if err := app.apiServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down API server: %v", err)
		}
	}

	// Hijacked WebSocket connections outlive the HTTP server.
	if app.hub != nil {
		app.hub.CloseAll()
	}

	if app.watcher != nil {
		app.watcher.Close()
	}
	if app.projectsSub != "" {
		app.eventBus.Unsubscribe(app.projectsSub)
	}

	if app.shells != nil {
		if err := app.shells.TerminateAll(); err != nil {
			log.Printf("Error terminating shells: %v", err)
		}
	}

	if app.spawner != nil {
		if err := app.spawner.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error stopping claude processes: %v", err)
		}
	}

	// Close event bus
	if app.eventBus != nil {
		app.eventBus.Close()
	}

	log.Println("Shutdown complete")
	return nil
}

// Stop signals the app to shut down. Safe to call multiple times.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}
