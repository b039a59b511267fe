// ABOUTME: Gateway orchestrator wiring the relay core behind an HTTP server
// ABOUTME: Owns routing, auth middleware placement, and server lifecycle

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/hookrelay/internal/auth"
	"github.com/2389/hookrelay/internal/config"
	"github.com/2389/hookrelay/internal/identity"
	"github.com/2389/hookrelay/internal/relay"
	"github.com/2389/hookrelay/internal/store"
)

// Gateway exposes the relay core over HTTP.
// Subscription management and the retry sweep sit behind bearer-token auth;
// event ingestion and identity endpoints are open.
type Gateway struct {
	config     *config.Config
	store      store.Store
	registry   *relay.Registry
	dispatcher *relay.Dispatcher
	sweeper    *relay.Sweeper
	identity   *identity.Service
	tokens     *auth.Tokens
	metrics    *metrics
	httpServer *http.Server
	logger     *slog.Logger
}

// New wires a Gateway from the given config and store.
func New(cfg *config.Config, s store.Store) *Gateway {
	tokens := auth.NewTokens([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	registry := relay.NewRegistry(s)

	var attempter relay.Attempter = relay.StubAttempter{}
	if cfg.Delivery.Mode == "http" {
		client := &http.Client{Timeout: cfg.Delivery.Timeout}
		attempter = relay.NewHTTPAttempter(s, client)
	}

	return &Gateway{
		config:     cfg,
		store:      s,
		registry:   registry,
		dispatcher: relay.NewDispatcher(s, registry),
		sweeper:    relay.NewSweeper(s, attempter),
		identity:   identity.NewService(s, tokens),
		tokens:     tokens,
		metrics:    newMetrics(),
		logger:     slog.Default().With("component", "gateway"),
	}
}

// Routes builds the HTTP handler with all endpoints registered.
func (g *Gateway) Routes() http.Handler {
	mux := http.NewServeMux()
	authMiddleware := auth.Middleware(g.tokens)

	// Identity endpoints (open)
	mux.HandleFunc("/register", g.handleRegister)
	mux.HandleFunc("/login", g.handleLogin)
	mux.HandleFunc("/validate-token", g.handleValidateToken)

	// Event intake is intentionally open: producers are not authenticated actors
	mux.HandleFunc("/webhook", g.handleIngest)

	// Subscription management and retry require a verified principal
	mux.Handle("/subscribe", authMiddleware(http.HandlerFunc(g.handleSubscribe)))
	mux.Handle("/subscriptions", authMiddleware(http.HandlerFunc(g.handleListSubscriptions)))
	mux.Handle("/unsubscribe/", authMiddleware(http.HandlerFunc(g.handleUnsubscribe)))
	mux.Handle("/retry", authMiddleware(http.HandlerFunc(g.handleRetry)))

	mux.HandleFunc("/health", g.handleHealth)

	if g.config.Metrics.Enabled {
		mux.Handle(g.config.Metrics.Path, g.metrics.handler())
	}

	return mux
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (g *Gateway) Start(ctx context.Context) error {
	g.httpServer = &http.Server{
		Addr:              g.config.Server.HTTPAddr,
		Handler:           g.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", g.config.Server.HTTPAddr)
		if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g.logger.Info("shutting down HTTP server")
	if err := g.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
