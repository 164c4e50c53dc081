// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/graphql-go/graphql"
	"golang.org/x/sync/errgroup"

	"github.com/starford/quill/internal/api"
	"github.com/starford/quill/internal/collection"
	"github.com/starford/quill/internal/gql"
	"github.com/starford/quill/internal/mcpserver"
	"github.com/starford/quill/internal/postservice"
	"github.com/starford/quill/internal/sse"
	"github.com/starford/quill/internal/storage"
	"github.com/starford/quill/internal/watcher"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("cache_path", cfg.Cache.Path),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	p, closePipeline, err := openPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer closePipeline()

	if _, err := p.initialBuild(ctx); err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(30 * time.Second)
	defer broker.Close()

	svc := p.service(broker.PublishRebuilt)
	schema, err := gql.NewSchema(p.store, gql.Site{URL: cfg.Site.URL, PostPath: cfg.Site.PostPath})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(cfg, svc, schema, broker, p.fs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild on content changes and notify SSE clients.
	if cfg.Watch.Enabled {
		buildFailed := func(err error) {
			broker.Publish(sse.Event{Type: sse.EventBuildFailed, Data: sse.BuildFailed{Error: err.Error()}})
		}
		g.Go(func() error {
			return watcher.Watch(gCtx, p.store, watcher.Options{
				Root:      p.fs.Root(),
				Extension: cfg.Content.Extension,
				Debounce:  cfg.Watch.Debounce,
				Logger:    logger,
				OnError:   buildFailed,
			}, broker.PublishRebuilt)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stops the watcher.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// newHTTPHandler assembles the full route tree.
func newHTTPHandler(cfg *Config, svc *postservice.Service, schema graphql.Schema, broker *sse.Broker, fs storage.Provider) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	h := api.NewHandler(svc)
	r.Get("/health/live", api.Live)
	r.Get("/health/ready", h.Ready)

	// GraphQL.
	gh := api.NewGraphQLHandler(schema)
	r.Get("/graphql", gh.ServeHTTP)
	r.Post("/graphql", gh.ServeHTTP)

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	// Content assets.
	ah := api.NewAssetHandler(fs, cfg.Content.Extension)
	r.Get(path.Join("/", cfg.Site.BasePath)+"/*", ah.ServeFile)

	return r
}

// Build runs a single build and returns the snapshot. Only a failed walk is
// an error; skipped documents are reported on the snapshot.
func Build(ctx context.Context, opts ...Option) (*collection.Snapshot, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	logger := app.newLogger()

	p, closePipeline, err := openPipeline(app.config, logger)
	if err != nil {
		return nil, err
	}
	defer closePipeline()

	return p.initialBuild(ctx)
}

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	// Logs must not interleave with the protocol on stdout.
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.newLogger()

	p, closePipeline, err := openPipeline(app.config, logger)
	if err != nil {
		return err
	}
	defer closePipeline()

	if _, err := p.initialBuild(ctx); err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("version", app.version))
	return mcpserver.New(p.service(nil), app.version).ServeStdio()
}
