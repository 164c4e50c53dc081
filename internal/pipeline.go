package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/quill/internal/cache"
	"github.com/starford/quill/internal/collection"
	"github.com/starford/quill/internal/markdown"
	"github.com/starford/quill/internal/postservice"
	"github.com/starford/quill/internal/storage"
)

// pipeline is the content side of the application shared by every command.
type pipeline struct {
	cfg    *Config
	logger *slog.Logger
	fs     *storage.FS
	cache  *cache.DB
	store  *collection.Store
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOut: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger installs a structured JSON logger as the default.
func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openPipeline wires storage, the optional render cache and the collection
// store. The returned close function releases the cache.
func openPipeline(cfg *Config, logger *slog.Logger) (*pipeline, func(), error) {
	fs, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	p := &pipeline{cfg: cfg, logger: logger, fs: fs}
	closeFn := func() {}

	opts := collection.Options{
		Provider:  fs,
		Extension: cfg.Content.Extension,
		BasePath:  cfg.Site.BasePath,
		Renderer: markdown.NewRenderer(markdown.Options{
			BasePath: cfg.Site.BasePath,
			PostPath: cfg.Site.PostPath,
		}),
		Logger: logger,
	}

	if cfg.Cache.Enabled() {
		db, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init render cache: %w", err)
		}
		p.cache = db
		opts.Cache = db
		closeFn = func() {
			if err := db.Close(); err != nil {
				logger.Warn("render cache close failed", slog.String("error", err.Error()))
			}
		}
	}

	p.store = collection.NewStore(opts)
	return p, closeFn, nil
}

// initialBuild builds the first snapshot; a failure here is fatal.
func (p *pipeline) initialBuild(ctx context.Context) (*collection.Snapshot, error) {
	snap, err := p.store.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial build: %w", err)
	}
	return snap, nil
}

func (p *pipeline) service(onRebuild func(*collection.Snapshot)) *postservice.Service {
	return postservice.NewService(p.store, postservice.Site{
		URL:      p.cfg.Site.URL,
		PostPath: p.cfg.Site.PostPath,
	}, onRebuild)
}
