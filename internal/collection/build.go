// Package collection assembles rendered posts into immutable snapshots and
// answers queries against them.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quill/internal/cache"
	"github.com/starford/quill/internal/checksum"
	"github.com/starford/quill/internal/markdown"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/parser"
	"github.com/starford/quill/internal/storage"
)

// Options configures a build.
type Options struct {
	Provider  storage.Provider
	Extension string
	BasePath  string
	Renderer  *markdown.Renderer
	// Cache is optional. When set, documents whose content and renderer
	// fingerprint are unchanged reuse the cached HTML.
	Cache  cache.RenderCache
	Logger *slog.Logger
}

// Failure records a document that could not be turned into a post.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return f.Path + ": " + f.Err.Error()
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Build walks the content tree and produces a snapshot. Per-document
// problems are collected as failures; only a failed walk aborts the build.
func Build(ctx context.Context, opts Options) (*Snapshot, error) {
	if opts.Provider == nil || opts.Renderer == nil {
		return nil, errors.New("collection: provider and renderer are required")
	}
	log := opts.logger()
	ext := opts.Extension
	if ext == "" {
		ext = ".md"
	}

	files, err := opts.Provider.Walk(ext)
	if err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}

	var (
		posts    []*models.Post
		failures []Failure
		seen     = make(map[string]struct{}, len(files))
		hits     int
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collection: build cancelled: %w", err)
		}
		seen[f.RelPath] = struct{}{}
		post, cached, err := buildPost(opts, f)
		if err != nil {
			log.Warn("post skipped", slog.String("path", f.RelPath), slog.String("error", err.Error()))
			failures = append(failures, Failure{Path: f.RelPath, Err: err})
			continue
		}
		if cached {
			hits++
		}
		posts = append(posts, post)
	}

	slices.SortStableFunc(posts, func(a, b *models.Post) int {
		return b.Metadata.Date.Compare(a.Metadata.Date)
	})

	if opts.Cache != nil {
		if n, err := opts.Cache.Prune(seen); err != nil {
			log.Warn("render cache prune failed", slog.String("error", err.Error()))
		} else if n > 0 {
			log.Debug("render cache pruned", slog.Int("removed", n))
		}
	}

	snap := NewSnapshot(uuid.NewString(), time.Now().UTC(), posts, failures)
	for slug, paths := range snap.duplicates {
		log.Warn("duplicate slug", slog.String("slug", slug), slog.Any("paths", paths))
	}
	log.Info("posts built",
		slog.String("snapshot", snap.ID),
		slog.Int("posts", len(posts)),
		slog.Int("failed", len(failures)),
		slog.Int("cached", hits),
	)
	return snap, nil
}

// buildPost reads, parses and renders one file. The bool result reports a
// render cache hit.
func buildPost(opts Options, f storage.File) (*models.Post, bool, error) {
	data, err := opts.Provider.Read(f.RelPath)
	if err != nil {
		return nil, false, err
	}
	ex, err := parser.Extract(data)
	if err != nil {
		return nil, false, fmt.Errorf("collection: extract: %w", err)
	}
	doc := models.Document{
		Path:        f.Path,
		RelPath:     f.RelPath,
		RawMetadata: ex.RawMetadata,
		RawBody:     ex.Body,
	}
	meta, err := parser.ParseMetadata(doc, ex.Fields, parser.MetadataOptions{BasePath: opts.BasePath})
	if err != nil {
		return nil, false, err
	}

	post := &models.Post{Path: f.Path, Metadata: meta}
	sum := checksum.Sum(data, []byte(opts.Renderer.Fingerprint()))
	if opts.Cache != nil {
		if e, err := opts.Cache.Get(f.RelPath, sum); err == nil && e != nil {
			post.HTML = e.HTML
			post.Warnings = e.Warnings
			return post, true, nil
		}
	}

	res, err := opts.Renderer.Render(doc, meta, doc.RawBody)
	if err != nil {
		return nil, false, err
	}
	post.HTML = res.HTML
	post.Warnings = res.Warnings

	if opts.Cache != nil {
		if err := opts.Cache.Put(cache.Entry{
			Path:     f.RelPath,
			Checksum: sum,
			HTML:     res.HTML,
			Warnings: res.Warnings,
		}); err != nil {
			opts.logger().Warn("render cache write failed", slog.String("path", f.RelPath), slog.String("error", err.Error()))
		}
	}
	return post, false, nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
