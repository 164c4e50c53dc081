// Package postservice is the transport-neutral read API over the post
// collection, shared by the HTTP and MCP layers.
package postservice

import (
	"context"
	"time"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/collection"
	"github.com/starford/quill/internal/models"
)

// PostListItem is a lightweight item in a list response.
type PostListItem struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags"`
	Published    bool     `json:"published"`
	Banner       string   `json:"banner,omitempty"`
	CanonicalURL string   `json:"canonical_url"`
}

// PostDetail is the full representation of a post.
type PostDetail struct {
	PostListItem
	HTML         string           `json:"html"`
	Author       string           `json:"author,omitempty"`
	BannerCredit string           `json:"banner_credit,omitempty"`
	Publisher    string           `json:"publisher,omitempty"`
	Warnings     []models.Warning `json:"warnings"`
}

// ViewOptions control how a post's fields are formatted.
type ViewOptions struct {
	HTMLEntities bool
	DateMode     string
}

// FailureItem describes a document skipped during a rebuild.
type FailureItem struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// RebuildResult summarises a rebuild.
type RebuildResult struct {
	Snapshot string        `json:"snapshot"`
	BuiltAt  time.Time     `json:"built_at"`
	Posts    int           `json:"posts"`
	Failures []FailureItem `json:"failures"`
}

// Site holds the values needed to derive canonical URLs.
type Site struct {
	URL      string
	PostPath string
}

// Service answers post queries against the current snapshot.
type Service struct {
	store     *collection.Store
	site      Site
	onRebuild func(*collection.Snapshot)
}

// NewService creates a new post service. onRebuild, if non-nil, is called
// after every successful Rebuild.
func NewService(store *collection.Store, site Site, onRebuild func(*collection.Snapshot)) *Service {
	return &Service{store: store, site: site, onRebuild: onRebuild}
}

// Ready reports whether a snapshot has been built.
func (s *Service) Ready() bool {
	return s.store.Ready()
}

// ListPosts returns posts newest first. A nil published filter returns all.
func (s *Service) ListPosts(ctx context.Context, published *bool) ([]PostListItem, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	posts := snap.Posts(published)
	items := make([]PostListItem, len(posts))
	for i, p := range posts {
		items[i] = s.listItem(p.Metadata, collection.DateISO)
	}
	return items, nil
}

// GetPost returns the post with the given slug, or apperr.ErrNotFound.
func (s *Service) GetPost(ctx context.Context, slug string, opts ViewOptions) (*PostDetail, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := snap.Post(slug)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	html := p.HTML
	if opts.HTMLEntities {
		html = collection.EscapeHTML(html)
	}
	return &PostDetail{
		PostListItem: s.listItem(p.Metadata, opts.DateMode),
		HTML:         html,
		Author:       p.Metadata.Author,
		BannerCredit: p.Metadata.BannerCredit,
		Publisher:    p.Metadata.Publisher,
		Warnings:     nonNilSlice(p.Warnings),
	}, nil
}

// Rebuild rebuilds the collection from disk.
func (s *Service) Rebuild(ctx context.Context) (*RebuildResult, error) {
	snap, err := s.store.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if s.onRebuild != nil {
		s.onRebuild(snap)
	}
	return Summarize(snap), nil
}

// Summarize converts a snapshot into a RebuildResult.
func Summarize(snap *collection.Snapshot) *RebuildResult {
	failures := make([]FailureItem, 0, len(snap.Failures()))
	for _, f := range snap.Failures() {
		failures = append(failures, FailureItem{Path: f.Path, Error: f.Err.Error()})
	}
	return &RebuildResult{
		Snapshot: snap.ID,
		BuiltAt:  snap.BuiltAt,
		Posts:    snap.Len(),
		Failures: failures,
	}
}

func (s *Service) listItem(m models.Metadata, dateMode string) PostListItem {
	return PostListItem{
		Slug:         m.Slug,
		Title:        m.Title,
		Date:         collection.FormatDate(m, dateMode),
		Description:  m.Description,
		Tags:         nonNilSlice(m.Tags),
		Published:    m.Published,
		Banner:       m.Banner,
		CanonicalURL: collection.CanonicalURL(m, s.site.URL, s.site.PostPath),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
