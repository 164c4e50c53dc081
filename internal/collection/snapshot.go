package collection

import (
	"slices"
	"time"

	"github.com/starford/quill/internal/models"
)

// Snapshot is an immutable, sorted set of posts produced by one build.
// It is safe for concurrent readers.
type Snapshot struct {
	ID      string
	BuiltAt time.Time

	posts      []*models.Post
	bySlug     map[string]*models.Post
	failures   []Failure
	duplicates map[string][]string
}

// NewSnapshot indexes posts, which must already be sorted newest first. For a
// duplicated slug the first (most recent) post wins.
func NewSnapshot(id string, builtAt time.Time, posts []*models.Post, failures []Failure) *Snapshot {
	s := &Snapshot{
		ID:         id,
		BuiltAt:    builtAt,
		posts:      posts,
		bySlug:     make(map[string]*models.Post, len(posts)),
		failures:   failures,
		duplicates: map[string][]string{},
	}
	for _, p := range posts {
		slug := p.Metadata.Slug
		if first, ok := s.bySlug[slug]; ok {
			if len(s.duplicates[slug]) == 0 {
				s.duplicates[slug] = []string{first.Path}
			}
			s.duplicates[slug] = append(s.duplicates[slug], p.Path)
			continue
		}
		s.bySlug[slug] = p
	}
	return s
}

// Posts returns the posts in stored order (date descending). A nil filter
// returns every post; otherwise only posts whose Published flag equals
// *published are returned.
func (s *Snapshot) Posts(published *bool) []*models.Post {
	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if published != nil && p.Metadata.Published != *published {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Post looks up a post by slug.
func (s *Snapshot) Post(slug string) (*models.Post, bool) {
	p, ok := s.bySlug[slug]
	return p, ok
}

// Len is the number of posts in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.posts)
}

// Failures lists the documents that were skipped during the build.
func (s *Snapshot) Failures() []Failure {
	return slices.Clone(s.failures)
}

// Duplicates maps each slug used by more than one post to the paths using it.
func (s *Snapshot) Duplicates() map[string][]string {
	if s.duplicates == nil {
		return nil
	}
	out := make(map[string][]string, len(s.duplicates))
	for slug, paths := range s.duplicates {
		out[slug] = slices.Clone(paths)
	}
	return out
}
