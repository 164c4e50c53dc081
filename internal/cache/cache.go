package cache

import "github.com/starford/quill/internal/models"

// RenderCache stores rendered post bodies keyed by path and content checksum.
// Consumers should depend on this interface rather than the concrete *DB type.
type RenderCache interface {
	Get(path, checksum string) (*Entry, error)
	Put(e Entry) error
	Prune(keep map[string]struct{}) (int, error)
	Close() error
}

// Verify *DB satisfies RenderCache at compile time.
var _ RenderCache = (*DB)(nil)

// Entry is one cached render.
type Entry struct {
	Path     string
	Checksum string
	HTML     string
	Warnings []models.Warning
}
