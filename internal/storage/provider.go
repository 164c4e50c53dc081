// Package storage defines the content-tree file-system abstraction.
package storage

// File is one file found by a walk.
type File struct {
	// Path is the absolute path on disk.
	Path string
	// RelPath is the path relative to the content root, with forward slashes.
	RelPath string
}

// Provider is the interface for read-only content access.
type Provider interface {
	// Root returns the absolute content root.
	Root() string
	// Walk returns every file under the root whose extension equals ext.
	Walk(ext string) ([]File, error)
	// Read returns the raw bytes of the file at rel (relative to the root).
	Read(rel string) ([]byte, error)
	// Resolve maps rel to an absolute path, rejecting paths outside the root.
	Resolve(rel string) (string, error)
}
