// Package testutil provides shared test helpers for setting up content trees and caches.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/quill/internal/cache"
	"github.com/starford/quill/internal/storage"
)

// TestCache creates a temporary SQLite render cache that is automatically cleaned up.
func TestCache(t *testing.T) *cache.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "quill-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := cache.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content directory with a storage.Provider.
func TestContent(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content to rel under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return abs
}

// PostSource returns a Markdown document with the minimal frontmatter a
// valid post needs.
func PostSource(title, slug, date string, published bool, body string) string {
	return fmt.Sprintf("---\ntitle: %s\nslug: %s\ndate: %s\npublished: %t\n---\n%s", title, slug, date, published, body)
}

// WritePost writes a post built by PostSource to rel under root.
func WritePost(t *testing.T, root, rel, title, slug, date string, published bool, body string) string {
	t.Helper()
	return WriteFile(t, root, rel, PostSource(title, slug, date, published, body))
}
