package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func tempContent(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s, dir
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalk_FiltersByExtension(t *testing.T) {
	s, dir := tempContent(t)
	writeFile(t, dir, "a.md", "a")
	writeFile(t, dir, "blog/2024/b.md", "b")
	writeFile(t, dir, "blog/2024/banner.png", "png")
	writeFile(t, dir, "notes.markdown", "not md")
	writeFile(t, dir, "readme.MD", "upper case ext")

	files, err := s.Walk(".md")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
		if !filepath.IsAbs(f.Path) {
			t.Errorf("path %q is not absolute", f.Path)
		}
	}
	sort.Strings(rels)
	if len(rels) != 2 || rels[0] != "a.md" || rels[1] != "blog/2024/b.md" {
		t.Errorf("rels = %v, want [a.md blog/2024/b.md]", rels)
	}
}

func TestWalk_MissingRootFails(t *testing.T) {
	s, dir := tempContent(t)
	writeFile(t, dir, "a.md", "a")
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	files, err := s.Walk(".md")
	if err == nil {
		t.Fatal("expected error for removed root")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
	if files != nil {
		t.Errorf("expected no partial result, got %v", files)
	}
}

func TestRead(t *testing.T) {
	s, dir := tempContent(t)
	writeFile(t, dir, "sub/note.md", "# Hello\n")
	got, err := s.Read("sub/note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\n" {
		t.Errorf("content = %q", got)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s, _ := tempContent(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if _, err := s.Resolve(p); err == nil {
			t.Errorf("expected resolve error for path %q", p)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "quill-test-*")
	_ = f.Close()
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
