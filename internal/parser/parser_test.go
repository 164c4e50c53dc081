package parser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/models"
)

func TestExtract_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\nslug: hello\n---\n# Hello\nBody text.\n")
	r, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Fields["title"] != "Hello" {
		t.Errorf("title = %q, want %q", r.Fields["title"], "Hello")
	}
	if r.Fields["slug"] != "hello" {
		t.Errorf("slug = %q, want %q", r.Fields["slug"], "hello")
	}
	if strings.TrimLeft(r.Body, "\r\n") != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
	if strings.TrimSpace(r.RawMetadata) != "title: Hello\nslug: hello" {
		t.Errorf("raw metadata = %q", r.RawMetadata)
	}
}

func TestExtract_FirstColonOnly(t *testing.T) {
	input := []byte("---\ntitle:   C# Language Highlights: Tuple Pattern Matching  \ncanonical_url: https://example.com/blog/x?a=b:c\n---\nbody\n")
	r, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.Fields["title"]; got != "C# Language Highlights: Tuple Pattern Matching" {
		t.Errorf("title = %q", got)
	}
	if got := r.Fields["canonical_url"]; got != "https://example.com/blog/x?a=b:c" {
		t.Errorf("canonical_url = %q", got)
	}
}

func TestExtract_LeadingByteOrderMark(t *testing.T) {
	r, err := Extract([]byte("\ufeff---\ntitle: Foo\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Fields["title"] != "Foo" {
		t.Errorf("title = %q, want %q", r.Fields["title"], "Foo")
	}
}

func TestExtract_NoFrontmatter(t *testing.T) {
	_, err := Extract([]byte("# Just a heading\nSome text.\n"))
	if !errors.Is(err, apperr.ErrNoFrontmatter) {
		t.Errorf("err = %v, want ErrNoFrontmatter", err)
	}
}

func TestExtract_UnclosedFrontmatter(t *testing.T) {
	_, err := Extract([]byte("---\ntitle: Open\n\nno closing fence\n"))
	if err == nil {
		t.Fatal("expected error for unclosed frontmatter")
	}
}

func TestParseFields_SkipsBlankAndColonlessLines(t *testing.T) {
	fields := ParseFields("title: Foo\n\njust text\n: no key\nauthor:  Jane \n")
	if len(fields) != 2 {
		t.Fatalf("fields = %v, want 2 entries", fields)
	}
	if fields["author"] != "Jane" {
		t.Errorf("author = %q", fields["author"])
	}
}

func TestParseMetadata_Scenario(t *testing.T) {
	fields := ParseFields("title: Foo\nslug: foo\ndate: 2024-01-01\ntags: a, b\npublished: true")
	m, err := ParseMetadata(models.Document{RelPath: "foo/index.md"}, fields, MetadataOptions{})
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if m.Title != "Foo" || m.Slug != "foo" {
		t.Errorf("title/slug = %q/%q", m.Title, m.Slug)
	}
	if !m.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", m.Date)
	}
	if len(m.Tags) != 2 || m.Tags[0] != "a" || m.Tags[1] != "b" {
		t.Errorf("tags = %v, want [a b]", m.Tags)
	}
	if !m.Published {
		t.Error("published = false, want true")
	}
}

func TestParseMetadata_PublishedRequiresLiteralTrue(t *testing.T) {
	for _, v := range []string{"True", "yes", "1", "false", ""} {
		fields := map[string]string{"title": "T", "slug": "t", "date": "2024-01-01", "published": v}
		m, err := ParseMetadata(models.Document{RelPath: "t.md"}, fields, MetadataOptions{})
		if err != nil {
			t.Fatalf("ParseMetadata: %v", err)
		}
		if m.Published {
			t.Errorf("published %q parsed as true", v)
		}
	}
}

func TestParseMetadata_BannerResolution(t *testing.T) {
	fields := map[string]string{"title": "T", "slug": "t", "date": "2024-01-01", "banner": "./images/banner.jpg"}
	m, err := ParseMetadata(models.Document{RelPath: "blog/my-post/index.md"}, fields, MetadataOptions{BasePath: "/content"})
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if m.Banner != "/content/blog/my-post/images/banner.jpg" {
		t.Errorf("banner = %q", m.Banner)
	}
}

func TestParseMetadata_MissingRequired(t *testing.T) {
	cases := []map[string]string{
		{"slug": "t", "date": "2024-01-01"},
		{"title": "T", "date": "2024-01-01"},
		{"title": "T", "slug": "t"},
		{"title": "T", "slug": "has spaces", "date": "2024-01-01"},
		{"title": "T", "slug": "t", "date": "not a date"},
	}
	for _, fields := range cases {
		if _, err := ParseMetadata(models.Document{RelPath: "t.md"}, fields, MetadataOptions{}); err == nil {
			t.Errorf("expected error for %v", fields)
		}
	}
}

func TestResolveAssetURL(t *testing.T) {
	cases := []struct {
		base, dir, ref, want string
	}{
		{"/content", "blog/post", "./a.png", "/content/blog/post/a.png"},
		{"content", "blog/post", "../shared/a.png", "/content/blog/shared/a.png"},
		{"", ".", "a.png", "/a.png"},
		{"/", "bits", `images\a.png`, "/bits/images/a.png"},
		{"/content", "blog", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"/content", "blog", "//cdn.example.com/a.png", "//cdn.example.com/a.png"},
		{"/content", "blog", "/static/a.png", "/static/a.png"},
	}
	for _, c := range cases {
		if got := ResolveAssetURL(c.base, c.dir, c.ref); got != c.want {
			t.Errorf("ResolveAssetURL(%q, %q, %q) = %q, want %q", c.base, c.dir, c.ref, got, c.want)
		}
	}
}
