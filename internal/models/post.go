// Package models defines the domain types for quill.
package models

import (
	"path"
	"time"
)

// Document is one Markdown file as found on disk, split into its raw parts.
type Document struct {
	Path        string `json:"path"`
	RelPath     string `json:"rel_path"`
	RawMetadata string `json:"-"`
	RawBody     string `json:"-"`
}

// Dir returns the document's directory relative to the content root,
// using forward slashes. The root itself is ".".
func (d Document) Dir() string {
	return path.Dir(d.RelPath)
}

// Metadata is the parsed frontmatter of a post.
type Metadata struct {
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	Date         time.Time         `json:"date"`
	RawDate      string            `json:"raw_date"`
	Tags         []string          `json:"tags"`
	Published    bool              `json:"published"`
	Banner       string            `json:"banner,omitempty"`
	BannerCredit string            `json:"banner_credit,omitempty"`
	Description  string            `json:"description,omitempty"`
	Author       string            `json:"author,omitempty"`
	CanonicalURL string            `json:"canonical_url,omitempty"`
	Publisher    string            `json:"publisher,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// Warning is a non-fatal diagnostic produced while rendering a post.
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Post is the rendered, queryable form of a Document.
type Post struct {
	Path     string    `json:"path"`
	HTML     string    `json:"html"`
	Metadata Metadata  `json:"metadata"`
	Warnings []Warning `json:"warnings,omitempty"`
}
