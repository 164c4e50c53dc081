// Package parser extracts frontmatter and metadata from Markdown posts.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/starford/quill/internal/apperr"
)

const delim = "---"

// Result holds the output of splitting a Markdown file.
type Result struct {
	// Fields are the key/value pairs of the frontmatter block.
	Fields map[string]string
	// RawMetadata is the unparsed text between the fences.
	RawMetadata string
	// Body is the Markdown after the closing fence.
	Body string
}

type block struct {
	raw    string
	fields map[string]string
}

var utf8BOM = []byte("\ufeff")

// lineFormat is a "---" fenced block of "key: value" lines.
var lineFormat = frontmatter.NewFormat(delim, delim, unmarshalLines)

// Extract splits data into its frontmatter block and body. A file without a
// complete leading block yields an error wrapping apperr.ErrNoFrontmatter.
// A leading UTF-8 byte order mark is ignored.
func Extract(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var b block
	rest, err := frontmatter.MustParse(bytes.NewReader(data), &b, lineFormat)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return nil, apperr.ErrNoFrontmatter
		}
		return nil, fmt.Errorf("parser: frontmatter: %w", err)
	}
	if b.fields == nil {
		b.fields = map[string]string{}
	}
	return &Result{
		Fields:      b.fields,
		RawMetadata: b.raw,
		Body:        string(rest),
	}, nil
}

func unmarshalLines(data []byte, v interface{}) error {
	b, ok := v.(*block)
	if !ok {
		return fmt.Errorf("parser: unsupported frontmatter target %T", v)
	}
	b.raw = string(data)
	b.fields = ParseFields(b.raw)
	return nil
}

// ParseFields parses "key: value" lines. Only the first colon on a line
// separates key from value; both sides are trimmed. Lines without a colon
// and lines with an empty key are ignored. Later keys override earlier ones.
func ParseFields(raw string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}
