package parser

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quill/internal/models"
)

var (
	schemeRe   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)
	postSlugRe = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
)

// MetadataOptions controls how derived metadata fields are computed.
type MetadataOptions struct {
	// BasePath is the site path under which the content tree is served.
	BasePath string
}

// ParseMetadata converts frontmatter fields into Metadata for doc.
func ParseMetadata(doc models.Document, fields map[string]string, opts MetadataOptions) (models.Metadata, error) {
	m := models.Metadata{
		Title:        fields["title"],
		Slug:         fields["slug"],
		RawDate:      fields["date"],
		Tags:         SplitTags(fields["tags"]),
		Published:    fields["published"] == "true",
		BannerCredit: fields["bannerCredit"],
		Description:  fields["description"],
		Author:       fields["author"],
		CanonicalURL: fields["canonical_url"],
		Publisher:    fields["publisher"],
		Fields:       make(map[string]string, len(fields)),
	}
	for k, v := range fields {
		m.Fields[k] = v
	}
	if m.BannerCredit == "" {
		m.BannerCredit = fields["banner_credit"]
	}
	if b := fields["banner"]; b != "" {
		m.Banner = ResolveAssetURL(opts.BasePath, doc.Dir(), b)
	}

	err := validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.Slug, validation.Required, validation.Match(postSlugRe)),
		validation.Field(&m.RawDate, validation.Required),
	)
	if err != nil {
		return models.Metadata{}, fmt.Errorf("parser: metadata: %w", err)
	}

	date, err := dateparse.ParseIn(m.RawDate, time.UTC)
	if err != nil {
		return models.Metadata{}, fmt.Errorf("parser: metadata: date %q: %w", m.RawDate, err)
	}
	m.Date = date
	return m, nil
}

// SplitTags splits a comma-separated tag list, trimming each entry and
// dropping empty ones. The result is never nil.
func SplitTags(raw string) []string {
	out := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// IsAbsoluteURL reports whether ref starts with a URI scheme or is
// protocol-relative.
func IsAbsoluteURL(ref string) bool {
	return schemeRe.MatchString(ref) || strings.HasPrefix(ref, "//")
}

// ResolveAssetURL maps an asset reference found in the document at docDir
// (relative to the content root) to a site URL. Absolute URLs and
// site-absolute paths are returned unchanged; relative references are
// joined onto basePath and docDir with forward slashes.
func ResolveAssetURL(basePath, docDir, ref string) string {
	if IsAbsoluteURL(ref) || strings.HasPrefix(ref, "/") {
		return ref
	}
	return path.Join("/", strings.ReplaceAll(basePath, `\`, "/"), docDir, strings.ReplaceAll(ref, `\`, "/"))
}
