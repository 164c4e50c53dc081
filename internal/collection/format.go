package collection

import (
	"path"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/starford/quill/internal/models"
)

// Date display modes.
const (
	DateISO   = "iso"
	DateHuman = "human"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes &, <, > and " in s. Existing entities are escaped
// again.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatDate renders the post date for display. DateISO (and any unknown
// mode) yields the date exactly as written in the frontmatter; DateHuman
// yields e.g. "March 3rd 2021".
func FormatDate(meta models.Metadata, mode string) string {
	if mode != DateHuman {
		return meta.RawDate
	}
	d := meta.Date
	return d.Format("January") + " " + humanize.Ordinal(d.Day()) + " " + strconv.Itoa(d.Year())
}

// CanonicalURL returns the post's canonical_url, or siteURL + prefix + "/" +
// slug when none was given.
func CanonicalURL(meta models.Metadata, siteURL, prefix string) string {
	if meta.CanonicalURL != "" {
		return meta.CanonicalURL
	}
	return strings.TrimSuffix(siteURL, "/") + path.Join("/", prefix, meta.Slug)
}
