// Package slug turns free text into URL- and anchor-safe identifiers.
package slug

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	foldFrom = "àáäâãåăæçèéëêǵḧìíïîḿńǹñòóöôœøṕŕßśșțùúüûǘẃẍÿź·/_,:;"
	foldTo   = "aaaaaaaaceeeeghiiiimnnnooooooprssstuuuuuwxyz------"
)

var (
	whitespaceRe = regexp.MustCompile(`[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
	invalidRe    = regexp.MustCompile(`[^\w\-]+`)
	hyphensRe    = regexp.MustCompile(`-{2,}`)

	folder = newFolder()
	lower  = cases.Lower(language.Und)
)

func newFolder() *strings.Replacer {
	from := []rune(foldFrom)
	to := []rune(foldTo)
	pairs := make([]string, 0, 2*len(from))
	for i, r := range from {
		pairs = append(pairs, string(r), string(to[i]))
	}
	return strings.NewReplacer(pairs...)
}

// Make returns the slug for text. It is pure and idempotent:
// Make(Make(s)) == Make(s).
func Make(text string) string {
	s := lower.String(text)
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = folder.Replace(s)
	s = strings.ReplaceAll(s, "&", "-and-")
	s = invalidRe.ReplaceAllString(s, "")
	s = hyphensRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Registry hands out unique slugs within a single document. The first
// heading to produce a slug keeps it; later ones get -1, -2, ... suffixes.
// A Registry is not safe for concurrent use.
type Registry struct {
	used map[string]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{used: make(map[string]struct{})}
}

// Unique returns Make(text), disambiguated against earlier calls.
func (r *Registry) Unique(text string) string {
	base := Make(text)
	candidate := base
	for n := 1; ; n++ {
		if _, taken := r.used[candidate]; !taken {
			break
		}
		if base == "" {
			candidate = strconv.Itoa(n)
		} else {
			candidate = base + "-" + strconv.Itoa(n)
		}
	}
	r.used[candidate] = struct{}{}
	return candidate
}
