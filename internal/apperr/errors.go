package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNoFrontmatter = errors.New("frontmatter block not found")
)
