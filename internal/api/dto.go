package api

import "github.com/starford/quill/internal/postservice"

// PostListItem is a lightweight item in a list response (aliased from the domain layer).
type PostListItem = postservice.PostListItem

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = postservice.PostDetail

// RebuildResult is returned after a rebuild (aliased from the domain layer).
type RebuildResult = postservice.RebuildResult

// PostListResponse wraps post listings.
type PostListResponse struct {
	Posts []PostListItem `json:"posts" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}
