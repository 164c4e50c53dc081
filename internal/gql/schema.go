// Package gql exposes the post collection as a GraphQL schema.
package gql

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/starford/quill/internal/collection"
	"github.com/starford/quill/internal/models"
)

// Source yields the snapshot a query runs against. *collection.Store
// satisfies it.
type Source interface {
	Current(ctx context.Context) (*collection.Snapshot, error)
}

// Site holds the values needed to derive canonical URLs.
type Site struct {
	URL      string
	PostPath string
}

// Request is a GraphQL request body.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// NewSchema builds the schema. Every query resolves against the snapshot
// current at the time its root field runs.
func NewSchema(src Source, site Site) (graphql.Schema, error) {
	metadataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Metadata",
		Fields: graphql.Fields{
			"title":        metaString(func(m models.Metadata) string { return m.Title }),
			"slug":         metaString(func(m models.Metadata) string { return m.Slug }),
			"description":  metaString(func(m models.Metadata) string { return m.Description }),
			"author":       metaString(func(m models.Metadata) string { return m.Author }),
			"banner":       metaString(func(m models.Metadata) string { return m.Banner }),
			"bannerCredit": metaString(func(m models.Metadata) string { return m.BannerCredit }),
			"publisher":    metaString(func(m models.Metadata) string { return m.Publisher }),
			"published": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Metadata).Published, nil
				},
			},
			"tags": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					tags := p.Source.(models.Metadata).Tags
					out := make([]string, len(tags))
					for i, t := range tags {
						out[i] = strings.ToLower(t)
					}
					return out, nil
				},
			},
			"date": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"displayAs": &graphql.ArgumentConfig{
						Type:         graphql.String,
						DefaultValue: collection.DateISO,
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					mode, _ := p.Args["displayAs"].(string)
					return collection.FormatDate(p.Source.(models.Metadata), mode), nil
				},
			},
			"canonical_url": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return collection.CanonicalURL(p.Source.(models.Metadata), site.URL, site.PostPath), nil
				},
			},
		},
	})

	postType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"path": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*models.Post).Path, nil
				},
			},
			"html": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"htmlEntities": &graphql.ArgumentConfig{
						Type:         graphql.Boolean,
						DefaultValue: false,
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					html := p.Source.(*models.Post).HTML
					if escape, _ := p.Args["htmlEntities"].(bool); escape {
						return collection.EscapeHTML(html), nil
					}
					return html, nil
				},
			},
			"metadata": &graphql.Field{
				Type: metadataType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*models.Post).Metadata, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"posts": &graphql.Field{
				Type: graphql.NewList(postType),
				Args: graphql.FieldConfigArgument{
					"published": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, err := src.Current(p.Context)
					if err != nil {
						return nil, fmt.Errorf("gql: posts: %w", err)
					}
					var filter *bool
					if v, ok := p.Args["published"].(bool); ok {
						filter = &v
					}
					return snap.Posts(filter), nil
				},
			},
			"post": &graphql.Field{
				Type: postType,
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, err := src.Current(p.Context)
					if err != nil {
						return nil, fmt.Errorf("gql: post: %w", err)
					}
					slug, _ := p.Args["slug"].(string)
					post, ok := snap.Post(slug)
					if !ok {
						return nil, nil
					}
					return post, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("gql: build schema: %w", err)
	}
	return schema, nil
}

func metaString(get func(models.Metadata) string) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return get(p.Source.(models.Metadata)), nil
		},
	}
}

// Execute runs req against schema.
func Execute(ctx context.Context, schema graphql.Schema, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}
