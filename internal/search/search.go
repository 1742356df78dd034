// Package search wraps the full-text store. Documents are disposable
// projections of canonical prefabs; the index can always be rebuilt, so every
// write here is a wholesale overwrite keyed by the canonical id.
package search

import (
	"context"
	"time"
)

type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	UseCases    []string  `json:"use_cases"`
	Categories  []string  `json:"categories"`
	Tags        []string  `json:"tags"`
	LicenceType string    `json:"licence_type"`
	IsFree      bool      `json:"is_free"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Query is a full-text term plus exact-match facet conjunctions.
type Query struct {
	Text        string
	UseCases    []string
	Categories  []string
	IsFree      *bool
	LicenceType string
	Limit       int
	Offset      int
}

type Hit struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Result carries the engine's total match count independent of the page
// window.
type Result struct {
	Total int64 `json:"total"`
	Hits  []Hit `json:"hits"`
}

type Index interface {
	Upsert(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) (*Result, error)
}
