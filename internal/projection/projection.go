// Package projection holds the pure transforms from a canonical prefab to
// its derived representations. No I/O, deterministic given the inputs.
package projection

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/graph"
	"github.com/Dyslex1k/SceneSearch/internal/search"
)

// SearchDocument denormalizes a persisted prefab plus its creator's display
// name into the index shape. The prefab must already carry a store-assigned
// id and the creator name must be non-empty.
func SearchDocument(p *domain.Prefab, creatorName string) (search.Document, error) {
	if p == nil || p.ID == uuid.Nil {
		return search.Document{}, fmt.Errorf("%w: prefab has no persisted id", apperr.ErrInvalidInput)
	}
	if creatorName == "" {
		return search.Document{}, fmt.Errorf("%w: empty creator display name", apperr.ErrInvalidInput)
	}
	return search.Document{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Content:     p.Content,
		UseCases:    append([]string(nil), p.UseCases...),
		Categories:  append([]string(nil), p.Categories...),
		Tags:        append([]string(nil), p.Tags...),
		LicenceType: p.LicenceType,
		IsFree:      p.IsFree,
		CreatorID:   p.CreatorID.String(),
		CreatorName: creatorName,
		CreatedAt:   p.CreatedAt,
	}, nil
}

// RelationshipEdges lists the merge-idempotent edges for a prefab's
// use-cases, categories and tags, deduplicated. Ordering is irrelevant to
// the graph gateway.
func RelationshipEdges(useCases, categories, tags []string) []graph.EdgeSpec {
	edges := make([]graph.EdgeSpec, 0, len(useCases)+len(categories)+len(tags))
	seen := map[graph.EdgeSpec]bool{}

	add := func(kind graph.EdgeKind, names []string) {
		for _, name := range names {
			if name == "" {
				continue
			}
			spec := graph.EdgeSpec{Kind: kind, Name: name}
			if seen[spec] {
				continue
			}
			seen[spec] = true
			edges = append(edges, spec)
		}
	}

	add(graph.EdgeUsedFor, useCases)
	add(graph.EdgeInCategory, categories)
	add(graph.EdgeHasTag, tags)
	return edges
}
