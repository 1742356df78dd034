package projection

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/graph"
)

func TestSearchDocument(t *testing.T) {
	t.Parallel()

	p := &domain.Prefab{
		ID:          uuid.New(),
		Name:        "Mirror Toggle",
		Description: "A toggleable mirror",
		Content:     "Drop into your scene.",
		UseCases:    []string{"Worlds"},
		Categories:  []string{"Tooling"},
		Tags:        []string{"mirror"},
		LicenceType: "CC0",
		IsFree:      true,
		CreatorID:   uuid.New(),
		CreatedAt:   time.Now().UTC(),
	}

	doc, err := SearchDocument(p, "botmaker")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != p.ID.String() {
		t.Fatalf("unexpected id: got=%q want=%q", doc.ID, p.ID.String())
	}
	if doc.CreatorName != "botmaker" {
		t.Fatalf("unexpected creator name: got=%q", doc.CreatorName)
	}
	if doc.CreatorID != p.CreatorID.String() {
		t.Fatalf("unexpected creator id: got=%q", doc.CreatorID)
	}

	// The document owns its slices; mutating the prefab afterwards must not
	// leak into an already-built projection.
	p.Tags[0] = "changed"
	if doc.Tags[0] != "mirror" {
		t.Fatalf("document slice aliases the prefab")
	}
}

func TestSearchDocumentRejectsIncompleteInput(t *testing.T) {
	t.Parallel()

	if _, err := SearchDocument(nil, "someone"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input for nil prefab, got %v", err)
	}
	if _, err := SearchDocument(&domain.Prefab{}, "someone"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing id, got %v", err)
	}
	if _, err := SearchDocument(&domain.Prefab{ID: uuid.New()}, ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty creator name, got %v", err)
	}
}

func TestRelationshipEdges(t *testing.T) {
	t.Parallel()

	edges := RelationshipEdges(
		[]string{"Worlds", "Worlds", ""},
		[]string{"Tooling"},
		[]string{"mirror", "mirror"},
	)

	want := []graph.EdgeSpec{
		{Kind: graph.EdgeUsedFor, Name: "Worlds"},
		{Kind: graph.EdgeInCategory, Name: "Tooling"},
		{Kind: graph.EdgeHasTag, Name: "mirror"},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Fatalf("unexpected edges: got=%v want=%v", edges, want)
	}

	// Same name under two kinds stays two distinct edges.
	edges = RelationshipEdges(nil, []string{"Tooling"}, []string{"Tooling"})
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges across kinds, got %d", len(edges))
	}
}

func TestRelationshipEdgesDeterministic(t *testing.T) {
	t.Parallel()

	a := RelationshipEdges([]string{"Worlds", "Avatars"}, []string{"Udon"}, []string{"osc", "net"})
	b := RelationshipEdges([]string{"Worlds", "Avatars"}, []string{"Udon"}, []string{"osc", "net"})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("projection must be deterministic: %v vs %v", a, b)
	}
}
