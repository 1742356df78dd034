package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/search"
)

func TestGetByIDRejectsMalformedID(t *testing.T) {
	t.Parallel()
	svc := NewPrefabReadService(testLogger(t), newFakePrefabRepo(), nil)

	// A malformed id is a 400, not a 404: it can never name a record.
	if _, err := svc.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()
	svc := NewPrefabReadService(testLogger(t), newFakePrefabRepo(), nil)

	if _, err := svc.GetByID(context.Background(), "0b26ddbc-08ef-44ca-b2ec-45058b4e4422"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetByIDRoundTrip(t *testing.T) {
	t.Parallel()
	repo, _, _, _, svc, creator := writeFixture(t)
	read := NewPrefabReadService(testLogger(t), repo, nil)

	receipt, err := svc.Create(context.Background(), creator, testDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err := read.GetByID(context.Background(), receipt.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name != "Mirror Toggle" || p.CreatorID != creator {
		t.Fatalf("unexpected prefab: %+v", p)
	}
}

func TestSearchWithoutIndexIsUpstreamFailure(t *testing.T) {
	t.Parallel()
	svc := NewPrefabReadService(testLogger(t), newFakePrefabRepo(), nil)

	if _, err := svc.Search(context.Background(), search.Query{Text: "mirror"}); !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSearchRejectsUnknownFacets(t *testing.T) {
	t.Parallel()
	svc := NewPrefabReadService(testLogger(t), newFakePrefabRepo(), &fakeIndex{})

	cases := []search.Query{
		{UseCases: []string{"Spaceships"}},
		{Categories: []string{"Cooking"}},
		{LicenceType: "WTFPL"},
	}
	for _, q := range cases {
		if _, err := svc.Search(context.Background(), q); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", q, err)
		}
	}
}

func TestClampPageSize(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want int }{
		{0, defaultPageSize},
		{-5, defaultPageSize},
		{10, 10},
		{maxPageSize, maxPageSize},
		{maxPageSize + 1, maxPageSize},
	}
	for _, tc := range cases {
		if got := clampPageSize(tc.in); got != tc.want {
			t.Fatalf("clampPageSize(%d): got=%d want=%d", tc.in, got, tc.want)
		}
	}
}
