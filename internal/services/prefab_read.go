package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/data/repos/prefab"
	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
	"github.com/Dyslex1k/SceneSearch/internal/search"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// PrefabReadService answers lookups from the canonical store and search
// queries from the index. Reads never touch the relationship graph.
type PrefabReadService interface {
	// GetByID validates the raw id before any store roundtrip; a malformed
	// id is invalid input, not a miss.
	GetByID(ctx context.Context, rawID string) (*domain.Prefab, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Prefab, error)
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type prefabReadService struct {
	log        *logger.Logger
	prefabRepo prefab.PrefabRepo
	index      search.Index
}

func NewPrefabReadService(log *logger.Logger, prefabRepo prefab.PrefabRepo, index search.Index) PrefabReadService {
	return &prefabReadService{
		log:        log.With("service", "PrefabReadService"),
		prefabRepo: prefabRepo,
		index:      index,
	}
}

func (s *prefabReadService) GetByID(ctx context.Context, rawID string) (*domain.Prefab, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.InvalidInput("malformed prefab id %q", rawID)
	}

	results, err := s.prefabRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, apperr.Upstream("canonical store", err)
	}
	if len(results) == 0 {
		return nil, apperr.NotFound("prefab", rawID)
	}
	return results[0], nil
}

func (s *prefabReadService) List(ctx context.Context, limit, offset int) ([]*domain.Prefab, error) {
	limit = clampPageSize(limit)
	if offset < 0 {
		offset = 0
	}

	results, err := s.prefabRepo.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, apperr.Upstream("canonical store", err)
	}
	return results, nil
}

func (s *prefabReadService) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	if s.index == nil {
		return nil, apperr.Upstream("search index", errors.New("search index unavailable"))
	}

	q.Limit = clampPageSize(q.Limit)
	if q.Offset < 0 {
		q.Offset = 0
	}
	if err := validateFacets(q); err != nil {
		return nil, err
	}

	res, err := s.index.Search(ctx, q)
	if err != nil {
		return nil, apperr.Upstream("search index", err)
	}
	return res, nil
}

// validateFacets rejects facet values outside the closed enums so typos
// surface as 400s instead of silently matching nothing.
func validateFacets(q search.Query) error {
	for _, uc := range q.UseCases {
		if !domain.ValidUseCase(uc) {
			return apperr.InvalidInput("unknown use case %q", uc)
		}
	}
	for _, c := range q.Categories {
		if !domain.ValidCategory(c) {
			return apperr.InvalidInput("unknown category %q", c)
		}
	}
	if q.LicenceType != "" && !domain.ValidLicenceType(q.LicenceType) {
		return apperr.InvalidInput("unknown licence type %q", q.LicenceType)
	}
	return nil
}

func clampPageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
