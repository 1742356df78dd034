package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/data/repos/prefab"
	"github.com/Dyslex1k/SceneSearch/internal/data/repos/user"
	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/graph"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
	"github.com/Dyslex1k/SceneSearch/internal/projection"
	"github.com/Dyslex1k/SceneSearch/internal/search"
)

const (
	StageSearchIndex       = "search_index"
	StageRelationshipGraph = "relationship_graph"
)

// PropagationFailure reports one derived store that did not receive a
// canonical change. These ride on the receipt for the reconciliation pass;
// they are never an error of the operation itself.
type PropagationFailure struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

type WriteReceipt struct {
	ID       uuid.UUID            `json:"id"`
	Prefab   *domain.Prefab       `json:"prefab,omitempty"`
	Failures []PropagationFailure `json:"propagation_failures,omitempty"`
}

// Degraded reports whether the canonical write landed but at least one
// derived store missed the change.
func (r *WriteReceipt) Degraded() bool {
	return r != nil && len(r.Failures) > 0
}

// PrefabWriteService coordinates each mutation across the canonical store,
// the search index and the relationship graph. The canonical store commits
// first and alone decides success; everything downstream is best-effort.
type PrefabWriteService interface {
	Create(ctx context.Context, creatorID uuid.UUID, draft *domain.PrefabDraft) (*WriteReceipt, error)
	Update(ctx context.Context, id, callerID uuid.UUID, patch *domain.PrefabPatch) (*WriteReceipt, error)
	Delete(ctx context.Context, id, callerID uuid.UUID) (*WriteReceipt, error)
}

type prefabWriteService struct {
	log        *logger.Logger
	prefabRepo prefab.PrefabRepo
	userRepo   user.UserRepo
	index      search.Index
	graphStore graph.Store
}

// NewPrefabWriteService accepts nil gateways: a store that is down at boot
// turns its propagation stage into a reported failure instead of blocking
// canonical writes.
func NewPrefabWriteService(
	log *logger.Logger,
	prefabRepo prefab.PrefabRepo,
	userRepo user.UserRepo,
	index search.Index,
	graphStore graph.Store,
) PrefabWriteService {
	return &prefabWriteService{
		log:        log.With("service", "PrefabWriteService"),
		prefabRepo: prefabRepo,
		userRepo:   userRepo,
		index:      index,
		graphStore: graphStore,
	}
}

func (s *prefabWriteService) Create(ctx context.Context, creatorID uuid.UUID, draft *domain.PrefabDraft) (*WriteReceipt, error) {
	if creatorID == uuid.Nil {
		return nil, apperr.Unauthorized("missing caller identity")
	}
	if err := draft.Validate(); err != nil {
		return nil, apperr.InvalidInput("%v", err)
	}

	p := &domain.Prefab{
		ID:            uuid.New(),
		Name:          draft.Name,
		Description:   draft.Description,
		Content:       draft.Content,
		UseCases:      emptyIfNil(draft.UseCases),
		Categories:    emptyIfNil(draft.Categories),
		Tags:          emptyIfNil(draft.Tags),
		ExternalLinks: draft.ExternalLinks,
		LicenceType:   draft.LicenceType,
		IsFree:        draft.IsFree,
		CreatorID:     creatorID,
		CreatedAt:     time.Now().UTC(),
	}
	if p.ExternalLinks == nil {
		p.ExternalLinks = []domain.ExternalLink{}
	}

	// Commit point. Past here the prefab exists whatever happens downstream.
	if _, err := s.prefabRepo.Create(ctx, nil, []*domain.Prefab{p}); err != nil {
		return nil, apperr.Upstream("canonical store", err)
	}

	failures := s.propagate(ctx, p, true)
	return &WriteReceipt{ID: p.ID, Prefab: p, Failures: failures}, nil
}

func (s *prefabWriteService) Update(ctx context.Context, id, callerID uuid.UUID, patch *domain.PrefabPatch) (*WriteReceipt, error) {
	if callerID == uuid.Nil {
		return nil, apperr.Unauthorized("missing caller identity")
	}
	if patch.IsEmpty() {
		return nil, apperr.InvalidInput("no fields provided for update")
	}
	if err := patch.Validate(); err != nil {
		return nil, apperr.InvalidInput("%v", err)
	}

	// One atomic statement resolves existence and ownership together and
	// stamps updated_at; no separate authorization read to race against.
	updated, err := s.prefabRepo.UpdateOwned(ctx, nil, id, callerID, patch)
	if err != nil {
		return nil, apperr.Upstream("canonical store", err)
	}
	if updated == nil {
		return nil, apperr.NotFoundOrForbidden("prefab")
	}

	// The index document is rebuilt wholesale from post-update canonical
	// truth, never patched, so repeated sparse updates cannot accrete drift.
	failures := s.propagate(ctx, updated, true)
	return &WriteReceipt{ID: updated.ID, Prefab: updated, Failures: failures}, nil
}

func (s *prefabWriteService) Delete(ctx context.Context, id, callerID uuid.UUID) (*WriteReceipt, error) {
	if callerID == uuid.Nil {
		return nil, apperr.Unauthorized("missing caller identity")
	}

	removed, err := s.prefabRepo.DeleteOwned(ctx, nil, id, callerID)
	if err != nil {
		return nil, apperr.Upstream("canonical store", err)
	}
	if !removed {
		return nil, apperr.NotFoundOrForbidden("prefab")
	}

	var failures []PropagationFailure
	// Graph edges are left in place (accumulate-only policy); only the
	// search document is removed.
	dctx := context.WithoutCancel(ctx)
	if s.index == nil {
		failures = append(failures, PropagationFailure{Stage: StageSearchIndex, Reason: "search index unavailable"})
	} else if err := s.index.Delete(dctx, id.String()); err != nil {
		failures = append(failures, PropagationFailure{Stage: StageSearchIndex, Reason: err.Error()})
	}
	for _, f := range failures {
		s.log.Warn("Propagation failed after delete", "prefab_id", id.String(), "stage", f.Stage, "reason", f.Reason)
	}
	return &WriteReceipt{ID: id, Failures: failures}, nil
}

// propagate pushes the canonical record into both derived stores. It runs on
// a cancel-detached context: once the canonical mutation landed, caller
// cancellation must not strand the derived stores without at least an
// attempt. Failures are collected per stage, never returned as errors.
func (s *prefabWriteService) propagate(ctx context.Context, p *domain.Prefab, applyEdges bool) []PropagationFailure {
	dctx := context.WithoutCancel(ctx)

	var mu sync.Mutex
	var failures []PropagationFailure
	record := func(stage, reason string) {
		mu.Lock()
		failures = append(failures, PropagationFailure{Stage: stage, Reason: reason})
		mu.Unlock()
	}

	g := new(errgroup.Group)

	g.Go(func() error {
		if s.index == nil {
			record(StageSearchIndex, "search index unavailable")
			return nil
		}
		creatorName, err := s.resolveCreatorName(dctx, p.CreatorID)
		if err != nil {
			// Defensive: the caller authenticated, so the creator should
			// exist. If not, only the search projection is blocked.
			record(StageSearchIndex, "resolve creator: "+err.Error())
			return nil
		}
		doc, err := projection.SearchDocument(p, creatorName)
		if err != nil {
			record(StageSearchIndex, err.Error())
			return nil
		}
		if err := s.index.Upsert(dctx, doc); err != nil {
			record(StageSearchIndex, err.Error())
		}
		return nil
	})

	g.Go(func() error {
		if !applyEdges {
			return nil
		}
		if s.graphStore == nil {
			record(StageRelationshipGraph, "relationship graph unavailable")
			return nil
		}
		edges := projection.RelationshipEdges(p.UseCases, p.Categories, p.Tags)
		if err := s.graphStore.ApplyEdges(dctx, p.ID.String(), edges); err != nil {
			record(StageRelationshipGraph, err.Error())
		}
		return nil
	})

	_ = g.Wait()

	for _, f := range failures {
		s.log.Warn("Propagation failed, prefab needs reconciliation",
			"prefab_id", p.ID.String(), "stage", f.Stage, "reason", f.Reason)
	}
	return failures
}

func (s *prefabWriteService) resolveCreatorName(ctx context.Context, creatorID uuid.UUID) (string, error) {
	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{creatorID})
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", apperr.NotFound("user", creatorID.String())
	}
	return users[0].DisplayName(), nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
