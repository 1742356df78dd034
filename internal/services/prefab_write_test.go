package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/graph"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
	"github.com/Dyslex1k/SceneSearch/internal/search"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type fakePrefabRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*domain.Prefab
	failOps map[string]error
}

func newFakePrefabRepo() *fakePrefabRepo {
	return &fakePrefabRepo{rows: map[uuid.UUID]*domain.Prefab{}, failOps: map[string]error{}}
}

func (f *fakePrefabRepo) Create(ctx context.Context, tx *gorm.DB, prefabs []*domain.Prefab) ([]*domain.Prefab, error) {
	if err := f.failOps["create"]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range prefabs {
		cp := *p
		f.rows[p.ID] = &cp
	}
	return prefabs, nil
}

func (f *fakePrefabRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Prefab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Prefab
	for _, id := range ids {
		if p, ok := f.rows[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePrefabRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*domain.Prefab, error) {
	return nil, nil
}

func (f *fakePrefabRepo) UpdateOwned(ctx context.Context, tx *gorm.DB, id, creatorID uuid.UUID, patch *domain.PrefabPatch) (*domain.Prefab, error) {
	if err := f.failOps["update"]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok || p.CreatorID != creatorID {
		return nil, nil
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrefabRepo) DeleteOwned(ctx context.Context, tx *gorm.DB, id, creatorID uuid.UUID) (bool, error) {
	if err := f.failOps["delete"]; err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok || p.CreatorID != creatorID {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
	err   error
}

func (f *fakeUserRepo) UpsertByDiscordID(ctx context.Context, tx *gorm.DB, u *domain.User) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	u.LastLogin = &now
	return u, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByDiscordIDs(ctx context.Context, tx *gorm.DB, discordIDs []string) ([]*domain.User, error) {
	return nil, nil
}

type fakeIndex struct {
	mu        sync.Mutex
	upserted  []search.Document
	deleted   []string
	upsertErr error
	deleteErr error
}

func (f *fakeIndex) Upsert(ctx context.Context, doc search.Document) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, doc)
	return nil
}

func (f *fakeIndex) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	return &search.Result{}, nil
}

type fakeGraph struct {
	mu      sync.Mutex
	applied map[string][]graph.EdgeSpec
	err     error
}

func newFakeGraph() *fakeGraph { return &fakeGraph{applied: map[string][]graph.EdgeSpec{}} }

func (f *fakeGraph) ApplyEdges(ctx context.Context, prefabID string, edges []graph.EdgeSpec) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied[prefabID] = append(f.applied[prefabID], edges...)
	return nil
}

func testDraft() *domain.PrefabDraft {
	return &domain.PrefabDraft{
		Name:        "Mirror Toggle",
		Description: "A toggleable mirror",
		Content:     "Drop into your scene.",
		UseCases:    []string{"Worlds"},
		Categories:  []string{"Tooling"},
		Tags:        []string{"mirror"},
		LicenceType: "CC0",
		IsFree:      true,
	}
}

func writeFixture(t *testing.T) (*fakePrefabRepo, *fakeUserRepo, *fakeIndex, *fakeGraph, PrefabWriteService, uuid.UUID) {
	t.Helper()
	creator := uuid.New()
	repo := newFakePrefabRepo()
	users := &fakeUserRepo{users: map[uuid.UUID]*domain.User{
		creator: {ID: creator, DiscordID: "123", Username: "botmaker"},
	}}
	idx := &fakeIndex{}
	g := newFakeGraph()
	svc := NewPrefabWriteService(testLogger(t), repo, users, idx, g)
	return repo, users, idx, g, svc, creator
}

func TestCreatePropagatesToBothStores(t *testing.T) {
	t.Parallel()
	repo, _, idx, g, svc, creator := writeFixture(t)

	receipt, err := svc.Create(context.Background(), creator, testDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Degraded() {
		t.Fatalf("unexpected degraded receipt: %+v", receipt.Failures)
	}
	if receipt.ID == uuid.Nil {
		t.Fatalf("receipt missing id")
	}
	if _, ok := repo.rows[receipt.ID]; !ok {
		t.Fatalf("prefab not persisted")
	}
	if len(idx.upserted) != 1 {
		t.Fatalf("expected 1 index upsert, got %d", len(idx.upserted))
	}
	if idx.upserted[0].CreatorName != "botmaker" {
		t.Fatalf("index doc missing creator name: %+v", idx.upserted[0])
	}
	if len(g.applied[receipt.ID.String()]) != 3 {
		t.Fatalf("expected 3 edges, got %v", g.applied[receipt.ID.String()])
	}
}

func TestCreateInvalidDraftNeverTouchesStores(t *testing.T) {
	t.Parallel()
	repo, _, idx, g, svc, creator := writeFixture(t)

	draft := testDraft()
	draft.LicenceType = "WTFPL"
	_, err := svc.Create(context.Background(), creator, draft)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(repo.rows) != 0 || len(idx.upserted) != 0 || len(g.applied) != 0 {
		t.Fatalf("stores touched on invalid input")
	}
}

func TestCreateCanonicalFailureAbortsEverything(t *testing.T) {
	t.Parallel()
	repo, _, idx, g, svc, creator := writeFixture(t)
	repo.failOps["create"] = errors.New("connection refused")

	_, err := svc.Create(context.Background(), creator, testDraft())
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(idx.upserted) != 0 || len(g.applied) != 0 {
		t.Fatalf("derived stores touched after canonical failure")
	}
}

func TestCreateSearchFailureDegradesNotFails(t *testing.T) {
	t.Parallel()
	repo, _, idx, g, svc, creator := writeFixture(t)
	idx.upsertErr = errors.New("index offline")

	receipt, err := svc.Create(context.Background(), creator, testDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !receipt.Degraded() {
		t.Fatalf("expected degraded receipt")
	}
	if len(receipt.Failures) != 1 || receipt.Failures[0].Stage != StageSearchIndex {
		t.Fatalf("unexpected failures: %+v", receipt.Failures)
	}
	if _, ok := repo.rows[receipt.ID]; !ok {
		t.Fatalf("canonical write must survive index failure")
	}
	if len(g.applied[receipt.ID.String()]) == 0 {
		t.Fatalf("graph branch must run despite index failure")
	}
}

func TestCreateCreatorResolveFailureOnlyBlocksSearch(t *testing.T) {
	t.Parallel()
	repo := newFakePrefabRepo()
	users := &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
	idx := &fakeIndex{}
	g := newFakeGraph()
	svc := NewPrefabWriteService(testLogger(t), repo, users, idx, g)

	receipt, err := svc.Create(context.Background(), uuid.New(), testDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(receipt.Failures) != 1 || receipt.Failures[0].Stage != StageSearchIndex {
		t.Fatalf("unexpected failures: %+v", receipt.Failures)
	}
	if len(idx.upserted) != 0 {
		t.Fatalf("index must not receive a doc without a creator name")
	}
	if len(g.applied[receipt.ID.String()]) == 0 {
		t.Fatalf("graph must proceed when only creator resolution fails")
	}
}

func TestCreateWithNilGatewaysReportsBothStages(t *testing.T) {
	t.Parallel()
	repo := newFakePrefabRepo()
	users := &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
	svc := NewPrefabWriteService(testLogger(t), repo, users, nil, nil)

	receipt, err := svc.Create(context.Background(), uuid.New(), testDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(receipt.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", receipt.Failures)
	}
}

func TestUpdateRejectsEmptyPatch(t *testing.T) {
	t.Parallel()
	_, _, _, _, svc, creator := writeFixture(t)

	_, err := svc.Update(context.Background(), uuid.New(), creator, &domain.PrefabPatch{})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUpdateNonCreatorAnswersNotFound(t *testing.T) {
	t.Parallel()
	_, _, _, _, svc, creator := writeFixture(t)

	receipt, err := svc.Create(context.Background(), creator, testDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Hijacked"
	_, err = svc.Update(context.Background(), receipt.ID, uuid.New(), &domain.PrefabPatch{Name: &name})
	if !errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		t.Fatalf("expected not-found-or-forbidden, got %v", err)
	}

	// Same answer for an id that does not exist at all.
	_, err = svc.Update(context.Background(), uuid.New(), creator, &domain.PrefabPatch{Name: &name})
	if !errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		t.Fatalf("expected not-found-or-forbidden for missing row, got %v", err)
	}
}

func TestUpdateRebuildsSearchDocumentWholesale(t *testing.T) {
	t.Parallel()
	_, _, idx, _, svc, creator := writeFixture(t)

	receipt, err := svc.Create(context.Background(), creator, testDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Mirror Toggle v2"
	upd, err := svc.Update(context.Background(), receipt.ID, creator, &domain.PrefabPatch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Degraded() {
		t.Fatalf("unexpected degraded receipt: %+v", upd.Failures)
	}
	if len(idx.upserted) != 2 {
		t.Fatalf("expected a second full upsert, got %d", len(idx.upserted))
	}
	last := idx.upserted[len(idx.upserted)-1]
	if last.Name != name {
		t.Fatalf("index doc not rebuilt: got=%q", last.Name)
	}
	if last.Description != "A toggleable mirror" {
		t.Fatalf("untouched fields must survive the rebuild: %+v", last)
	}
}

func TestDeleteRemovesSearchDocOnly(t *testing.T) {
	t.Parallel()
	repo, _, idx, g, svc, creator := writeFixture(t)

	receipt, err := svc.Create(context.Background(), creator, testDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	edgesBefore := len(g.applied[receipt.ID.String()])

	del, err := svc.Delete(context.Background(), receipt.ID, creator)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if del.Degraded() {
		t.Fatalf("unexpected degraded receipt: %+v", del.Failures)
	}
	if _, ok := repo.rows[receipt.ID]; ok {
		t.Fatalf("canonical row survived delete")
	}
	if len(idx.deleted) != 1 || idx.deleted[0] != receipt.ID.String() {
		t.Fatalf("index doc not deleted: %v", idx.deleted)
	}
	if len(g.applied[receipt.ID.String()]) != edgesBefore {
		t.Fatalf("graph must be left untouched by delete")
	}
}

func TestDeleteNonCreatorAnswersNotFound(t *testing.T) {
	t.Parallel()
	_, _, idx, _, svc, creator := writeFixture(t)

	receipt, err := svc.Create(context.Background(), creator, testDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Delete(context.Background(), receipt.ID, uuid.New())
	if !errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		t.Fatalf("expected not-found-or-forbidden, got %v", err)
	}
	if len(idx.deleted) != 0 {
		t.Fatalf("index doc must survive a refused delete")
	}
}
