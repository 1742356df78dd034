package prefab

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
)

type PrefabRepo interface {
	Create(ctx context.Context, tx *gorm.DB, prefabs []*domain.Prefab) ([]*domain.Prefab, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Prefab, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*domain.Prefab, error)
	// UpdateOwned applies a sparse patch in one atomic statement filtered on
	// (id AND creator_id) and returns the post-update row. (nil, nil) means
	// no row matched — absent and not-owned are indistinguishable on purpose.
	UpdateOwned(ctx context.Context, tx *gorm.DB, id, creatorID uuid.UUID, patch *domain.PrefabPatch) (*domain.Prefab, error)
	// DeleteOwned removes the row filtered on (id AND creator_id); false
	// means no row matched.
	DeleteOwned(ctx context.Context, tx *gorm.DB, id, creatorID uuid.UUID) (bool, error)
}

type prefabRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrefabRepo(db *gorm.DB, baseLog *logger.Logger) PrefabRepo {
	return &prefabRepo{db: db, log: baseLog.With("repo", "PrefabRepo")}
}

func (pr *prefabRepo) Create(ctx context.Context, tx *gorm.DB, prefabs []*domain.Prefab) ([]*domain.Prefab, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(prefabs) == 0 {
		return []*domain.Prefab{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&prefabs).Error; err != nil {
		return nil, err
	}
	return prefabs, nil
}

func (pr *prefabRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Prefab, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*domain.Prefab
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *prefabRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*domain.Prefab, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*domain.Prefab
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *prefabRepo) UpdateOwned(ctx context.Context, tx *gorm.DB, id, creatorID uuid.UUID, patch *domain.PrefabPatch) (*domain.Prefab, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	values := patchValues(patch)
	values["updated_at"] = time.Now().UTC()

	updated := &domain.Prefab{}
	res := transaction.WithContext(ctx).
		Model(updated).
		Clauses(clause.Returning{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return updated, nil
}

func (pr *prefabRepo) DeleteOwned(ctx context.Context, tx *gorm.DB, id, creatorID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	res := transaction.WithContext(ctx).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Delete(&domain.Prefab{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// patchValues maps only the fields present on the patch to their columns.
// Updates with a map bypasses the json serializer, so list fields are
// marshalled here.
func patchValues(patch *domain.PrefabPatch) map[string]interface{} {
	values := map[string]interface{}{}
	if patch == nil {
		return values
	}
	if patch.Name != nil {
		values["name"] = *patch.Name
	}
	if patch.Description != nil {
		values["description"] = *patch.Description
	}
	if patch.Content != nil {
		values["content"] = *patch.Content
	}
	if patch.UseCases != nil {
		values["use_cases"] = toJSON(*patch.UseCases)
	}
	if patch.Categories != nil {
		values["categories"] = toJSON(*patch.Categories)
	}
	if patch.Tags != nil {
		values["tags"] = toJSON(*patch.Tags)
	}
	if patch.ExternalLinks != nil {
		values["external_links"] = toJSON(*patch.ExternalLinks)
	}
	if patch.LicenceType != nil {
		values["licence_type"] = *patch.LicenceType
	}
	if patch.IsFree != nil {
		values["is_free"] = *patch.IsFree
	}
	return values
}

func toJSON(v interface{}) datatypes.JSON {
	raw, _ := json.Marshal(v)
	return datatypes.JSON(raw)
}
