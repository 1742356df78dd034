package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
)

type UserRepo interface {
	// UpsertByDiscordID is the login path: insert on first login, refresh
	// profile fields and last_login on every later one. Single statement,
	// unique-constraint backed, so two concurrent first logins cannot race
	// into two rows. The returned row always carries the persisted ID.
	UpsertByDiscordID(ctx context.Context, tx *gorm.DB, u *domain.User) (*domain.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*domain.User, error)
	GetByDiscordIDs(ctx context.Context, tx *gorm.DB, discordIDs []string) ([]*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) UpsertByDiscordID(ctx context.Context, tx *gorm.DB, u *domain.User) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	now := time.Now().UTC()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = now
	u.LastLogin = &now

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "discord_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"username":      u.Username,
				"discriminator": u.Discriminator,
				"avatar":        u.Avatar,
				"last_login":    now,
			}),
		}, clause.Returning{}).
		Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (ur *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*domain.User
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByDiscordIDs(ctx context.Context, tx *gorm.DB, discordIDs []string) ([]*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*domain.User
	if len(discordIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("discord_id IN ?", discordIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
