package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dyslex1k/SceneSearch/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, discordID string) *domain.User {
	tb.Helper()
	now := time.Now().UTC()
	u := &domain.User{
		ID:        uuid.New(),
		DiscordID: discordID,
		Username:  "seed-" + discordID,
		CreatedAt: now,
		LastLogin: &now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPrefab(tb testing.TB, ctx context.Context, tx *gorm.DB, creatorID uuid.UUID, name string) *domain.Prefab {
	tb.Helper()
	p := &domain.Prefab{
		ID:          uuid.New(),
		Name:        name,
		Description: "seed prefab",
		Content:     "# seed",
		UseCases:    []string{string(domain.UseCaseAvatars)},
		Categories:  []string{string(domain.CategoryTooling)},
		Tags:        []string{"seed"},
		ExternalLinks: []domain.ExternalLink{
			{Type: domain.LinkGithub, URL: "https://github.com/example/seed"},
		},
		LicenceType: string(domain.LicenceCC0),
		IsFree:      true,
		CreatorID:   creatorID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed prefab: %v", err)
	}
	return p
}
