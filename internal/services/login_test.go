package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/clients/discord"
	"github.com/Dyslex1k/SceneSearch/internal/domain"
)

type fakeProvider struct {
	ident *discord.Identity
	err   error
}

func (f *fakeProvider) AuthURL(state string) string {
	return "https://discord.example/authorize?state=" + state
}

func (f *fakeProvider) FetchIdentity(ctx context.Context, code string) (*discord.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ident, nil
}

func TestLoginWithCode(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{ident: &discord.Identity{
		DiscordID: "1234567890",
		Username:  "botmaker",
		Avatar:    "abcdef",
	}}
	users := &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
	auth := NewAuthService(testLogger(t), "test-secret", time.Hour)
	svc := NewLoginService(testLogger(t), provider, users, auth)

	result, err := svc.LoginWithCode(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AccessToken == "" || result.TokenType != "bearer" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.User == nil || result.User.DiscordID != "1234567890" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if result.User.LastLogin == nil {
		t.Fatalf("last login not stamped")
	}

	// The minted token must resolve back to the upserted user.
	parsed, err := auth.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if parsed != result.User.ID {
		t.Fatalf("token subject mismatch: got=%s want=%s", parsed, result.User.ID)
	}
}

func TestLoginWithCodeRejectsEmptyCode(t *testing.T) {
	t.Parallel()

	svc := NewLoginService(testLogger(t), &fakeProvider{}, &fakeUserRepo{}, NewAuthService(testLogger(t), "s", time.Hour))
	if _, err := svc.LoginWithCode(context.Background(), ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestLoginWithCodeProviderFailure(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{err: errors.New("code already redeemed")}
	svc := NewLoginService(testLogger(t), provider, &fakeUserRepo{}, NewAuthService(testLogger(t), "s", time.Hour))
	if _, err := svc.LoginWithCode(context.Background(), "stale"); !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
