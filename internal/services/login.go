package services

import (
	"context"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/clients/discord"
	"github.com/Dyslex1k/SceneSearch/internal/data/repos/user"
	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
)

type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

type LoginService interface {
	// LoginURL is the provider authorize URL the web client redirects to.
	LoginURL(state string) string
	// LoginWithCode exchanges the OAuth callback code, upserts the user on
	// the provider's stable id, and mints an access token.
	LoginWithCode(ctx context.Context, code string) (*LoginResult, error)
}

type loginService struct {
	log      *logger.Logger
	provider discord.Provider
	userRepo user.UserRepo
	auth     AuthService
}

func NewLoginService(log *logger.Logger, provider discord.Provider, userRepo user.UserRepo, auth AuthService) LoginService {
	return &loginService{
		log:      log.With("service", "LoginService"),
		provider: provider,
		userRepo: userRepo,
		auth:     auth,
	}
}

func (ls *loginService) LoginURL(state string) string {
	return ls.provider.AuthURL(state)
}

func (ls *loginService) LoginWithCode(ctx context.Context, code string) (*LoginResult, error) {
	if code == "" {
		return nil, apperr.InvalidInput("missing authorization code")
	}

	ident, err := ls.provider.FetchIdentity(ctx, code)
	if err != nil {
		return nil, apperr.Upstream("identity provider", err)
	}

	u, err := ls.userRepo.UpsertByDiscordID(ctx, nil, &domain.User{
		DiscordID:     ident.DiscordID,
		Username:      ident.Username,
		Discriminator: ident.Discriminator,
		Avatar:        ident.Avatar,
	})
	if err != nil {
		return nil, apperr.Upstream("canonical store", err)
	}

	token, err := ls.auth.MintToken(u.ID, u.DiscordID)
	if err != nil {
		return nil, apperr.Upstream("token mint", err)
	}

	ls.log.Info("User logged in", "user_id", u.ID.String(), "discord_id", u.DiscordID)
	return &LoginResult{AccessToken: token, TokenType: "bearer", User: u}, nil
}
