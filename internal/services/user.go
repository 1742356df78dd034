package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/data/repos/user"
	"github.com/Dyslex1k/SceneSearch/internal/domain"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
)

// UserService answers profile lookups for an already-authenticated caller.
type UserService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo user.UserRepo
}

func NewUserService(log *logger.Logger, userRepo user.UserRepo) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized("missing caller identity")
	}

	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, apperr.Upstream("canonical store", err)
	}
	if len(users) == 0 {
		// A valid token for a row that no longer exists.
		return nil, apperr.NotFound("user", userID.String())
	}
	return users[0], nil
}
