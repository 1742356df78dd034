package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
	"github.com/Dyslex1k/SceneSearch/internal/http/response"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
	"github.com/Dyslex1k/SceneSearch/internal/requestdata"
	"github.com/Dyslex1k/SceneSearch/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		userService: userService,
	}
}

// Me returns the authenticated caller's own record.
func (uh *UserHandler) Me(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.Error(c, apperr.Unauthorized("missing caller identity"))
		return
	}

	u, err := uh.userService.GetByID(c.Request.Context(), rd.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}
