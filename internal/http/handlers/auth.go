package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dyslex1k/SceneSearch/internal/http/response"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
	"github.com/Dyslex1k/SceneSearch/internal/services"
)

type AuthHandler struct {
	log          *logger.Logger
	loginService services.LoginService
}

func NewAuthHandler(log *logger.Logger, loginService services.LoginService) *AuthHandler {
	return &AuthHandler{
		log:          log.With("handler", "AuthHandler"),
		loginService: loginService,
	}
}

// Login redirects the browser to the Discord authorize page. The client's
// state value is passed through untouched.
func (ah *AuthHandler) Login(c *gin.Context) {
	state := c.Query("state")
	c.Redirect(http.StatusFound, ah.loginService.LoginURL(state))
}

// Callback exchanges the provider code for a session. A stale or reused code
// surfaces as an upstream error, not a retryable auth failure.
func (ah *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	result, err := ah.loginService.LoginWithCode(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
