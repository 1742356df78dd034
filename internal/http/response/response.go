// Package response maps service errors onto HTTP statuses in one place so
// handlers never hand-pick status codes.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dyslex1k/SceneSearch/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Error translates the error taxonomy onto statuses. NotFound and
// NotFoundOrForbidden both answer 404 so ownership cannot be probed.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrNotFoundOrForbidden):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrUpstream):
		status = http.StatusBadGateway
	}

	code := ""
	var ae *apperr.Error
	if errors.As(err, &ae) {
		code = ae.Code
	}

	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}
