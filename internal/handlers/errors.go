package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mnaeem99/econceptions-assignment/internal/services"
)

// statusFromError maps the domain error taxonomy to HTTP statuses. Anything
// outside the taxonomy is an internal failure and must not leak detail.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrEmptyKeyword),
		errors.Is(err, services.ErrSelfFollow):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPostNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrNotPostOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyFollowing):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func abortWithError(c *gin.Context, err error) {
	status, message := statusFromError(err)
	c.JSON(status, gin.H{"error": message})
}
