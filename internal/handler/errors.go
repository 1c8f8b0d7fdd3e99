package handler

import (
	"errors"
	"net/http"

	"smsnotes/internal/repository"
	"smsnotes/internal/service"
	"smsnotes/internal/utils"

	"github.com/gin-gonic/gin"
)

// writeError maps core error kinds to HTTP statuses: validation failures are
// 400, uniqueness conflicts 409, auth failures 401, missing accounts 404.
// Anything unexpected is hidden behind a generic 500 message.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrPasswordMismatch),
		errors.Is(err, utils.ErrInvalidPhone),
		errors.Is(err, repository.ErrEmptyNote):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrUsernameTaken),
		errors.Is(err, repository.ErrPhoneTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrInvalidResetToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
