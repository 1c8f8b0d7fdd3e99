package middleware

import (
	"net/http"
	"strings"

	"smsnotes/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey  = "authUser"
	AuthTokenKey = "authToken"
)

// SessionAuthMiddleware validates the bearer token against the session store
// and puts the authenticated account and the raw token on the request
// context. Revoked tokens and tokens of deleted accounts fail here even if
// their signature is still good.
func SessionAuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		user, err := authService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set(AuthUserKey, user)
		c.Set(AuthTokenKey, token)

		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}
