package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mnaeem99/econceptions-assignment/internal/auth"
)

const (
	contextUserID   = "auth_user_id"
	contextUsername = "auth_username"
)

// NewJWTAuth rejects requests without a valid "Bearer <token>" Authorization
// header and stores the verified caller identity on the gin context.
func NewJWTAuth(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := tm.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextUsername, claims.Subject)
		c.Next()
	}
}

// GetUserID returns the authenticated caller's numeric id, or 0 when the
// request did not pass through the auth middleware.
func GetUserID(c *gin.Context) uint {
	value, exists := c.Get(contextUserID)
	if !exists {
		return 0
	}
	id, ok := value.(uint)
	if !ok {
		return 0
	}
	return id
}

func GetUsername(c *gin.Context) string {
	value, exists := c.Get(contextUsername)
	if !exists {
		return ""
	}
	username, ok := value.(string)
	if !ok {
		return ""
	}
	return username
}
