package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// userIDKey is the gin context key set by RequireAuth.
const userIDKey = "auth.userID"

// RequireAuth verifies the credential cookie and stores the authenticated
// user id in the gin context. Requests with a missing, invalid or expired
// credential are rejected with 401 before any handler runs.
func RequireAuth(m *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := m.Authenticate(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id placed by RequireAuth.
func UserID(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	id, _ := v.(string)
	return id
}
