package security

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDKey = "auth.userId"

// Verifier resolves a credential to a user identity.
type Verifier interface {
	Verify(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user id on the gin context.
func RequireAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := v.Verify(BearerToken(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the identity stored by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
