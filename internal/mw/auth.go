package mw

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"boothnow-backend/internal/identity"
	"boothnow-backend/internal/model"
)

// UserIDKey is the gin context key holding the resolved internal user id.
const UserIDKey = "userID"

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	Verify(raw string) (identity.Identity, error)
}

// UserResolver maps a verified identity onto an internal user.
type UserResolver interface {
	ResolveUser(ctx context.Context, externalID, email string) (*model.User, error)
}

// Auth rejects requests without a valid bearer token and stores the caller's
// internal user id under UserIDKey.
func Auth(verifier TokenVerifier, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		id, err := verifier.Verify(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		user, err := users.ResolveUser(c.Request.Context(), id.Subject, id.Email)
		if err != nil {
			log.Printf("Failed to resolve user %s: %v", id.Subject, err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to resolve user"})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// UserID returns the id stored by Auth, or "" when the route is anonymous.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
