package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole gates a route to the given roles. ProfTwo knows three:
// "student" (upload + own library), "lecturer" (same, plus shared decks
// later), "admin" (everything, including account registration).
// It MUST be used AFTER RequireAuth, which puts the role in the context.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role context missing"})
			return
		}
		roleStr, _ := role.(string)

		// Admin passes every gate
		if roleStr == "admin" {
			c.Next()
			return
		}

		for _, allowed := range allowedRoles {
			if roleStr == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Forbidden: this requires a different role.",
		})
	}
}
