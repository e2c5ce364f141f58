package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
)

// PermissionMiddleware checks whether the current user's role holds a
// grant for the named permission. Lookup errors deny access.
func PermissionMiddleware(repo auth.Repository, permissionName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		user, ok := userVal.(auth.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user object"})
			return
		}

		granted, err := repo.RoleHasPermission(user.RoleID, permissionName)
		if err != nil {
			log.Printf("⚠️ permission lookup failed for role %d, %s: %v", user.RoleID, permissionName, err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
			return
		}
		if !granted {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}
