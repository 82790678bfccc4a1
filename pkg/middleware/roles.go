package middleware

import (
	"context"
	"net/http"

	"github.com/claimsaver/go-services/internal/models"
	"github.com/claimsaver/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ContextUserKey is where RequireUser stores the resolved local user.
const ContextUserKey = "currentUser"

// UserResolver turns verified token claims into a local user record,
// provisioning one on first contact. Satisfied by *users.Service.
type UserResolver interface {
	EnsureFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error)
}

// RequireUser resolves the verified claims set by AuthMiddleware into a local
// user and stores it on the context. Runs after AuthMiddleware.
func RequireUser(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("claims")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		claims, ok := v.(map[string]interface{})
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		u, err := users.EnsureFromClaims(c.Request.Context(), claims)
		if err != nil {
			logger.Errorf("user provisioning failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if !u.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account deactivated"})
			return
		}
		c.Set(ContextUserKey, u)
		c.Next()
	}
}

// RequireAdmin allows only admin and super_admin roles through. Runs after
// RequireUser.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if !u.Role.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user RequireUser stored, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
