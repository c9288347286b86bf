package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medinfo-backend/internal/domains/user"
	"medinfo-backend/internal/shared/response"
)

// RequireAdmin rejects authenticated non-admin users. Must run after
// Auth in the chain.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextUserRoleKey)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if role != user.RoleAdmin {
			response.AbortError(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}
