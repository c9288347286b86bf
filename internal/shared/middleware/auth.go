package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medinfo-backend/internal/domains/user"
	"medinfo-backend/internal/shared/response"
	"medinfo-backend/pkg/session"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "sessionToken"

// Context keys populated by Auth.
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
	ContextUserKey     = "currentUser"
)

// Auth verifies the sessionToken cookie, resolves the account behind it
// and stores the user on the request context. Requests without a valid
// cookie never reach the handler.
func Auth(sessions *session.Manager, users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		userID, err := sessions.Verify(token)
		if err != nil {
			if errors.Is(err, session.ErrExpired) {
				response.AbortError(c, http.StatusUnauthorized, "Session expired")
				return
			}
			response.AbortError(c, http.StatusUnauthorized, "Invalid session")
			return
		}

		id, err := uuid.Parse(userID)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "Invalid session")
			return
		}

		u, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			// A token for a deleted account is as good as no token.
			response.AbortError(c, http.StatusUnauthorized, "Invalid session")
			return
		}
		if !u.IsActive {
			response.AbortError(c, http.StatusForbidden, "Account is deactivated")
			return
		}

		c.Set(ContextUserIDKey, u.ID)
		c.Set(ContextUserRoleKey, u.Role)
		c.Set(ContextUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Auth, or nil when
// the route runs without the auth middleware.
func CurrentUser(c *gin.Context) *user.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*user.User)
	return u
}
