package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medinfo-backend/internal/domains/user"
	"medinfo-backend/internal/shared/middleware"
	"medinfo-backend/internal/shared/response"
	"medinfo-backend/pkg/session"
)

// cookieMaxAge matches the session token TTL so the cookie and the
// token inside it expire together.
var cookieMaxAge = int(session.TokenTTL.Seconds())

type UserHandler struct {
	service      user.Service
	cookieDomain string
	production   bool
}

func NewUserHandler(service user.Service, cookieDomain string, production bool) *UserHandler {
	return &UserHandler{
		service:      service,
		cookieDomain: cookieDomain,
		production:   production,
	}
}

// Register handles POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	dto, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		status, msg := user.GetErrorResponse(err)
		// ozzo validation errors are not UserErrors; surface them as 400s.
		if _, ok := err.(*user.UserError); !ok && status == http.StatusInternalServerError {
			status, msg = http.StatusBadRequest, err.Error()
		}
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusCreated, "Account created", dto)
}

// Login handles POST /api/auth/login. A successful login sets the
// sessionToken cookie; in production it is Secure + SameSite=None so
// the cross-site frontend can use it, elsewhere SameSite=Lax.
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		status, msg := user.GetErrorResponse(err)
		if _, ok := err.(*user.UserError); !ok && status == http.StatusInternalServerError {
			status, msg = http.StatusBadRequest, err.Error()
		}
		response.Error(c, status, msg)
		return
	}

	h.setSessionCookie(c, res.Token, cookieMaxAge)
	response.Success(c, http.StatusOK, "Logged in", res)
}

// Logout handles POST /api/auth/logout. Clearing the cookie is all a
// stateless session needs; the token simply ages out.
func (h *UserHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Me handles GET /api/auth/me (behind Auth middleware).
func (h *UserHandler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Error(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	dto := u.ToDTO()
	response.Success(c, http.StatusOK, "Current user", dto)
}

func (h *UserHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	if h.production {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", h.cookieDomain, h.production, true)
}
