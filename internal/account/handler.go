package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docinsight-backend/internal/shared/server/middleware"
	"docinsight-backend/internal/shared/server/respond"
	"docinsight-backend/internal/users"
)

// Handler serves the public auth endpoints.
type Handler struct {
	Svc          *Service
	SecureCookie bool
}

func NewHandler(svc *Service, secureCookie bool) *Handler {
	return &Handler{Svc: svc, SecureCookie: secureCookie}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/logout", h.logout)
	rg.POST("/auth/verify-email", h.verifyEmail)
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		users.WriteError(c, err, "Failed to create user account")
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully! You can now sign in.",
		"user":    users.ToResponse(user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	session, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		users.WriteError(c, err, "Login failed")
		return
	}
	h.setSessionCookie(c, session)
	respond.OK(c, gin.H{
		"success":   true,
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      users.ToResponse(session.User),
	})
}

func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", h.SecureCookie, true)
	respond.OK(c, gin.H{"success": true})
}

func (h *Handler) verifyEmail(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	ok, err := h.Svc.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		users.WriteError(c, err, "Failed to verify email")
		return
	}
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Invalid or expired verification token", nil)
		return
	}
	respond.OK(c, gin.H{"success": true})
}

// SetSessionCookie writes the auth cookie for a session. The Google callback reuses it.
func (h *Handler) SetSessionCookie(c *gin.Context, session Session) {
	h.setSessionCookie(c, session)
}

func (h *Handler) setSessionCookie(c *gin.Context, session Session) {
	maxAge := int(h.Svc.Tokens.TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, session.Token, maxAge, "/", "", h.SecureCookie, true)
}
