package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docinsight-backend/internal/shared/server/middleware"
	"docinsight-backend/internal/shared/server/respond"
)

// Handler serves the current user's account endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PUT("/me/password", h.changePassword)
	rg.DELETE("/me", h.deactivate)
}

// RegisterDevRoutes attaches dev-only user routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/stats", h.stats)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		WriteError(c, err, "failed to load user")
		return
	}
	respond.OK(c, gin.H{"user": ToResponse(user)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), middleware.UserIDFromContext(c), req.CurrentPassword, req.NewPassword); err != nil {
		WriteError(c, err, "failed to change password")
		return
	}
	respond.OK(c, gin.H{"success": true})
}

func (h *Handler) deactivate(c *gin.Context) {
	if err := h.Svc.Deactivate(c.Request.Context(), middleware.UserIDFromContext(c)); err != nil {
		WriteError(c, err, "failed to delete account")
		return
	}
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) stats(c *gin.Context) {
	s, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		WriteError(c, err, "failed to load stats")
		return
	}
	respond.OK(c, s)
}

// WriteError maps account errors onto the shared error envelope.
func WriteError(c *gin.Context, err error, message string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "invalid_input", verr.Message, gin.H{"field": verr.Field})
	case errors.Is(err, ErrDuplicate):
		respond.Error(c, http.StatusConflict, "duplicate_account", ErrDuplicate.Error(), nil)
	case errors.Is(err, ErrAuthFailed):
		respond.Error(c, http.StatusUnauthorized, "auth_failed", ErrAuthFailed.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
