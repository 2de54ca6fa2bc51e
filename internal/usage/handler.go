package usage

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docinsight-backend/internal/shared/server/middleware"
	"docinsight-backend/internal/shared/server/respond"
)

// Handler exposes usage endpoints.
type Handler struct {
	Tracker *Tracker
}

// NewHandler constructs a Handler.
func NewHandler(tracker *Tracker) *Handler {
	return &Handler{Tracker: tracker}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
}

// RegisterDevRoutes attaches dev-only usage routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.resetUsage)
}

// Response is the public shape of today's quota.
type Response struct {
	Date        string `json:"date"`
	Requests    int    `json:"requests"`
	MaxRequests int    `json:"maxRequests"`
	Remaining   int    `json:"remaining"`
}

// ToResponse converts a usage row to its public shape.
func ToResponse(u DailyUsage) Response {
	return Response{Date: u.Date, Requests: u.Requests, MaxRequests: u.MaxRequests, Remaining: u.Remaining()}
}

func (h *Handler) getUsage(c *gin.Context) {
	u, err := h.Tracker.Check(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		fail(c, err, "failed to fetch usage")
		return
	}
	respond.OK(c, ToResponse(u))
}

func (h *Handler) resetUsage(c *gin.Context) {
	u, err := h.Tracker.Reset(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		fail(c, err, "failed to reset usage")
		return
	}
	respond.OK(c, ToResponse(u))
}

func fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	case errors.Is(err, errMissingUser):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
