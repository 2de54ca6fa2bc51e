package documents

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docinsight-backend/internal/shared/server/middleware"
	"docinsight-backend/internal/shared/server/respond"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.delete)
}

type listResponse struct {
	Documents []Document `json:"documents"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := defaultListLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	filter := ListFilter{
		Category:   strings.TrimSpace(c.Query("category")),
		Department: strings.TrimSpace(c.Query("department")),
		Type:       strings.ToLower(strings.TrimSpace(c.Query("type"))),
		Limit:      limit,
		Offset:     offset,
	}
	if strings.EqualFold(filter.Category, "all") {
		filter.Category = ""
	}
	if strings.EqualFold(filter.Department, "all") {
		filter.Department = ""
	}
	switch filter.Type {
	case "", TypePDF, TypeURL, TypeYouTube:
	default:
		respond.Error(c, http.StatusBadRequest, "invalid_input", "type must be one of pdf, url, youtube", nil)
		return
	}

	docs, err := h.Svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.fail(c, err, "failed to list documents")
		return
	}
	respond.OK(c, listResponse{Documents: docs, Limit: limit, Offset: offset})
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch document")
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete document")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
