package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docinsight-backend/internal/classify"
	"docinsight-backend/internal/documents"
	"docinsight-backend/internal/extract"
	"docinsight-backend/internal/shared/server/middleware"
	"docinsight-backend/internal/shared/server/respond"
	"docinsight-backend/internal/textnorm"
	"docinsight-backend/internal/usage"
)

// MaxUploadBytes bounds a PDF upload.
const MaxUploadBytes = 10 << 20

// Handler exposes ingestion over HTTP.
type Handler struct {
	Svc        *Service
	Classifier *classify.Classifier
}

func NewHandler(svc *Service, classifier *classify.Classifier) *Handler {
	return &Handler{Svc: svc, Classifier: classifier}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ingest/pdf", h.ingestPDF)
	rg.POST("/ingest/url", h.ingestURL)
	rg.POST("/ingest/youtube", h.ingestYouTube)
	rg.GET("/classifier/status", h.classifierStatus)
}

type urlRequest struct {
	URL string `json:"url"`
}

type ingestResponse struct {
	documents.Document
	AnalysisMethod string         `json:"analysisMethod"`
	Usage          usage.Response `json:"usage"`
}

func (h *Handler) ingestPDF(c *gin.Context) {
	c.Set("sourceType", documents.TypePDF)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+(1<<20))

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "invalid_input", "File too large. Maximum size is 10MB.", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "invalid_input", "No file uploaded", nil)
		return
	}
	if header.Size > MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "invalid_input", "File too large. Maximum size is 10MB.", nil)
		return
	}
	if !isPDFUpload(header.Header.Get("Content-Type"), header.Filename) {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Please upload a PDF file", nil)
		return
	}

	f, err := header.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Could not read uploaded file", nil)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Could not read uploaded file", nil)
		return
	}

	h.respond(c, func(ctx context.Context, owner string) (Outcome, error) {
		return h.Svc.IngestPDF(ctx, owner, data, header.Filename)
	})
}

func (h *Handler) ingestURL(c *gin.Context) {
	c.Set("sourceType", documents.TypeURL)
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "URL is required", nil)
		return
	}
	h.respond(c, func(ctx context.Context, owner string) (Outcome, error) {
		return h.Svc.IngestURL(ctx, owner, req.URL)
	})
}

func (h *Handler) ingestYouTube(c *gin.Context) {
	c.Set("sourceType", documents.TypeYouTube)
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "YouTube URL is required", nil)
		return
	}
	h.respond(c, func(ctx context.Context, owner string) (Outcome, error) {
		return h.Svc.IngestYouTube(ctx, owner, req.URL)
	})
}

func (h *Handler) respond(c *gin.Context, run func(context.Context, string) (Outcome, error)) {
	owner := middleware.UserIDFromContext(c)
	if owner == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "unauthorized", nil)
		return
	}
	out, err := run(c.Request.Context(), owner)
	if err != nil {
		WriteError(c, err, out.Usage)
		return
	}
	c.Set("documentId", out.Document.ID)
	respond.JSON(c, http.StatusCreated, ingestResponse{
		Document:       out.Document,
		AnalysisMethod: out.Method,
		Usage:          usage.ToResponse(out.Usage),
	})
}

func (h *Handler) classifierStatus(c *gin.Context) {
	if h.Classifier == nil {
		respond.OK(c, classify.Status{Provider: "none"})
		return
	}
	respond.OK(c, h.Classifier.Status(c.Request.Context()))
}

// WriteError maps pipeline failures onto the API's error table.
func WriteError(c *gin.Context, err error, current usage.DailyUsage) {
	if errors.Is(err, ErrQuotaExceeded) {
		respond.Error(c, http.StatusTooManyRequests, "quota_exceeded",
			"Daily limit reached. You can process more documents tomorrow.",
			gin.H{"usage": usage.ToResponse(current)})
		return
	}
	if errors.Is(err, ErrInvalidInput) {
		respond.Error(c, http.StatusBadRequest, "invalid_input", strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "), nil)
		return
	}
	if errors.Is(err, textnorm.ErrInsufficientText) {
		respond.Error(c, http.StatusUnprocessableEntity, string(extract.KindInsufficientText),
			"Insufficient text content found in the document", nil)
		return
	}

	var extractErr *extract.Error
	if errors.As(err, &extractErr) {
		var details any
		if extractErr.Suggestion != "" {
			details = gin.H{"suggestion": extractErr.Suggestion}
		}
		respond.Error(c, statusForKind(extractErr.Kind), string(extractErr.Kind), extractErr.Message, details)
		return
	}

	respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to process document", nil)
}

func statusForKind(kind extract.Kind) int {
	switch kind {
	case extract.KindInsufficientText, extract.KindInsufficientMetadata, extract.KindNoContent:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func isPDFUpload(contentType, fileName string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(fileName), ".pdf")
}
