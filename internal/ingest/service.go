package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docinsight-backend/internal/documents"
	"docinsight-backend/internal/extract"
	"docinsight-backend/internal/shared/metrics"
	"docinsight-backend/internal/shared/storage/object"
	"docinsight-backend/internal/textnorm"
	"docinsight-backend/internal/usage"
)

// Outcome is a stored document plus the owner's usage after the charge.
type Outcome struct {
	Document documents.Document
	Usage    usage.DailyUsage
	Method   string
}

// Service gates the pipeline with the quota and persists the result.
type Service struct {
	Pipeline  *Pipeline
	Documents *documents.Service
	Quota     *usage.Tracker
	Archive   object.Store // optional
	Log       *zap.Logger
}

// NewService constructs a Service. A nil archive disables PDF archiving.
func NewService(pipeline *Pipeline, docs *documents.Service, quota *usage.Tracker, archive object.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Pipeline: pipeline, Documents: docs, Quota: quota, Archive: archive, Log: logger}
}

// IngestPDF processes an uploaded PDF for ownerID.
func (s *Service) IngestPDF(ctx context.Context, ownerID string, data []byte, fileName string) (Outcome, error) {
	return s.run(ctx, ownerID, documents.TypePDF, func(ctx context.Context) (Processed, error) {
		processed, err := s.Pipeline.FromPDF(ctx, ownerID, data, fileName)
		if err != nil {
			return processed, err
		}
		processed.Document.SourceKey = s.archive(ctx, ownerID, fileName, data)
		return processed, nil
	})
}

// IngestURL processes a web page for ownerID.
func (s *Service) IngestURL(ctx context.Context, ownerID, rawURL string) (Outcome, error) {
	return s.run(ctx, ownerID, documents.TypeURL, func(ctx context.Context) (Processed, error) {
		return s.Pipeline.FromURL(ctx, ownerID, rawURL)
	})
}

// IngestYouTube processes a YouTube video for ownerID.
func (s *Service) IngestYouTube(ctx context.Context, ownerID, rawURL string) (Outcome, error) {
	return s.run(ctx, ownerID, documents.TypeYouTube, func(ctx context.Context) (Processed, error) {
		return s.Pipeline.FromYouTube(ctx, ownerID, rawURL)
	})
}

func (s *Service) run(ctx context.Context, ownerID, source string, process func(context.Context) (Processed, error)) (Outcome, error) {
	started := time.Now()
	log := s.Log.With(zap.String("user_id", ownerID), zap.String("source_type", source))

	allowed, current, err := s.Quota.CanMakeRequest(ctx, ownerID)
	if err != nil {
		return Outcome{}, fmt.Errorf("check quota: %w", err)
	}
	if !allowed {
		metrics.IncQuotaRejected(source)
		log.Info("ingest.quota_rejected", zap.Int("requests", current.Requests), zap.Int("max_requests", current.MaxRequests))
		return Outcome{Usage: current}, ErrQuotaExceeded
	}

	metrics.IncIngestStarted(source)
	processed, err := process(ctx)
	if err != nil {
		s.fail(log, source, err)
		return Outcome{Usage: current}, err
	}
	doc := processed.Document

	if err := s.Documents.Save(ctx, doc); err != nil {
		s.discardArchive(ctx, doc)
		s.fail(log, source, err)
		return Outcome{Usage: current}, fmt.Errorf("save document: %w", err)
	}

	charged, err := s.Quota.Increment(ctx, ownerID)
	if err != nil {
		// Lost a race for the last slot: undo the save so the limit holds.
		if delErr := s.Documents.Delete(ctx, ownerID, doc.ID); delErr != nil {
			log.Warn("ingest.rollback_failed", zap.String("document_id", doc.ID), zap.Error(delErr))
		}
		if errors.Is(err, usage.ErrLimitReached) {
			metrics.IncQuotaRejected(source)
			return Outcome{Usage: charged}, ErrQuotaExceeded
		}
		s.fail(log, source, err)
		return Outcome{Usage: current}, fmt.Errorf("increment quota: %w", err)
	}

	elapsed := time.Since(started)
	metrics.IncIngestCompleted(source)
	metrics.ObserveIngestDuration(elapsed)
	log.Info("ingest.completed",
		zap.String("document_id", doc.ID),
		zap.String("category", doc.Category),
		zap.String("department", doc.Department),
		zap.String("classify_method", processed.Method),
		zap.Int("requests", charged.Requests),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	)
	return Outcome{Document: doc, Usage: charged, Method: processed.Method}, nil
}

// archive stores the original upload. Failures are logged and ignored.
func (s *Service) archive(ctx context.Context, ownerID, fileName string, data []byte) string {
	if s.Archive == nil {
		return ""
	}
	obj, err := s.Archive.Put(ctx, ownerID, fileName, bytes.NewReader(data))
	if err != nil {
		s.Log.Warn("ingest.archive_failed", zap.String("user_id", ownerID), zap.Error(err))
		return ""
	}
	return obj.Key
}

func (s *Service) discardArchive(ctx context.Context, doc documents.Document) {
	if s.Archive == nil || doc.SourceKey == "" {
		return
	}
	if err := s.Archive.Delete(ctx, doc.SourceKey); err != nil {
		s.Log.Warn("ingest.archive_cleanup_failed", zap.String("source_key", doc.SourceKey), zap.Error(err))
	}
}

func (s *Service) fail(log *zap.Logger, source string, err error) {
	reason := FailureReason(err)
	metrics.IncIngestFailed(source, reason)
	log.Info("ingest.failed", zap.String("reason", reason), zap.Error(err))
}

// FailureReason maps a pipeline error to a stable, low-cardinality label.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, textnorm.ErrInsufficientText):
		return string(extract.KindInsufficientText)
	}
	if kind := extract.KindOf(err); kind != "" {
		return string(kind)
	}
	return "internal_error"
}
