package documents

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"docinsight-backend/internal/shared/storage/object"
)

// Service contains business logic for stored documents.
type Service struct {
	Repo  Repo
	Store object.Store // optional; holds archived PDF uploads
	Log   *zap.Logger
}

// NewService constructs a Service.
func NewService(repo Repo, store object.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Repo: repo, Store: store, Log: logger}
}

// Save persists a freshly assembled document.
func (s *Service) Save(ctx context.Context, doc Document) error {
	if strings.TrimSpace(doc.OwnerID) == "" || strings.TrimSpace(doc.ID) == "" {
		return ErrInvalidInput
	}
	return s.Repo.Save(ctx, doc)
}

// List returns the owner's documents.
func (s *Service) List(ctx context.Context, ownerID string, f ListFilter) ([]Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOwner(ctx, ownerID, f)
}

// Get returns one of the owner's documents.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Document, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(id) == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, ownerID, id)
}

// Delete removes the record, then the archived upload if there is one.
// Archive cleanup failures are logged, not returned.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if doc.SourceKey != "" && s.Store != nil {
		if err := s.Store.Delete(ctx, doc.SourceKey); err != nil {
			s.Log.Warn("archived upload cleanup failed",
				zap.String("document_id", id),
				zap.String("source_key", doc.SourceKey),
				zap.Error(err),
			)
		}
	}
	return nil
}
