package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // ownerId -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Document),
	}
}

// Save appends a document to its owner's collection.
func (r *MemoryRepo) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID == "" || doc.OwnerID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.OwnerID] = append(r.data[doc.OwnerID], doc)
	return nil
}

// Get returns a document by ID for an owner.
func (r *MemoryRepo) Get(ctx context.Context, ownerID, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.data[ownerID] {
		if doc.ID == id {
			return doc, nil
		}
	}
	return Document{}, ErrNotFound
}

// ListByOwner returns an owner's documents, newest first, honoring the filter.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, f ListFilter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	docs := make([]Document, 0, len(r.data[ownerID]))
	for _, doc := range r.data[ownerID] {
		if matches(doc, f) {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UploadDate.After(docs[j].UploadDate)
	})

	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if f.Limit > 0 && offset+f.Limit < end {
		end = offset + f.Limit
	}
	return docs[offset:end], nil
}

// Delete removes a document owned by ownerID.
func (r *MemoryRepo) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[ownerID]
	for i := range docs {
		if docs[i].ID == id {
			r.data[ownerID] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func matches(doc Document, f ListFilter) bool {
	if f.Category != "" && doc.Category != f.Category {
		return false
	}
	if f.Department != "" && doc.Department != f.Department {
		return false
	}
	if f.Type != "" && doc.Type != f.Type {
		return false
	}
	return true
}

var _ Repo = (*MemoryRepo)(nil)
