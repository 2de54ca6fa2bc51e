package documents

import "context"

// Repo persists documents partitioned by owner.
type Repo interface {
	Save(ctx context.Context, doc Document) error
	Get(ctx context.Context, ownerID, id string) (Document, error)
	ListByOwner(ctx context.Context, ownerID string, f ListFilter) ([]Document, error)
	Delete(ctx context.Context, ownerID, id string) error
}
