package users

import (
	"context"
	"time"
)

// Repo persists users. Lookups by email expect a normalized address.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error
	// VerifyEmail marks the token's owner verified and clears the token.
	VerifyEmail(ctx context.Context, token string) (bool, error)
	Deactivate(ctx context.Context, id string, at time.Time) error
	ListActive(ctx context.Context, limit, offset int) ([]User, error)
	Stats(ctx context.Context, today, weekAgo time.Time) (Stats, error)
}
