package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicate
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, func(u *User) { u.LastLogin = &at })
}

func (r *MemoryRepo) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	return r.update(ctx, id, func(u *User) {
		u.PasswordHash = hash
		u.UpdatedAt = at
	})
}

func (r *MemoryRepo) Deactivate(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, func(u *User) {
		u.IsActive = false
		u.UpdatedAt = at
	})
}

func (r *MemoryRepo) VerifyEmail(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.byID {
		if u.VerificationToken == token {
			u.EmailVerified = true
			u.VerificationToken = ""
			r.byID[id] = u
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) ListActive(ctx context.Context, limit, offset int) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]User, 0, len(r.byID))
	for _, u := range r.byID {
		if u.IsActive {
			out = append(out, u)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []User{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) Stats(ctx context.Context, today, weekAgo time.Time) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s Stats
	for _, u := range r.byID {
		s.TotalUsers++
		if u.IsActive {
			s.ActiveUsers++
		}
		if !u.CreatedAt.Before(today) {
			s.NewUsersToday++
		}
		if !u.CreatedAt.Before(weekAgo) {
			s.NewUsersThisWeek++
		}
	}
	return s, nil
}

func (r *MemoryRepo) update(ctx context.Context, id string, fn func(*User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	r.byID[id] = u
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
