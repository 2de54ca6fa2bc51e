package usage

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Store persists per-day counters. Increment must be atomic: it raises
// requests by one only while requests < max and otherwise returns
// ErrLimitReached together with the current row.
type Store interface {
	Ensure(ctx context.Context, userID, date string, maxRequests int, now time.Time) (DailyUsage, error)
	Increment(ctx context.Context, userID, date string, maxRequests int, now time.Time) (DailyUsage, error)
	Reset(ctx context.Context, userID, date string, maxRequests int, now time.Time) (DailyUsage, error)
}

// Tracker enforces the daily quota. Days are computed in its location, so a
// new calendar day always starts a fresh row at zero.
type Tracker struct {
	store       Store
	maxRequests int
	loc         *time.Location
	now         func() time.Time
}

// NewTracker builds a Tracker. A nil location means time.Local.
func NewTracker(store Store, maxRequests int, loc *time.Location) *Tracker {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{store: store, maxRequests: maxRequests, loc: loc, now: time.Now}
}

// NewMemoryTracker is a Tracker over an in-memory store with the default quota.
func NewMemoryTracker() *Tracker {
	return NewTracker(NewMemoryStore(), DefaultMaxRequests, nil)
}

// SetClock replaces the wall clock; tests use it to cross midnight.
func (t *Tracker) SetClock(now func() time.Time) {
	if now != nil {
		t.now = now
	}
}

// MaxRequests is the configured daily quota.
func (t *Tracker) MaxRequests() int { return t.maxRequests }

// Today returns the current day key in the tracker's location.
func (t *Tracker) Today() string {
	return t.now().In(t.loc).Format(DateLayout)
}

// Check returns today's usage, creating the row on first sight.
func (t *Tracker) Check(ctx context.Context, userID string) (DailyUsage, error) {
	if err := validUser(userID); err != nil {
		return DailyUsage{}, err
	}
	return t.store.Ensure(ctx, userID, t.Today(), t.maxRequests, t.now().UTC())
}

// CanMakeRequest reports whether the user may start a chargeable request.
func (t *Tracker) CanMakeRequest(ctx context.Context, userID string) (bool, DailyUsage, error) {
	u, err := t.Check(ctx, userID)
	if err != nil {
		return false, DailyUsage{}, err
	}
	return u.CanMakeRequest(), u, nil
}

// Increment charges one request against today's quota.
func (t *Tracker) Increment(ctx context.Context, userID string) (DailyUsage, error) {
	if err := validUser(userID); err != nil {
		return DailyUsage{}, err
	}
	return t.store.Increment(ctx, userID, t.Today(), t.maxRequests, t.now().UTC())
}

// Reset zeroes today's counter.
func (t *Tracker) Reset(ctx context.Context, userID string) (DailyUsage, error) {
	if err := validUser(userID); err != nil {
		return DailyUsage{}, err
	}
	return t.store.Reset(ctx, userID, t.Today(), t.maxRequests, t.now().UTC())
}

var errMissingUser = errors.New("user id is required")

func validUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errMissingUser
	}
	return nil
}
