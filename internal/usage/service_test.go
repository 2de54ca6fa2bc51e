package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestTracker(now *time.Time) *Tracker {
	tr := NewTracker(NewMemoryStore(), DefaultMaxRequests, time.UTC)
	tr.SetClock(func() time.Time { return *now })
	return tr
}

func TestTrackerFiveRequestsPerDay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := newTestTracker(&now)

	u, err := tr.Check(ctx, "u1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if u.Requests != 0 || u.MaxRequests != 5 || u.Date != "2026-03-01" {
		t.Fatalf("unexpected initial usage: %+v", u)
	}

	for i := 1; i <= 5; i++ {
		ok, _, err := tr.CanMakeRequest(ctx, "u1")
		if err != nil || !ok {
			t.Fatalf("request %d should be allowed: ok=%v err=%v", i, ok, err)
		}
		if u, err = tr.Increment(ctx, "u1"); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		if u.Requests != i {
			t.Fatalf("requests = %d, want %d", u.Requests, i)
		}
	}

	ok, u, err := tr.CanMakeRequest(ctx, "u1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok || u.Remaining() != 0 {
		t.Fatalf("sixth request should be refused: %+v", u)
	}
	if _, err := tr.Increment(ctx, "u1"); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestTrackerNewDayStartsAtZero(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	tr := newTestTracker(&now)

	for i := 0; i < 5; i++ {
		if _, err := tr.Increment(ctx, "u1"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	now = now.Add(2 * time.Minute)

	u, err := tr.Check(ctx, "u1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if u.Requests != 0 || u.Date != "2026-03-02" || !u.CanMakeRequest() {
		t.Fatalf("expected fresh day, got %+v", u)
	}
}

func TestTrackerUsersAreIndependent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := newTestTracker(&now)

	if _, err := tr.Increment(ctx, "u1"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	u, _ := tr.Check(ctx, "u2")
	if u.Requests != 0 {
		t.Fatalf("u2 should be untouched, got %+v", u)
	}
}

func TestTrackerLocationDecidesDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	tr := NewTracker(NewMemoryStore(), 0, loc)
	tr.SetClock(func() time.Time { return time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC) })
	if got := tr.Today(); got != "2026-03-02" {
		t.Fatalf("Today() = %q, want 2026-03-02", got)
	}
	if tr.MaxRequests() != DefaultMaxRequests {
		t.Fatalf("max = %d", tr.MaxRequests())
	}
}

func TestTrackerConcurrentIncrementsNeverExceedMax(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := newTestTracker(&now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.Increment(ctx, "u1"); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != DefaultMaxRequests {
		t.Fatalf("granted %d increments, want %d", granted, DefaultMaxRequests)
	}
}

func TestTrackerResetAndValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := newTestTracker(&now)

	_, _ = tr.Increment(ctx, "u1")
	u, err := tr.Reset(ctx, "u1")
	if err != nil || u.Requests != 0 {
		t.Fatalf("reset: %+v %v", u, err)
	}
	if _, err := tr.Check(ctx, " "); err == nil {
		t.Fatalf("expected error for empty user")
	}
}
