package usage

import (
	"context"
	"sync"
	"time"
)

type usageKey struct {
	userID string
	date   string
}

// MemoryStore keeps counters in a map. Prior days stay in the map.
type MemoryStore struct {
	mu   sync.Mutex
	data map[usageKey]DailyUsage
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[usageKey]DailyUsage)}
}

func (s *MemoryStore) Ensure(ctx context.Context, userID, date string, maxRequests int, _ time.Time) (DailyUsage, error) {
	if err := ctx.Err(); err != nil {
		return DailyUsage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID, date, maxRequests), nil
}

func (s *MemoryStore) Increment(ctx context.Context, userID, date string, maxRequests int, _ time.Time) (DailyUsage, error) {
	if err := ctx.Err(); err != nil {
		return DailyUsage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, date, maxRequests)
	if !u.CanMakeRequest() {
		return u, ErrLimitReached
	}
	u.Requests++
	s.data[usageKey{userID, date}] = u
	return u, nil
}

func (s *MemoryStore) Reset(ctx context.Context, userID, date string, maxRequests int, _ time.Time) (DailyUsage, error) {
	if err := ctx.Err(); err != nil {
		return DailyUsage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, date, maxRequests)
	u.Requests = 0
	s.data[usageKey{userID, date}] = u
	return u, nil
}

func (s *MemoryStore) ensureLocked(userID, date string, maxRequests int) DailyUsage {
	key := usageKey{userID, date}
	u, ok := s.data[key]
	if !ok {
		u = DailyUsage{UserID: userID, Date: date, MaxRequests: maxRequests}
		s.data[key] = u
	}
	return u
}

var _ Store = (*MemoryStore)(nil)
