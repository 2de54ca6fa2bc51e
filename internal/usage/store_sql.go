package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps counters in the daily_usage table. Queries use $N
// placeholders, which both pgx and sqlite accept.
type SQLStore struct {
	DB *sql.DB
}

// NewSQLStore constructs a SQLStore.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

const insertUsageSQL = `
INSERT INTO daily_usage (user_id, usage_date, requests, max_requests, updated_at)
VALUES ($1, $2, 0, $3, $4)
ON CONFLICT (user_id, usage_date) DO NOTHING`

func (s *SQLStore) Ensure(ctx context.Context, userID, date string, maxRequests int, now time.Time) (DailyUsage, error) {
	if _, err := s.DB.ExecContext(ctx, insertUsageSQL, userID, date, maxRequests, now); err != nil {
		return DailyUsage{}, fmt.Errorf("ensure usage: %w", err)
	}
	return s.get(ctx, userID, date)
}

// Increment is a single conditional UPDATE, so concurrent requests from one
// user can never push requests past max_requests.
func (s *SQLStore) Increment(ctx context.Context, userID, date string, maxRequests int, now time.Time) (DailyUsage, error) {
	if _, err := s.DB.ExecContext(ctx, insertUsageSQL, userID, date, maxRequests, now); err != nil {
		return DailyUsage{}, fmt.Errorf("ensure usage: %w", err)
	}

	u := DailyUsage{UserID: userID, Date: date}
	err := s.DB.QueryRowContext(ctx, `
UPDATE daily_usage
SET requests = requests + 1, updated_at = $3
WHERE user_id = $1 AND usage_date = $2 AND requests < max_requests
RETURNING requests, max_requests`, userID, date, now).Scan(&u.Requests, &u.MaxRequests)
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := s.get(ctx, userID, date)
		if getErr != nil {
			return DailyUsage{}, getErr
		}
		return current, ErrLimitReached
	}
	if err != nil {
		return DailyUsage{}, fmt.Errorf("increment usage: %w", err)
	}
	return u, nil
}

func (s *SQLStore) Reset(ctx context.Context, userID, date string, maxRequests int, now time.Time) (DailyUsage, error) {
	if _, err := s.DB.ExecContext(ctx, `
INSERT INTO daily_usage (user_id, usage_date, requests, max_requests, updated_at)
VALUES ($1, $2, 0, $3, $4)
ON CONFLICT (user_id, usage_date) DO UPDATE SET requests = 0, updated_at = EXCLUDED.updated_at`,
		userID, date, maxRequests, now); err != nil {
		return DailyUsage{}, fmt.Errorf("reset usage: %w", err)
	}
	return DailyUsage{UserID: userID, Date: date, Requests: 0, MaxRequests: maxRequests}, nil
}

func (s *SQLStore) get(ctx context.Context, userID, date string) (DailyUsage, error) {
	u := DailyUsage{UserID: userID, Date: date}
	err := s.DB.QueryRowContext(ctx, `
SELECT requests, max_requests FROM daily_usage WHERE user_id = $1 AND usage_date = $2`,
		userID, date).Scan(&u.Requests, &u.MaxRequests)
	if err != nil {
		return DailyUsage{}, fmt.Errorf("get usage: %w", err)
	}
	return u, nil
}

var _ Store = (*SQLStore)(nil)
