package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLRepo stores users in the users table.
type SQLRepo struct {
	DB *sql.DB
}

const userColumns = `id, email, name, password_hash, auth_provider, is_active, email_verified, verification_token, created_at, updated_at, last_login`

func (r *SQLRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (` + userColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.AuthProvider,
		user.IsActive,
		user.EmailVerified,
		nullableString(user.VerificationToken),
		user.CreatedAt,
		user.UpdatedAt,
		nullableTime(user.LastLogin),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id)
}

func (r *SQLRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

func (r *SQLRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
}

func (r *SQLRepo) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, at)
}

func (r *SQLRepo) Deactivate(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET is_active = FALSE, updated_at = $2 WHERE id = $1`, id, at)
}

func (r *SQLRepo) VerifyEmail(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	res, err := r.DB.ExecContext(ctx, `
UPDATE users SET email_verified = TRUE, verification_token = NULL
WHERE verification_token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("verify email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLRepo) ListActive(ctx context.Context, limit, offset int) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE is_active = TRUE
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLRepo) Stats(ctx context.Context, today, weekAgo time.Time) (Stats, error) {
	var s Stats
	err := r.DB.QueryRowContext(ctx, `
SELECT
  COUNT(*),
  COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN created_at >= $1 THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN created_at >= $2 THEN 1 ELSE 0 END), 0)
FROM users`, today, weekAgo).Scan(&s.TotalUsers, &s.ActiveUsers, &s.NewUsersToday, &s.NewUsersThisWeek)
	if err != nil {
		return Stats{}, fmt.Errorf("user stats: %w", err)
	}
	return s, nil
}

func (r *SQLRepo) getOne(ctx context.Context, query string, arg any) (User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *SQLRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var token sql.NullString
	var lastLogin sql.NullTime
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.AuthProvider,
		&u.IsActive,
		&u.EmailVerified,
		&token,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLogin,
	); err != nil {
		return User{}, err
	}
	u.VerificationToken = token.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullableString(val string) sql.NullString {
	if val == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: val, Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*SQLRepo)(nil)
