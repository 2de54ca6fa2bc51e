package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns account rules: validation, hashing, and soft deletion.
type Service struct {
	Repo   Repo
	Hasher PasswordHasher
	Log    *zap.Logger
	Now    func() time.Time
}

// NewService constructs a Service. A nil hasher means bcrypt.
func NewService(repo Repo, hasher PasswordHasher, logger *zap.Logger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: BcryptCost}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Repo: repo, Hasher: hasher, Log: logger, Now: time.Now}
}

// Register creates a password account. Accounts are created verified; the
// verification token is still issued so VerifyEmail works for older rows.
func (s *Service) Register(ctx context.Context, email, name, password string) (User, error) {
	email = NormalizeEmail(email)
	if err := validateRegistration(email, name, password); err != nil {
		return User{}, err
	}
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return User{}, err
	}
	token, err := newVerificationToken()
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:                uuid.NewString(),
		Email:             email,
		Name:              strings.TrimSpace(name),
		PasswordHash:      hash,
		AuthProvider:      ProviderPassword,
		IsActive:          true,
		EmailVerified:     true,
		VerificationToken: token,
	}
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	s.Log.Info("user.registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Authenticate checks credentials for an active account and records the login.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return User{}, invalid("", "Email and password are required")
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrAuthFailed
	}
	if err != nil {
		return User{}, err
	}
	if !user.IsActive || !s.Hasher.Compare(user.PasswordHash, password) {
		return User{}, ErrAuthFailed
	}

	now := s.now()
	if err := s.Repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.Log.Warn("user.last_login_update_failed", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}
	return user, nil
}

// GetByID returns an active user.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrNotFound
	}
	user, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !user.IsActive {
		return User{}, ErrNotFound
	}
	return user, nil
}

// IsActive reports whether id names an account that may still sign in.
func (s *Service) IsActive(ctx context.Context, id string) (bool, error) {
	_, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.Hasher.Compare(user.PasswordHash, current) {
		return ErrAuthFailed
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := s.Hasher.Hash(next)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, id, hash, s.now())
}

// VerifyEmail consumes a verification token.
func (s *Service) VerifyEmail(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, invalid("token", "Verification token is required")
	}
	return s.Repo.VerifyEmail(ctx, token)
}

// Deactivate soft-deletes an account. The row is kept.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if err := s.Repo.Deactivate(ctx, id, s.now()); err != nil {
		return err
	}
	s.Log.Info("user.deactivated", zap.String("user_id", id))
	return nil
}

// UpsertExternal finds or creates an account for an identity verified by an
// external provider such as Google.
func (s *Service) UpsertExternal(ctx context.Context, email, name string) (User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return User{}, err
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.IsActive {
			return User{}, ErrAuthFailed
		}
	case errors.Is(err, ErrNotFound):
		name = strings.TrimSpace(name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = User{
			ID:            uuid.NewString(),
			Email:         email,
			Name:          name,
			AuthProvider:  ProviderGoogle,
			IsActive:      true,
			EmailVerified: true,
		}
		user.CreatedAt = s.now()
		user.UpdatedAt = user.CreatedAt
		if err := s.Repo.Create(ctx, user); err != nil {
			return User{}, err
		}
		s.Log.Info("user.registered", zap.String("user_id", user.ID), zap.String("provider", ProviderGoogle))
	default:
		return User{}, err
	}

	now := s.now()
	if err := s.Repo.UpdateLastLogin(ctx, user.ID, now); err == nil {
		user.LastLogin = &now
	}
	return user, nil
}

// List returns active users, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListActive(ctx, limit, offset)
}

// Stats counts users overall, active, created today, and created in the last week.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.now().Local()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.Repo.Stats(ctx, today.UTC(), today.AddDate(0, 0, -7).UTC())
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func newVerificationToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("verification token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
