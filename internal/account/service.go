package account

import (
	"context"
	"time"

	"docinsight-backend/internal/shared/auth"
	"docinsight-backend/internal/users"
)

// Session is a signed-in user plus the token that proves it.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      users.User
}

// Service turns account operations into sessions.
type Service struct {
	Users  *users.Service
	Tokens *auth.Issuer
}

func NewService(userSvc *users.Service, tokens *auth.Issuer) *Service {
	return &Service{Users: userSvc, Tokens: tokens}
}

// Register creates an account. Registration does not sign the user in.
func (s *Service) Register(ctx context.Context, email, name, password string) (users.User, error) {
	return s.Users.Register(ctx, email, name, password)
}

// Login authenticates and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.Users.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.SessionFor(user)
}

// SessionFor signs a token for an already-authenticated user.
func (s *Service) SessionFor(user users.User) (Session, error) {
	token, err := s.Tokens.Sign(user.ID, user.Email, user.Name)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.Tokens.TTL()),
		User:      user,
	}, nil
}

// VerifyEmail consumes a verification token.
func (s *Service) VerifyEmail(ctx context.Context, token string) (bool, error) {
	return s.Users.VerifyEmail(ctx, token)
}
