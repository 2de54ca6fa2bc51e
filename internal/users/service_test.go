package users

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService() *Service {
	svc := NewService(NewMemoryRepo(), PlaintextHasher{}, nil)
	svc.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	tests := []struct {
		name, email, userName, password, field string
	}{
		{"missing", "", "Ann", "secret1", ""},
		{"bad email", "ann@example", "Ann", "secret1", "email"},
		{"short name", "ann@example.com", " A ", "secret1", "name"},
		{"short password", "ann@example.com", "Ann", "12345", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.userName, tt.password)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestRegisterNormalizesAndRejectsDuplicates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Ann@Example.COM ", "  Ann  ", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "ann@example.com" || u.Name != "Ann" || !u.IsActive || !u.EmailVerified {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.VerificationToken == "" || len(u.VerificationToken) != 64 {
		t.Fatalf("expected 32-byte hex token, got %q", u.VerificationToken)
	}
	if _, err := svc.Register(ctx, "ANN@example.com", "Other", "secret2"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u, _ := svc.Register(ctx, "ann@example.com", "Ann", "secret1")

	got, err := svc.Authenticate(ctx, "ANN@example.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.LastLogin == nil {
		t.Fatalf("expected last login to be set")
	}
	if _, err := svc.Authenticate(ctx, "ann@example.com", "wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed for unknown user, got %v", err)
	}

	if err := svc.Deactivate(ctx, u.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ann@example.com", "secret1"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("inactive user must not log in, got %v", err)
	}
	if _, err := svc.GetByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive user must be hidden, got %v", err)
	}
	if _, err := svc.Repo.GetByID(ctx, u.ID); err != nil {
		t.Fatalf("soft delete must keep the row: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u, _ := svc.Register(ctx, "ann@example.com", "Ann", "secret1")

	if err := svc.ChangePassword(ctx, u.ID, "wrong", "newsecret"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	var verr *ValidationError
	if err := svc.ChangePassword(ctx, u.ID, "secret1", "123"); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !u.UpdatedAt.Equal(u.CreatedAt) {
		t.Fatalf("new account: updatedAt %v != createdAt %v", u.UpdatedAt, u.CreatedAt)
	}
	later := u.CreatedAt.Add(time.Hour)
	svc.Now = func() time.Time { return later }
	if err := svc.ChangePassword(ctx, u.ID, "secret1", "newsecret"); err != nil {
		t.Fatalf("change: %v", err)
	}
	stored, err := svc.Repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.UpdatedAt.Equal(later) {
		t.Fatalf("updatedAt = %v, want %v", stored.UpdatedAt, later)
	}
	if _, err := svc.Authenticate(ctx, "ann@example.com", "newsecret"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestVerifyEmailConsumesToken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u, _ := svc.Register(ctx, "ann@example.com", "Ann", "secret1")

	ok, err := svc.VerifyEmail(ctx, u.VerificationToken)
	if err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}
	ok, err = svc.VerifyEmail(ctx, u.VerificationToken)
	if err != nil || ok {
		t.Fatalf("token must be single use: ok=%v err=%v", ok, err)
	}
}

func TestUpsertExternal(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.UpsertExternal(ctx, "Gopher@Example.com", "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.Name != "gopher" || first.AuthProvider != ProviderGoogle {
		t.Fatalf("unexpected user: %+v", first)
	}
	second, err := svc.UpsertExternal(ctx, "gopher@example.com", "Gopher")
	if err != nil || second.ID != first.ID {
		t.Fatalf("expected same account, got %+v %v", second, err)
	}
	if _, err := svc.Authenticate(ctx, "gopher@example.com", ""); err == nil {
		t.Fatalf("external accounts have no password")
	}
}

func TestStatsAndList(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a, _ := svc.Register(ctx, "a@example.com", "Ann", "secret1")
	_, _ = svc.Register(ctx, "b@example.com", "Bob", "secret1")
	_ = svc.Deactivate(ctx, a.ID)

	s, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.TotalUsers != 2 || s.ActiveUsers != 1 || s.NewUsersThisWeek != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	list, err := svc.List(ctx, 0, 0)
	if err != nil || len(list) != 1 || list[0].Email != "b@example.com" {
		t.Fatalf("unexpected list: %+v %v", list, err)
	}
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("bcrypt")
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	fast := BcryptHasher{Cost: 4}
	hash, err := fast.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !h.Compare(hash, "secret1") || h.Compare(hash, "nope") {
		t.Fatalf("bcrypt compare mismatch")
	}
	if _, err := NewHasher("rot13"); err == nil {
		t.Fatalf("expected unknown hasher error")
	}
	if p, _ := NewHasher("plaintext"); p.Compare("", "") {
		t.Fatalf("empty hash must never match")
	}
}
