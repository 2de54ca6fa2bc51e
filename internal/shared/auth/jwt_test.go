package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour, true)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	tok, err := iss.Sign("u1", "a@b.co", "Ann")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID() != "u1" || claims.Email != "a@b.co" || claims.Name != "Ann" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour, false)
	other, _ := NewIssuer("other", time.Hour, false)
	tok, _ := other.Sign("u1", "", "")

	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "not.a.jwt",
		"wrong key": tok,
	} {
		if _, err := iss.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestVerifyExpired(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Minute, false)
	past := time.Now().Add(-2 * time.Hour)
	iss.now = func() time.Time { return past }
	tok, err := iss.Sign("u1", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	iss.now = time.Now
	if _, err := iss.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expiry rejection, got %v", err)
	}
}

func TestNewIssuerSecretRules(t *testing.T) {
	if _, err := NewIssuer("", 0, false); err == nil {
		t.Fatalf("expected a secret to be required")
	}
	if _, err := NewIssuer("  ", 0, false); err == nil {
		t.Fatalf("expected a blank secret to be required")
	}
	iss, err := NewIssuer("  ", 0, true)
	if err != nil {
		t.Fatalf("dev issuer: %v", err)
	}
	if iss.TTL() != DefaultTTL {
		t.Fatalf("ttl = %v", iss.TTL())
	}
	token, err := iss.Sign("user-1", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	strict, err := NewIssuer("real-secret", 0, false)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	if _, err := strict.Verify(token); err == nil {
		t.Fatalf("token signed with the dev secret must not verify against a configured secret")
	}
}
