package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docinsight-backend/internal/shared/auth"
	"docinsight-backend/internal/shared/server/respond"
)

// AuthCookie is the cookie that carries the session token.
const AuthCookie = "auth-token"

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// TokenVerifier is satisfied by *auth.Issuer.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// AccountChecker reports whether a token subject may still use the API.
type AccountChecker interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

// Auth requires a valid session token from the Authorization header or the
// auth cookie. With a non-nil accounts checker the subject must also be an
// active account, so deactivation revokes outstanding tokens.
func Auth(verifier TokenVerifier, accounts AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		token, ok := tokenFromRequest(c)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		if accounts != nil {
			active, err := accounts.IsActive(c.Request.Context(), claims.UserID())
			if err != nil {
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load account", nil)
				return
			}
			if !active {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "account is not active", nil)
				return
			}
		}

		SetIdentity(c, Identity{UserID: claims.UserID(), Email: claims.Email, Name: claims.Name})
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) (string, bool) {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		return token, token != ""
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie), true
	}
	return "", false
}

// SetIdentity stores the caller on the gin context.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(userIDKey, id.UserID)
	if id.Email != "" {
		c.Set(userEmailKey, id.Email)
	}
	if id.Name != "" {
		c.Set(userNameKey, id.Name)
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// IdentityFromContext returns everything the auth middleware stored.
func IdentityFromContext(c *gin.Context) Identity {
	return Identity{
		UserID: stringFromContext(c, userIDKey),
		Email:  stringFromContext(c, userEmailKey),
		Name:   stringFromContext(c, userNameKey),
	}
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
