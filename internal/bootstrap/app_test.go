package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docinsight-backend/internal/shared/config"
)

func testConfig(databaseURL string) config.Config {
	return config.Config{
		Env:             "dev",
		DatabaseURL:     databaseURL,
		ObjectStoreType: "none",
		LLMProvider:     "none",
		ClassifyTimeout: time.Second,
		FetchTimeout:    time.Second,
		JWTSecret:       "bootstrap-secret",
		JWTTTL:          time.Hour,
		PasswordHasher:  "plaintext",
		QuotaDailyMax:   5,
		QuotaTimezone:   "UTC",
	}
}

func do(t *testing.T, app *App, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func exerciseAccountFlow(t *testing.T, app *App) {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/api/v1/auth/register", "", `{"email":"ann@example.com","name":"Ann","password":"secret1"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, app, http.MethodPost, "/api/v1/auth/login", "", `{"email":"ann@example.com","password":"secret1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("login: %d %s", resp.Code, resp.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login body: %v %s", err, resp.Body.String())
	}

	resp = do(t, app, http.MethodGet, "/api/v1/me", login.Token, "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "ann@example.com") {
		t.Fatalf("me: %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, app, http.MethodGet, "/api/v1/usage", login.Token, "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"requests":0`) {
		t.Fatalf("usage: %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, app, http.MethodGet, "/api/v1/documents", login.Token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("documents: %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, app, http.MethodGet, "/api/v1/classifier/status", login.Token, "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"provider":"none"`) {
		t.Fatalf("classifier status: %d %s", resp.Code, resp.Body.String())
	}
}

func TestBuildInMemory(t *testing.T) {
	app, err := Build(context.Background(), testConfig(""), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if app.DB != nil {
		t.Fatalf("expected memory mode without DATABASE_URL")
	}
	exerciseAccountFlow(t, app)
}

func TestBuildWithSQLite(t *testing.T) {
	app, err := Build(context.Background(), testConfig("sqlite::memory:"), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if app.DB == nil {
		t.Fatalf("expected a database connection")
	}
	exerciseAccountFlow(t, app)
}

func TestDeactivatedAccountLosesAccess(t *testing.T) {
	app, err := Build(context.Background(), testConfig("sqlite::memory:"), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	resp := do(t, app, http.MethodPost, "/api/v1/auth/register", "", `{"email":"bo@example.com","name":"Bo","password":"secret1"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, app, http.MethodPost, "/api/v1/auth/login", "", `{"email":"bo@example.com","password":"secret1"}`)
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login: %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, app, http.MethodDelete, "/api/v1/me", login.Token, "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("deactivate: %d %s", resp.Code, resp.Body.String())
	}

	for _, path := range []string{"/api/v1/usage", "/api/v1/documents", "/api/v1/me"} {
		if resp := do(t, app, http.MethodGet, path, login.Token, ""); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s after deactivation: %d %s", path, resp.Code, resp.Body.String())
		}
	}
	resp = do(t, app, http.MethodPost, "/api/v1/ingest/youtube", login.Token, `{"url":"not a video"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("ingest after deactivation: %d %s", resp.Code, resp.Body.String())
	}
}

func TestBuildRequiresJWTSecretOutsideDev(t *testing.T) {
	cfg := testConfig("sqlite::memory:")
	cfg.Env = "staging"
	cfg.JWTSecret = ""
	if app, err := Build(context.Background(), cfg, nil); err == nil {
		app.Close()
		t.Fatalf("expected staging without JWT_SECRET to fail")
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig("")
	cfg.Env = "staging"
	if _, err := Build(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error without DATABASE_URL outside dev")
	}
}
