package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("CORS_ALLOW_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("S3_BUCKET", "docs")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "dev" || !cfg.IsDev() {
		t.Fatalf("env = %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.test" {
		t.Fatalf("origins = %v", cfg.CORSAllowOrigin)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("store = %q", cfg.ObjectStoreType)
	}
	if cfg.QuotaDailyMax != 5 {
		t.Fatalf("quota = %d", cfg.QuotaDailyMax)
	}
	if cfg.JWTTTL != 7*24*time.Hour {
		t.Fatalf("jwt ttl = %v", cfg.JWTTTL)
	}
	if cfg.LLMTimeout() != 30*time.Second {
		t.Fatalf("llm timeout = %v", cfg.LLMTimeout())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "dev ok", cfg: Config{Env: "dev", QuotaDailyMax: 5}},
		{name: "prod needs db", cfg: Config{Env: "production", JWTSecret: "x", QuotaDailyMax: 5}, wantErr: true},
		{name: "prod needs secret", cfg: Config{Env: "production", DatabaseURL: "postgres://x", QuotaDailyMax: 5}, wantErr: true},
		{name: "staging needs secret", cfg: Config{Env: "staging", DatabaseURL: "postgres://x", QuotaDailyMax: 5}, wantErr: true},
		{name: "staging ok", cfg: Config{Env: "staging", DatabaseURL: "postgres://x", JWTSecret: "x", QuotaDailyMax: 5}},
		{name: "s3 needs bucket", cfg: Config{Env: "dev", ObjectStoreType: "s3", QuotaDailyMax: 5}, wantErr: true},
		{name: "bad quota", cfg: Config{Env: "dev"}, wantErr: true},
		{name: "bad timezone", cfg: Config{Env: "dev", QuotaDailyMax: 5, QuotaTimezone: "Mars/Olympus"}, wantErr: true},
		{name: "utc timezone", cfg: Config{Env: "dev", QuotaDailyMax: 5, QuotaTimezone: "UTC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeEnv(t *testing.T) {
	cases := map[string]string{"prod": "production", "PRODUCTION": "production", "staging": "staging", "": "dev", "weird": "dev"}
	for in, want := range cases {
		if got := normalizeEnv(in); got != want {
			t.Errorf("normalizeEnv(%q) = %q, want %q", in, got, want)
		}
	}
}
