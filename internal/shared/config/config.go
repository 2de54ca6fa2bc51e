package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Env             string        `env:"ENV" env-default:"dev"`
	Port            string        `env:"PORT" env-default:"8080"`
	CORSAllowOrigin []string      `env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:5173"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`

	DatabaseURL string `env:"DATABASE_URL"`

	ObjectStoreType string `env:"OBJECT_STORE" env-default:"local"`
	LocalStoreDir   string `env:"LOCAL_STORE_DIR" env-default:"./data"`
	AWSRegion       string `env:"AWS_REGION"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Prefix        string `env:"S3_PREFIX"`
	SSEKMSKeyID     string `env:"SSE_KMS_KEY_ID"`

	LLMProvider       string        `env:"LLM_PROVIDER" env-default:"groq"`
	LLMModel          string        `env:"LLM_MODEL"`
	LLMBaseURL        string        `env:"LLM_BASE_URL"`
	GroqAPIKey        string        `env:"GROQ_API_KEY"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	LLMTimeoutSeconds int           `env:"LLM_TIMEOUT_SECONDS" env-default:"30"`
	ClassifyTimeout   time.Duration `env:"CLASSIFY_TIMEOUT" env-default:"30s"`
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" env-default:"10s"`

	JWTSecret      string        `env:"JWT_SECRET"`
	JWTTTL         time.Duration `env:"JWT_TTL" env-default:"168h"`
	PasswordHasher string        `env:"PASSWORD_HASHER" env-default:"bcrypt"`

	QuotaDailyMax int    `env:"QUOTA_DAILY_MAX" env-default:"5"`
	QuotaTimezone string `env:"QUOTA_TIMEZONE" env-default:"Local"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	LogFile  string `env:"LOG_FILE"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`
	UIRedirectURL      string `env:"UI_REDIRECT_URL"`
}

// Load reads .env files (best effort) and then the process environment.
func Load() (Config, error) {
	loadEnvFiles(".env", "cmd/.env")

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot run with.
func (c Config) Validate() error {
	if c.IsProduction() {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
	}
	if !c.IsDev() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required in %s", c.Env)
	}
	if c.ObjectStoreType == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		return fmt.Errorf("S3_BUCKET is required when OBJECT_STORE=s3")
	}
	if c.QuotaDailyMax <= 0 {
		return fmt.Errorf("QUOTA_DAILY_MAX must be positive")
	}
	if _, err := c.QuotaLocation(); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether the normalized env is production.
func (c Config) IsProduction() bool { return c.Env == "production" }

// IsDev reports whether dev-only routes may be mounted.
func (c Config) IsDev() bool { return c.Env == "dev" || c.Env == "local" }

// LLMTimeout converts LLM_TIMEOUT_SECONDS to a duration.
func (c Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// QuotaLocation resolves QUOTA_TIMEZONE.
func (c Config) QuotaLocation() (*time.Location, error) {
	name := strings.TrimSpace(c.QuotaTimezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("QUOTA_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.ObjectStoreType = normalizeStoreType(c.ObjectStoreType)
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.PasswordHasher = strings.ToLower(strings.TrimSpace(c.PasswordHasher))
	c.CORSAllowOrigin = trimAll(c.CORSAllowOrigin)
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
}

func loadEnvFiles(paths ...string) {
	for _, p := range paths {
		// Missing files are fine; real env vars always win.
		_ = godotenv.Load(p)
	}
}

func trimAll(in []string) []string {
	var out []string
	for _, p := range in {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "none", "off":
		return "none"
	default:
		return "local"
	}
}
