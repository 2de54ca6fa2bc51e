package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB       Pinger // nil means in-memory storage
	Env      string
	Provider string
	Timeout  time.Duration
}

// NewService constructs a new health service.
func NewService(db Pinger, env, provider string) *Service {
	return &Service{DB: db, Env: env, Provider: provider, Timeout: 2 * time.Second}
}

// Report is the /health payload.
type Report struct {
	OK         bool   `json:"ok"`
	Env        string `json:"env"`
	Database   string `json:"database"`
	Classifier string `json:"classifier"`
}

// Status pings the database, if any, and reports the classifier provider.
func (s *Service) Status(ctx context.Context) Report {
	r := Report{OK: true, Env: s.Env, Database: "memory", Classifier: s.Provider}
	if r.Classifier == "" {
		r.Classifier = "none"
	}
	if s.DB == nil {
		return r
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		r.OK = false
		r.Database = "unreachable"
		return r
	}
	r.Database = "ok"
	return r
}
