package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docinsight-backend/internal/account"
	googleauth "docinsight-backend/internal/auth"
	"docinsight-backend/internal/documents"
	"docinsight-backend/internal/ingest"
	"docinsight-backend/internal/services/health"
	"docinsight-backend/internal/shared/config"
	"docinsight-backend/internal/shared/metrics"
	"docinsight-backend/internal/shared/server/middleware"
	"docinsight-backend/internal/shared/server/respond"
	"docinsight-backend/internal/usage"
	"docinsight-backend/internal/users"
)

// RouterDeps carries the handlers built by bootstrap. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	Logger          *zap.Logger
	Verifier        middleware.TokenVerifier
	Accounts        middleware.AccountChecker
	RateLimiter     *middleware.RateLimiter
	AccountHandler  *account.Handler
	GoogleAuth      *googleauth.GoogleService
	UserHandler     *users.Handler
	UsageHandler    *usage.Handler
	DocumentHandler *documents.Handler
	IngestHandler   *ingest.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:   middleware.DefaultRateLimitRules(),
			Limiter: deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, deps.Config.Env, "")
	}
	api.GET("/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(deps.Verifier, deps.Accounts))
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(protected)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(protected)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(protected)
	}
	if deps.IngestHandler != nil {
		deps.IngestHandler.RegisterRoutes(protected)
	}

	if deps.Config.IsDev() {
		dev := protected.Group("/dev")
		if deps.UsageHandler != nil {
			deps.UsageHandler.RegisterDevRoutes(dev)
		}
		if deps.UserHandler != nil {
			deps.UserHandler.RegisterDevRoutes(dev)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
