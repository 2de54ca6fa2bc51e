package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docinsight-backend/internal/account"
	googleauth "docinsight-backend/internal/auth"
	"docinsight-backend/internal/classify"
	"docinsight-backend/internal/documents"
	"docinsight-backend/internal/extract"
	"docinsight-backend/internal/ingest"
	"docinsight-backend/internal/llm"
	"docinsight-backend/internal/llm/provider"
	"docinsight-backend/internal/services/health"
	"docinsight-backend/internal/shared/auth"
	"docinsight-backend/internal/shared/config"
	"docinsight-backend/internal/shared/server"
	"docinsight-backend/internal/shared/storage/db"
	"docinsight-backend/internal/shared/storage/object"
	localstore "docinsight-backend/internal/shared/storage/object/local"
	s3store "docinsight-backend/internal/shared/storage/object/s3"
	"docinsight-backend/internal/usage"
	"docinsight-backend/internal/users"
)

// App holds the process-wide dependencies. The entry point owns its lifecycle.
type App struct {
	Config config.Config
	Log    *zap.Logger
	Router *gin.Engine
	DB     *sql.DB
	Store  object.Store
	LLM    llm.Client

	Issuer     *auth.Issuer
	Classifier *classify.Classifier
	Pipeline   *ingest.Pipeline
	Tracker    *usage.Tracker

	UsersService     *users.Service
	AccountService   *account.Service
	DocumentsService *documents.Service
	IngestService    *ingest.Service
}

// Build connects storage, runs migrations and wires every handler.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Config: cfg, Log: logger}

	sqlDB, err := buildDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	client, err := provider.Build(ctx, provider.Settings{
		Provider:     cfg.LLMProvider,
		Model:        cfg.LLMModel,
		BaseURL:      cfg.LLMBaseURL,
		GroqAPIKey:   cfg.GroqAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		GeminiAPIKey: cfg.GeminiAPIKey,
		Timeout:      cfg.LLMTimeout(),
	}, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("build llm client: %w", err)
	}
	app.LLM = client

	if err := buildServices(app); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// Close releases the database and any provider connections.
func (a *App) Close() error {
	var errs []error
	if closer, ok := a.LLM.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config, logger *zap.Logger) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsDev() {
			logger.Warn("DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	opts.Logger = logger
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDev() {
			logger.Warn("database connect failed; using in-memory repositories", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB, db.Dialect(cfg.DatabaseURL), logger); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "none":
		return nil, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) error {
	cfg := app.Config

	var (
		userRepo   users.Repo
		docRepo    documents.Repo
		usageStore usage.Store
	)
	if app.DB != nil {
		userRepo = &users.SQLRepo{DB: app.DB}
		docRepo = &documents.SQLRepo{DB: app.DB}
		usageStore = usage.NewSQLStore(app.DB)
	} else {
		userRepo = users.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
		usageStore = usage.NewMemoryStore()
	}

	hasher, err := users.NewHasher(cfg.PasswordHasher)
	if err != nil {
		return err
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.IsDev())
	if err != nil {
		return err
	}
	loc, err := cfg.QuotaLocation()
	if err != nil {
		return err
	}

	app.Issuer = issuer
	app.Tracker = usage.NewTracker(usageStore, cfg.QuotaDailyMax, loc)
	app.Classifier = classify.New(app.LLM, cfg.ClassifyTimeout, app.Log.Named("classify"))
	app.Pipeline = ingest.NewPipeline(extract.NewFetcher(cfg.FetchTimeout), app.Classifier, app.Log.Named("ingest"))

	app.UsersService = users.NewService(userRepo, hasher, app.Log.Named("users"))
	app.AccountService = account.NewService(app.UsersService, issuer)
	app.DocumentsService = documents.NewService(docRepo, app.Store, app.Log.Named("documents"))
	app.IngestService = ingest.NewService(app.Pipeline, app.DocumentsService, app.Tracker, app.Store, app.Log.Named("ingest"))

	accountHandler := account.NewHandler(app.AccountService, cfg.IsProduction())
	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		Health:         health.NewService(pinger, cfg.Env, app.LLM.Info().Provider),
		Logger:         app.Log,
		Verifier:       issuer,
		Accounts:       app.UsersService,
		AccountHandler: accountHandler,
		GoogleAuth: googleauth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
			app.AccountService,
			accountHandler,
		),
		UserHandler:     users.NewHandler(app.UsersService),
		UsageHandler:    usage.NewHandler(app.Tracker),
		DocumentHandler: documents.NewHandler(app.DocumentsService),
		IngestHandler:   ingest.NewHandler(app.IngestService, app.Classifier),
	})
	return nil
}
