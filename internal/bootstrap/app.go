package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"doc-analyzer/internal/documents"
	"doc-analyzer/internal/extract"
	"doc-analyzer/internal/llm"
	"doc-analyzer/internal/llm/gemini"
	"doc-analyzer/internal/llm/openai"
	"doc-analyzer/internal/pipeline"
	"doc-analyzer/internal/services/health"
	"doc-analyzer/internal/shared/auth"
	"doc-analyzer/internal/shared/config"
	"doc-analyzer/internal/shared/server"
	"doc-analyzer/internal/shared/storage/db"
	"doc-analyzer/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Repo             documents.Repo
	Extractors       *extract.Set
	Gateway          *llm.Gateway
	Pipeline         *pipeline.Pipeline
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
	UploadHandler    *pipeline.Handler
	Health           *health.Service
	Signer           *auth.Signer
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	return BuildContext(context.Background(), cfg)
}

// BuildContext is Build with a caller-supplied context for start-up I/O.
func BuildContext(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.LLMModel) == "" {
		cfg.LLMModel = config.DefaultModel(cfg.LLMProvider)
	}

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gateway, err := BuildGateway(ctx, cfg)
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	app := &App{
		Config:     cfg,
		DB:         sqlDB,
		Extractors: BuildExtractors(cfg),
		Gateway:    gateway,
		Signer:     signer,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Health:          app.Health,
		DocumentHandler: app.DocumentsHandler,
		UploadHandler:   app.UploadHandler,
		Signer:          app.Signer,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":        cfg.Env,
		"extractors": app.Extractors.Available(),
		"provider":   gateway.ProviderName(),
		"model":      cfg.LLMModel,
		"database":   sqlDB != nil,
	})
	return app, nil
}

// Close releases the gateway and database handles.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if err := a.Gateway.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close gateway: %w", err))
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() || cfg.Env == "test" {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database unavailable", "err": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// BuildExtractors orders strategies as listed in EXTRACTORS. Strategies not
// listed are kept but report unavailable.
func BuildExtractors(cfg config.Config) *extract.Set {
	workers := cfg.ExtractWorkers
	byName := map[string]func(bool) extract.Extractor{
		extract.StructuralName: func(on bool) extract.Extractor { return extract.NewStructural(on).WithWorkers(workers) },
		extract.HeuristicName:  func(on bool) extract.Extractor { return extract.NewHeuristic(on) },
	}

	var ordered []extract.Extractor
	seen := map[string]bool{}
	for _, raw := range cfg.Extractors {
		name := strings.ToLower(strings.TrimSpace(raw))
		build, ok := byName[name]
		if !ok {
			telemetry.Warn("bootstrap.unknown_extractor", map[string]any{"name": raw})
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		ordered = append(ordered, build(true))
	}
	for _, name := range []string{extract.StructuralName, extract.HeuristicName} {
		if !cfg.ExtractorEnabled(name) {
			ordered = append(ordered, byName[name](false))
		}
	}
	return extract.NewSet(ordered...)
}

// BuildGateway returns a nil gateway when no credential is configured; the
// pipeline then fails uploads with ErrGatewayNotConfigured.
func BuildGateway(ctx context.Context, cfg config.Config) (*llm.Gateway, error) {
	key := strings.TrimSpace(cfg.APIKey())
	if key == "" {
		telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": cfg.LLMProvider})
		return nil, nil
	}

	var provider llm.Provider
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		client, err := openai.NewClient(key, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		provider = client
	default:
		client, err := gemini.NewClient(ctx, key)
		if err != nil {
			return nil, err
		}
		provider = client
	}
	return llm.NewGateway(provider, cfg.GatewayTimeout, key), nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.Repo = &documents.PGRepo{DB: app.DB}
	} else {
		app.Repo = documents.NewMemoryRepo()
	}

	app.Pipeline = &pipeline.Pipeline{
		Extractors:         app.Extractors,
		Gateway:            app.Gateway,
		Repo:               app.Repo,
		Model:              app.Config.LLMModel,
		PromptMaxChars:     app.Config.PromptMaxChars,
		StoredTextMaxChars: app.Config.StoredTextMaxChars,
	}
	app.DocumentsService = &documents.Service{Repo: app.Repo, HistoryLimit: app.Config.HistoryLimit}
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.UploadHandler = pipeline.NewHandler(app.Pipeline, app.Config.MaxUploadBytes)

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.Health = health.NewService(app.Extractors, app.Gateway, pinger)
}
