package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/db"
	"github.com/yungbote/agencycrm-backend/internal/http"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func newLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// New loads configuration, connects and migrates the database and wires the API.
func New(ctx context.Context) (*App, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	dbs, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log)

	a := Assemble(log, cfg, dbs.DB(), metrics)
	a.dbService = dbs
	a.otelShutdown = otelShutdown
	return a, nil
}

// Assemble wires repos, services, handlers and the router over an open database.
func Assemble(log *logger.Logger, cfg Config, theDB *gorm.DB, metrics *observability.Metrics) *App {
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, metrics)
	handlerset := wireHandlers(theDB, log, serviceset)
	middleware := wireMiddleware(log, cfg, serviceset)
	router := wireRouter(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Metrics:  metrics,
	}
}

// Start launches background upkeep: pool metrics and expired session cleanup.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	go a.purgeSessions(ctx, a.Cfg.SessionPurgeInterval)
}

func (a *App) purgeSessions(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Services.Auth.PurgeExpiredSessions(ctx); err != nil {
				a.Log.Warn("Session purge failed", "error", err)
			}
		}
	}
}

// Run serves the API until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return http.NewServer(":"+a.Cfg.Port, a.Router, a.Log).Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// Migrate applies the schema and exits without serving.
func Migrate() error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()
	cfg, err := LoadConfig(log)
	if err != nil {
		return err
	}
	dbs, err := db.Open(cfg.DB, log)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() { _ = dbs.Close() }()
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	log.Info("Migrations applied", "driver", dbs.Driver())
	return nil
}
