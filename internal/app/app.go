package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	rediscache "github.com/viorelmirea/provocations-backend/internal/clients/redis"
	"github.com/viorelmirea/provocations-backend/internal/content"
	"github.com/viorelmirea/provocations-backend/internal/db"
	"github.com/viorelmirea/provocations-backend/internal/handlers"
	"github.com/viorelmirea/provocations-backend/internal/middleware"
	"github.com/viorelmirea/provocations-backend/internal/observability"
	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
	"github.com/viorelmirea/provocations-backend/internal/repos"
	"github.com/viorelmirea/provocations-backend/internal/server"
	"github.com/viorelmirea/provocations-backend/internal/services"
)

const serviceName = "provocations-backend"

type App struct {
	Log    *logger.Logger
	DB     *gorm.DB
	Router *gin.Engine
	Cfg    Config

	limiter      *services.RequestLimiter
	cache        rediscache.CompletionsCache
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: os.Getenv("DEPLOY_ENV"),
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	index := content.NewIndex(log)
	if err := index.Load(cfg.ContentDir); err != nil {
		log.Sync()
		return nil, fmt.Errorf("load content: %w", err)
	}

	completionRepo := repos.NewCompletionRepo(theDB, log)
	callLogRepo := repos.NewRegenCallLogRepo(theDB, log)

	cache, err := rediscache.NewCompletionsCache(log)
	if err != nil {
		log.Warn("Completions cache disabled", "error", err)
		cache = nil
	}

	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init openai client: %w", err)
	}

	limiter := services.NewRequestLimiter(cfg.RequestLimit, cfg.RequestWindow, log)

	regenService := services.NewRegenerationService(
		log,
		services.RegenerationConfig{
			Recycle:         cfg.Recycle,
			PerConcernLimit: cfg.PerConcernLimit,
		},
		completionRepo,
		callLogRepo,
		cache,
		limiter,
		openaiClient,
	)

	regenHandler := handlers.NewRegenerateHandler(log, index, regenService)
	requestLog := middleware.NewRequestLogMiddleware(log)

	router := server.NewRouter(server.RouterConfig{
		ServiceName:          serviceName,
		RegenerateHandler:    regenHandler,
		RequestLogMiddleware: requestLog,
		AllowOrigins:         cfg.AllowOrigins,
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		limiter:      limiter,
		cache:        cache,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
