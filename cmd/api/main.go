package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"curriculo/internal/aiimport"
	"curriculo/internal/api"
	"curriculo/internal/auth"
	"curriculo/internal/config"
	"curriculo/internal/database"
	"curriculo/internal/export"
	"curriculo/internal/normalize"
	"curriculo/internal/pdf"
	"curriculo/internal/render"
	"curriculo/internal/storage"
	"curriculo/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	logger.Info("database ready",
		slog.String("host", cfg.Database.Host),
		slog.Int("port", cfg.Database.Port),
		slog.String("db", cfg.Database.Name),
	)

	authService, ephemeral, err := auth.NewFromConfig(cfg.Auth)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}
	if ephemeral {
		logger.Warn("JWT keys not configured, using an ephemeral key pair; tokens will not survive a restart")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer asynqClient.Close()

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}

	engine := pdf.NewEngine(pdf.Options{
		BrowserBin:    cfg.PDF.BrowserBin,
		Timeout:       cfg.PDF.Timeout,
		MaxConcurrent: cfg.PDF.MaxConcurrent,
		Logger:        logger,
	})

	if err := api.RegisterValidators(); err != nil {
		log.Fatalf("register validators: %v", err)
	}

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, api.Deps{
		DB:          db,
		Store:       store.New(db),
		AuthService: authService,
		Redis:       redisClient,
		Logger:      logger,
		Exporter:    export.New(engine),
		Enqueuer:    asynqClient,
		Files:       storageClient,
		Importer:    newImporter(cfg, logger),
		Registry:    render.DefaultRegistry(),

		AllowedOrigins: cfg.API.AllowedOrigins,
		Auth: api.AuthOptions{
			LoginRateLimitPerHour: cfg.Auth.LoginRateLimitPerHour,
			LoginLockThreshold:    cfg.Auth.LoginLockThreshold,
			LoginLockTTL:          cfg.Auth.LoginLockTTL,
			CookieDomain:          cfg.Auth.CookieDomain,
		},
		MaxResumes:      cfg.Limits.MaxResumes,
		MaxRetry:        cfg.Worker.MaxRetry,
		LinkTTL:         cfg.MinIO.LinkTTL,
		DefaultProvider: cfg.AI.DefaultProvider,
		ImportsPerHour:  cfg.Limits.ImportsPerHour,
		MaxUploadBytes:  cfg.Limits.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", slog.Any("error", err))
	}
	logger.Info("api stopped")
}

// newImporter 只注册配置了 API Key 的提供方；一个都没有时返回 nil，导入端点回 503。
func newImporter(cfg *config.Config, logger *slog.Logger) api.ResumeImporter {
	var providers []aiimport.Provider
	if cfg.AI.GeminiAPIKey != "" {
		providers = append(providers, aiimport.NewGemini(cfg.AI.GeminiAPIKey, cfg.AI.GeminiBaseURL, nil))
	}
	if cfg.AI.OpenAIAPIKey != "" {
		providers = append(providers, aiimport.NewOpenAI(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIBaseURL, nil))
	}
	if len(providers) == 0 {
		logger.Warn("no AI provider key configured, template import disabled")
		return nil
	}

	var scanner aiimport.Scanner
	if cfg.ClamdAddr != "" {
		scanner = aiimport.NewClamdScanner(cfg.ClamdAddr)
	}

	return aiimport.NewImporter(aiimport.Options{
		Providers: providers,
		DefaultModels: map[string]string{
			aiimport.ProviderGemini:  cfg.AI.GeminiModel,
			aiimport.ProviderChatGPT: cfg.AI.OpenAIModel,
		},
		Timeout:      cfg.AI.Timeout,
		MaxFileBytes: cfg.Limits.MaxUploadBytes,
		Scanner:      scanner,
		Normalizer:   normalize.New(normalize.DefaultRules()),
		Logger:       logger,
	})
}
