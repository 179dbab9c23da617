package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/ecomagent-backend/api"
	"github.com/angelmondragon/ecomagent-backend/api/routes"
	"github.com/angelmondragon/ecomagent-backend/internal/ask"
	"github.com/angelmondragon/ecomagent-backend/internal/ingest"
	"github.com/angelmondragon/ecomagent-backend/internal/query"
	"github.com/angelmondragon/ecomagent-backend/internal/sales"
	"github.com/angelmondragon/ecomagent-backend/pkg/config"
	"github.com/angelmondragon/ecomagent-backend/pkg/db"
	"github.com/angelmondragon/ecomagent-backend/pkg/gemini"
	"github.com/angelmondragon/ecomagent-backend/pkg/instance"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/metrics"
	"github.com/angelmondragon/ecomagent-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	askMetrics := metrics.NewAskMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	ingestService, err := ingest.NewService(dbClient, cfg.Ingest, logg, askMetrics)
	if err != nil {
		return err
	}
	if _, err := ingestService.Initialize(ctx); err != nil {
		return err
	}

	var (
		redisClient *redis.Client
		cache       ask.TranslationCache
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		cache = ask.NewRedisCache(redisClient, cfg.Ask.CacheTTL, logg)
	} else {
		logg.Warn(ctx, "redis not configured; translation cache and rate limiting disabled")
	}

	geminiClient, err := gemini.New(ctx, cfg.GenAI, logg)
	if err != nil {
		return err
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return err
	}
	executor := query.NewExecutor(sqlDB, query.Options{
		ReadOnly: cfg.Ask.ReadOnly,
		MaxRows:  cfg.Ask.MaxRows,
	}, logg, askMetrics)

	askService := ask.NewService(executor, geminiClient, cache, ask.Options{
		MaxQuestionLen: cfg.Ask.MaxQuestionLen,
		Dialect:        dbClient.Dialect(),
	}, logg, askMetrics)

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		sales.NewRepository(dbClient.DB()),
		askService,
		registry,
		httpMetrics,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := api.NewServer(cfg, addr, handler)

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
