package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"review_sentiment/internal/adapters/fixture"
	server "review_sentiment/internal/adapters/http_server"
	"review_sentiment/internal/adapters/huggingface"
	"review_sentiment/internal/adapters/memory"
	"review_sentiment/internal/adapters/observability"
	redisad "review_sentiment/internal/adapters/redis"
	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
	"review_sentiment/internal/shared"
	mysqlrepo "review_sentiment/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db is only opened when a component needs it
	var repo *mysqlrepo.Repo
	if cfg.ReviewSource == "mysql" || cfg.CacheBackend == "mysql" {
		repo = mysqlrepo.New(openDB(cfg.MySQLDSN))
	}

	var src domain.ReviewSource
	switch cfg.ReviewSource {
	case "mysql":
		src = repo
	default:
		fx, err := fixture.Load(cfg.ReviewsFixture, cfg.LegacyMixedPlaceholder)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ReviewsFixture).Msg("load reviews fixture failed")
		}
		log.Info().Int("reviews", len(fx.All())).Str("path", cfg.ReviewsFixture).Msg("fixture loaded")
		src = fx
	}

	var cache domain.SentimentCache = memory.New()
	switch cfg.CacheBackend {
	case "redis":
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; lookups will fall through to the classifier")
		}
		cancel()
		defer rc.Close()
		cache = app.NewTieredCache(cache, rc)
	case "mysql":
		cache = app.NewTieredCache(cache, repo)
	}

	classifier, err := huggingface.New(huggingface.Options{
		BaseURL: cfg.HFBaseURL,
		Model:   cfg.HFModel,
		Key:     cfg.HFKey,
		RPS:     cfg.HFRPS,
		Timeout: cfg.HFTimeout,
		Policy: huggingface.Policy{
			MaxAttempts:    cfg.HFMaxAttempts,
			MaxWait:        cfg.HFMaxWait,
			RateLimitDelay: cfg.HFRateLimitDelay,
			LoadingDelay:   cfg.HFLoadingDelay,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize classifier client")
	}

	resolver := app.NewSentimentResolver(classifier, cache)
	q := app.NewQueryService(src, resolver, cfg.ClassifyConcurrency)

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("source", cfg.ReviewSource).
		Str("cache", cfg.CacheBackend).
		Str("model", cfg.HFModel).
		Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func openDB(dsn string) *sql.DB {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return db
}
