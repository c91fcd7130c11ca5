package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"review_sentiment/internal/adapters/fixture"
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
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("fixture", cfg.ReviewsFixture).
		Str("model", cfg.HFModel).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	fx, err := fixture.Load(cfg.ReviewsFixture, cfg.LegacyMixedPlaceholder)
	if err != nil {
		log.Fatal().Err(err).Msg("load reviews fixture failed")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := huggingface.New(huggingface.Options{
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

	// results always land in the MySQL cache; redis is warmed too when selected
	var durable domain.SentimentCache = repo
	if cfg.CacheBackend == "redis" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL)
		defer rc.Close()
		durable = app.NewTieredCache(rc, repo)
	}
	resolver := app.NewSentimentResolver(client, app.NewTieredCache(memory.New(), durable))

	start := time.Now()
	ing := app.NewIngestionService(resolver, repo, cfg.Workers)
	rep, err := ing.Ingest(ctx, fx.All())
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}

	log.Info().
		Int("total", rep.Total).
		Int("classified", rep.Classified).
		Int("fallbacks", rep.Fallbacks).
		Dur("took", time.Since(start)).
		Msg("ingestion completed")
}
