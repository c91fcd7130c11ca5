package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	RequestTimeout time.Duration

	ReviewsFixture         string
	ReviewSource           string // fixture|mysql
	LegacyMixedPlaceholder bool

	CacheBackend string // memory|redis|mysql
	CacheTTL     time.Duration
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string

	HFBaseURL        string
	HFModel          string
	HFKey            string
	HFRPS            int
	HFTimeout        time.Duration
	HFMaxAttempts    int
	HFMaxWait        time.Duration
	HFRateLimitDelay time.Duration
	HFLoadingDelay   time.Duration

	ClassifyConcurrency int
	Workers             int
}

func Load() Config {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,

		ReviewsFixture:         env("REVIEWS_FIXTURE", "public/reviews.json"),
		ReviewSource:           strings.ToLower(env("REVIEW_SOURCE", "fixture")),
		LegacyMixedPlaceholder: boolEnv("LEGACY_MIXED_PLACEHOLDER", true),

		CacheBackend: strings.ToLower(env("CACHE_BACKEND", "memory")),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 0)) * time.Second,
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),

		HFBaseURL:        env("HF_BASE_URL", "https://api-inference.huggingface.co"),
		HFModel:          env("HF_MODEL", "distilbert-base-uncased-finetuned-sst-2-english"),
		HFKey:            env("HF_API_KEY", ""),
		HFRPS:            atoi("HF_RPS", 5),
		HFTimeout:        time.Duration(atoi("HF_TIMEOUT_SECONDS", 20)) * time.Second,
		HFMaxAttempts:    atoi("HF_MAX_ATTEMPTS", 5),
		HFMaxWait:        time.Duration(atoi("HF_MAX_WAIT_SECONDS", 30)) * time.Second,
		HFRateLimitDelay: time.Duration(atoi("HF_RATE_LIMIT_DELAY_MS", 2000)) * time.Millisecond,
		HFLoadingDelay:   time.Duration(atoi("HF_LOADING_DELAY_SECONDS", 10)) * time.Second,

		ClassifyConcurrency: atoi("CLASSIFY_CONCURRENCY", 0),
		Workers:             atoi("INGEST_WORKERS", 8),
	}
	if c.HFKey == "" {
		log.Warn().Msg("HF_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func boolEnv(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
