package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultDatasetURL = "https://linked.aub.edu.lb/pkgcube/data/551015b5649368dd2612f795c2a9c2d8_20240902_115953.csv"

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	DatasetURL  string
	DatasetTTL  time.Duration // 0 keeps the in-process copy until invalidated
	RedisAddr   string        // empty disables the shared tier
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration
	FetchRPS    int
	Workers     int
	RefreshCron string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		DatasetURL:  env("DATASET_URL", DefaultDatasetURL),
		DatasetTTL:  time.Duration(atoi("DATASET_TTL_SECONDS", 0)) * time.Second,
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		FetchRPS:    atoi("FETCH_RPS", 2),
		Workers:     atoi("RENDER_WORKERS", 4),
		RefreshCron: os.Getenv("REFRESH_CRON"),
	}
	if c.FetchRPS < 1 {
		c.FetchRPS = 1
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.DatasetTTL < 0 {
		c.DatasetTTL = 0
	}
	if c.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR is empty, shared dataset cache disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
