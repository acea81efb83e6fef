package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"tourism_dashboard/internal/adapters/csvsource"
	"tourism_dashboard/internal/adapters/observability"
	redisad "tourism_dashboard/internal/adapters/redis"
	"tourism_dashboard/internal/app"
	"tourism_dashboard/internal/shared"
)

// prefetch fetches the dataset once and writes it to the shared redis tier,
// so API replicas start warm.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required for prefetch")
	}
	log.Info().
		Str("dataset", cfg.DatasetURL).
		Str("redis", cfg.RedisAddr).
		Dur("ttl", cfg.CacheTTL).
		Msg("prefetch starting")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	src, err := csvsource.New(cfg.DatasetURL, cfg.FetchRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize dataset source")
	}
	data := app.NewDatasetService(src, cache, app.LoaderConfig{URL: src.URL(), CacheTTL: cfg.CacheTTL})

	// Refresh drops whatever is cached so the fetch always reaches the source
	ds, err := data.Refresh(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("prefetch failed")
	}
	log.Info().
		Str("key", data.Key()).
		Int("rows", ds.Len()).
		Int("towns", len(ds.Towns())).
		Str("sha1", ds.Meta.SHA1).
		Msg("prefetch completed")
}
