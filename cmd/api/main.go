package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tourism_dashboard/internal/adapters/chartpng"
	"tourism_dashboard/internal/adapters/csvsource"
	server "tourism_dashboard/internal/adapters/http_server"
	"tourism_dashboard/internal/adapters/observability"
	redisad "tourism_dashboard/internal/adapters/redis"
	"tourism_dashboard/internal/adapters/scheduler"
	"tourism_dashboard/internal/app"
	"tourism_dashboard/internal/domain"
	"tourism_dashboard/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// deps
	src, err := csvsource.New(cfg.DatasetURL, cfg.FetchRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize dataset source")
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			// the shared tier is best effort; Load falls back to the source
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
		}
		cache = rc
	}

	data := app.NewDatasetService(src, cache, app.LoaderConfig{
		URL:      src.URL(),
		MemoTTL:  cfg.DatasetTTL,
		CacheTTL: cfg.CacheTTL,
	})
	dash := app.NewDashboard(data)

	if cfg.RefreshCron != "" {
		c, err := scheduler.Refresh(cfg.RefreshCron, func(ctx context.Context) error {
			_, err := data.Refresh(ctx)
			return err
		}, time.Minute)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to schedule dataset refresh")
		}
		c.Start()
		defer c.Stop()
		log.Info().Str("schedule", cfg.RefreshCron).Msg("dataset refresh scheduled")
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		D:      dash,
		Data:   data,
		Charts: chartpng.New(1000, 600),
		Render: semaphore.NewWeighted(int64(cfg.Workers)),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("dataset", cfg.DatasetURL).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
