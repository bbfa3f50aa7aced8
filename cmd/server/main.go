package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tinks231/bizbooks/internal/autocomplete"
	"github.com/tinks231/bizbooks/internal/config"
	"github.com/tinks231/bizbooks/internal/infra"
	"github.com/tinks231/bizbooks/internal/middleware"
	"github.com/tinks231/bizbooks/internal/repository"
	"github.com/tinks231/bizbooks/internal/router"
	"github.com/tinks231/bizbooks/internal/service"
	"github.com/tinks231/bizbooks/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Services ─────────────────────────────────────────────────────────────
	breaker := infra.NewBreaker(infra.CacheBreakerConfig())
	itemRepo := repository.NewItemRepository(db)
	catalogSvc := service.NewCatalogService(itemRepo, rdb, breaker, cfg.CatalogCacheTTL())
	dispatcher := worker.NewDispatcher(rdb)
	defaults := service.WidgetDefaults{
		PriceField: autocomplete.PriceField(cfg.AutocompletePriceField),
		MaxResults: cfg.AutocompleteMaxResults,
	}
	itemSvc := service.NewItemService(itemRepo, catalogSvc, dispatcher, defaults)
	formSvc := service.NewFormService(catalogSvc, defaults, cfg.FormSessionTTL())

	// ── Background work ──────────────────────────────────────────────────────
	worker.StartWorkerPool(ctx, rdb, &worker.Handlers{
		CatalogRefresh: worker.NewCatalogRefreshWorker(catalogSvc),
	}, cfg.WorkerPoolSize)
	worker.StartRedrive(ctx, worker.RedriveConfig{Dispatcher: dispatcher, Breaker: breaker})
	formSvc.StartPurger(ctx, 5*time.Minute)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	limiter.StartPurger(ctx, 5*time.Minute)

	r := router.New(cfg, router.Deps{
		DB:           db,
		Redis:        rdb,
		CacheBreaker: breaker,
		Items:        itemSvc,
		Forms:        formSvc,
		RateLimiter:  limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("bizbooks autocomplete listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
