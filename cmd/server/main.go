// Command server runs the booking orchestration API: a thin, cache-fronted
// layer between the practice website and the upstream scheduling provider.
//
// @title       Booking Orchestration API
// @version     1.0
// @description Availability and booking orchestration layer fronting the upstream scheduling provider.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/radiancemd/go-booking-backend/internal/cache"
	"github.com/radiancemd/go-booking-backend/internal/config"
	httpapi "github.com/radiancemd/go-booking-backend/internal/http"
	"github.com/radiancemd/go-booking-backend/internal/observability"
	"github.com/radiancemd/go-booking-backend/internal/repo"
	"github.com/radiancemd/go-booking-backend/internal/retry"
	"github.com/radiancemd/go-booking-backend/internal/services"
	"github.com/radiancemd/go-booking-backend/internal/upstream"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// receiptPurgeInterval controls how often expired idempotency receipts are
// swept from the database.
const receiptPurgeInterval = time.Hour

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Sweep expired idempotency receipts in the background.
	receipts := repo.NewReceipts(db)
	go func() {
		t := time.NewTicker(receiptPurgeInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n, err := receipts.PurgeExpired(ctx, time.Now().UTC()); err != nil {
					log.Warn().Err(err).Msg("receipt purge failed")
				} else if n > 0 {
					log.Debug().Int64("purged", n).Msg("expired receipts purged")
				}
			}
		}
	}()

	store := cache.New()
	store.StartJanitor(ctx, cfg.Cache.SweepInterval)

	up := upstream.New(upstream.Options{
		BaseURL:    cfg.Upstream.BaseURL,
		BusinessID: cfg.Upstream.BusinessID,
		APIKey:     cfg.Upstream.APIKey,
		Timeout:    cfg.Upstream.Timeout,
		RPS:        cfg.Upstream.RPS,
		Burst:      cfg.Upstream.Burst,
	})

	svc := services.NewBookingService(up, store)
	svc.CatalogTTL = cfg.Cache.CatalogTTL
	svc.AvailabilityTTL = cfg.Cache.AvailabilityTTL
	svc.BookingWindowMonths = cfg.BookingWindowMonths
	svc.Retry = retry.Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
		IsPermanent:     upstream.IsPermanent,
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// setupLogger configures the global zerolog logger from config.
func setupLogger(cfg config.Config) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
