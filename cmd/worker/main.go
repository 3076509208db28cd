package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"player_rotation/ingestion/internal/app"
	"player_rotation/ingestion/internal/config"
	"player_rotation/ingestion/internal/logging"
	"player_rotation/ingestion/internal/metrics"
	"player_rotation/ingestion/internal/repository"
	"player_rotation/ingestion/internal/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.MustLoad()
	logging.Setup(cfg.AppEnv, cfg.LogLevel)

	log.Info().Msg("Starting player rotation worker")
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("schedule", cfg.RotationCron).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the store once up front so a bad location fails fast.
	// The handle stays open for health checks; invocations open their own.
	db, err := repository.Open(ctx, cfg.DatabaseName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close storage")
		}
	}()
	log.Info().Msg("Storage initialized")

	rotator, cleanup, err := app.NewRotator(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rotator")
	}
	defer cleanup()

	sched := scheduler.NewScheduler(rotator, cfg.RotationCron)

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.EnableMetrics {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler:           newRouter(db),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			log.Info().Int("port", cfg.MetricsPort).Msg("Starting metrics server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	// Update system uptime metric
	startTime := time.Now()
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-gCtx.Done():
				return nil
			}
		}
	})

	if err := sched.Start(gCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	if cfg.RunOnStart {
		log.Info().Msg("Running initial rotation...")
		sched.RunOnce(gCtx)
	}

	// Keep running until context is cancelled
	<-gCtx.Done()
	log.Info().Msg("Received shutdown signal, gracefully shutting down...")

	sched.Stop()

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker stopped with error")
	}

	log.Info().Msg("Worker shutdown complete")
}

// newRouter builds the metrics and health HTTP routes
func newRouter(db *repository.Database) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.Handler())

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := `{"status":"healthy"}`
		if err := db.Health(r.Context()); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			status = http.StatusServiceUnavailable
			body = `{"status":"unhealthy"}`
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})

	return router
}
