package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zoonica-gateway/internal/adapters/storage/postgres"
	"zoonica-gateway/internal/adapters/zoonica"
	"zoonica-gateway/internal/config"
	"zoonica-gateway/internal/platform/httpclient"
	"zoonica-gateway/internal/platform/logger"
	"zoonica-gateway/internal/platform/metrics"
	"zoonica-gateway/internal/router"
)

const sweepInterval = 15 * time.Minute

// @title Zoónica Gateway API
// @version 1.0
// @description Historial médico, mascotas y ubicación en vivo sobre el backend Zoónica.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid config", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	err = run(cfg, log)
	if err != nil {
		log.Error("server stopped", map[string]any{"error": err})
	}
	if s, ok := log.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("zoonica_gateway")

	hc, err := httpclient.NewWithBaseURL(cfg.APIBaseURL, cfg.APITimeout,
		httpclient.WithRetries(cfg.APIRetries, httpclient.DefaultRetryWait),
		httpclient.WithUserAgent(cfg.AppName),
	)
	if err != nil {
		return err
	}

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("sessions stored in postgres", nil)
	}

	rt, err := router.NewRouter(ctx, router.Options{
		Upstream:     zoonica.New(hc, m),
		Logger:       log,
		Metrics:      m,
		DB:           db,
		SessionTTL:   cfg.SessionTTL,
		DebugAuth:    cfg.DebugAuth,
		WatchOptions: cfg.Tracking.WatchOptions(),
		PhotoBaseURL: cfg.APIBaseURL,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	go rt.Sessions.RunSweeper(ctx, sweepInterval)
	go rt.Tracking.RunSweeper(ctx, time.Minute, cfg.Tracking.IdleTTL)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      rt,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr(), "upstream": cfg.APIBaseURL, "debug_auth": cfg.DebugAuth})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
