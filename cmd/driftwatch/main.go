package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/kelpgrid/driftwatch/pkg/config"
	"github.com/kelpgrid/driftwatch/pkg/manager"
	"github.com/kelpgrid/driftwatch/pkg/observability"
)

const version = "1.0.0"

func main() {
	// Optional .env for local development; absence is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	mgr, err := manager.New(cfg, logger, metrics)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize storage manager")
	}
	defer mgr.Close()

	logrus.WithFields(logrus.Fields{
		"storage": cfg.Storage.Type,
		"version": version,
	}).Info("driftwatch starting")

	// Health and metrics endpoints on the probe port.
	health := observability.NewHealthChecker(mgr.Backend(), version)
	router := mux.NewRouter()
	router.HandleFunc("/healthz", health.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/readyz", health.Readiness).Methods(http.MethodGet)
	if metrics != nil {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	healthServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	go func() {
		logrus.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("health server failed")
		}
	}()

	// Background jobs: periodic stats warming and subscription refresh.
	scheduler := cron.New()

	if _, err := scheduler.AddFunc("*/30 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := mgr.Stats.SiteStats(ctx); err != nil {
			logrus.WithError(err).Warn("scheduled stats aggregation failed")
		}
	}); err != nil {
		logrus.WithError(err).Fatal("failed to schedule stats aggregation")
	}

	if cfg.Subscription.AutoUpdate {
		if _, err := scheduler.AddFunc(cfg.Subscription.RefreshSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := mgr.RefreshSubscription(ctx, false); err != nil {
				logrus.WithError(err).Warn("scheduled subscription refresh failed")
			}
		}); err != nil {
			logrus.WithError(err).Fatal("failed to schedule subscription refresh")
		}
		logrus.WithField("schedule", cfg.Subscription.RefreshSchedule).Info("subscription auto-update enabled")
	}

	scheduler.Start()

	// Wait for termination signal.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logrus.Info("shutting down")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("health server shutdown failed")
	}

	logrus.Info("driftwatch stopped")
}
