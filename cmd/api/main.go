package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/api"
	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/logging"
	"example.com/exercisetracker/internal/persistence"
	httptransport "example.com/exercisetracker/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("exercise-tracker stopped")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.WithError(err).Warn("failed to close store")
		}
	}()

	service := domain.NewService(store.Repository, domain.WithLogger(logger))
	handler := api.NewHandler(service, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.ServerConfig{Address: cfg.HTTPAddress}, router)
	return httptransport.Serve(ctx, server, cfg.ShutdownTimeout, logger)
}
