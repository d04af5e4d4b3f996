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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pcshop-storefront/internal/apiclient"
	"pcshop-storefront/internal/config"
	"pcshop-storefront/internal/events"
	"pcshop-storefront/internal/handlers"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/metrics"
	"pcshop-storefront/internal/telemetry"
)

const serviceName = "pcshop-storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer func() { _ = log.Sync() }()

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, serviceName, cfg.TracingEnabled, os.Stderr)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	reg := metrics.New()
	client := apiclient.New(cfg.APIURL,
		apiclient.WithMetrics(reg, cfg.RequestTimeout),
		apiclient.WithLogger(log),
	)

	bus, err := events.NewBus(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("Failed to connect cart event bus", zap.Error(err))
	}
	defer func() { _ = bus.Close() }()

	router := handlers.NewRouter(handlers.Deps{
		Client:  client,
		Bus:     bus,
		Config:  cfg,
		Metrics: reg,
		Logger:  log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           telemetry.Middleware(serviceName, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("api_url", cfg.APIURL),
			zap.Bool("redis_events", cfg.RedisURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Tracing shutdown failed", zap.Error(err))
	}
}
