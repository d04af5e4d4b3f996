// Command mockapi runs an in-memory stand-in for the PC SHOP store service,
// seeded with demo products and accounts.
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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pcshop-storefront/internal/config"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/mockapi"
)

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

	api := mockapi.New(mockapi.Config{
		JWTSecret:   os.Getenv("MOCKAPI_JWT_SECRET"),
		ShippingFee: decimal.NewNullDecimal(cfg.ShippingFee),
		Logger:      log,
	})
	if err := api.Seed(); err != nil {
		log.Fatal("Failed to seed demo data", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.MockAPIPort,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Mock store service starting",
			zap.String("port", cfg.MockAPIPort),
			zap.String("customer", mockapi.DemoCustomerEmail),
			zap.String("admin", mockapi.DemoAdminEmail),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start mock service", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Mock service shutdown failed", zap.Error(err))
	}
}
