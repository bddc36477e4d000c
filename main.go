package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"guesthouse-frontend/config"
	"guesthouse-frontend/controllers"
	"guesthouse-frontend/routes"
	"guesthouse-frontend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}

	logger := config.NewLogger(cfg.Environment)
	defer logger.Sync()

	// Credential store: Redis when configured, in-memory otherwise.
	var creds services.CredentialStore
	if cfg.RedisAddr != "" {
		rdb, err := config.ConnectRedis(context.Background(), cfg)
		if err != nil {
			logger.Fatal("redis connect failed", zap.Error(err))
		}
		creds = services.NewRedisCredentialStore(rdb)
		logger.Info("✅ Redis credential store connected", zap.String("addr", cfg.RedisAddr))
	} else {
		creds = services.NewMemoryCredentialStore()
		logger.Warn("⚠️  REDIS_ADDR not set; credentials held in memory only")
	}

	httpClient := services.DefaultHTTPClient()
	publicClient := services.NewPublicClient(cfg.BackendAPIURL, httpClient, logger)
	resolver := services.NewAvailabilityResolver(publicClient, logger)
	hub := services.NewHub(cfg.BackendAPIURL, httpClient, creds, resolver, logger, cfg.SettleDelay)

	authController := controllers.NewAuthController(hub, logger)
	roomController := controllers.NewRoomController(resolver, logger)
	bookingController := controllers.NewBookingController(hub, logger)

	router := routes.SetupRouter(authController, roomController, bookingController, publicClient, logger)

	addr := ":" + cfg.Port

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
		// useful timeouts
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      40 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("🚀 Server starting", zap.String("addr", addr), zap.String("backend", cfg.BackendAPIURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("✅ Server stopped gracefully")
}
