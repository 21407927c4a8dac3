package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rps_webapp/internal/config"
	httpServer "rps_webapp/internal/http"
	"rps_webapp/internal/http/middleware"
	"rps_webapp/internal/logger"
	"rps_webapp/internal/repository"
	"rps_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		cancel()
		logger.Fatal("failed to open statistics store", "driver", cfg.StoreDriver, "error", err)
	}
	// a store we cannot migrate must never serve requests
	if err := store.Initialize(ctx); err != nil {
		cancel()
		_ = store.Close()
		logger.Fatal("failed to initialize statistics store", "driver", cfg.StoreDriver, "error", err)
	}
	cancel()
	defer store.Close()

	rdb := middleware.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	gameService := service.NewGameService(store)
	gameService.SetHistoryLimits(service.HistoryLimits{
		Default: cfg.HistoryDefaultLimit,
		Max:     cfg.HistoryMaxLimit,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	httpServer.RegisterRoutes(r, gameService, httpServer.OptionsFromConfig(cfg, version, rdb))

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.StoreDriver, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
