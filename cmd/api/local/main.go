//go:build !lambda
// +build !lambda

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyphera/cyphera-xdk/internal/config"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/internal/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Initialize logger first
	logger.InitLoggerWithConfig(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Stage:       cfg.Stage,
		EnableJSON:  cfg.IsRelease(),
		EnableColor: !cfg.IsRelease(),
	})
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = server.InitializeHandlers(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize handlers", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	server.InitializeRoutes(r, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.APIPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.APIPort), zap.String("chain", cfg.Chain.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	server.Shutdown()

	logger.Info("Server exiting")
}
