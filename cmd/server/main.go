package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/husaynirfan1/lukisan-server/internal/api"
	"github.com/husaynirfan1/lukisan-server/internal/blob"
	"github.com/husaynirfan1/lukisan-server/internal/config"
	"github.com/husaynirfan1/lukisan-server/internal/gueststore"
	"github.com/husaynirfan1/lukisan-server/internal/repository/postgres"
	"github.com/husaynirfan1/lukisan-server/internal/service"
	"github.com/husaynirfan1/lukisan-server/internal/uploader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	repos := postgres.NewRepositories(db)

	// Initialize guest store
	store, err := gueststore.Open(logger, cfg.GuestStorePath, cfg.GuestAssetTTL)
	if err != nil {
		logger.Fatal("failed to open guest store", zap.Error(err))
	}
	defer store.Close()

	// Initialize blob store and uploader
	blobs, err := blob.NewStore(cfg.BlobDir)
	if err != nil {
		logger.Fatal("failed to open blob store", zap.Error(err))
	}
	up := uploader.New(blobs, repos.Logo, logger)

	// Initialize services
	services := service.NewServices(repos, store, up, cfg, logger)

	// Periodic cleanup of expired guest assets and stale refresh sessions
	sweeper := cron.New()
	_, err = sweeper.AddFunc("@every "+cfg.PurgeInterval.String(), func() {
		store.PurgeExpired()
		if err := repos.Session.DeleteExpired(context.Background()); err != nil {
			logger.Warn("session sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("failed to schedule purge job", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize router
	router := api.NewRouter(services, store, blobs, repos, cfg, logger)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
