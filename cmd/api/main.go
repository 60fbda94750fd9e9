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

	"github.com/timmy/docclass/internal/api"
	"github.com/timmy/docclass/internal/api/handler"
	"github.com/timmy/docclass/internal/classifier"
	"github.com/timmy/docclass/internal/config"
	"github.com/timmy/docclass/internal/logger"
	"github.com/timmy/docclass/internal/repository"
	"github.com/timmy/docclass/internal/service"
)

func main() {
	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	cls, err := classifier.Load(cfg.Classify.RulesFile)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load classification rules")
	}

	idx, closeIndex, err := repository.NewDocumentIndex(&cfg.Index, repository.FacetLimits{
		Category:    cfg.Classify.CategoryFacetCount,
		AccessLevel: cfg.Classify.AccessFacetCount,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize index")
	}
	defer closeIndex()

	syncService := service.NewSyncService(idx, cls, appLogger, &service.SyncConfig{
		BatchSize:  cfg.Classify.BatchSize,
		SampleSize: cfg.Classify.SampleSize,
	})
	statsService := service.NewStatsService(idx, appLogger)

	deps := &api.RouterDeps{
		Classifier: syncService,
		Stats:      statsService,
		Logger:     appLogger,
		Backend:    cfg.Index.Backend,
		Mode:       cfg.Server.Mode,
		CORS:       cfg.Server.CORS,
	}

	// Run history is only served when the ledger is enabled
	var runs handler.RunStore
	if cfg.Database.Enabled {
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize database")
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		runs = repository.NewRunRepository(db)
	}
	deps.Runs = runs

	router := api.SetupRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":               cfg.Server.Port,
			"mode":               cfg.Server.Mode,
			logger.FieldBackend:  cfg.Index.Backend,
			"rules":              cls.Engine().Len(),
			"run_ledger_enabled": cfg.Database.Enabled,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
