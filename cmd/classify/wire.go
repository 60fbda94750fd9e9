package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/docclass/internal/classifier"
	"github.com/timmy/docclass/internal/config"
	"github.com/timmy/docclass/internal/logger"
	"github.com/timmy/docclass/internal/repository"
	"github.com/timmy/docclass/internal/service"
	"github.com/timmy/docclass/internal/storage"
)

// wiredPipeline runs against the configured index backend.
type wiredPipeline struct {
	*service.SyncService
	*service.StatsService
	closers []func() error
}

func (p *wiredPipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildPipeline loads configuration and wires the index, the optional run
// ledger, and the optional report archive.
func buildPipeline(ctx context.Context, opts *options, log *logger.Logger) (pipeline, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.batchSize > 0 {
		cfg.Classify.BatchSize = opts.batchSize
	}
	if opts.rulesPath != "" {
		cfg.Classify.RulesFile = opts.rulesPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cls, err := classifier.Load(cfg.Classify.RulesFile)
	if err != nil {
		return nil, err
	}

	idx, closeIndex, err := repository.NewDocumentIndex(&cfg.Index, repository.FacetLimits{
		Category:    cfg.Classify.CategoryFacetCount,
		AccessLevel: cfg.Classify.AccessFacetCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize index: %w", err)
	}
	p := &wiredPipeline{closers: []func() error{closeIndex}}

	syncService := service.NewSyncService(idx, cls, log, &service.SyncConfig{
		BatchSize:  cfg.Classify.BatchSize,
		SampleSize: cfg.Classify.SampleSize,
	})

	if cfg.Database.Enabled && !opts.stats {
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			p.closers = append(p.closers, sqlDB.Close)
		}
		syncService.WithRecorder(repository.NewRunRepository(db))
	}

	if cfg.Archive.Enabled && !opts.stats {
		store, err := storage.NewStorage(&cfg.Archive)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to initialize archive storage: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.WithError(err).Warn("Archive bucket not ensured, uploads may fail")
		}
		syncService.WithArchiver(service.NewReportArchive(store, cfg.Archive.Prefix))
	}

	log.WithFields(logger.Fields{
		logger.FieldBackend: cfg.Index.Backend,
		"rules":             cls.Engine().Len(),
		"ledger":            cfg.Database.Enabled,
		"archive":           cfg.Archive.Enabled,
	}).Debug("Pipeline initialized")

	p.SyncService = syncService
	p.StatsService = service.NewStatsService(idx, log)
	return p, nil
}
