package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/docclass/internal/config"
	"github.com/timmy/docclass/internal/domain"
	"github.com/timmy/docclass/internal/logger"
	"github.com/timmy/docclass/internal/metrics"
)

var (
	// ErrTransport marks a call whose envelope did not succeed: a connection
	// error, a timeout, or a non-success status.
	ErrTransport = errors.New("index transport failure")

	// ErrItemRejected marks a write whose envelope succeeded but whose
	// per-document acknowledgement reported failure.
	ErrItemRejected = errors.New("index rejected document")
)

// SearchQuery selects one page of documents.
type SearchQuery struct {
	Skip             int
	Top              int
	UnclassifiedOnly bool
}

// SearchPage is one page of search results plus the total match count.
type SearchPage struct {
	Documents []domain.Document
	Total     int
}

// BatchResult is the per-document outcome of a batch write.
// Succeeded+Failed always equals the number of submitted updates.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// AllFailed returns the result of a batch of n that was not written at all.
func AllFailed(n int) BatchResult {
	return BatchResult{Failed: n}
}

// DocumentIndex is the searchable document store the pipeline reads from and
// writes classifications back to. Writes use merge semantics: fields absent
// from an update keep their stored value.
type DocumentIndex interface {
	Search(ctx context.Context, q SearchQuery) (*SearchPage, error)
	UpdateOne(ctx context.Context, u domain.DocumentUpdate) error
	UpdateBatch(ctx context.Context, updates []domain.DocumentUpdate) (BatchResult, error)
	FacetStats(ctx context.Context) (*domain.IndexStats, error)
}

// FacetLimits bounds how many distinct values each facet returns.
type FacetLimits struct {
	Category    int
	AccessLevel int
}

// NewDocumentIndex builds the configured index backend wrapped with call
// metrics.
// Parameters:
//   - cfg: index configuration selecting the backend.
//   - facets: facet value limits used by FacetStats.
// Returns:
//   - DocumentIndex: ready-to-use index client.
//   - func() error: releases backend resources.
//   - error: non-nil if the backend cannot be created.
func NewDocumentIndex(cfg *config.IndexConfig, facets FacetLimits) (DocumentIndex, func() error, error) {
	switch cfg.Backend {
	case config.BackendAzure, "":
		idx := NewAzureSearchIndex(&AzureSearchConfig{
			Endpoint:   cfg.Azure.Endpoint,
			APIKey:     cfg.Azure.APIKey,
			IndexName:  cfg.Azure.IndexName,
			APIVersion: cfg.Azure.APIVersion,
			Timeout:    cfg.Timeout,
			Facets:     facets,
		})
		return Instrument(config.BackendAzure, idx), func() error { return nil }, nil
	case config.BackendQdrant:
		idx, err := NewQdrantIndex(&QdrantConnectionConfig{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			Collection: cfg.Qdrant.Collection,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
			Timeout:    cfg.Timeout,
			Facets:     facets,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := idx.EnsurePayloadIndexes(context.Background()); err != nil {
			logger.With(logger.Fields{logger.FieldBackend: config.BackendQdrant}).
				Warn(context.Background(), "Payload indexes not ensured: %v", err)
		}
		return Instrument(config.BackendQdrant, idx), idx.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown index backend %q", cfg.Backend)
	}
}

// instrumentedIndex records call duration and result for every operation.
type instrumentedIndex struct {
	backend string
	next    DocumentIndex
}

// Instrument wraps idx so each call is observed in IndexCallDuration.
func Instrument(backend string, idx DocumentIndex) DocumentIndex {
	return &instrumentedIndex{backend: backend, next: idx}
}

func (i *instrumentedIndex) observe(ctx context.Context, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	elapsed := time.Since(start)
	metrics.IndexCallDuration.WithLabelValues(i.backend, op, result).Observe(elapsed.Seconds())
	logger.With(logger.Fields{
		logger.FieldBackend: i.backend,
		"operation":         op,
	}).WithDuration(elapsed.Milliseconds()).WithStatus(result).Debug(ctx, "Index call finished")
}

func (i *instrumentedIndex) Search(ctx context.Context, q SearchQuery) (*SearchPage, error) {
	start := time.Now()
	page, err := i.next.Search(ctx, q)
	i.observe(ctx, "search", start, err)
	return page, err
}

func (i *instrumentedIndex) UpdateOne(ctx context.Context, u domain.DocumentUpdate) error {
	start := time.Now()
	err := i.next.UpdateOne(ctx, u)
	i.observe(ctx, "update_one", start, err)
	return err
}

func (i *instrumentedIndex) UpdateBatch(ctx context.Context, updates []domain.DocumentUpdate) (BatchResult, error) {
	start := time.Now()
	res, err := i.next.UpdateBatch(ctx, updates)
	i.observe(ctx, "update_batch", start, err)
	return res, err
}

func (i *instrumentedIndex) FacetStats(ctx context.Context) (*domain.IndexStats, error) {
	start := time.Now()
	stats, err := i.next.FacetStats(ctx)
	i.observe(ctx, "facet_stats", start, err)
	return stats, err
}
