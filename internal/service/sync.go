package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/timmy/docclass/internal/classifier"
	"github.com/timmy/docclass/internal/domain"
	"github.com/timmy/docclass/internal/logger"
	"github.com/timmy/docclass/internal/metrics"
	"github.com/timmy/docclass/internal/repository"
)

const (
	defaultBatchSize  = 100
	defaultSampleSize = 10
	sampleNameLength  = 50
)

// ErrMissingDocumentID is returned when a single-document classification has no id.
var ErrMissingDocumentID = errors.New("document id is required")

// RunRecorder persists run snapshots. RunRepository satisfies it.
type RunRecorder interface {
	Create(ctx context.Context, run *domain.ClassificationRun) error
	Update(ctx context.Context, run *domain.ClassificationRun) error
}

// ReportArchiver stores the final summary of a run and returns its location.
type ReportArchiver interface {
	Archive(ctx context.Context, stats *domain.RunStats) (string, error)
}

// SyncConfig holds configuration for the sync service
type SyncConfig struct {
	BatchSize  int
	SampleSize int
}

// SyncOptions selects the scope and mode of one run.
type SyncOptions struct {
	ReclassifyAll bool
	DryRun        bool
	BatchSize     int // overrides SyncConfig.BatchSize when positive
}

// SyncService classifies index documents page by page and writes the
// results back in batches.
type SyncService struct {
	index      repository.DocumentIndex
	classifier *classifier.Classifier
	recorder   RunRecorder
	archiver   ReportArchiver
	logger     *logger.Logger
	batchSize  int
	sampleSize int
	now        func() time.Time
}

// NewSyncService creates a new sync service.
// Parameters:
//   - index: document index to read from and write to.
//   - cls: classifier applied to every document.
//   - log: fallback logger when the context carries none.
//   - cfg: batch and sample sizes; nil uses defaults.
// Returns:
//   - *SyncService: service without run recorder or archiver.
func NewSyncService(index repository.DocumentIndex, cls *classifier.Classifier, log *logger.Logger, cfg *SyncConfig) *SyncService {
	if cfg == nil {
		cfg = &SyncConfig{}
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	sampleSize := cfg.SampleSize
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	if log == nil {
		log = logger.GetDefault()
	}

	return &SyncService{
		index:      index,
		classifier: cls,
		logger:     log,
		batchSize:  batchSize,
		sampleSize: sampleSize,
		now:        time.Now,
	}
}

// WithRecorder attaches a run ledger.
func (s *SyncService) WithRecorder(r RunRecorder) *SyncService {
	s.recorder = r
	return s
}

// WithArchiver attaches a report archiver.
func (s *SyncService) WithArchiver(a ReportArchiver) *SyncService {
	s.archiver = a
	return s
}

// log returns a logger from context if available, otherwise returns the service logger
func (s *SyncService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != logger.GetDefault() {
		return l
	}
	return s.logger
}

// attach puts the service logger on ctx unless the caller already did.
func (s *SyncService) attach(ctx context.Context) context.Context {
	return s.log(ctx).WithContext(ctx)
}

// Run executes one classification run.
//
// The total is counted once up front and bounds the page loop. A failed page
// fetch ends paging; a failed batch write counts the whole batch as failed and
// the run continues. Cancellation is honored between pages, after which the
// pending partial batch is still flushed unless the run is a dry run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - opts: scope, mode, and batch size.
// Returns:
//   - *domain.RunStats: final statistics, never nil.
//   - error: non-nil only when the initial count fails.
func (s *SyncService) Run(ctx context.Context, opts SyncOptions) (*domain.RunStats, error) {
	batchSize := s.batchSize
	if opts.BatchSize > 0 {
		batchSize = opts.BatchSize
	}
	scope := domain.ScopeUnclassified
	if opts.ReclassifyAll {
		scope = domain.ScopeAll
	}
	unclassifiedOnly := !opts.ReclassifyAll

	stats := domain.NewRunStats(uuid.New().String(), scope, opts.DryRun, batchSize)
	stats.StartTime = s.now()
	classifiedAt := stats.StartTime.UTC()

	ctx = logger.SetRunID(s.attach(ctx), stats.RunID)
	ctx = logger.SetComponent(ctx, "sync")

	s.log(ctx).WithFields(logger.Fields{
		"scope":               scope,
		"dry_run":             opts.DryRun,
		logger.FieldBatchSize: batchSize,
	}).Info("Starting classification run")
	s.record(ctx, stats, true)

	counted, err := s.index.Search(ctx, repository.SearchQuery{Top: 0, UnclassifiedOnly: unclassifiedOnly})
	if err != nil {
		stats.Status = domain.RunStatusCountFailed
		stats.Error = err.Error()
		s.finish(ctx, stats)
		return stats, fmt.Errorf("failed to count documents: %w", err)
	}
	stats.TotalCount = counted.Total

	if stats.TotalCount == 0 {
		stats.Status = domain.RunStatusNothingToDo
		s.finish(ctx, stats)
		return stats, nil
	}

	pending := make([]domain.DocumentUpdate, 0, batchSize)
	canceled := false

	for skip := 0; skip < stats.TotalCount; skip += batchSize {
		if ctx.Err() != nil {
			canceled = true
			break
		}

		page, err := s.index.Search(ctx, repository.SearchQuery{
			Skip:             skip,
			Top:              batchSize,
			UnclassifiedOnly: unclassifiedOnly,
		})
		if err != nil {
			s.log(ctx).WithField(logger.FieldPageSkip, skip).WithError(err).Error("Page fetch failed, stopping pagination")
			break
		}
		if len(page.Documents) == 0 {
			break
		}
		stats.Pages++

		for _, doc := range page.Documents {
			result := s.classifier.Classify(doc, classifiedAt)
			stats.Record(result.Category, result.AccessLevel)
			metrics.DocumentsClassified.WithLabelValues(result.Category, string(result.AccessLevel)).Inc()

			if len(stats.Samples) < s.sampleSize {
				stats.Samples = append(stats.Samples, domain.Sample{
					Name:        truncateRunes(doc.Name, sampleNameLength),
					Category:    result.Category,
					AccessLevel: result.AccessLevel,
				})
			}

			if opts.DryRun {
				continue
			}
			pending = append(pending, result.Update(doc.ID))
			if len(pending) >= batchSize {
				s.flush(ctx, stats, pending)
				pending = pending[:0]
			}
		}
	}

	if !canceled && ctx.Err() != nil {
		canceled = true
	}

	if !opts.DryRun && len(pending) > 0 {
		flushCtx := ctx
		if canceled {
			flushCtx = context.WithoutCancel(ctx)
		}
		s.flush(flushCtx, stats, pending)
	}

	if canceled {
		stats.Status = domain.RunStatusCanceled
		stats.Error = context.Cause(ctx).Error()
	} else {
		stats.Status = domain.RunStatusCompleted
	}
	s.finish(ctx, stats)
	return stats, nil
}

// flush writes one batch and folds the per-document outcome into stats.
func (s *SyncService) flush(ctx context.Context, stats *domain.RunStats, batch []domain.DocumentUpdate) {
	n := len(batch)
	res, err := s.index.UpdateBatch(ctx, batch)

	// Keep succeeded+failed equal to the batch size whatever the backend reports.
	succeeded := res.Succeeded
	if err != nil || succeeded < 0 {
		succeeded = 0
	}
	if succeeded > n {
		succeeded = n
	}
	failed := n - succeeded

	stats.AddBatch(succeeded, failed)
	metrics.DocumentsWritten.Add(float64(succeeded))
	metrics.DocumentsFailed.Add(float64(failed))
	metrics.BatchesTotal.WithLabelValues(metrics.BatchResult(succeeded, failed)).Inc()

	entry := logger.With(logger.Fields{logger.FieldBatchSize: n}).WithOutcome(succeeded, failed)
	if err != nil {
		entry.Error(ctx, "Batch write failed: %v", err)
	} else if failed > 0 {
		entry.Warn(ctx, "Batch partially written")
	}

	pct := 0
	if stats.TotalCount > 0 {
		pct = 100 * stats.Processed / stats.TotalCount
	}
	entry.Info(ctx, "Progress: %d/%d (%d%%)", stats.Processed, stats.TotalCount, pct)
}

// finish stamps the end time and hands the stats to the optional collaborators.
func (s *SyncService) finish(ctx context.Context, stats *domain.RunStats) {
	stats.EndTime = s.now()
	metrics.RunsTotal.WithLabelValues(string(stats.Status), string(stats.Scope)).Inc()

	// Collaborators run after the run context may have been canceled.
	ctx = context.WithoutCancel(ctx)
	s.record(ctx, stats, false)

	if s.archiver != nil {
		if url, err := s.archiver.Archive(ctx, stats); err != nil {
			s.log(ctx).WithError(err).Warn("Failed to archive run report")
		} else {
			s.log(ctx).WithField("url", url).Info("Run report archived")
		}
	}

	logger.With(logger.Fields{
		"total":     stats.TotalCount,
		"processed": stats.Processed,
		"pages":     stats.Pages,
		"batches":   stats.Batches,
	}).WithOutcome(stats.Succeeded, stats.Failed).
		WithStatus(string(stats.Status)).
		WithDuration(stats.Duration().Milliseconds()).
		Info(ctx, "Classification run finished")
}

func (s *SyncService) record(ctx context.Context, stats *domain.RunStats, create bool) {
	if s.recorder == nil {
		return
	}
	run := domain.RunFromStats(stats)
	var err error
	if create {
		err = s.recorder.Create(ctx, run)
	} else {
		err = s.recorder.Update(ctx, run)
	}
	if err != nil {
		s.log(ctx).WithError(err).Warn("Failed to record run")
	}
}

// ClassifyOne classifies a single supplied document and, unless dryRun is
// set, writes the result with a single merge update.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - doc: document with at least an id.
//   - dryRun: skip the write when true.
// Returns:
//   - domain.ClassificationResult: computed classification.
//   - error: ErrMissingDocumentID, or the index write error.
func (s *SyncService) ClassifyOne(ctx context.Context, doc domain.Document, dryRun bool) (domain.ClassificationResult, error) {
	if doc.ID == "" {
		return domain.ClassificationResult{}, ErrMissingDocumentID
	}

	result := s.classifier.Classify(doc, s.now().UTC())
	metrics.DocumentsClassified.WithLabelValues(result.Category, string(result.AccessLevel)).Inc()
	if dryRun {
		return result, nil
	}

	if err := s.index.UpdateOne(ctx, result.Update(doc.ID)); err != nil {
		metrics.DocumentsFailed.Inc()
		s.log(ctx).WithField(logger.FieldDocumentID, doc.ID).WithError(err).Warn("Single document update failed")
		return result, err
	}
	metrics.DocumentsWritten.Inc()
	return result, nil
}

// Preview classifies doc without any I/O.
func (s *SyncService) Preview(doc domain.Document) domain.ClassificationResult {
	return s.classifier.Classify(doc, s.now().UTC())
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
