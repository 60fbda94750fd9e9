package repository

import (
	"context"
	"errors"

	"github.com/timmy/docclass/internal/domain"
	"gorm.io/gorm"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// RunRepository persists the classification run ledger.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RunRepository: repository instance bound to db.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record.
func (r *RunRepository) Create(ctx context.Context, run *domain.ClassificationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update saves every column of an existing run record except created_at.
func (r *RunRepository) Update(ctx context.Context, run *domain.ClassificationRun) error {
	return r.db.WithContext(ctx).Omit("CreatedAt").Save(run).Error
}

// GetByID retrieves a run by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: run ID.
// Returns:
//   - *domain.ClassificationRun: run record if found.
//   - error: ErrRunNotFound when missing, or the query error.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.ClassificationRun, error) {
	var run domain.ClassificationRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]domain.ClassificationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []domain.ClassificationRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// CountByStatus returns the number of runs in each status.
func (r *RunRepository) CountByStatus(ctx context.Context) (map[domain.RunStatus]int64, error) {
	var rows []struct {
		Status domain.RunStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.ClassificationRun{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.RunStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
