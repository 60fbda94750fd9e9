package service

import (
	"context"

	"github.com/timmy/docclass/internal/domain"
	"github.com/timmy/docclass/internal/logger"
	"github.com/timmy/docclass/internal/repository"
)

// StatsService reports the current classification breakdown of the index.
type StatsService struct {
	index  repository.DocumentIndex
	logger *logger.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(index repository.DocumentIndex, log *logger.Logger) *StatsService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &StatsService{index: index, logger: log}
}

// GetStats returns the facet breakdown of the whole index.
// A failed facet query is logged and reported as an empty breakdown.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *domain.IndexStats: never nil.
//   - error: the facet query error, if any.
func (s *StatsService) GetStats(ctx context.Context) (*domain.IndexStats, error) {
	stats, err := s.index.FacetStats(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to fetch facet stats")
		return domain.NewIndexStats(), err
	}
	if stats == nil {
		return domain.NewIndexStats(), nil
	}
	if stats.ByCategory == nil {
		stats.ByCategory = make(map[string]int)
	}
	if stats.ByAccessLevel == nil {
		stats.ByAccessLevel = make(map[string]int)
	}
	return stats, nil
}
