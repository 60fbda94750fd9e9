package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/docclass/internal/domain"
)

// StatsProvider reports the facet breakdown of the index.
type StatsProvider interface {
	GetStats(ctx context.Context) (*domain.IndexStats, error)
}

// StatsHandler handles GET /api/v1/stats.
type StatsHandler struct {
	stats StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// StatsResponse lists both tables in descending count order.
type StatsResponse struct {
	TotalDocuments int                 `json:"total_documents"`
	ByCategory     []domain.CountEntry `json:"by_category"`
	ByAccessLevel  []domain.CountEntry `json:"by_access_level"`
}

// GetStats handles GET /api/v1/stats.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, statusFor(err), "Failed to get stats: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		TotalDocuments: stats.TotalDocuments,
		ByCategory:     domain.SortedCounts(stats.ByCategory),
		ByAccessLevel:  domain.SortedCounts(stats.ByAccessLevel),
	})
}
