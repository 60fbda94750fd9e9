package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/docclass/internal/domain"
)

const maxRunsLimit = 200

// RunStore reads the run ledger.
type RunStore interface {
	ListRecent(ctx context.Context, limit int) ([]domain.ClassificationRun, error)
	GetByID(ctx context.Context, id string) (*domain.ClassificationRun, error)
	CountByStatus(ctx context.Context) (map[domain.RunStatus]int64, error)
}

// RunHandler handles the run history endpoints.
type RunHandler struct {
	runs RunStore
}

// NewRunHandler creates a new run handler.
func NewRunHandler(runs RunStore) *RunHandler {
	return &RunHandler{runs: runs}
}

// ListRuns handles GET /api/v1/runs?limit=N.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, statusFor(err), "Failed to list runs: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

// GetRun handles GET /api/v1/runs/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RunHandler) GetRun(c *gin.Context) {
	run, err := h.runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, statusFor(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

// Summary handles GET /api/v1/runs/summary.
func (h *RunHandler) Summary(c *gin.Context) {
	counts, err := h.runs.CountByStatus(c.Request.Context())
	if err != nil {
		respondError(c, statusFor(err), "Failed to summarize runs: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"by_status": counts})
}
