package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/docclass/internal/api/middleware"
	"github.com/timmy/docclass/internal/domain"
	"github.com/timmy/docclass/internal/logger"
)

// DocumentClassifier is the part of the sync service the API exposes.
type DocumentClassifier interface {
	Preview(doc domain.Document) domain.ClassificationResult
	ClassifyOne(ctx context.Context, doc domain.Document, dryRun bool) (domain.ClassificationResult, error)
}

// ClassifyHandler handles classification preview and single-document updates.
type ClassifyHandler struct {
	classifier DocumentClassifier
}

// NewClassifyHandler creates a new classify handler.
func NewClassifyHandler(classifier DocumentClassifier) *ClassifyHandler {
	return &ClassifyHandler{classifier: classifier}
}

// PreviewRequest is the body of POST /api/v1/classify.
type PreviewRequest struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	CommunityName string `json:"community_name"`
}

// ClassifyDocumentRequest is the body of POST /api/v1/documents/classify.
type ClassifyDocumentRequest struct {
	ID            string `json:"id" binding:"required"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	CommunityName string `json:"community_name"`
	DryRun        bool   `json:"dry_run"`
}

// ClassifyDocumentResponse reports the computed classification and whether it
// was written.
type ClassifyDocumentResponse struct {
	ID      string                      `json:"id"`
	Result  domain.ClassificationResult `json:"result"`
	Written bool                        `json:"written"`
}

// Preview handles POST /api/v1/classify. Nothing is written.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ClassifyHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.Name == "" && req.Path == "" {
		respondError(c, http.StatusBadRequest, "Invalid request: name or path is required")
		return
	}

	result := h.classifier.Preview(domain.Document{
		Name:          req.Name,
		Path:          req.Path,
		CommunityName: req.CommunityName,
	})
	c.JSON(http.StatusOK, result)
}

// ClassifyDocument handles POST /api/v1/documents/classify.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ClassifyHandler) ClassifyDocument(c *gin.Context) {
	ctx := c.Request.Context()

	var req ClassifyDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	doc := domain.Document{
		ID:            req.ID,
		Name:          req.Name,
		Path:          req.Path,
		CommunityName: req.CommunityName,
	}
	result, err := h.classifier.ClassifyOne(ctx, doc, req.DryRun)
	if err != nil {
		middleware.GetLogger(c).WithField(logger.FieldDocumentID, req.ID).WithError(err).Warn("Document classification failed")
		respondError(c, statusFor(err), "Classification update failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, ClassifyDocumentResponse{
		ID:      req.ID,
		Result:  result,
		Written: !req.DryRun,
	})
}
