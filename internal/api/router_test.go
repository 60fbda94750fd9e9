package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/timmy/docclass/internal/classifier"
	"github.com/timmy/docclass/internal/domain"
	"github.com/timmy/docclass/internal/logger"
)

type stubClassifier struct{}

func (stubClassifier) Preview(doc domain.Document) domain.ClassificationResult {
	return classifier.NewDefault().Classify(doc, time.Time{})
}

func (stubClassifier) ClassifyOne(ctx context.Context, doc domain.Document, dryRun bool) (domain.ClassificationResult, error) {
	return classifier.NewDefault().Classify(doc, time.Time{}), nil
}

type stubStats struct{}

func (stubStats) GetStats(ctx context.Context) (*domain.IndexStats, error) {
	return domain.NewIndexStats(), nil
}

func testRouter() http.Handler {
	return SetupRouter(&RouterDeps{
		Classifier: stubClassifier{},
		Stats:      stubStats{},
		Logger:     logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard}),
		Backend:    "azure",
		Mode:       "test",
	})
}

func TestSetupRouter_Routes(t *testing.T) {
	r := testRouter()

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/v1/stats", "", http.StatusOK},
		{http.MethodPost, "/api/v1/classify", `{"name":"Bylaws.pdf"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/documents/classify", `{"id":"x","name":"Bylaws.pdf"}`, http.StatusOK},
		// The run ledger is disabled, so its routes are not registered.
		{http.MethodGet, "/api/v1/runs", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, http.NoBody)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestSetupRouter_MetricsExposeRequests(t *testing.T) {
	r := testRouter()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if !strings.Contains(w.Body.String(), "docclass_http_requests_total") {
		t.Error("request counter missing from /metrics output")
	}
}
