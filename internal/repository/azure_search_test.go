package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/timmy/docclass/internal/domain"
)

type recordedRequest struct {
	Path       string
	APIKey     string
	APIVersion string
	Body       map[string]interface{}
}

// newAzureTestServer serves canned responses keyed by request path suffix.
func newAzureTestServer(t *testing.T, handler func(path string, body map[string]interface{}) (int, interface{})) (*AzureSearchIndex, func() []recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		recorded []recordedRequest
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		recorded = append(recorded, recordedRequest{
			Path:       r.URL.Path,
			APIKey:     r.Header.Get("api-key"),
			APIVersion: r.URL.Query().Get("api-version"),
			Body:       body,
		})
		mu.Unlock()

		status, resp := handler(r.URL.Path, body)
		w.Header().Set("Content-Type", "application/json; odata.metadata=minimal")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	idx := NewAzureSearchIndex(&AzureSearchConfig{
		Endpoint:  srv.URL + "/",
		APIKey:    "test-key",
		IndexName: "sharepoint-docs",
		Timeout:   2 * time.Second,
		Facets:    FacetLimits{Category: 50, AccessLevel: 10},
	})
	return idx, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), recorded...)
	}
}

func TestAzureSearch_Search(t *testing.T) {
	idx, recorded := newAzureTestServer(t, func(path string, body map[string]interface{}) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{
			"@odata.count": 250,
			"value": []map[string]interface{}{
				{
					"id":                     "doc-1",
					"metadata_spo_item_name": "Budget.pdf",
					"metadata_spo_item_path": "/Financial/",
					"document_category":      nil,
				},
				{"id": "doc-2"},
			},
		}
	})

	page, err := idx.Search(context.Background(), SearchQuery{Skip: 100, Top: 100, UnclassifiedOnly: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 250 || len(page.Documents) != 2 {
		t.Fatalf("page: total=%d docs=%d", page.Total, len(page.Documents))
	}
	if d := page.Documents[0]; d.Name != "Budget.pdf" || d.Path != "/Financial/" || d.Category != "" {
		t.Errorf("decoded document: %+v", d)
	}
	if d := page.Documents[1]; d.Name != "" || d.Path != "" {
		t.Errorf("absent fields should be empty: %+v", d)
	}

	req := recorded()[0]
	if req.Path != "/indexes/sharepoint-docs/docs/search" {
		t.Errorf("path: got %q", req.Path)
	}
	if req.APIKey != "test-key" || req.APIVersion != defaultAPIVersion {
		t.Errorf("headers: key=%q version=%q", req.APIKey, req.APIVersion)
	}
	if req.Body["filter"] != unclassifiedQuery {
		t.Errorf("filter: got %v", req.Body["filter"])
	}
	if req.Body["skip"] != float64(100) || req.Body["top"] != float64(100) || req.Body["count"] != true {
		t.Errorf("paging: %v", req.Body)
	}
	if req.Body["select"] != searchSelect {
		t.Errorf("select: got %v", req.Body["select"])
	}
}

func TestAzureSearch_SearchAllHasNoFilter(t *testing.T) {
	idx, recorded := newAzureTestServer(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{"@odata.count": 0, "value": []interface{}{}}
	})

	if _, err := idx.Search(context.Background(), SearchQuery{Top: 0}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, ok := recorded()[0].Body["filter"]; ok {
		t.Error("unfiltered search must not send a filter")
	}
}

func TestAzureSearch_SearchTransportError(t *testing.T) {
	idx, _ := newAzureTestServer(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusServiceUnavailable, map[string]string{"error": "throttled"}
	})

	page, err := idx.Search(context.Background(), SearchQuery{Top: 10})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if page != nil {
		t.Error("page should be nil on error")
	}
}

func TestAzureSearch_UpdateBatch(t *testing.T) {
	updates := []domain.DocumentUpdate{
		{ID: "a", Category: "board_financial", AccessLevel: domain.AccessBoardOnly, ClassifiedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: "b", Category: "owner_statement", AccessLevel: domain.AccessOwnerOnly, OwnerAccountID: "R1L2", CommunityName: "Oak Hill"},
		{ID: "c", Category: "uncategorized", AccessLevel: domain.AccessStaffOnly},
	}

	tests := []struct {
		name          string
		status        int
		results       []indexResult
		wantSucceeded int
		wantFailed    int
		wantErr       bool
	}{
		{
			name:          "all acknowledged",
			status:        http.StatusOK,
			results:       []indexResult{{Key: "a", Status: true}, {Key: "b", Status: true}, {Key: "c", Status: true}},
			wantSucceeded: 3,
		},
		{
			name:          "partial failure reported as 207",
			status:        http.StatusMultiStatus,
			results:       []indexResult{{Key: "a", Status: true}, {Key: "b", Status: false, StatusCode: 404}, {Key: "c", Status: true}},
			wantSucceeded: 2,
			wantFailed:    1,
		},
		{
			name:          "missing acknowledgements count as failed",
			status:        http.StatusOK,
			results:       []indexResult{{Key: "a", Status: true}},
			wantSucceeded: 1,
			wantFailed:    2,
		},
		{
			name:       "envelope failure",
			status:     http.StatusBadRequest,
			wantFailed: 3,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, recorded := newAzureTestServer(t, func(string, map[string]interface{}) (int, interface{}) {
				return tt.status, indexResponse{Value: tt.results}
			})

			res, err := idx.UpdateBatch(context.Background(), updates)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: %v", err)
			}
			if res.Succeeded != tt.wantSucceeded || res.Failed != tt.wantFailed {
				t.Errorf("got %+v, want succeeded=%d failed=%d", res, tt.wantSucceeded, tt.wantFailed)
			}
			if res.Succeeded+res.Failed != len(updates) {
				t.Errorf("counts do not reconcile: %+v", res)
			}

			req := recorded()[0]
			if !strings.HasSuffix(req.Path, "/docs/index") {
				t.Errorf("path: got %q", req.Path)
			}
			actions := req.Body["value"].([]interface{})
			first := actions[0].(map[string]interface{})
			if first["@search.action"] != "merge" || first["classified_at"] != "2024-01-02T03:04:05Z" {
				t.Errorf("first action: %v", first)
			}
			if _, ok := first["owner_account_id"]; ok {
				t.Error("empty owner_account_id must be omitted")
			}
			if _, ok := first["community_name"]; ok {
				t.Error("empty community_name must be omitted")
			}
			second := actions[1].(map[string]interface{})
			if second["owner_account_id"] != "R1L2" || second["community_name"] != "Oak Hill" {
				t.Errorf("second action: %v", second)
			}
		})
	}
}

func TestAzureSearch_UpdateBatchEmpty(t *testing.T) {
	idx, recorded := newAzureTestServer(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusOK, indexResponse{}
	})
	res, err := idx.UpdateBatch(context.Background(), nil)
	if err != nil || res != (BatchResult{}) {
		t.Errorf("got %+v, %v", res, err)
	}
	if len(recorded()) != 0 {
		t.Error("empty batch must not call the index")
	}
}

func TestAzureSearch_UpdateOne(t *testing.T) {
	u := domain.DocumentUpdate{ID: "doc-7", Category: "board_legal", AccessLevel: domain.AccessBoardOnly}

	tests := []struct {
		name    string
		status  int
		results []indexResult
		wantErr error
	}{
		{name: "acknowledged", status: http.StatusOK, results: []indexResult{{Key: "doc-7", Status: true}}},
		{name: "rejected", status: http.StatusMultiStatus, results: []indexResult{{Key: "doc-7", Status: false, ErrorMessage: "not found"}}, wantErr: ErrItemRejected},
		{name: "no ack", status: http.StatusOK, wantErr: ErrItemRejected},
		{name: "transport", status: http.StatusInternalServerError, wantErr: ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, _ := newAzureTestServer(t, func(string, map[string]interface{}) (int, interface{}) {
				return tt.status, indexResponse{Value: tt.results}
			})
			err := idx.UpdateOne(context.Background(), u)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAzureSearch_FacetStats(t *testing.T) {
	idx, recorded := newAzureTestServer(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{
			"@odata.count": 1200,
			"value":        []interface{}{},
			"@search.facets": map[string]interface{}{
				"document_category": []map[string]interface{}{
					{"value": "board_financial", "count": 400},
					{"value": "", "count": 50},
				},
				"access_level": []map[string]interface{}{
					{"value": "board_only", "count": 700},
				},
			},
		}
	})

	stats, err := idx.FacetStats(context.Background())
	if err != nil {
		t.Fatalf("FacetStats: %v", err)
	}
	if stats.TotalDocuments != 1200 {
		t.Errorf("total: got %d", stats.TotalDocuments)
	}
	if stats.ByCategory["board_financial"] != 400 || stats.ByCategory[""] != 50 {
		t.Errorf("by category: %v", stats.ByCategory)
	}
	if stats.ByAccessLevel["board_only"] != 700 {
		t.Errorf("by access level: %v", stats.ByAccessLevel)
	}

	body := recorded()[0].Body
	if body["top"] != float64(0) {
		t.Errorf("top: got %v", body["top"])
	}
	facets := body["facets"].([]interface{})
	if facets[0] != "document_category,count:50" || facets[1] != "access_level,count:10" {
		t.Errorf("facets: %v", facets)
	}
}

func TestAzureSearch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	idx := NewAzureSearchIndex(&AzureSearchConfig{
		Endpoint:  srv.URL,
		IndexName: "docs",
		Timeout:   20 * time.Millisecond,
	})
	if _, err := idx.Search(context.Background(), SearchQuery{Top: 1}); !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport on timeout, got %v", err)
	}
}
