package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/docclass/internal/domain"
)

// Index field names shared by every backend.
const (
	fieldID             = "id"
	fieldName           = "metadata_spo_item_name"
	fieldPath           = "metadata_spo_item_path"
	fieldCategory       = "document_category"
	fieldAccessLevel    = "access_level"
	fieldCommunityName  = "community_name"
	fieldOwnerAccountID = "owner_account_id"
	fieldClassifiedAt   = "classified_at"
)

const (
	defaultAPIVersion = "2024-05-01-preview"
	unclassifiedQuery = "document_category eq null or document_category eq ''"
	maxErrorBody      = 512
)

var searchSelect = strings.Join([]string{
	fieldID, fieldName, fieldPath, fieldCategory, fieldAccessLevel, fieldCommunityName,
}, ",")

// AzureSearchConfig holds configuration for the Azure AI Search client.
type AzureSearchConfig struct {
	Endpoint   string
	APIKey     string
	IndexName  string
	APIVersion string
	Timeout    time.Duration
	Facets     FacetLimits
}

// AzureSearchIndex talks to the Azure AI Search REST API.
type AzureSearchIndex struct {
	client    *resty.Client
	indexName string
	facets    FacetLimits
}

// NewAzureSearchIndex creates a new Azure AI Search client.
// Parameters:
//   - cfg: endpoint, credentials, and per-call timeout.
// Returns:
//   - *AzureSearchIndex: client bound to one index.
func NewAzureSearchIndex(cfg *AzureSearchConfig) *AzureSearchIndex {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.Endpoint, "/"))
	client.SetHeader("api-key", cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetQueryParam("api-version", apiVersion)
	client.SetTimeout(timeout)

	return &AzureSearchIndex{
		client:    client,
		indexName: cfg.IndexName,
		facets:    cfg.Facets,
	}
}

type searchRequest struct {
	Search string   `json:"search"`
	Skip   int      `json:"skip,omitempty"`
	Top    int      `json:"top"`
	Select string   `json:"select,omitempty"`
	Count  bool     `json:"count"`
	Filter string   `json:"filter,omitempty"`
	Facets []string `json:"facets,omitempty"`
}

type searchRecord struct {
	ID            string `json:"id"`
	Name          string `json:"metadata_spo_item_name"`
	Path          string `json:"metadata_spo_item_path"`
	Category      string `json:"document_category"`
	AccessLevel   string `json:"access_level"`
	CommunityName string `json:"community_name"`
}

type facetValue struct {
	Value interface{} `json:"value"`
	Count int         `json:"count"`
}

type searchResponse struct {
	Count  int                     `json:"@odata.count"`
	Value  []searchRecord          `json:"value"`
	Facets map[string][]facetValue `json:"@search.facets"`
}

type indexAction struct {
	Action         string `json:"@search.action"`
	ID             string `json:"id"`
	Category       string `json:"document_category,omitempty"`
	AccessLevel    string `json:"access_level,omitempty"`
	ClassifiedAt   string `json:"classified_at,omitempty"`
	CommunityName  string `json:"community_name,omitempty"`
	OwnerAccountID string `json:"owner_account_id,omitempty"`
}

type indexRequest struct {
	Value []indexAction `json:"value"`
}

type indexResult struct {
	Key          string `json:"key"`
	Status       bool   `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	StatusCode   int    `json:"statusCode"`
}

type indexResponse struct {
	Value []indexResult `json:"value"`
}

// Search fetches one page of documents and the total match count.
func (s *AzureSearchIndex) Search(ctx context.Context, q SearchQuery) (*SearchPage, error) {
	body := searchRequest{
		Search: "*",
		Skip:   q.Skip,
		Top:    q.Top,
		Select: searchSelect,
		Count:  true,
	}
	if q.UnclassifiedOnly {
		body.Filter = unclassifiedQuery
	}

	var resp searchResponse
	if err := s.post(ctx, "/indexes/{index}/docs/search", "search", body, &resp); err != nil {
		return nil, err
	}

	page := &SearchPage{
		Documents: make([]domain.Document, 0, len(resp.Value)),
		Total:     resp.Count,
	}
	for _, rec := range resp.Value {
		page.Documents = append(page.Documents, domain.Document{
			ID:            rec.ID,
			Name:          rec.Name,
			Path:          rec.Path,
			Category:      rec.Category,
			AccessLevel:   domain.AccessLevel(rec.AccessLevel),
			CommunityName: rec.CommunityName,
		})
	}
	return page, nil
}

// UpdateOne merges a single document patch. The write only counts as done
// when the per-document acknowledgement reports success.
func (s *AzureSearchIndex) UpdateOne(ctx context.Context, u domain.DocumentUpdate) error {
	var resp indexResponse
	body := indexRequest{Value: []indexAction{toIndexAction(u)}}
	if err := s.post(ctx, "/indexes/{index}/docs/index", "update", body, &resp); err != nil {
		return err
	}

	for _, r := range resp.Value {
		if r.Key != u.ID {
			continue
		}
		if r.Status {
			return nil
		}
		return fmt.Errorf("%w: %s: %s (status %d)", ErrItemRejected, u.ID, r.ErrorMessage, r.StatusCode)
	}
	return fmt.Errorf("%w: %s: no acknowledgement", ErrItemRejected, u.ID)
}

// UpdateBatch merges many patches in one call and counts per-document
// acknowledgements. A failed call counts the whole batch as failed.
func (s *AzureSearchIndex) UpdateBatch(ctx context.Context, updates []domain.DocumentUpdate) (BatchResult, error) {
	if len(updates) == 0 {
		return BatchResult{}, nil
	}

	actions := make([]indexAction, 0, len(updates))
	for _, u := range updates {
		actions = append(actions, toIndexAction(u))
	}

	var resp indexResponse
	if err := s.post(ctx, "/indexes/{index}/docs/index", "batch update", indexRequest{Value: actions}, &resp); err != nil {
		return AllFailed(len(updates)), err
	}

	succeeded := 0
	for _, r := range resp.Value {
		if r.Status {
			succeeded++
		}
	}
	if succeeded > len(updates) {
		succeeded = len(updates)
	}
	return BatchResult{Succeeded: succeeded, Failed: len(updates) - succeeded}, nil
}

// FacetStats runs a zero-row query returning category and access level facets.
func (s *AzureSearchIndex) FacetStats(ctx context.Context) (*domain.IndexStats, error) {
	body := searchRequest{
		Search: "*",
		Top:    0,
		Count:  true,
		Facets: []string{
			fmt.Sprintf("%s,count:%d", fieldCategory, facetLimit(s.facets.Category, 50)),
			fmt.Sprintf("%s,count:%d", fieldAccessLevel, facetLimit(s.facets.AccessLevel, 10)),
		},
	}

	var resp searchResponse
	if err := s.post(ctx, "/indexes/{index}/docs/search", "facet query", body, &resp); err != nil {
		return nil, err
	}

	stats := domain.NewIndexStats()
	stats.TotalDocuments = resp.Count
	for _, f := range resp.Facets[fieldCategory] {
		stats.ByCategory[facetKey(f.Value)] += f.Count
	}
	for _, f := range resp.Facets[fieldAccessLevel] {
		stats.ByAccessLevel[facetKey(f.Value)] += f.Count
	}
	return stats, nil
}

// post sends body and decodes a 200 or 207 response into result.
func (s *AzureSearchIndex) post(ctx context.Context, path, op string, body, result interface{}) error {
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("index", s.indexName).
		SetBody(body).
		SetResult(result).
		Post(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
	}

	switch httpResp.StatusCode() {
	case http.StatusOK, http.StatusMultiStatus:
		return nil
	default:
		return fmt.Errorf("%w: %s: HTTP %d: %s", ErrTransport, op, httpResp.StatusCode(), truncate(httpResp.String(), maxErrorBody))
	}
}

func toIndexAction(u domain.DocumentUpdate) indexAction {
	action := indexAction{
		Action:         "merge",
		ID:             u.ID,
		Category:       u.Category,
		AccessLevel:    string(u.AccessLevel),
		CommunityName:  u.CommunityName,
		OwnerAccountID: u.OwnerAccountID,
	}
	if !u.ClassifiedAt.IsZero() {
		action.ClassifiedAt = u.ClassifiedAt.UTC().Format(time.RFC3339)
	}
	return action
}

func facetLimit(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

func facetKey(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
