package repository

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/timmy/docclass/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// documentNamespace derives deterministic point ids from document ids.
var documentNamespace = uuid.MustParse("8f6d1c52-3a4e-5b7f-9c0d-2e1f4a6b8c9d")

// QdrantConnectionConfig holds configuration for Qdrant connection
type QdrantConnectionConfig struct {
	Host       string
	Port       int
	Collection string
	APIKey     string // Qdrant Cloud API Key (enables TLS automatically)
	UseTLS     bool   // Explicitly enable TLS without API Key
	Timeout    time.Duration
	Facets     FacetLimits
}

// apiKeyInterceptor creates a unary interceptor that adds API key to metadata
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// QdrantIndex stores documents as Qdrant points whose payload carries the
// same field names as the search index.
type QdrantIndex struct {
	conn           *grpc.ClientConn
	pointsClient   pb.PointsClient
	collectionName string
	timeout        time.Duration
	facets         FacetLimits
}

// NewQdrantIndex creates a new QdrantIndex.
// Supports both local Qdrant (insecure) and Qdrant Cloud (TLS + API Key)
func NewQdrantIndex(cfg *QdrantConnectionConfig) (*QdrantIndex, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var opts []grpc.DialOption
	if cfg.UseTLS || cfg.APIKey != "" {
		creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS13})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		if cfg.APIKey != "" {
			opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
		}
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &QdrantIndex{
		conn:           conn,
		pointsClient:   pb.NewPointsClient(conn),
		collectionName: cfg.Collection,
		timeout:        timeout,
		facets:         cfg.Facets,
	}, nil
}

// Close closes the gRPC connection
func (r *QdrantIndex) Close() error {
	return r.conn.Close()
}

// EnsurePayloadIndexes creates the keyword indexes the unclassified filter
// and facet queries need. Existing indexes are left as they are.
func (r *QdrantIndex) EnsurePayloadIndexes(ctx context.Context) error {
	for _, field := range []string{fieldCategory, fieldAccessLevel} {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		_, err := r.pointsClient.CreateFieldIndex(callCtx, &pb.CreateFieldIndexCollection{
			CollectionName: r.collectionName,
			FieldName:      field,
			FieldType:      pb.FieldType_FieldTypeKeyword.Enum(),
			Wait:           boolPtr(true),
		})
		cancel()
		if err != nil {
			return fmt.Errorf("failed to create payload index on %s: %w", field, err)
		}
	}
	return nil
}

// Search counts the matching points and returns one page of them.
func (r *QdrantIndex) Search(ctx context.Context, q SearchQuery) (*SearchPage, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var filter *pb.Filter
	if q.UnclassifiedOnly {
		filter = unclassifiedFilter()
	}

	countResp, err := r.pointsClient.Count(ctx, &pb.CountPoints{
		CollectionName: r.collectionName,
		Filter:         filter,
		Exact:          boolPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: count: %v", ErrTransport, err)
	}
	page := &SearchPage{Total: int(countResp.GetResult().GetCount())}
	if q.Top <= 0 {
		return page, nil
	}

	queryResp, err := r.pointsClient.Query(ctx, &pb.QueryPoints{
		CollectionName: r.collectionName,
		Filter:         filter,
		Limit:          uint64Ptr(uint64(q.Top)),
		Offset:         uint64Ptr(uint64(q.Skip)),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrTransport, err)
	}

	page.Documents = make([]domain.Document, 0, len(queryResp.GetResult()))
	for _, point := range queryResp.GetResult() {
		page.Documents = append(page.Documents, documentFromPayload(point.GetPayload()))
	}
	return page, nil
}

// UpdateOne merges the patch into the payload of one point.
func (r *QdrantIndex) UpdateOne(ctx context.Context, u domain.DocumentUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.pointsClient.SetPayload(ctx, &pb.SetPayloadPoints{
		CollectionName: r.collectionName,
		Wait:           boolPtr(true),
		Payload:        payloadFor(u),
		PointsSelector: pointSelector(u.ID),
	})
	if err != nil {
		return fmt.Errorf("%w: set payload: %v", ErrTransport, err)
	}
	if !statusOK(resp.GetResult().GetStatus()) {
		return fmt.Errorf("%w: %s: status %s", ErrItemRejected, u.ID, resp.GetResult().GetStatus())
	}
	return nil
}

// UpdateBatch submits one SetPayload operation per update. Qdrant reports
// one result per operation.
func (r *QdrantIndex) UpdateBatch(ctx context.Context, updates []domain.DocumentUpdate) (BatchResult, error) {
	if len(updates) == 0 {
		return BatchResult{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ops := make([]*pb.PointsUpdateOperation, 0, len(updates))
	for _, u := range updates {
		ops = append(ops, &pb.PointsUpdateOperation{
			Operation: &pb.PointsUpdateOperation_SetPayload_{
				SetPayload: &pb.PointsUpdateOperation_SetPayload{
					Payload:        payloadFor(u),
					PointsSelector: pointSelector(u.ID),
				},
			},
		})
	}

	resp, err := r.pointsClient.UpdateBatch(ctx, &pb.UpdateBatchPoints{
		CollectionName: r.collectionName,
		Wait:           boolPtr(true),
		Operations:     ops,
	})
	if err != nil {
		return AllFailed(len(updates)), fmt.Errorf("%w: update batch: %v", ErrTransport, err)
	}

	succeeded := 0
	for _, res := range resp.GetResult() {
		if statusOK(res.GetStatus()) {
			succeeded++
		}
	}
	if succeeded > len(updates) {
		succeeded = len(updates)
	}
	return BatchResult{Succeeded: succeeded, Failed: len(updates) - succeeded}, nil
}

// FacetStats counts all points and facets the category and access level keys.
func (r *QdrantIndex) FacetStats(ctx context.Context) (*domain.IndexStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	countResp, err := r.pointsClient.Count(ctx, &pb.CountPoints{
		CollectionName: r.collectionName,
		Exact:          boolPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: count: %v", ErrTransport, err)
	}

	stats := domain.NewIndexStats()
	stats.TotalDocuments = int(countResp.GetResult().GetCount())

	if err := r.facet(ctx, fieldCategory, facetLimit(r.facets.Category, 50), stats.ByCategory); err != nil {
		return nil, err
	}
	if err := r.facet(ctx, fieldAccessLevel, facetLimit(r.facets.AccessLevel, 10), stats.ByAccessLevel); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *QdrantIndex) facet(ctx context.Context, key string, limit int, into map[string]int) error {
	resp, err := r.pointsClient.Facet(ctx, &pb.FacetCounts{
		CollectionName: r.collectionName,
		Key:            key,
		Limit:          uint64Ptr(uint64(limit)),
	})
	if err != nil {
		return fmt.Errorf("%w: facet %s: %v", ErrTransport, key, err)
	}
	for _, hit := range resp.GetHits() {
		into[hit.GetValue().GetStringValue()] += int(hit.GetCount())
	}
	return nil
}

// PointID returns the deterministic point id for a document id.
func PointID(docID string) string {
	return uuid.NewSHA1(documentNamespace, []byte(docID)).String()
}

func pointSelector(docID string) *pb.PointsSelector {
	return &pb.PointsSelector{
		PointsSelectorOneOf: &pb.PointsSelector_Points{
			Points: &pb.PointsIdsList{
				Ids: []*pb.PointId{
					{PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(docID)}},
				},
			},
		},
	}
}

// unclassifiedFilter matches points whose category is missing, null, or "".
func unclassifiedFilter() *pb.Filter {
	return &pb.Filter{
		Should: []*pb.Condition{
			{ConditionOneOf: &pb.Condition_IsEmpty{IsEmpty: &pb.IsEmptyCondition{Key: fieldCategory}}},
			{ConditionOneOf: &pb.Condition_IsNull{IsNull: &pb.IsNullCondition{Key: fieldCategory}}},
			{ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key:   fieldCategory,
					Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: ""}},
				},
			}},
		},
	}
}

// payloadFor builds a merge patch; empty optional fields are left out so
// stored values survive.
func payloadFor(u domain.DocumentUpdate) map[string]*pb.Value {
	payload := map[string]*pb.Value{
		fieldCategory:    stringValue(u.Category),
		fieldAccessLevel: stringValue(string(u.AccessLevel)),
	}
	if !u.ClassifiedAt.IsZero() {
		payload[fieldClassifiedAt] = stringValue(u.ClassifiedAt.UTC().Format(time.RFC3339))
	}
	if u.CommunityName != "" {
		payload[fieldCommunityName] = stringValue(u.CommunityName)
	}
	if u.OwnerAccountID != "" {
		payload[fieldOwnerAccountID] = stringValue(u.OwnerAccountID)
	}
	return payload
}

func documentFromPayload(payload map[string]*pb.Value) domain.Document {
	get := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	return domain.Document{
		ID:            get(fieldID),
		Name:          get(fieldName),
		Path:          get(fieldPath),
		Category:      get(fieldCategory),
		AccessLevel:   domain.AccessLevel(get(fieldAccessLevel)),
		CommunityName: get(fieldCommunityName),
	}
}

func statusOK(s pb.UpdateStatus) bool {
	return s == pb.UpdateStatus_Completed || s == pb.UpdateStatus_Acknowledged
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func boolPtr(v bool) *bool {
	return &v
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
