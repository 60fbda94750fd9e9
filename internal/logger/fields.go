package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields carried on the context logger through a call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldRunID is the classification run ID
	FieldRunID = "run_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldDocumentID is the index document key
	FieldDocumentID = "document_id"

	// FieldBackend is the index backend name (azure, qdrant)
	FieldBackend = "backend"
)

// Metric fields attached per entry for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldPageSkip is the skip offset of a fetched page
	FieldPageSkip = "page_skip"

	// FieldBatchSize is the number of updates in a batch write
	FieldBatchSize = "batch_size"

	FieldSucceeded = "succeeded"
	FieldFailed    = "failed"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldSize is the response size in bytes
	FieldSize = "size"
)
