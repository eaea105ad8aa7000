package openai

import (
	"context"
	"net/http"
	"net/url"
)

// BatchEndpoint is the API a batch runs against.
type BatchEndpoint string

const (
	BatchChatCompletions BatchEndpoint = "/v1/chat/completions"
	BatchEmbeddings      BatchEndpoint = "/v1/embeddings"
	BatchCompletions     BatchEndpoint = "/v1/completions"
	BatchResponses       BatchEndpoint = "/v1/responses"
	BatchModerations     BatchEndpoint = "/v1/moderations"
)

// CompletionWindow24h is the only completion window the API accepts.
const CompletionWindow24h = "24h"

// BatchStatus is the lifecycle state of a batch.
type BatchStatus string

const (
	BatchValidating BatchStatus = "validating"
	BatchFailed     BatchStatus = "failed"
	BatchInProgress BatchStatus = "in_progress"
	BatchFinalizing BatchStatus = "finalizing"
	BatchCompleted  BatchStatus = "completed"
	BatchExpired    BatchStatus = "expired"
	BatchCancelling BatchStatus = "cancelling"
	BatchCancelled  BatchStatus = "cancelled"
)

// Terminal reports whether no further transitions happen.
func (s BatchStatus) Terminal() bool {
	switch s {
	case BatchFailed, BatchCompleted, BatchExpired, BatchCancelled:
		return true
	}
	return false
}

// BatchRequest creates a batch from an uploaded JSONL file.
type BatchRequest struct {
	InputFileID      string            `json:"input_file_id"`
	Endpoint         BatchEndpoint     `json:"endpoint"`
	CompletionWindow string            `json:"completion_window"`
	Metadata         map[string]string `json:"metadata,omitzero"`
}

// NewBatchRequest returns a request with the 24h completion window.
func NewBatchRequest(inputFileID string, endpoint BatchEndpoint) *BatchRequest {
	return &BatchRequest{
		InputFileID:      inputFileID,
		Endpoint:         endpoint,
		CompletionWindow: CompletionWindow24h,
	}
}

// WithMetadata attaches metadata.
func (r *BatchRequest) WithMetadata(md map[string]string) *BatchRequest {
	r.Metadata = md
	return r
}

func (r *BatchRequest) validate() error {
	if r.InputFileID == "" {
		return configErrorf("batch input file id is required")
	}
	switch r.Endpoint {
	case BatchChatCompletions, BatchEmbeddings, BatchCompletions, BatchResponses, BatchModerations:
	default:
		return configErrorf("invalid batch endpoint %q", r.Endpoint)
	}
	if r.CompletionWindow != CompletionWindow24h {
		return configErrorf("invalid completion window %q", r.CompletionWindow)
	}
	return nil
}

// RequestCounts tallies the requests of a batch.
type RequestCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// BatchError is a per-line failure.
type BatchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitzero"`
	Line    int    `json:"line,omitzero"`
}

// BatchErrors lists per-line failures of a batch.
type BatchErrors struct {
	Object string       `json:"object,omitzero"`
	Data   []BatchError `json:"data"`
}

// Batch is a batch job.
type Batch struct {
	ID               string            `json:"id"`
	Object           string            `json:"object"`
	Endpoint         BatchEndpoint     `json:"endpoint"`
	InputFileID      string            `json:"input_file_id"`
	CompletionWindow string            `json:"completion_window"`
	Status           BatchStatus       `json:"status"`
	OutputFileID     string            `json:"output_file_id,omitzero"`
	ErrorFileID      string            `json:"error_file_id,omitzero"`
	Errors           *BatchErrors      `json:"errors,omitzero"`
	CreatedAt        int64             `json:"created_at"`
	InProgressAt     int64             `json:"in_progress_at,omitzero"`
	ExpiresAt        int64             `json:"expires_at,omitzero"`
	FinalizingAt     int64             `json:"finalizing_at,omitzero"`
	CompletedAt      int64             `json:"completed_at,omitzero"`
	FailedAt         int64             `json:"failed_at,omitzero"`
	ExpiredAt        int64             `json:"expired_at,omitzero"`
	CancellingAt     int64             `json:"cancelling_at,omitzero"`
	CancelledAt      int64             `json:"cancelled_at,omitzero"`
	RequestCounts    *RequestCounts    `json:"request_counts,omitzero"`
	Metadata         map[string]string `json:"metadata,omitzero"`
}

// BatchesService runs asynchronous request batches.
type BatchesService struct {
	client *Client
}

func newBatchesService(client *Client) *BatchesService {
	return &BatchesService{client: client}
}

// Create starts a batch.
func (s *BatchesService) Create(ctx context.Context, req *BatchRequest) (*Batch, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var resp Batch
	err := s.client.http.doJSON(ctx, &request{
		op:     "batches.create",
		method: http.MethodPost,
		path:   "batches",
		body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Retrieve returns a batch.
func (s *BatchesService) Retrieve(ctx context.Context, id string) (*Batch, error) {
	return s.byID(ctx, "batches.retrieve", http.MethodGet, id, "")
}

// Cancel cancels an in-progress batch.
func (s *BatchesService) Cancel(ctx context.Context, id string) (*Batch, error) {
	return s.byID(ctx, "batches.cancel", http.MethodPost, id, "/cancel")
}

// List pages through batches. Only Limit and After apply.
func (s *BatchesService) List(ctx context.Context, params *ListParams) (*List[*Batch], error) {
	var q query
	if params != nil {
		q = q.addInt("limit", params.Limit)
		q = q.add("after", params.After)
	}
	var resp List[*Batch]
	err := s.client.http.doJSON(ctx, &request{
		op:     "batches.list",
		method: http.MethodGet,
		path:   "batches",
		query:  q,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *BatchesService) byID(ctx context.Context, op, method, id, suffix string) (*Batch, error) {
	if id == "" {
		return nil, configErrorf("batch id is required")
	}
	var resp Batch
	err := s.client.http.doJSON(ctx, &request{
		op:     op,
		method: method,
		path:   "batches/" + url.PathEscape(id) + suffix,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
