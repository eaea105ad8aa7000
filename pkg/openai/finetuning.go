package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// HyperParam is a fine-tuning hyperparameter: either "auto" or a number.
type HyperParam struct {
	auto  bool
	value float64
}

// HyperAuto lets the server choose the value.
func HyperAuto() *HyperParam { return &HyperParam{auto: true} }

// HyperValue fixes the hyperparameter to v.
func HyperValue(v float64) *HyperParam { return &HyperParam{value: v} }

// IsAuto reports whether the server chooses the value.
func (h *HyperParam) IsAuto() bool { return h.auto }

// Float returns the fixed value.
func (h *HyperParam) Float() float64 { return h.value }

func (h *HyperParam) String() string {
	if h.auto {
		return "auto"
	}
	return strconv.FormatFloat(h.value, 'g', -1, 64)
}

// MarshalJSON emits "auto" or a number.
func (h HyperParam) MarshalJSON() ([]byte, error) {
	if h.auto {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(h.value)
}

// UnmarshalJSON accepts "auto" or a number.
func (h *HyperParam) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != "auto" {
			return fmt.Errorf("hyperparameter %q is not auto", s)
		}
		*h = HyperParam{auto: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*h = HyperParam{value: v}
	return nil
}

// Hyperparameters tune a fine-tuning job. Beta applies to DPO only.
type Hyperparameters struct {
	NEpochs                *HyperParam `json:"n_epochs,omitzero"`
	BatchSize              *HyperParam `json:"batch_size,omitzero"`
	LearningRateMultiplier *HyperParam `json:"learning_rate_multiplier,omitzero"`
	Beta                   *HyperParam `json:"beta,omitzero"`
}

// MethodType selects the fine-tuning method.
type MethodType string

const (
	MethodSupervised MethodType = "supervised"
	MethodDPO        MethodType = "dpo"
)

// MethodSettings holds per-method hyperparameters.
type MethodSettings struct {
	Hyperparameters *Hyperparameters `json:"hyperparameters,omitzero"`
}

// Method is the nested method configuration of a job.
type Method struct {
	Type       MethodType      `json:"type"`
	Supervised *MethodSettings `json:"supervised,omitzero"`
	DPO        *MethodSettings `json:"dpo,omitzero"`
}

// SupervisedMethod returns a supervised method config.
func SupervisedMethod(hp *Hyperparameters) *Method {
	return &Method{Type: MethodSupervised, Supervised: &MethodSettings{Hyperparameters: hp}}
}

// DPOMethod returns a direct preference optimization config.
func DPOMethod(hp *Hyperparameters) *Method {
	return &Method{Type: MethodDPO, DPO: &MethodSettings{Hyperparameters: hp}}
}

func (m *Method) validate() error {
	if m == nil {
		return nil
	}
	switch m.Type {
	case MethodSupervised:
		if m.DPO != nil {
			return configErrorf("supervised method carries dpo settings")
		}
	case MethodDPO:
		if m.Supervised != nil {
			return configErrorf("dpo method carries supervised settings")
		}
	default:
		return configErrorf("invalid fine-tuning method %q", m.Type)
	}
	return nil
}

// Integration reports job progress to a third-party service.
type Integration struct {
	Type  string          `json:"type"`
	WandB json.RawMessage `json:"wandb,omitzero"`
}

// FineTuningRequest creates a fine-tuning job.
type FineTuningRequest struct {
	Model          string         `json:"model"`
	TrainingFile   string         `json:"training_file"`
	ValidationFile string         `json:"validation_file,omitzero"`
	Suffix         string         `json:"suffix,omitzero"`
	Seed           *int64         `json:"seed,omitzero"`
	Method         *Method        `json:"method,omitzero"`
	Integrations   []*Integration `json:"integrations,omitzero"`
}

// NewFineTuningRequest returns a request for model trained on file.
func NewFineTuningRequest(model, trainingFile string) *FineTuningRequest {
	return &FineTuningRequest{Model: model, TrainingFile: trainingFile}
}

// WithValidationFile sets the validation file id.
func (r *FineTuningRequest) WithValidationFile(id string) *FineTuningRequest {
	r.ValidationFile = id
	return r
}

// WithSuffix sets the fine-tuned model name suffix.
func (r *FineTuningRequest) WithSuffix(suffix string) *FineTuningRequest {
	r.Suffix = suffix
	return r
}

// WithSeed sets the seed.
func (r *FineTuningRequest) WithSeed(seed int64) *FineTuningRequest {
	r.Seed = &seed
	return r
}

// WithMethod sets the method config.
func (r *FineTuningRequest) WithMethod(m *Method) *FineTuningRequest {
	r.Method = m
	return r
}

// WithIntegrations sets reporting integrations.
func (r *FineTuningRequest) WithIntegrations(in ...*Integration) *FineTuningRequest {
	r.Integrations = in
	return r
}

func (r *FineTuningRequest) validate() error {
	if r.Model == "" {
		return configErrorf("fine-tuning model is required")
	}
	if r.TrainingFile == "" {
		return configErrorf("fine-tuning training file is required")
	}
	return r.Method.validate()
}

// FineTuningStatus is the lifecycle state of a job.
type FineTuningStatus string

const (
	FineTuningValidatingFiles FineTuningStatus = "validating_files"
	FineTuningQueued          FineTuningStatus = "queued"
	FineTuningRunning         FineTuningStatus = "running"
	FineTuningSucceeded       FineTuningStatus = "succeeded"
	FineTuningFailed          FineTuningStatus = "failed"
	FineTuningCancelled       FineTuningStatus = "cancelled"
)

// FineTuningJob is a fine-tuning job.
type FineTuningJob struct {
	ID                 string           `json:"id"`
	Object             string           `json:"object"`
	Model              string           `json:"model"`
	CreatedAt          int64            `json:"created_at"`
	FinishedAt         int64            `json:"finished_at,omitzero"`
	FineTunedModel     string           `json:"fine_tuned_model,omitzero"`
	OrganizationID     string           `json:"organization_id"`
	ResultFiles        []string         `json:"result_files"`
	Status             FineTuningStatus `json:"status"`
	ValidationFile     string           `json:"validation_file,omitzero"`
	TrainingFile       string           `json:"training_file"`
	Hyperparameters    *Hyperparameters `json:"hyperparameters,omitzero"`
	TrainedTokens      int64            `json:"trained_tokens,omitzero"`
	Error              *APIError        `json:"error,omitzero"`
	Seed               int64            `json:"seed"`
	EstimatedFinish    int64            `json:"estimated_finish,omitzero"`
	Integrations       []*Integration   `json:"integrations,omitzero"`
	Method             *Method          `json:"method,omitzero"`
	UserProvidedSuffix string           `json:"user_provided_suffix,omitzero"`
}

// FineTuningEvent is a job log entry.
type FineTuningEvent struct {
	ID        string          `json:"id"`
	Object    string          `json:"object"`
	CreatedAt int64           `json:"created_at"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitzero"`
	Type      string          `json:"type,omitzero"`
}

// CheckpointMetrics are the training metrics at a checkpoint.
type CheckpointMetrics struct {
	Step                       float64 `json:"step"`
	TrainLoss                  float64 `json:"train_loss"`
	TrainMeanTokenAccuracy     float64 `json:"train_mean_token_accuracy"`
	ValidLoss                  float64 `json:"valid_loss,omitzero"`
	ValidMeanTokenAccuracy     float64 `json:"valid_mean_token_accuracy,omitzero"`
	FullValidLoss              float64 `json:"full_valid_loss,omitzero"`
	FullValidMeanTokenAccuracy float64 `json:"full_valid_mean_token_accuracy,omitzero"`
}

// FineTuningCheckpoint is an intermediate model snapshot.
type FineTuningCheckpoint struct {
	ID                       string             `json:"id"`
	Object                   string             `json:"object"`
	CreatedAt                int64              `json:"created_at"`
	FineTuningJobID          string             `json:"fine_tuning_job_id"`
	FineTunedModelCheckpoint string             `json:"fine_tuned_model_checkpoint"`
	StepNumber               int                `json:"step_number"`
	Metrics                  *CheckpointMetrics `json:"metrics,omitzero"`
}

// FineTuningService manages fine-tuning jobs.
type FineTuningService struct {
	client *Client
}

func newFineTuningService(client *Client) *FineTuningService {
	return &FineTuningService{client: client}
}

// Create starts a job.
func (s *FineTuningService) Create(ctx context.Context, req *FineTuningRequest) (*FineTuningJob, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var resp FineTuningJob
	err := s.client.http.doJSON(ctx, &request{
		op:     "finetuning.create",
		method: http.MethodPost,
		path:   "fine_tuning/jobs",
		body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Retrieve returns a job.
func (s *FineTuningService) Retrieve(ctx context.Context, id string) (*FineTuningJob, error) {
	return s.job(ctx, "finetuning.retrieve", http.MethodGet, id, "")
}

// Cancel cancels a running job.
func (s *FineTuningService) Cancel(ctx context.Context, id string) (*FineTuningJob, error) {
	return s.job(ctx, "finetuning.cancel", http.MethodPost, id, "/cancel")
}

// List pages through jobs.
func (s *FineTuningService) List(ctx context.Context, params *ListParams) (*List[*FineTuningJob], error) {
	var resp List[*FineTuningJob]
	if err := s.list(ctx, "finetuning.list", "fine_tuning/jobs", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListEvents pages through the events of a job.
func (s *FineTuningService) ListEvents(ctx context.Context, id string, params *ListParams) (*List[*FineTuningEvent], error) {
	if id == "" {
		return nil, configErrorf("fine-tuning job id is required")
	}
	var resp List[*FineTuningEvent]
	path := "fine_tuning/jobs/" + url.PathEscape(id) + "/events"
	if err := s.list(ctx, "finetuning.events", path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCheckpoints pages through the checkpoints of a job.
func (s *FineTuningService) ListCheckpoints(ctx context.Context, id string, params *ListParams) (*List[*FineTuningCheckpoint], error) {
	if id == "" {
		return nil, configErrorf("fine-tuning job id is required")
	}
	var resp List[*FineTuningCheckpoint]
	path := "fine_tuning/jobs/" + url.PathEscape(id) + "/checkpoints"
	if err := s.list(ctx, "finetuning.checkpoints", path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *FineTuningService) list(ctx context.Context, op, path string, params *ListParams, result any) error {
	var q query
	if params != nil {
		q = q.addInt("limit", params.Limit)
		q = q.add("after", params.After)
	}
	return s.client.http.doJSON(ctx, &request{
		op:     op,
		method: http.MethodGet,
		path:   path,
		query:  q,
	}, result)
}

func (s *FineTuningService) job(ctx context.Context, op, method, id, suffix string) (*FineTuningJob, error) {
	if id == "" {
		return nil, configErrorf("fine-tuning job id is required")
	}
	var resp FineTuningJob
	err := s.client.http.doJSON(ctx, &request{
		op:     op,
		method: method,
		path:   "fine_tuning/jobs/" + url.PathEscape(id) + suffix,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
