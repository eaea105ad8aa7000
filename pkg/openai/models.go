package openai

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Well-known model ids. Any other id string is accepted as-is.
const (
	ModelGPT52             = "gpt-5.2"
	ModelGPT52Pro          = "gpt-5.2-pro"
	ModelGPT51             = "gpt-5.1"
	ModelGPT5Mini          = "gpt-5-mini"
	ModelGPT41             = "gpt-4.1"
	ModelGPT41Mini         = "gpt-4.1-mini"
	ModelGPT41Nano         = "gpt-4.1-nano"
	ModelGPT4o             = "gpt-4o"
	ModelGPT4oMini         = "gpt-4o-mini"
	ModelGPT4oAudioPreview = "gpt-4o-audio-preview"
	ModelGPT35Turbo        = "gpt-3.5-turbo"
	ModelO1                = "o1"
	ModelO3                = "o3"
	ModelO3Mini            = "o3-mini"
	ModelO4Mini            = "o4-mini"

	ModelTextEmbedding3Small = "text-embedding-3-small"
	ModelTextEmbedding3Large = "text-embedding-3-large"
	ModelTextEmbeddingAda002 = "text-embedding-ada-002"

	ModelRealtimePreview     = "gpt-4o-realtime-preview"
	ModelRealtimeMiniPreview = "gpt-4o-mini-realtime-preview"

	ModelTTS1            = "tts-1"
	ModelTTS1HD          = "tts-1-hd"
	ModelGPT4oMiniTTS    = "gpt-4o-mini-tts"
	ModelWhisper1        = "whisper-1"
	ModelGPT4oTranscribe = "gpt-4o-transcribe"

	ModelDALLE2    = "dall-e-2"
	ModelDALLE3    = "dall-e-3"
	ModelGPTImage1 = "gpt-image-1"

	ModelOmniModerationLatest = "omni-moderation-latest"
)

// reasoningPrefixes identify reasoning model families.
var reasoningPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

// IsReasoningModel reports whether id belongs to a reasoning family.
func IsReasoningModel(id string) bool {
	for _, p := range reasoningPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// RestrictionKind says how a sampling parameter is constrained.
type RestrictionKind int

const (
	// RestrictionAny accepts any value in the documented range.
	RestrictionAny RestrictionKind = iota
	// RestrictionFixed accepts only Value.
	RestrictionFixed
	// RestrictionUnsupported rejects the parameter.
	RestrictionUnsupported
)

// ParameterRestriction constrains one numeric parameter.
type ParameterRestriction struct {
	Kind  RestrictionKind
	Value float64
}

// Allows reports whether v may be sent.
func (r ParameterRestriction) Allows(v float64) bool {
	switch r.Kind {
	case RestrictionAny:
		return true
	case RestrictionFixed:
		return v == r.Value
	default:
		return false
	}
}

// ParameterSupport lists which sampling parameters a model accepts.
type ParameterSupport struct {
	Temperature      ParameterRestriction
	TopP             ParameterRestriction
	FrequencyPenalty ParameterRestriction
	PresencePenalty  ParameterRestriction
	Logprobs         bool
	TopLogprobs      bool
	LogitBias        bool
	MultipleChoices  bool
	Reasoning        bool
}

// ParameterSupportFor returns the parameter support of a model id.
// Reasoning models accept temperature and top_p only at 1.0, penalties
// only at 0, and no logprobs, logit_bias or n > 1.
func ParameterSupportFor(id string) ParameterSupport {
	if !IsReasoningModel(id) {
		return ParameterSupport{
			Logprobs:        true,
			TopLogprobs:     true,
			LogitBias:       true,
			MultipleChoices: true,
		}
	}
	return ParameterSupport{
		Temperature:      ParameterRestriction{Kind: RestrictionFixed, Value: 1},
		TopP:             ParameterRestriction{Kind: RestrictionFixed, Value: 1},
		FrequencyPenalty: ParameterRestriction{Kind: RestrictionFixed, Value: 0},
		PresencePenalty:  ParameterRestriction{Kind: RestrictionFixed, Value: 0},
		Reasoning:        true,
	}
}

// Model is one catalog entry.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the response of List.
type ModelList struct {
	Object string   `json:"object"`
	Data   []*Model `json:"data"`
}

// DeleteResponse is returned by every delete endpoint.
type DeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// ModelsService provides the model catalog.
type ModelsService struct {
	client *Client
}

func newModelsService(client *Client) *ModelsService {
	return &ModelsService{client: client}
}

// List returns every model visible to the key.
func (s *ModelsService) List(ctx context.Context) (*ModelList, error) {
	var resp ModelList
	err := s.client.http.doJSON(ctx, &request{op: "models.list", method: http.MethodGet, path: "models"}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Retrieve returns one model.
func (s *ModelsService) Retrieve(ctx context.Context, id string) (*Model, error) {
	if id == "" {
		return nil, configErrorf("model id is required")
	}
	var resp Model
	err := s.client.http.doJSON(ctx, &request{
		op:     "models.retrieve",
		method: http.MethodGet,
		path:   "models/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete deletes a fine-tuned model owned by the caller.
func (s *ModelsService) Delete(ctx context.Context, id string) (*DeleteResponse, error) {
	if id == "" {
		return nil, configErrorf("model id is required")
	}
	var resp DeleteResponse
	err := s.client.http.doJSON(ctx, &request{
		op:     "models.delete",
		method: http.MethodDelete,
		path:   "models/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
