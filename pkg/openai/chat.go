package openai

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"slices"

	"go.uber.org/zap"
)

// ResponseFormatType selects how chat output is constrained.
type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// ResponseFormat is the chat response_format field.
type ResponseFormat struct {
	Type       ResponseFormatType `json:"type"`
	JSONSchema *JSONSchema        `json:"json_schema,omitzero"`
}

// JSONMode returns the json_object response format.
func JSONMode() *ResponseFormat {
	return &ResponseFormat{Type: ResponseFormatJSONObject}
}

// StructuredOutput returns a json_schema response format. The wrapper is
// rendered in its chat shape regardless of its Kind.
func StructuredOutput(schema *JSONSchema) *ResponseFormat {
	if schema == nil {
		return &ResponseFormat{Type: ResponseFormatJSONSchema}
	}
	c := schema.Clone()
	c.Kind = SchemaKindChat
	return &ResponseFormat{Type: ResponseFormatJSONSchema, JSONSchema: c}
}

// StreamOptions configures streamed responses.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitzero"`
}

// ChatCompletionRequest is a chat completion request. Build it with
// NewChatRequest and the With setters, or fill the fields directly.
// Optional fields left at their zero value are not sent.
type ChatCompletionRequest struct {
	Model    string
	Messages []Message

	Temperature         *float64
	TopP                *float64
	N                   *int
	Stop                []string
	MaxCompletionTokens *int
	PresencePenalty     *float64
	FrequencyPenalty    *float64
	LogitBias           map[string]int
	Logprobs            *bool
	TopLogprobs         *int
	Seed                *int64
	User                string
	Store               *bool
	Metadata            map[string]string
	ReasoningEffort     ReasoningEffort
	ParallelToolCalls   *bool
	Modalities          []string
	StreamOptions       *StreamOptions

	Tools          []*Tool
	ToolChoice     *ToolChoice
	ResponseFormat *ResponseFormat
}

// NewChatRequest returns a request for model with an initial history.
// The messages slice is copied.
func NewChatRequest(model string, messages ...Message) *ChatCompletionRequest {
	return &ChatCompletionRequest{Model: model, Messages: slices.Clone(messages)}
}

// WithModel sets the model id.
func (r *ChatCompletionRequest) WithModel(model string) *ChatCompletionRequest {
	r.Model = model
	return r
}

// WithMessages replaces the history with a copy of msgs.
func (r *ChatCompletionRequest) WithMessages(msgs []Message) *ChatCompletionRequest {
	r.Messages = slices.Clone(msgs)
	return r
}

// AddMessage appends m without writing into any array the caller shares.
func (r *ChatCompletionRequest) AddMessage(m Message) *ChatCompletionRequest {
	r.Messages = append(slices.Clip(r.Messages), m)
	return r
}

// WithTemperature sets the sampling temperature.
func (r *ChatCompletionRequest) WithTemperature(t float64) *ChatCompletionRequest {
	r.Temperature = &t
	return r
}

// WithTopP sets nucleus sampling.
func (r *ChatCompletionRequest) WithTopP(p float64) *ChatCompletionRequest {
	r.TopP = &p
	return r
}

// WithN sets the number of choices.
func (r *ChatCompletionRequest) WithN(n int) *ChatCompletionRequest {
	r.N = &n
	return r
}

// WithStop sets stop sequences.
func (r *ChatCompletionRequest) WithStop(stop ...string) *ChatCompletionRequest {
	r.Stop = stop
	return r
}

// WithMaxCompletionTokens bounds generated tokens, reasoning included.
func (r *ChatCompletionRequest) WithMaxCompletionTokens(n int) *ChatCompletionRequest {
	r.MaxCompletionTokens = &n
	return r
}

// WithPresencePenalty sets the presence penalty.
func (r *ChatCompletionRequest) WithPresencePenalty(p float64) *ChatCompletionRequest {
	r.PresencePenalty = &p
	return r
}

// WithFrequencyPenalty sets the frequency penalty.
func (r *ChatCompletionRequest) WithFrequencyPenalty(p float64) *ChatCompletionRequest {
	r.FrequencyPenalty = &p
	return r
}

// WithLogitBias sets token biases.
func (r *ChatCompletionRequest) WithLogitBias(bias map[string]int) *ChatCompletionRequest {
	r.LogitBias = bias
	return r
}

// WithLogprobs requests log probabilities.
func (r *ChatCompletionRequest) WithLogprobs(enabled bool) *ChatCompletionRequest {
	r.Logprobs = &enabled
	return r
}

// WithTopLogprobs sets how many alternatives to report per token. Values
// are forwarded unchecked.
func (r *ChatCompletionRequest) WithTopLogprobs(n int) *ChatCompletionRequest {
	r.TopLogprobs = &n
	return r
}

// WithSeed sets the sampling seed.
func (r *ChatCompletionRequest) WithSeed(seed int64) *ChatCompletionRequest {
	r.Seed = &seed
	return r
}

// WithUser sets the end-user identifier.
func (r *ChatCompletionRequest) WithUser(user string) *ChatCompletionRequest {
	r.User = user
	return r
}

// WithStore sets whether the completion is stored.
func (r *ChatCompletionRequest) WithStore(store bool) *ChatCompletionRequest {
	r.Store = &store
	return r
}

// WithMetadata sets stored metadata.
func (r *ChatCompletionRequest) WithMetadata(md map[string]string) *ChatCompletionRequest {
	r.Metadata = md
	return r
}

// WithReasoningEffort sets reasoning effort for reasoning models.
func (r *ChatCompletionRequest) WithReasoningEffort(e ReasoningEffort) *ChatCompletionRequest {
	r.ReasoningEffort = e
	return r
}

// WithParallelToolCalls toggles parallel tool calls.
func (r *ChatCompletionRequest) WithParallelToolCalls(enabled bool) *ChatCompletionRequest {
	r.ParallelToolCalls = &enabled
	return r
}

// WithModalities sets output modalities such as "text" and "audio".
func (r *ChatCompletionRequest) WithModalities(m ...string) *ChatCompletionRequest {
	r.Modalities = m
	return r
}

// WithTools sets the available tools.
func (r *ChatCompletionRequest) WithTools(tools ...*Tool) *ChatCompletionRequest {
	r.Tools = tools
	return r
}

// WithToolChoice sets the tool selection policy.
func (r *ChatCompletionRequest) WithToolChoice(c *ToolChoice) *ChatCompletionRequest {
	r.ToolChoice = c
	return r
}

// WithResponseFormat constrains the output format.
func (r *ChatCompletionRequest) WithResponseFormat(f *ResponseFormat) *ChatCompletionRequest {
	r.ResponseFormat = f
	return r
}

// WithJSONSchema is shorthand for WithResponseFormat(StructuredOutput(s)).
func (r *ChatCompletionRequest) WithJSONSchema(s *JSONSchema) *ChatCompletionRequest {
	r.ResponseFormat = StructuredOutput(s)
	return r
}

type chatRequestWire struct {
	Model    string            `json:"model"`
	Messages []chatMessageWire `json:"messages"`

	Temperature         *float64          `json:"temperature,omitzero"`
	TopP                *float64          `json:"top_p,omitzero"`
	N                   *int              `json:"n,omitzero"`
	Stop                []string          `json:"stop,omitzero"`
	MaxCompletionTokens *int              `json:"max_completion_tokens,omitzero"`
	PresencePenalty     *float64          `json:"presence_penalty,omitzero"`
	FrequencyPenalty    *float64          `json:"frequency_penalty,omitzero"`
	LogitBias           map[string]int    `json:"logit_bias,omitzero"`
	Logprobs            *bool             `json:"logprobs,omitzero"`
	TopLogprobs         *int              `json:"top_logprobs,omitzero"`
	Seed                *int64            `json:"seed,omitzero"`
	User                string            `json:"user,omitzero"`
	Store               *bool             `json:"store,omitzero"`
	Metadata            map[string]string `json:"metadata,omitzero"`
	ReasoningEffort     ReasoningEffort   `json:"reasoning_effort,omitzero"`
	ParallelToolCalls   *bool             `json:"parallel_tool_calls,omitzero"`
	Modalities          []string          `json:"modalities,omitzero"`
	Stream              bool              `json:"stream,omitzero"`
	StreamOptions       *StreamOptions    `json:"stream_options,omitzero"`

	Tools          []chatToolWire  `json:"tools,omitzero"`
	ToolChoice     any             `json:"tool_choice,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitzero"`
}

// lower validates r and builds its wire shape. r is not modified.
func (r *ChatCompletionRequest) lower(logger *zap.Logger, stream bool) (*chatRequestWire, error) {
	if r.Model == "" {
		return nil, configErrorf("chat model is required")
	}
	msgs, err := chatMessages(r.Messages)
	if err != nil {
		return nil, err
	}
	tools, err := chatTools(r.Tools)
	if err != nil {
		return nil, err
	}
	if r.ResponseFormat != nil && r.ResponseFormat.Type == ResponseFormatJSONSchema {
		if r.ResponseFormat.JSONSchema == nil {
			return nil, configErrorf("json_schema response format has no schema")
		}
		if err := r.ResponseFormat.JSONSchema.validate(); err != nil {
			return nil, err
		}
	}
	if !r.ReasoningEffort.valid() {
		return nil, configErrorf("invalid reasoning effort %q", r.ReasoningEffort)
	}

	w := &chatRequestWire{
		Model:               r.Model,
		Messages:            msgs,
		Temperature:         r.Temperature,
		TopP:                r.TopP,
		N:                   r.N,
		Stop:                r.Stop,
		MaxCompletionTokens: r.MaxCompletionTokens,
		PresencePenalty:     r.PresencePenalty,
		FrequencyPenalty:    r.FrequencyPenalty,
		LogitBias:           r.LogitBias,
		Logprobs:            r.Logprobs,
		TopLogprobs:         r.TopLogprobs,
		Seed:                r.Seed,
		User:                r.User,
		Store:               r.Store,
		Metadata:            r.Metadata,
		ReasoningEffort:     r.ReasoningEffort,
		ParallelToolCalls:   r.ParallelToolCalls,
		Modalities:          r.Modalities,
		Stream:              stream,
		StreamOptions:       r.StreamOptions,
		Tools:               tools,
		ToolChoice:          r.ToolChoice.chatWire(),
		ResponseFormat:      r.ResponseFormat,
	}
	if !stream {
		w.StreamOptions = nil
	}

	sup := ParameterSupportFor(r.Model)
	drop := func(param string) {
		logger.Warn("dropping parameter unsupported by model",
			zap.String("model", r.Model), zap.String("param", param))
	}
	if w.Temperature != nil && !sup.Temperature.Allows(*w.Temperature) {
		w.Temperature = nil
		drop("temperature")
	}
	if w.TopP != nil && !sup.TopP.Allows(*w.TopP) {
		w.TopP = nil
		drop("top_p")
	}
	if w.PresencePenalty != nil && !sup.PresencePenalty.Allows(*w.PresencePenalty) {
		w.PresencePenalty = nil
		drop("presence_penalty")
	}
	if w.FrequencyPenalty != nil && !sup.FrequencyPenalty.Allows(*w.FrequencyPenalty) {
		w.FrequencyPenalty = nil
		drop("frequency_penalty")
	}
	if w.Logprobs != nil && !sup.Logprobs {
		w.Logprobs = nil
		drop("logprobs")
	}
	if w.TopLogprobs != nil && !sup.TopLogprobs {
		w.TopLogprobs = nil
		drop("top_logprobs")
	}
	if w.LogitBias != nil && !sup.LogitBias {
		w.LogitBias = nil
		drop("logit_bias")
	}
	if w.N != nil && *w.N > 1 && !sup.MultipleChoices {
		w.N = nil
		drop("n")
	}
	return w, nil
}

// ChatChoice is one completion alternative.
type ChatChoice struct {
	Index        int             `json:"index"`
	Message      Message         `json:"message"`
	FinishReason string          `json:"finish_reason"`
	Logprobs     json.RawMessage `json:"logprobs,omitzero"`
}

// ChatCompletionResponse is the response of Create.
type ChatCompletionResponse struct {
	ID                string        `json:"id"`
	Object            string        `json:"object"`
	Created           int64         `json:"created"`
	Model             string        `json:"model"`
	SystemFingerprint string        `json:"system_fingerprint,omitzero"`
	ServiceTier       string        `json:"service_tier,omitzero"`
	Choices           []*ChatChoice `json:"choices"`
	Usage             *Usage        `json:"usage,omitzero"`
}

// Content returns the text of the first choice.
func (r *ChatCompletionResponse) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content()
}

// ToolCalls returns the tool calls of the first choice.
func (r *ChatCompletionResponse) ToolCalls() []ToolCall {
	if len(r.Choices) == 0 {
		return nil
	}
	return r.Choices[0].Message.ToolCalls
}

// Message returns the assistant message of the first choice, ready to be
// appended to the history with AddMessage.
func (r *ChatCompletionResponse) Message() Message {
	if len(r.Choices) == 0 {
		return Message{Role: RoleAssistant}
	}
	m := r.Choices[0].Message
	if m.Role == "" {
		m.Role = RoleAssistant
	}
	return m
}

// ToolCallDelta is a streamed fragment of a tool call.
type ToolCallDelta struct {
	Index    int          `json:"index"`
	ID       string       `json:"id,omitzero"`
	Type     string       `json:"type,omitzero"`
	Function FunctionCall `json:"function"`
}

// ChatDelta is the incremental message of a streamed choice.
type ChatDelta struct {
	Role      Role            `json:"role,omitzero"`
	Content   string          `json:"content,omitzero"`
	Refusal   string          `json:"refusal,omitzero"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitzero"`
}

// ChatChunkChoice is one choice of a streamed chunk.
type ChatChunkChoice struct {
	Index        int       `json:"index"`
	Delta        ChatDelta `json:"delta"`
	FinishReason string    `json:"finish_reason,omitzero"`
}

// ChatCompletionChunk is one event of CreateStream.
type ChatCompletionChunk struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []*ChatChunkChoice `json:"choices"`
	Usage   *Usage             `json:"usage,omitzero"`
}

// ChatService provides chat completion operations.
type ChatService struct {
	client *Client
}

func newChatService(client *Client) *ChatService {
	return &ChatService{client: client}
}

// Create performs a chat completion.
func (s *ChatService) Create(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := req.lower(s.client.config.logger, false)
	if err != nil {
		return nil, err
	}
	var resp ChatCompletionResponse
	err = s.client.http.doJSON(ctx, &request{
		op:     "chat.create",
		method: http.MethodPost,
		path:   "chat/completions",
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateStream performs a streamed chat completion.
//
// The connection is closed when iteration completes or breaks.
//
// Example:
//
//	for chunk, err := range client.Chat.CreateStream(ctx, req) {
//	    if err != nil {
//	        return err
//	    }
//	    if len(chunk.Choices) > 0 {
//	        fmt.Print(chunk.Choices[0].Delta.Content)
//	    }
//	}
func (s *ChatService) CreateStream(ctx context.Context, req *ChatCompletionRequest) iter.Seq2[*ChatCompletionChunk, error] {
	body, err := req.lower(s.client.config.logger, true)
	if err != nil {
		return func(yield func(*ChatCompletionChunk, error) bool) {
			yield(nil, err)
		}
	}
	return stream[ChatCompletionChunk](ctx, s.client.http, &request{
		op:     "chat.stream",
		method: http.MethodPost,
		path:   "chat/completions",
		body:   body,
	})
}
