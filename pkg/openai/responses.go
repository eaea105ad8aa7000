package openai

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// ReasoningEffort bounds how much a reasoning model thinks.
type ReasoningEffort string

const (
	ReasoningEffortNone    ReasoningEffort = "none"
	ReasoningEffortMinimal ReasoningEffort = "minimal"
	ReasoningEffortLow     ReasoningEffort = "low"
	ReasoningEffortMedium  ReasoningEffort = "medium"
	ReasoningEffortHigh    ReasoningEffort = "high"
	ReasoningEffortXHigh   ReasoningEffort = "xhigh"
)

func (e ReasoningEffort) valid() bool {
	switch e {
	case "", ReasoningEffortNone, ReasoningEffortMinimal, ReasoningEffortLow,
		ReasoningEffortMedium, ReasoningEffortHigh, ReasoningEffortXHigh:
		return true
	}
	return false
}

// ReasoningSummary selects the reasoning summary detail.
type ReasoningSummary string

const (
	ReasoningSummaryAuto     ReasoningSummary = "auto"
	ReasoningSummaryConcise  ReasoningSummary = "concise"
	ReasoningSummaryDetailed ReasoningSummary = "detailed"
)

// Reasoning configures reasoning models.
type Reasoning struct {
	Effort  ReasoningEffort  `json:"effort,omitzero"`
	Summary ReasoningSummary `json:"summary,omitzero"`
}

func (r *Reasoning) validate() error {
	if r == nil {
		return nil
	}
	if !r.Effort.valid() {
		return configErrorf("invalid reasoning effort %q", r.Effort)
	}
	switch r.Summary {
	case "", ReasoningSummaryAuto, ReasoningSummaryConcise, ReasoningSummaryDetailed:
		return nil
	}
	return configErrorf("invalid reasoning summary %q", r.Summary)
}

// Truncation is the context overflow strategy.
type Truncation string

const (
	TruncationAuto     Truncation = "auto"
	TruncationDisabled Truncation = "disabled"
)

// TextVerbosity hints how long the answer should be.
type TextVerbosity string

const (
	VerbosityLow    TextVerbosity = "low"
	VerbosityMedium TextVerbosity = "medium"
	VerbosityHigh   TextVerbosity = "high"
)

// Include names extra output the Responses API should return.
type Include string

const (
	IncludeWebSearchResults          Include = "web_search_call.results"
	IncludeCodeInterpreterOutputs    Include = "code_interpreter_call.outputs"
	IncludeComputerCallImageURL      Include = "computer_call_output.output.image_url"
	IncludeFileSearchResults         Include = "file_search_call.results"
	IncludeInputImageURL             Include = "message.input_image.image_url"
	IncludeOutputTextLogprobs        Include = "message.output_text.logprobs"
	IncludeReasoningEncryptedContent Include = "reasoning.encrypted_content"
)

func (i Include) valid() bool {
	switch i {
	case IncludeWebSearchResults, IncludeCodeInterpreterOutputs, IncludeComputerCallImageURL,
		IncludeFileSearchResults, IncludeInputImageURL, IncludeOutputTextLogprobs,
		IncludeReasoningEncryptedContent:
		return true
	}
	return false
}

// ResponsesRequest is a request to the Responses API. Exactly one of Input
// and Messages must be set.
type ResponsesRequest struct {
	Model string

	Input    string
	Messages []Message

	Instructions string
	Tools        []*Tool
	ToolChoice   *ToolChoice

	// Format is the text.format structured output wrapper.
	Format    *JSONSchema
	Verbosity TextVerbosity

	Temperature *float64
	TopP        *float64
	TopLogprobs *int

	MaxOutputTokens *int
	// MaxToolCalls is forwarded as given; the server enforces it.
	MaxToolCalls *int

	Metadata          map[string]any
	ParallelToolCalls *bool
	Include           []Include

	Background         *bool
	Conversation       string
	PreviousResponseID string
	Reasoning          *Reasoning
	SafetyIdentifier   string
	ServiceTier        string
	Store              *bool
	StreamOptions      *StreamOptions
	Truncation         Truncation
	PromptCacheKey     string
	User               string
}

// NewResponsesRequest returns a request with plain text input.
func NewResponsesRequest(model, input string) *ResponsesRequest {
	return &ResponsesRequest{Model: model, Input: input}
}

// WithModel sets the model id.
func (r *ResponsesRequest) WithModel(model string) *ResponsesRequest {
	r.Model = model
	return r
}

// WithInput sets plain text input.
func (r *ResponsesRequest) WithInput(input string) *ResponsesRequest {
	r.Input = input
	return r
}

// WithMessages sets message input. msgs is not modified.
func (r *ResponsesRequest) WithMessages(msgs ...Message) *ResponsesRequest {
	r.Messages = msgs
	return r
}

// WithInstructions sets the system-level instructions.
func (r *ResponsesRequest) WithInstructions(s string) *ResponsesRequest {
	r.Instructions = s
	return r
}

// WithTools sets the available tools.
func (r *ResponsesRequest) WithTools(tools ...*Tool) *ResponsesRequest {
	r.Tools = tools
	return r
}

// WithToolChoice sets the tool selection policy.
func (r *ResponsesRequest) WithToolChoice(c *ToolChoice) *ResponsesRequest {
	r.ToolChoice = c
	return r
}

// WithFormat sets the structured output format.
func (r *ResponsesRequest) WithFormat(f *JSONSchema) *ResponsesRequest {
	r.Format = f
	return r
}

// WithVerbosity sets text verbosity.
func (r *ResponsesRequest) WithVerbosity(v TextVerbosity) *ResponsesRequest {
	r.Verbosity = v
	return r
}

// WithTemperature sets the sampling temperature.
func (r *ResponsesRequest) WithTemperature(t float64) *ResponsesRequest {
	r.Temperature = &t
	return r
}

// WithTopP sets nucleus sampling.
func (r *ResponsesRequest) WithTopP(p float64) *ResponsesRequest {
	r.TopP = &p
	return r
}

// WithTopLogprobs sets how many alternatives to report per token.
func (r *ResponsesRequest) WithTopLogprobs(n int) *ResponsesRequest {
	r.TopLogprobs = &n
	return r
}

// WithMaxOutputTokens bounds generated tokens.
func (r *ResponsesRequest) WithMaxOutputTokens(n int) *ResponsesRequest {
	r.MaxOutputTokens = &n
	return r
}

// WithMaxToolCalls bounds built-in tool calls.
func (r *ResponsesRequest) WithMaxToolCalls(n int) *ResponsesRequest {
	r.MaxToolCalls = &n
	return r
}

// WithMetadata sets stored metadata.
func (r *ResponsesRequest) WithMetadata(md map[string]any) *ResponsesRequest {
	r.Metadata = md
	return r
}

// WithParallelToolCalls toggles parallel tool calls.
func (r *ResponsesRequest) WithParallelToolCalls(enabled bool) *ResponsesRequest {
	r.ParallelToolCalls = &enabled
	return r
}

// WithInclude requests extra output.
func (r *ResponsesRequest) WithInclude(inc ...Include) *ResponsesRequest {
	r.Include = inc
	return r
}

// WithBackground runs the response asynchronously.
func (r *ResponsesRequest) WithBackground(enabled bool) *ResponsesRequest {
	r.Background = &enabled
	return r
}

// WithConversation attaches the response to a conversation.
func (r *ResponsesRequest) WithConversation(id string) *ResponsesRequest {
	r.Conversation = id
	return r
}

// WithPreviousResponseID links this turn to an earlier response.
func (r *ResponsesRequest) WithPreviousResponseID(id string) *ResponsesRequest {
	r.PreviousResponseID = id
	return r
}

// WithReasoning configures reasoning.
func (r *ResponsesRequest) WithReasoning(effort ReasoningEffort, summary ReasoningSummary) *ResponsesRequest {
	r.Reasoning = &Reasoning{Effort: effort, Summary: summary}
	return r
}

// WithSafetyIdentifier sets the end-user safety identifier.
func (r *ResponsesRequest) WithSafetyIdentifier(id string) *ResponsesRequest {
	r.SafetyIdentifier = id
	return r
}

// WithServiceTier sets the service tier.
func (r *ResponsesRequest) WithServiceTier(tier string) *ResponsesRequest {
	r.ServiceTier = tier
	return r
}

// WithStore sets whether the response is stored.
func (r *ResponsesRequest) WithStore(store bool) *ResponsesRequest {
	r.Store = &store
	return r
}

// WithTruncation sets the truncation strategy.
func (r *ResponsesRequest) WithTruncation(t Truncation) *ResponsesRequest {
	r.Truncation = t
	return r
}

// WithPromptCacheKey sets the prompt cache key.
func (r *ResponsesRequest) WithPromptCacheKey(key string) *ResponsesRequest {
	r.PromptCacheKey = key
	return r
}

// WithUser sets the end-user identifier.
func (r *ResponsesRequest) WithUser(user string) *ResponsesRequest {
	r.User = user
	return r
}

type textConfigWire struct {
	Format    *JSONSchema   `json:"format,omitzero"`
	Verbosity TextVerbosity `json:"verbosity,omitzero"`
}

type responsesRequestWire struct {
	Model string `json:"model"`
	Input any    `json:"input"`

	Instructions string              `json:"instructions,omitzero"`
	Tools        []responsesToolWire `json:"tools,omitzero"`
	ToolChoice   any                 `json:"tool_choice,omitempty"`
	Text         *textConfigWire     `json:"text,omitzero"`

	Temperature *float64 `json:"temperature,omitzero"`
	TopP        *float64 `json:"top_p,omitzero"`
	TopLogprobs *int     `json:"top_logprobs,omitzero"`

	MaxOutputTokens *int `json:"max_output_tokens,omitzero"`
	MaxToolCalls    *int `json:"max_tool_calls,omitzero"`

	Metadata          map[string]any `json:"metadata,omitzero"`
	ParallelToolCalls *bool          `json:"parallel_tool_calls,omitzero"`
	Include           []Include      `json:"include,omitzero"`

	Background         *bool          `json:"background,omitzero"`
	Conversation       string         `json:"conversation,omitzero"`
	PreviousResponseID string         `json:"previous_response_id,omitzero"`
	Reasoning          *Reasoning     `json:"reasoning,omitzero"`
	SafetyIdentifier   string         `json:"safety_identifier,omitzero"`
	ServiceTier        string         `json:"service_tier,omitzero"`
	Store              *bool          `json:"store,omitzero"`
	Stream             bool           `json:"stream,omitzero"`
	StreamOptions      *StreamOptions `json:"stream_options,omitzero"`
	Truncation         Truncation     `json:"truncation,omitzero"`
	PromptCacheKey     string         `json:"prompt_cache_key,omitzero"`
	User               string         `json:"user,omitzero"`
}

// lower validates r and builds its wire shape. r is not modified.
func (r *ResponsesRequest) lower(logger *zap.Logger, stream bool) (*responsesRequestWire, error) {
	if r.Model == "" {
		return nil, configErrorf("responses model is required")
	}
	hasText, hasMessages := r.Input != "", len(r.Messages) > 0
	switch {
	case hasText && hasMessages:
		return nil, configErrorf("input text and messages are mutually exclusive")
	case !hasText && !hasMessages:
		return nil, configErrorf("responses input is empty")
	}
	if r.Conversation != "" && r.PreviousResponseID != "" {
		return nil, configErrorf("conversation and previous_response_id are mutually exclusive")
	}
	if err := r.Reasoning.validate(); err != nil {
		return nil, err
	}
	for _, inc := range r.Include {
		if !inc.valid() {
			return nil, configErrorf("invalid include value %q", inc)
		}
	}
	switch r.Truncation {
	case "", TruncationAuto, TruncationDisabled:
	default:
		return nil, configErrorf("invalid truncation %q", r.Truncation)
	}
	switch r.Verbosity {
	case "", VerbosityLow, VerbosityMedium, VerbosityHigh:
	default:
		return nil, configErrorf("invalid text verbosity %q", r.Verbosity)
	}

	var input any = r.Input
	if hasMessages {
		items, err := responsesMessages(r.Messages)
		if err != nil {
			return nil, err
		}
		input = items
	}
	tools, err := responsesTools(r.Tools)
	if err != nil {
		return nil, err
	}

	w := &responsesRequestWire{
		Model:              r.Model,
		Input:              input,
		Instructions:       r.Instructions,
		Tools:              tools,
		ToolChoice:         r.ToolChoice.flatWire(),
		Temperature:        r.Temperature,
		TopP:               r.TopP,
		TopLogprobs:        r.TopLogprobs,
		MaxOutputTokens:    r.MaxOutputTokens,
		MaxToolCalls:       r.MaxToolCalls,
		Metadata:           r.Metadata,
		ParallelToolCalls:  r.ParallelToolCalls,
		Include:            r.Include,
		Background:         r.Background,
		Conversation:       r.Conversation,
		PreviousResponseID: r.PreviousResponseID,
		Reasoning:          r.Reasoning,
		SafetyIdentifier:   r.SafetyIdentifier,
		ServiceTier:        r.ServiceTier,
		Store:              r.Store,
		Stream:             stream,
		Truncation:         r.Truncation,
		PromptCacheKey:     r.PromptCacheKey,
		User:               r.User,
	}
	if stream {
		w.StreamOptions = r.StreamOptions
	}
	if r.Format != nil || r.Verbosity != "" {
		text := &textConfigWire{Verbosity: r.Verbosity}
		if r.Format != nil {
			if err := r.Format.validate(); err != nil {
				return nil, err
			}
			f := r.Format.Clone()
			if f.Kind == SchemaKindChat {
				f.Kind = SchemaKindJSONSchema
			}
			text.Format = f
		}
		w.Text = text
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
	if w.TopLogprobs != nil && !sup.TopLogprobs {
		w.TopLogprobs = nil
		drop("top_logprobs")
	}
	return w, nil
}

// OutputContent is one part of a message output item.
type OutputContent struct {
	Type        string            `json:"type"`
	Text        string            `json:"text,omitzero"`
	Refusal     string            `json:"refusal,omitzero"`
	Annotations []json.RawMessage `json:"annotations,omitzero"`
	Logprobs    json.RawMessage   `json:"logprobs,omitzero"`
}

// OutputItem is one heterogeneous element of Response.Output. Fields that
// do not apply to Type are empty; Raw holds the full item.
type OutputItem struct {
	ID     string `json:"id,omitzero"`
	Type   string `json:"type"`
	Role   Role   `json:"role,omitzero"`
	Status string `json:"status,omitzero"`

	// message
	Content []OutputContent `json:"content,omitzero"`

	// function_call
	CallID    string `json:"call_id,omitzero"`
	Name      string `json:"name,omitzero"`
	Arguments string `json:"arguments,omitzero"`

	// reasoning
	Summary          json.RawMessage `json:"summary,omitzero"`
	EncryptedContent string          `json:"encrypted_content,omitzero"`

	// file_search_call, web_search_call, mcp_call
	Queries     []string        `json:"queries,omitzero"`
	Results     json.RawMessage `json:"results,omitzero"`
	Action      json.RawMessage `json:"action,omitzero"`
	ServerLabel string          `json:"server_label,omitzero"`
	Output      json.RawMessage `json:"output,omitzero"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw item alongside the decoded fields.
func (o *OutputItem) UnmarshalJSON(data []byte) error {
	type plain OutputItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = OutputItem(p)
	o.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Text returns the concatenated output_text parts of a message item.
func (o *OutputItem) Text() string {
	var sb strings.Builder
	for _, c := range o.Content {
		if c.Type == "output_text" {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// ToolCall converts a function_call item.
func (o *OutputItem) ToolCall() (ToolCall, bool) {
	if o.Type != "function_call" {
		return ToolCall{}, false
	}
	return NewToolCall(o.CallID, o.Name, o.Arguments), true
}

// IncompleteDetails explains an incomplete response.
type IncompleteDetails struct {
	Reason string `json:"reason"`
}

// Response is a Responses API result.
type Response struct {
	ID                 string             `json:"id"`
	Object             string             `json:"object"`
	CreatedAt          int64              `json:"created_at"`
	Status             string             `json:"status"`
	Background         bool               `json:"background,omitzero"`
	Error              *APIError          `json:"error,omitzero"`
	IncompleteDetails  *IncompleteDetails `json:"incomplete_details,omitzero"`
	Instructions       json.RawMessage    `json:"instructions,omitzero"`
	MaxOutputTokens    *int               `json:"max_output_tokens,omitzero"`
	MaxToolCalls       *int               `json:"max_tool_calls,omitzero"`
	Model              string             `json:"model"`
	Output             []*OutputItem      `json:"output"`
	ParallelToolCalls  bool               `json:"parallel_tool_calls,omitzero"`
	PreviousResponseID string             `json:"previous_response_id,omitzero"`
	Reasoning          *Reasoning         `json:"reasoning,omitzero"`
	ServiceTier        string             `json:"service_tier,omitzero"`
	Store              bool               `json:"store,omitzero"`
	Temperature        *float64           `json:"temperature,omitzero"`
	TopP               *float64           `json:"top_p,omitzero"`
	Truncation         string             `json:"truncation,omitzero"`
	Usage              *Usage             `json:"usage,omitzero"`
	User               string             `json:"user,omitzero"`
	Metadata           map[string]any     `json:"metadata,omitzero"`
	Conversation       *ConversationRef   `json:"conversation,omitzero"`
}

// ConversationRef names the conversation a response belongs to.
type ConversationRef struct {
	ID string `json:"id"`
}

// OutputText returns the concatenated text of every message item.
func (r *Response) OutputText() string {
	var sb strings.Builder
	for _, o := range r.Output {
		if o.Type == "message" {
			sb.WriteString(o.Text())
		}
	}
	return sb.String()
}

// ToolCalls returns every function_call item in output order.
func (r *Response) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, o := range r.Output {
		if c, ok := o.ToolCall(); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// ResponseStreamEvent is one event of CreateStream. Only the fields that
// apply to Type are set; Raw holds the full event.
type ResponseStreamEvent struct {
	Type           string      `json:"type"`
	SequenceNumber int         `json:"sequence_number"`
	Response       *Response   `json:"response,omitzero"`
	Item           *OutputItem `json:"item,omitzero"`
	ItemID         string      `json:"item_id,omitzero"`
	OutputIndex    int         `json:"output_index"`
	ContentIndex   int         `json:"content_index"`
	Delta          string      `json:"delta,omitzero"`
	Text           string      `json:"text,omitzero"`
	Arguments      string      `json:"arguments,omitzero"`
	Code           string      `json:"code,omitzero"`
	Message        string      `json:"message,omitzero"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw event.
func (e *ResponseStreamEvent) UnmarshalJSON(data []byte) error {
	type plain ResponseStreamEvent
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = ResponseStreamEvent(p)
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// InputItem is an element of a response's input item list.
type InputItem struct {
	ID      string          `json:"id,omitzero"`
	Type    string          `json:"type"`
	Role    Role            `json:"role,omitzero"`
	Status  string          `json:"status,omitzero"`
	Content []OutputContent `json:"content,omitzero"`
	CallID  string          `json:"call_id,omitzero"`
	Output  json.RawMessage `json:"output,omitzero"`
}

// ResponsesService provides operations on the Responses API.
type ResponsesService struct {
	client *Client
}

func newResponsesService(client *Client) *ResponsesService {
	return &ResponsesService{client: client}
}

// Create generates a response.
func (s *ResponsesService) Create(ctx context.Context, req *ResponsesRequest) (*Response, error) {
	body, err := req.lower(s.client.config.logger, false)
	if err != nil {
		return nil, err
	}
	var resp Response
	err = s.client.http.doJSON(ctx, &request{
		op:     "responses.create",
		method: http.MethodPost,
		path:   "responses",
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateStream generates a response as a stream of typed events. The
// final event of a successful stream is "response.completed".
func (s *ResponsesService) CreateStream(ctx context.Context, req *ResponsesRequest) iter.Seq2[*ResponseStreamEvent, error] {
	body, err := req.lower(s.client.config.logger, true)
	if err != nil {
		return func(yield func(*ResponseStreamEvent, error) bool) {
			yield(nil, err)
		}
	}
	return stream[ResponseStreamEvent](ctx, s.client.http, &request{
		op:     "responses.stream",
		method: http.MethodPost,
		path:   "responses",
		body:   body,
	})
}

// Retrieve returns a stored response.
func (s *ResponsesService) Retrieve(ctx context.Context, id string) (*Response, error) {
	return s.byID(ctx, "responses.retrieve", http.MethodGet, id, "")
}

// Cancel cancels a background response.
func (s *ResponsesService) Cancel(ctx context.Context, id string) (*Response, error) {
	return s.byID(ctx, "responses.cancel", http.MethodPost, id, "/cancel")
}

// Delete deletes a stored response.
func (s *ResponsesService) Delete(ctx context.Context, id string) (*DeleteResponse, error) {
	if id == "" {
		return nil, configErrorf("response id is required")
	}
	var resp DeleteResponse
	err := s.client.http.doJSON(ctx, &request{
		op:     "responses.delete",
		method: http.MethodDelete,
		path:   "responses/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListInputItems lists the input items of a stored response.
func (s *ResponsesService) ListInputItems(ctx context.Context, id string, params *ListParams) (*List[*InputItem], error) {
	if id == "" {
		return nil, configErrorf("response id is required")
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	var resp List[*InputItem]
	err := s.client.http.doJSON(ctx, &request{
		op:     "responses.input_items",
		method: http.MethodGet,
		path:   "responses/" + url.PathEscape(id) + "/input_items",
		query:  params.query(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *ResponsesService) byID(ctx context.Context, op, method, id, suffix string) (*Response, error) {
	if id == "" {
		return nil, configErrorf("response id is required")
	}
	var resp Response
	err := s.client.http.doJSON(ctx, &request{
		op:     op,
		method: method,
		path:   "responses/" + url.PathEscape(id) + suffix,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
