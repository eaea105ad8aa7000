package openairealtime

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

// Models supported by the Realtime API.
const (
	ModelGPT4oRealtimePreview             = "gpt-4o-realtime-preview"
	ModelGPT4oRealtimePreview20241217     = "gpt-4o-realtime-preview-2024-12-17"
	ModelGPT4oMiniRealtimePreview         = "gpt-4o-mini-realtime-preview"
	ModelGPT4oMiniRealtimePreview20241217 = "gpt-4o-mini-realtime-preview-2024-12-17"
	ModelGPTRealtime                      = "gpt-realtime"
)

// Audio formats supported by the Realtime API.
const (
	// AudioFormatPCM16 is 16-bit PCM audio at 24kHz, mono, little-endian.
	AudioFormatPCM16 = "pcm16"
	// AudioFormatG711ULaw is G.711 μ-law audio at 8kHz.
	AudioFormatG711ULaw = "g711_ulaw"
	// AudioFormatG711ALaw is G.711 A-law audio at 8kHz.
	AudioFormatG711ALaw = "g711_alaw"
)

// Voice options for audio output.
const (
	VoiceAlloy   = "alloy"
	VoiceAsh     = "ash"
	VoiceBallad  = "ballad"
	VoiceCoral   = "coral"
	VoiceEcho    = "echo"
	VoiceSage    = "sage"
	VoiceShimmer = "shimmer"
	VoiceVerse   = "verse"
)

// VAD modes for turn detection.
const (
	// VADServerVAD ends a turn after a period of silence.
	VADServerVAD = "server_vad"
	// VADSemanticVAD ends a turn when the speaker appears to be done.
	VADSemanticVAD = "semantic_vad"
)

// Eagerness values for semantic VAD.
const (
	EagernessLow    = "low"
	EagernessMedium = "medium"
	EagernessHigh   = "high"
	EagernessAuto   = "auto"
)

// Noise reduction profiles.
const (
	NoiseReductionNearField = "near_field"
	NoiseReductionFarField  = "far_field"
)

// Modality types.
const (
	ModalityText  = "text"
	ModalityAudio = "audio"
)

// Response statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusIncomplete = "incomplete"
	StatusFailed     = "failed"
)

// Item types.
const (
	ItemTypeMessage            = "message"
	ItemTypeFunctionCall       = "function_call"
	ItemTypeFunctionCallOutput = "function_call_output"
)

// ConnectConfig configures a new session.
type ConnectConfig struct {
	// Model is the model ID. Default: gpt-4o-realtime-preview.
	Model string

	// Session, when set and non-empty, is sent as session.update as soon as
	// the session is created.
	Session *SessionConfig
}

// MaxTokens is either a token count or unlimited ("inf").
type MaxTokens struct {
	n   int
	inf bool
}

// Tokens limits output to n tokens.
func Tokens(n int) MaxTokens { return MaxTokens{n: n} }

// InfiniteTokens removes the output limit.
func InfiniteTokens() MaxTokens { return MaxTokens{inf: true} }

// IsZero reports an unset limit.
func (m MaxTokens) IsZero() bool { return m.n == 0 && !m.inf }

// Count returns the limit and false when unlimited.
func (m MaxTokens) Count() (int, bool) { return m.n, !m.inf }

func (m MaxTokens) String() string {
	if m.inf {
		return "inf"
	}
	return strconv.Itoa(m.n)
}

// MarshalJSON emits a number or the string "inf".
func (m MaxTokens) MarshalJSON() ([]byte, error) {
	if m.inf {
		return []byte(`"inf"`), nil
	}
	return []byte(strconv.Itoa(m.n)), nil
}

// UnmarshalJSON accepts a number or the string "inf".
func (m *MaxTokens) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = MaxTokens{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "inf" {
			return fmt.Errorf("max tokens: unexpected string %q", s)
		}
		*m = InfiniteTokens()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("max tokens: %w", err)
	}
	*m = Tokens(n)
	return nil
}

// TranscriptionConfig enables transcription of user audio.
type TranscriptionConfig struct {
	// Model is the transcription model, e.g. whisper-1.
	Model    string `json:"model,omitzero"`
	Language string `json:"language,omitzero"`
	Prompt   string `json:"prompt,omitzero"`
}

// NoiseReduction filters input audio before VAD and the model see it.
type NoiseReduction struct {
	// Type is near_field or far_field.
	Type string `json:"type"`
}

// TurnDetection configures voice activity detection.
type TurnDetection struct {
	// Type is server_vad or semantic_vad.
	Type string `json:"type"`

	// Threshold is the server VAD activation threshold in [0, 1].
	Threshold float64 `json:"threshold,omitzero"`

	PrefixPaddingMs   int `json:"prefix_padding_ms,omitzero"`
	SilenceDurationMs int `json:"silence_duration_ms,omitzero"`

	// CreateResponse and InterruptResponse default to true on the server.
	CreateResponse    *bool `json:"create_response,omitzero"`
	InterruptResponse *bool `json:"interrupt_response,omitzero"`

	// Eagerness is low, medium, high or auto (semantic_vad only).
	Eagerness string `json:"eagerness,omitzero"`
}

// ServerVAD returns silence-based turn detection.
func ServerVAD(threshold float64, prefixPaddingMs, silenceDurationMs int) *TurnDetection {
	return &TurnDetection{
		Type:              VADServerVAD,
		Threshold:         threshold,
		PrefixPaddingMs:   prefixPaddingMs,
		SilenceDurationMs: silenceDurationMs,
	}
}

// SemanticVAD returns intent-based turn detection.
func SemanticVAD(eagerness string) *TurnDetection {
	return &TurnDetection{Type: VADSemanticVAD, Eagerness: eagerness}
}

func (t *TurnDetection) validate() error {
	switch t.Type {
	case VADServerVAD:
		if t.Threshold < 0 || t.Threshold > 1 {
			return configErrorf("turn detection threshold %v outside [0, 1]", t.Threshold)
		}
		if t.Eagerness != "" {
			return configErrorf("eagerness applies only to semantic_vad")
		}
	case VADSemanticVAD:
		switch t.Eagerness {
		case "", EagernessLow, EagernessMedium, EagernessHigh, EagernessAuto:
		default:
			return configErrorf("unknown eagerness %q", t.Eagerness)
		}
	default:
		return configErrorf("unknown turn detection type %q", t.Type)
	}
	return nil
}

// SessionConfig holds session parameters sent with session.update. Zero
// fields are left unchanged on the server.
type SessionConfig struct {
	Modalities        []string
	Instructions      string
	Voice             string
	InputAudioFormat  string
	OutputAudioFormat string

	InputAudioTranscription  *TranscriptionConfig
	InputAudioNoiseReduction *NoiseReduction

	// TurnDetection selects server or semantic VAD. Nil keeps the current
	// setting unless ManualTurns is set.
	TurnDetection *TurnDetection

	// ManualTurns sends "turn_detection": null, disabling VAD. The caller
	// then commits audio and creates responses explicitly.
	ManualTurns bool

	Tools      []*openai.Tool
	ToolChoice *openai.ToolChoice

	Temperature *float64

	MaxResponseOutputTokens MaxTokens
}

// Empty reports a config that would change nothing.
func (c *SessionConfig) Empty() bool {
	return c == nil || (len(c.Modalities) == 0 && c.Instructions == "" && c.Voice == "" &&
		c.InputAudioFormat == "" && c.OutputAudioFormat == "" &&
		c.InputAudioTranscription == nil && c.InputAudioNoiseReduction == nil &&
		c.TurnDetection == nil && !c.ManualTurns && len(c.Tools) == 0 &&
		c.ToolChoice == nil && c.Temperature == nil && c.MaxResponseOutputTokens.IsZero())
}

// WithInstructions sets the system instructions.
func (c *SessionConfig) WithInstructions(instructions string) *SessionConfig {
	c.Instructions = instructions
	return c
}

// WithVoice sets the output voice.
func (c *SessionConfig) WithVoice(voice string) *SessionConfig {
	c.Voice = voice
	return c
}

// WithModalities sets the output modalities.
func (c *SessionConfig) WithModalities(modalities ...string) *SessionConfig {
	c.Modalities = modalities
	return c
}

// WithTurnDetection enables server or semantic VAD.
func (c *SessionConfig) WithTurnDetection(td *TurnDetection) *SessionConfig {
	c.TurnDetection = td
	c.ManualTurns = false
	return c
}

// WithManualTurns disables VAD.
func (c *SessionConfig) WithManualTurns() *SessionConfig {
	c.TurnDetection = nil
	c.ManualTurns = true
	return c
}

// WithTools sets the function tools available to the model.
func (c *SessionConfig) WithTools(tools ...*openai.Tool) *SessionConfig {
	c.Tools = tools
	return c
}

// WithTemperature sets the sampling temperature.
func (c *SessionConfig) WithTemperature(t float64) *SessionConfig {
	c.Temperature = &t
	return c
}

// WithMaxResponseOutputTokens limits each response.
func (c *SessionConfig) WithMaxResponseOutputTokens(m MaxTokens) *SessionConfig {
	c.MaxResponseOutputTokens = m
	return c
}

func (c *SessionConfig) validate() error {
	if c.TurnDetection != nil {
		if c.ManualTurns {
			return configErrorf("turn detection and manual turns are mutually exclusive")
		}
		if err := c.TurnDetection.validate(); err != nil {
			return err
		}
	}
	if r := c.InputAudioNoiseReduction; r != nil && r.Type != NoiseReductionNearField && r.Type != NoiseReductionFarField {
		return configErrorf("unknown noise reduction type %q", r.Type)
	}
	if n, ok := c.MaxResponseOutputTokens.Count(); ok && n < 0 {
		return configErrorf("max response output tokens must be positive")
	}
	return nil
}

// sessionWire is the JSON shape of SessionConfig.
type sessionWire struct {
	Modalities               []string             `json:"modalities,omitzero"`
	Instructions             string               `json:"instructions,omitzero"`
	Voice                    string               `json:"voice,omitzero"`
	InputAudioFormat         string               `json:"input_audio_format,omitzero"`
	OutputAudioFormat        string               `json:"output_audio_format,omitzero"`
	InputAudioTranscription  *TranscriptionConfig `json:"input_audio_transcription,omitzero"`
	InputAudioNoiseReduction *NoiseReduction      `json:"input_audio_noise_reduction,omitzero"`
	TurnDetection            json.RawMessage      `json:"turn_detection,omitzero"`
	Tools                    []Tool               `json:"tools,omitzero"`
	ToolChoice               *openai.ToolChoice   `json:"tool_choice,omitzero"`
	Temperature              *float64             `json:"temperature,omitzero"`
	MaxResponseOutputTokens  MaxTokens            `json:"max_response_output_tokens,omitzero"`
}

// MarshalJSON emits the session.update payload. ManualTurns is sent as an
// explicit null.
func (c SessionConfig) MarshalJSON() ([]byte, error) {
	w := sessionWire{
		Modalities:               c.Modalities,
		Instructions:             c.Instructions,
		Voice:                    c.Voice,
		InputAudioFormat:         c.InputAudioFormat,
		OutputAudioFormat:        c.OutputAudioFormat,
		InputAudioTranscription:  c.InputAudioTranscription,
		InputAudioNoiseReduction: c.InputAudioNoiseReduction,
		ToolChoice:               c.ToolChoice,
		Temperature:              c.Temperature,
		MaxResponseOutputTokens:  c.MaxResponseOutputTokens,
	}
	switch {
	case c.ManualTurns:
		w.TurnDetection = json.RawMessage("null")
	case c.TurnDetection != nil:
		data, err := json.Marshal(c.TurnDetection)
		if err != nil {
			return nil, err
		}
		w.TurnDetection = data
	}
	tools, err := toolsWire(c.Tools)
	if err != nil {
		return nil, err
	}
	w.Tools = tools
	return json.Marshal(w)
}

// Tool is the realtime wire shape of a function tool.
type Tool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitzero"`
	Parameters  *openai.Object `json:"parameters,omitzero"`
}

// toolsWire flattens function tools. MCP tools are not available over a
// realtime session.
func toolsWire(tools []*openai.Tool) ([]Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	out := make([]Tool, 0, len(tools))
	for i, t := range tools {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("tool %d: %w", i, err)
		}
		if t.Kind != openai.ToolKindFunction {
			return nil, configErrorf("tool %d: realtime sessions accept only function tools", i)
		}
		out = append(out, Tool{Type: "function", Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}
	return out, nil
}

// ResponseCreateConfig overrides session parameters for one response.
type ResponseCreateConfig struct {
	Modalities        []string
	Instructions      string
	Voice             string
	OutputAudioFormat string
	Tools             []*openai.Tool
	ToolChoice        *openai.ToolChoice
	Temperature       *float64
	MaxOutputTokens   MaxTokens

	// Conversation is "auto" (default) or "none" for an out-of-band
	// response that is not added to the conversation.
	Conversation string

	Metadata map[string]string

	// Input replaces the conversation as the response's context.
	Input []ConversationItem
}

type responseCreateWire struct {
	Modalities        []string           `json:"modalities,omitzero"`
	Instructions      string             `json:"instructions,omitzero"`
	Voice             string             `json:"voice,omitzero"`
	OutputAudioFormat string             `json:"output_audio_format,omitzero"`
	Tools             []Tool             `json:"tools,omitzero"`
	ToolChoice        *openai.ToolChoice `json:"tool_choice,omitzero"`
	Temperature       *float64           `json:"temperature,omitzero"`
	MaxOutputTokens   MaxTokens          `json:"max_output_tokens,omitzero"`
	Conversation      string             `json:"conversation,omitzero"`
	Metadata          map[string]string  `json:"metadata,omitzero"`
	Input             []ConversationItem `json:"input,omitzero"`
}

// MarshalJSON emits the response field of response.create.
func (c ResponseCreateConfig) MarshalJSON() ([]byte, error) {
	tools, err := toolsWire(c.Tools)
	if err != nil {
		return nil, err
	}
	return json.Marshal(responseCreateWire{
		Modalities:        c.Modalities,
		Instructions:      c.Instructions,
		Voice:             c.Voice,
		OutputAudioFormat: c.OutputAudioFormat,
		Tools:             tools,
		ToolChoice:        c.ToolChoice,
		Temperature:       c.Temperature,
		MaxOutputTokens:   c.MaxOutputTokens,
		Conversation:      c.Conversation,
		Metadata:          c.Metadata,
		Input:             c.Input,
	})
}

func (c *ResponseCreateConfig) validate() error {
	switch c.Conversation {
	case "", "auto", "none":
	default:
		return configErrorf("conversation must be auto or none, got %q", c.Conversation)
	}
	if _, err := toolsWire(c.Tools); err != nil {
		return err
	}
	return nil
}

// SessionResource is the session state reported by the server.
type SessionResource struct {
	ID                       string               `json:"id,omitzero"`
	Object                   string               `json:"object,omitzero"`
	Model                    string               `json:"model,omitzero"`
	ExpiresAt                int64                `json:"expires_at,omitzero"`
	Modalities               []string             `json:"modalities,omitzero"`
	Instructions             string               `json:"instructions,omitzero"`
	Voice                    string               `json:"voice,omitzero"`
	InputAudioFormat         string               `json:"input_audio_format,omitzero"`
	OutputAudioFormat        string               `json:"output_audio_format,omitzero"`
	InputAudioTranscription  *TranscriptionConfig `json:"input_audio_transcription,omitzero"`
	InputAudioNoiseReduction *NoiseReduction      `json:"input_audio_noise_reduction,omitzero"`
	TurnDetection            *TurnDetection       `json:"turn_detection,omitzero"`
	Tools                    []Tool               `json:"tools,omitzero"`
	ToolChoice               json.RawMessage      `json:"tool_choice,omitzero"`
	Temperature              float64              `json:"temperature,omitzero"`
	MaxResponseOutputTokens  MaxTokens            `json:"max_response_output_tokens,omitzero"`
}

// ConversationItem is a message, function call or function call output.
type ConversationItem struct {
	ID     string `json:"id,omitzero"`
	Object string `json:"object,omitzero"`
	Type   string `json:"type,omitzero"`
	Status string `json:"status,omitzero"`

	// Message items.
	Role    string        `json:"role,omitzero"`
	Content []ContentPart `json:"content,omitzero"`

	// Function call items.
	CallID    string `json:"call_id,omitzero"`
	Name      string `json:"name,omitzero"`
	Arguments string `json:"arguments,omitzero"`
	Output    string `json:"output,omitzero"`
}

// TextItem returns a message item with a single text part. Assistant text
// uses the "text" part type, other roles use "input_text".
func TextItem(role openai.Role, text string) ConversationItem {
	typ := "input_text"
	if role == openai.RoleAssistant {
		typ = "text"
	}
	return ConversationItem{
		Type:    ItemTypeMessage,
		Role:    string(role),
		Content: []ContentPart{{Type: typ, Text: text}},
	}
}

// AudioItem returns a user message item holding base64 audio.
func AudioItem(audioBase64, transcript string) ConversationItem {
	return ConversationItem{
		Type:    ItemTypeMessage,
		Role:    string(openai.RoleUser),
		Content: []ContentPart{{Type: "input_audio", Audio: audioBase64, Transcript: transcript}},
	}
}

// FunctionOutputItem returns the result of a function call.
func FunctionOutputItem(callID, output string) ConversationItem {
	return ConversationItem{Type: ItemTypeFunctionCallOutput, CallID: callID, Output: output}
}

// Text concatenates the text and transcript of every content part.
func (it *ConversationItem) Text() string {
	var s string
	for _, p := range it.Content {
		switch {
		case p.Text != "":
			s += p.Text
		case p.Transcript != "":
			s += p.Transcript
		}
	}
	return s
}

func (it *ConversationItem) validate() error {
	switch it.Type {
	case ItemTypeMessage:
		switch openai.Role(it.Role) {
		case openai.RoleUser, openai.RoleAssistant, openai.RoleSystem:
		default:
			return configErrorf("message item has invalid role %q", it.Role)
		}
		if len(it.Content) == 0 {
			return configErrorf("message item has no content")
		}
	case ItemTypeFunctionCall:
		if it.CallID == "" || it.Name == "" {
			return configErrorf("function_call item requires call_id and name")
		}
	case ItemTypeFunctionCallOutput:
		if it.CallID == "" {
			return configErrorf("function_call_output item requires call_id")
		}
	default:
		return configErrorf("unknown item type %q", it.Type)
	}
	return nil
}

// ContentPart is one part of a message item.
type ContentPart struct {
	// Type is input_text, input_audio, item_reference, text or audio.
	Type       string `json:"type,omitzero"`
	Text       string `json:"text,omitzero"`
	Audio      string `json:"audio,omitzero"`
	Transcript string `json:"transcript,omitzero"`
	ID         string `json:"id,omitzero"`
}

// ResponseResource is a model response.
type ResponseResource struct {
	ID            string             `json:"id,omitzero"`
	Object        string             `json:"object,omitzero"`
	Status        string             `json:"status,omitzero"`
	StatusDetails *StatusDetails     `json:"status_details,omitzero"`
	Output        []ConversationItem `json:"output,omitzero"`
	Metadata      map[string]string  `json:"metadata,omitzero"`
	Usage         *Usage             `json:"usage,omitzero"`
}

// Text concatenates the text of every output message.
func (r *ResponseResource) Text() string {
	var s string
	for i := range r.Output {
		if r.Output[i].Type == ItemTypeMessage {
			s += r.Output[i].Text()
		}
	}
	return s
}

// StatusDetails explains a non-completed status.
type StatusDetails struct {
	Type   string           `json:"type,omitzero"`
	Reason string           `json:"reason,omitzero"`
	Error  *openai.APIError `json:"error,omitzero"`
}

// Usage reports token counts for a response.
type Usage struct {
	TotalTokens        int           `json:"total_tokens,omitzero"`
	InputTokens        int           `json:"input_tokens,omitzero"`
	OutputTokens       int           `json:"output_tokens,omitzero"`
	InputTokenDetails  *TokenDetails `json:"input_token_details,omitzero"`
	OutputTokenDetails *TokenDetails `json:"output_token_details,omitzero"`
}

// TokenDetails breaks a token count down by modality.
type TokenDetails struct {
	CachedTokens int `json:"cached_tokens,omitzero"`
	TextTokens   int `json:"text_tokens,omitzero"`
	AudioTokens  int `json:"audio_tokens,omitzero"`
}

// RateLimit is one entry of rate_limits.updated.
type RateLimit struct {
	Name         string  `json:"name"`
	Limit        int     `json:"limit"`
	Remaining    int     `json:"remaining"`
	ResetSeconds float64 `json:"reset_seconds"`
}
