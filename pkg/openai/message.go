package openai

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PartType discriminates ContentPart variants.
type PartType string

const (
	PartText      PartType = "text"
	PartImageURL  PartType = "image_url"
	PartImageFile PartType = "image_file"
	PartAudio     PartType = "input_audio"
)

// imageMIMETypes maps supported local image extensions to MIME types.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentPart is one element of a multi-part message.
type ContentPart struct {
	Type PartType

	Text string

	// ImageURL is an http(s) URL or a data URL.
	ImageURL string
	// Path is a local image file, read and inlined when the request is sent.
	Path string
	// Detail is the image fidelity hint: auto, low or high.
	Detail string

	// Audio is raw audio bytes in AudioFormat (wav or mp3).
	Audio       []byte
	AudioFormat string
}

// TextPart returns a text part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// ImageURLPart returns an image part referencing url.
func ImageURLPart(url string) ContentPart {
	return ContentPart{Type: PartImageURL, ImageURL: url}
}

// ImageFilePart returns an image part for a local file. The extension must
// be png, jpg, jpeg, gif or webp. The file is read at send time.
func ImageFilePart(path string) (ContentPart, error) {
	if _, err := imageMIMEType(path); err != nil {
		return ContentPart{}, err
	}
	return ContentPart{Type: PartImageFile, Path: path}, nil
}

// AudioPart returns an input audio part.
func AudioPart(data []byte, format string) ContentPart {
	return ContentPart{Type: PartAudio, Audio: data, AudioFormat: format}
}

// WithDetail sets the image detail hint.
func (p ContentPart) WithDetail(detail string) ContentPart {
	p.Detail = detail
	return p
}

func imageMIMEType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mime, ok := imageMIMETypes[ext]
	if !ok {
		return "", configErrorf("unsupported image extension %q for %s", ext, path)
	}
	return mime, nil
}

// resolveImageURL returns the URL to send for an image part, inlining
// local files as data URLs.
func (p ContentPart) resolveImageURL() (string, error) {
	if p.Type != PartImageFile {
		return p.ImageURL, nil
	}
	mime, err := imageMIMEType(p.Path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", configErrorf("read image %s: %v", p.Path, err)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Message is one entry of a conversation.
//
// Content is either Text or Parts. A non-nil Parts takes precedence.
type Message struct {
	Role  Role
	Text  string
	Parts []ContentPart

	Name       string
	ToolCallID string
	ToolCalls  []ToolCall

	// Refusal is set on assistant replies the model declined to produce.
	Refusal string
}

// NewTextMessage returns a text message.
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Text: text}
}

// NewPartsMessage returns a multi-part message.
func NewPartsMessage(role Role, parts ...ContentPart) Message {
	return Message{Role: role, Parts: parts}
}

// NewToolMessage returns the result of a tool call.
func NewToolMessage(output, toolCallID string) Message {
	return Message{Role: RoleTool, Text: output, ToolCallID: toolCallID}
}

// SystemMessage is shorthand for NewTextMessage(RoleSystem, text).
func SystemMessage(text string) Message { return NewTextMessage(RoleSystem, text) }

// UserMessage is shorthand for NewTextMessage(RoleUser, text).
func UserMessage(text string) Message { return NewTextMessage(RoleUser, text) }

// AssistantMessage is shorthand for NewTextMessage(RoleAssistant, text).
func AssistantMessage(text string) Message { return NewTextMessage(RoleAssistant, text) }

// DeveloperMessage is shorthand for NewTextMessage(RoleDeveloper, text).
func DeveloperMessage(text string) Message { return NewTextMessage(RoleDeveloper, text) }

// Content returns the text of the message, joining text parts.
func (m *Message) Content() string {
	if m.Parts == nil {
		return m.Text
	}
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Validate checks the message invariants. Whitespace-only text is valid.
func (m *Message) Validate() error {
	if !m.Role.Valid() {
		return configErrorf("invalid role %q", m.Role)
	}
	if m.Role == RoleTool && m.ToolCallID == "" {
		return configErrorf("tool message requires tool_call_id")
	}
	if m.Parts == nil && m.Text == "" && len(m.ToolCalls) == 0 {
		return configErrorf("%s message has no content", m.Role)
	}
	if m.Parts != nil && len(m.Parts) == 0 {
		return configErrorf("%s message has an empty parts list", m.Role)
	}
	for i, p := range m.Parts {
		switch p.Type {
		case PartText, PartImageURL, PartImageFile, PartAudio:
		default:
			return configErrorf("part %d: unknown type %q", i, p.Type)
		}
	}
	return nil
}

// Chat completions wire shapes.

type chatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitzero"`
}

type chatInputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

type chatPartWire struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitzero"`
	ImageURL   *chatImageURL   `json:"image_url,omitzero"`
	InputAudio *chatInputAudio `json:"input_audio,omitzero"`
}

type chatMessageWire struct {
	Role       Role       `json:"role"`
	Content    any        `json:"content,omitempty"`
	Name       string     `json:"name,omitzero"`
	ToolCallID string     `json:"tool_call_id,omitzero"`
	ToolCalls  []ToolCall `json:"tool_calls,omitzero"`
	Refusal    string     `json:"refusal,omitzero"`
}

func (p ContentPart) chatWire() (chatPartWire, error) {
	switch p.Type {
	case PartText:
		return chatPartWire{Type: "text", Text: p.Text}, nil
	case PartImageURL, PartImageFile:
		u, err := p.resolveImageURL()
		if err != nil {
			return chatPartWire{}, err
		}
		return chatPartWire{Type: "image_url", ImageURL: &chatImageURL{URL: u, Detail: p.Detail}}, nil
	case PartAudio:
		return chatPartWire{Type: "input_audio", InputAudio: &chatInputAudio{
			Data:   base64.StdEncoding.EncodeToString(p.Audio),
			Format: p.AudioFormat,
		}}, nil
	default:
		return chatPartWire{}, configErrorf("unknown part type %q", p.Type)
	}
}

func (m *Message) chatWire() (chatMessageWire, error) {
	w := chatMessageWire{
		Role:       m.Role,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
		ToolCalls:  m.ToolCalls,
		Refusal:    m.Refusal,
	}
	switch {
	case m.Parts != nil:
		parts := make([]chatPartWire, 0, len(m.Parts))
		for _, p := range m.Parts {
			pw, err := p.chatWire()
			if err != nil {
				return chatMessageWire{}, err
			}
			parts = append(parts, pw)
		}
		w.Content = parts
	case m.Text != "" || len(m.ToolCalls) == 0:
		w.Content = m.Text
	}
	return w, nil
}

// chatMessages validates and lowers a history without touching it.
func chatMessages(msgs []Message) ([]chatMessageWire, error) {
	if len(msgs) == 0 {
		return nil, configErrorf("messages are empty")
	}
	out := make([]chatMessageWire, 0, len(msgs))
	for i := range msgs {
		if err := msgs[i].Validate(); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		w, err := msgs[i].chatWire()
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, w)
	}
	return out, nil
}

// MarshalJSON emits the chat completions shape.
func (m Message) MarshalJSON() ([]byte, error) {
	w, err := m.chatWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the chat completions shape. Content may be a
// string, null, or a list of parts.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w struct {
		Role       Role            `json:"role"`
		Content    json.RawMessage `json:"content"`
		Name       string          `json:"name"`
		ToolCallID string          `json:"tool_call_id"`
		ToolCalls  []ToolCall      `json:"tool_calls"`
		Refusal    string          `json:"refusal"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Message{
		Role:       w.Role,
		Name:       w.Name,
		ToolCallID: w.ToolCallID,
		ToolCalls:  w.ToolCalls,
		Refusal:    w.Refusal,
	}
	if len(w.Content) == 0 || string(w.Content) == "null" {
		return nil
	}
	if w.Content[0] == '"' {
		return json.Unmarshal(w.Content, &m.Text)
	}
	var parts []chatPartWire
	if err := json.Unmarshal(w.Content, &parts); err != nil {
		return err
	}
	m.Parts = make([]ContentPart, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case "text":
			m.Parts = append(m.Parts, TextPart(p.Text))
		case "image_url":
			if p.ImageURL != nil {
				m.Parts = append(m.Parts, ImageURLPart(p.ImageURL.URL).WithDetail(p.ImageURL.Detail))
			}
		case "input_audio":
			if p.InputAudio != nil {
				audio, err := base64.StdEncoding.DecodeString(p.InputAudio.Data)
				if err != nil {
					return err
				}
				m.Parts = append(m.Parts, AudioPart(audio, p.InputAudio.Format))
			}
		}
	}
	return nil
}

// Responses wire shapes.

type responsesPartWire struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitzero"`
	ImageURL string `json:"image_url,omitzero"`
	Detail   string `json:"detail,omitzero"`
}

type responsesMessageWire struct {
	Type    string `json:"type"`
	Role    Role   `json:"role"`
	Content any    `json:"content"`
}

type functionCallItemWire struct {
	Type      string `json:"type"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type functionCallOutputWire struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// responsesItems lowers one message to Responses input items. Tool results
// and assistant tool calls become function_call_output and function_call
// items.
func (m *Message) responsesItems() ([]any, error) {
	if m.Role == RoleTool {
		return []any{functionCallOutputWire{Type: "function_call_output", CallID: m.ToolCallID, Output: m.Content()}}, nil
	}

	var items []any
	textType := "input_text"
	if m.Role == RoleAssistant {
		textType = "output_text"
	}
	switch {
	case m.Parts != nil:
		parts := make([]responsesPartWire, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch p.Type {
			case PartText:
				parts = append(parts, responsesPartWire{Type: textType, Text: p.Text})
			case PartImageURL, PartImageFile:
				u, err := p.resolveImageURL()
				if err != nil {
					return nil, err
				}
				parts = append(parts, responsesPartWire{Type: "input_image", ImageURL: u, Detail: p.Detail})
			default:
				return nil, configErrorf("%s parts are not accepted by the responses api", p.Type)
			}
		}
		items = append(items, responsesMessageWire{Type: "message", Role: m.Role, Content: parts})
	case m.Text != "":
		items = append(items, responsesMessageWire{Type: "message", Role: m.Role, Content: m.Text})
	}
	for _, c := range m.ToolCalls {
		items = append(items, functionCallItemWire{
			Type:      "function_call",
			CallID:    c.ID,
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		})
	}
	return items, nil
}

// responsesMessages validates and lowers a history for the Responses API.
func responsesMessages(msgs []Message) ([]any, error) {
	out := make([]any, 0, len(msgs))
	for i := range msgs {
		if err := msgs[i].Validate(); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		items, err := msgs[i].responsesItems()
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, items...)
	}
	return out, nil
}
