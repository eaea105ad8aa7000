package openairealtime

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

// Server event types.
const (
	EventTypeError = "error"

	EventTypeSessionCreated = "session.created"
	EventTypeSessionUpdated = "session.updated"

	EventTypeConversationCreated                              = "conversation.created"
	EventTypeConversationItemCreated                          = "conversation.item.created"
	EventTypeConversationItemRetrieved                        = "conversation.item.retrieved"
	EventTypeConversationItemDeleted                          = "conversation.item.deleted"
	EventTypeConversationItemTruncated                        = "conversation.item.truncated"
	EventTypeConversationItemInputAudioTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventTypeConversationItemInputAudioTranscriptionFailed    = "conversation.item.input_audio_transcription.failed"

	EventTypeInputAudioBufferCommitted     = "input_audio_buffer.committed"
	EventTypeInputAudioBufferCleared       = "input_audio_buffer.cleared"
	EventTypeInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"
	EventTypeInputAudioBufferSpeechStopped = "input_audio_buffer.speech_stopped"

	EventTypeOutputAudioBufferStarted = "output_audio_buffer.started"
	EventTypeOutputAudioBufferStopped = "output_audio_buffer.stopped"
	EventTypeOutputAudioBufferCleared = "output_audio_buffer.cleared"

	EventTypeResponseCreated                    = "response.created"
	EventTypeResponseDone                       = "response.done"
	EventTypeResponseOutputItemAdded            = "response.output_item.added"
	EventTypeResponseOutputItemDone             = "response.output_item.done"
	EventTypeResponseContentPartAdded           = "response.content_part.added"
	EventTypeResponseContentPartDone            = "response.content_part.done"
	EventTypeResponseTextDelta                  = "response.text.delta"
	EventTypeResponseTextDone                   = "response.text.done"
	EventTypeResponseAudioDelta                 = "response.audio.delta"
	EventTypeResponseAudioDone                  = "response.audio.done"
	EventTypeResponseAudioTranscriptDelta       = "response.audio_transcript.delta"
	EventTypeResponseAudioTranscriptDone        = "response.audio_transcript.done"
	EventTypeResponseFunctionCallArgumentsDelta = "response.function_call_arguments.delta"
	EventTypeResponseFunctionCallArgumentsDone  = "response.function_call_arguments.done"

	EventTypeRateLimitsUpdated = "rate_limits.updated"
)

var knownServerEvents = map[string]bool{
	EventTypeError:                                            true,
	EventTypeSessionCreated:                                   true,
	EventTypeSessionUpdated:                                   true,
	EventTypeConversationCreated:                              true,
	EventTypeConversationItemCreated:                          true,
	EventTypeConversationItemRetrieved:                        true,
	EventTypeConversationItemDeleted:                          true,
	EventTypeConversationItemTruncated:                        true,
	EventTypeConversationItemInputAudioTranscriptionCompleted: true,
	EventTypeConversationItemInputAudioTranscriptionFailed:    true,
	EventTypeInputAudioBufferCommitted:                        true,
	EventTypeInputAudioBufferCleared:                          true,
	EventTypeInputAudioBufferSpeechStarted:                    true,
	EventTypeInputAudioBufferSpeechStopped:                    true,
	EventTypeOutputAudioBufferStarted:                         true,
	EventTypeOutputAudioBufferStopped:                         true,
	EventTypeOutputAudioBufferCleared:                         true,
	EventTypeResponseCreated:                                  true,
	EventTypeResponseDone:                                     true,
	EventTypeResponseOutputItemAdded:                          true,
	EventTypeResponseOutputItemDone:                           true,
	EventTypeResponseContentPartAdded:                         true,
	EventTypeResponseContentPartDone:                          true,
	EventTypeResponseTextDelta:                                true,
	EventTypeResponseTextDone:                                 true,
	EventTypeResponseAudioDelta:                               true,
	EventTypeResponseAudioDone:                                true,
	EventTypeResponseAudioTranscriptDelta:                     true,
	EventTypeResponseAudioTranscriptDone:                      true,
	EventTypeResponseFunctionCallArgumentsDelta:               true,
	EventTypeResponseFunctionCallArgumentsDone:                true,
	EventTypeRateLimitsUpdated:                                true,
}

// ServerEvent is an event received from the server. Type selects which of
// the other fields are populated. Unrecognised types keep Type and Raw.
type ServerEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitzero"`

	// Error is set for error and transcription failure events.
	Error *openai.APIError `json:"error,omitzero"`

	Session      *SessionResource      `json:"session,omitzero"`
	Conversation *ConversationResource `json:"conversation,omitzero"`

	Item           *ConversationItem `json:"item,omitzero"`
	ItemID         string            `json:"item_id,omitzero"`
	PreviousItemID string            `json:"previous_item_id,omitzero"`
	ContentIndex   int               `json:"content_index,omitzero"`
	OutputIndex    int               `json:"output_index,omitzero"`
	AudioStartMs   int               `json:"audio_start_ms,omitzero"`
	AudioEndMs     int               `json:"audio_end_ms,omitzero"`

	Response   *ResponseResource `json:"response,omitzero"`
	ResponseID string            `json:"response_id,omitzero"`
	Part       *ContentPart      `json:"part,omitzero"`

	// Delta carries text, transcript or argument fragments. For
	// response.audio.delta it holds base64 audio, decoded into Audio.
	Delta string `json:"delta,omitzero"`
	Audio []byte `json:"-"`

	// Text and Transcript hold the full content of the matching done event
	// and, for input transcription, the transcript of the user item.
	Text       string `json:"text,omitzero"`
	Transcript string `json:"transcript,omitzero"`

	CallID    string `json:"call_id,omitzero"`
	Name      string `json:"name,omitzero"`
	Arguments string `json:"arguments,omitzero"`

	RateLimits []RateLimit `json:"rate_limits,omitzero"`

	// Raw is the frame as received.
	Raw json.RawMessage `json:"-"`
}

// Known reports whether Type is one of the documented server events.
func (e *ServerEvent) Known() bool {
	return knownServerEvents[e.Type]
}

// IsDelta reports a response delta event.
func (e *ServerEvent) IsDelta() bool {
	switch e.Type {
	case EventTypeResponseTextDelta,
		EventTypeResponseAudioDelta,
		EventTypeResponseAudioTranscriptDelta,
		EventTypeResponseFunctionCallArgumentsDelta:
		return true
	}
	return false
}

// ToolCall returns the completed function call of a
// response.function_call_arguments.done event.
func (e *ServerEvent) ToolCall() openai.ToolCall {
	return openai.NewToolCall(e.CallID, e.Name, e.Arguments)
}

// ConversationResource is the conversation reported by conversation.created.
type ConversationResource struct {
	ID     string `json:"id,omitzero"`
	Object string `json:"object,omitzero"`
}

var errMissingType = errors.New("event has no type")

// decodeServerEvent parses one text frame.
func decodeServerEvent(data []byte) (*ServerEvent, error) {
	var ev ServerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, codecError("decode server event", err)
	}
	if ev.Type == "" {
		return nil, codecError("decode server event", errMissingType)
	}
	ev.Raw = append(json.RawMessage(nil), data...)
	if ev.Type == EventTypeResponseAudioDelta && ev.Delta != "" {
		audio, err := base64.StdEncoding.DecodeString(ev.Delta)
		if err != nil {
			return nil, codecError("decode audio delta", err)
		}
		ev.Audio = audio
	}
	return &ev, nil
}
