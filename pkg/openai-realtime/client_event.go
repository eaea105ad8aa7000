package openairealtime

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// Client event types.
const (
	EventTypeSessionUpdate            = "session.update"
	EventTypeInputAudioBufferAppend   = "input_audio_buffer.append"
	EventTypeInputAudioBufferCommit   = "input_audio_buffer.commit"
	EventTypeInputAudioBufferClear    = "input_audio_buffer.clear"
	EventTypeConversationItemCreate   = "conversation.item.create"
	EventTypeConversationItemRetrieve = "conversation.item.retrieve"
	EventTypeConversationItemTruncate = "conversation.item.truncate"
	EventTypeConversationItemDelete   = "conversation.item.delete"
	EventTypeResponseCreate           = "response.create"
	EventTypeResponseCancel           = "response.cancel"
)

// ClientEvent is an event sent to the server. Type selects which of the
// other fields are sent. Use the New* constructors to build one.
type ClientEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitzero"`

	Session *SessionConfig `json:"session,omitzero"`

	// Audio is base64 in the session's input audio format.
	Audio string `json:"audio,omitzero"`

	Item           *ConversationItem `json:"item,omitzero"`
	PreviousItemID string            `json:"previous_item_id,omitzero"`
	ItemID         string            `json:"item_id,omitzero"`

	// ContentIndex and AudioEndMs are sent even when zero.
	ContentIndex *int `json:"content_index,omitzero"`
	AudioEndMs   *int `json:"audio_end_ms,omitzero"`

	Response   *ResponseCreateConfig `json:"response,omitzero"`
	ResponseID string                `json:"response_id,omitzero"`
}

// newEventID returns a client event ID of the form evt_<12 chars>.
func newEventID() string {
	return "evt_" + uuid.NewString()[:12]
}

// NewSessionUpdate builds session.update.
func NewSessionUpdate(cfg *SessionConfig) *ClientEvent {
	return &ClientEvent{Type: EventTypeSessionUpdate, Session: cfg}
}

// NewAudioAppend builds input_audio_buffer.append from raw audio frames.
func NewAudioAppend(audio []byte) *ClientEvent {
	return NewAudioAppendBase64(base64.StdEncoding.EncodeToString(audio))
}

// NewAudioAppendBase64 builds input_audio_buffer.append from base64 audio.
func NewAudioAppendBase64(audio string) *ClientEvent {
	return &ClientEvent{Type: EventTypeInputAudioBufferAppend, Audio: audio}
}

// NewAudioCommit builds input_audio_buffer.commit.
func NewAudioCommit() *ClientEvent {
	return &ClientEvent{Type: EventTypeInputAudioBufferCommit}
}

// NewAudioClear builds input_audio_buffer.clear.
func NewAudioClear() *ClientEvent {
	return &ClientEvent{Type: EventTypeInputAudioBufferClear}
}

// NewItemCreate builds conversation.item.create. An empty previousItemID
// appends the item to the end of the conversation.
func NewItemCreate(item ConversationItem, previousItemID string) *ClientEvent {
	return &ClientEvent{Type: EventTypeConversationItemCreate, Item: &item, PreviousItemID: previousItemID}
}

// NewItemRetrieve builds conversation.item.retrieve.
func NewItemRetrieve(itemID string) *ClientEvent {
	return &ClientEvent{Type: EventTypeConversationItemRetrieve, ItemID: itemID}
}

// NewItemTruncate builds conversation.item.truncate, cutting the audio of
// an assistant item at audioEndMs.
func NewItemTruncate(itemID string, contentIndex, audioEndMs int) *ClientEvent {
	return &ClientEvent{
		Type:         EventTypeConversationItemTruncate,
		ItemID:       itemID,
		ContentIndex: &contentIndex,
		AudioEndMs:   &audioEndMs,
	}
}

// NewItemDelete builds conversation.item.delete.
func NewItemDelete(itemID string) *ClientEvent {
	return &ClientEvent{Type: EventTypeConversationItemDelete, ItemID: itemID}
}

// NewResponseCreate builds response.create. cfg may be nil.
func NewResponseCreate(cfg *ResponseCreateConfig) *ClientEvent {
	return &ClientEvent{Type: EventTypeResponseCreate, Response: cfg}
}

// NewResponseCancel builds response.cancel. An empty responseID cancels
// the in-flight response.
func NewResponseCancel(responseID string) *ClientEvent {
	return &ClientEvent{Type: EventTypeResponseCancel, ResponseID: responseID}
}

// validate checks the fields required by known event types. Unknown types
// pass through unchecked.
func (e *ClientEvent) validate() error {
	switch e.Type {
	case "":
		return configErrorf("client event has no type")
	case EventTypeSessionUpdate:
		if e.Session == nil {
			return configErrorf("session.update requires a session")
		}
		return e.Session.validate()
	case EventTypeInputAudioBufferAppend:
		if e.Audio == "" {
			return configErrorf("input_audio_buffer.append requires audio")
		}
	case EventTypeConversationItemCreate:
		if e.Item == nil {
			return configErrorf("conversation.item.create requires an item")
		}
		return e.Item.validate()
	case EventTypeConversationItemRetrieve, EventTypeConversationItemDelete:
		if e.ItemID == "" {
			return configErrorf("%s requires item_id", e.Type)
		}
	case EventTypeConversationItemTruncate:
		if e.ItemID == "" || e.ContentIndex == nil || e.AudioEndMs == nil {
			return configErrorf("conversation.item.truncate requires item_id, content_index and audio_end_ms")
		}
		if *e.ContentIndex < 0 || *e.AudioEndMs < 0 {
			return configErrorf("conversation.item.truncate offsets must not be negative")
		}
	case EventTypeResponseCreate:
		if e.Response != nil {
			return e.Response.validate()
		}
	}
	return nil
}
