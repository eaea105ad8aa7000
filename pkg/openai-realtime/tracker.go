package openairealtime

import (
	"encoding/base64"
	"slices"
	"sync"
)

// TrackedItem is a conversation item as last reported by the server.
type TrackedItem struct {
	Item ConversationItem

	// Truncated is set after conversation.item.truncated; AudioEndMs is
	// the offset the audio was cut at.
	Truncated  bool
	AudioEndMs int
}

// ResponseState is the most recent response seen on the session.
type ResponseState struct {
	ID     string
	Status string
}

// InFlight reports a response that has been created but is not done.
func (r ResponseState) InFlight() bool {
	return r.ID != "" && r.Status == StatusInProgress
}

// Tracker holds in-memory session state derived from the event stream.
// Every Session keeps one; read it with Session.Tracker. It is safe for
// concurrent use.
type Tracker struct {
	mu sync.Mutex

	items []TrackedItem

	// pendingBytes counts raw audio appended since the last commit or clear.
	pendingBytes int

	response ResponseState

	speechStartMs int
	speaking      bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// ObserveClient records an outbound event.
func (t *Tracker) ObserveClient(ev *ClientEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch ev.Type {
	case EventTypeInputAudioBufferAppend:
		t.pendingBytes += base64.StdEncoding.DecodedLen(len(ev.Audio)) - padding(ev.Audio)
	case EventTypeInputAudioBufferCommit, EventTypeInputAudioBufferClear:
		t.pendingBytes = 0
	}
}

// padding counts trailing '=' characters of base64 text.
func padding(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '='; i-- {
		n++
	}
	return n
}

// Observe records an inbound event.
func (t *Tracker) Observe(ev *ServerEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch ev.Type {
	case EventTypeConversationItemCreated:
		if ev.Item != nil {
			t.insert(*ev.Item, ev.PreviousItemID)
		}
	case EventTypeConversationItemDeleted:
		t.items = slices.DeleteFunc(t.items, func(it TrackedItem) bool { return it.Item.ID == ev.ItemID })
	case EventTypeConversationItemTruncated:
		if i := t.index(ev.ItemID); i >= 0 {
			t.items[i].Truncated = true
			t.items[i].AudioEndMs = ev.AudioEndMs
		}
	case EventTypeConversationItemInputAudioTranscriptionCompleted:
		if i := t.index(ev.ItemID); i >= 0 {
			content := t.items[i].Item.Content
			if ev.ContentIndex >= 0 && ev.ContentIndex < len(content) {
				content[ev.ContentIndex].Transcript = ev.Transcript
			}
		}
	case EventTypeInputAudioBufferCommitted, EventTypeInputAudioBufferCleared:
		t.pendingBytes = 0
	case EventTypeInputAudioBufferSpeechStarted:
		t.speechStartMs = ev.AudioStartMs
		t.speaking = true
	case EventTypeInputAudioBufferSpeechStopped:
		t.speaking = false
	case EventTypeResponseCreated, EventTypeResponseDone:
		if ev.Response != nil {
			t.response = ResponseState{ID: ev.Response.ID, Status: ev.Response.Status}
		}
	case EventTypeResponseOutputItemDone:
		if ev.Item != nil {
			if i := t.index(ev.Item.ID); i >= 0 {
				t.items[i].Item = cloneItem(*ev.Item)
			}
		}
	}
}

func (t *Tracker) insert(item ConversationItem, previousID string) {
	if i := t.index(item.ID); i >= 0 {
		t.items[i].Item = cloneItem(item)
		return
	}
	tracked := TrackedItem{Item: cloneItem(item)}
	if previousID == "" {
		t.items = append(t.items, tracked)
		return
	}
	at := t.index(previousID)
	if at < 0 {
		t.items = append(t.items, tracked)
		return
	}
	t.items = slices.Insert(t.items, at+1, tracked)
}

func (t *Tracker) index(id string) int {
	return slices.IndexFunc(t.items, func(it TrackedItem) bool { return it.Item.ID == id })
}

func cloneItem(it ConversationItem) ConversationItem {
	it.Content = slices.Clone(it.Content)
	return it
}

// Items returns the conversation in order.
func (t *Tracker) Items() []TrackedItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TrackedItem, len(t.items))
	for i, it := range t.items {
		it.Item = cloneItem(it.Item)
		out[i] = it
	}
	return out
}

// PendingAudioBytes returns the raw audio bytes appended since the last
// commit or clear.
func (t *Tracker) PendingAudioBytes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pendingBytes
}

// Response returns the most recent response and its status.
func (t *Tracker) Response() ResponseState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.response
}

// SpeechStart returns the start offset of speech that has not stopped yet.
func (t *Tracker) SpeechStart() (ms int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.speechStartMs, t.speaking
}
