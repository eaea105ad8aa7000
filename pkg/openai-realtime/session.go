package openairealtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

// doneResponsesLimit bounds the set of finished response IDs remembered
// for late-delta filtering.
const doneResponsesLimit = 64

const (
	modeNone int32 = iota
	modeRecv
	modeRun
)

// Session is one realtime WebSocket connection.
//
// Exactly one goroutine may receive, through Recv, Events or Run (never a
// mix of them). Sends may come from any goroutine; they are serialized and
// block until the socket accepts the frame.
type Session struct {
	conn         *websocket.Conn
	log          *zap.Logger
	writeTimeout time.Duration
	tracker      *Tracker

	id string

	wmu sync.Mutex

	mode      atomic.Int32
	closed    atomic.Bool
	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error

	emu sync.Mutex
	err error

	// Owned by the receiving goroutine.
	eof  bool
	done *recentSet
}

func newSession(conn *websocket.Conn, log *zap.Logger, writeTimeout time.Duration) *Session {
	s := &Session{
		conn:         conn,
		log:          log,
		writeTimeout: writeTimeout,
		tracker:      NewTracker(),
		done:         newRecentSet(doneResponsesLimit),
	}
	conn.SetPingHandler(func(data string) error {
		s.log.Debug("realtime ping")
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		var ne net.Error
		if errors.Is(err, websocket.ErrCloseSent) || (errors.As(err, &ne) && ne.Timeout()) {
			return nil
		}
		return err
	})
	return s
}

// ID returns the server-assigned session ID.
func (s *Session) ID() string { return s.id }

// Tracker returns the session's conversation state.
func (s *Session) Tracker() *Tracker { return s.tracker }

// Err returns the transport failure that ended the stream, or nil when the
// stream ended with a normal close.
func (s *Session) Err() error {
	s.emu.Lock()
	defer s.emu.Unlock()
	return s.err
}

// Recv returns the next server event. It returns io.EOF once the stream has
// ended; Err then reports why. A frame that is not valid JSON yields a
// codec error and the stream continues.
//
// Cancelling ctx interrupts the read and leaves the connection unusable;
// call Close afterwards.
func (s *Session) Recv(ctx context.Context) (*ServerEvent, error) {
	if !s.claim(modeRecv) {
		return nil, configErrorf("Recv cannot be used on a session driven by Run")
	}
	return s.recv(ctx)
}

// Events returns an iterator over Recv. Iteration ends at end of stream or
// after the first error is yielded.
//
// Example:
//
//	for ev, err := range session.Events(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    if ev.Type == openairealtime.EventTypeResponseTextDelta {
//	        fmt.Print(ev.Delta)
//	    }
//	}
func (s *Session) Events(ctx context.Context) iter.Seq2[*ServerEvent, error] {
	return func(yield func(*ServerEvent, error) bool) {
		for {
			ev, err := s.Recv(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Run dispatches every event to h until the stream ends, ctx is cancelled
// or a callback fails. It returns nil after a normal close and the
// transport cause after an abnormal one.
func (s *Session) Run(ctx context.Context, h *Handler) error {
	if !s.claim(modeRun) {
		return configErrorf("Run cannot be used on a session read with Recv")
	}
	for {
		ev, err := s.recv(ctx)
		if err == io.EOF {
			return s.Err()
		}
		if err != nil {
			return err
		}
		if err := h.Dispatch(ctx, ev); err != nil {
			return err
		}
	}
}

func (s *Session) claim(mode int32) bool {
	return s.mode.CompareAndSwap(modeNone, mode) || s.mode.Load() == mode
}

func (s *Session) recv(ctx context.Context) (*ServerEvent, error) {
	if s.eof {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			s.finish(err)
			return nil, io.EOF
		}
		if mt != websocket.TextMessage {
			s.log.Debug("ignoring non-text frame", zap.Int("message_type", mt))
			continue
		}
		ev, err := decodeServerEvent(data)
		if err != nil {
			return nil, err
		}
		s.log.Debug("realtime event", zap.String("type", ev.Type), zap.String("event_id", ev.EventID))

		if ev.IsDelta() && s.done.has(ev.ResponseID) {
			s.log.Warn("dropping late delta",
				zap.String("type", ev.Type),
				zap.String("response_id", ev.ResponseID))
			continue
		}
		if ev.Type == EventTypeResponseDone && ev.Response != nil {
			s.done.add(ev.Response.ID)
		}
		s.tracker.Observe(ev)
		return ev, nil
	}
}

// finish records the end of the stream. Normal closes and closes we started
// leave Err nil.
func (s *Session) finish(err error) {
	s.eof = true
	s.closed.Store(true)
	if s.closing.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.log.Debug("realtime stream closed")
		return
	}
	s.log.Debug("realtime stream dropped", zap.Error(err))
	s.emu.Lock()
	s.err = transportError("read", err)
	s.emu.Unlock()
}

// Close sends a close frame and releases the connection. It is safe to
// call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		s.closed.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// Send writes ev, assigning an event_id when it has none.
func (s *Session) Send(ev *ClientEvent) error {
	if ev == nil {
		return configErrorf("nil client event")
	}
	if err := ev.validate(); err != nil {
		return err
	}
	out := *ev
	if out.EventID == "" {
		out.EventID = newEventID()
	}
	data, err := json.Marshal(&out)
	if err != nil {
		var ce *openai.ConfigError
		if errors.As(err, &ce) {
			return ce
		}
		return codecError("encode client event", err)
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.closed.Load() {
		return transportError("send", openai.ErrStreamClosed)
	}
	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return transportError("send", err)
	}
	s.log.Debug("realtime send",
		zap.String("type", out.Type),
		zap.String("event_id", out.EventID),
		zap.Int("bytes", len(data)))
	s.tracker.ObserveClient(&out)
	return nil
}

// UpdateSession sends session.update.
func (s *Session) UpdateSession(cfg *SessionConfig) error {
	return s.Send(NewSessionUpdate(cfg))
}

// AppendAudio base64-encodes raw frames in the session's input format and
// appends them to the input buffer.
func (s *Session) AppendAudio(audio []byte) error {
	return s.Send(NewAudioAppend(audio))
}

// AppendAudioBase64 appends already encoded audio to the input buffer.
func (s *Session) AppendAudioBase64(audio string) error {
	return s.Send(NewAudioAppendBase64(audio))
}

// CommitAudio turns the input buffer into a user item. Needed only with
// manual turns.
func (s *Session) CommitAudio() error {
	return s.Send(NewAudioCommit())
}

// ClearAudio discards the input buffer.
func (s *Session) ClearAudio() error {
	return s.Send(NewAudioClear())
}

// CreateItem adds item after previousItemID, or at the end when it is
// empty.
func (s *Session) CreateItem(item ConversationItem, previousItemID string) error {
	return s.Send(NewItemCreate(item, previousItemID))
}

// SendText adds a user text message. Follow it with CreateResponse.
func (s *Session) SendText(text string) error {
	if text == "" {
		return configErrorf("text is empty")
	}
	return s.CreateItem(TextItem(openai.RoleUser, text), "")
}

// SubmitFunctionOutput returns the result of a function call. Follow it
// with CreateResponse to let the model continue.
func (s *Session) SubmitFunctionOutput(callID, output string) error {
	return s.CreateItem(FunctionOutputItem(callID, output), "")
}

// TruncateItem cuts the audio of an assistant item at audioEndMs, telling
// the model how much of it the user actually heard.
func (s *Session) TruncateItem(itemID string, contentIndex, audioEndMs int) error {
	return s.Send(NewItemTruncate(itemID, contentIndex, audioEndMs))
}

// DeleteItem removes an item from the conversation.
func (s *Session) DeleteItem(itemID string) error {
	return s.Send(NewItemDelete(itemID))
}

// CreateResponse asks the model to respond. cfg may be nil.
func (s *Session) CreateResponse(cfg *ResponseCreateConfig) error {
	return s.Send(NewResponseCreate(cfg))
}

// CancelResponse aborts the in-flight response. The server answers with
// response.done in status cancelled.
func (s *Session) CancelResponse() error {
	return s.Send(NewResponseCancel(""))
}

// recentSet remembers the last n strings added.
type recentSet struct {
	ring []string
	next int
	set  map[string]struct{}
}

func newRecentSet(n int) *recentSet {
	return &recentSet{ring: make([]string, n), set: make(map[string]struct{}, n)}
}

func (r *recentSet) add(s string) {
	if s == "" {
		return
	}
	if _, ok := r.set[s]; ok {
		return
	}
	if old := r.ring[r.next]; old != "" {
		delete(r.set, old)
	}
	r.ring[r.next] = s
	r.set[s] = struct{}{}
	r.next = (r.next + 1) % len(r.ring)
}

func (r *recentSet) has(s string) bool {
	if s == "" {
		return false
	}
	_, ok := r.set[s]
	return ok
}
