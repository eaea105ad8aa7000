package openairealtime

import (
	"context"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

// HandlerFunc handles one server event. A non-nil error stops Session.Run.
type HandlerFunc func(ctx context.Context, ev *ServerEvent) error

// Handler routes server events to callbacks by type. Several callbacks may
// be registered for one type; they run in registration order.
//
// Example:
//
//	h := openairealtime.NewHandler().
//	    OnTextDelta(func(ctx context.Context, responseID, delta string) error {
//	        fmt.Print(delta)
//	        return nil
//	    }).
//	    OnResponseDone(func(ctx context.Context, r *openairealtime.ResponseResource) error {
//	        fmt.Println()
//	        return nil
//	    })
//	err := session.Run(ctx, h)
type Handler struct {
	byType  map[string][]HandlerFunc
	unknown []HandlerFunc
}

// NewHandler returns an empty handler.
func NewHandler() *Handler {
	return &Handler{byType: make(map[string][]HandlerFunc)}
}

// On registers fn for events of the given type.
func (h *Handler) On(eventType string, fn HandlerFunc) *Handler {
	h.byType[eventType] = append(h.byType[eventType], fn)
	return h
}

// OnUnknown registers fn for event types this package does not recognise.
func (h *Handler) OnUnknown(fn HandlerFunc) *Handler {
	h.unknown = append(h.unknown, fn)
	return h
}

// Dispatch runs the callbacks registered for ev. Events without a
// callback are ignored.
func (h *Handler) Dispatch(ctx context.Context, ev *ServerEvent) error {
	fns := h.byType[ev.Type]
	if len(fns) == 0 && !ev.Known() {
		fns = h.unknown
	}
	for _, fn := range fns {
		if err := fn(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// OnSessionCreated handles session.created.
func (h *Handler) OnSessionCreated(fn func(ctx context.Context, s *SessionResource) error) *Handler {
	return h.On(EventTypeSessionCreated, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.Session)
	})
}

// OnSessionUpdated handles session.updated.
func (h *Handler) OnSessionUpdated(fn func(ctx context.Context, s *SessionResource) error) *Handler {
	return h.On(EventTypeSessionUpdated, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.Session)
	})
}

// OnItemCreated handles conversation.item.created.
func (h *Handler) OnItemCreated(fn func(ctx context.Context, item *ConversationItem, previousItemID string) error) *Handler {
	return h.On(EventTypeConversationItemCreated, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.Item, ev.PreviousItemID)
	})
}

// OnTranscriptionCompleted handles the transcript of user audio.
func (h *Handler) OnTranscriptionCompleted(fn func(ctx context.Context, itemID, transcript string) error) *Handler {
	return h.On(EventTypeConversationItemInputAudioTranscriptionCompleted, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.ItemID, ev.Transcript)
	})
}

// OnSpeechStarted handles input_audio_buffer.speech_started.
func (h *Handler) OnSpeechStarted(fn func(ctx context.Context, audioStartMs int, itemID string) error) *Handler {
	return h.On(EventTypeInputAudioBufferSpeechStarted, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.AudioStartMs, ev.ItemID)
	})
}

// OnSpeechStopped handles input_audio_buffer.speech_stopped.
func (h *Handler) OnSpeechStopped(fn func(ctx context.Context, audioEndMs int, itemID string) error) *Handler {
	return h.On(EventTypeInputAudioBufferSpeechStopped, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.AudioEndMs, ev.ItemID)
	})
}

// OnResponseCreated handles response.created.
func (h *Handler) OnResponseCreated(fn func(ctx context.Context, r *ResponseResource) error) *Handler {
	return h.On(EventTypeResponseCreated, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.Response)
	})
}

// OnResponseDone handles response.done, including cancelled responses.
func (h *Handler) OnResponseDone(fn func(ctx context.Context, r *ResponseResource) error) *Handler {
	return h.On(EventTypeResponseDone, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.Response)
	})
}

// OnTextDelta handles response.text.delta.
func (h *Handler) OnTextDelta(fn func(ctx context.Context, responseID, delta string) error) *Handler {
	return h.On(EventTypeResponseTextDelta, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.ResponseID, ev.Delta)
	})
}

// OnTextDone handles response.text.done.
func (h *Handler) OnTextDone(fn func(ctx context.Context, responseID, text string) error) *Handler {
	return h.On(EventTypeResponseTextDone, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.ResponseID, ev.Text)
	})
}

// OnAudioDelta handles response.audio.delta with the audio already decoded.
func (h *Handler) OnAudioDelta(fn func(ctx context.Context, responseID string, audio []byte) error) *Handler {
	return h.On(EventTypeResponseAudioDelta, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.ResponseID, ev.Audio)
	})
}

// OnAudioDone handles response.audio.done.
func (h *Handler) OnAudioDone(fn func(ctx context.Context, responseID, itemID string) error) *Handler {
	return h.On(EventTypeResponseAudioDone, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.ResponseID, ev.ItemID)
	})
}

// OnAudioTranscriptDelta handles response.audio_transcript.delta.
func (h *Handler) OnAudioTranscriptDelta(fn func(ctx context.Context, responseID, delta string) error) *Handler {
	return h.On(EventTypeResponseAudioTranscriptDelta, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.ResponseID, ev.Delta)
	})
}

// OnAudioTranscriptDone handles response.audio_transcript.done.
func (h *Handler) OnAudioTranscriptDone(fn func(ctx context.Context, responseID, transcript string) error) *Handler {
	return h.On(EventTypeResponseAudioTranscriptDone, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.ResponseID, ev.Transcript)
	})
}

// OnFunctionCallArgumentsDelta handles streamed argument fragments.
func (h *Handler) OnFunctionCallArgumentsDelta(fn func(ctx context.Context, callID, delta string) error) *Handler {
	return h.On(EventTypeResponseFunctionCallArgumentsDelta, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.CallID, ev.Delta)
	})
}

// OnFunctionCallArgumentsDone handles a completed function call. Reply with
// Session.SubmitFunctionOutput and then Session.CreateResponse.
func (h *Handler) OnFunctionCallArgumentsDone(fn func(ctx context.Context, call openai.ToolCall) error) *Handler {
	return h.On(EventTypeResponseFunctionCallArgumentsDone, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.ToolCall())
	})
}

// OnRateLimitsUpdated handles rate_limits.updated.
func (h *Handler) OnRateLimitsUpdated(fn func(ctx context.Context, limits []RateLimit) error) *Handler {
	return h.On(EventTypeRateLimitsUpdated, func(ctx context.Context, ev *ServerEvent) error {
		return fn(ctx, ev.RateLimits)
	})
}

// OnError handles error events. Returning the error stops Run with it;
// returning nil keeps the session going.
func (h *Handler) OnError(fn func(ctx context.Context, err *openai.APIError) error) *Handler {
	return h.On(EventTypeError, func(ctx context.Context, ev *ServerEvent) error {
		apiErr := ev.Error
		if apiErr == nil {
			apiErr = &openai.APIError{Message: "unknown realtime error"}
		}
		return fn(ctx, apiErr)
	})
}
