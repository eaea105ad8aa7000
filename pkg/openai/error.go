package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ErrorKind classifies every error returned by this package.
type ErrorKind int

const (
	// KindUnknown is returned for errors that did not originate here.
	KindUnknown ErrorKind = iota
	// KindConfig is a locally detected precondition failure.
	KindConfig
	// KindTransport is a failure before a complete response or frame arrived.
	KindTransport
	// KindCodec is malformed JSON in either direction.
	KindCodec
	// KindAPI is a structured error returned by the server.
	KindAPI
	// KindStreamClosed means a realtime session ended without an error event.
	KindStreamClosed
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindCodec:
		return "codec"
	case KindAPI:
		return "api"
	case KindStreamClosed:
		return "stream_closed"
	default:
		return "unknown"
	}
}

// ErrStreamClosed is returned when sending on, or receiving from, a
// realtime session that has already ended.
var ErrStreamClosed = errors.New("openai: stream closed")

// ConfigError reports a local precondition failure: a missing key or model,
// empty input, conflicting fields, or an option the model does not support.
// It is always returned before any I/O happens.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "openai: config: " + e.Message
}

// configErrorf builds a *ConfigError from a format string.
func configErrorf(format string, args ...any) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// TransportError wraps DNS, TLS, timeout and connection failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("openai: transport: %v", e.Err)
	}
	return fmt.Sprintf("openai: transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CodecError wraps JSON encoding and decoding failures.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("openai: codec: %v", e.Err)
	}
	return fmt.Sprintf("openai: codec: %s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// APIError is the structured error returned by the server for any status
// at or above 400, or carried by a realtime "error" event.
type APIError struct {
	// HTTPStatus is zero for errors delivered over a realtime session.
	HTTPStatus int `json:"-"`

	Message string `json:"message"`
	Type    string `json:"type,omitzero"`
	Code    string `json:"code,omitzero"`
	Param   string `json:"param,omitzero"`

	// EventID is the client event that caused a realtime error, if any.
	EventID string `json:"event_id,omitzero"`
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.HTTPStatus != 0:
		return fmt.Sprintf("openai: %s (status=%d, code=%s)", e.Message, e.HTTPStatus, e.Code)
	case e.HTTPStatus != 0:
		return fmt.Sprintf("openai: %s (status=%d)", e.Message, e.HTTPStatus)
	case e.Code != "":
		return fmt.Sprintf("openai: %s (code=%s)", e.Message, e.Code)
	default:
		return "openai: " + e.Message
	}
}

// IsAuth reports an authentication or permission failure.
func (e *APIError) IsAuth() bool {
	return e.HTTPStatus == http.StatusUnauthorized || e.HTTPStatus == http.StatusForbidden ||
		e.Code == "invalid_api_key"
}

// IsRateLimit reports a rate limit or quota failure.
func (e *APIError) IsRateLimit() bool {
	return e.HTTPStatus == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

// IsNotFound reports a missing resource.
func (e *APIError) IsNotFound() bool {
	return e.HTTPStatus == http.StatusNotFound
}

// IsInvalidRequest reports a malformed or rejected request.
func (e *APIError) IsInvalidRequest() bool {
	if e.Type == "invalid_request_error" {
		return true
	}
	return e.HTTPStatus >= 400 && e.HTTPStatus < 500 && !e.IsAuth() && !e.IsRateLimit() && !e.IsNotFound()
}

// IsServerError reports a 5xx failure.
func (e *APIError) IsServerError() bool {
	return e.HTTPStatus >= 500
}

// UnmarshalJSON accepts a code that is a string, a number or null.
func (e *APIError) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
		Param   json.RawMessage `json:"param"`
		EventID string          `json:"event_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Message = raw.Message
	e.Type = raw.Type
	e.Code = looseString(raw.Code)
	e.Param = looseString(raw.Param)
	e.EventID = raw.EventID
	return nil
}

// looseString renders a JSON scalar as a string; null and absent are empty.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return string(raw)
}

// errorEnvelope is the body shape of every HTTP error response.
type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// parseAPIError builds an *APIError from an error response body. When the
// body is not the expected envelope the raw text becomes the message.
func parseAPIError(status int, body []byte) *APIError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		env.Error.HTTPStatus = status
		return env.Error
	}
	msg := string(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{HTTPStatus: status, Message: msg}
}

// AsAPIError extracts *APIError from an error chain.
//
// Example:
//
//	if e, ok := openai.AsAPIError(err); ok && e.IsRateLimit() {
//	    // back off
//	}
func AsAPIError(err error) (*APIError, bool) {
	var e *APIError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf classifies err. Wrapped errors are unwrapped with errors.As.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var (
		ce *ConfigError
		te *TransportError
		de *CodecError
		ae *APIError
	)
	switch {
	case errors.As(err, &ce):
		return KindConfig
	case errors.As(err, &ae):
		return KindAPI
	case errors.As(err, &de):
		return KindCodec
	case errors.As(err, &te):
		return KindTransport
	case errors.Is(err, ErrStreamClosed):
		return KindStreamClosed
	default:
		return KindUnknown
	}
}
