package openairealtime

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

// Errors returned by this package share the classification of package
// openai, so openai.KindOf works on them unchanged.

func configErrorf(format string, args ...any) error {
	return &openai.ConfigError{Message: fmt.Sprintf(format, args...)}
}

func transportError(op string, err error) error {
	return &openai.TransportError{Op: op, Err: err}
}

func codecError(op string, err error) error {
	return &openai.CodecError{Op: op, Err: err}
}

// handshakeError converts a failed upgrade into an *openai.APIError when
// the server answered with an HTTP error, and a transport error otherwise.
func handshakeError(resp *http.Response, err error) error {
	if resp == nil || resp.StatusCode < 400 {
		return transportError("dial", err)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env struct {
		Error *openai.APIError `json:"error"`
	}
	if jerr := json.Unmarshal(body, &env); jerr == nil && env.Error != nil && env.Error.Message != "" {
		env.Error.HTTPStatus = resp.StatusCode
		return env.Error
	}
	msg := string(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &openai.APIError{HTTPStatus: resp.StatusCode, Message: msg}
}
