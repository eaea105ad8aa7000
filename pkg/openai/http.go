package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxLoggedBody bounds how much of a response body is written to debug logs.
const maxLoggedBody = 500

// httpClient executes request descriptors against the configured provider.
type httpClient struct {
	client    *http.Client
	auth      *AuthProvider
	userAgent string
	logger    *zap.Logger
	limiter   *rate.Limiter
	metrics   *requestMetrics
}

// newHTTPClient creates a new HTTP client.
func newHTTPClient(cfg *clientConfig) *httpClient {
	return &httpClient{
		client:    cfg.httpClient,
		auth:      cfg.auth,
		userAgent: cfg.userAgent,
		logger:    cfg.logger,
		limiter:   cfg.limiter,
		metrics:   newRequestMetrics(cfg.registerer),
	}
}

// queryParam is one name/value pair of a query string.
type queryParam struct {
	name  string
	value string
}

// query is an ordered list of query parameters.
type query []queryParam

// add appends name=value when value is not empty.
func (q query) add(name, value string) query {
	if value == "" {
		return q
	}
	return append(q, queryParam{name: name, value: value})
}

// addInt appends name=n when n is positive.
func (q query) addInt(name string, n int) query {
	if n <= 0 {
		return q
	}
	return append(q, queryParam{name: name, value: fmt.Sprint(n)})
}

// encode percent-encodes the parameters in order.
func (q query) encode() string {
	var sb strings.Builder
	for i, p := range q {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.value))
	}
	return sb.String()
}

// formPart is one multipart field. A part with a reader is a file; a part
// without one is a plain text field.
type formPart struct {
	field       string
	value       string
	reader      io.Reader
	filename    string
	contentType string
}

// textField returns a plain form field.
func textField(field, value string) formPart {
	return formPart{field: field, value: value}
}

// fileField returns a file form field. Binary parts always carry a
// filename and a mime type.
func fileField(field string, r io.Reader, filename, contentType string) formPart {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return formPart{field: field, reader: r, filename: filename, contentType: contentType}
}

// request describes one HTTP round trip. Exactly one of body and form is
// used; neither means a bodyless call.
type request struct {
	// op names the operation in logs and metrics, e.g. "chat.create".
	op     string
	method string
	path   string
	query  query
	body   any
	form   []formPart
	accept string
}

// newRequest builds the *http.Request for r. For multipart requests the
// returned wait func releases the body pipe and reports the writer result.
func (h *httpClient) newRequest(ctx context.Context, r *request) (*http.Request, func() error, error) {
	if err := h.auth.validate(); err != nil {
		return nil, nil, err
	}

	endpoint := h.auth.Endpoint(r.path)
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + r.query.encode()
	}

	var (
		body        io.Reader
		contentType string
		wait        func() error
	)
	switch {
	case r.form != nil:
		pr, errCh, ct := streamMultipart(r.form)
		body, contentType = pr, ct
		wait = func() error {
			pr.Close()
			if err := <-errCh; err != nil && !errors.Is(err, io.ErrClosedPipe) {
				return err
			}
			return nil
		}
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, nil, &CodecError{Op: "encode " + r.op + " request", Err: err}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		if c, ok := body.(io.Closer); ok {
			c.Close()
		}
		return nil, nil, configErrorf("create request: %v", err)
	}
	if err := h.auth.ApplyHeaders(req.Header); err != nil {
		if c, ok := body.(io.Closer); ok {
			c.Close()
		}
		return nil, nil, err
	}
	req.Header.Set("User-Agent", h.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	return req, wait, nil
}

// streamMultipart writes parts through an io.Pipe so that file contents are
// never buffered in memory. The channel yields the writer's result once.
func streamMultipart(parts []formPart) (*io.PipeReader, <-chan error, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	errCh := make(chan error, 1)

	go func() {
		err := writeParts(writer, parts)
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
		errCh <- err
	}()

	return pr, errCh, writer.FormDataContentType()
}

func writeParts(w *multipart.Writer, parts []formPart) error {
	for _, p := range parts {
		if p.reader == nil {
			if err := w.WriteField(p.field, p.value); err != nil {
				return fmt.Errorf("write field %s: %w", p.field, err)
			}
			continue
		}
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		hdr.Set("Content-Type", p.contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			return fmt.Errorf("create form file %s: %w", p.field, err)
		}
		if _, err := io.Copy(part, p.reader); err != nil {
			return fmt.Errorf("copy file %s: %w", p.field, err)
		}
	}
	return nil
}

// send performs r and returns the response with an unread body. Non-2xx
// responses are consumed and turned into *APIError.
func (h *httpClient) send(ctx context.Context, r *request) (*http.Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: r.op, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, wait, err := h.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		if wait != nil {
			wait()
		}
		h.metrics.observe(r.op, 0, time.Since(start))
		h.logger.Debug("request failed",
			zap.String("op", r.op),
			zap.String("method", r.method),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err),
		)
		return nil, &TransportError{Op: r.op, Err: err}
	}
	var werr error
	if wait != nil {
		werr = wait()
	}

	h.metrics.observe(r.op, resp.StatusCode, time.Since(start))
	h.logger.Debug("request",
		zap.String("op", r.op),
		zap.String("method", r.method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &TransportError{Op: r.op, Err: fmt.Errorf("read error body: %w", err)}
		}
		h.logger.Debug("error response",
			zap.String("op", r.op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, maxLoggedBody)),
		)
		return nil, parseAPIError(resp.StatusCode, body)
	}
	if werr != nil {
		resp.Body.Close()
		return nil, &TransportError{Op: r.op, Err: werr}
	}
	return resp, nil
}

// do performs r and returns the full success body.
func (h *httpClient) do(ctx context.Context, r *request) ([]byte, error) {
	resp, err := h.send(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: fmt.Errorf("read response body: %w", err)}
	}
	return body, nil
}

// doJSON performs r and decodes the success body into result.
func (h *httpClient) doJSON(ctx context.Context, r *request, result any) error {
	body, err := h.do(ctx, r)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &CodecError{Op: "decode " + r.op + " response", Err: err}
	}
	return nil
}

// doStream performs r and returns an SSE reader over the success body.
func (h *httpClient) doStream(ctx context.Context, r *request) (*sseReader, error) {
	r.accept = "text/event-stream"
	resp, err := h.send(ctx, r)
	if err != nil {
		return nil, err
	}
	return newSSEReader(resp), nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
