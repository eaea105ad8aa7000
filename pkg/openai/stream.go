package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
)

// sseReader reads Server-Sent Events from a response body.
type sseReader struct {
	reader *bufio.Reader
	resp   *http.Response
}

func newSSEReader(resp *http.Response) *sseReader {
	return &sseReader{
		reader: bufio.NewReader(resp.Body),
		resp:   resp,
	}
}

// readEvent reads the next event's data. Multi-line data fields are joined
// with '\n'. Returns (data, isDone, error); isDone is set on "[DONE]" or EOF.
func (r *sseReader) readEvent() ([]byte, bool, error) {
	var data []byte

	for {
		line, err := r.reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, false, err
		}
		eof := err == io.EOF

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			if len(data) > 0 {
				return data, false, nil
			}
			if eof {
				return nil, true, nil
			}
			continue
		}

		// Comments and event names carry nothing the caller needs; the
		// JSON payload repeats the type.
		if value, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			value = bytes.TrimPrefix(value, []byte(" "))
			if bytes.Equal(value, []byte("[DONE]")) {
				return nil, true, nil
			}
			if len(data) > 0 {
				data = append(data, '\n')
			}
			data = append(data, value...)
		}

		if eof {
			if len(data) > 0 {
				return data, false, nil
			}
			return nil, true, nil
		}
	}
}

func (r *sseReader) close() {
	r.resp.Body.Close()
}

// stream performs r and yields each SSE payload decoded as T. The response
// body is closed when iteration ends or the caller breaks out.
func stream[T any](ctx context.Context, h *httpClient, r *request) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		reader, err := h.doStream(ctx, r)
		if err != nil {
			yield(nil, err)
			return
		}
		defer reader.close()

		for {
			data, done, err := reader.readEvent()
			if err != nil {
				yield(nil, &TransportError{Op: r.op, Err: err})
				return
			}
			if done {
				return
			}

			var chunk T
			if err := json.Unmarshal(data, &chunk); err != nil {
				yield(nil, &CodecError{Op: "decode " + r.op + " chunk", Err: err})
				return
			}
			if !yield(&chunk, nil) {
				return
			}
		}
	}
}
