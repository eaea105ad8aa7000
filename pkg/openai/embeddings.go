package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

// EncodingFormat selects how embedding vectors are encoded on the wire.
type EncodingFormat string

const (
	EncodingFloat  EncodingFormat = "float"
	EncodingBase64 EncodingFormat = "base64"
)

// EmbeddingRequest creates embeddings for one or more inputs.
type EmbeddingRequest struct {
	Model string
	// Input holds one or more texts. A single text is sent as a plain string.
	Input          []string
	Dimensions     int
	EncodingFormat EncodingFormat
	User           string
}

// NewEmbeddingRequest returns a request for the given inputs.
func NewEmbeddingRequest(model string, input ...string) *EmbeddingRequest {
	return &EmbeddingRequest{Model: model, Input: input}
}

// WithDimensions truncates output vectors; only text-embedding-3 models
// accept it.
func (r *EmbeddingRequest) WithDimensions(n int) *EmbeddingRequest {
	r.Dimensions = n
	return r
}

// WithEncodingFormat sets the vector encoding.
func (r *EmbeddingRequest) WithEncodingFormat(f EncodingFormat) *EmbeddingRequest {
	r.EncodingFormat = f
	return r
}

// WithUser sets the end-user identifier.
func (r *EmbeddingRequest) WithUser(user string) *EmbeddingRequest {
	r.User = user
	return r
}

type embeddingRequestWire struct {
	Model          string         `json:"model"`
	Input          any            `json:"input"`
	Dimensions     int            `json:"dimensions,omitzero"`
	EncodingFormat EncodingFormat `json:"encoding_format,omitzero"`
	User           string         `json:"user,omitzero"`
}

func (r *EmbeddingRequest) lower() (*embeddingRequestWire, error) {
	if r.Model == "" {
		return nil, configErrorf("embedding model is required")
	}
	if len(r.Input) == 0 {
		return nil, configErrorf("embedding input is empty")
	}
	for i, s := range r.Input {
		if s == "" {
			return nil, configErrorf("embedding input %d is empty", i)
		}
	}
	switch r.EncodingFormat {
	case "", EncodingFloat, EncodingBase64:
	default:
		return nil, configErrorf("invalid encoding format %q", r.EncodingFormat)
	}
	w := &embeddingRequestWire{
		Model:          r.Model,
		Dimensions:     r.Dimensions,
		EncodingFormat: r.EncodingFormat,
		User:           r.User,
	}
	if len(r.Input) == 1 {
		w.Input = r.Input[0]
	} else {
		w.Input = r.Input
	}
	return w, nil
}

// Vector is an embedding payload. The server may return a flat vector,
// a nested 2- or 3-dimensional array, or a base64 string of little-endian
// float32 values. Exactly one form is populated after decoding.
type Vector struct {
	d1  []float64
	d2  [][]float64
	d3  [][][]float64
	b64 string
}

// As1D returns the flat vector.
func (v *Vector) As1D() ([]float64, bool) { return v.d1, v.d1 != nil }

// As2D returns a 2-dimensional vector.
func (v *Vector) As2D() ([][]float64, bool) { return v.d2, v.d2 != nil }

// As3D returns a 3-dimensional vector.
func (v *Vector) As3D() ([][][]float64, bool) { return v.d3, v.d3 != nil }

// Base64 returns the raw base64 payload.
func (v *Vector) Base64() (string, bool) { return v.b64, v.b64 != "" }

// Float32s decodes a base64 payload.
func (v *Vector) Float32s() ([]float32, error) {
	if v.b64 == "" {
		return nil, &CodecError{Op: "decode embedding", Err: fmt.Errorf("vector is not base64 encoded")}
	}
	raw, err := base64.StdEncoding.DecodeString(v.b64)
	if err != nil {
		return nil, &CodecError{Op: "decode embedding", Err: err}
	}
	if len(raw)%4 != 0 {
		return nil, &CodecError{Op: "decode embedding", Err: fmt.Errorf("payload length %d is not a multiple of 4", len(raw))}
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// MarshalJSON emits whichever form is populated.
func (v Vector) MarshalJSON() ([]byte, error) {
	switch {
	case v.d1 != nil:
		return json.Marshal(v.d1)
	case v.d2 != nil:
		return json.Marshal(v.d2)
	case v.d3 != nil:
		return json.Marshal(v.d3)
	case v.b64 != "":
		return json.Marshal(v.b64)
	}
	return []byte("null"), nil
}

// UnmarshalJSON picks the form by inspecting the array nesting depth.
func (v *Vector) UnmarshalJSON(data []byte) error {
	*v = Vector{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &v.b64)
	}
	switch arrayDepth(data) {
	case 1:
		v.d1 = []float64{}
		return json.Unmarshal(data, &v.d1)
	case 2:
		v.d2 = [][]float64{}
		return json.Unmarshal(data, &v.d2)
	case 3:
		v.d3 = [][][]float64{}
		return json.Unmarshal(data, &v.d3)
	}
	return fmt.Errorf("unsupported embedding shape")
}

// arrayDepth counts leading '[' tokens.
func arrayDepth(data []byte) int {
	depth := 0
	for _, b := range data {
		switch b {
		case '[':
			depth++
		case ' ', '\t', '\n', '\r':
		default:
			return depth
		}
	}
	return depth
}

// Embedding is one result of an embeddings call.
type Embedding struct {
	Object    string `json:"object"`
	Index     int    `json:"index"`
	Embedding Vector `json:"embedding"`
}

// EmbeddingResponse is the result of EmbeddingsService.Create.
type EmbeddingResponse struct {
	Object string       `json:"object"`
	Data   []*Embedding `json:"data"`
	Model  string       `json:"model"`
	Usage  *Usage       `json:"usage,omitzero"`
}

// EmbeddingsService creates vector embeddings.
type EmbeddingsService struct {
	client *Client
}

func newEmbeddingsService(client *Client) *EmbeddingsService {
	return &EmbeddingsService{client: client}
}

// Create embeds the request inputs.
func (s *EmbeddingsService) Create(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error) {
	body, err := req.lower()
	if err != nil {
		return nil, err
	}
	var resp EmbeddingResponse
	err = s.client.http.doJSON(ctx, &request{
		op:     "embeddings.create",
		method: http.MethodPost,
		path:   "embeddings",
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
