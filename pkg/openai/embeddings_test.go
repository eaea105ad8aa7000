package openai

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestAzureEmbedding(t *testing.T) {
	handler, reqs := captureHandler(200, `{
		"object": "list",
		"data": [{"object": "embedding", "index": 0, "embedding": [0.1, -0.2, 0.3]}],
		"model": "te",
		"usage": {"prompt_tokens": 1, "total_tokens": 1}
	}`)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	base := srv.URL + "/openai/deployments/te/embeddings?api-version=2024-08-01-preview"
	c := NewClient(NewAzureAuth("azkey", base))
	resp, err := c.Embeddings.Create(context.Background(), NewEmbeddingRequest("te", "foo"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	vec, ok := resp.Data[0].Embedding.As1D()
	if !ok || !slices.Equal(vec, []float64{0.1, -0.2, 0.3}) {
		t.Errorf("As1D = %v, %v", vec, ok)
	}

	got := <-reqs
	if got.path != "/openai/deployments/te/embeddings" {
		t.Errorf("path = %s, want the deployment URL unchanged", got.path)
	}
	if got.query != "api-version=2024-08-01-preview" {
		t.Errorf("query = %s", got.query)
	}
	if key := got.header.Get("api-key"); key != "azkey" {
		t.Errorf("api-key = %q, want azkey", key)
	}
	if auth := got.header.Get("Authorization"); auth != "" {
		t.Errorf("Authorization = %q, want absent", auth)
	}
	body := decodeBody(t, got.body)
	if body["input"] != "foo" {
		t.Errorf("input = %#v, want the string foo", body["input"])
	}
}

func TestEmbeddingBatchInput(t *testing.T) {
	w, err := NewEmbeddingRequest(ModelTextEmbedding3Small, "a", "b").WithDimensions(256).lower()
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	data, _ := json.Marshal(w)
	jsonEqual(t, data, `{"model":"text-embedding-3-small","input":["a","b"],"dimensions":256}`)
}

func TestEmbeddingValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *EmbeddingRequest
	}{
		{"no model", NewEmbeddingRequest("", "a")},
		{"no input", NewEmbeddingRequest(ModelTextEmbedding3Small)},
		{"empty item", NewEmbeddingRequest(ModelTextEmbedding3Small, "a", "")},
		{"bad format", NewEmbeddingRequest(ModelTextEmbedding3Small, "a").WithEncodingFormat("int8")},
	}
	for _, tt := range tests {
		if _, err := tt.req.lower(); KindOf(err) != KindConfig {
			t.Errorf("%s: KindOf = %v, want config", tt.name, KindOf(err))
		}
	}
}

func TestVectorShapes(t *testing.T) {
	var v Vector
	if err := json.Unmarshal([]byte(`[[1,2],[3]]`), &v); err != nil {
		t.Fatalf("Unmarshal 2D: %v", err)
	}
	if d2, ok := v.As2D(); !ok || len(d2) != 2 || d2[1][0] != 3 {
		t.Errorf("As2D = %v, %v", d2, ok)
	}
	if _, ok := v.As1D(); ok {
		t.Error("2D vector also reports 1D")
	}

	if err := json.Unmarshal([]byte(` [ [ [0.5] ] ]`), &v); err != nil {
		t.Fatalf("Unmarshal 3D: %v", err)
	}
	if d3, ok := v.As3D(); !ok || d3[0][0][0] != 0.5 {
		t.Errorf("As3D = %v, %v", d3, ok)
	}
	if _, ok := v.As2D(); ok {
		t.Error("3D vector still reports 2D after reuse")
	}

	if err := json.Unmarshal([]byte(`[]`), &v); err != nil {
		t.Fatalf("Unmarshal empty: %v", err)
	}
	if d1, ok := v.As1D(); !ok || len(d1) != 0 {
		t.Errorf("empty As1D = %v, %v", d1, ok)
	}

	data, err := json.Marshal(v)
	if err != nil || string(data) != "[]" {
		t.Errorf("Marshal = %s, %v", data, err)
	}
}

func TestVectorBase64(t *testing.T) {
	want := []float32{1.5, -2, 0.25}
	raw := make([]byte, 4*len(want))
	for i, f := range want {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(f))
	}
	enc := base64.StdEncoding.EncodeToString(raw)

	var v Vector
	if err := json.Unmarshal([]byte(`"`+enc+`"`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s, ok := v.Base64(); !ok || s != enc {
		t.Errorf("Base64 = %q, %v", s, ok)
	}
	got, err := v.Float32s()
	if err != nil {
		t.Fatalf("Float32s: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Errorf("Float32s = %v, want %v", got, want)
	}

	var flat Vector
	json.Unmarshal([]byte(`[1]`), &flat)
	if _, err := flat.Float32s(); KindOf(err) != KindCodec {
		t.Errorf("Float32s on float vector: KindOf = %v, want codec", KindOf(err))
	}

	var bad Vector
	json.Unmarshal([]byte(`"AAA="`), &bad)
	if _, err := bad.Float32s(); KindOf(err) != KindCodec {
		t.Errorf("Float32s on short payload: KindOf = %v, want codec", KindOf(err))
	}
}

func TestEmbeddingAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, `{"error":{"message":"input too long","type":"invalid_request_error","param":"input"}}`)
	})
	_, err := c.Embeddings.Create(context.Background(), NewEmbeddingRequest(ModelTextEmbedding3Small, "x"))
	e, ok := AsAPIError(err)
	if !ok || e.Param != "input" {
		t.Errorf("err = %v, want APIError on param input", err)
	}
}
