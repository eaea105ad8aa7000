package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

type testRequest struct {
	Model       string           `json:"model"`
	Temperature *float64         `json:"temperature"`
	Messages    []openai.Message `json:"messages"`
}

func TestParseRequest_YAMLAndJSON(t *testing.T) {
	docs := map[string]string{
		"yaml": `
model: gpt-4o-mini
temperature: 0.2
messages:
  - role: system
    content: Be brief.
  - role: user
    content:
      - type: text
        text: What is this?
      - type: image_url
        image_url:
          url: https://example.com/cat.png
`,
		"json": `{"model":"gpt-4o-mini","temperature":0.2,"messages":[
			{"role":"system","content":"Be brief."},
			{"role":"user","content":[{"type":"text","text":"What is this?"},
				{"type":"image_url","image_url":{"url":"https://example.com/cat.png"}}]}]}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			var req testRequest
			if err := ParseRequest([]byte(doc), &req); err != nil {
				t.Fatalf("ParseRequest error: %v", err)
			}
			if req.Model != "gpt-4o-mini" {
				t.Errorf("Model = %q, want gpt-4o-mini", req.Model)
			}
			if req.Temperature == nil || *req.Temperature != 0.2 {
				t.Errorf("Temperature = %v, want 0.2", req.Temperature)
			}
			if len(req.Messages) != 2 {
				t.Fatalf("len(Messages) = %d, want 2", len(req.Messages))
			}
			if req.Messages[0].Role != openai.RoleSystem || req.Messages[0].Text != "Be brief." {
				t.Errorf("Messages[0] = %+v", req.Messages[0])
			}
			parts := req.Messages[1].Parts
			if len(parts) != 2 || parts[1].Type != openai.PartImageURL || parts[1].ImageURL != "https://example.com/cat.png" {
				t.Errorf("Messages[1].Parts = %+v", parts)
			}
		})
	}
}

func TestParseRequest_Errors(t *testing.T) {
	var req testRequest
	tests := []string{
		"",
		"model: [unterminated",
		"model: {a: 1}",
	}
	for _, doc := range tests {
		if err := ParseRequest([]byte(doc), &req); err == nil {
			t.Errorf("ParseRequest(%q) should fail", doc)
		}
	}
}

func TestLoadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yml")
	if err := os.WriteFile(path, []byte("model: text-embedding-3-small\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var req testRequest
	if err := LoadRequest(path, &req); err != nil {
		t.Fatalf("LoadRequest error: %v", err)
	}
	if req.Model != "text-embedding-3-small" {
		t.Errorf("Model = %q", req.Model)
	}

	if err := LoadRequest(filepath.Join(t.TempDir(), "missing.yaml"), &req); err == nil {
		t.Error("LoadRequest should fail for a missing file")
	}

	var fromReader testRequest
	if err := LoadRequestFromReader(strings.NewReader(`{"model":"m"}`), &fromReader); err != nil || fromReader.Model != "m" {
		t.Errorf("LoadRequestFromReader = %+v, %v", fromReader, err)
	}
}
