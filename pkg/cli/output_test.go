package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type wireShaped struct {
	CreatedAt int64  `json:"created_at"`
	Skipped   string `json:"skipped,omitzero"`
	Link      string `json:"link,omitzero"`
}

func TestOutput_Formats(t *testing.T) {
	tests := []struct {
		name   string
		result any
		format OutputFormat
		want   string
	}{
		{"yaml uses json tags", &wireShaped{CreatedAt: 42}, FormatYAML, "created_at: 42\n"},
		{"default is yaml", &wireShaped{CreatedAt: 7}, "", "created_at: 7\n"},
		{"json indented", &wireShaped{CreatedAt: 1}, FormatJSON, "{\n  \"created_at\": 1\n}\n"},
		{"json keeps ampersand", &wireShaped{Link: "a?b=1&c=2"}, FormatJSON, "{\n  \"created_at\": 0,\n  \"link\": \"a?b=1&c=2\"\n}\n"},
		{"raw bytes", []byte{0x00, 0x01}, FormatRaw, "\x00\x01"},
		{"raw string", "plain text", FormatRaw, "plain text"},
		{"raw reader", strings.NewReader("streamed"), FormatRaw, "streamed"},
		{"raw falls back to yaml", &wireShaped{CreatedAt: 3}, FormatRaw, "created_at: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Output(tt.result, OutputOptions{Format: tt.format, Writer: &buf}); err != nil {
				t.Fatalf("Output: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutput_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Output("x", OutputOptions{Format: "xml", Writer: &buf}); err == nil {
		t.Error("Output accepted an unknown format")
	}
}

func TestOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := Output(map[string]int{"n": 1}, OutputOptions{Format: FormatJSON, File: path}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil || got["n"] != 1 {
		t.Errorf("file = %s, %v", data, err)
	}
}

func TestOutput_DefaultsToStdout(t *testing.T) {
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	if err := Output("hi", OutputOptions{Format: FormatRaw}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	PrintSuccess("saved %d files", 2)
	if got := buf.String(); got != "hi✓ saved 2 files\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestOutputBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "speech.mp3")
	if err := os.WriteFile(path, []byte("old contents that are longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := OutputBytes([]byte("new"), path); err != nil {
		t.Fatalf("OutputBytes: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "new" {
		t.Errorf("file = %q, %v", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1 (temp file left behind)", len(entries))
	}

	if err := OutputBytes([]byte("x"), ""); err == nil {
		t.Error("OutputBytes accepted an empty path")
	}
	if err := OutputBytes([]byte("x"), filepath.Join(dir, "missing", "a.bin")); err == nil {
		t.Error("OutputBytes wrote into a missing directory")
	}
}

func TestPrintVerbose(t *testing.T) {
	var buf bytes.Buffer
	old := stderr
	stderr = &buf
	defer func() { stderr = old }()

	PrintVerbose(false, "hidden")
	PrintVerbose(true, "model %s", "gpt-4o-mini")
	if got := buf.String(); got != "[verbose] model gpt-4o-mini\n" {
		t.Errorf("stderr = %q", got)
	}
}
