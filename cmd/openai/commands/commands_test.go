package commands

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

func TestChatFileRequest(t *testing.T) {
	var f chatFile
	err := cli.ParseRequest([]byte(`
model: gpt-4o-mini
messages:
  - role: system
    content: Be brief.
  - role: user
    content: Hi
temperature: 0.2
max_completion_tokens: 64
json_mode: true
`), &f)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	req := f.request()
	if req.Model != "gpt-4o-mini" || len(req.Messages) != 2 {
		t.Fatalf("request = %+v", req)
	}
	if req.Messages[1].Role != openai.RoleUser || req.Messages[1].Text != "Hi" {
		t.Errorf("user message = %+v", req.Messages[1])
	}
	if req.Temperature == nil || *req.Temperature != 0.2 {
		t.Errorf("Temperature = %v", req.Temperature)
	}
	if req.MaxCompletionTokens == nil || *req.MaxCompletionTokens != 64 {
		t.Errorf("MaxCompletionTokens = %v", req.MaxCompletionTokens)
	}
	if req.ResponseFormat == nil {
		t.Error("json_mode did not set a response format")
	}
}

func TestResponsesFileRequest(t *testing.T) {
	var f responsesFile
	err := cli.ParseRequest([]byte(`{"model":"gpt-4.1-mini","input":"Hello","verbosity":"low","metadata":{"run":"1"}}`), &f)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	req := f.request()
	if req.Model != "gpt-4.1-mini" || req.Input != "Hello" {
		t.Errorf("request = %+v", req)
	}
	if req.Verbosity != openai.VerbosityLow {
		t.Errorf("Verbosity = %q", req.Verbosity)
	}
	if req.Metadata["run"] != "1" {
		t.Errorf("Metadata = %v", req.Metadata)
	}
}

func TestPromptMessages(t *testing.T) {
	if _, err := promptMessages("", ""); err == nil {
		t.Error("empty prompt accepted")
	}
	msgs, err := promptMessages("", "hi")
	if err != nil || len(msgs) != 1 || msgs[0].Role != openai.RoleUser {
		t.Errorf("prompt only = %+v, %v", msgs, err)
	}
	msgs, err = promptMessages("be terse", "hi")
	if err != nil || len(msgs) != 2 || msgs[0].Role != openai.RoleSystem || msgs[0].Text != "be terse" {
		t.Errorf("with system = %+v, %v", msgs, err)
	}
}

func TestParseMetadata(t *testing.T) {
	md, err := parseMetadata(nil)
	if err != nil || md != nil {
		t.Errorf("nil pairs = %v, %v", md, err)
	}
	md, err = parseMetadata([]string{"a=1", "b=x=y", "c="})
	if err != nil {
		t.Fatalf("parseMetadata: %v", err)
	}
	if md["a"] != "1" || md["b"] != "x=y" || md["c"] != "" || len(md) != 3 {
		t.Errorf("metadata = %v", md)
	}
	for _, bad := range []string{"novalue", "=v"} {
		if _, err := parseMetadata([]string{bad}); err == nil {
			t.Errorf("parseMetadata(%q) accepted", bad)
		}
	}
}

func TestCurrentTime(t *testing.T) {
	call := openai.NewToolCall("call_1", "current_time", `{"timezone":"UTC"}`)
	if got := currentTime(call); !strings.HasPrefix(got, `{"time":"`) || !strings.Contains(got, "Z") {
		t.Errorf("UTC = %s", got)
	}
	call.Function.Arguments = `{"timezone":"Nowhere/Special"}`
	if got := currentTime(call); !strings.HasPrefix(got, `{"error":`) {
		t.Errorf("unknown zone = %s", got)
	}
}

func TestApplyContextFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "add-context"}
	addContextFlags(cmd)
	if err := cmd.Flags().Set("default-model", "gpt-4.1-mini"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("timeout", "90"); err != nil {
		t.Fatal(err)
	}

	ctx := &cli.Context{APIKey: "sk-keep", Provider: cli.ProviderOpenAI, BaseURL: "http://localhost:8080/v1"}
	if err := applyContextFlags(cmd, ctx); err != nil {
		t.Fatalf("applyContextFlags: %v", err)
	}
	if ctx.APIKey != "sk-keep" || ctx.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("unset flags overwrote fields: %+v", ctx)
	}
	if ctx.Timeout != 90 || ctx.DefaultModel() != "gpt-4.1-mini" {
		t.Errorf("set flags not applied: %+v", ctx)
	}
}

type endlessLines struct{}

func (endlessLines) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = "x\n"[i%2]
	}
	return len(p) &^ 1, nil
}

func TestReadLines(t *testing.T) {
	var got []string
	for l := range readLines(context.Background(), strings.NewReader("hello\nworld\n")) {
		got = append(got, l)
	}
	if !slices.Equal(got, []string{"hello", "world"}) {
		t.Errorf("lines = %v", got)
	}
}

func TestReadLinesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines := readLines(ctx, endlessLines{})
	if l := <-lines; l != "x" {
		t.Fatalf("first line = %q", l)
	}
	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("reader goroutine still running after cancel")
		}
	}
}
