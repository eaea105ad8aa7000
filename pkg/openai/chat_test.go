package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type capturedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

// captureHandler records each request on the returned channel and replies
// with body.
func captureHandler(status int, body string) (http.HandlerFunc, <-chan capturedRequest) {
	ch := make(chan capturedRequest, 8)
	return func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		ch <- capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   data,
		}
		writeJSON(w, status, body)
	}, ch
}

func decodeBody(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode body %s: %v", data, err)
	}
	return m
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

const helloCompletion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello!"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 8, "completion_tokens": 2, "total_tokens": 10}
}`

func TestChatCreate(t *testing.T) {
	handler, reqs := captureHandler(200, helloCompletion)
	c := newTestClient(t, handler)

	req := NewChatRequest(ModelGPT4oMini, UserMessage("Hi")).WithTemperature(0.2)
	resp, err := c.Chat.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := resp.Content(); got != "Hello!" {
		t.Errorf("Content = %q, want Hello!", got)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 10 {
		t.Errorf("Usage = %+v", resp.Usage)
	}

	got := <-reqs
	if got.method != http.MethodPost || got.path != "/v1/chat/completions" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if auth := got.header.Get("Authorization"); auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", auth)
	}
	body := decodeBody(t, got.body)
	if keys := sortedKeys(body); !slices.Equal(keys, []string{"messages", "model", "temperature"}) {
		t.Errorf("body keys = %v, want [messages model temperature]", keys)
	}
	if strings.Contains(string(got.body), "null") {
		t.Errorf("body contains null: %s", got.body)
	}
	jsonEqual(t, got.body, `{"model":"gpt-4o-mini","messages":[{"role":"user","content":"Hi"}],"temperature":0.2}`)
}

func TestChatRequestValidation(t *testing.T) {
	var called atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	})
	tests := []struct {
		name string
		req  *ChatCompletionRequest
	}{
		{"no model", NewChatRequest("", UserMessage("hi"))},
		{"no messages", NewChatRequest(ModelGPT4oMini)},
		{"empty text", NewChatRequest(ModelGPT4oMini, UserMessage(""))},
		{"tool without id", NewChatRequest(ModelGPT4oMini, Message{Role: RoleTool, Text: "42"})},
		{"schema without name", NewChatRequest(ModelGPT4oMini, UserMessage("hi")).WithJSONSchema(&JSONSchema{Schema: NewObject()})},
		{"bad effort", NewChatRequest(ModelO3, UserMessage("hi")).WithReasoningEffort("extreme")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Chat.Create(context.Background(), tt.req); KindOf(err) != KindConfig {
				t.Errorf("KindOf = %v, want config (err = %v)", KindOf(err), err)
			}
		})
	}
	if called.Load() {
		t.Error("server was called")
	}
}

func TestChatWhitespaceMessageIsValid(t *testing.T) {
	handler, _ := captureHandler(200, helloCompletion)
	c := newTestClient(t, handler)
	if _, err := c.Chat.Create(context.Background(), NewChatRequest(ModelGPT4oMini, UserMessage("   "))); err != nil {
		t.Errorf("Create: %v", err)
	}
}

func TestChatStructuredOutput(t *testing.T) {
	handler, reqs := captureHandler(200, helloCompletion)
	c := newTestClient(t, handler)

	schema := ChatJSONSchema("weather").WithSchema(NewObject().
		AddProperty("location", TypeString, "").
		AddProperty("temperature", TypeNumber, ""))
	req := NewChatRequest(ModelGPT4oMini, UserMessage("weather?")).WithJSONSchema(schema)
	if _, err := c.Chat.Create(context.Background(), req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	body := decodeBody(t, (<-reqs).body)
	format, _ := json.Marshal(body["response_format"])
	jsonEqual(t, format, `{
		"type": "json_schema",
		"json_schema": {
			"name": "weather",
			"schema": {
				"type": "object",
				"properties": {"location": {"type": "string"}, "temperature": {"type": "number"}},
				"required": ["location", "temperature"],
				"additionalProperties": false
			}
		}
	}`)
}

func TestChatToolRoundTrip(t *testing.T) {
	var turn atomic.Int32
	bodies := make(chan []byte, 2)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies <- data
		if turn.Add(1) == 1 {
			writeJSON(w, 200, `{"id":"1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"tool_calls","message":{
				"role":"assistant","content":null,
				"tool_calls":[{"id":"c1","type":"function","function":{"name":"calculator","arguments":"{\"a\":25,\"b\":17}"}}]}}]}`)
			return
		}
		writeJSON(w, 200, `{"id":"2","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"The answer is 42."}}]}`)
	})

	calc := FunctionTool("calculator", "Adds two numbers", NewObject().
		AddProperty("a", TypeNumber, "").
		AddProperty("b", TypeNumber, ""))
	history := []Message{UserMessage("What is 25 + 17?")}
	req := NewChatRequest(ModelGPT4oMini, history...).WithTools(calc)

	resp, err := c.Chat.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	calls := resp.ToolCalls()
	if len(calls) != 1 || calls[0].ID != "c1" || calls[0].Function.Name != "calculator" {
		t.Fatalf("ToolCalls = %+v", calls)
	}
	var args struct{ A, B float64 }
	if err := calls[0].ParseArguments(&args); err != nil {
		t.Fatalf("ParseArguments: %v", err)
	}
	req.AddMessage(resp.Message())
	req.AddMessage(NewToolMessage(fmt.Sprint(args.A+args.B), calls[0].ID))

	resp, err = c.Chat.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if !strings.Contains(resp.Content(), "42") {
		t.Errorf("Content = %q, want mention of 42", resp.Content())
	}

	first := decodeBody(t, <-bodies)
	tools, _ := json.Marshal(first["tools"])
	jsonEqual(t, tools, `[{"type":"function","function":{
		"name":"calculator","description":"Adds two numbers",
		"parameters":{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"number"}},"required":["a","b"],"additionalProperties":false}}}]`)

	second := decodeBody(t, <-bodies)
	msgs, _ := json.Marshal(second["messages"])
	jsonEqual(t, msgs, `[
		{"role":"user","content":"What is 25 + 17?"},
		{"role":"assistant","tool_calls":[{"id":"c1","type":"function","function":{"name":"calculator","arguments":"{\"a\":25,\"b\":17}"}}]},
		{"role":"tool","tool_call_id":"c1","content":"42"}
	]`)

	if len(history) != 1 || history[0].Text != "What is 25 + 17?" {
		t.Errorf("caller history modified: %+v", history)
	}
}

func TestChatDropsUnsupportedParams(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	handler, reqs := captureHandler(200, helloCompletion)
	c := newTestClient(t, handler, WithLogger(zap.New(core)))

	req := NewChatRequest(ModelO3Mini, UserMessage("hi")).
		WithTemperature(0.2).
		WithTopP(1).
		WithLogprobs(true)
	if _, err := c.Chat.Create(context.Background(), req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	body := decodeBody(t, (<-reqs).body)
	if _, ok := body["temperature"]; ok {
		t.Error("temperature was sent to a reasoning model")
	}
	if _, ok := body["logprobs"]; ok {
		t.Error("logprobs was sent to a reasoning model")
	}
	if body["top_p"] != 1.0 {
		t.Errorf("top_p = %v, want 1", body["top_p"])
	}

	var dropped []string
	for _, e := range logs.FilterMessage("dropping parameter unsupported by model").All() {
		dropped = append(dropped, e.ContextMap()["param"].(string))
	}
	slices.Sort(dropped)
	if !slices.Equal(dropped, []string{"logprobs", "temperature"}) {
		t.Errorf("dropped = %v, want [logprobs temperature]", dropped)
	}
	if *req.Temperature != 0.2 {
		t.Error("request temperature was modified")
	}
}

func TestChatStream(t *testing.T) {
	reqs := make(chan []byte, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		reqs <- data
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{
			`{"id":"s","object":"chat.completion.chunk","model":"m","choices":[{"index":0,"delta":{"role":"assistant"}}]}`,
			`{"id":"s","object":"chat.completion.chunk","model":"m","choices":[{"index":0,"delta":{"content":"Hel"}}]}`,
			`{"id":"s","object":"chat.completion.chunk","model":"m","choices":[{"index":0,"delta":{"content":"lo"},"finish_reason":"stop"}]}`,
		} {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		io.WriteString(w, "data: [DONE]\n\n")
	})

	req := NewChatRequest(ModelGPT4oMini, UserMessage("hi"))
	req.StreamOptions = &StreamOptions{IncludeUsage: true}
	var sb strings.Builder
	n := 0
	for chunk, err := range c.Chat.CreateStream(context.Background(), req) {
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
		n++
		if len(chunk.Choices) > 0 {
			sb.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if n != 3 {
		t.Errorf("chunks = %d, want 3", n)
	}
	if sb.String() != "Hello" {
		t.Errorf("content = %q, want Hello", sb.String())
	}
	body := decodeBody(t, <-reqs)
	if body["stream"] != true {
		t.Errorf("stream = %v, want true", body["stream"])
	}
	if _, ok := body["stream_options"]; !ok {
		t.Error("stream_options missing from streamed request")
	}
}

func TestChatStreamAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 429, `{"error":{"message":"slow down","type":"rate_limit_error"}}`)
	})
	for _, err := range c.Chat.CreateStream(context.Background(), NewChatRequest(ModelGPT4oMini, UserMessage("hi"))) {
		e, ok := AsAPIError(err)
		if !ok || !e.IsRateLimit() {
			t.Errorf("err = %v, want rate limit APIError", err)
		}
		break
	}
}

func TestChatNonStreamDropsStreamOptions(t *testing.T) {
	req := NewChatRequest(ModelGPT4oMini, UserMessage("hi"))
	req.StreamOptions = &StreamOptions{IncludeUsage: true}
	w, err := req.lower(zap.NewNop(), false)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if w.StreamOptions != nil || w.Stream {
		t.Errorf("wire = stream %v options %+v, want neither", w.Stream, w.StreamOptions)
	}
}

func TestToolChoiceShapes(t *testing.T) {
	tests := []struct {
		choice *ToolChoice
		chat   string
		flat   string
	}{
		{ChooseMode(ToolChoiceAuto), `"auto"`, `"auto"`},
		{ChooseMode(ToolChoiceRequired), `"required"`, `"required"`},
		{ChooseFunction("calc"), `{"type":"function","function":{"name":"calc"}}`, `{"type":"function","name":"calc"}`},
	}
	for _, tt := range tests {
		chat, _ := json.Marshal(tt.choice.chatWire())
		jsonEqual(t, chat, tt.chat)
		flat, _ := json.Marshal(tt.choice)
		jsonEqual(t, flat, tt.flat)
	}
}
