package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"go.uber.org/zap"
)

const responseBody = `{
	"id": "resp_1",
	"object": "response",
	"created_at": 1700000000,
	"status": "completed",
	"model": "gpt-4.1",
	"output": [
		{"id": "rs_1", "type": "reasoning", "summary": []},
		{"id": "msg_1", "type": "message", "role": "assistant", "status": "completed",
		 "content": [{"type": "output_text", "text": "Hello "}, {"type": "output_text", "text": "there"}]},
		{"id": "fc_1", "type": "function_call", "call_id": "call_1", "name": "lookup", "arguments": "{\"q\":\"x\"}"}
	],
	"usage": {"input_tokens": 5, "output_tokens": 7, "total_tokens": 12}
}`

func TestResponsesCreate(t *testing.T) {
	handler, reqs := captureHandler(200, responseBody)
	c := newTestClient(t, handler)

	req := NewResponsesRequest(ModelGPT41, "Say hello").
		WithInstructions("be brief").
		WithMaxOutputTokens(100).
		WithTools(FunctionTool("lookup", "", NewObject().AddProperty("q", TypeString, ""))).
		WithToolChoice(ChooseFunction("lookup"))
	resp, err := c.Responses.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := resp.OutputText(); got != "Hello there" {
		t.Errorf("OutputText = %q", got)
	}
	calls := resp.ToolCalls()
	if len(calls) != 1 || calls[0].ID != "call_1" || calls[0].Function.Arguments != `{"q":"x"}` {
		t.Errorf("ToolCalls = %+v", calls)
	}
	if len(resp.Output[0].Raw) == 0 {
		t.Error("output item Raw is empty")
	}

	got := <-reqs
	if got.path != "/v1/responses" {
		t.Errorf("path = %s", got.path)
	}
	jsonEqual(t, got.body, `{
		"model": "gpt-4.1",
		"input": "Say hello",
		"instructions": "be brief",
		"max_output_tokens": 100,
		"tools": [{"type": "function", "name": "lookup",
			"parameters": {"type": "object", "properties": {"q": {"type": "string"}}, "required": ["q"], "additionalProperties": false}}],
		"tool_choice": {"type": "function", "name": "lookup"}
	}`)
}

func TestResponsesMessagesInput(t *testing.T) {
	req := NewResponsesRequest(ModelGPT41, "").WithMessages(
		SystemMessage("sys"),
		UserMessage("q"),
		Message{Role: RoleAssistant, ToolCalls: []ToolCall{NewToolCall("c1", "calc", `{}`)}},
		NewToolMessage("42", "c1"),
	)
	w, err := req.lower(zap.NewNop(), false)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	data, _ := json.Marshal(w.Input)
	jsonEqual(t, data, `[
		{"type": "message", "role": "system", "content": "sys"},
		{"type": "message", "role": "user", "content": "q"},
		{"type": "function_call", "call_id": "c1", "name": "calc", "arguments": "{}"},
		{"type": "function_call_output", "call_id": "c1", "output": "42"}
	]`)
}

func TestResponsesFormat(t *testing.T) {
	schema := ChatJSONSchema("out").WithSchema(NewObject().AddProperty("a", TypeString, ""))
	req := NewResponsesRequest(ModelGPT41, "x").WithFormat(schema).WithVerbosity(VerbosityLow)
	w, err := req.lower(zap.NewNop(), false)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	data, _ := json.Marshal(w.Text)
	jsonEqual(t, data, `{
		"format": {"type": "json_schema", "name": "out",
			"schema": {"type": "object", "properties": {"a": {"type": "string"}}, "required": ["a"], "additionalProperties": false}},
		"verbosity": "low"
	}`)
	if schema.Kind != SchemaKindChat {
		t.Error("request format was modified")
	}
}

func TestResponsesValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *ResponsesRequest
	}{
		{"no model", NewResponsesRequest("", "x")},
		{"no input", NewResponsesRequest(ModelGPT41, "")},
		{"input and messages", NewResponsesRequest(ModelGPT41, "x").WithMessages(UserMessage("y"))},
		{"conversation and previous", NewResponsesRequest(ModelGPT41, "x").WithConversation("conv_1").WithPreviousResponseID("resp_0")},
		{"bad effort", NewResponsesRequest(ModelO3, "x").WithReasoning("max", "")},
		{"bad include", NewResponsesRequest(ModelGPT41, "x").WithInclude("everything")},
		{"bad truncation", NewResponsesRequest(ModelGPT41, "x").WithTruncation("sometimes")},
		{"bad verbosity", NewResponsesRequest(ModelGPT41, "x").WithVerbosity("loud")},
		{"mcp without url", NewResponsesRequest(ModelGPT41, "x").WithTools(MCPTool("docs", ""))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.req.lower(zap.NewNop(), false); KindOf(err) != KindConfig {
				t.Errorf("KindOf = %v, want config (err = %v)", KindOf(err), err)
			}
		})
	}
}

func TestResponsesReasoningDrop(t *testing.T) {
	req := NewResponsesRequest(ModelO4Mini, "x").
		WithTemperature(0.7).
		WithTopLogprobs(3).
		WithReasoning(ReasoningEffortHigh, ReasoningSummaryAuto)
	w, err := req.lower(zap.NewNop(), false)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if w.Temperature != nil || w.TopLogprobs != nil {
		t.Errorf("temperature %v top_logprobs %v, want both dropped", w.Temperature, w.TopLogprobs)
	}
	if w.Reasoning == nil || w.Reasoning.Effort != ReasoningEffortHigh {
		t.Errorf("Reasoning = %+v", w.Reasoning)
	}
}

func TestResponsesMCPTool(t *testing.T) {
	tools, err := responsesTools([]*Tool{MCPTool("docs", "https://mcp.example.com").WithRequireApproval("never")})
	if err != nil {
		t.Fatalf("responsesTools: %v", err)
	}
	data, _ := json.Marshal(tools)
	jsonEqual(t, data, `[{"type":"mcp","server_label":"docs","server_url":"https://mcp.example.com","require_approval":"never"}]`)
}

func TestResponsesStream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		events := []string{
			`{"type":"response.created","sequence_number":0,"response":{"id":"resp_1","object":"response","status":"in_progress","model":"m","output":[]}}`,
			`{"type":"response.output_text.delta","sequence_number":1,"item_id":"msg_1","delta":"Hi"}`,
			`{"type":"response.output_text.delta","sequence_number":2,"item_id":"msg_1","delta":"!"}`,
			`{"type":"response.completed","sequence_number":3,"response":{"id":"resp_1","object":"response","status":"completed","model":"m","output":[]}}`,
		}
		for _, e := range events {
			fmt.Fprintf(w, "event: x\ndata: %s\n\n", e)
		}
	})

	var text string
	var types []string
	for ev, err := range c.Responses.CreateStream(context.Background(), NewResponsesRequest(ModelGPT41, "hi")) {
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
		types = append(types, ev.Type)
		if ev.Type == "response.output_text.delta" {
			text += ev.Delta
		}
		if len(ev.Raw) == 0 {
			t.Errorf("event %s has no Raw", ev.Type)
		}
	}
	if text != "Hi!" {
		t.Errorf("text = %q, want Hi!", text)
	}
	if len(types) != 4 || types[3] != "response.completed" {
		t.Errorf("types = %v", types)
	}
}

func TestResponsesByID(t *testing.T) {
	reqs := make(chan string, 4)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Method + " " + r.URL.Path + "?" + r.URL.RawQuery
		switch r.Method {
		case http.MethodDelete:
			writeJSON(w, 200, `{"id":"resp_1","object":"response.deleted","deleted":true}`)
		default:
			if r.URL.Path == "/v1/responses/resp_1/input_items" {
				writeJSON(w, 200, `{"object":"list","data":[{"id":"m1","type":"message","role":"user","content":[{"type":"input_text","text":"hi"}]}],"has_more":false}`)
				return
			}
			writeJSON(w, 200, responseBody)
		}
	})
	ctx := context.Background()

	if _, err := c.Responses.Retrieve(ctx, "resp_1"); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if _, err := c.Responses.Cancel(ctx, "resp_1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	del, err := c.Responses.Delete(ctx, "resp_1")
	if err != nil || !del.Deleted {
		t.Fatalf("Delete = %+v, %v", del, err)
	}
	items, err := c.Responses.ListInputItems(ctx, "resp_1", &ListParams{Limit: 5, Order: "asc"})
	if err != nil {
		t.Fatalf("ListInputItems: %v", err)
	}
	if len(items.Data) != 1 || items.Data[0].Role != RoleUser {
		t.Errorf("items = %+v", items.Data)
	}

	want := []string{
		"GET /v1/responses/resp_1?",
		"POST /v1/responses/resp_1/cancel?",
		"DELETE /v1/responses/resp_1?",
		"GET /v1/responses/resp_1/input_items?limit=5&order=asc",
	}
	for _, w := range want {
		if got := <-reqs; got != w {
			t.Errorf("request = %q, want %q", got, w)
		}
	}

	if _, err := c.Responses.Retrieve(ctx, ""); KindOf(err) != KindConfig {
		t.Errorf("empty id: KindOf = %v, want config", KindOf(err))
	}
	if _, err := c.Responses.ListInputItems(ctx, "resp_1", &ListParams{Order: "up"}); KindOf(err) != KindConfig {
		t.Errorf("bad order: KindOf = %v, want config", KindOf(err))
	}
}

func TestResponseIncomplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		writeJSON(w, 200, `{"id":"r","object":"response","status":"incomplete","model":"m","output":[],
			"incomplete_details":{"reason":"max_output_tokens"}}`)
	})
	resp, err := c.Responses.Create(context.Background(), NewResponsesRequest(ModelGPT41, "x"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.IncompleteDetails == nil || resp.IncompleteDetails.Reason != "max_output_tokens" {
		t.Errorf("IncompleteDetails = %+v", resp.IncompleteDetails)
	}
}
