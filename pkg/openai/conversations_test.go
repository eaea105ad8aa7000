package openai

import (
	"context"
	"io"
	"net/http"
	"testing"
)

func TestConversations(t *testing.T) {
	type call struct {
		route string
		body  string
	}
	calls := make(chan call, 8)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		route := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			route += "?" + r.URL.RawQuery
		}
		calls <- call{route, string(data)}
		switch {
		case r.Method == http.MethodDelete:
			writeJSON(w, 200, `{"id":"conv_1","object":"conversation.deleted","deleted":true}`)
		case r.URL.Path == "/v1/conversations/conv_1/items":
			writeJSON(w, 200, `{"object":"list","data":[{"id":"msg_1","type":"message","role":"user","content":[{"type":"input_text","text":"hi"}]}],"has_more":false}`)
		case r.URL.Path == "/v1/conversations" && r.Method == http.MethodGet:
			writeJSON(w, 200, `{"object":"list","data":[{"id":"conv_1","object":"conversation"}],"has_more":false}`)
		default:
			writeJSON(w, 200, `{"id":"conv_1","object":"conversation","created_at":1700000000,"metadata":{"topic":"demo"}}`)
		}
	})
	ctx := context.Background()

	conv, err := c.Conversations.Create(ctx, map[string]string{"topic": "demo"}, UserMessage("hi"))
	if err != nil || conv.ID != "conv_1" || conv.Metadata["topic"] != "demo" {
		t.Fatalf("Create = %+v, %v", conv, err)
	}
	if _, err := c.Conversations.Retrieve(ctx, "conv_1"); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if _, err := c.Conversations.Update(ctx, "conv_1", map[string]string{"topic": "new"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := c.Conversations.List(ctx, &ListParams{Limit: 1}); err != nil {
		t.Fatalf("List: %v", err)
	}
	items, err := c.Conversations.CreateItems(ctx, "conv_1", AssistantMessage("hello"))
	if err != nil || len(items.Data) != 1 {
		t.Fatalf("CreateItems = %+v, %v", items, err)
	}
	items, err = c.Conversations.ListItems(ctx, "conv_1", &ItemListParams{
		ListParams: ListParams{Order: "asc"},
		Include:    []ConversationInclude{ConversationIncludeInputImageURL},
	})
	if err != nil || items.Data[0].Role != RoleUser {
		t.Fatalf("ListItems = %+v, %v", items, err)
	}
	if del, err := c.Conversations.Delete(ctx, "conv_1"); err != nil || !del.Deleted {
		t.Fatalf("Delete = %+v, %v", del, err)
	}

	want := []struct {
		route string
		body  string
	}{
		{"POST /v1/conversations", `{"metadata":{"topic":"demo"},"items":[{"type":"message","role":"user","content":"hi"}]}`},
		{"GET /v1/conversations/conv_1", ""},
		{"POST /v1/conversations/conv_1", `{"metadata":{"topic":"new"}}`},
		{"GET /v1/conversations?limit=1", ""},
		{"POST /v1/conversations/conv_1/items", `{"items":[{"type":"message","role":"assistant","content":"hello"}]}`},
		{"GET /v1/conversations/conv_1/items?order=asc&include%5B%5D=message.input_image.image_url", ""},
		{"DELETE /v1/conversations/conv_1", ""},
	}
	for _, w := range want {
		got := <-calls
		if got.route != w.route {
			t.Errorf("route = %q, want %q", got.route, w.route)
		}
		if w.body != "" {
			jsonEqual(t, []byte(got.body), w.body)
		}
	}
}

func TestConversationsValidation(t *testing.T) {
	c := NewClient(NewOpenAIAuth("k", "http://127.0.0.1:1"))
	ctx := context.Background()
	if _, err := c.Conversations.Retrieve(ctx, ""); KindOf(err) != KindConfig {
		t.Errorf("empty id: KindOf = %v", KindOf(err))
	}
	if _, err := c.Conversations.CreateItems(ctx, "conv_1"); KindOf(err) != KindConfig {
		t.Errorf("no items: KindOf = %v", KindOf(err))
	}
	if _, err := c.Conversations.ListItems(ctx, "conv_1", &ItemListParams{ListParams: ListParams{Order: "sideways"}}); KindOf(err) != KindConfig {
		t.Errorf("bad order: KindOf = %v", KindOf(err))
	}
}
