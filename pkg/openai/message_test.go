package openai

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMessageChatShape(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"text", UserMessage("hi"), `{"role":"user","content":"hi"}`},
		{"developer", DeveloperMessage("rules"), `{"role":"developer","content":"rules"}`},
		{"tool", NewToolMessage("42", "c1"), `{"role":"tool","content":"42","tool_call_id":"c1"}`},
		{
			"parts",
			NewPartsMessage(RoleUser, TextPart("look"), ImageURLPart("https://example.com/a.png").WithDetail("low")),
			`{"role":"user","content":[{"type":"text","text":"look"},{"type":"image_url","image_url":{"url":"https://example.com/a.png","detail":"low"}}]}`,
		},
		{
			"audio",
			NewPartsMessage(RoleUser, AudioPart([]byte("RIFF"), "wav")),
			`{"role":"user","content":[{"type":"input_audio","input_audio":{"data":"UklGRg==","format":"wav"}}]}`,
		},
		{
			"tool calls only",
			Message{Role: RoleAssistant, ToolCalls: []ToolCall{NewToolCall("c1", "f", "{}")}},
			`{"role":"assistant","tool_calls":[{"id":"c1","type":"function","function":{"name":"f","arguments":"{}"}}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			jsonEqual(t, data, tt.want)

			var back Message
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			again, _ := json.Marshal(back)
			jsonEqual(t, again, tt.want)
		})
	}
}

func TestMessageContent(t *testing.T) {
	m := NewPartsMessage(RoleUser, TextPart("a"), ImageURLPart("u"), TextPart("b"))
	if got := m.Content(); got != "ab" {
		t.Errorf("Content = %q, want ab", got)
	}
	var null Message
	if err := json.Unmarshal([]byte(`{"role":"assistant","content":null,"refusal":"no"}`), &null); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if null.Text != "" || null.Parts != nil || null.Refusal != "no" {
		t.Errorf("message = %+v", null)
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		ok   bool
	}{
		{"text", UserMessage("hi"), true},
		{"whitespace", UserMessage(" \n"), true},
		{"empty", UserMessage(""), false},
		{"bad role", Message{Role: "robot", Text: "x"}, false},
		{"tool without id", Message{Role: RoleTool, Text: "x"}, false},
		{"empty parts", Message{Role: RoleUser, Parts: []ContentPart{}}, false},
		{"unknown part", NewPartsMessage(RoleUser, ContentPart{Type: "video"}), false},
	}
	for _, tt := range tests {
		err := tt.msg.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: Validate = %v, want nil", tt.name, err)
		}
		if !tt.ok && KindOf(err) != KindConfig {
			t.Errorf("%s: KindOf = %v, want config", tt.name, KindOf(err))
		}
	}
}

func TestImageFilePart(t *testing.T) {
	if _, err := ImageFilePart("photo.bmp"); KindOf(err) != KindConfig {
		t.Errorf("bmp: KindOf = %v, want config", KindOf(err))
	}

	path := filepath.Join(t.TempDir(), "dot.PNG")
	if err := os.WriteFile(path, []byte("PNGDATA"), 0o644); err != nil {
		t.Fatal(err)
	}
	part, err := ImageFilePart(path)
	if err != nil {
		t.Fatalf("ImageFilePart: %v", err)
	}
	w, err := part.chatWire()
	if err != nil {
		t.Fatalf("chatWire: %v", err)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("PNGDATA"))
	if w.ImageURL == nil || w.ImageURL.URL != want {
		t.Errorf("image url = %+v, want %s", w.ImageURL, want)
	}

	os.Remove(path)
	if _, err := part.chatWire(); KindOf(err) != KindConfig {
		t.Errorf("missing file at send time: KindOf = %v, want config", KindOf(err))
	}
}

func TestResponsesItemsRejectAudio(t *testing.T) {
	_, err := responsesMessages([]Message{NewPartsMessage(RoleUser, AudioPart([]byte("x"), "wav"))})
	if KindOf(err) != KindConfig {
		t.Errorf("KindOf = %v, want config", KindOf(err))
	}
	if err != nil && !strings.Contains(err.Error(), "message 0") {
		t.Errorf("err = %v, want message index", err)
	}
}

func TestResponsesAssistantParts(t *testing.T) {
	items, err := responsesMessages([]Message{NewPartsMessage(RoleAssistant, TextPart("done"))})
	if err != nil {
		t.Fatalf("responsesMessages: %v", err)
	}
	data, _ := json.Marshal(items)
	jsonEqual(t, data, `[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"done"}]}]`)
}
