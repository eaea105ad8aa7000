package openairealtime

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

func jsonEqual(t *testing.T, got []byte, want string) {
	t.Helper()
	var g, w any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("unmarshal got: %v (%s)", err, got)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("unmarshal want: %v", err)
	}
	if !reflect.DeepEqual(g, w) {
		t.Errorf("json = %s\nwant %s", got, want)
	}
}

func TestClientEventShapes(t *testing.T) {
	temp := 0.7
	tests := []struct {
		name string
		ev   *ClientEvent
		want string
	}{
		{"append", NewAudioAppend([]byte{0, 1, 2}), `{"type":"input_audio_buffer.append","audio":"AAEC"}`},
		{"commit", NewAudioCommit(), `{"type":"input_audio_buffer.commit"}`},
		{"clear", NewAudioClear(), `{"type":"input_audio_buffer.clear"}`},
		{
			"item create after previous",
			NewItemCreate(TextItem(openai.RoleUser, "hi"), "item_0"),
			`{"type":"conversation.item.create","previous_item_id":"item_0",
				"item":{"type":"message","role":"user","content":[{"type":"input_text","text":"hi"}]}}`,
		},
		{
			"assistant text",
			NewItemCreate(TextItem(openai.RoleAssistant, "ok"), ""),
			`{"type":"conversation.item.create","item":{"type":"message","role":"assistant","content":[{"type":"text","text":"ok"}]}}`,
		},
		{
			"function output",
			NewItemCreate(FunctionOutputItem("call_1", `{"ok":true}`), ""),
			`{"type":"conversation.item.create","item":{"type":"function_call_output","call_id":"call_1","output":"{\"ok\":true}"}}`,
		},
		{
			"truncate at zero",
			NewItemTruncate("item_1", 0, 0),
			`{"type":"conversation.item.truncate","item_id":"item_1","content_index":0,"audio_end_ms":0}`,
		},
		{"delete", NewItemDelete("item_1"), `{"type":"conversation.item.delete","item_id":"item_1"}`},
		{"response default", NewResponseCreate(nil), `{"type":"response.create"}`},
		{
			"response override",
			NewResponseCreate(&ResponseCreateConfig{
				Modalities:      []string{ModalityText},
				Instructions:    "short",
				Tools:           []*openai.Tool{openai.FunctionTool("lookup", "Looks up", openai.NewObject().AddProperty("q", openai.TypeString, ""))},
				ToolChoice:      openai.ChooseFunction("lookup"),
				Temperature:     &temp,
				MaxOutputTokens: Tokens(200),
				Conversation:    "none",
				Metadata:        map[string]string{"topic": "x"},
			}),
			`{"type":"response.create","response":{"modalities":["text"],"instructions":"short",
				"tools":[{"type":"function","name":"lookup","description":"Looks up",
					"parameters":{"type":"object","properties":{"q":{"type":"string"}},"required":["q"],"additionalProperties":false}}],
				"tool_choice":{"type":"function","name":"lookup"},"temperature":0.7,"max_output_tokens":200,
				"conversation":"none","metadata":{"topic":"x"}}}`,
		},
		{"cancel", NewResponseCancel(""), `{"type":"response.cancel"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.ev.validate(); err != nil {
				t.Fatalf("validate: %v", err)
			}
			data, err := json.Marshal(tt.ev)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			jsonEqual(t, data, tt.want)
		})
	}
}

func TestClientEventValidate(t *testing.T) {
	tests := []struct {
		name string
		ev   *ClientEvent
	}{
		{"no type", &ClientEvent{}},
		{"empty audio", NewAudioAppend(nil)},
		{"no item", &ClientEvent{Type: EventTypeConversationItemCreate}},
		{"bad role", NewItemCreate(ConversationItem{Type: ItemTypeMessage, Role: "tool", Content: []ContentPart{{Type: "input_text", Text: "x"}}}, "")},
		{"no content", NewItemCreate(ConversationItem{Type: ItemTypeMessage, Role: "user"}, "")},
		{"output without call", NewItemCreate(FunctionOutputItem("", "x"), "")},
		{"negative truncate", NewItemTruncate("item_1", 0, -5)},
		{"truncate without item", NewItemTruncate("", 0, 10)},
		{"delete without item", NewItemDelete("")},
		{"bad conversation", NewResponseCreate(&ResponseCreateConfig{Conversation: "maybe"})},
		{"mcp tool", NewResponseCreate(&ResponseCreateConfig{Tools: []*openai.Tool{openai.MCPTool("docs", "https://mcp.example.com")}})},
		{"no session", &ClientEvent{Type: EventTypeSessionUpdate}},
		{"vad and manual", NewSessionUpdate(&SessionConfig{TurnDetection: SemanticVAD(EagernessLow), ManualTurns: true})},
		{"bad eagerness", NewSessionUpdate((&SessionConfig{}).WithTurnDetection(SemanticVAD("eager")))},
		{"bad noise reduction", NewSessionUpdate(&SessionConfig{InputAudioNoiseReduction: &NoiseReduction{Type: "studio"}})},
	}
	for _, tt := range tests {
		if err := tt.ev.validate(); openai.KindOf(err) != openai.KindConfig {
			t.Errorf("%s: KindOf = %v, want config", tt.name, openai.KindOf(err))
		}
	}
	if err := (&ClientEvent{Type: "x.custom"}).validate(); err != nil {
		t.Errorf("unknown type: validate = %v, want nil", err)
	}
}

func TestSessionConfigShape(t *testing.T) {
	yes := true
	td := ServerVAD(0.5, 300, 500)
	td.CreateResponse = &yes
	cfg := (&SessionConfig{
		InputAudioFormat:         AudioFormatPCM16,
		InputAudioTranscription:  &TranscriptionConfig{Model: "whisper-1", Language: "en"},
		InputAudioNoiseReduction: &NoiseReduction{Type: NoiseReductionNearField},
		ToolChoice:               openai.ChooseMode(openai.ToolChoiceAuto),
	}).
		WithVoice(VoiceCoral).
		WithTurnDetection(td).
		WithTools(openai.FunctionTool("noop", "", nil)).
		WithMaxResponseOutputTokens(Tokens(1024))
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	jsonEqual(t, data, `{"voice":"coral","input_audio_format":"pcm16",
		"input_audio_transcription":{"model":"whisper-1","language":"en"},
		"input_audio_noise_reduction":{"type":"near_field"},
		"turn_detection":{"type":"server_vad","threshold":0.5,"prefix_padding_ms":300,"silence_duration_ms":500,"create_response":true},
		"tools":[{"type":"function","name":"noop"}],"tool_choice":"auto","max_response_output_tokens":1024}`)

	data, _ = json.Marshal((&SessionConfig{}).WithTurnDetection(SemanticVAD(EagernessHigh)))
	jsonEqual(t, data, `{"turn_detection":{"type":"semantic_vad","eagerness":"high"}}`)

	data, _ = json.Marshal(&SessionConfig{})
	jsonEqual(t, data, `{}`)
	if !(&SessionConfig{}).Empty() || (&SessionConfig{ManualTurns: true}).Empty() {
		t.Error("Empty misreports")
	}
}

func TestMaxTokensJSON(t *testing.T) {
	tests := []struct {
		in   MaxTokens
		want string
	}{
		{Tokens(4096), `4096`},
		{InfiniteTokens(), `"inf"`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.in)
		if err != nil || string(data) != tt.want {
			t.Errorf("Marshal(%v) = %s, %v; want %s", tt.in, data, err, tt.want)
		}
		var back MaxTokens
		if err := json.Unmarshal(data, &back); err != nil || back != tt.in {
			t.Errorf("Unmarshal(%s) = %v, %v", data, back, err)
		}
	}
	var m MaxTokens
	if err := json.Unmarshal([]byte(`"lots"`), &m); err == nil {
		t.Error("Unmarshal accepted an unknown string")
	}
}

func TestEventID(t *testing.T) {
	a, b := newEventID(), newEventID()
	if len(a) != 16 || a[:4] != "evt_" || a == b {
		t.Errorf("event ids = %q, %q", a, b)
	}
}
