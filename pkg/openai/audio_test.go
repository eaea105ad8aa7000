package openai

import (
	"context"
	"io"
	"net/http"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSpeech(t *testing.T) {
	bodies := make(chan []byte, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies <- data
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3audio"))
	})

	req := NewSpeechRequest(ModelGPT4oMiniTTS, VoiceCoral, "Hello").
		WithResponseFormat(SpeechMP3).
		WithInstructions("cheerful")
	audio, err := c.Audio.Speech(context.Background(), req)
	if err != nil {
		t.Fatalf("Speech: %v", err)
	}
	if string(audio) != "ID3audio" {
		t.Errorf("audio = %q", audio)
	}
	jsonEqual(t, <-bodies, `{"model":"gpt-4o-mini-tts","input":"Hello","voice":"coral","response_format":"mp3","instructions":"cheerful"}`)
}

func TestSpeechDropsInstructions(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w, err := NewSpeechRequest(ModelTTS1, VoiceAlloy, "hi").WithInstructions("whisper").lower(zap.New(core))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if w.Instructions != "" {
		t.Errorf("Instructions = %q, want dropped", w.Instructions)
	}
	if n := logs.FilterField(zap.String("param", "instructions")).Len(); n != 1 {
		t.Errorf("warnings = %d, want 1", n)
	}
}

func TestSpeechValidation(t *testing.T) {
	for _, req := range []*SpeechRequest{
		NewSpeechRequest("", VoiceAlloy, "x"),
		NewSpeechRequest(ModelTTS1, VoiceAlloy, ""),
		NewSpeechRequest(ModelTTS1, "", "x"),
	} {
		if _, err := req.lower(zap.NewNop()); KindOf(err) != KindConfig {
			t.Errorf("lower(%+v): KindOf = %v, want config", req, KindOf(err))
		}
	}
}

func TestTranscribe(t *testing.T) {
	type form struct {
		model, language, format string
		granularities           []string
		file, fileType          string
	}
	forms := make(chan form, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, hdr, _ := r.FormFile("file")
		name, fileType := "", ""
		if hdr != nil {
			name, fileType = hdr.Filename, hdr.Header.Get("Content-Type")
		}
		forms <- form{
			model:         r.FormValue("model"),
			language:      r.FormValue("language"),
			format:        r.FormValue("response_format"),
			granularities: r.MultipartForm.Value["timestamp_granularities[]"],
			file:          name,
			fileType:      fileType,
		}
		writeJSON(w, 200, `{"text":"hello world","language":"english","duration":1.5,
			"words":[{"word":"hello","start":0,"end":0.5},{"word":"world","start":0.6,"end":1.2}]}`)
	})

	temp := 0.0
	tr, err := c.Audio.Transcribe(context.Background(), &TranscriptionRequest{
		File:                   AudioInput{Reader: strings.NewReader("RIFF"), Filename: "a.wav"},
		Model:                  ModelWhisper1,
		Language:               "en",
		ResponseFormat:         TranscriptionVerboseJSON,
		Temperature:            &temp,
		TimestampGranularities: []TimestampGranularity{GranularityWord, GranularitySegment},
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "hello world" || len(tr.Words) != 2 || tr.Duration != 1.5 {
		t.Errorf("transcription = %+v", tr)
	}
	got := <-forms
	if got.model != "whisper-1" || got.language != "en" || got.format != "verbose_json" || got.file != "a.wav" {
		t.Errorf("form = %+v", got)
	}
	if !slices.Equal(got.granularities, []string{"word", "segment"}) {
		t.Errorf("granularities = %v", got.granularities)
	}
	if got.fileType != "audio/wav" {
		t.Errorf("file Content-Type = %q, want audio/wav", got.fileType)
	}
}

func TestAudioMIMEType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.mp3", "audio/mpeg"},
		{"meeting.M4A", "audio/mp4"},
		{"clip.webm", "audio/webm"},
		{"voice.ogg", "audio/ogg"},
		{"take.flac", "audio/flac"},
		{"recording", "audio/mpeg"},
		{"notes.bin", "audio/mpeg"},
	}
	for _, tt := range tests {
		if got := audioMIMEType(tt.name); got != tt.want {
			t.Errorf("audioMIMEType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTranslateTextFormat(t *testing.T) {
	models := make(chan string, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		models <- r.FormValue("model")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("1\n00:00:00,000 --> 00:00:01,000\nHello\n"))
	})
	tr, err := c.Audio.Translate(context.Background(), &TranslationRequest{
		File:           AudioInput{Reader: strings.NewReader("RIFF"), Filename: "a.wav"},
		ResponseFormat: TranscriptionSRT,
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(tr.Text, "Hello") || tr.Language != "" {
		t.Errorf("transcription = %+v", tr)
	}
	if got := <-models; got != ModelWhisper1 {
		t.Errorf("model = %q, want whisper-1 default", got)
	}
}

func TestTranscribeValidation(t *testing.T) {
	c := NewClient(NewOpenAIAuth("k", "http://127.0.0.1:1"))
	ctx := context.Background()
	file := AudioInput{Reader: strings.NewReader("x"), Filename: "a.wav"}
	if _, err := c.Audio.Transcribe(ctx, &TranscriptionRequest{File: file}); KindOf(err) != KindConfig {
		t.Errorf("no model: KindOf = %v", KindOf(err))
	}
	if _, err := c.Audio.Transcribe(ctx, &TranscriptionRequest{Model: ModelWhisper1}); KindOf(err) != KindConfig {
		t.Errorf("no file: KindOf = %v", KindOf(err))
	}
	if _, err := c.Audio.Translate(ctx, &TranslationRequest{File: file, ResponseFormat: "xml"}); KindOf(err) != KindConfig {
		t.Errorf("bad format: KindOf = %v", KindOf(err))
	}
}
