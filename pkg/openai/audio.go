package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Voice is a text-to-speech voice.
type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceAsh     Voice = "ash"
	VoiceBallad  Voice = "ballad"
	VoiceCoral   Voice = "coral"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceSage    Voice = "sage"
	VoiceShimmer Voice = "shimmer"
	VoiceVerse   Voice = "verse"
)

// SpeechFormat is the encoding of generated speech.
type SpeechFormat string

const (
	SpeechMP3  SpeechFormat = "mp3"
	SpeechOpus SpeechFormat = "opus"
	SpeechAAC  SpeechFormat = "aac"
	SpeechFLAC SpeechFormat = "flac"
	SpeechWAV  SpeechFormat = "wav"
	SpeechPCM  SpeechFormat = "pcm"
)

// SpeechRequest converts text to audio.
type SpeechRequest struct {
	Model          string
	Input          string
	Voice          Voice
	ResponseFormat SpeechFormat
	Speed          float64
	// Instructions steer the delivery. Only gpt-4o-mini-tts accepts them;
	// they are dropped for other models.
	Instructions string
}

// NewSpeechRequest returns a request with the given model, voice and text.
func NewSpeechRequest(model string, voice Voice, input string) *SpeechRequest {
	return &SpeechRequest{Model: model, Voice: voice, Input: input}
}

// WithResponseFormat sets the audio format.
func (r *SpeechRequest) WithResponseFormat(f SpeechFormat) *SpeechRequest {
	r.ResponseFormat = f
	return r
}

// WithSpeed sets the playback speed, 0.25 to 4.0.
func (r *SpeechRequest) WithSpeed(speed float64) *SpeechRequest {
	r.Speed = speed
	return r
}

// WithInstructions sets delivery instructions.
func (r *SpeechRequest) WithInstructions(s string) *SpeechRequest {
	r.Instructions = s
	return r
}

type speechRequestWire struct {
	Model          string       `json:"model"`
	Input          string       `json:"input"`
	Voice          Voice        `json:"voice"`
	ResponseFormat SpeechFormat `json:"response_format,omitzero"`
	Speed          float64      `json:"speed,omitzero"`
	Instructions   string       `json:"instructions,omitzero"`
}

// SupportsInstructions reports whether a TTS model accepts instructions.
func SupportsInstructions(model string) bool {
	return model == ModelGPT4oMiniTTS
}

func (r *SpeechRequest) lower(logger *zap.Logger) (*speechRequestWire, error) {
	if r.Model == "" {
		return nil, configErrorf("speech model is required")
	}
	if r.Input == "" {
		return nil, configErrorf("speech input is empty")
	}
	if r.Voice == "" {
		return nil, configErrorf("speech voice is required")
	}
	w := &speechRequestWire{
		Model:          r.Model,
		Input:          r.Input,
		Voice:          r.Voice,
		ResponseFormat: r.ResponseFormat,
		Speed:          r.Speed,
		Instructions:   r.Instructions,
	}
	if w.Instructions != "" && !SupportsInstructions(r.Model) {
		logger.Warn("dropping parameter unsupported by model",
			zap.String("model", r.Model), zap.String("param", "instructions"))
		w.Instructions = ""
	}
	return w, nil
}

// TranscriptionFormat is the response format of transcription and
// translation.
type TranscriptionFormat string

const (
	TranscriptionJSON        TranscriptionFormat = "json"
	TranscriptionText        TranscriptionFormat = "text"
	TranscriptionSRT         TranscriptionFormat = "srt"
	TranscriptionVerboseJSON TranscriptionFormat = "verbose_json"
	TranscriptionVTT         TranscriptionFormat = "vtt"
)

func (f TranscriptionFormat) isJSON() bool {
	return f == "" || f == TranscriptionJSON || f == TranscriptionVerboseJSON
}

// TimestampGranularity selects timestamp detail in verbose_json output.
type TimestampGranularity string

const (
	GranularityWord    TimestampGranularity = "word"
	GranularitySegment TimestampGranularity = "segment"
)

// AudioInput is the audio file of a transcription or translation.
type AudioInput struct {
	Reader   io.Reader
	Filename string
}

// TranscriptionRequest converts speech to text in its own language.
type TranscriptionRequest struct {
	File                   AudioInput
	Model                  string
	Language               string
	Prompt                 string
	ResponseFormat         TranscriptionFormat
	Temperature            *float64
	TimestampGranularities []TimestampGranularity
}

// TranslationRequest converts speech to English text. Model defaults to
// whisper-1, the only model that translates.
type TranslationRequest struct {
	File           AudioInput
	Model          string
	Prompt         string
	ResponseFormat TranscriptionFormat
	Temperature    *float64
}

// Word is a word-level timestamp.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a segment-level timestamp.
type Segment struct {
	ID               int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens,omitzero"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
}

// Transcription is the result of Transcribe and Translate. For text, srt
// and vtt formats only Text is set, holding the raw body.
type Transcription struct {
	Text     string     `json:"text"`
	Language string     `json:"language,omitzero"`
	Duration float64    `json:"duration,omitzero"`
	Words    []*Word    `json:"words,omitzero"`
	Segments []*Segment `json:"segments,omitzero"`
	Usage    *Usage     `json:"usage,omitzero"`
}

// AudioService provides speech synthesis and recognition.
type AudioService struct {
	client *Client
}

func newAudioService(client *Client) *AudioService {
	return &AudioService{client: client}
}

// Speech synthesizes audio and returns the encoded bytes.
func (s *AudioService) Speech(ctx context.Context, req *SpeechRequest) ([]byte, error) {
	body, err := req.lower(s.client.config.logger)
	if err != nil {
		return nil, err
	}
	return s.client.http.do(ctx, &request{
		op:     "audio.speech",
		method: http.MethodPost,
		path:   "audio/speech",
		body:   body,
	})
}

// Transcribe converts speech to text.
func (s *AudioService) Transcribe(ctx context.Context, req *TranscriptionRequest) (*Transcription, error) {
	if req.Model == "" {
		return nil, configErrorf("transcription model is required")
	}
	file, err := req.File.part()
	if err != nil {
		return nil, err
	}
	form := []formPart{file, textField("model", req.Model)}
	if req.Language != "" {
		form = append(form, textField("language", req.Language))
	}
	form = append(form, commonAudioFields(req.Prompt, req.ResponseFormat, req.Temperature)...)
	for _, g := range req.TimestampGranularities {
		form = append(form, textField("timestamp_granularities[]", string(g)))
	}
	return s.recognize(ctx, "audio.transcribe", "audio/transcriptions", req.ResponseFormat, form)
}

// Translate converts speech to English text.
func (s *AudioService) Translate(ctx context.Context, req *TranslationRequest) (*Transcription, error) {
	model := req.Model
	if model == "" {
		model = ModelWhisper1
	}
	file, err := req.File.part()
	if err != nil {
		return nil, err
	}
	form := []formPart{file, textField("model", model)}
	form = append(form, commonAudioFields(req.Prompt, req.ResponseFormat, req.Temperature)...)
	return s.recognize(ctx, "audio.translate", "audio/translations", req.ResponseFormat, form)
}

func (in *AudioInput) part() (formPart, error) {
	if in.Reader == nil {
		return formPart{}, configErrorf("audio file is required")
	}
	if in.Filename == "" {
		return formPart{}, configErrorf("audio file name is required")
	}
	return fileField("file", in.Reader, in.Filename, audioMIMEType(in.Filename)), nil
}

var audioMIMETypes = map[string]string{
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".mpeg": "audio/mpeg",
	".mpga": "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// audioMIMEType maps a file name to the audio type the endpoints accept,
// defaulting to audio/mpeg.
func audioMIMEType(filename string) string {
	if mime, ok := audioMIMETypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mime
	}
	return "audio/mpeg"
}

func commonAudioFields(prompt string, format TranscriptionFormat, temperature *float64) []formPart {
	var out []formPart
	if prompt != "" {
		out = append(out, textField("prompt", prompt))
	}
	if format != "" {
		out = append(out, textField("response_format", string(format)))
	}
	if temperature != nil {
		out = append(out, textField("temperature", strconv.FormatFloat(*temperature, 'f', -1, 64)))
	}
	return out
}

func (s *AudioService) recognize(ctx context.Context, op, path string, format TranscriptionFormat, form []formPart) (*Transcription, error) {
	switch format {
	case "", TranscriptionJSON, TranscriptionText, TranscriptionSRT, TranscriptionVerboseJSON, TranscriptionVTT:
	default:
		return nil, configErrorf("invalid transcription format %q", format)
	}
	body, err := s.client.http.do(ctx, &request{
		op:     op,
		method: http.MethodPost,
		path:   path,
		form:   form,
	})
	if err != nil {
		return nil, err
	}
	if !format.isJSON() {
		return &Transcription{Text: string(body)}, nil
	}
	var t Transcription
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, &CodecError{Op: "decode " + op + " response", Err: err}
	}
	return &t, nil
}
