package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Speech, transcription and translation",
}

var audioSpeechCmd = &cobra.Command{
	Use:   "speech <text>",
	Short: "Synthesize speech",
	Long: `Synthesize speech from text.

The audio is written to -o, or to ~/.openai-tools/openai/data/ when -o is
not given.

Examples:
  openai audio speech "Your build has finished." -o done.mp3
  openai audio speech --voice coral --instructions "Speak cheerfully" "Good morning!"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return fmt.Errorf("failed to read 'model' flag: %w", err)
		}
		voice, err := cmd.Flags().GetString("voice")
		if err != nil {
			return fmt.Errorf("failed to read 'voice' flag: %w", err)
		}
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to read 'format' flag: %w", err)
		}
		speed, err := cmd.Flags().GetFloat64("speed")
		if err != nil {
			return fmt.Errorf("failed to read 'speed' flag: %w", err)
		}
		instructions, err := cmd.Flags().GetString("instructions")
		if err != nil {
			return fmt.Errorf("failed to read 'instructions' flag: %w", err)
		}

		req := openai.NewSpeechRequest(model, openai.Voice(voice), strings.Join(args, " ")).
			WithResponseFormat(openai.SpeechFormat(format)).
			WithSpeed(speed).
			WithInstructions(instructions)

		client, err := createClient()
		if err != nil {
			return err
		}
		start := time.Now()
		audio, err := client.Audio.Speech(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("speech synthesis failed: %w", err)
		}
		printVerbose("Synthesized in %s", cli.FormatDuration(time.Since(start)))

		path := outputFile
		if path == "" {
			paths, err := cli.NewPaths(appName)
			if err != nil {
				return err
			}
			path, err = paths.ArtifactPath("speech", string(format), time.Now())
			if err != nil {
				return err
			}
		}
		if err := cli.OutputBytes(audio, path); err != nil {
			return err
		}
		cli.PrintSuccess("Saved %s to %s", cli.FormatBytesInt(len(audio)), path)
		return nil
	},
}

func openAudio(path string) (openai.AudioInput, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return openai.AudioInput{}, nil, fmt.Errorf("failed to open audio: %w", err)
	}
	return openai.AudioInput{Reader: f, Filename: filepath.Base(path)}, func() { f.Close() }, nil
}

// emitTranscription prints plain text, or the full result for --json, -o
// or a structured format.
func emitTranscription(t *openai.Transcription, format openai.TranscriptionFormat) error {
	if t.Duration > 0 {
		printVerbose("Audio duration: %s", cli.FormatDuration(time.Duration(t.Duration * float64(time.Second))))
	}
	if outputJSON || outputFile != "" || format == openai.TranscriptionVerboseJSON {
		return outputResult(t)
	}
	fmt.Println(t.Text)
	return nil
}

var audioTranscribeCmd = &cobra.Command{
	Use:   "transcribe <file>",
	Short: "Transcribe speech to text",
	Long: `Transcribe an audio file in its spoken language.

Examples:
  openai audio transcribe meeting.m4a
  openai audio transcribe --format verbose_json --timestamps word,segment memo.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return fmt.Errorf("failed to read 'model' flag: %w", err)
		}
		language, err := cmd.Flags().GetString("language")
		if err != nil {
			return fmt.Errorf("failed to read 'language' flag: %w", err)
		}
		prompt, err := cmd.Flags().GetString("prompt")
		if err != nil {
			return fmt.Errorf("failed to read 'prompt' flag: %w", err)
		}
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to read 'format' flag: %w", err)
		}
		timestamps, err := cmd.Flags().GetStringSlice("timestamps")
		if err != nil {
			return fmt.Errorf("failed to read 'timestamps' flag: %w", err)
		}

		file, closeFile, err := openAudio(args[0])
		if err != nil {
			return err
		}
		defer closeFile()

		req := &openai.TranscriptionRequest{
			File:           file,
			Model:          model,
			Language:       language,
			Prompt:         prompt,
			ResponseFormat: openai.TranscriptionFormat(format),
		}
		for _, g := range timestamps {
			req.TimestampGranularities = append(req.TimestampGranularities, openai.TimestampGranularity(g))
		}

		client, err := createClient()
		if err != nil {
			return err
		}
		t, err := client.Audio.Transcribe(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("transcription failed: %w", err)
		}
		return emitTranscription(t, req.ResponseFormat)
	},
}

var audioTranslateCmd = &cobra.Command{
	Use:   "translate <file>",
	Short: "Translate speech to English text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := cmd.Flags().GetString("prompt")
		if err != nil {
			return fmt.Errorf("failed to read 'prompt' flag: %w", err)
		}
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to read 'format' flag: %w", err)
		}

		file, closeFile, err := openAudio(args[0])
		if err != nil {
			return err
		}
		defer closeFile()

		req := &openai.TranslationRequest{
			File:           file,
			Prompt:         prompt,
			ResponseFormat: openai.TranscriptionFormat(format),
		}

		client, err := createClient()
		if err != nil {
			return err
		}
		t, err := client.Audio.Translate(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		return emitTranscription(t, req.ResponseFormat)
	},
}

func init() {
	audioSpeechCmd.Flags().String("model", openai.ModelGPT4oMiniTTS, "Speech model")
	audioSpeechCmd.Flags().String("voice", string(openai.VoiceAlloy), "Voice")
	audioSpeechCmd.Flags().String("format", string(openai.SpeechMP3), "Audio format: mp3, opus, aac, flac, wav or pcm")
	audioSpeechCmd.Flags().Float64("speed", 0, "Playback speed, 0.25 to 4.0")
	audioSpeechCmd.Flags().String("instructions", "", "Delivery instructions (gpt-4o-mini-tts)")

	audioTranscribeCmd.Flags().String("model", openai.ModelWhisper1, "Transcription model")
	audioTranscribeCmd.Flags().String("language", "", "ISO-639-1 input language")
	audioTranscribeCmd.Flags().StringSlice("timestamps", nil, "Timestamp granularities: word, segment")

	for _, c := range []*cobra.Command{audioTranscribeCmd, audioTranslateCmd} {
		c.Flags().String("prompt", "", "Text to guide style or continue a previous segment")
		c.Flags().String("format", string(openai.TranscriptionJSON), "json, text, srt, verbose_json or vtt")
	}

	audioCmd.AddCommand(audioSpeechCmd)
	audioCmd.AddCommand(audioTranscribeCmd)
	audioCmd.AddCommand(audioTranslateCmd)
}
