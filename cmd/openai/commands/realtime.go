package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
	"github.com/akitenkrad/openai-tools/go/pkg/openai"
	openairealtime "github.com/akitenkrad/openai-tools/go/pkg/openai-realtime"
)

var realtimeCmd = &cobra.Command{
	Use:   "realtime",
	Short: "Realtime API sessions",
}

// clockArgs are the arguments of the current_time tool.
type clockArgs struct {
	Timezone string `json:"timezone" jsonschema:"IANA time zone such as Europe/Paris"`
}

func currentTime(call openai.ToolCall) string {
	var args clockArgs
	if err := call.ParseArguments(&args); err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	loc, err := time.LoadLocation(args.Timezone)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return fmt.Sprintf(`{"time":%q}`, time.Now().In(loc).Format(time.RFC3339))
}

var realtimeChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive text chat over a realtime session",
	Long: `Start an interactive text chat over a realtime WebSocket session.

Each line read from stdin becomes a user message followed by a response.
End input with Ctrl-D, or interrupt with Ctrl-C.

Examples:
  openai realtime chat
  openai realtime chat --instructions "Answer in haiku" --clock`,
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return fmt.Errorf("failed to read 'model' flag: %w", err)
		}
		instructions, err := cmd.Flags().GetString("instructions")
		if err != nil {
			return fmt.Errorf("failed to read 'instructions' flag: %w", err)
		}
		clock, err := cmd.Flags().GetBool("clock")
		if err != nil {
			return fmt.Errorf("failed to read 'clock' flag: %w", err)
		}

		auth, _, err := resolveAuth()
		if err != nil {
			return err
		}

		session := (&openairealtime.SessionConfig{}).
			WithModalities(openairealtime.ModalityText).
			WithManualTurns()
		if instructions != "" {
			session.WithInstructions(instructions)
		}
		if clock {
			tool, err := openai.FunctionToolFor[clockArgs]("current_time", "Returns the current time in a time zone")
			if err != nil {
				return err
			}
			session.WithTools(tool)
		}

		client := openairealtime.NewClient(auth, openairealtime.WithLogger(logger))
		s, err := client.Connect(cmd.Context(), &openairealtime.ConnectConfig{Model: model, Session: session})
		if err != nil {
			return fmt.Errorf("connect failed: %w", err)
		}
		defer s.Close()

		tr := cli.NewTranscript(os.Stdout, cli.NewStyles(cli.DefaultTheme), 100)
		tr.Title("openai realtime", model+" · "+s.ID())

		return runRealtimeChat(cmd.Context(), s, tr)
	},
}

// runRealtimeChat drives one session: stdin lines go out as user turns and
// the receive loop renders the replies. A turn ends at the response.done
// that does not trigger a tool follow-up.
func runRealtimeChat(ctx context.Context, s *openairealtime.Session, tr *cli.Transcript) error {
	turnDone := make(chan struct{}, 1)
	streamDone := make(chan struct{})
	followUp := false

	h := openairealtime.NewHandler().
		OnTextDelta(func(ctx context.Context, responseID, delta string) error {
			tr.Delta(delta)
			return nil
		}).
		OnFunctionCallArgumentsDone(func(ctx context.Context, call openai.ToolCall) error {
			tr.Info("calling %s(%s)", call.Function.Name, call.Function.Arguments)
			followUp = true
			return s.SubmitFunctionOutput(call.ID, currentTime(call))
		}).
		OnResponseDone(func(ctx context.Context, r *openairealtime.ResponseResource) error {
			tr.EndTurn()
			if r.Status == openairealtime.StatusFailed && r.StatusDetails != nil && r.StatusDetails.Error != nil {
				tr.Error("%s", r.StatusDetails.Error.Message)
			}
			if r.Usage != nil {
				logger.Debug("response usage",
					zap.String("response_id", r.ID),
					zap.Int("input_tokens", r.Usage.InputTokens),
					zap.Int("output_tokens", r.Usage.OutputTokens))
			}
			if followUp && r.Status == openairealtime.StatusCompleted {
				followUp = false
				return s.CreateResponse(nil)
			}
			followUp = false
			select {
			case turnDone <- struct{}{}:
			default:
			}
			return nil
		}).
		OnError(func(ctx context.Context, err *openai.APIError) error {
			tr.Error("%s", err.Message)
			select {
			case turnDone <- struct{}{}:
			default:
			}
			return nil
		})

	g, gctx := errgroup.WithContext(ctx)
	lines := readLines(gctx, os.Stdin)
	g.Go(func() error {
		defer close(streamDone)
		return s.Run(gctx, h)
	})
	g.Go(func() error {
		defer s.Close()
		for {
			tr.Prompt()
			var line string
			select {
			case <-gctx.Done():
				return nil
			case <-streamDone:
				return nil
			case l, ok := <-lines:
				if !ok {
					tr.EndTurn()
					return nil
				}
				line = strings.TrimSpace(l)
			}
			if line == "" {
				continue
			}
			if err := s.SendText(line); err != nil {
				return err
			}
			if err := s.CreateResponse(nil); err != nil {
				return err
			}
			select {
			case <-turnDone:
			case <-gctx.Done():
				return nil
			case <-streamDone:
				return nil
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readLines delivers r line by line until EOF or until ctx is done. The
// channel is closed when the reader goroutine exits.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func init() {
	realtimeChatCmd.Flags().String("model", openairealtime.ModelGPT4oRealtimePreview, "Realtime model")
	realtimeChatCmd.Flags().String("instructions", "", "Session instructions")
	realtimeChatCmd.Flags().Bool("clock", false, "Offer a current_time tool to the model")

	realtimeCmd.AddCommand(realtimeChatCmd)
}
