package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
)

const appName = "openai"

// Persistent flags.
var (
	cfgFile     string
	contextName string
	outputFile  string
	inputFile   string
	outputJSON  bool
	verbose     bool
)

// Set up by the root command before any subcommand runs.
var (
	globalConfig *cli.Config
	logger       = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "openai",
	Short: "Command line client for the OpenAI and Azure OpenAI APIs",
	Long: `openai talks to the OpenAI and Azure OpenAI APIs.

Credentials come from the selected context (-c, or the current one set with
"config use-context"). With no context selected, OPENAI_API_KEY or
AZURE_OPENAI_API_KEY are read from the environment or a .env file.

Requests can be given as flags or as YAML/JSON files with -f, using the
API's own field names. Results print as YAML, or as JSON with --json.

Examples:
  openai config add-context personal --api-key sk-...
  openai chat create "Summarize RFC 6455 in one sentence"
  openai -c personal chat create -f chat.yaml --json | jq '.choices[0].message'
  openai realtime chat --clock
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	if verbose {
		zc := zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		zc.DisableStacktrace = true
		l, err := zc.Build()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		logger = l
	}

	cfg, err := cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		return err
	}
	globalConfig = cfg
	logger.Debug("config loaded",
		zap.String("path", cfg.Path()),
		zap.String("current_context", cfg.CurrentContext))
	return nil
}

// Execute runs the command tree. SIGINT and SIGTERM cancel the command's
// context, aborting in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { _ = logger.Sync() }()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $OPENAI_TOOLS_HOME or ~/.openai-tools, then openai/config.yaml)")
	pf.StringVarP(&contextName, "context", "c", "", "context to use instead of the current one")
	pf.StringVarP(&outputFile, "output", "o", "", "write the result to this file")
	pf.StringVarP(&inputFile, "file", "f", "", "request file (YAML or JSON)")
	pf.BoolVar(&outputJSON, "json", false, "print results as JSON")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print progress and debug logs to stderr")

	rootCmd.AddCommand(
		configCmd,
		chatCmd,
		responsesCmd,
		embeddingsCmd,
		filesCmd,
		batchesCmd,
		finetuneCmd,
		moderationsCmd,
		imagesCmd,
		audioCmd,
		modelsCmd,
		conversationsCmd,
		realtimeCmd,
	)
}

// getContext returns the selected context, or nil when none is selected and
// the environment should be used instead.
func getContext() (*cli.Context, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return globalConfig.Resolve(contextName)
}

// outputResult prints result as YAML or JSON, to -o when given.
func outputResult(result any) error {
	format := cli.FormatYAML
	if outputJSON {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{Format: format, File: outputFile})
}

func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
