package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage contexts",
	Long: `Manage named contexts, each holding a provider, credentials and defaults.

Contexts live in ~/.openai-tools/openai/config.yaml (or under
$OPENAI_TOOLS_HOME). An api_key written as ${VAR} is read from the
environment when the context is used.`,
}

var configAddContextCmd = &cobra.Command{
	Use:     "add-context <name>",
	Aliases: []string{"set-context"},
	Short:   "Create or update a context",
	Long: `Create a context, or update the flags given on an existing one.

Examples:
  openai config add-context personal --api-key sk-...
  openai config add-context ci --api-key '${OPENAI_API_KEY}'
  openai config add-context local --api-key x --base-url http://localhost:8080/v1
  openai config add-context azure --provider azure --api-key KEY \
    --base-url "https://res.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-06-01"
  openai config set-context personal --default-model gpt-4.1-mini`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		ctx := &cli.Context{}
		existing, err := globalConfig.Context(name)
		if err == nil {
			updated := *existing
			ctx = &updated
		}
		if err := applyContextFlags(cmd, ctx); err != nil {
			return err
		}
		if ctx.APIKey == "" {
			return fmt.Errorf("--api-key is required for a new context")
		}
		if err := globalConfig.SetContext(name, ctx); err != nil {
			return err
		}
		if existing != nil {
			cli.PrintSuccess("Context %q updated", name)
		} else {
			cli.PrintSuccess("Context %q added", name)
		}
		return nil
	},
}

// applyContextFlags copies the flags the user actually set onto ctx.
func applyContextFlags(cmd *cobra.Command, ctx *cli.Context) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("api-key") {
		if ctx.APIKey, err = flags.GetString("api-key"); err != nil {
			return err
		}
	}
	if flags.Changed("provider") {
		if ctx.Provider, err = flags.GetString("provider"); err != nil {
			return err
		}
	}
	if flags.Changed("base-url") {
		if ctx.BaseURL, err = flags.GetString("base-url"); err != nil {
			return err
		}
	}
	if flags.Changed("entra-id") {
		if ctx.EntraID, err = flags.GetBool("entra-id"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if ctx.Timeout, err = flags.GetInt("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("default-model") {
		model, err := flags.GetString("default-model")
		if err != nil {
			return err
		}
		ctx.SetDefaultModel(model)
	}
	return nil
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Select the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:     "get-context",
	Aliases: []string{"current-context"},
	Short:   "Print the current context name",
	RunE: func(cmd *cobra.Command, args []string) error {
		if globalConfig.CurrentContext == "" {
			fmt.Println("No current context set; using the environment")
			return nil
		}
		fmt.Println(globalConfig.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := globalConfig.Names()
		if len(names) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tPROVIDER\tBASE_URL\tDEFAULT_MODEL")
		for _, name := range names {
			ctx := globalConfig.Contexts[name]
			current := ""
			if name == globalConfig.CurrentContext {
				current = "*"
			}
			baseURL := ctx.BaseURL
			if baseURL == "" {
				baseURL = "(default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name, ctx.ProviderName(), baseURL, ctx.DefaultModel())
		}
		return w.Flush()
	},
}

// contextView is a context as shown by "config view", key masked.
type contextView struct {
	Provider     string `json:"provider"`
	APIKey       string `json:"api_key"`
	BaseURL      string `json:"base_url,omitempty"`
	EntraID      bool   `json:"entra_id,omitempty"`
	Timeout      int    `json:"timeout,omitempty"`
	DefaultModel string `json:"default_model,omitempty"`
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the configuration with API keys masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		view := struct {
			Path           string                 `json:"path"`
			CurrentContext string                 `json:"current_context,omitempty"`
			Contexts       map[string]contextView `json:"contexts,omitempty"`
		}{
			Path:           globalConfig.Path(),
			CurrentContext: globalConfig.CurrentContext,
			Contexts:       make(map[string]contextView, len(globalConfig.Contexts)),
		}
		for name, ctx := range globalConfig.Contexts {
			view.Contexts[name] = contextView{
				Provider:     ctx.ProviderName(),
				APIKey:       ctx.MaskedAPIKey(),
				BaseURL:      ctx.BaseURL,
				EntraID:      ctx.EntraID,
				Timeout:      ctx.Timeout,
				DefaultModel: ctx.DefaultModel(),
			}
		}
		return outputResult(view)
	},
}

func addContextFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("api-key", "", "API key or Entra ID token; ${VAR} is expanded at use")
	f.String("provider", cli.ProviderOpenAI, "Provider: openai or azure")
	f.String("base-url", "", "API base URL (Azure: full deployment URL)")
	f.Bool("entra-id", false, "Send the key as an Azure Entra ID bearer token")
	f.Int("timeout", 0, "Request timeout in seconds")
	f.String("default-model", "", "Model used when a command gets no --model")
}

func init() {
	addContextFlags(configAddContextCmd)

	configCmd.AddCommand(
		configAddContextCmd,
		configDeleteContextCmd,
		configUseContextCmd,
		configGetContextCmd,
		configListContextsCmd,
		configViewCmd,
	)
}
