package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var moderationsCmd = &cobra.Command{
	Use:   "moderations",
	Short: "Content moderation",
}

var moderationsCreateCmd = &cobra.Command{
	Use:   "create <text>...",
	Short: "Classify texts for policy violations",
	Long: `Classify one or more texts.

Examples:
  openai moderations create "some user comment"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return fmt.Errorf("failed to read 'model' flag: %w", err)
		}

		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Moderations.Create(cmd.Context(), openai.NewModerationRequest(args...).WithModel(model))
		if err != nil {
			return fmt.Errorf("moderation failed: %w", err)
		}

		for i, r := range resp.Results {
			if r.Flagged {
				printVerbose("Input %d flagged: %v", i, r.FlaggedCategories())
			}
		}
		return outputResult(resp)
	},
}

func init() {
	moderationsCreateCmd.Flags().String("model", openai.ModelOmniModerationLatest, "Moderation model")
	moderationsCmd.AddCommand(moderationsCreateCmd)
}
