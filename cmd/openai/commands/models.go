package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model listing",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available models",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		models, err := client.Models.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list models failed: %w", err)
		}
		return outputResult(models)
	},
}

var modelsGetCmd = &cobra.Command{
	Use:   "get <model>",
	Short: "Retrieve a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		model, err := client.Models.Retrieve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("retrieve model failed: %w", err)
		}
		return outputResult(model)
	},
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete <model>",
	Short: "Delete a fine-tuned model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Models.Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete model failed: %w", err)
		}
		return printSuccessOrResult(resp, "Model %s deleted", args[0])
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsGetCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
}
