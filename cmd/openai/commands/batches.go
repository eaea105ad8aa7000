package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Batch jobs",
	Long: `Create and track batch jobs.

Upload the JSONL input with "openai files upload --purpose batch" first.

Example request file (batch.yaml):
  input_file_id: file-abc123
  endpoint: /v1/chat/completions
  completion_window: 24h
  metadata:
    project: nightly-eval`,
}

var batchesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a batch",
	Long: `Create a batch from flags or a request file.

Examples:
  openai batches create --input-file-id file-abc123 --endpoint /v1/embeddings
  openai batches create -f batch.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req *openai.BatchRequest
		if inputFile != "" {
			req = &openai.BatchRequest{CompletionWindow: openai.CompletionWindow24h}
			if err := loadRequest(req); err != nil {
				return err
			}
		} else {
			fileID, err := cmd.Flags().GetString("input-file-id")
			if err != nil {
				return fmt.Errorf("failed to read 'input-file-id' flag: %w", err)
			}
			if fileID == "" {
				return fmt.Errorf("--input-file-id or -f is required")
			}
			endpoint, err := cmd.Flags().GetString("endpoint")
			if err != nil {
				return fmt.Errorf("failed to read 'endpoint' flag: %w", err)
			}
			metadata, err := cmd.Flags().GetStringArray("metadata")
			if err != nil {
				return fmt.Errorf("failed to read 'metadata' flag: %w", err)
			}
			req = openai.NewBatchRequest(fileID, openai.BatchEndpoint(endpoint))
			if req.Metadata, err = parseMetadata(metadata); err != nil {
				return err
			}
		}

		client, err := createClient()
		if err != nil {
			return err
		}
		batch, err := client.Batches.Create(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("create batch failed: %w", err)
		}
		return outputResult(batch)
	},
}

var batchesGetCmd = &cobra.Command{
	Use:   "get <batch_id>",
	Short: "Retrieve a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		batch, err := client.Batches.Retrieve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("retrieve batch failed: %w", err)
		}
		printVerbose("Status: %s (terminal: %v)", batch.Status, batch.Status.Terminal())
		return outputResult(batch)
	},
}

var batchesCancelCmd = &cobra.Command{
	Use:   "cancel <batch_id>",
	Short: "Cancel a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		batch, err := client.Batches.Cancel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("cancel batch failed: %w", err)
		}
		return outputResult(batch)
	},
}

var batchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := listParams(cmd)
		if err != nil {
			return err
		}
		client, err := createClient()
		if err != nil {
			return err
		}
		batches, err := client.Batches.List(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("list batches failed: %w", err)
		}
		return outputResult(batches)
	},
}

func init() {
	batchesCreateCmd.Flags().String("input-file-id", "", "ID of the uploaded JSONL input")
	batchesCreateCmd.Flags().String("endpoint", string(openai.BatchChatCompletions), "Endpoint every request targets")
	batchesCreateCmd.Flags().StringArray("metadata", nil, "Metadata as key=value (repeatable)")
	addListFlags(batchesListCmd)

	batchesCmd.AddCommand(batchesCreateCmd)
	batchesCmd.AddCommand(batchesGetCmd)
	batchesCmd.AddCommand(batchesCancelCmd)
	batchesCmd.AddCommand(batchesListCmd)
}
