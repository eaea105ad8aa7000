package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "File management",
	Long: `Upload, list, inspect and download files.

Purposes: assistants, batch, fine-tune, vision, user_data, evals.`,
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a file",
	Long: `Upload a file.

Examples:
  openai files upload requests.jsonl --purpose batch
  openai files upload train.jsonl --purpose fine-tune`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		purpose, err := cmd.Flags().GetString("purpose")
		if err != nil {
			return fmt.Errorf("failed to read 'purpose' flag: %w", err)
		}
		if info, err := os.Stat(args[0]); err == nil {
			printVerbose("Uploading %s (%s)", args[0], cli.FormatBytes(info.Size()))
		}

		client, err := createClient()
		if err != nil {
			return err
		}
		file, err := client.Files.UploadPath(cmd.Context(), args[0], openai.FilePurpose(purpose))
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		return outputResult(file)
	},
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List files",
	RunE: func(cmd *cobra.Command, args []string) error {
		purpose, err := cmd.Flags().GetString("purpose")
		if err != nil {
			return fmt.Errorf("failed to read 'purpose' flag: %w", err)
		}
		client, err := createClient()
		if err != nil {
			return err
		}
		files, err := client.Files.List(cmd.Context(), openai.FilePurpose(purpose))
		if err != nil {
			return fmt.Errorf("list files failed: %w", err)
		}
		return outputResult(files)
	},
}

var filesGetCmd = &cobra.Command{
	Use:   "get <file_id>",
	Short: "Retrieve file metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		file, err := client.Files.Retrieve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("retrieve file failed: %w", err)
		}
		return outputResult(file)
	},
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <file_id>",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Files.Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete file failed: %w", err)
		}
		return printSuccessOrResult(resp, "File %s deleted", args[0])
	},
}

var filesContentCmd = &cobra.Command{
	Use:   "content <file_id>",
	Short: "Download file content",
	Long: `Download file content, for example the output file of a batch.

Examples:
  openai files content file-abc123 -o results.jsonl
  openai files content file-abc123 | jq -c .`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		data, err := client.Files.Content(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		if outputFile == "" {
			return cli.Output(data, cli.OutputOptions{Format: cli.FormatRaw})
		}
		if err := cli.OutputBytes(data, outputFile); err != nil {
			return err
		}
		cli.PrintSuccess("Saved %s to %s", cli.FormatBytesInt(len(data)), outputFile)
		return nil
	},
}

func init() {
	filesUploadCmd.Flags().String("purpose", string(openai.PurposeUserData), "File purpose")
	filesListCmd.Flags().String("purpose", "", "Only list files with this purpose")

	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesGetCmd)
	filesCmd.AddCommand(filesDeleteCmd)
	filesCmd.AddCommand(filesContentCmd)
}
