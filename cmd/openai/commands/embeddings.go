package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var embeddingsCmd = &cobra.Command{
	Use:   "embeddings",
	Short: "Text embeddings",
}

var embeddingsCreateCmd = &cobra.Command{
	Use:   "create <text>...",
	Short: "Create embeddings",
	Long: `Create one embedding per text argument.

Examples:
  openai embeddings create "hello world"
  openai embeddings create --model text-embedding-3-large --dimensions 256 "a" "b" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return fmt.Errorf("failed to read 'model' flag: %w", err)
		}
		dimensions, err := cmd.Flags().GetInt("dimensions")
		if err != nil {
			return fmt.Errorf("failed to read 'dimensions' flag: %w", err)
		}
		b64, err := cmd.Flags().GetBool("base64")
		if err != nil {
			return fmt.Errorf("failed to read 'base64' flag: %w", err)
		}

		req := openai.NewEmbeddingRequest(model, args...).WithDimensions(dimensions)
		if b64 {
			req.WithEncodingFormat(openai.EncodingBase64)
		}

		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Embeddings.Create(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("create embeddings failed: %w", err)
		}

		for _, e := range resp.Data {
			if v, ok := e.Embedding.As1D(); ok {
				printVerbose("Embedding %d: %d dimensions", e.Index, len(v))
			} else if v, err := e.Embedding.Float32s(); err == nil {
				printVerbose("Embedding %d: %d dimensions (base64)", e.Index, len(v))
			}
		}
		return outputResult(resp)
	},
}

func init() {
	embeddingsCreateCmd.Flags().String("model", openai.ModelTextEmbedding3Small, "Embedding model")
	embeddingsCreateCmd.Flags().Int("dimensions", 0, "Output dimensions (text-embedding-3 only)")
	embeddingsCreateCmd.Flags().Bool("base64", false, "Request base64-encoded vectors")
	embeddingsCmd.AddCommand(embeddingsCreateCmd)
}
