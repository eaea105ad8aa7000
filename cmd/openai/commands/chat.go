package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat completions",
	Long: `Chat completions service.

Give a prompt on the command line, or a request file with -f.

Example request file (chat.yaml):
  model: gpt-4o-mini
  messages:
    - role: system
      content: You are a helpful assistant.
    - role: user
      content: Hello, who are you?
  max_completion_tokens: 500
  temperature: 0.7`,
}

// chatRequest builds the request from -f or from the prompt arguments.
func chatRequest(cmd *cobra.Command, args []string) (*openai.ChatCompletionRequest, error) {
	var file chatFile
	if inputFile != "" {
		if err := loadRequest(&file); err != nil {
			return nil, err
		}
	} else {
		system, err := cmd.Flags().GetString("system")
		if err != nil {
			return nil, fmt.Errorf("failed to read 'system' flag: %w", err)
		}
		msgs, err := promptMessages(system, strings.Join(args, " "))
		if err != nil {
			return nil, err
		}
		file.Messages = msgs
	}

	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return nil, fmt.Errorf("failed to read 'model' flag: %w", err)
	}
	switch {
	case model != "":
		file.Model = model
	case file.Model == "":
		file.Model = defaultModel(openai.ModelGPT4oMini)
	}

	printVerbose("Model: %s", file.Model)
	printVerbose("Messages: %d", len(file.Messages))
	return file.request(), nil
}

var chatCreateCmd = &cobra.Command{
	Use:   "create [prompt]",
	Short: "Create a chat completion",
	Long: `Create a chat completion.

Examples:
  openai chat create "What is the capital of France?"
  openai -c personal chat create -f chat.yaml
  openai chat create -f chat.yaml --json | jq '.choices[0].message'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := chatRequest(cmd, args)
		if err != nil {
			return err
		}
		client, err := createClient()
		if err != nil {
			return err
		}

		resp, err := client.Chat.Create(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("chat completion failed: %w", err)
		}

		if outputJSON || outputFile != "" {
			return outputResult(resp)
		}
		fmt.Println(resp.Content())
		if resp.Usage != nil {
			printVerbose("Usage: %s", cli.FormatUsage(resp.Usage))
		}
		return nil
	},
}

var chatStreamCmd = &cobra.Command{
	Use:   "stream [prompt]",
	Short: "Create a streaming chat completion",
	Long: `Create a streaming chat completion.

The response will be streamed to stdout in real-time.

Examples:
  openai chat stream "Write a haiku about sockets"
  openai chat stream -f chat.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := chatRequest(cmd, args)
		if err != nil {
			return err
		}
		req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

		client, err := createClient()
		if err != nil {
			return err
		}

		var n int
		for chunk, err := range client.Chat.CreateStream(cmd.Context(), req) {
			if err != nil {
				fmt.Println()
				return fmt.Errorf("streaming failed: %w", err)
			}
			if len(chunk.Choices) > 0 {
				content := chunk.Choices[0].Delta.Content
				fmt.Print(content)
				n += len(content)
			}
			if chunk.Usage != nil {
				printVerbose("Usage: %s", cli.FormatUsage(chunk.Usage))
			}
		}
		fmt.Println() // New line after streaming

		printVerbose("Total content length: %d bytes", n)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{chatCreateCmd, chatStreamCmd} {
		c.Flags().String("model", "", "Model (default: context default_model or gpt-4o-mini)")
		c.Flags().String("system", "", "System message for a command-line prompt")
	}

	chatCmd.AddCommand(chatCreateCmd)
	chatCmd.AddCommand(chatStreamCmd)
}
