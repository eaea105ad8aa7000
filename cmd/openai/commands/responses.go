package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/cli"
	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Responses API",
	Long: `Responses API service.

Example request file (response.yaml):
  model: gpt-4.1-mini
  instructions: Answer in one paragraph.
  input: Explain backpressure.
  reasoning:
    effort: low
  max_output_tokens: 400`,
}

func responsesRequest(cmd *cobra.Command, args []string) (*openai.ResponsesRequest, error) {
	var file responsesFile
	if inputFile != "" {
		if err := loadRequest(&file); err != nil {
			return nil, err
		}
	} else {
		file.Input = strings.Join(args, " ")
		if file.Input == "" {
			return nil, fmt.Errorf("a prompt argument or -f request file is required")
		}
	}

	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return nil, fmt.Errorf("failed to read 'model' flag: %w", err)
	}
	switch {
	case model != "":
		file.Model = model
	case file.Model == "":
		file.Model = defaultModel(openai.ModelGPT41Mini)
	}
	if instructions, _ := cmd.Flags().GetString("instructions"); instructions != "" {
		file.Instructions = instructions
	}
	if prev, _ := cmd.Flags().GetString("previous-response-id"); prev != "" {
		file.PreviousResponseID = prev
	}

	printVerbose("Model: %s", file.Model)
	return file.request(), nil
}

var responsesCreateCmd = &cobra.Command{
	Use:   "create [prompt]",
	Short: "Create a response",
	Long: `Create a response.

Examples:
  openai responses create "Name three sorting algorithms"
  openai responses create -f response.yaml --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := responsesRequest(cmd, args)
		if err != nil {
			return err
		}
		client, err := createClient()
		if err != nil {
			return err
		}

		resp, err := client.Responses.Create(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("create response failed: %w", err)
		}

		printVerbose("Response: %s (%s)", resp.ID, resp.Status)
		printVerbose("Usage: %s", cli.FormatUsage(resp.Usage))
		if outputJSON || outputFile != "" {
			return outputResult(resp)
		}
		fmt.Println(resp.OutputText())
		return nil
	},
}

var responsesStreamCmd = &cobra.Command{
	Use:   "stream [prompt]",
	Short: "Create a streaming response",
	Long: `Create a response and print its text as it is generated.

Examples:
  openai responses stream "Tell me a short story"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := responsesRequest(cmd, args)
		if err != nil {
			return err
		}
		client, err := createClient()
		if err != nil {
			return err
		}

		for ev, err := range client.Responses.CreateStream(cmd.Context(), req) {
			if err != nil {
				fmt.Println()
				return fmt.Errorf("streaming failed: %w", err)
			}
			switch ev.Type {
			case "response.output_text.delta":
				fmt.Print(ev.Delta)
			case "response.completed", "response.incomplete", "response.failed":
				if ev.Response != nil {
					printVerbose("Response: %s (%s)", ev.Response.ID, ev.Response.Status)
				}
			case "error":
				fmt.Println()
				return fmt.Errorf("stream error %s: %s", ev.Code, ev.Message)
			}
		}
		fmt.Println()
		return nil
	},
}

var responsesGetCmd = &cobra.Command{
	Use:   "get <response_id>",
	Short: "Retrieve a response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Responses.Retrieve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("retrieve response failed: %w", err)
		}
		return outputResult(resp)
	},
}

var responsesCancelCmd = &cobra.Command{
	Use:   "cancel <response_id>",
	Short: "Cancel a background response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Responses.Cancel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("cancel response failed: %w", err)
		}
		return outputResult(resp)
	},
}

var responsesDeleteCmd = &cobra.Command{
	Use:   "delete <response_id>",
	Short: "Delete a stored response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Responses.Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete response failed: %w", err)
		}
		return printSuccessOrResult(resp, "Response %s deleted", args[0])
	},
}

var responsesInputItemsCmd = &cobra.Command{
	Use:   "input-items <response_id>",
	Short: "List the input items of a response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := listParams(cmd)
		if err != nil {
			return err
		}
		client, err := createClient()
		if err != nil {
			return err
		}
		items, err := client.Responses.ListInputItems(cmd.Context(), args[0], params)
		if err != nil {
			return fmt.Errorf("list input items failed: %w", err)
		}
		return outputResult(items)
	},
}

func init() {
	for _, c := range []*cobra.Command{responsesCreateCmd, responsesStreamCmd} {
		c.Flags().String("model", "", "Model (default: context default_model or gpt-4.1-mini)")
		c.Flags().String("instructions", "", "System-level instructions")
		c.Flags().String("previous-response-id", "", "Continue from a stored response")
	}
	addListFlags(responsesInputItemsCmd)

	responsesCmd.AddCommand(responsesCreateCmd)
	responsesCmd.AddCommand(responsesStreamCmd)
	responsesCmd.AddCommand(responsesGetCmd)
	responsesCmd.AddCommand(responsesCancelCmd)
	responsesCmd.AddCommand(responsesDeleteCmd)
	responsesCmd.AddCommand(responsesInputItemsCmd)
}
