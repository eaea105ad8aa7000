package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var finetuneCmd = &cobra.Command{
	Use:     "finetune",
	Aliases: []string{"fine-tuning"},
	Short:   "Fine-tuning jobs",
	Long: `Create and track fine-tuning jobs.

Example request file (job.yaml):
  model: gpt-4.1-mini
  training_file: file-abc123
  suffix: support-bot
  method:
    type: supervised
    supervised:
      hyperparameters:
        n_epochs: auto`,
}

var finetuneCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a fine-tuning job",
	Long: `Create a fine-tuning job from flags or a request file.

Examples:
  openai finetune create --model gpt-4.1-mini --training-file file-abc123
  openai finetune create -f job.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &openai.FineTuningRequest{}
		if inputFile != "" {
			if err := loadRequest(req); err != nil {
				return err
			}
		} else {
			model, err := cmd.Flags().GetString("model")
			if err != nil {
				return fmt.Errorf("failed to read 'model' flag: %w", err)
			}
			trainingFile, err := cmd.Flags().GetString("training-file")
			if err != nil {
				return fmt.Errorf("failed to read 'training-file' flag: %w", err)
			}
			if trainingFile == "" {
				return fmt.Errorf("--training-file or -f is required")
			}
			validationFile, err := cmd.Flags().GetString("validation-file")
			if err != nil {
				return fmt.Errorf("failed to read 'validation-file' flag: %w", err)
			}
			suffix, err := cmd.Flags().GetString("suffix")
			if err != nil {
				return fmt.Errorf("failed to read 'suffix' flag: %w", err)
			}
			req = openai.NewFineTuningRequest(model, trainingFile).
				WithValidationFile(validationFile).
				WithSuffix(suffix)
		}

		client, err := createClient()
		if err != nil {
			return err
		}
		job, err := client.FineTuning.Create(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("create fine-tuning job failed: %w", err)
		}
		return outputResult(job)
	},
}

var finetuneGetCmd = &cobra.Command{
	Use:   "get <job_id>",
	Short: "Retrieve a fine-tuning job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		job, err := client.FineTuning.Retrieve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("retrieve fine-tuning job failed: %w", err)
		}
		return outputResult(job)
	},
}

var finetuneCancelCmd = &cobra.Command{
	Use:   "cancel <job_id>",
	Short: "Cancel a fine-tuning job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		job, err := client.FineTuning.Cancel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("cancel fine-tuning job failed: %w", err)
		}
		return outputResult(job)
	},
}

var finetuneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List fine-tuning jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := listParams(cmd)
		if err != nil {
			return err
		}
		client, err := createClient()
		if err != nil {
			return err
		}
		jobs, err := client.FineTuning.List(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("list fine-tuning jobs failed: %w", err)
		}
		return outputResult(jobs)
	},
}

var finetuneEventsCmd = &cobra.Command{
	Use:   "events <job_id>",
	Short: "List the events of a job",
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
		events, err := client.FineTuning.ListEvents(cmd.Context(), args[0], params)
		if err != nil {
			return fmt.Errorf("list events failed: %w", err)
		}
		return outputResult(events)
	},
}

var finetuneCheckpointsCmd = &cobra.Command{
	Use:   "checkpoints <job_id>",
	Short: "List the checkpoints of a job",
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
		checkpoints, err := client.FineTuning.ListCheckpoints(cmd.Context(), args[0], params)
		if err != nil {
			return fmt.Errorf("list checkpoints failed: %w", err)
		}
		return outputResult(checkpoints)
	},
}

func init() {
	finetuneCreateCmd.Flags().String("model", openai.ModelGPT41Mini, "Base model")
	finetuneCreateCmd.Flags().String("training-file", "", "ID of the uploaded training file")
	finetuneCreateCmd.Flags().String("validation-file", "", "ID of the uploaded validation file")
	finetuneCreateCmd.Flags().String("suffix", "", "Suffix of the fine-tuned model name")
	for _, c := range []*cobra.Command{finetuneListCmd, finetuneEventsCmd, finetuneCheckpointsCmd} {
		addListFlags(c)
	}

	finetuneCmd.AddCommand(finetuneCreateCmd)
	finetuneCmd.AddCommand(finetuneGetCmd)
	finetuneCmd.AddCommand(finetuneCancelCmd)
	finetuneCmd.AddCommand(finetuneListCmd)
	finetuneCmd.AddCommand(finetuneEventsCmd)
	finetuneCmd.AddCommand(finetuneCheckpointsCmd)
}
