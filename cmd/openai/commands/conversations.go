package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Server-side conversations",
	Long: `Manage conversations that Responses API calls can continue.

Example request file (conversation.yaml):
  metadata:
    topic: onboarding
  items:
    - role: system
      content: You are a patient tutor.
    - role: user
      content: Where do we start?`,
}

// conversationItems loads -f, or builds one user message from --message.
func conversationItems(cmd *cobra.Command) (*conversationFile, error) {
	var file conversationFile
	if inputFile != "" {
		if err := loadRequest(&file); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Lookup("metadata") != nil {
		metadata, err := cmd.Flags().GetStringArray("metadata")
		if err != nil {
			return nil, fmt.Errorf("failed to read 'metadata' flag: %w", err)
		}
		md, err := parseMetadata(metadata)
		if err != nil {
			return nil, err
		}
		for k, v := range md {
			if file.Metadata == nil {
				file.Metadata = make(map[string]string)
			}
			file.Metadata[k] = v
		}
	}
	message, err := cmd.Flags().GetString("message")
	if err != nil {
		return nil, fmt.Errorf("failed to read 'message' flag: %w", err)
	}
	if message != "" {
		file.Items = append(file.Items, openai.UserMessage(message))
	}
	return &file, nil
}

var conversationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a conversation",
	Long: `Create a conversation, optionally seeded with items.

Examples:
  openai conversations create --metadata topic=demo --message "Hello"
  openai conversations create -f conversation.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := conversationItems(cmd)
		if err != nil {
			return err
		}
		client, err := createClient()
		if err != nil {
			return err
		}
		conv, err := client.Conversations.Create(cmd.Context(), file.Metadata, file.Items...)
		if err != nil {
			return fmt.Errorf("create conversation failed: %w", err)
		}
		return outputResult(conv)
	},
}

var conversationsGetCmd = &cobra.Command{
	Use:   "get <conversation_id>",
	Short: "Retrieve a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		conv, err := client.Conversations.Retrieve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("retrieve conversation failed: %w", err)
		}
		return outputResult(conv)
	},
}

var conversationsUpdateCmd = &cobra.Command{
	Use:   "update <conversation_id>",
	Short: "Replace the metadata of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metadata, err := cmd.Flags().GetStringArray("metadata")
		if err != nil {
			return fmt.Errorf("failed to read 'metadata' flag: %w", err)
		}
		md, err := parseMetadata(metadata)
		if err != nil {
			return err
		}
		if md == nil {
			return fmt.Errorf("--metadata is required")
		}
		client, err := createClient()
		if err != nil {
			return err
		}
		conv, err := client.Conversations.Update(cmd.Context(), args[0], md)
		if err != nil {
			return fmt.Errorf("update conversation failed: %w", err)
		}
		return outputResult(conv)
	},
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <conversation_id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := createClient()
		if err != nil {
			return err
		}
		resp, err := client.Conversations.Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete conversation failed: %w", err)
		}
		return printSuccessOrResult(resp, "Conversation %s deleted", args[0])
	},
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := listParams(cmd)
		if err != nil {
			return err
		}
		client, err := createClient()
		if err != nil {
			return err
		}
		convs, err := client.Conversations.List(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("list conversations failed: %w", err)
		}
		return outputResult(convs)
	},
}

var conversationsItemsCreateCmd = &cobra.Command{
	Use:   "items-create <conversation_id>",
	Short: "Append items to a conversation",
	Long: `Append items to a conversation.

Examples:
  openai conversations items-create conv_123 --message "One more question"
  openai conversations items-create conv_123 -f items.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := conversationItems(cmd)
		if err != nil {
			return err
		}
		if len(file.Items) == 0 {
			return fmt.Errorf("--message or -f with items is required")
		}
		client, err := createClient()
		if err != nil {
			return err
		}
		items, err := client.Conversations.CreateItems(cmd.Context(), args[0], file.Items...)
		if err != nil {
			return fmt.Errorf("create items failed: %w", err)
		}
		return outputResult(items)
	},
}

var conversationsItemsListCmd = &cobra.Command{
	Use:   "items-list <conversation_id>",
	Short: "List the items of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := listParams(cmd)
		if err != nil {
			return err
		}
		include, err := cmd.Flags().GetStringSlice("include")
		if err != nil {
			return fmt.Errorf("failed to read 'include' flag: %w", err)
		}
		itemParams := &openai.ItemListParams{}
		if params != nil {
			itemParams.ListParams = *params
		}
		for _, inc := range include {
			itemParams.Include = append(itemParams.Include, openai.ConversationInclude(inc))
		}

		client, err := createClient()
		if err != nil {
			return err
		}
		items, err := client.Conversations.ListItems(cmd.Context(), args[0], itemParams)
		if err != nil {
			return fmt.Errorf("list items failed: %w", err)
		}
		return outputResult(items)
	},
}

func init() {
	for _, c := range []*cobra.Command{conversationsCreateCmd, conversationsItemsCreateCmd} {
		c.Flags().String("message", "", "Add a user message with this text")
	}
	for _, c := range []*cobra.Command{conversationsCreateCmd, conversationsUpdateCmd} {
		c.Flags().StringArray("metadata", nil, "Metadata as key=value (repeatable)")
	}
	addListFlags(conversationsListCmd)
	addListFlags(conversationsItemsListCmd)
	conversationsItemsListCmd.Flags().StringSlice("include", nil, "Extra item data to include")

	conversationsCmd.AddCommand(conversationsCreateCmd)
	conversationsCmd.AddCommand(conversationsGetCmd)
	conversationsCmd.AddCommand(conversationsUpdateCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsItemsCreateCmd)
	conversationsCmd.AddCommand(conversationsItemsListCmd)
}
