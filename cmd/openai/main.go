// Package main provides the openai CLI tool.
//
// Usage:
//
//	openai [flags] <service> <command> [args]
//
// Services:
//
//	chat           - Chat completions
//	responses      - Responses API
//	embeddings     - Text embeddings
//	files          - File management
//	batches        - Batch jobs
//	finetune       - Fine-tuning jobs
//	moderations    - Content moderation
//	images         - Image generation and editing
//	audio          - Speech, transcription and translation
//	models         - Model listing
//	conversations  - Server-side conversations
//	realtime       - Interactive realtime session
//	config         - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.openai-tools/openai/
//	Use 'openai config' commands to manage contexts. Without a context the
//	OPENAI_* and AZURE_OPENAI_* environment variables (and .env) are used.
package main

import (
	"fmt"
	"os"

	"github.com/akitenkrad/openai-tools/go/cmd/openai/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
