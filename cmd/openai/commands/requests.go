package commands

import (
	"fmt"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

// Request files use the API's own field names. Only the commonly tuned
// parameters are exposed; the library accepts more.

// chatFile is the request file of "chat create" and "chat stream".
type chatFile struct {
	Model               string                 `json:"model"`
	Messages            []openai.Message       `json:"messages"`
	Temperature         *float64               `json:"temperature"`
	TopP                *float64               `json:"top_p"`
	N                   *int                   `json:"n"`
	Stop                []string               `json:"stop"`
	MaxCompletionTokens *int                   `json:"max_completion_tokens"`
	Seed                *int64                 `json:"seed"`
	ReasoningEffort     openai.ReasoningEffort `json:"reasoning_effort"`
	Store               *bool                  `json:"store"`
	Metadata            map[string]string      `json:"metadata"`
	User                string                 `json:"user"`
	// JSONMode requests a JSON object reply.
	JSONMode bool `json:"json_mode"`
}

func (f *chatFile) request() *openai.ChatCompletionRequest {
	req := openai.NewChatRequest(f.Model, f.Messages...)
	req.Temperature = f.Temperature
	req.TopP = f.TopP
	req.N = f.N
	req.Stop = f.Stop
	req.MaxCompletionTokens = f.MaxCompletionTokens
	req.Seed = f.Seed
	req.ReasoningEffort = f.ReasoningEffort
	req.Store = f.Store
	req.Metadata = f.Metadata
	req.User = f.User
	if f.JSONMode {
		req.ResponseFormat = openai.JSONMode()
	}
	return req
}

// responsesFile is the request file of "responses create" and
// "responses stream".
type responsesFile struct {
	Model              string            `json:"model"`
	Input              string            `json:"input"`
	Messages           []openai.Message  `json:"messages"`
	Instructions       string            `json:"instructions"`
	Temperature        *float64          `json:"temperature"`
	TopP               *float64          `json:"top_p"`
	MaxOutputTokens    *int              `json:"max_output_tokens"`
	PreviousResponseID string            `json:"previous_response_id"`
	Conversation       string            `json:"conversation"`
	Reasoning          *openai.Reasoning `json:"reasoning"`
	Verbosity          string            `json:"verbosity"`
	Store              *bool             `json:"store"`
	Background         *bool             `json:"background"`
	Metadata           map[string]any    `json:"metadata"`
}

func (f *responsesFile) request() *openai.ResponsesRequest {
	return &openai.ResponsesRequest{
		Model:              f.Model,
		Input:              f.Input,
		Messages:           f.Messages,
		Instructions:       f.Instructions,
		Temperature:        f.Temperature,
		TopP:               f.TopP,
		MaxOutputTokens:    f.MaxOutputTokens,
		PreviousResponseID: f.PreviousResponseID,
		Conversation:       f.Conversation,
		Reasoning:          f.Reasoning,
		Verbosity:          openai.TextVerbosity(f.Verbosity),
		Store:              f.Store,
		Background:         f.Background,
		Metadata:           f.Metadata,
	}
}

// conversationFile is the request file of "conversations create" and
// "conversations items-create".
type conversationFile struct {
	Metadata map[string]string `json:"metadata"`
	Items    []openai.Message  `json:"items"`
}

// promptMessages builds the history for a prompt given on the command
// line.
func promptMessages(system, prompt string) ([]openai.Message, error) {
	if prompt == "" {
		return nil, fmt.Errorf("a prompt argument or -f request file is required")
	}
	var msgs []openai.Message
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	return append(msgs, openai.UserMessage(prompt)), nil
}
