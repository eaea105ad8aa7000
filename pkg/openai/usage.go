package openai

// Usage reports token consumption. Chat completions fill the prompt and
// completion fields; the Responses API fills the input and output fields.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitzero"`
	CompletionTokens int `json:"completion_tokens,omitzero"`
	InputTokens      int `json:"input_tokens,omitzero"`
	OutputTokens     int `json:"output_tokens,omitzero"`
	TotalTokens      int `json:"total_tokens,omitzero"`

	PromptTokensDetails     *TokenDetails `json:"prompt_tokens_details,omitzero"`
	CompletionTokensDetails *TokenDetails `json:"completion_tokens_details,omitzero"`
	InputTokensDetails      *TokenDetails `json:"input_tokens_details,omitzero"`
	OutputTokensDetails     *TokenDetails `json:"output_tokens_details,omitzero"`
}

// TokenDetails breaks a token count down by kind.
type TokenDetails struct {
	CachedTokens             int `json:"cached_tokens,omitzero"`
	AudioTokens              int `json:"audio_tokens,omitzero"`
	ReasoningTokens          int `json:"reasoning_tokens,omitzero"`
	AcceptedPredictionTokens int `json:"accepted_prediction_tokens,omitzero"`
	RejectedPredictionTokens int `json:"rejected_prediction_tokens,omitzero"`
}
