package adapters

// anthropicRequest is the Messages API body. Anthropic has no temperature default in this
// client, so the field is not sent.
type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []ChatMessage `json:"messages"`
}

func convertToAnthropic(t Target, in ChatInput) *anthropicRequest {
	return &anthropicRequest{
		Model:     t.Model,
		MaxTokens: in.MaxTokens,
		Messages:  copyMessages(in.Messages),
	}
}
