package adapters

import "fmt"

// openAIChatRequest is the chat/completions body used by OpenAI and compatible gateways.
type openAIChatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []ChatMessage `json:"messages"`
}

type visionRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []visionMessage `json:"messages"`
}

type visionMessage struct {
	Role    string       `json:"role"`
	Content []visionPart `json:"content"`
}

type visionPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

type dalleRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

func convertToOpenAIChat(t Target, in ChatInput) *openAIChatRequest {
	return &openAIChatRequest{
		Model:       t.Model,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
		Messages:    copyMessages(in.Messages),
	}
}

func convertToVision(t Target, in CaptionInput) *visionRequest {
	return &visionRequest{
		Model:     t.Model,
		MaxTokens: in.MaxTokens,
		Messages: []visionMessage{{
			Role: "user",
			Content: []visionPart{
				{Type: "text", Text: in.Prompt},
				{Type: "image_url", ImageURL: &visionImageURL{URL: DataURI(in.ImageBase64)}},
			},
		}},
	}
}

func convertToDalle(t Target, in TextToImageInput) *dalleRequest {
	return &dalleRequest{
		Model:          t.Model,
		Prompt:         in.Prompt,
		N:              1,
		Size:           fmt.Sprintf("%dx%d", in.Width, in.Height),
		ResponseFormat: "url",
	}
}

func copyMessages(msgs []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
