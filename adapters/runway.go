package adapters

// runwayRequest is the Gen-2 generations body. prompt is always sent, empty when absent.
type runwayRequest struct {
	Prompt      string `json:"prompt"`
	ImagePrompt string `json:"image_prompt,omitempty"`
	Duration    int    `json:"duration"`
}

func convertToRunway(in VideoInput) *runwayRequest {
	return &runwayRequest{
		Prompt:      in.Prompt,
		ImagePrompt: in.ImageBase64,
		Duration:    in.Duration,
	}
}
