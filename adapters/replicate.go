package adapters

// replicateFPS is the frame rate requested from replicate video models; the frame count is
// derived from it.
const replicateFPS = 24

// replicateRequest is the predictions body: the model goes in version, everything else in input.
type replicateRequest struct {
	Version string `json:"version"`
	Input   any    `json:"input"`
}

type replicateCaptionInput struct {
	Image string `json:"image"`
}

type replicateTextToImageInput struct {
	Prompt            string `json:"prompt"`
	NegativePrompt    string `json:"negative_prompt"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	NumInferenceSteps int    `json:"num_inference_steps"`
}

type replicateImageToImageInput struct {
	Image             string  `json:"image"`
	Prompt            string  `json:"prompt"`
	Strength          float64 `json:"strength"`
	NumInferenceSteps int     `json:"num_inference_steps"`
}

type replicateVideoInput struct {
	Image     string `json:"image,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
	FPS       int    `json:"fps"`
	NumFrames int    `json:"num_frames"`
}

func convertToReplicateCaption(t Target, in CaptionInput) *replicateRequest {
	return &replicateRequest{
		Version: t.Model,
		Input:   replicateCaptionInput{Image: DataURI(in.ImageBase64)},
	}
}

func convertToReplicateTextToImage(t Target, in TextToImageInput) *replicateRequest {
	return &replicateRequest{
		Version: t.Model,
		Input: replicateTextToImageInput{
			Prompt:            in.Prompt,
			NegativePrompt:    in.NegativePrompt,
			Width:             in.Width,
			Height:            in.Height,
			NumInferenceSteps: in.Steps,
		},
	}
}

func convertToReplicateImageToImage(t Target, in ImageToImageInput) *replicateRequest {
	return &replicateRequest{
		Version: t.Model,
		Input: replicateImageToImageInput{
			Image:             DataURI(in.ImageBase64),
			Prompt:            in.Prompt,
			Strength:          in.Strength,
			NumInferenceSteps: in.Steps,
		},
	}
}

func convertToReplicateVideo(t Target, in VideoInput) *replicateRequest {
	return &replicateRequest{
		Version: t.Model,
		Input: replicateVideoInput{
			Image:     in.ImageBase64,
			Prompt:    in.Prompt,
			FPS:       replicateFPS,
			NumFrames: in.Duration * replicateFPS,
		},
	}
}
