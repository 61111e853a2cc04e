package adapters

// stabilityCfgScale is fixed for every Stability request.
const stabilityCfgScale = 7

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type stabilityTextToImageRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    int          `json:"cfg_scale"`
	Steps       int          `json:"steps"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
}

type stabilityImageToImageRequest struct {
	TextPrompts   []textPrompt `json:"text_prompts"`
	InitImage     string       `json:"init_image"`
	ImageStrength float64      `json:"image_strength"`
	CfgScale      int          `json:"cfg_scale"`
	Steps         int          `json:"steps"`
}

func convertToStabilityTextToImage(in TextToImageInput) *stabilityTextToImageRequest {
	prompts := []textPrompt{{Text: in.Prompt, Weight: 1.0}}
	if in.NegativePrompt != "" {
		prompts = append(prompts, textPrompt{Text: in.NegativePrompt, Weight: -1.0})
	}
	return &stabilityTextToImageRequest{
		TextPrompts: prompts,
		CfgScale:    stabilityCfgScale,
		Steps:       in.Steps,
		Width:       in.Width,
		Height:      in.Height,
	}
}

func convertToStabilityImageToImage(in ImageToImageInput) *stabilityImageToImageRequest {
	return &stabilityImageToImageRequest{
		TextPrompts:   []textPrompt{{Text: in.Prompt, Weight: 1.0}},
		InitImage:     in.ImageBase64,
		ImageStrength: in.Strength,
		CfgScale:      stabilityCfgScale,
		Steps:         in.Steps,
	}
}
