package adapters

// Generic shapes are the fallback whenever no provider family matched.

type genericTextToImageRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
}

type genericImageToImageRequest struct {
	Prompt    string  `json:"prompt"`
	InitImage string  `json:"init_image"`
	Strength  float64 `json:"strength"`
	Steps     int     `json:"steps"`
}

type genericVideoRequest struct {
	Prompt   string `json:"prompt"`
	Image    string `json:"image,omitempty"`
	Duration int    `json:"duration"`
}

func convertToGenericTextToImage(in TextToImageInput) *genericTextToImageRequest {
	return &genericTextToImageRequest{
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Width:          in.Width,
		Height:         in.Height,
		Steps:          in.Steps,
	}
}

func convertToGenericImageToImage(in ImageToImageInput) *genericImageToImageRequest {
	return &genericImageToImageRequest{
		Prompt:    in.Prompt,
		InitImage: in.ImageBase64,
		Strength:  in.Strength,
		Steps:     in.Steps,
	}
}

func convertToGenericVideo(in VideoInput) *genericVideoRequest {
	return &genericVideoRequest{
		Prompt:   in.Prompt,
		Image:    in.ImageBase64,
		Duration: in.Duration,
	}
}
