package aigen

import (
	"github.com/feitianbubu/aigen/adapters"
	"github.com/feitianbubu/aigen/internal/imageutil"
)

// target converts a provider config into the adapters view of it.
func (c ProviderConfig) target() adapters.Target {
	return adapters.Target{
		Kind:        c.Kind,
		Endpoint:    c.Endpoint,
		Credential:  c.Credential,
		Model:       c.Model,
		Auth:        c.Auth,
		Headers:     c.Headers,
		ExtraParams: c.ExtraParams,
	}
}

func toChatInput(req ChatRequest) (adapters.ChatInput, error) {
	if len(req.Messages) == 0 {
		return adapters.ChatInput{}, &ValidationError{Field: "messages", Message: "at least one message is required", Err: ErrInvalidRequest}
	}
	temperature := DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens, err := positiveOr("max_tokens", req.MaxTokens, DefaultChatMaxTokens)
	if err != nil {
		return adapters.ChatInput{}, err
	}
	return adapters.ChatInput{Messages: req.Messages, Temperature: temperature, MaxTokens: maxTokens}, nil
}

func toCaptionInput(req CaptionRequest) (adapters.CaptionInput, error) {
	image, err := encodeImage(req.Image)
	if err != nil {
		return adapters.CaptionInput{}, err
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = DefaultCaptionPrompt
	}
	maxTokens, err := positiveOr("max_tokens", req.MaxTokens, DefaultCaptionMaxTokens)
	if err != nil {
		return adapters.CaptionInput{}, err
	}
	return adapters.CaptionInput{ImageBase64: image, Prompt: prompt, MaxTokens: maxTokens}, nil
}

func toTextToImageInput(req TextToImageRequest) (adapters.TextToImageInput, error) {
	if req.Prompt == "" {
		return adapters.TextToImageInput{}, &ValidationError{Field: "prompt", Message: "prompt cannot be empty", Err: ErrInvalidRequest}
	}
	width, err := positiveOr("width", req.Width, DefaultImageWidth)
	if err != nil {
		return adapters.TextToImageInput{}, err
	}
	height, err := positiveOr("height", req.Height, DefaultImageHeight)
	if err != nil {
		return adapters.TextToImageInput{}, err
	}
	steps, err := positiveOr("steps", req.Steps, DefaultImageSteps)
	if err != nil {
		return adapters.TextToImageInput{}, err
	}
	return adapters.TextToImageInput{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          width,
		Height:         height,
		Steps:          steps,
	}, nil
}

func toImageToImageInput(req ImageToImageRequest) (adapters.ImageToImageInput, error) {
	if req.Prompt == "" {
		return adapters.ImageToImageInput{}, &ValidationError{Field: "prompt", Message: "prompt cannot be empty", Err: ErrInvalidRequest}
	}
	strength := req.Strength
	switch {
	case strength == 0:
		strength = DefaultStrength
	case strength < 0 || strength > 1:
		return adapters.ImageToImageInput{}, &ValidationError{Field: "strength", Message: "strength must be within (0, 1]", Err: ErrInvalidRequest}
	}
	steps, err := positiveOr("steps", req.Steps, DefaultImageSteps)
	if err != nil {
		return adapters.ImageToImageInput{}, err
	}
	image, err := encodeImage(req.Image)
	if err != nil {
		return adapters.ImageToImageInput{}, err
	}
	return adapters.ImageToImageInput{ImageBase64: image, Prompt: req.Prompt, Strength: strength, Steps: steps}, nil
}

func toVideoInput(req VideoRequest) (adapters.VideoInput, error) {
	duration, err := positiveOr("duration", req.Duration, DefaultVideoDuration)
	if err != nil {
		return adapters.VideoInput{}, err
	}
	in := adapters.VideoInput{Duration: duration}

	var (
		prompt string
		image  ImageSource
	)
	switch v := req.Input.(type) {
	case PromptOnly:
		prompt = v.Prompt
	case ImageOnly:
		image = v.Image
	case PromptAndImage:
		prompt, image = v.Prompt, v.Image
	default:
		return adapters.VideoInput{}, &ValidationError{Field: "input", Message: "a prompt, an image, or both are required", Err: ErrInvalidRequest}
	}

	if _, imageOnly := req.Input.(ImageOnly); !imageOnly && prompt == "" {
		return adapters.VideoInput{}, &ValidationError{Field: "prompt", Message: "prompt cannot be empty", Err: ErrInvalidRequest}
	}
	in.Prompt = prompt
	if _, promptOnly := req.Input.(PromptOnly); !promptOnly {
		if in.ImageBase64, err = encodeImage(image); err != nil {
			return adapters.VideoInput{}, err
		}
	}
	return in, nil
}

// encodeImage loads a source image and re-encodes it as base64 JPEG for upload.
func encodeImage(src ImageSource) (string, error) {
	var data []byte
	switch s := src.(type) {
	case ImageFile:
		b, err := imageutil.ReadFile(s.Path)
		if err != nil {
			return "", &ValidationError{Field: "image", Message: err.Error(), Err: err}
		}
		data = b
	case ImageBytes:
		data = s.Data
	}
	if len(data) == 0 {
		return "", &ValidationError{Field: "image", Message: "an image is required", Err: ErrInvalidRequest}
	}

	b64, err := imageutil.EncodeForUpload(data)
	if err != nil {
		return "", &ValidationError{Field: "image", Message: err.Error(), Err: err}
	}
	return b64, nil
}

func positiveOr(field string, v, def int) (int, error) {
	switch {
	case v == 0:
		return def, nil
	case v < 0:
		return 0, &ValidationError{Field: field, Message: field + " must be positive", Err: ErrInvalidRequest}
	}
	return v, nil
}

func imageOutcome(res adapters.ImageResult) ImageOutcome {
	switch res.Kind {
	case adapters.ImageKindURL:
		return ImageOutcome{Artifact: ImageURL{URL: res.Value}}
	case adapters.ImageKindBase64:
		return ImageOutcome{Artifact: ImageBase64{Data: res.Value}}
	}
	return ImageOutcome{Artifact: UnrecognizedBody{Raw: res.Value}}
}

func videoOutcome(res adapters.VideoResult) VideoOutcome {
	return VideoOutcome{
		Status:    VideoStatus(res.Status),
		VideoURL:  res.URL,
		TaskID:    res.TaskID,
		StatusURL: res.StatusURL,
	}
}
