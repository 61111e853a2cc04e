package aigen

// presetSpecs are the ready-made providers offered when configuring a new endpoint.
var presetSpecs = []ProviderSpec{
	{
		Name:       "OpenAI GPT-4",
		Capability: CapabilityChat,
		Endpoint:   "https://api.openai.com/v1/chat/completions",
		Model:      "gpt-4",
	},
	{
		Name:       "Claude 3",
		Capability: CapabilityChat,
		Endpoint:   "https://api.anthropic.com/v1/messages",
		Model:      "claude-3-opus-20240229",
		Headers:    []Header{{Name: "anthropic-version", Value: "2023-06-01"}},
	},
	{
		Name:       "Comfly Chat",
		Capability: CapabilityChat,
		Endpoint:   "https://ai.comfly.chat/v1/chat/completions",
		Model:      "gpt-4",
	},
	{
		Name:       "Replicate BLIP",
		Capability: CapabilityImageToText,
		Endpoint:   "https://api.replicate.com/v1/predictions",
		Model:      "salesforce/blip:2e1dddc8621f72155f24cf2e0adbde548458d3cab9f00c0139eea840d0ac4746",
	},
	{
		Name:       "OpenAI Vision",
		Capability: CapabilityImageToText,
		Endpoint:   "https://api.openai.com/v1/chat/completions",
		Model:      "gpt-4-vision-preview",
	},
	{
		Name:       "DALL-E 3",
		Capability: CapabilityTextToImage,
		Endpoint:   "https://api.openai.com/v1/images/generations",
		Model:      "dall-e-3",
	},
	{
		Name:       "Stability AI",
		Capability: CapabilityTextToImage,
		Endpoint:   "https://api.stability.ai/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image",
		Model:      "stable-diffusion-xl-1024-v1-0",
		Headers:    []Header{{Name: "Accept", Value: "application/json"}},
	},
	{
		Name:       "Banana.dev",
		Capability: CapabilityTextToImage,
		Endpoint:   "https://api.banana.dev/start/your-model-key",
		Model:      "your-model-key",
	},
	{
		Name:       "Runway Gen-2",
		Capability: CapabilityVideo,
		Endpoint:   "https://api.runwayml.com/v1/generations",
		Model:      "gen2",
	},
	{
		Name:       "Pika Labs",
		Capability: CapabilityVideo,
		Endpoint:   "https://api.pika.art/generations",
		Model:      "pika",
	},
	{
		Name:       "Replicate Video",
		Capability: CapabilityVideo,
		Endpoint:   "https://api.replicate.com/v1/predictions",
		Model:      "stability-ai/stable-video-diffusion",
	},
}

// Presets returns the built-in provider templates using credential as their key.
func Presets(credential string) []ProviderConfig {
	out := make([]ProviderConfig, 0, len(presetSpecs))
	for _, spec := range presetSpecs {
		spec.Credential = credential
		cfg, err := NewProviderConfig(spec)
		if err != nil {
			continue
		}
		out = append(out, cfg)
	}
	return out
}
