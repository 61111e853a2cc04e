package aigen

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResolveKind(t *testing.T) {
	tests := []struct {
		capability Capability
		endpoint   string
		model      string
		want       ProviderKind
	}{
		{CapabilityChat, "https://api.anthropic.com/v1/messages", "claude", KindAnthropic},
		{CapabilityChat, "https://api.openai.com/v1/chat/completions", "gpt-4", KindOpenAI},
		{CapabilityChat, "https://ai.comfly.chat/v1/chat/completions", "gpt-4", KindOpenAI},
		{CapabilityChat, "https://api.Anthropic.com/v1/messages", "claude", KindOpenAI},
		{CapabilityImageToText, "https://gateway.test/v1", "llava-vision", KindOpenAIVision},
		{CapabilityImageToText, "https://api.openai.com/v1/chat/completions", "gpt-4o", KindOpenAIVision},
		{CapabilityImageToText, "https://api.replicate.com/v1/predictions", "blip", KindReplicate},
		{CapabilityTextToImage, "https://api.openai.com/v1/images/generations", "dall-e-3", KindOpenAIImages},
		{CapabilityTextToImage, "https://api.openai.com/v1/chat/completions", "dall-e-3", KindGeneric},
		{CapabilityTextToImage, "https://api.stability.ai/v1/generation", "sdxl", KindStability},
		{CapabilityTextToImage, "https://api.replicate.com/v1/predictions", "sdxl", KindReplicate},
		{CapabilityTextToImage, "https://api.banana.dev/start/x", "x", KindGeneric},
		{CapabilityVideo, "https://api.runwayml.com/v1/generations", "gen2", KindRunway},
		{CapabilityVideo, "https://api.replicate.com/v1/predictions", "svd", KindReplicate},
		{CapabilityVideo, "https://api.pika.art/generations", "pika", KindGeneric},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.capability, tt.endpoint), func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveKind(tt.capability, tt.endpoint, tt.model))
		})
	}
}

func TestNewProviderConfig(t *testing.T) {
	headers := []Header{{Name: "X-A", Value: "1"}}
	cfg, err := NewProviderConfig(ProviderSpec{
		Name:       "openai",
		Capability: CapabilityChat,
		Endpoint:   "https://api.openai.com/v1/chat/completions",
		Headers:    headers,
	})
	require.NoError(t, err)
	assert.Equal(t, KindOpenAI, cfg.Kind)
	assert.Equal(t, AuthBearer, cfg.Auth)
	assert.Equal(t, DefaultProviderTimeout, cfg.Timeout)

	headers[0].Value = "changed"
	assert.Equal(t, "1", cfg.Headers[0].Value)
}

func TestNewProviderConfigCopiesNestedParams(t *testing.T) {
	params := map[string]any{
		"input": map[string]any{"seed": 7},
		"tags":  []any{"a", map[string]any{"k": "v"}},
	}
	cfg, err := NewProviderConfig(ProviderSpec{
		Capability:  CapabilityVideo,
		Endpoint:    "https://api.replicate.com/v1/predictions",
		ExtraParams: params,
	})
	require.NoError(t, err)

	params["input"].(map[string]any)["seed"] = 8
	params["tags"].([]any)[1].(map[string]any)["k"] = "changed"
	assert.Equal(t, 7, cfg.ExtraParams["input"].(map[string]any)["seed"])
	assert.Equal(t, "v", cfg.ExtraParams["tags"].([]any)[1].(map[string]any)["k"])

	spec := cfg.Spec()
	spec.ExtraParams["input"].(map[string]any)["seed"] = 9
	assert.Equal(t, 7, cfg.ExtraParams["input"].(map[string]any)["seed"])
}

func TestNewProviderConfigExplicitKind(t *testing.T) {
	cfg, err := NewProviderConfig(ProviderSpec{
		Capability: CapabilityChat,
		Kind:       KindAnthropic,
		Endpoint:   "https://proxy.test/v1/messages",
		Timeout:    30 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, KindAnthropic, cfg.Kind)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestNewProviderConfigInvalid(t *testing.T) {
	tests := map[string]ProviderSpec{
		"unknown capability": {Capability: "audio", Endpoint: "https://x.test"},
		"missing endpoint":   {Capability: CapabilityChat},
		"relative endpoint":  {Capability: CapabilityChat, Endpoint: "/v1/chat"},
		"kind for other cap": {Capability: CapabilityChat, Kind: KindRunway, Endpoint: "https://x.test"},
		"negative timeout":   {Capability: CapabilityChat, Endpoint: "https://x.test", Timeout: -time.Second},
		"unknown auth":       {Capability: CapabilityChat, Endpoint: "https://x.test", Auth: "basic"},
	}
	for name, spec := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewProviderConfig(spec)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func configsFixture() []ProviderConfig {
	return []ProviderConfig{
		{ID: "a", Capability: CapabilityChat},
		{ID: "b", Capability: CapabilityVideo},
		{ID: "c", Capability: CapabilityChat, IsDefault: true},
		{ID: "d", Capability: CapabilityVideo},
	}
}

func TestSelectDefault(t *testing.T) {
	cfg, ok := SelectDefault(configsFixture(), CapabilityChat)
	require.True(t, ok)
	assert.Equal(t, "c", cfg.ID)

	cfg, ok = SelectDefault(configsFixture(), CapabilityVideo)
	require.True(t, ok)
	assert.Equal(t, "b", cfg.ID)

	_, ok = SelectDefault(configsFixture(), CapabilityTextToImage)
	assert.False(t, ok)
}

func TestMarkDefault(t *testing.T) {
	in := configsFixture()
	out, err := MarkDefault(in, "a")
	require.NoError(t, err)

	assert.True(t, out[0].IsDefault)
	assert.False(t, out[2].IsDefault)
	assert.True(t, in[2].IsDefault, "input must not be modified")

	_, err = MarkDefault(in, "zzz")
	assert.Error(t, err)
}

func TestMarkDefaultLeavesOneDefault(t *testing.T) {
	caps := []Capability{CapabilityChat, CapabilityImageToText, CapabilityTextToImage, CapabilityVideo}
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		configs := make([]ProviderConfig, n)
		for i := range configs {
			configs[i] = ProviderConfig{
				ID:         fmt.Sprintf("id-%d", i),
				Capability: rapid.SampledFrom(caps).Draw(rt, "capability"),
				IsDefault:  rapid.Bool().Draw(rt, "default"),
			}
		}
		pick := rapid.IntRange(0, n-1).Draw(rt, "pick")

		out, err := MarkDefault(configs, configs[pick].ID)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		defaults := 0
		for i, c := range out {
			if c.Capability == configs[pick].Capability && c.IsDefault {
				defaults++
			}
			if c.Capability != configs[pick].Capability && c.IsDefault != configs[i].IsDefault {
				rt.Fatalf("config %s of another capability changed", c.ID)
			}
		}
		if defaults != 1 {
			rt.Fatalf("got %d defaults", defaults)
		}
		got, _ := SelectDefault(out, configs[pick].Capability)
		if got.ID != configs[pick].ID {
			rt.Fatalf("SelectDefault = %s, want %s", got.ID, configs[pick].ID)
		}
	})
}

func TestParseHeadersJSON(t *testing.T) {
	headers, err := ParseHeadersJSON(`{"Content-Type": "application/json", "anthropic-version": "2023-06-01", "X-Z": "z"}`)
	require.NoError(t, err)
	assert.Equal(t, []Header{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "anthropic-version", Value: "2023-06-01"},
		{Name: "X-Z", Value: "z"},
	}, headers)

	headers, err = ParseHeadersJSON("  ")
	require.NoError(t, err)
	assert.Nil(t, headers)

	_, err = ParseHeadersJSON(`["a"]`)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, err = ParseHeadersJSON(`{bad`)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestParseParamsJSON(t *testing.T) {
	params, err := ParseParamsJSON(`{"seed": 42, "input.guidance": 7.5}`)
	require.NoError(t, err)
	assert.Equal(t, float64(42), params["seed"])
	assert.Equal(t, 7.5, params["input.guidance"])

	_, err = ParseParamsJSON(`42`)
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	presets := Presets("key")
	require.Len(t, presets, 11)

	kinds := map[string]ProviderKind{}
	for _, p := range presets {
		assert.Equal(t, "key", p.Credential)
		kinds[p.Name] = p.Kind
	}
	assert.Equal(t, KindAnthropic, kinds["Claude 3"])
	assert.Equal(t, KindOpenAIVision, kinds["OpenAI Vision"])
	assert.Equal(t, KindReplicate, kinds["Replicate BLIP"])
	assert.Equal(t, KindOpenAIImages, kinds["DALL-E 3"])
	assert.Equal(t, KindStability, kinds["Stability AI"])
	assert.Equal(t, KindRunway, kinds["Runway Gen-2"])
	assert.Equal(t, KindGeneric, kinds["Pika Labs"])
}
