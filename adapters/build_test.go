package adapters

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"pgregory.net/rapid"
)

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func TestBuildShapes(t *testing.T) {
	chat := ChatInput{
		Messages:    []ChatMessage{{Role: "user", Content: "hi"}},
		Temperature: 0.7,
		MaxTokens:   2000,
	}
	caption := CaptionInput{ImageBase64: "QUJD", Prompt: "describe", MaxTokens: 1000}
	t2i := TextToImageInput{Prompt: "cat", NegativePrompt: "dog", Width: 1024, Height: 768, Steps: 30}
	i2i := ImageToImageInput{ImageBase64: "QUJD", Prompt: "cat", Strength: 0.75, Steps: 30}

	tests := []struct {
		name  string
		kind  Kind
		req   Request
		keys  []string
		input []string
	}{
		{"openai chat", KindOpenAI, chat, []string{"max_tokens", "messages", "model", "temperature"}, nil},
		{"anthropic chat", KindAnthropic, chat, []string{"max_tokens", "messages", "model"}, nil},
		{"vision caption", KindOpenAIVision, caption, []string{"max_tokens", "messages", "model"}, nil},
		{"replicate caption", KindReplicate, caption, []string{"input", "version"}, []string{"image"}},
		{"dalle", KindOpenAIImages, t2i, []string{"model", "n", "prompt", "response_format", "size"}, nil},
		{"stability t2i", KindStability, t2i, []string{"cfg_scale", "height", "steps", "text_prompts", "width"}, nil},
		{"replicate t2i", KindReplicate, t2i, []string{"input", "version"},
			[]string{"height", "negative_prompt", "num_inference_steps", "prompt", "width"}},
		{"generic t2i", KindGeneric, t2i, []string{"height", "negative_prompt", "prompt", "steps", "width"}, nil},
		{"stability i2i", KindStability, i2i, []string{"cfg_scale", "image_strength", "init_image", "steps", "text_prompts"}, nil},
		{"replicate i2i", KindReplicate, i2i, []string{"input", "version"},
			[]string{"image", "num_inference_steps", "prompt", "strength"}},
		{"generic i2i", KindGeneric, i2i, []string{"init_image", "prompt", "steps", "strength"}, nil},
		{"dalle kind i2i falls back to generic", KindOpenAIImages, i2i, []string{"init_image", "prompt", "steps", "strength"}, nil},
		{"runway prompt only", KindRunway, VideoInput{Prompt: "waves", Duration: 4}, []string{"duration", "prompt"}, nil},
		{"runway image only", KindRunway, VideoInput{ImageBase64: "QUJD", Duration: 4}, []string{"duration", "image_prompt", "prompt"}, nil},
		{"replicate video", KindReplicate, VideoInput{Prompt: "waves", Duration: 4}, []string{"input", "version"},
			[]string{"fps", "num_frames", "prompt"}},
		{"generic video", KindGeneric, VideoInput{Prompt: "waves", ImageBase64: "QUJD", Duration: 4}, []string{"duration", "image", "prompt"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Build(Target{Kind: tt.kind, Endpoint: "https://api.test/v1", Model: "m"}, tt.req)
			assert.Equal(t, "POST", p.Method)
			assert.Equal(t, "https://api.test/v1", p.URL)

			body := decode(t, p.Body)
			assert.Equal(t, tt.keys, keysOf(body))
			if tt.input != nil {
				input, ok := body["input"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, tt.input, keysOf(input))
				assert.Equal(t, "m", body["version"])
			}
		})
	}
}

func TestBuildStabilityTextToImage(t *testing.T) {
	in := TextToImageInput{Prompt: "cat", Width: 512, Height: 512, Steps: 30}
	p := Build(Target{Kind: KindStability}, in)

	body := gjson.ParseBytes(p.Body)
	assert.Equal(t, int64(7), body.Get("cfg_scale").Int())
	assert.Equal(t, int64(30), body.Get("steps").Int())
	require.Len(t, body.Get("text_prompts").Array(), 1)
	assert.Equal(t, "cat", body.Get("text_prompts.0.text").String())
	assert.Equal(t, 1.0, body.Get("text_prompts.0.weight").Float())

	in.NegativePrompt = "blurry"
	body = gjson.ParseBytes(Build(Target{Kind: KindStability}, in).Body)
	require.Len(t, body.Get("text_prompts").Array(), 2)
	assert.Equal(t, "blurry", body.Get("text_prompts.1.text").String())
	assert.Equal(t, -1.0, body.Get("text_prompts.1.weight").Float())
}

func TestBuildImagePayloads(t *testing.T) {
	vision := gjson.ParseBytes(Build(Target{Kind: KindOpenAIVision, Model: "gpt-4-vision"},
		CaptionInput{ImageBase64: "QUJD", Prompt: "describe", MaxTokens: 1000}).Body)
	assert.Equal(t, "user", vision.Get("messages.0.role").String())
	assert.Equal(t, "text", vision.Get("messages.0.content.0.type").String())
	assert.Equal(t, "describe", vision.Get("messages.0.content.0.text").String())
	assert.Equal(t, "image_url", vision.Get("messages.0.content.1.type").String())
	assert.Equal(t, "data:image/jpeg;base64,QUJD", vision.Get("messages.0.content.1.image_url.url").String())

	dalle := gjson.ParseBytes(Build(Target{Kind: KindOpenAIImages, Model: "dall-e-3"},
		TextToImageInput{Prompt: "cat", Width: 1024, Height: 768, Steps: 30}).Body)
	assert.Equal(t, "1024x768", dalle.Get("size").String())
	assert.Equal(t, int64(1), dalle.Get("n").Int())
	assert.Equal(t, "url", dalle.Get("response_format").String())

	stab := gjson.ParseBytes(Build(Target{Kind: KindStability},
		ImageToImageInput{ImageBase64: "QUJD", Prompt: "cat", Strength: 0.75, Steps: 30}).Body)
	assert.Equal(t, "QUJD", stab.Get("init_image").String())
	assert.Equal(t, 0.75, stab.Get("image_strength").Float())

	rep := gjson.ParseBytes(Build(Target{Kind: KindReplicate},
		ImageToImageInput{ImageBase64: "QUJD", Prompt: "cat", Strength: 0.5, Steps: 20}).Body)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", rep.Get("input.image").String())
}

func TestBuildRunwayEmptyPrompt(t *testing.T) {
	body := decode(t, Build(Target{Kind: KindRunway}, VideoInput{ImageBase64: "QUJD", Duration: 4}).Body)
	assert.Equal(t, "", body["prompt"])
	assert.Equal(t, "QUJD", body["image_prompt"])
	assert.Equal(t, float64(4), body["duration"])
}

func TestReplicateVideoFrames(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		duration := rapid.IntRange(1, 60).Draw(rt, "duration")
		prompt := rapid.String().Draw(rt, "prompt")

		p := Build(Target{Kind: KindReplicate, Model: "v1"}, VideoInput{Prompt: prompt, Duration: duration})
		body := gjson.ParseBytes(p.Body)
		if body.Get("input.fps").Int() != 24 {
			rt.Fatalf("fps = %d", body.Get("input.fps").Int())
		}
		if body.Get("input.num_frames").Int() != int64(duration*24) {
			rt.Fatalf("num_frames = %d for duration %d", body.Get("input.num_frames").Int(), duration)
		}
	})
}

func TestBuildAlwaysProducesJSON(t *testing.T) {
	kinds := []Kind{KindOpenAI, KindAnthropic, KindOpenAIVision, KindOpenAIImages,
		KindStability, KindReplicate, KindRunway, KindGeneric, Kind("unknown")}

	rapid.Check(t, func(rt *rapid.T) {
		kind := rapid.SampledFrom(kinds).Draw(rt, "kind")
		prompt := rapid.String().Draw(rt, "prompt")
		req := rapid.SampledFrom([]Request{
			ChatInput{Messages: []ChatMessage{{Role: "user", Content: prompt}}},
			CaptionInput{Prompt: prompt},
			TextToImageInput{Prompt: prompt},
			ImageToImageInput{Prompt: prompt},
			VideoInput{Prompt: prompt},
		}).Draw(rt, "request")

		p := Build(Target{Kind: kind}, req)
		if p.Method != "POST" {
			rt.Fatalf("method = %s", p.Method)
		}
		if !gjson.ValidBytes(p.Body) {
			rt.Fatalf("invalid body %q", p.Body)
		}
	})
}

func TestBuildHeaders(t *testing.T) {
	target := Target{
		Kind:       KindOpenAI,
		Credential: "sk-test",
		Headers: []Header{
			{Name: "anthropic-version", Value: "2023-06-01"},
			{Name: "X-Trace", Value: "1"},
		},
	}
	p := Build(target, ChatInput{})
	assert.Equal(t, []Header{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Authorization", Value: "Bearer sk-test"},
		{Name: "anthropic-version", Value: "2023-06-01"},
		{Name: "X-Trace", Value: "1"},
	}, p.Headers)

	target.Headers = []Header{{Name: "Authorization", Value: "Token abc"}}
	p = Build(target, ChatInput{})
	assert.Equal(t, Header{Name: "Authorization", Value: "Token abc"}, p.Headers[len(p.Headers)-1])
}

func TestBuildStatusCheck(t *testing.T) {
	target := Target{
		Kind:       KindReplicate,
		Endpoint:   "https://api.replicate.com/v1/predictions",
		Credential: "r8",
		Headers:    []Header{{Name: "X-Extra", Value: "y"}},
	}
	p := Build(target, StatusInput{URL: "https://api.replicate.com/v1/predictions/abc"})
	assert.Equal(t, "GET", p.Method)
	assert.Equal(t, "https://api.replicate.com/v1/predictions/abc", p.URL)
	assert.Nil(t, p.Body)
	assert.Equal(t, []Header{
		{Name: "Authorization", Value: "Bearer r8"},
		{Name: "X-Extra", Value: "y"},
	}, p.Headers)
}

func TestBuildExtraParams(t *testing.T) {
	target := Target{
		Kind:  KindReplicate,
		Model: "v1",
		ExtraParams: map[string]any{
			"input.seed":   42,
			"input.prompt": "ignored",
			"webhook":      "https://hook.test",
		},
	}
	body := gjson.ParseBytes(Build(target, TextToImageInput{Prompt: "cat"}).Body)
	assert.Equal(t, int64(42), body.Get("input.seed").Int())
	assert.Equal(t, "cat", body.Get("input.prompt").String())
	assert.Equal(t, "https://hook.test", body.Get("webhook").String())
}

func TestJWTAuth(t *testing.T) {
	target := Target{Kind: KindGeneric, Credential: "ak-1, sk-1", Auth: AuthJWT}
	p := Build(target, VideoInput{Prompt: "x", Duration: 4})

	auth := p.Headers[1]
	require.Equal(t, "Authorization", auth.Name)
	require.Contains(t, auth.Value, "Bearer ")
	raw := auth.Value[len("Bearer "):]

	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("sk-1"), nil })
	require.NoError(t, err)
	assert.True(t, token.Valid)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "ak-1", claims["iss"])
	assert.Equal(t, "JWT", token.Header["typ"])

	target.Credential = "no-comma"
	p = Build(target, VideoInput{Prompt: "x", Duration: 4})
	assert.Equal(t, "Bearer no-comma", p.Headers[1].Value)
}

func TestSignJWTExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	raw, err := SignJWT("ak,sk", now)
	require.NoError(t, err)

	parser := jwt.Parser{SkipClaimsValidation: true}
	claims := jwt.MapClaims{}
	_, err = parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return []byte("sk"), nil })
	require.NoError(t, err)
	assert.Equal(t, float64(now.Unix()+1800), claims["exp"])
	assert.Equal(t, float64(now.Unix()-5), claims["nbf"])

	_, err = SignJWT("ak,", now)
	assert.Error(t, err)
}
