package adapters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, CheckStatus(200, nil))
	assert.NoError(t, CheckStatus(299, []byte("x")))

	err := CheckStatus(404, []byte(`{"error":"not found"}`))
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.Code)
	assert.Equal(t, `{"error":"not found"}`, se.Body)
}

func TestCheckStatusNon2xxAlwaysFails(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		code := rapid.OneOf(rapid.IntRange(100, 199), rapid.IntRange(300, 599)).Draw(rt, "code")
		body := rapid.SliceOf(rapid.Byte()).Draw(rt, "body")
		err := CheckStatus(code, body)
		var se *StatusError
		if !errors.As(err, &se) || se.Code != code {
			rt.Fatalf("status %d: got %v", code, err)
		}
		if len(se.Body) > maxSnippet {
			rt.Fatalf("snippet too long: %d", len(se.Body))
		}
	})
}

func TestParseChat(t *testing.T) {
	mixed := []byte(`{"choices":[{"message":{"content":"from choices"}}],"content":[{"text":"from content"}]}`)

	text, err := ParseChat(KindAnthropic, mixed)
	require.NoError(t, err)
	assert.Equal(t, "from content", text)

	text, err = ParseChat(KindOpenAI, mixed)
	require.NoError(t, err)
	assert.Equal(t, "from choices", text)

	_, err = ParseChat(KindAnthropic, []byte(`{"choices":[{"message":{"content":"x"}}]}`))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "content.0.text", pe.Path)

	_, err = ParseChat(KindOpenAI, []byte(`{"choices":[{"message":{"content":12}}]}`))
	require.True(t, errors.As(err, &pe))

	_, err = ParseChat(KindOpenAI, []byte(`not json`))
	require.True(t, errors.As(err, &pe))
	assert.Empty(t, pe.Path)
}

func TestParseCaption(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"choices", `{"choices":[{"message":{"content":"a cat"}}]}`, "a cat", false},
		{"choices without content", `{"choices":[]}`, "", true},
		{"output string", `{"output":"a dog"}`, "a dog", false},
		{"output array kept raw", `{"output":["a","b"]}`, `["a","b"]`, false},
		{"neither", `{"caption":"x"}`, `{"caption":"x"}`, false},
		{"invalid json", `<html>`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCaption([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseImage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    ImageResult
		wantErr bool
	}{
		{"dalle url", `{"data":[{"url":"https://img/1.png"}]}`, ImageResult{Kind: ImageKindURL, Value: "https://img/1.png"}, false},
		{"dalle b64", `{"data":[{"b64_json":"QUJD"}]}`, ImageResult{Kind: ImageKindBase64, Value: "QUJD"}, false},
		{"empty data falls through", `{"data":[],"artifacts":[{"base64":"QUJD"}]}`, ImageResult{Kind: ImageKindBase64, Value: "QUJD"}, false},
		{"empty data alone", `{"data":[]}`, ImageResult{Kind: ImageKindRawBody, Value: `{"data":[]}`}, false},
		{"stability", `{"artifacts":[{"base64":"QUJD","seed":1}]}`, ImageResult{Kind: ImageKindBase64, Value: "QUJD"}, false},
		{"stability missing base64", `{"artifacts":[{"seed":1}]}`, ImageResult{}, true},
		{"urls", `{"urls":["https://img/2.png"]}`, ImageResult{Kind: ImageKindURL, Value: "https://img/2.png"}, false},
		{"output string", `{"output":"https://img/3.png"}`, ImageResult{Kind: ImageKindURL, Value: "https://img/3.png"}, false},
		{"output array", `{"output":["https://img/4.png","https://img/5.png"]}`, ImageResult{Kind: ImageKindURL, Value: "https://img/4.png"}, false},
		{"output number", `{"output":5}`, ImageResult{}, true},
		{"output empty array", `{"output":[]}`, ImageResult{}, true},
		{"raw body fallback", `{"result":"ok"}`, ImageResult{Kind: ImageKindRawBody, Value: `{"result":"ok"}`}, false},
		{"invalid json", `oops`, ImageResult{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseImage([]byte(tt.body))
			if tt.wantErr {
				var pe *ParseError
				assert.True(t, errors.As(err, &pe), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVideo(t *testing.T) {
	replicate := Target{Kind: KindReplicate, Endpoint: "https://api.replicate.com/v1/predictions"}
	runway := Target{Kind: KindRunway, Endpoint: "https://api.runwayml.com/v1/generations"}
	generic := Target{Kind: KindGeneric, Endpoint: "https://video.test/gen"}

	tests := []struct {
		name    string
		target  Target
		body    string
		want    VideoResult
		wantErr bool
	}{
		{"replicate pending", replicate, `{"id":"p1","urls":{"get":"https://api.replicate.com/v1/predictions/p1"}}`,
			VideoResult{Status: VideoPending, TaskID: "p1", StatusURL: "https://api.replicate.com/v1/predictions/p1"}, false},
		{"runway pending", runway, `{"id":"t-9"}`,
			VideoResult{Status: VideoPending, TaskID: "t-9", StatusURL: "https://api.runwayml.com/v1/tasks/t-9"}, false},
		{"generic pending without status url", generic, `{"id":7}`,
			VideoResult{Status: VideoPending, TaskID: "7"}, false},
		{"output string", generic, `{"output":"https://x/video.mp4"}`,
			VideoResult{Status: VideoCompleted, URL: "https://x/video.mp4"}, false},
		{"output array", generic, `{"output":["https://x/a.mp4"]}`,
			VideoResult{Status: VideoCompleted, URL: "https://x/a.mp4"}, false},
		{"output empty array", generic, `{"output":[]}`, VideoResult{Status: VideoPending}, false},
		{"nothing", generic, `{}`, VideoResult{Status: VideoPending}, false},
		{"output empty string", generic, `{"output":""}`, VideoResult{Status: VideoPending}, false},
		{"output array of numbers", generic, `{"output":[1]}`, VideoResult{Status: VideoPending}, false},
		{"output object", generic, `{"output":{"video":"https://x/v.mp4"}}`, VideoResult{Status: VideoPending}, false},
		{"invalid json", generic, `{`, VideoResult{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVideo(tt.target, []byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVideoStatus(t *testing.T) {
	got, err := ParseVideoStatus([]byte(`{"id":"p1","status":"succeeded","output":"https://x/v.mp4"}`))
	require.NoError(t, err)
	assert.Equal(t, VideoResult{Status: "succeeded", URL: "https://x/v.mp4", TaskID: "p1"}, got)

	got, err = ParseVideoStatus([]byte(`{"status":"processing","output":null}`))
	require.NoError(t, err)
	assert.Equal(t, "processing", got.Status)
	assert.Empty(t, got.URL)

	got, err = ParseVideoStatus([]byte(`{"output":["https://x/1.mp4"]}`))
	require.NoError(t, err)
	assert.Equal(t, VideoUnknown, got.Status)
	assert.Equal(t, "https://x/1.mp4", got.URL)

	got, err = ParseVideoStatus([]byte(`{"id":"t1","status":"failed","output":{"error":"nsfw"}}`))
	require.NoError(t, err)
	assert.Equal(t, VideoResult{Status: "failed", TaskID: "t1"}, got)

	got, err = ParseVideoStatus([]byte(`{"status":"processing","output":[42]}`))
	require.NoError(t, err)
	assert.Equal(t, "processing", got.Status)
	assert.Empty(t, got.URL)

	_, err = ParseVideoStatus([]byte(`not json`))
	assert.Error(t, err)
}
