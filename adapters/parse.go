package adapters

import (
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
)

// maxSnippet bounds how much of an error body is kept on a StatusError.
const maxSnippet = 512

// StatusError is a non-2xx response. Body holds the start of the response text, if any.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.Code)
	}
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

// ParseError means the body was not JSON or a selected field was missing or mistyped.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return "parse error: " + e.Reason
	}
	return fmt.Sprintf("parse error at '%s': %s", e.Path, e.Reason)
}

// CheckStatus returns a StatusError for any status outside [200,300).
func CheckStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	snippet := string(body)
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}
	return &StatusError{Code: code, Body: snippet}
}

func parseJSON(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &ParseError{Reason: "response is not valid JSON"}
	}
	return gjson.ParseBytes(body), nil
}

// requireString returns the non-empty string at path or a ParseError.
func requireString(root gjson.Result, path string) (string, error) {
	v := root.Get(path)
	switch {
	case !v.Exists():
		return "", &ParseError{Path: path, Reason: "field is missing"}
	case v.Type != gjson.String:
		return "", &ParseError{Path: path, Reason: "expected a string, got " + v.Type.String()}
	case v.Str == "":
		return "", &ParseError{Path: path, Reason: "field is empty"}
	}
	return v.Str, nil
}

// ParseChat extracts the assistant text. The kind picks the path; other fields are ignored.
func ParseChat(kind Kind, body []byte) (string, error) {
	root, err := parseJSON(body)
	if err != nil {
		return "", err
	}
	if kind == KindAnthropic {
		return requireString(root, "content.0.text")
	}
	return requireString(root, "choices.0.message.content")
}

// ParseCaption extracts a caption from a vision or replicate style response.
func ParseCaption(body []byte) (string, error) {
	root, err := parseJSON(body)
	if err != nil {
		return "", err
	}
	if root.Get("choices").Exists() {
		return requireString(root, "choices.0.message.content")
	}
	if out := root.Get("output"); out.Exists() {
		if out.Type == gjson.String {
			return out.Str, nil
		}
		return out.Raw, nil
	}
	return string(body), nil
}

// ParseImage extracts the generated image. The first recognized field family wins; once a
// family is chosen its field must be present. An empty data array is not a family.
func ParseImage(body []byte) (ImageResult, error) {
	root, err := parseJSON(body)
	if err != nil {
		return ImageResult{}, err
	}

	if data := root.Get("data"); data.IsArray() && data.Get("0").Exists() {
		if v := root.Get("data.0.url"); v.Type == gjson.String && v.Str != "" {
			return ImageResult{Kind: ImageKindURL, Value: v.Str}, nil
		}
		b64, err := requireString(root, "data.0.b64_json")
		if err != nil {
			return ImageResult{}, err
		}
		return ImageResult{Kind: ImageKindBase64, Value: b64}, nil
	}
	if root.Get("artifacts").Exists() {
		b64, err := requireString(root, "artifacts.0.base64")
		if err != nil {
			return ImageResult{}, err
		}
		return ImageResult{Kind: ImageKindBase64, Value: b64}, nil
	}
	if root.Get("urls").Exists() {
		u, err := requireString(root, "urls.0")
		if err != nil {
			return ImageResult{}, err
		}
		return ImageResult{Kind: ImageKindURL, Value: u}, nil
	}
	if out := root.Get("output"); out.Exists() {
		u, ok := outputURL(out)
		if !ok {
			return ImageResult{}, &ParseError{Path: "output", Reason: "no image URL"}
		}
		return ImageResult{Kind: ImageKindURL, Value: u}, nil
	}
	return ImageResult{Kind: ImageKindRawBody, Value: string(body)}, nil
}

// outputURL reads a replicate-style output: a URL string or an array whose first element is one.
// Anything else (null, an object, an empty string or array) carries no URL.
func outputURL(out gjson.Result) (string, bool) {
	switch {
	case out.Type == gjson.String && out.Str != "":
		return out.Str, true
	case out.IsArray():
		first := out.Get("0")
		if first.Type == gjson.String && first.Str != "" {
			return first.Str, true
		}
	}
	return "", false
}

// ParseVideo reads the response to a generation call. A task id means the job is pending; an
// output URL means it finished synchronously.
func ParseVideo(t Target, body []byte) (VideoResult, error) {
	root, err := parseJSON(body)
	if err != nil {
		return VideoResult{}, err
	}

	if id := root.Get("id"); id.Exists() {
		res := VideoResult{Status: VideoPending, TaskID: id.String()}
		if get := root.Get("urls.get"); get.Type == gjson.String && get.Str != "" {
			res.StatusURL = get.Str
		} else if t.Kind == KindRunway {
			res.StatusURL = runwayTaskURL(t.Endpoint, res.TaskID)
		}
		return res, nil
	}

	if u, ok := outputURL(root.Get("output")); ok {
		return VideoResult{Status: VideoCompleted, URL: u}, nil
	}
	return VideoResult{Status: VideoPending}, nil
}

// ParseVideoStatus reads a status-check response. The provider's status is kept verbatim.
func ParseVideoStatus(body []byte) (VideoResult, error) {
	root, err := parseJSON(body)
	if err != nil {
		return VideoResult{}, err
	}

	res := VideoResult{Status: VideoUnknown}
	if s := root.Get("status"); s.Type == gjson.String && s.Str != "" {
		res.Status = s.Str
	}
	if id := root.Get("id"); id.Exists() {
		res.TaskID = id.String()
	}
	res.URL, _ = outputURL(root.Get("output"))
	return res, nil
}

// runwayTaskURL derives the task endpoint on the same host as the generation endpoint.
func runwayTaskURL(endpoint, id string) string {
	if id == "" {
		return ""
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/v1/tasks/" + url.PathEscape(id)
}
