package adapters

import (
	"encoding/json"
	"maps"
	"net/http"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Build turns a request into the wire payload for the target's provider family.
// It never fails: an unknown kind falls back to the generic shape.
func Build(t Target, req Request) Payload {
	if in, ok := req.(StatusInput); ok {
		return Payload{
			Method:  http.MethodGet,
			URL:     in.URL,
			Headers: buildHeaders(t, false),
		}
	}

	body := marshal(convert(t, req))
	return Payload{
		Method:  http.MethodPost,
		URL:     t.Endpoint,
		Headers: buildHeaders(t, true),
		Body:    applyExtraParams(body, t.ExtraParams),
	}
}

func convert(t Target, req Request) any {
	switch in := req.(type) {
	case ChatInput:
		if t.Kind == KindAnthropic {
			return convertToAnthropic(t, in)
		}
		return convertToOpenAIChat(t, in)
	case CaptionInput:
		if t.Kind == KindOpenAIVision {
			return convertToVision(t, in)
		}
		return convertToReplicateCaption(t, in)
	case TextToImageInput:
		switch t.Kind {
		case KindOpenAIImages:
			return convertToDalle(t, in)
		case KindStability:
			return convertToStabilityTextToImage(in)
		case KindReplicate:
			return convertToReplicateTextToImage(t, in)
		default:
			return convertToGenericTextToImage(in)
		}
	case ImageToImageInput:
		switch t.Kind {
		case KindStability:
			return convertToStabilityImageToImage(in)
		case KindReplicate:
			return convertToReplicateImageToImage(t, in)
		default:
			return convertToGenericImageToImage(in)
		}
	case VideoInput:
		switch t.Kind {
		case KindRunway:
			return convertToRunway(in)
		case KindReplicate:
			return convertToReplicateVideo(t, in)
		default:
			return convertToGenericVideo(in)
		}
	}
	return struct{}{}
}

func buildHeaders(t Target, withBody bool) []Header {
	headers := make([]Header, 0, len(t.Headers)+2)
	if withBody {
		headers = append(headers, Header{Name: "Content-Type", Value: "application/json"})
	}
	headers = append(headers, Header{Name: "Authorization", Value: authorization(t)})
	return append(headers, t.Headers...)
}

// applyExtraParams sets each configured param on the body unless the builder already set it.
// Keys are gjson/sjson paths, so "input.seed" reaches into nested objects.
func applyExtraParams(body []byte, params map[string]any) []byte {
	if len(params) == 0 {
		return body
	}
	out := body
	for _, path := range slices.Sorted(maps.Keys(params)) {
		if path == "" || gjson.GetBytes(out, path).Exists() {
			continue
		}
		updated, err := sjson.SetBytes(out, path, params[path])
		if err != nil {
			continue
		}
		out = updated
	}
	return out
}

func marshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Wire structs hold only strings, numbers and slices of them.
		return []byte("{}")
	}
	return data
}
