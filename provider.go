package aigen

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultProviderTimeout bounds a whole call when the provider sets none.
const DefaultProviderTimeout = 60 * time.Second

// ProviderSpec is the raw description of a provider, as read from configuration.
type ProviderSpec struct {
	ID          string
	Name        string
	Capability  Capability
	Kind        ProviderKind // optional, resolved from Endpoint and Model when empty
	Endpoint    string
	Credential  string
	Model       string
	Auth        AuthScheme
	Headers     []Header
	ExtraParams map[string]any
	Timeout     time.Duration
	IsDefault   bool
}

// ProviderConfig is a validated provider description. Construct it with NewProviderConfig and
// pass it by value; it owns copies of its headers and params.
type ProviderConfig struct {
	ID          string
	Name        string
	Capability  Capability
	Kind        ProviderKind
	Endpoint    string
	Credential  string
	Model       string
	Auth        AuthScheme
	Headers     []Header
	ExtraParams map[string]any
	Timeout     time.Duration
	IsDefault   bool
}

// NewProviderConfig validates spec and resolves its kind.
func NewProviderConfig(spec ProviderSpec) (ProviderConfig, error) {
	if !spec.Capability.Valid() {
		return ProviderConfig{}, invalidConfig("capability", "unknown capability %q", spec.Capability)
	}
	u, err := url.Parse(spec.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ProviderConfig{}, invalidConfig("endpoint", "endpoint must be an http(s) URL, got %q", spec.Endpoint)
	}
	if spec.Timeout < 0 {
		return ProviderConfig{}, invalidConfig("timeout", "timeout must be positive")
	}

	kind := spec.Kind
	if kind == "" {
		kind = ResolveKind(spec.Capability, spec.Endpoint, spec.Model)
	} else if !slices.Contains(KindsFor(spec.Capability), kind) {
		return ProviderConfig{}, invalidConfig("kind", "kind %q cannot serve %s", kind, spec.Capability)
	}

	auth := spec.Auth
	switch auth {
	case "":
		auth = AuthBearer
	case AuthBearer, AuthJWT:
	default:
		return ProviderConfig{}, invalidConfig("auth", "unknown auth scheme %q", auth)
	}

	timeout := spec.Timeout
	if timeout == 0 {
		timeout = DefaultProviderTimeout
	}

	cfg := ProviderConfig{
		ID:         spec.ID,
		Name:       spec.Name,
		Capability: spec.Capability,
		Kind:       kind,
		Endpoint:   spec.Endpoint,
		Credential: spec.Credential,
		Model:      spec.Model,
		Auth:       auth,
		Timeout:    timeout,
		IsDefault:  spec.IsDefault,
	}
	if len(spec.Headers) > 0 {
		cfg.Headers = slices.Clone(spec.Headers)
	}
	if len(spec.ExtraParams) > 0 {
		cfg.ExtraParams = cloneParams(spec.ExtraParams)
	}
	return cfg, nil
}

// Spec returns the description cfg was built from, with kind and defaults filled in.
func (c ProviderConfig) Spec() ProviderSpec {
	return ProviderSpec{
		ID:          c.ID,
		Name:        c.Name,
		Capability:  c.Capability,
		Kind:        c.Kind,
		Endpoint:    c.Endpoint,
		Credential:  c.Credential,
		Model:       c.Model,
		Auth:        c.Auth,
		Headers:     slices.Clone(c.Headers),
		ExtraParams: cloneParams(c.ExtraParams),
		Timeout:     c.Timeout,
		IsDefault:   c.IsDefault,
	}
}

// cloneParams copies params including nested maps and slices.
func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneParams(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

func invalidConfig(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Err: ErrInvalidConfiguration}
}

// ResolveKind picks the wire-schema family from endpoint and model substrings.
// Matching is case-sensitive.
func ResolveKind(capability Capability, endpoint, model string) ProviderKind {
	switch capability {
	case CapabilityChat:
		if strings.Contains(endpoint, "anthropic") {
			return KindAnthropic
		}
		return KindOpenAI
	case CapabilityImageToText:
		if strings.Contains(model, "vision") || strings.Contains(endpoint, "openai") {
			return KindOpenAIVision
		}
		return KindReplicate
	case CapabilityTextToImage:
		switch {
		case strings.Contains(endpoint, "openai.com") && strings.Contains(endpoint, "images"):
			return KindOpenAIImages
		case strings.Contains(endpoint, "stability"):
			return KindStability
		case strings.Contains(endpoint, "replicate"):
			return KindReplicate
		}
		return KindGeneric
	case CapabilityVideo:
		switch {
		case strings.Contains(endpoint, "runway"):
			return KindRunway
		case strings.Contains(endpoint, "replicate"):
			return KindReplicate
		}
		return KindGeneric
	}
	return KindGeneric
}

// KindsFor lists the kinds that can serve a capability.
func KindsFor(capability Capability) []ProviderKind {
	switch capability {
	case CapabilityChat:
		return []ProviderKind{KindOpenAI, KindAnthropic}
	case CapabilityImageToText:
		return []ProviderKind{KindOpenAIVision, KindReplicate}
	case CapabilityTextToImage:
		return []ProviderKind{KindOpenAIImages, KindStability, KindReplicate, KindGeneric}
	case CapabilityVideo:
		return []ProviderKind{KindRunway, KindReplicate, KindGeneric}
	}
	return nil
}

// SelectDefault returns the first default config for capability, else the first config for it.
func SelectDefault(configs []ProviderConfig, capability Capability) (ProviderConfig, bool) {
	first := -1
	for i, cfg := range configs {
		if cfg.Capability != capability {
			continue
		}
		if cfg.IsDefault {
			return cfg, true
		}
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return ProviderConfig{}, false
	}
	return configs[first], true
}

// MarkDefault returns a copy of configs where id is the only default for its capability.
func MarkDefault(configs []ProviderConfig, id string) ([]ProviderConfig, error) {
	idx := slices.IndexFunc(configs, func(c ProviderConfig) bool { return c.ID == id })
	if idx < 0 {
		return nil, &ValidationError{Field: "id", Message: fmt.Sprintf("no provider with id %q", id), Err: ErrInvalidConfiguration}
	}
	capability := configs[idx].Capability

	out := slices.Clone(configs)
	for i := range out {
		if out[i].Capability == capability {
			out[i].IsDefault = i == idx
		}
	}
	return out, nil
}

// ParseHeadersJSON reads extra headers from a JSON object string, keeping key order.
// An empty string yields no headers.
func ParseHeadersJSON(s string) ([]Header, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !gjson.Valid(s) {
		return nil, &ValidationError{Field: "headers", Message: "headers must be a JSON object", Err: ErrInvalidConfiguration}
	}
	obj := gjson.Parse(s)
	if !obj.IsObject() {
		return nil, &ValidationError{Field: "headers", Message: "headers must be a JSON object", Err: ErrInvalidConfiguration}
	}

	var headers []Header
	obj.ForEach(func(key, value gjson.Result) bool {
		headers = append(headers, Header{Name: key.String(), Value: value.String()})
		return true
	})
	return headers, nil
}

// ParseParamsJSON reads extra body params from a JSON object string.
func ParseParamsJSON(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, ok := gjson.Parse(s).Value().(map[string]any)
	if !gjson.Valid(s) || !ok {
		return nil, &ValidationError{Field: "params", Message: "params must be a JSON object", Err: ErrInvalidConfiguration}
	}
	return v, nil
}
