// Package adapters holds the provider wire schemas: it turns a normalized request into the
// JSON payload a provider family expects and pulls a normalized result back out of the
// provider's response. Nothing here performs I/O.
package adapters

// Type definitions live here so the root package can depend on adapters without a cycle.

// Kind is the provider family a config resolves to.
type Kind string

const (
	KindOpenAI       Kind = "openai"
	KindAnthropic    Kind = "anthropic"
	KindOpenAIVision Kind = "openai-vision"
	KindOpenAIImages Kind = "openai-images"
	KindStability    Kind = "stability"
	KindReplicate    Kind = "replicate"
	KindRunway       Kind = "runway"
	KindGeneric      Kind = "generic"
)

// Operation identifies the shape of a request.
type Operation string

const (
	OpChat         Operation = "chat"
	OpImageToText  Operation = "image_to_text"
	OpTextToImage  Operation = "text_to_image"
	OpImageToImage Operation = "image_to_image"
	OpVideo        Operation = "video"
	OpVideoStatus  Operation = "video_status"
)

// AuthScheme selects how the credential becomes the Authorization header.
type AuthScheme string

const (
	// AuthBearer sends the credential verbatim as a bearer token.
	AuthBearer AuthScheme = "bearer"
	// AuthJWT treats the credential as "access_key,secret_key" and sends a signed HS256 token.
	AuthJWT AuthScheme = "jwt"
)

// Header is a single request header. Order matters: later entries override earlier ones.
type Header struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Target describes where a payload goes and how it is authenticated.
type Target struct {
	Kind        Kind
	Endpoint    string
	Credential  string
	Model       string
	Auth        AuthScheme
	Headers     []Header
	ExtraParams map[string]any
}

// Request is implemented by every input shape Build accepts.
type Request interface {
	Operation() Operation
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatInput is a chat completion request with defaults already applied.
type ChatInput struct {
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// CaptionInput asks a vision model to describe an image.
type CaptionInput struct {
	ImageBase64 string
	Prompt      string
	MaxTokens   int
}

// TextToImageInput is a text-to-image request.
type TextToImageInput struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
}

// ImageToImageInput is an image-to-image request.
type ImageToImageInput struct {
	ImageBase64 string
	Prompt      string
	Strength    float64
	Steps       int
}

// VideoInput is a video generation request. An empty Prompt or ImageBase64 means absent.
type VideoInput struct {
	Prompt      string
	ImageBase64 string
	Duration    int
}

// StatusInput polls a pending job.
type StatusInput struct {
	URL string
}

func (ChatInput) Operation() Operation         { return OpChat }
func (CaptionInput) Operation() Operation      { return OpImageToText }
func (TextToImageInput) Operation() Operation  { return OpTextToImage }
func (ImageToImageInput) Operation() Operation { return OpImageToImage }
func (VideoInput) Operation() Operation        { return OpVideo }
func (StatusInput) Operation() Operation       { return OpVideoStatus }

// Payload is a fully built HTTP request description.
type Payload struct {
	Method  string
	URL     string
	Headers []Header
	Body    []byte
}

// ImageKind tags which field of an image response was used.
type ImageKind int

const (
	ImageKindURL ImageKind = iota + 1
	ImageKindBase64
	// ImageKindRawBody is the last-resort fallback: no known field matched and the whole body
	// was kept. It is not a usable URL.
	ImageKindRawBody
)

// ImageResult is the normalized image extraction.
type ImageResult struct {
	Kind  ImageKind
	Value string
}

// VideoResult is the normalized video extraction.
type VideoResult struct {
	Status    string
	URL       string
	TaskID    string
	StatusURL string
}

// Video status values produced by ParseVideo. Status checks copy the provider's value verbatim.
const (
	VideoPending   = "pending"
	VideoCompleted = "completed"
	VideoFailed    = "failed"
	VideoUnknown   = "unknown"
)

// DataURI wraps base64 JPEG data the way vision and replicate endpoints expect it.
func DataURI(b64 string) string {
	return "data:image/jpeg;base64," + b64
}
