package aigen

import "github.com/feitianbubu/aigen/adapters"

// Capability is one of the four generation operation families.
type Capability string

const (
	CapabilityChat        Capability = "chat"
	CapabilityImageToText Capability = "image_to_text"
	CapabilityTextToImage Capability = "text_to_image"
	CapabilityVideo       Capability = "video"
)

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityChat, CapabilityImageToText, CapabilityTextToImage, CapabilityVideo:
		return true
	}
	return false
}

// ProviderKind is the wire-schema family a provider config resolves to.
type ProviderKind = adapters.Kind

const (
	KindOpenAI       = adapters.KindOpenAI
	KindAnthropic    = adapters.KindAnthropic
	KindOpenAIVision = adapters.KindOpenAIVision
	KindOpenAIImages = adapters.KindOpenAIImages
	KindStability    = adapters.KindStability
	KindReplicate    = adapters.KindReplicate
	KindRunway       = adapters.KindRunway
	KindGeneric      = adapters.KindGeneric
)

// AuthScheme selects how the credential is sent.
type AuthScheme = adapters.AuthScheme

const (
	AuthBearer = adapters.AuthBearer
	AuthJWT    = adapters.AuthJWT
)

// Header is an extra request header. Headers keep their declaration order.
type Header = adapters.Header

// ChatMessage is one conversation turn.
type ChatMessage = adapters.ChatMessage

// Default request values.
const (
	DefaultTemperature   = 0.7
	DefaultChatMaxTokens = 2000

	DefaultCaptionPrompt    = "Describe this image in detail, including the scene, objects, style and lighting, " +
		"and write an English prompt suitable for AI image generation."
	DefaultCaptionMaxTokens = 1000

	DefaultImageWidth  = 1024
	DefaultImageHeight = 1024
	DefaultImageSteps  = 30
	DefaultStrength    = 0.75

	DefaultVideoDuration = 4
)

// OperationRequest is one of ChatRequest, CaptionRequest, TextToImageRequest,
// ImageToImageRequest or VideoRequest.
type OperationRequest interface {
	// Capability is the provider capability the request needs.
	Capability() Capability
}

// ChatRequest is a chat completion. Zero values take the defaults.
type ChatRequest struct {
	Messages    []ChatMessage
	Temperature *float64
	MaxTokens   int
}

// CaptionRequest asks an image-to-text provider to describe an image.
type CaptionRequest struct {
	Image     ImageSource
	Prompt    string
	MaxTokens int
}

// TextToImageRequest generates an image from a prompt.
type TextToImageRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
}

// ImageToImageRequest transforms a source image. It is served by text_to_image providers.
type ImageToImageRequest struct {
	Image    ImageSource
	Prompt   string
	Strength float64
	Steps    int
}

// VideoRequest generates a video from a prompt, an image, or both.
type VideoRequest struct {
	Input    VideoInput
	Duration int
}

func (ChatRequest) Capability() Capability         { return CapabilityChat }
func (CaptionRequest) Capability() Capability      { return CapabilityImageToText }
func (TextToImageRequest) Capability() Capability  { return CapabilityTextToImage }
func (ImageToImageRequest) Capability() Capability { return CapabilityTextToImage }
func (VideoRequest) Capability() Capability        { return CapabilityVideo }

// ImageSource is either ImageFile or ImageBytes.
type ImageSource interface {
	isImageSource()
}

// ImageFile reads the source image from disk.
type ImageFile struct {
	Path string
}

// ImageBytes carries an already loaded image (jpeg, png or webp).
type ImageBytes struct {
	Data []byte
}

func (ImageFile) isImageSource()  {}
func (ImageBytes) isImageSource() {}

// VideoInput is PromptOnly, ImageOnly or PromptAndImage.
type VideoInput interface {
	isVideoInput()
}

type PromptOnly struct {
	Prompt string
}

type ImageOnly struct {
	Image ImageSource
}

type PromptAndImage struct {
	Prompt string
	Image  ImageSource
}

func (PromptOnly) isVideoInput()     {}
func (ImageOnly) isVideoInput()      {}
func (PromptAndImage) isVideoInput() {}

// GenerationOutcome is one of ChatOutcome, CaptionOutcome, ImageOutcome or VideoOutcome.
type GenerationOutcome interface {
	isOutcome()
}

type ChatOutcome struct {
	Text string
}

type CaptionOutcome struct {
	Text string
}

// ImageOutcome holds exactly one artifact.
type ImageOutcome struct {
	Artifact ImageArtifact
}

// ImageArtifact is ImageURL, ImageBase64 or UnrecognizedBody.
type ImageArtifact interface {
	isImageArtifact()
}

type ImageURL struct {
	URL string
}

type ImageBase64 struct {
	Data string
}

// UnrecognizedBody is returned when an image response matched no known field. Raw is the
// whole response body; it is not a URL and should be reviewed rather than used.
type UnrecognizedBody struct {
	Raw string
}

func (ImageURL) isImageArtifact()         {}
func (ImageBase64) isImageArtifact()      {}
func (UnrecognizedBody) isImageArtifact() {}

// VideoStatus is pending, completed, failed, unknown, or a provider status copied verbatim
// from a status check.
type VideoStatus string

const (
	VideoPending   VideoStatus = adapters.VideoPending
	VideoCompleted VideoStatus = adapters.VideoCompleted
	VideoFailed    VideoStatus = adapters.VideoFailed
	VideoUnknown   VideoStatus = adapters.VideoUnknown
	VideoSucceeded VideoStatus = "succeeded"
)

// VideoOutcome is the state of a video job. StatusURL is where the job can be polled and is
// only set for pending jobs.
type VideoOutcome struct {
	Status    VideoStatus
	VideoURL  string
	TaskID    string
	StatusURL string
}

func (ChatOutcome) isOutcome()    {}
func (CaptionOutcome) isOutcome() {}
func (ImageOutcome) isOutcome()   {}
func (VideoOutcome) isOutcome()   {}

// JobHandle refers to a pending video job.
type JobHandle struct {
	StatusURL string
	Provider  ProviderConfig
	TaskID    string
}

// NewJobHandle returns a handle for a pending outcome that can be polled.
func NewJobHandle(provider ProviderConfig, out VideoOutcome) (*JobHandle, bool) {
	if out.Status != VideoPending || out.StatusURL == "" {
		return nil, false
	}
	return &JobHandle{StatusURL: out.StatusURL, Provider: provider, TaskID: out.TaskID}, true
}
