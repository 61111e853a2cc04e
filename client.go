package aigen

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/feitianbubu/aigen/adapters"
)

const (
	instrumentationName = "github.com/feitianbubu/aigen"
	// maxResponseBytes caps how much of a provider response is read into memory.
	maxResponseBytes = 64 << 20
)

// Client is the main client for generation calls. It is safe for concurrent use.
type Client struct {
	http   *http.Client
	config *ClientConfig
	logger *zap.Logger
	tracer trace.Tracer
}

// ClientConfig holds configuration for the client
type ClientConfig struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Debug          bool

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// HTTPClient replaces the built-in transport and its per-I/O timeouts.
	HTTPClient *http.Client
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		ConnectTimeout: 60 * time.Second,
		ReadTimeout:    120 * time.Second,
		WriteTimeout:   60 * time.Second,
		Debug:          false,
	}
}

// NewClient creates a new generation client
func NewClient(clientConfig ...*ClientConfig) *Client {
	config := DefaultClientConfig()
	if len(clientConfig) > 0 && clientConfig[0] != nil {
		config = clientConfig[0]
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(config)
	}

	return &Client{
		http:   httpClient,
		config: config,
		logger: logger.With(zap.String("component", "aigen_client")),
		tracer: otel.Tracer(instrumentationName),
	}
}

// Chat sends a chat completion to a chat provider.
func (c *Client) Chat(ctx context.Context, cfg ProviderConfig, req ChatRequest) (ChatOutcome, error) {
	if err := checkCapability(cfg, CapabilityChat); err != nil {
		return ChatOutcome{}, err
	}
	in, err := toChatInput(req)
	if err != nil {
		return ChatOutcome{}, err
	}

	var out ChatOutcome
	err = c.call(ctx, cfg, string(adapters.OpChat), in, func(body []byte) error {
		text, err := adapters.ParseChat(cfg.Kind, body)
		out = ChatOutcome{Text: text}
		return err
	})
	if err != nil {
		return ChatOutcome{}, err
	}
	return out, nil
}

// ImageToText asks an image-to-text provider to describe an image.
func (c *Client) ImageToText(ctx context.Context, cfg ProviderConfig, req CaptionRequest) (CaptionOutcome, error) {
	if err := checkCapability(cfg, CapabilityImageToText); err != nil {
		return CaptionOutcome{}, err
	}
	in, err := toCaptionInput(req)
	if err != nil {
		return CaptionOutcome{}, err
	}

	var out CaptionOutcome
	err = c.call(ctx, cfg, string(adapters.OpImageToText), in, func(body []byte) error {
		text, err := adapters.ParseCaption(body)
		out = CaptionOutcome{Text: text}
		return err
	})
	if err != nil {
		return CaptionOutcome{}, err
	}
	return out, nil
}

// TextToImage generates an image from a prompt.
func (c *Client) TextToImage(ctx context.Context, cfg ProviderConfig, req TextToImageRequest) (ImageOutcome, error) {
	if err := checkCapability(cfg, CapabilityTextToImage); err != nil {
		return ImageOutcome{}, err
	}
	in, err := toTextToImageInput(req)
	if err != nil {
		return ImageOutcome{}, err
	}
	return c.image(ctx, cfg, adapters.OpTextToImage, in)
}

// ImageToImage transforms a source image with a text_to_image provider.
func (c *Client) ImageToImage(ctx context.Context, cfg ProviderConfig, req ImageToImageRequest) (ImageOutcome, error) {
	if err := checkCapability(cfg, CapabilityTextToImage); err != nil {
		return ImageOutcome{}, err
	}
	in, err := toImageToImageInput(req)
	if err != nil {
		return ImageOutcome{}, err
	}
	return c.image(ctx, cfg, adapters.OpImageToImage, in)
}

func (c *Client) image(ctx context.Context, cfg ProviderConfig, op adapters.Operation, in adapters.Request) (ImageOutcome, error) {
	var out ImageOutcome
	err := c.call(ctx, cfg, string(op), in, func(body []byte) error {
		res, err := adapters.ParseImage(body)
		out = imageOutcome(res)
		return err
	})
	if err != nil {
		return ImageOutcome{}, err
	}
	if raw, ok := out.Artifact.(UnrecognizedBody); ok {
		c.logger.Warn("image response matched no known field",
			zap.String("provider", cfg.Name),
			zap.String("kind", string(cfg.Kind)),
			zap.Int("body_bytes", len(raw.Raw)))
	}
	return out, nil
}

// GenerateVideo starts a video job. When the provider answers with a pollable task, the
// returned handle is non-nil and can be passed to a Poller.
func (c *Client) GenerateVideo(ctx context.Context, cfg ProviderConfig, req VideoRequest) (VideoOutcome, *JobHandle, error) {
	if err := checkCapability(cfg, CapabilityVideo); err != nil {
		return VideoOutcome{}, nil, err
	}
	in, err := toVideoInput(req)
	if err != nil {
		return VideoOutcome{}, nil, err
	}

	var out VideoOutcome
	err = c.call(ctx, cfg, string(adapters.OpVideo), in, func(body []byte) error {
		res, err := adapters.ParseVideo(cfg.target(), body)
		out = videoOutcome(res)
		return err
	})
	if err != nil {
		return VideoOutcome{}, nil, err
	}

	job, _ := NewJobHandle(cfg, out)
	return out, job, nil
}

// CheckVideoStatus fetches the current state of a video job.
func (c *Client) CheckVideoStatus(ctx context.Context, cfg ProviderConfig, statusURL string) (VideoOutcome, error) {
	if err := checkCapability(cfg, CapabilityVideo); err != nil {
		return VideoOutcome{}, err
	}
	if statusURL == "" {
		return VideoOutcome{}, &ValidationError{Field: "status_url", Message: "status URL cannot be empty", Err: ErrNoStatusURL}
	}

	var out VideoOutcome
	err := c.call(ctx, cfg, string(adapters.OpVideoStatus), adapters.StatusInput{URL: statusURL}, func(body []byte) error {
		res, err := adapters.ParseVideoStatus(body)
		out = videoOutcome(res)
		return err
	})
	if err != nil {
		return VideoOutcome{}, err
	}
	return out, nil
}

// Generate dispatches req to the matching operation. A pending video outcome is returned as
// is; use NewJobHandle to poll it.
func (c *Client) Generate(ctx context.Context, cfg ProviderConfig, req OperationRequest) (GenerationOutcome, error) {
	switch r := req.(type) {
	case ChatRequest:
		return c.Chat(ctx, cfg, r)
	case CaptionRequest:
		return c.ImageToText(ctx, cfg, r)
	case TextToImageRequest:
		return c.TextToImage(ctx, cfg, r)
	case ImageToImageRequest:
		return c.ImageToImage(ctx, cfg, r)
	case VideoRequest:
		out, _, err := c.GenerateVideo(ctx, cfg, r)
		return out, err
	}
	return nil, &ValidationError{Field: "request", Message: "unsupported request type", Err: ErrInvalidRequest}
}

func checkCapability(cfg ProviderConfig, want Capability) error {
	if cfg.Capability != want {
		return &ValidationError{
			Field:   "capability",
			Message: "provider " + cfg.Name + " serves " + string(cfg.Capability) + ", not " + string(want),
			Err:     ErrCapabilityMismatch,
		}
	}
	return nil
}

// call performs one measured round trip and hands the body to parse.
func (c *Client) call(ctx context.Context, cfg ProviderConfig, op string, req adapters.Request, parse func([]byte) error) error {
	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "aigen."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("aigen.provider", cfg.Name),
			attribute.String("aigen.capability", string(cfg.Capability)),
			attribute.String("aigen.kind", string(cfg.Kind)),
			attribute.String("aigen.request_id", requestID),
		))
	defer span.End()

	start := time.Now()
	status, err := c.roundTrip(ctx, cfg, req, parse)
	elapsed := time.Since(start)
	recordRequest(op, cfg.Kind, err, elapsed.Seconds())

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("provider", cfg.Name),
		zap.String("operation", op),
		zap.String("kind", string(cfg.Kind)),
		zap.Int("status", status),
		zap.Duration("duration", elapsed),
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("provider call failed", append(fields, zap.Error(err))...)
		return err
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	if c.config.Debug {
		c.logger.Info("provider call succeeded", fields...)
	} else {
		c.logger.Debug("provider call succeeded", fields...)
	}
	return nil
}

// roundTrip sends the built payload and parses the response. It returns the HTTP status, or
// zero when no response arrived.
func (c *Client) roundTrip(ctx context.Context, cfg ProviderConfig, req adapters.Request, parse func([]byte) error) (int, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := adapters.Build(cfg.target(), req)
	var body io.Reader
	if payload.Body != nil {
		body = bytes.NewReader(payload.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, payload.Method, payload.URL, body)
	if err != nil {
		return 0, &ValidationError{Field: "url", Message: err.Error(), Err: ErrInvalidRequest}
	}
	for _, h := range payload.Headers {
		httpReq.Header.Set(h.Name, h.Value)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, &TransportError{Op: payload.Method, URL: payload.URL, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &TransportError{Op: "read " + payload.Method, URL: payload.URL, Timeout: isTimeout(err), Err: err}
	}
	if err := adapters.CheckStatus(resp.StatusCode, data); err != nil {
		return resp.StatusCode, fromStatusError(err, cfg.Name)
	}
	return resp.StatusCode, parse(data)
}
