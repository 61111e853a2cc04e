package aigen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/feitianbubu/aigen/internal/imageutil"
)

// MediaKind selects the file name pattern of a download.
type MediaKind int

const (
	MediaImage MediaKind = iota
	MediaVideo
)

func (m MediaKind) String() string {
	if m == MediaVideo {
		return "video"
	}
	return "image"
}

func (m MediaKind) pattern() (prefix, ext string) {
	if m == MediaVideo {
		return "AI_VIDEO_", ".mp4"
	}
	return "AI_GEN_", ".jpg"
}

// maxNameAttempts bounds how many later timestamps are tried when a name is taken.
const maxNameAttempts = 1000

// FetcherConfig holds configuration for the fetcher
type FetcherConfig struct {
	// Retries is how many times a transport error, 429 or 5xx is retried.
	Retries    int
	RetryDelay time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// DefaultFetcherConfig returns default fetcher configuration
func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		Retries:    2,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Fetcher downloads finished artifacts into timestamped files. It never overwrites a file.
// Each media host gets its own circuit breaker.
type Fetcher struct {
	http     *http.Client
	executor failsafe.Executor[string]
	settings gobreaker.Settings
	breakers sync.Map // host -> *gobreaker.CircuitBreaker
	logger   *zap.Logger
	now      func() time.Time
}

// NewFetcher creates a fetcher.
func NewFetcher(config ...*FetcherConfig) *Fetcher {
	cfg := DefaultFetcherConfig()
	if len(config) > 0 && config[0] != nil {
		cfg = config[0]
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(DefaultClientConfig())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "aigen_fetcher"))

	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	rp := retrypolicy.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool { return IsRetryableError(err) }).
		WithMaxRetries(max(cfg.Retries, 0)).
		WithBackoff(delay, 10*delay).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[string]) {
			logger.Debug("retrying download", zap.Int("attempt", e.Attempts()), zap.Error(e.LastError()))
		}).
		Build()

	settings := gobreaker.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Only upstream trouble trips the breaker; a 404 is the caller's problem.
		IsSuccessful: func(err error) bool { return err == nil || !IsRetryableError(err) },
	}

	return &Fetcher{
		http:     httpClient,
		executor: failsafe.With[string](rp),
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Fetch downloads src into dir as AI_GEN_<ms>.jpg or AI_VIDEO_<ms>.mp4 and returns the path.
// Non-2xx responses create no file; a failed stream removes the partial file. While a host's
// breaker is open its downloads fail at once with a TransportError.
func (f *Fetcher) Fetch(ctx context.Context, src string, media MediaKind, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create download dir %s", dir)
	}

	result, err := f.breakerFor(src).Execute(func() (any, error) {
		return f.executor.WithContext(ctx).Get(func() (string, error) {
			return f.fetchOnce(ctx, src, media, dir)
		})
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &TransportError{Op: http.MethodGet, URL: src, Err: err}
	}
	if err != nil {
		fetchesTotal.WithLabelValues(media.String(), resultFailure).Inc()
		f.logger.Warn("download failed", zap.String("url", src), zap.Error(err))
		return "", err
	}
	path := result.(string)
	fetchesTotal.WithLabelValues(media.String(), resultSuccess).Inc()
	f.logger.Info("download saved", zap.String("path", path))
	return path, nil
}

func (f *Fetcher) breakerFor(src string) *gobreaker.CircuitBreaker {
	host := src
	if u, err := url.Parse(src); err == nil && u.Host != "" {
		host = u.Host
	}
	if cb, ok := f.breakers.Load(host); ok {
		return cb.(*gobreaker.CircuitBreaker)
	}
	settings := f.settings
	settings.Name = "aigen-fetch " + host
	cb, _ := f.breakers.LoadOrStore(host, gobreaker.NewCircuitBreaker(settings))
	return cb.(*gobreaker.CircuitBreaker)
}

func (f *Fetcher) fetchOnce(ctx context.Context, src string, media MediaKind, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", &ValidationError{Field: "url", Message: err.Error(), Err: ErrInvalidRequest}
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return "", &TransportError{Op: http.MethodGet, URL: src, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &APIError{Code: resp.StatusCode, Message: string(snippet)}
	}

	file, path, err := f.create(dir, media)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(path)
		return "", &TransportError{Op: "read " + http.MethodGet, URL: src, Timeout: isTimeout(err), Err: err}
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrapf(err, "close %s", path)
	}
	return path, nil
}

// SaveImage stores an image outcome: URLs are downloaded, base64 data is written as JPEG.
func (f *Fetcher) SaveImage(ctx context.Context, out ImageOutcome, dir string) (string, error) {
	switch a := out.Artifact.(type) {
	case ImageURL:
		return f.Fetch(ctx, a.URL, MediaImage, dir)
	case ImageBase64:
		data, err := imageutil.DecodeBase64(a.Data)
		if err != nil {
			return "", &ParseError{Path: "base64", Reason: err.Error()}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrapf(err, "create download dir %s", dir)
		}
		file, path, err := f.create(dir, MediaImage)
		if err != nil {
			return "", err
		}
		if _, err := file.Write(data); err != nil {
			file.Close()
			os.Remove(path)
			return "", errors.Wrapf(err, "write %s", path)
		}
		if err := file.Close(); err != nil {
			os.Remove(path)
			return "", errors.Wrapf(err, "close %s", path)
		}
		return path, nil
	}
	return "", ErrUnrecognizedImage
}

// create opens a new file named after the current millisecond, moving to the next
// millisecond while the name is taken.
func (f *Fetcher) create(dir string, media MediaKind) (*os.File, string, error) {
	prefix, ext := media.pattern()
	ms := f.now().UnixMilli()
	for i := 0; i < maxNameAttempts; i++ {
		path := filepath.Join(dir, prefix+strconv.FormatInt(ms+int64(i), 10)+ext)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", errors.Wrapf(err, "create %s", path)
		}
	}
	return nil, "", fmt.Errorf("no free file name in %s after %d attempts", dir, maxNameAttempts)
}
