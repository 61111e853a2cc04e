package aigen

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PollState is the state of a polled video job.
type PollState int

const (
	PollPending PollState = iota
	PollCompleted
	PollFailed
	// PollTimedOut means the attempt budget ran out. The job may still finish server-side;
	// it is not a failure.
	PollTimedOut
)

func (s PollState) String() string {
	switch s {
	case PollPending:
		return "pending"
	case PollCompleted:
		return "completed"
	case PollFailed:
		return "failed"
	case PollTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// StatusChecker is the part of Client the poller needs.
type StatusChecker interface {
	CheckVideoStatus(ctx context.Context, cfg ProviderConfig, statusURL string) (VideoOutcome, error)
}

// MediaDownloader stores a finished artifact locally.
type MediaDownloader interface {
	Fetch(ctx context.Context, url string, media MediaKind, dir string) (string, error)
}

// Progress is reported after every status check.
type Progress struct {
	Attempt     int
	MaxAttempts int
	Status      VideoStatus
	Err         error
}

// PollerConfig holds configuration for the poller
type PollerConfig struct {
	Interval    time.Duration
	MaxAttempts int
	// DownloadDir enables downloading the video once the job completes.
	DownloadDir string
	OnProgress  func(Progress)
	Logger      *zap.Logger
}

// DefaultPollerConfig returns default poller configuration
func DefaultPollerConfig() *PollerConfig {
	return &PollerConfig{
		Interval:    5 * time.Second,
		MaxAttempts: 60,
	}
}

// PollResult is the terminal state of a job. Path is set when the video was downloaded.
type PollResult struct {
	State    PollState
	Outcome  VideoOutcome
	Attempts int
	Path     string
}

// Poller drives a pending job to a terminal state.
type Poller struct {
	checker StatusChecker
	fetcher MediaDownloader
	config  *PollerConfig
	logger  *zap.Logger
	wait    func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller. fetcher may be nil when nothing should be downloaded.
func NewPoller(checker StatusChecker, fetcher MediaDownloader, config ...*PollerConfig) *Poller {
	cfg := DefaultPollerConfig()
	if len(config) > 0 && config[0] != nil {
		c := *config[0]
		cfg = &c
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 60
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		checker: checker,
		fetcher: fetcher,
		config:  cfg,
		logger:  logger.With(zap.String("component", "aigen_poller")),
		wait:    sleep,
	}
}

// Poll waits one interval before every status check until the job completes, fails or runs
// out of attempts. Check errors count as attempts. A cancelled context stops polling and
// returns the context error; nothing is cancelled server-side.
func (p *Poller) Poll(ctx context.Context, job JobHandle) (PollResult, error) {
	if job.StatusURL == "" {
		return PollResult{}, ErrNoStatusURL
	}

	var last VideoOutcome
	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		if err := p.wait(ctx, p.config.Interval); err != nil {
			return PollResult{State: PollPending, Outcome: last, Attempts: attempt - 1}, err
		}

		out, err := p.checker.CheckVideoStatus(ctx, job.Provider, job.StatusURL)
		p.report(Progress{Attempt: attempt, MaxAttempts: p.config.MaxAttempts, Status: out.Status, Err: err})
		if err != nil {
			if ctx.Err() != nil {
				return PollResult{State: PollPending, Outcome: last, Attempts: attempt}, ctx.Err()
			}
			p.logger.Debug("status check failed",
				zap.String("task_id", job.TaskID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		last = out

		switch {
		case isSuccessStatus(out.Status) && out.VideoURL != "":
			res := PollResult{State: PollCompleted, Outcome: out, Attempts: attempt}
			pollerJobsTotal.WithLabelValues(res.State.String()).Inc()
			return p.download(ctx, res)
		case strings.EqualFold(string(out.Status), string(VideoFailed)):
			pollerJobsTotal.WithLabelValues(PollFailed.String()).Inc()
			p.logger.Info("video job failed", zap.String("task_id", job.TaskID), zap.Int("attempts", attempt))
			return PollResult{State: PollFailed, Outcome: out, Attempts: attempt}, nil
		}
	}

	pollerJobsTotal.WithLabelValues(PollTimedOut.String()).Inc()
	p.logger.Info("video job still pending, check again later",
		zap.String("task_id", job.TaskID),
		zap.String("status_url", job.StatusURL))
	return PollResult{State: PollTimedOut, Outcome: last, Attempts: p.config.MaxAttempts}, nil
}

func (p *Poller) download(ctx context.Context, res PollResult) (PollResult, error) {
	if p.fetcher == nil || p.config.DownloadDir == "" {
		return res, nil
	}
	path, err := p.fetcher.Fetch(ctx, res.Outcome.VideoURL, MediaVideo, p.config.DownloadDir)
	if err != nil {
		return res, errors.Wrap(err, "download completed video")
	}
	res.Path = path
	return res, nil
}

func (p *Poller) report(pr Progress) {
	if p.config.OnProgress != nil {
		p.config.OnProgress(pr)
	}
}

func isSuccessStatus(s VideoStatus) bool {
	return strings.EqualFold(string(s), string(VideoSucceeded)) || strings.EqualFold(string(s), string(VideoCompleted))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
