package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"onepace/internal/config"
	"onepace/internal/fileutil"
	"onepace/internal/logging"
)

// Outcome is how a wait ended.
type Outcome string

const (
	OutcomeStable    Outcome = "stable"
	OutcomeCancelled Outcome = "cancelled"
)

// Settings controls the poll cadence and file conventions.
type Settings struct {
	VideoExt     string
	PartialExt   string
	Interval     time.Duration
	Settle       time.Duration
	StableChecks int
}

// SettingsFromConfig derives poller settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		VideoExt:     cfg.Media.VideoExtension,
		PartialExt:   cfg.Media.PartialExtension,
		Interval:     time.Duration(cfg.Poll.IntervalSeconds) * time.Second,
		Settle:       time.Duration(cfg.Poll.SettleSeconds) * time.Second,
		StableChecks: cfg.Poll.StableChecks,
	}
}

// Progress is reported once per tick.
type Progress struct {
	State     State
	Counter   int
	Threshold int
	Files     int
	Partials  int
}

// Result summarizes a finished wait.
type Result struct {
	Outcome Outcome
	Files   int
	Ticks   int
}

// SnapshotFunc captures the current state of a directory.
type SnapshotFunc func(dir string) (Snapshot, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures the poller.
type Option func(*Poller)

// WithProgress registers a per-tick progress callback.
func WithProgress(fn func(Progress)) Option {
	return func(p *Poller) { p.onProgress = fn }
}

// WithLogger sets the poller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) { p.logger = logging.NewComponentLogger(logger, "poller") }
}

// WithSnapshot replaces the directory scan (primarily for tests).
func WithSnapshot(fn SnapshotFunc) Option {
	return func(p *Poller) {
		if fn != nil {
			p.snapshot = fn
		}
	}
}

// WithSleep replaces the interval wait (primarily for tests).
func WithSleep(fn SleepFunc) Option {
	return func(p *Poller) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

// Poller waits for a download directory to become stable.
type Poller struct {
	settings   Settings
	snapshot   SnapshotFunc
	sleep      SleepFunc
	onProgress func(Progress)
	logger     *slog.Logger
}

// New constructs a Poller.
func New(settings Settings, opts ...Option) *Poller {
	p := &Poller{
		settings: settings,
		sleep:    sleepContext,
		logger:   logging.NewNop(),
	}
	p.snapshot = p.scan
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait blocks until dir is stable or ctx is cancelled. Cancellation returns
// OutcomeCancelled with a nil error.
func (p *Poller) Wait(ctx context.Context, dir string) (Result, error) {
	logger := logging.WithContext(ctx, p.logger)
	tracker := NewTracker(p.settings.StableChecks)
	var result Result

	for {
		if ctx.Err() != nil {
			result.Outcome = OutcomeCancelled
			logger.Warn("download wait cancelled", logging.Int("files", result.Files))
			return result, nil
		}

		snap, err := p.snapshot(dir)
		if err != nil {
			return result, fmt.Errorf("snapshot %s: %w", dir, err)
		}
		result.Ticks++
		result.Files = len(snap.Sizes)
		state := tracker.Observe(snap)
		if p.onProgress != nil {
			p.onProgress(Progress{
				State:     state,
				Counter:   tracker.Counter(),
				Threshold: tracker.Threshold(),
				Files:     len(snap.Sizes),
				Partials:  snap.Partials,
			})
		}
		logger.Debug("poll tick",
			logging.String("state", string(state)),
			logging.Int("counter", tracker.Counter()),
			logging.Int("files", len(snap.Sizes)),
			logging.Int("partials", snap.Partials),
		)

		if state == StateStable {
			result.Outcome = OutcomeStable
			logger.Info("downloads stable", logging.Int("files", result.Files), logging.Int("ticks", result.Ticks))
			if p.settings.Settle > 0 {
				_ = p.sleep(ctx, p.settings.Settle)
			}
			return result, nil
		}

		if err := p.sleep(ctx, p.settings.Interval); err != nil {
			result.Outcome = OutcomeCancelled
			logger.Warn("download wait cancelled", logging.Int("files", result.Files))
			return result, nil
		}
	}
}

func (p *Poller) scan(dir string) (Snapshot, error) {
	sizes, err := fileutil.SizesByExt(dir, p.settings.VideoExt)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, err
	}
	return Snapshot{Sizes: sizes, Partials: fileutil.CountByExt(dir, p.settings.PartialExt)}, nil
}

// Snapshot scans dir once using the poller's file conventions.
func (p *Poller) Snapshot(dir string) (Snapshot, error) {
	return p.scan(dir)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
