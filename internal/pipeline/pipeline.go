package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"onepace/internal/config"
	"onepace/internal/episodes"
	"onepace/internal/fileutil"
	"onepace/internal/logging"
	"onepace/internal/poller"
	"onepace/internal/services"
	"onepace/internal/verify"
)

// LockFileName is the lock file created inside the target folder.
const LockFileName = ".onepace.lock"

// Deps are the collaborators a pipeline drives.
type Deps struct {
	Scraper    Scraper
	Dispatcher Dispatcher
	Subtitles  SubtitleFetcher
	Waiter     Waiter
	Matcher    Matcher
	Logger     *slog.Logger

	// Jobs is optional; when set, live jobs for the target suppress a
	// second dispatch.
	Jobs ActiveJobs
}

// Pipeline runs the full acquisition sequence.
type Pipeline struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
}

// New constructs a Pipeline.
func New(cfg *config.Config, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	if deps.Scraper == nil || deps.Dispatcher == nil || deps.Subtitles == nil || deps.Waiter == nil || deps.Matcher == nil {
		return nil, errors.New("pipeline requires scraper, dispatcher, subtitle fetcher, waiter, and matcher")
	}
	return &Pipeline{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "pipeline"),
	}, nil
}

// Run executes every step for req. The returned summary is populated even
// when err is non-nil.
func (p *Pipeline) Run(ctx context.Context, req Request) (Summary, error) {
	summary := Summary{RunID: uuid.NewString(), Target: req.Target}
	if strings.TrimSpace(req.Target) == "" {
		return summary, services.Wrap(services.ErrValidation, "pipeline", "start", "target folder required", nil)
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, p.logger)

	if err := os.MkdirAll(req.Target, 0o755); err != nil {
		return summary, services.Wrap(services.ErrValidation, "pipeline", "create target", req.Target, err)
	}
	unlock, err := lockTarget(req.Target)
	if err != nil {
		return summary, err
	}
	defer unlock()

	logger.Info("pipeline started",
		logging.String(logging.FieldPath, req.Target),
		logging.String("index_url", req.IndexURL),
		logging.String("subtitle_ref", req.SubtitleRef),
	)

	var (
		episodesOut  Outcome
		subtitlesOut Outcome
		dispatched   bool
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		episodesOut, dispatched, err = p.stepEpisodes(groupCtx, req)
		return err
	})
	group.Go(func() error {
		var err error
		subtitlesOut, err = p.stepSubtitles(groupCtx, req)
		return err
	})
	groupErr := group.Wait()
	summary.Steps = append(summary.Steps, episodesOut, subtitlesOut)
	if groupErr != nil {
		return p.finish(ctx, summary, groupErr)
	}

	summary.Steps = append(summary.Steps, p.stepWait(ctx, req.Target, dispatched))

	matchOut, report, err := p.stepMatch(ctx, req.Target)
	summary.Steps = append(summary.Steps, matchOut)
	summary.Match = report
	if err != nil {
		return p.finish(ctx, summary, err)
	}

	verifyOut, verifyReport, err := p.stepVerify(ctx, req.Target)
	summary.Steps = append(summary.Steps, verifyOut)
	summary.Verify = verifyReport
	return p.finish(ctx, summary, err)
}

func (p *Pipeline) finish(ctx context.Context, summary Summary, err error) (Summary, error) {
	logger := logging.WithContext(ctx, p.logger)
	if err != nil {
		logger.Error("pipeline failed", logging.String("category", services.Category(err)), logging.Error(err))
		return summary, err
	}
	logger.Info("pipeline complete", logging.Bool("ok", summary.OK()))
	return summary, nil
}

func (p *Pipeline) stepEpisodes(ctx context.Context, req Request) (Outcome, bool, error) {
	ctx = services.WithStep(ctx, string(StepEpisodes))
	start := time.Now()
	out := Outcome{Step: StepEpisodes}

	if n := fileutil.CountByExt(req.Target, p.cfg.Media.VideoExtension); n > 0 {
		out.Status = StatusSkipped
		out.Detail = fmt.Sprintf("%d videos already present", n)
		return out, false, nil
	}
	if n := fileutil.CountByExt(req.Target, p.cfg.Media.PartialExtension); n > 0 {
		out.Status = StatusSkipped
		out.Detail = fmt.Sprintf("%d downloads already in progress", n)
		return out, true, nil
	}
	if p.deps.Jobs != nil {
		n, err := p.deps.Jobs.CountRunning(ctx, req.Target)
		if err != nil {
			logging.WithContext(ctx, p.logger).Warn("job registry lookup failed", logging.Error(err))
		} else if n > 0 {
			out.Status = StatusSkipped
			out.Detail = fmt.Sprintf("%d downloads already running", n)
			return out, true, nil
		}
	}

	result := p.deps.Scraper.Scrape(ctx, req.IndexURL)
	if len(result.Links) == 0 {
		err := services.Wrap(services.ErrMissingInput, string(StepEpisodes), "scrape", "no magnet links found at "+req.IndexURL, nil)
		return failed(out, start, err), false, err
	}

	dispatched, err := p.deps.Dispatcher.Dispatch(ctx, result.Links, req.Target)
	if err != nil {
		return failed(out, start, err), false, err
	}
	out.Status = StatusDone
	out.Detail = fmt.Sprintf("%d of %d downloads launched", dispatched.Launched, len(result.Links))
	if dispatched.Failed > 0 {
		out.Status = StatusIncomplete
	}
	out.Duration = time.Since(start)
	return out, dispatched.Launched > 0, nil
}

func (p *Pipeline) stepSubtitles(ctx context.Context, req Request) (Outcome, error) {
	ctx = services.WithStep(ctx, string(StepSubtitles))
	start := time.Now()
	out := Outcome{Step: StepSubtitles}

	ext := p.cfg.Subtitles.Extension
	if n := fileutil.CountByExt(req.Target, ext) + fileutil.CountByExt(p.cfg.SubtitleDir(req.Target), ext); n > 0 {
		out.Status = StatusSkipped
		out.Detail = fmt.Sprintf("%d subtitles already present", n)
		return out, nil
	}

	result, err := p.deps.Subtitles.Fetch(ctx, req.SubtitleRef, req.Target)
	if err != nil {
		return failed(out, start, err), err
	}
	out.Status = StatusDone
	out.Detail = fmt.Sprintf("%d subtitles fetched", result.Count)
	if result.Count == 0 {
		out.Status = StatusIncomplete
	}
	out.Duration = time.Since(start)
	return out, nil
}

func (p *Pipeline) stepWait(ctx context.Context, target string, dispatched bool) Outcome {
	ctx = services.WithStep(ctx, string(StepWait))
	start := time.Now()
	out := Outcome{Step: StepWait}

	partials := fileutil.CountByExt(target, p.cfg.Media.PartialExtension)
	if !dispatched && partials == 0 {
		out.Status = StatusSkipped
		out.Detail = "no active downloads"
		return out
	}

	result, err := p.deps.Waiter.Wait(ctx, target)
	out.Duration = time.Since(start)
	switch {
	case err != nil:
		// The wait is advisory; matching still runs on whatever arrived.
		out.Status = StatusIncomplete
		out.Err = err
		out.Detail = err.Error()
	case result.Outcome == poller.OutcomeCancelled:
		out.Status = StatusCancelled
		out.Detail = fmt.Sprintf("wait skipped with %d videos present", result.Files)
		logging.WithContext(ctx, p.logger).Warn("continuing without confirmed downloads; make sure they finish before watching")
	default:
		out.Status = StatusDone
		out.Detail = fmt.Sprintf("%d videos stable", result.Files)
	}
	return out
}

func (p *Pipeline) stepMatch(ctx context.Context, target string) (Outcome, *episodes.Report, error) {
	ctx = services.WithStep(ctx, string(StepMatch))
	start := time.Now()
	out := Outcome{Step: StepMatch}

	if audit, err := verify.Dir(target, p.cfg.Media.VideoExtension, p.cfg.Subtitles.Extension); err == nil && audit.OK() {
		out.Status = StatusSkipped
		out.Detail = fmt.Sprintf("all %d videos already matched", len(audit.Entries))
		return out, nil, nil
	}

	subDir := target
	if fileutil.CountByExt(p.cfg.SubtitleDir(target), p.cfg.Subtitles.Extension) > 0 {
		subDir = p.cfg.SubtitleDir(target)
	}
	report, err := p.deps.Matcher.Match(ctx, target, subDir)
	if err != nil {
		return failed(out, start, err), nil, err
	}
	out.Duration = time.Since(start)
	out.Detail = fmt.Sprintf("%d/%d matched", report.Matched, report.Videos)
	out.Status = StatusIncomplete
	if report.Complete() {
		out.Status = StatusDone
	}
	return out, &report, nil
}

func (p *Pipeline) stepVerify(ctx context.Context, target string) (Outcome, *verify.Report, error) {
	ctx = services.WithStep(ctx, string(StepVerify))
	start := time.Now()
	out := Outcome{Step: StepVerify}

	report, err := verify.Dir(target, p.cfg.Media.VideoExtension, p.cfg.Subtitles.Extension)
	if err != nil {
		return failed(out, start, err), nil, err
	}
	out.Duration = time.Since(start)
	out.Detail = fmt.Sprintf("%d/%d videos have subtitles", report.Matched, len(report.Entries))
	if !report.OK() {
		err := services.Wrap(services.ErrValidation, string(StepVerify), "audit",
			fmt.Sprintf("%d of %d videos missing subtitles", report.Missing, len(report.Entries)), nil)
		out.Status = StatusFailed
		out.Err = err
		return out, &report, err
	}
	out.Status = StatusDone
	logging.WithContext(ctx, p.logger).Info("verification passed", logging.Int("videos", len(report.Entries)))
	return out, &report, nil
}

func failed(out Outcome, start time.Time, err error) Outcome {
	out.Status = StatusFailed
	out.Err = err
	out.Detail = err.Error()
	out.Duration = time.Since(start)
	return out
}

func lockTarget(target string) (func(), error) {
	path := filepath.Join(target, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "lock target", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "lock target",
			"another onepace run is working on "+target, nil)
	}
	return func() {
		_ = lock.Unlock()
		_ = os.Remove(path)
	}, nil
}
