package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"onepace/internal/config"
	"onepace/internal/dispatch"
	"onepace/internal/episodes"
	"onepace/internal/jobs"
	"onepace/internal/magnet"
	"onepace/internal/pipeline"
	"onepace/internal/poller"
	"onepace/internal/services"
	"onepace/internal/subfetch"
	"onepace/internal/testsupport"
)

type stubScraper struct {
	links []string
	calls int
}

func (s *stubScraper) Scrape(context.Context, string) magnet.Result {
	s.calls++
	if len(s.links) == 0 {
		return magnet.Result{Strategy: magnet.StrategyNone}
	}
	return magnet.Result{Links: s.links, Strategy: magnet.StrategyList}
}

type doneProcess struct{}

func (doneProcess) PID() int           { return 1 }
func (doneProcess) Wait() (int, error) { return 0, nil }

// downloadingLauncher writes the episode a magnet stands for straight into the
// target directory, standing in for a torrent client that finishes instantly.
type downloadingLauncher struct {
	mu    sync.Mutex
	count int
}

func (l *downloadingLauncher) Start(_ string, args []string) (dispatch.Process, error) {
	l.mu.Lock()
	l.count++
	n := l.count
	l.mu.Unlock()
	target := args[1]
	name := fmt.Sprintf("[One Pace][1-3] Jaya %02d [480p].mkv", n)
	if err := os.WriteFile(filepath.Join(target, name), []byte(strings.Repeat("v", 64*n)), 0o644); err != nil {
		return nil, err
	}
	return doneProcess{}, nil
}

type subtitleExecutor struct {
	names []string
	err   error
}

func (e *subtitleExecutor) Run(_ context.Context, _ string, args []string, onLine func(string)) error {
	if e.err != nil {
		onLine("Access denied")
		return e.err
	}
	for _, name := range e.names {
		if err := os.WriteFile(filepath.Join(args[2], name), []byte("[Script Info]"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// finishingWaiter completes in-flight downloads when waited on: partial
// markers disappear and the three episodes land in the directory.
type finishingWaiter struct {
	calls int
}

func (w *finishingWaiter) Wait(_ context.Context, dir string) (poller.Result, error) {
	w.calls++
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return poller.Result{}, err
	}
	parts, _ := filepath.Glob(filepath.Join(dir, "*.part"))
	for _, part := range parts {
		if err := os.Remove(part); err != nil {
			return poller.Result{}, err
		}
	}
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("[One Pace][1-3] Jaya %02d [480p].mkv", i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("video"), 0o644); err != nil {
			return poller.Result{}, err
		}
	}
	return poller.Result{Outcome: poller.OutcomeStable, Files: 3}, nil
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

type fixture struct {
	cfg      *config.Config
	registry *jobs.Store
	scraper  *stubScraper
	subExec  *subtitleExecutor
	deps     pipeline.Deps
	p        *pipeline.Pipeline
	target   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	registry := testsupport.MustOpenRegistry(t, cfg)

	f := &fixture{
		cfg:      cfg,
		registry: registry,
		scraper:  &stubScraper{links: []string{"magnet:?xt=urn:btih:1", "magnet:?xt=urn:btih:2", "magnet:?xt=urn:btih:3"}},
		subExec:  &subtitleExecutor{names: []string{"Jaya 01.ass", "Jaya 02.ass", "Jaya 03.ass"}},
		target:   filepath.Join(testsupport.BaseDir(cfg), "arc-jaya"),
	}
	dispatcher, err := dispatch.New(cfg.Torrent.Binary, nil,
		dispatch.WithLauncher(&downloadingLauncher{}), dispatch.WithRegistry(registry))
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}
	fetcher, err := subfetch.New(cfg.Subtitles.Binary, cfg.Subtitles.Subdir, cfg.Subtitles.Extension,
		subfetch.WithExecutor(f.subExec))
	if err != nil {
		t.Fatalf("subfetch.New: %v", err)
	}
	f.deps = pipeline.Deps{
		Scraper:    f.scraper,
		Dispatcher: dispatcher,
		Subtitles:  fetcher,
		Waiter:     poller.New(poller.SettingsFromConfig(cfg), poller.WithSleep(noSleep)),
		Matcher:    episodes.New(episodes.SettingsFromConfig(cfg)),
	}
	f.p, err = pipeline.New(cfg, f.deps)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return f
}

func (f *fixture) run(t *testing.T) (pipeline.Summary, error) {
	t.Helper()
	return f.p.Run(context.Background(), pipeline.Request{
		IndexURL:    "https://index.example/?q=jaya",
		SubtitleRef: "https://drive.example/folders/jaya",
		Target:      f.target,
	})
}

func statuses(summary pipeline.Summary) map[pipeline.Step]pipeline.Status {
	out := make(map[pipeline.Step]pipeline.Status, len(summary.Steps))
	for _, step := range summary.Steps {
		out[step.Step] = step.Status
	}
	return out
}

func TestRunEndToEndMatchesAllEpisodes(t *testing.T) {
	f := newFixture(t)

	summary, err := f.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.OK() {
		t.Fatalf("expected OK summary, got %+v", summary.Steps)
	}
	if summary.Match == nil || summary.Match.Matched != 3 || summary.Match.Videos != 3 {
		t.Fatalf("expected 3/3 matched, got %+v", summary.Match)
	}
	if summary.Verify == nil || summary.Verify.Matched != 3 {
		t.Fatalf("expected verification of 3 videos, got %+v", summary.Verify)
	}
	got := statuses(summary)
	for _, step := range []pipeline.Step{pipeline.StepEpisodes, pipeline.StepSubtitles, pipeline.StepWait, pipeline.StepMatch, pipeline.StepVerify} {
		if got[step] != pipeline.StatusDone {
			t.Fatalf("step %s: expected done, got %q", step, got[step])
		}
	}
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("[One Pace][1-3] Jaya %02d [480p].ass", i)
		if _, err := os.Stat(filepath.Join(f.target, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(f.target, pipeline.LockFileName)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected lock file to be removed, err=%v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
}

func TestRunSecondTimeSkipsCompletedSteps(t *testing.T) {
	f := newFixture(t)
	if _, err := f.run(t); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	summary, err := f.run(t)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	got := statuses(summary)
	for _, step := range []pipeline.Step{pipeline.StepEpisodes, pipeline.StepSubtitles, pipeline.StepWait, pipeline.StepMatch} {
		if got[step] != pipeline.StatusSkipped {
			t.Fatalf("step %s: expected skipped, got %q", step, got[step])
		}
	}
	if got[pipeline.StepVerify] != pipeline.StatusDone {
		t.Fatalf("expected verify to run, got %q", got[pipeline.StepVerify])
	}
	if f.scraper.calls != 1 {
		t.Fatalf("expected scraper to run once, ran %d times", f.scraper.calls)
	}
}

func TestRunHaltsWhenNoMagnetsFound(t *testing.T) {
	f := newFixture(t)
	f.scraper.links = nil

	summary, err := f.run(t)
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected missing input error, got %v", err)
	}
	if got := statuses(summary); got[pipeline.StepEpisodes] != pipeline.StatusFailed {
		t.Fatalf("expected episodes step failure, got %v", got)
	}
	for _, step := range summary.Steps {
		if step.Step == pipeline.StepMatch || step.Step == pipeline.StepVerify {
			t.Fatalf("pipeline continued past a hard failure: %+v", summary.Steps)
		}
	}
}

func TestRunHaltsOnSubtitleToolFailure(t *testing.T) {
	f := newFixture(t)
	f.subExec.err = errors.New("exit status 1")

	_, err := f.run(t)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestRunReportsPartialMatchAsVerifyFailure(t *testing.T) {
	f := newFixture(t)
	f.subExec.names = []string{"Jaya 01.ass", "Jaya 03.ass"}

	summary, err := f.run(t)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error from verify, got %v", err)
	}
	got := statuses(summary)
	if got[pipeline.StepMatch] != pipeline.StatusIncomplete || got[pipeline.StepVerify] != pipeline.StatusFailed {
		t.Fatalf("unexpected statuses %v", got)
	}
	if summary.OK() || summary.Match.Matched != 2 {
		t.Fatalf("unexpected summary: ok=%v matched=%d", summary.OK(), summary.Match.Matched)
	}
}

func TestRunRefusesLockedTarget(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(f.target, 0o755); err != nil {
		t.Fatal(err)
	}
	held := flockTarget(t, f.target)
	defer held()

	_, err := f.run(t)
	if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), "another onepace run") {
		t.Fatalf("expected lock conflict, got %v", err)
	}
	if f.scraper.calls != 0 {
		t.Fatal("scraper must not run without the lock")
	}
}

func (f *fixture) rebuild(t *testing.T) {
	t.Helper()
	p, err := pipeline.New(f.cfg, f.deps)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	f.p = p
}

func TestRunWaitsInsteadOfRedispatchingPartialDownloads(t *testing.T) {
	f := newFixture(t)
	waiter := &finishingWaiter{}
	f.deps.Waiter = waiter
	f.rebuild(t)
	if err := os.MkdirAll(f.target, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.TouchFiles(t, f.target, "[One Pace][1-3] Jaya 01 [480p].mkv.part")

	summary, err := f.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.scraper.calls != 0 {
		t.Fatalf("expected no new dispatch while downloads are in progress, scraper ran %d times", f.scraper.calls)
	}
	got := statuses(summary)
	if got[pipeline.StepEpisodes] != pipeline.StatusSkipped || got[pipeline.StepWait] != pipeline.StatusDone {
		t.Fatalf("unexpected statuses %v", got)
	}
	if waiter.calls != 1 || !summary.OK() {
		t.Fatalf("expected one wait and a passing run, waits=%d steps=%+v", waiter.calls, summary.Steps)
	}
}

func TestRunWaitsForJobsStillRunningInRegistry(t *testing.T) {
	f := newFixture(t)
	registry := f.registry
	waiter := &finishingWaiter{}
	f.deps.Waiter = waiter
	f.deps.Jobs = registry
	f.rebuild(t)

	ctx := context.Background()
	if err := registry.Record(ctx, &jobs.Job{Magnet: "magnet:?xt=urn:btih:1", TargetDir: f.target, State: jobs.StateLaunched, PID: 4242}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	summary, err := f.run(t)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.scraper.calls != 0 {
		t.Fatalf("expected running jobs to suppress dispatch, scraper ran %d times", f.scraper.calls)
	}
	if got := statuses(summary); got[pipeline.StepEpisodes] != pipeline.StatusSkipped || got[pipeline.StepWait] != pipeline.StatusDone {
		t.Fatalf("unexpected statuses %v", got)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := pipeline.New(testsupport.NewConfig(t), pipeline.Deps{}); err == nil {
		t.Fatal("expected error for missing collaborators")
	}
}
