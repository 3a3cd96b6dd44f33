package pipeline

import (
	"context"
	"time"

	"onepace/internal/dispatch"
	"onepace/internal/episodes"
	"onepace/internal/magnet"
	"onepace/internal/poller"
	"onepace/internal/subfetch"
	"onepace/internal/verify"
)

// Step names a pipeline step.
type Step string

const (
	StepEpisodes  Step = "episodes"
	StepSubtitles Step = "subtitles"
	StepWait      Step = "wait"
	StepMatch     Step = "match"
	StepVerify    Step = "verify"
)

// Status is how a step ended.
type Status string

const (
	StatusDone       Status = "done"
	StatusSkipped    Status = "skipped"
	StatusIncomplete Status = "incomplete"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// Outcome records one step's result.
type Outcome struct {
	Step     Step
	Status   Status
	Detail   string
	Err      error
	Duration time.Duration
}

// Summary is the record of a whole run.
type Summary struct {
	RunID  string
	Target string
	Steps  []Outcome
	Match  *episodes.Report
	Verify *verify.Report
}

// OK reports whether verification passed and no step failed.
func (s Summary) OK() bool {
	for _, step := range s.Steps {
		if step.Status == StatusFailed {
			return false
		}
	}
	return s.Verify != nil && s.Verify.OK()
}

// Request names the inputs of one run.
type Request struct {
	IndexURL    string
	SubtitleRef string
	Target      string
}

// Scraper finds magnet links on a torrent index page.
type Scraper interface {
	Scrape(ctx context.Context, url string) magnet.Result
}

// Dispatcher launches torrent downloads.
type Dispatcher interface {
	Dispatch(ctx context.Context, magnets []string, target string) (dispatch.Result, error)
}

// SubtitleFetcher downloads a remote subtitle folder.
type SubtitleFetcher interface {
	Fetch(ctx context.Context, reference, target string) (subfetch.Result, error)
}

// Waiter blocks until downloads settle.
type Waiter interface {
	Wait(ctx context.Context, dir string) (poller.Result, error)
}

// Matcher pairs subtitles with videos.
type Matcher interface {
	Match(ctx context.Context, videoDir, subtitleDir string) (episodes.Report, error)
}

// ActiveJobs reports torrent jobs still running for a target.
type ActiveJobs interface {
	CountRunning(ctx context.Context, targetDir string) (int, error)
}
