package subfetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"onepace/internal/fileutil"
	"onepace/internal/logging"
	"onepace/internal/services"
)

const outputTailLines = 20

// Option configures the fetcher.
type Option func(*Fetcher)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(f *Fetcher) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// WithLogger sets the fetcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logging.NewComponentLogger(logger, "subtitles")
	}
}

// Fetcher wraps the bulk folder download tool.
type Fetcher struct {
	binary    string
	subdir    string
	extension string
	exec      Executor
	logger    *slog.Logger
}

// New constructs a Fetcher. Subtitles land in <target>/<subdir> and are
// counted by extension.
func New(binary, subdir, extension string, opts ...Option) (*Fetcher, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("subtitle download binary required")
	}
	f := &Fetcher{
		binary:    binary,
		subdir:    subdir,
		extension: extension,
		exec:      commandExecutor{},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Result reports where subtitles were written and how many arrived.
type Result struct {
	Dir   string
	Count int
}

// Args returns the command line used to fetch reference into dir.
func Args(dir, reference string) []string {
	return []string{"--folder", "-O", dir, reference, "--remaining-ok"}
}

// Fetch downloads the remote folder named by reference into the subtitle
// directory of target. It blocks until the tool exits; there is no timeout
// beyond ctx.
func (f *Fetcher) Fetch(ctx context.Context, reference, target string) (Result, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return Result{}, services.Wrap(services.ErrMissingInput, "subtitles", "fetch", "remote folder reference required", nil)
	}
	dir := target
	if f.subdir != "" {
		dir = filepath.Join(target, f.subdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "subtitles", "create directory", dir, err)
	}

	logger := logging.WithContext(ctx, f.logger)
	logger.Info("fetching subtitles", logging.String("reference", reference), logging.String(logging.FieldPath, dir))

	tail := newTail(outputTailLines)
	err := f.exec.Run(ctx, f.binary, Args(dir, reference), func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		tail.add(line)
		logger.Debug(line)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{Dir: dir}, ctxErr
		}
		message := fmt.Sprintf("%s exited with failure", f.binary)
		if out := tail.String(); out != "" {
			message += ": " + out
		}
		return Result{Dir: dir}, services.Wrap(services.ErrExternalTool, "subtitles", "fetch", message, err)
	}

	count := fileutil.CountByExt(dir, f.extension)
	logger.Info("subtitles fetched", logging.Int("count", count), logging.String(logging.FieldPath, dir))
	return Result{Dir: dir, Count: count}, nil
}

type tailBuffer struct {
	max   int
	lines []string
}

func newTail(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

// tailLineBytes bounds each kept line so a tool that prints huge lines cannot
// bloat the error message.
const tailLineBytes = 512

func (t *tailBuffer) add(line string) {
	if len(line) > tailLineBytes {
		line = strings.ToValidUTF8(line[:tailLineBytes], "") + "..."
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string {
	return strings.Join(t.lines, " | ")
}
