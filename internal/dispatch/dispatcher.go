package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"onepace/internal/jobs"
	"onepace/internal/logging"
	"onepace/internal/magnet"
	"onepace/internal/services"
)

// Registry records job lifecycle transitions.
type Registry interface {
	Record(ctx context.Context, job *jobs.Job) error
	MarkExited(ctx context.Context, id string, exitCode int, message string) error
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithLauncher injects a custom launcher (primarily for tests).
func WithLauncher(l Launcher) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.launcher = l
		}
	}
}

// WithRegistry records every launch attempt in r.
func WithRegistry(r Registry) Option {
	return func(d *Dispatcher) {
		d.registry = r
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logging.NewComponentLogger(logger, "dispatcher")
	}
}

// Dispatcher hands magnet links to the torrent client.
type Dispatcher struct {
	binary    string
	extraArgs []string
	launcher  Launcher
	registry  Registry
	logger    *slog.Logger
}

// New constructs a dispatcher for the given torrent client binary.
func New(binary string, extraArgs []string, opts ...Option) (*Dispatcher, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("torrent binary required")
	}
	d := &Dispatcher{
		binary:    binary,
		extraArgs: append([]string(nil), extraArgs...),
		launcher:  commandLauncher{},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Handle tracks one launched job.
type Handle struct {
	Job *jobs.Job

	done     chan struct{}
	mu       sync.Mutex
	exitCode int
	waitErr  error
}

// Done is closed once the job's process has exited and the exit is recorded.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Exit returns the exit code and wait error. Valid after Done is closed.
func (h *Handle) Exit() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode, h.waitErr
}

// Result summarizes one dispatch call.
type Result struct {
	Launched int
	Failed   int
	Handles  []*Handle
}

// Args returns the command line used for one magnet.
func (d *Dispatcher) Args(targetDir, link string) []string {
	args := make([]string, 0, len(d.extraArgs)+3)
	args = append(args, "-w", targetDir)
	args = append(args, d.extraArgs...)
	return append(args, link)
}

// Dispatch launches one job per magnet into targetDir, creating it first. It
// returns without waiting for any download. A launch failure is recorded and
// does not stop the remaining launches; the call fails only when nothing
// launched.
func (d *Dispatcher) Dispatch(ctx context.Context, magnets []string, targetDir string) (Result, error) {
	if len(magnets) == 0 {
		return Result{}, services.Wrap(services.ErrMissingInput, "episodes", "dispatch", "no magnet links to dispatch", nil)
	}
	if strings.TrimSpace(targetDir) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "episodes", "dispatch", "target directory required", nil)
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "episodes", "create target", targetDir, err)
	}

	logger := logging.WithContext(ctx, d.logger)
	var result Result
	for i, link := range magnets {
		info, _ := magnet.Describe(link)
		job := &jobs.Job{
			ID:          uuid.NewString(),
			Magnet:      link,
			InfoHash:    info.InfoHash,
			DisplayName: info.DisplayName,
			TargetDir:   targetDir,
		}

		proc, err := d.launcher.Start(d.binary, d.Args(targetDir, link))
		if err != nil {
			result.Failed++
			job.State = jobs.StateFailedToLaunch
			job.Error = err.Error()
			d.record(ctx, logger, job)
			logger.Warn("download launch failed",
				logging.Int("index", i+1),
				logging.String("magnet", magnet.Label(link)),
				logging.Error(err),
			)
			continue
		}

		result.Launched++
		job.State = jobs.StateLaunched
		job.PID = proc.PID()
		d.record(ctx, logger, job)
		logger.Info("download launched",
			logging.String(logging.FieldJobID, job.ID),
			logging.Int("pid", job.PID),
			logging.String("magnet", magnet.Label(link)),
		)
		result.Handles = append(result.Handles, d.reap(ctx, logger, job, proc))
	}

	logger.Info("dispatch complete",
		logging.Int("launched", result.Launched),
		logging.Int("failed", result.Failed),
		logging.String(logging.FieldPath, targetDir),
	)
	if result.Launched == 0 {
		return result, services.Wrap(services.ErrExternalTool, "episodes", "dispatch",
			fmt.Sprintf("none of %d downloads launched", len(magnets)), nil)
	}
	return result, nil
}

func (d *Dispatcher) record(ctx context.Context, logger *slog.Logger, job *jobs.Job) {
	if d.registry == nil {
		return
	}
	if err := d.registry.Record(ctx, job); err != nil {
		logger.Warn("job registry write failed", logging.String("magnet", magnet.Label(job.Magnet)), logging.Error(err))
	}
}

func (d *Dispatcher) reap(ctx context.Context, logger *slog.Logger, job *jobs.Job, proc Process) *Handle {
	handle := &Handle{Job: job, done: make(chan struct{})}
	// The reaper outlives the dispatch call, so it must not inherit cancellation.
	reapCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(handle.done)
		code, err := proc.Wait()
		handle.mu.Lock()
		handle.exitCode, handle.waitErr = code, err
		handle.mu.Unlock()

		message := ""
		if err != nil {
			message = err.Error()
		}
		if d.registry != nil {
			if regErr := d.registry.MarkExited(reapCtx, job.ID, code, message); regErr != nil {
				logger.Debug("job exit not recorded", logging.String(logging.FieldJobID, job.ID), logging.Error(regErr))
			}
		}
		logger.Debug("download process exited",
			logging.String(logging.FieldJobID, job.ID),
			logging.Int("exit_code", code),
		)
	}()
	return handle
}
