package dispatch

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"onepace/internal/jobs"
)

// Process is a started child process.
type Process interface {
	PID() int
	// Wait blocks until the process exits and returns its exit code.
	Wait() (int, error)
}

// Launcher starts processes without waiting for them.
type Launcher interface {
	Start(binary string, args []string) (Process, error)
}

type commandLauncher struct{}

func (commandLauncher) Start(binary string, args []string) (Process, error) {
	// Not bound to a context: downloads outlive the pipeline run.
	cmd := exec.Command(binary, args...) //nolint:gosec
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	return &commandProcess{cmd: cmd}, nil
}

type commandProcess struct {
	cmd *exec.Cmd
}

func (p *commandProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *commandProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), err
	}
	return -1, err
}

// Alive reports whether a process with pid exists. A process owned by another
// user counts as alive.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// JobRunning reports whether job's torrent client is still the process behind
// its pid. A recycled pid runs some other command line, so where /proc is
// available the job's magnet must be one of the process arguments. Without
// /proc the process must still lead its own group, as launched clients do.
func JobRunning(job *jobs.Job) bool {
	if job == nil || !Alive(job.PID) {
		return false
	}
	cmdline, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(job.PID), "cmdline"))
	switch {
	case err == nil && job.Magnet != "":
		for _, arg := range bytes.Split(cmdline, []byte{0}) {
			if string(arg) == job.Magnet {
				return true
			}
		}
		return false
	case errors.Is(err, fs.ErrNotExist) && procAvailable():
		return false
	}
	pgid, err := unix.Getpgid(job.PID)
	return err == nil && pgid == job.PID
}

func procAvailable() bool {
	_, err := os.Stat("/proc/self/cmdline")
	return err == nil
}
