package jobs

import "time"

// State is the lifecycle state of a download job.
type State string

const (
	StateLaunched       State = "launched"
	StateFailedToLaunch State = "failed_to_launch"
	StateExited         State = "exited"
)

// Job is one magnet handed to the torrent client.
type Job struct {
	ID          string
	Magnet      string
	InfoHash    string
	DisplayName string
	TargetDir   string
	State       State
	PID         int
	// ExitCode is set once the process exit has been observed.
	ExitCode  *int
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Label returns the most readable identifier for the job.
func (j *Job) Label() string {
	switch {
	case j == nil:
		return ""
	case j.DisplayName != "":
		return j.DisplayName
	case j.InfoHash != "":
		return j.InfoHash
	default:
		return j.ID
	}
}

// Running reports whether the job was launched and has not been seen to exit.
func (j *Job) Running() bool {
	return j != nil && j.State == StateLaunched
}
