package poller

import "maps"

// State is the poller state after an observation.
type State string

const (
	StateWaiting  State = "waiting_for_files"
	StateChanging State = "sizes_changing"
	StateStable   State = "stable"
)

// Snapshot is the media file sizes of a directory at one instant.
type Snapshot struct {
	Sizes    map[string]int64
	Partials int
}

// Tracker is the stability state machine. It is not safe for concurrent use.
type Tracker struct {
	threshold int
	previous  map[string]int64
	counter   int
	state     State
}

// NewTracker builds a tracker that reports stable after threshold
// consecutive equal comparisons. Thresholds below 1 are treated as 1.
func NewTracker(threshold int) *Tracker {
	if threshold < 1 {
		threshold = 1
	}
	return &Tracker{threshold: threshold, state: StateWaiting}
}

// Observe feeds one snapshot and returns the resulting state. Once stable the
// tracker stays stable.
func (t *Tracker) Observe(s Snapshot) State {
	if t.state == StateStable {
		return t.state
	}
	switch {
	case s.Partials > 0:
		t.reset()
		t.state = StateChanging
	case len(s.Sizes) == 0:
		t.reset()
		t.state = StateWaiting
	case t.previous != nil && maps.Equal(t.previous, s.Sizes):
		t.counter++
		if t.counter >= t.threshold {
			t.state = StateStable
		} else {
			t.state = StateChanging
		}
	default:
		t.counter = 0
		t.previous = maps.Clone(s.Sizes)
		t.state = StateChanging
	}
	return t.state
}

// Counter returns the number of consecutive equal comparisons so far.
func (t *Tracker) Counter() int { return t.counter }

// Threshold returns the comparisons needed for stability.
func (t *Tracker) Threshold() int { return t.threshold }

// State returns the current state.
func (t *Tracker) State() State { return t.state }

func (t *Tracker) reset() {
	t.counter = 0
	t.previous = nil
}
