package productivity

import "fmt"

// Phase lengths in seconds.
const (
	WorkSeconds  = FocusMinutes * 60
	BreakSeconds = 5 * 60
)

// Timer is the focus countdown. It alternates between a work phase and a
// break phase and is never persisted.
type Timer struct {
	remaining int
	running   bool
	breakTime bool
}

// NewTimer returns an idle work-phase timer at full length.
func NewTimer() Timer {
	return Timer{remaining: WorkSeconds}
}

func (t Timer) SecondsRemaining() int { return t.remaining }
func (t Timer) Running() bool         { return t.running }
func (t Timer) IsWorkPhase() bool     { return !t.breakTime }

// Expired reports whether the current phase has counted down to zero and
// is waiting for Complete.
func (t Timer) Expired() bool { return t.remaining == 0 }

// PhaseSeconds is the full length of the current phase.
func (t Timer) PhaseSeconds() int {
	if t.breakTime {
		return BreakSeconds
	}
	return WorkSeconds
}

// Tick counts down one second while running.
func (t Timer) Tick() Timer {
	if t.running && t.remaining > 0 {
		t.remaining--
	}
	return t
}

func (t Timer) ToggleRunning() Timer {
	t.running = !t.running
	return t
}

// Reset stops the timer and refills the current phase.
func (t Timer) Reset() Timer {
	t.running = false
	t.remaining = t.PhaseSeconds()
	return t
}

// Complete ends an expired phase and switches to the other one, stopped.
// The bool reports whether a work phase just finished. Calling it before
// the phase reaches zero changes nothing.
func (t Timer) Complete() (Timer, bool) {
	if t.remaining != 0 {
		return t, false
	}
	worked := !t.breakTime
	t.breakTime = worked
	t.running = false
	t.remaining = t.PhaseSeconds()
	return t, worked
}

// State is the observable timer state.
func (t Timer) State() TimerState {
	return TimerState{
		SecondsRemaining: t.remaining,
		IsRunning:        t.running,
		IsWorkPhase:      !t.breakTime,
	}
}

type TimerState struct {
	SecondsRemaining int  `json:"secondsRemaining"`
	IsRunning        bool `json:"isRunning"`
	IsWorkPhase      bool `json:"isWorkPhase"`
}

func (s TimerState) PhaseName() string {
	if s.IsWorkPhase {
		return "work"
	}
	return "break"
}

// String renders the state as Idle(work), Running(break) and so on.
func (s TimerState) String() string {
	mode := "Idle"
	if s.IsRunning {
		mode = "Running"
	}
	return fmt.Sprintf("%s(%s)", mode, s.PhaseName())
}

// Clock renders the remaining time as MM:SS.
func (s TimerState) Clock() string {
	return FormatClock(s.SecondsRemaining)
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
