package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusnest/internal/productivity"
)

const dailySessionGoal = 4

// focusModel drives the session's focus timer. A tick is only scheduled
// while the timer runs, and every start, pause, reset or phase change bumps
// gen so at most one tick chain is alive.
type focusModel struct {
	session *productivity.Session
	now     func() time.Time
	width   int
	height  int

	gen   int
	timer productivity.TimerState
	today int
	bell  bool
}

func newFocusModel(s *productivity.Session, now func() time.Time) focusModel {
	return focusModel{
		session: s,
		now:     now,
		timer:   s.Snapshot().Timer,
		bell:    true,
	}
}

func (f *focusModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f *focusModel) setSnapshot(snap productivity.Snapshot) {
	f.timer = snap.Timer
	f.today = len(snap.SessionsOn(f.now()))
}

func (f focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case prefsMsg:
		f.bell = msg.prefs.bell
		return f, nil

	case focusTickMsg:
		if msg.gen != f.gen {
			return f, nil
		}
		snap := f.session.Tick()
		f.setSnapshot(snap)
		if snap.Timer.SecondsRemaining == 0 {
			return f.completePhase()
		}
		if !snap.Timer.IsRunning {
			return f, nil
		}
		return f, focusTick(f.gen)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start), key.Matches(msg, keys.Toggle):
			return f.toggle()
		case key.Matches(msg, keys.Reset):
			f.gen++
			f.setSnapshot(f.session.ResetTimer())
			return f, statusCmd("Timer reset", false)
		}
	}
	return f, nil
}

func (f focusModel) toggle() (focusModel, tea.Cmd) {
	f.gen++
	snap := f.session.ToggleRunning()
	f.setSnapshot(snap)
	if snap.Timer.IsRunning {
		return f, focusTick(f.gen)
	}
	return f, nil
}

// completePhase switches phases once the countdown hits zero. A finished
// work phase also records a focus session.
func (f focusModel) completePhase() (focusModel, tea.Cmd) {
	f.gen++
	snap, r := f.session.CompletePhase()
	f.setSnapshot(snap)

	text := "Back to work!"
	if !snap.Timer.IsWorkPhase {
		text = "Focus session complete. Break time!"
	}
	if f.bell {
		text += " \a"
	}
	return f, tea.Batch(statusCmd(text, false), waitPersist(r, "Focus session saved"))
}

func (f focusModel) running() bool { return f.timer.IsRunning }

func (f focusModel) view() string {
	w := f.width - 4

	phase := "FOCUS"
	style := accentStyle.Bold(true)
	if !f.timer.IsWorkPhase {
		phase = "BREAK"
		style = successStyle.Bold(true)
	}

	var label string
	switch {
	case f.timer.IsRunning:
		label = style.Render(phase)
	case f.timer.SecondsRemaining == secondsFor(f.timer):
		label = mutedStyle.Render(phase + " · ready")
	default:
		label = warningStyle.Render(phase + " · paused")
	}

	clock := clockStyle.Width(max(10, w-6)).Render(f.timer.Clock())
	if !f.timer.IsWorkPhase {
		clock = successStyle.Bold(true).Width(max(10, w-6)).Align(lipgloss.Center).Render(f.timer.Clock())
	}

	controls := mutedStyle.Render("s: start  x: reset")
	if f.timer.IsRunning {
		controls = mutedStyle.Render("s: pause  x: reset")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Focus Timer"),
		"",
		clock,
		label,
		"",
		f.renderProgress(),
		"",
		controls,
	)
	return panelStyle.Width(w).Render(content)
}

func (f focusModel) renderProgress() string {
	var parts []string
	for i := 0; i < max(dailySessionGoal, f.today); i++ {
		switch {
		case i < f.today:
			parts = append(parts, successStyle.Render("●"))
		case i == f.today && f.timer.IsWorkPhase && f.timer.IsRunning:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d today · %d min", f.today, f.today*productivity.FocusMinutes))
	return strings.Join(parts, " ") + counter
}

func secondsFor(t productivity.TimerState) int {
	if t.IsWorkPhase {
		return productivity.WorkSeconds
	}
	return productivity.BreakSeconds
}
