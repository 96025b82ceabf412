package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/productivity"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewPlanner
	viewJournal
	viewFocus
	viewLibrary
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "Planner", "Journal", "Focus", "Library", "Reports", "Settings"}

// SettingsStore holds per-user UI preferences.
type SettingsStore interface {
	GetSetting(ctx context.Context, userID, key string) (string, error)
	SetSetting(ctx context.Context, userID, key, value string) error
}

// Preference keys in the settings table.
const (
	settingTaskTime  = "default_task_time"
	settingMood      = "default_mood"
	settingPhaseBell = "phase_bell"
)

type preferences struct {
	taskTime string
	mood     productivity.Mood
	bell     bool
}

func defaultPreferences() preferences {
	return preferences{taskTime: productivity.DefaultTaskTime, mood: productivity.MoodCalm, bell: true}
}

// loadPreferences falls back to defaults for missing or invalid values.
func loadPreferences(s SettingsStore, userID string) preferences {
	p := defaultPreferences()
	if s == nil {
		return p
	}
	ctx := context.Background()
	if v, err := s.GetSetting(ctx, userID, settingTaskTime); err == nil {
		if t, err := productivity.NormalizeTime(v); err == nil {
			p.taskTime = t
		}
	}
	if v, err := s.GetSetting(ctx, userID, settingMood); err == nil && productivity.Mood(v).Valid() {
		p.mood = productivity.Mood(v)
	}
	if v, err := s.GetSetting(ctx, userID, settingPhaseBell); err == nil {
		if b, err := strconv.ParseBool(v); err == nil {
			p.bell = b
		}
	}
	return p
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// persistMsg reports the outcome of a queued write.
type persistMsg struct {
	done string
	err  error
}

// focusTickMsg drives the focus countdown. Ticks from an older generation
// are dropped.
type focusTickMsg struct {
	gen int
}

type catalogMsg struct {
	listing catalog.Listing
	err     error
}

type prefsMsg struct {
	prefs preferences
}

type exportDoneMsg struct {
	path string
}

// --- Commands ---

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func focusTick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return focusTickMsg{gen: gen}
	})
}

// waitPersist resolves to a persistMsg once r is delivered. A nil receipt
// means nothing was written, so there is nothing to wait for.
func waitPersist(r *productivity.Receipt, done string) tea.Cmd {
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		<-r.Done()
		return persistMsg{done: done, err: r.Err()}
	}
}

// applied turns a session result into the follow-up command: a status line
// for rejected input, otherwise a wait on the write.
func applied(r *productivity.Receipt, err error, done string) tea.Cmd {
	if err != nil {
		return statusCmd(describe(err), true)
	}
	return waitPersist(r, done)
}

func describe(err error) string {
	switch {
	case errors.Is(err, productivity.ErrEmptyText):
		return "Nothing to save: text is empty"
	case errors.Is(err, productivity.ErrInvalidTime):
		return "Time must look like 14:30"
	case errors.Is(err, productivity.ErrInvalidMood):
		return "Pick one of the listed moods"
	case errors.Is(err, productivity.ErrClosed):
		return "Session closed"
	}
	return fmt.Sprintf("Error: %v", err)
}

func loadCatalog(src catalog.Source) tea.Cmd {
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		l, err := catalog.Load(context.Background(), src)
		return catalogMsg{listing: l, err: err}
	}
}

// --- Helpers ---

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
