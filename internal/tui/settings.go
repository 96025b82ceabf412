package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusnest/internal/productivity"
)

type settingsModel struct {
	store  SettingsStore
	userID string
	width  int
	height int

	prefs      preferences
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	taskTime *string
	mood     *productivity.Mood
	bell     *bool
}

func newSettingsModel(s SettingsStore, userID string) settingsModel {
	at, mood, bell := "", productivity.MoodCalm, true
	return settingsModel{
		store:    s,
		userID:   userID,
		prefs:    defaultPreferences(),
		taskTime: &at,
		mood:     &mood,
		bell:     &bell,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return prefsMsg{prefs: loadPreferences(s.store, s.userID)}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case prefsMsg:
		s.prefs = msg.prefs
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.taskTime = s.prefs.taskTime
	*s.mood = s.prefs.mood
	*s.bell = s.prefs.bell

	moods := make([]huh.Option[productivity.Mood], len(productivity.Moods))
	for i, m := range productivity.Moods {
		moods[i] = huh.NewOption(fmt.Sprintf("%s %s", m.Emoji(), m), m)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default task time (HH:MM)").Value(s.taskTime).
				Validate(func(v string) error {
					_, err := productivity.NormalizeTime(v)
					return err
				}),
			huh.NewSelect[productivity.Mood]().Title("Default check-in mood").Options(moods...).Value(s.mood),
		).Title("Journal"),
		huh.NewGroup(
			huh.NewConfirm().Title("Ring the terminal bell when a phase ends?").Value(s.bell),
		).Title("Focus"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save()
	}
	return s, cmd
}

// save writes the form values and broadcasts them on success.
func (s settingsModel) save() tea.Cmd {
	at, err := productivity.NormalizeTime(*s.taskTime)
	if err != nil {
		return statusCmd(describe(err), true)
	}
	next := preferences{taskTime: at, mood: *s.mood, bell: *s.bell}
	st, userID := s.store, s.userID

	return func() tea.Msg {
		if st == nil {
			return prefsMsg{prefs: next}
		}
		ctx := context.Background()
		for _, kv := range [][2]string{
			{settingTaskTime, next.taskTime},
			{settingMood, string(next.mood)},
			{settingPhaseBell, strconv.FormatBool(next.bell)},
		} {
			if err := st.SetSetting(ctx, userID, kv[0], kv[1]); err != nil {
				return statusMsg{text: fmt.Sprintf("Save settings: %v", err), isError: true}
			}
		}
		return prefsMsg{prefs: next}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	bell := "off"
	if s.prefs.bell {
		bell = "on"
	}
	rows := []string{title, ""}
	for _, kv := range [][2]string{
		{"Default task time", s.prefs.taskTime},
		{"Default mood", fmt.Sprintf("%s %s", s.prefs.mood.Emoji(), s.prefs.mood)},
		{"Phase bell", bell},
		{"Focus / break", fmt.Sprintf("%d / %d min", productivity.WorkSeconds/60, productivity.BreakSeconds/60)},
	} {
		label := lipgloss.NewStyle().Width(24).Render(kv[0])
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(kv[1])))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
