package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusnest/internal/productivity"
)

const recentCheckinLimit = 8

type journalForm int

const (
	formCheckin journalForm = iota
	formNote
)

// journalModel pairs mood check-ins with the brain dump. The cursor moves
// over brain dump notes only.
type journalModel struct {
	session *productivity.Session
	width   int
	height  int

	checkins []productivity.EmotionalCheckin
	tally    map[productivity.Mood]int
	notes    []productivity.BrainDumpEntry
	cursor   int

	defaultMood productivity.Mood

	formActive bool
	form       *huh.Form
	formType   journalForm

	formMood  *productivity.Mood
	formNotes *string
	formNote  *string
}

func newJournalModel(s *productivity.Session) journalModel {
	mood, notes, note := productivity.MoodCalm, "", ""
	return journalModel{
		session:     s,
		defaultMood: productivity.MoodCalm,
		formMood:    &mood,
		formNotes:   &notes,
		formNote:    &note,
	}
}

func (j *journalModel) setSize(w, h int) {
	j.width = w
	j.height = h
}

func (j *journalModel) setBoard(b productivity.Board) {
	j.checkins = b.RecentCheckins(recentCheckinLimit)
	j.tally = b.MoodTally()
	j.notes = b.BrainDump
	if j.cursor >= len(j.notes) {
		j.cursor = max(0, len(j.notes)-1)
	}
}

func (j journalModel) update(msg tea.Msg) (journalModel, tea.Cmd) {
	if j.formActive && j.form != nil {
		return j.updateForm(msg)
	}

	switch msg := msg.(type) {
	case prefsMsg:
		j.defaultMood = msg.prefs.mood
		return j, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if j.cursor > 0 {
				j.cursor--
			}
		case key.Matches(msg, keys.Down):
			if j.cursor < len(j.notes)-1 {
				j.cursor++
			}
		case key.Matches(msg, keys.Mood):
			return j.showCheckinForm()
		case key.Matches(msg, keys.New):
			return j.showNoteForm()
		case key.Matches(msg, keys.Delete):
			if j.cursor < len(j.notes) {
				snap, r, err := j.session.DeleteBrainDump(j.notes[j.cursor].ID)
				j.setBoard(snap.Board)
				return j, applied(r, err, "Note deleted")
			}
		}
	}
	return j, nil
}

func (j journalModel) showCheckinForm() (journalModel, tea.Cmd) {
	*j.formMood = j.defaultMood
	*j.formNotes = ""
	j.formType = formCheckin

	options := make([]huh.Option[productivity.Mood], len(productivity.Moods))
	for i, m := range productivity.Moods {
		options[i] = huh.NewOption(fmt.Sprintf("%s %s", m.Emoji(), m), m)
	}

	j.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[productivity.Mood]().Title("How are you feeling?").Options(options...).Value(j.formMood),
			huh.NewText().Title("Notes").Value(j.formNotes).CharLimit(500),
		),
	).WithShowHelp(true).WithShowErrors(true)

	j.formActive = true
	return j, j.form.Init()
}

func (j journalModel) showNoteForm() (journalModel, tea.Cmd) {
	*j.formNote = ""
	j.formType = formNote

	j.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("What's on your mind?").Value(j.formNote).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return productivity.ErrEmptyText
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	j.formActive = true
	return j, j.form.Init()
}

func (j journalModel) updateForm(msg tea.Msg) (journalModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		j.formActive = false
		j.form = nil
		return j, nil
	}

	form, cmd := j.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		j.form = f
	}
	if j.form.State == huh.StateCompleted {
		return j.submit()
	}
	return j, cmd
}

func (j journalModel) submit() (journalModel, tea.Cmd) {
	j.formActive = false
	j.form = nil

	var (
		snap productivity.Snapshot
		r    *productivity.Receipt
		err  error
		done string
	)
	switch j.formType {
	case formCheckin:
		snap, r, err = j.session.AddCheckin(*j.formMood, *j.formNotes)
		done = "Check-in saved"
	default:
		snap, r, err = j.session.AddBrainDump(*j.formNote)
		done = "Note saved"
	}
	j.setBoard(snap.Board)
	return j, applied(r, err, done)
}

func (j journalModel) view() string {
	w := j.width - 4
	if j.formActive && j.form != nil {
		title := "Mood Check-in"
		if j.formType == formNote {
			title = "Brain Dump"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", j.form.View())
		return panelStyle.Width(w).Render(content)
	}

	half := max(20, (w-2)/2)
	left := panelStyle.Width(half).Render(j.renderCheckins(half - 6))
	right := activePanelStyle.Width(half).Render(j.renderNotes(half - 6))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (j journalModel) renderCheckins(w int) string {
	rows := []string{titleStyle.Render("Mood Check-ins"), ""}

	var tally []string
	for _, m := range productivity.Moods {
		if n := j.tally[m]; n > 0 {
			tally = append(tally, moodStyle(m).Render(fmt.Sprintf("%s %d", m.Emoji(), n)))
		}
	}
	if len(tally) > 0 {
		rows = append(rows, strings.Join(tally, "  "), "")
	}

	if len(j.checkins) == 0 {
		rows = append(rows, mutedStyle.Render("No check-ins yet."))
	}
	for _, c := range j.checkins {
		line := fmt.Sprintf("%s %s %s",
			mutedStyle.Render(c.Date.Local().Format("Jan 02 15:04")),
			c.Mood.Emoji(),
			moodStyle(c.Mood).Render(string(c.Mood)))
		rows = append(rows, line)
		if c.Notes != "" {
			rows = append(rows, "   "+mutedStyle.Render(truncate(c.Notes, w-3)))
		}
	}

	rows = append(rows, "", mutedStyle.Render("m: check in"))
	return strings.Join(rows, "\n")
}

func (j journalModel) renderNotes(w int) string {
	rows := []string{titleStyle.Render("Brain Dump"), ""}
	if len(j.notes) == 0 {
		rows = append(rows, mutedStyle.Render("Empty. Press n to jot something down."))
	}
	for i, n := range j.notes {
		cursor, style := cursorPrefix(i == j.cursor)
		first, _, _ := strings.Cut(n.Content, "\n")
		rows = append(rows, cursor+style.Render(truncate(first, w-2)))
	}
	rows = append(rows, "", mutedStyle.Render("n: new  d: delete"))
	return strings.Join(rows, "\n")
}
