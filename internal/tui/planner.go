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

type plannerModel struct {
	session *productivity.Session
	width   int
	height  int

	tasks  []productivity.PlannerEntry
	cursor int

	defaultTime string

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTime *string
	formTask *string
}

func newPlannerModel(s *productivity.Session) plannerModel {
	at, task := productivity.DefaultTaskTime, ""
	return plannerModel{
		session:     s,
		defaultTime: productivity.DefaultTaskTime,
		formTime:    &at,
		formTask:    &task,
	}
}

func (p *plannerModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

// setBoard shows tasks ordered by time, keeping the cursor in range.
func (p *plannerModel) setBoard(b productivity.Board) {
	p.tasks = b.TasksByTime()
	if p.cursor >= len(p.tasks) {
		p.cursor = max(0, len(p.tasks)-1)
	}
}

func (p plannerModel) selected() (productivity.PlannerEntry, bool) {
	if p.cursor < 0 || p.cursor >= len(p.tasks) {
		return productivity.PlannerEntry{}, false
	}
	return p.tasks[p.cursor], true
}

func (p plannerModel) update(msg tea.Msg) (plannerModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case prefsMsg:
		p.defaultTime = msg.prefs.taskTime
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.tasks)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.New):
			return p.showTaskForm()
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			if t, ok := p.selected(); ok {
				snap, r, err := p.session.ToggleTask(t.ID)
				p.setBoard(snap.Board)
				return p, applied(r, err, "Task updated")
			}
		case key.Matches(msg, keys.Delete):
			if t, ok := p.selected(); ok {
				snap, r, err := p.session.DeleteTask(t.ID)
				p.setBoard(snap.Board)
				return p, applied(r, err, "Task deleted")
			}
		}
	}
	return p, nil
}

func (p plannerModel) showTaskForm() (plannerModel, tea.Cmd) {
	*p.formTime = p.defaultTime
	*p.formTask = ""

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Time (HH:MM)").Value(p.formTime).
				Validate(func(s string) error {
					_, err := productivity.NormalizeTime(s)
					return err
				}),
			huh.NewInput().Title("Task").Value(p.formTask).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return productivity.ErrEmptyText
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p plannerModel) updateForm(msg tea.Msg) (plannerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.formActive = false
		p.form = nil
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}
	if p.form.State == huh.StateCompleted {
		return p.submitTask()
	}
	return p, cmd
}

func (p plannerModel) submitTask() (plannerModel, tea.Cmd) {
	p.formActive = false
	p.form = nil
	snap, r, err := p.session.AddTask(*p.formTime, *p.formTask)
	p.setBoard(snap.Board)
	return p, applied(r, err, "Task added")
}

func (p plannerModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Task"), "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Daily Planner")
	if len(p.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Nothing planned yet. Press n to add a task."),
		)
		return panelStyle.Width(w).Render(content)
	}

	done := 0
	for _, t := range p.tasks {
		if t.Status == productivity.StatusCompleted {
			done++
		}
	}

	rows := []string{
		title + mutedStyle.Render(fmt.Sprintf("  %d/%d done", done, len(p.tasks))),
		"",
	}
	for i, t := range p.tasks {
		cursor, style := cursorPrefix(i == p.cursor)
		check := "[ ]"
		text := style.Render(truncate(t.Task, max(10, w-20)))
		switch t.Status {
		case productivity.StatusCompleted:
			check = successStyle.Render("[x]")
			text = doneItemStyle.Render(truncate(t.Task, max(10, w-20)))
		case productivity.StatusInProgress:
			check = warningStyle.Render("[~]")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s  %s", cursor, check, accentStyle.Render(t.Time), text))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  space: toggle  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
