package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/productivity"
)

const recentOnDashboard = 5

type dashboardModel struct {
	name   string
	now    func() time.Time
	width  int
	height int

	snap   productivity.Snapshot
	events []catalog.Event
}

func newDashboardModel(name string, now func() time.Time) dashboardModel {
	return dashboardModel{name: name, now: now}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d *dashboardModel) setSnapshot(snap productivity.Snapshot) {
	d.snap = snap
}

func (d *dashboardModel) setEvents(events []catalog.Event) {
	d.events = events
}

// dashboardStats are the counters shown on the overview cards.
type dashboardStats struct {
	enrolled   int
	upcoming   int
	tasksToday int
	checkins   int
	focusToday int
}

func (d dashboardModel) stats() dashboardStats {
	now := d.now()
	return dashboardStats{
		enrolled:   len(d.snap.Memberships.EnrolledCourses),
		upcoming:   catalog.Upcoming(d.events, now),
		tasksToday: d.snap.TasksCreatedOn(now),
		checkins:   len(d.snap.Checkins),
		focusToday: len(d.snap.SessionsOn(now)),
	}
}

func greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	}
	return "Good evening"
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	hello := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(fmt.Sprintf("%s, %s", greeting(d.now()), d.name)),
		"  ",
		mutedStyle.Render(d.now().Format("Monday, Jan 02")),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(hello),
		d.renderCards(w),
		d.renderTimerPanel(w),
		lipgloss.JoinHorizontal(lipgloss.Top,
			d.renderCheckins(max(20, w/2)),
			d.renderEvents(max(20, w-w/2)),
		),
	)
}

func (d dashboardModel) renderCards(w int) string {
	s := d.stats()
	cards := []struct {
		label string
		value int
	}{
		{"Courses", s.enrolled},
		{"Upcoming", s.upcoming},
		{"Tasks today", s.tasksToday},
		{"Check-ins", s.checkins},
		{"Focus today", s.focusToday},
	}
	cardW := max(12, w/len(cards)-2)
	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = cardStyle.Width(cardW).Render(lipgloss.JoinVertical(lipgloss.Center,
			highlightStyle.Bold(true).Render(fmt.Sprint(c.value)),
			mutedStyle.Render(c.label),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	t := d.snap.Timer
	phase := "Focus"
	if !t.IsWorkPhase {
		phase = "Break"
	}

	if t.IsRunning {
		content := lipgloss.JoinVertical(lipgloss.Center,
			clockStyle.Width(w-6).Render(t.Clock()),
			successStyle.Render("●  "+strings.ToUpper(phase)),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		clockStyle.Width(w-6).Render(t.Clock()),
		mutedStyle.Render("■  "+phase+" timer idle"),
		mutedStyle.Render("Press 4 for the focus timer"),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderCheckins(w int) string {
	rows := []string{titleStyle.Render("Recent Check-ins")}
	recent := d.snap.RecentCheckins(recentOnDashboard)
	if len(recent) == 0 {
		rows = append(rows, mutedStyle.Render("No check-ins yet"))
	}
	for _, c := range recent {
		rows = append(rows, fmt.Sprintf("  %s %s  %s",
			c.Mood.Emoji(),
			moodStyle(c.Mood).Render(fmt.Sprintf("%-11s", c.Mood)),
			mutedStyle.Render(c.Date.Local().Format("Jan 02 15:04"))))
	}
	return panelStyle.Width(w - 2).Render(strings.Join(rows, "\n"))
}

// renderEvents lists the next upcoming events, registered ones marked.
func (d dashboardModel) renderEvents(w int) string {
	rows := []string{titleStyle.Render("Upcoming Events")}
	now := d.now()

	var next []catalog.Event
	for _, e := range catalog.FilterEvents(d.events, nil, catalog.EventsAll) {
		if !e.Date.Before(now) {
			next = append(next, e)
		}
	}
	if len(next) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing scheduled"))
	}
	for _, e := range next[:min(len(next), recentOnDashboard)] {
		mark := " "
		if slices.Contains(d.snap.Memberships.RegisteredEvents, e.ID) {
			mark = successStyle.Render("✓")
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %s", mark,
			warmStyle.Render(e.Date.Format("Jan 02")),
			truncate(e.Name, max(8, w-16))))
	}
	return panelStyle.Width(w - 2).Render(strings.Join(rows, "\n"))
}
