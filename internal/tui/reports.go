package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusnest/internal/productivity"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

const weeksShown = 8

// reportBucket is one bar: a day, or a week when mode is weekly.
type reportBucket struct {
	label    string
	start    time.Time
	sessions int
	minutes  int
}

type reportsModel struct {
	now    func() time.Time
	width  int
	height int

	mode    reportMode
	offset  int // blocks back from today (0 = current)
	board   productivity.Board
	buckets []reportBucket

	chart barchart.Model
}

func newReportsModel(now func() time.Time) reportsModel {
	return reportsModel{
		now:   now,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

func (r *reportsModel) setBoard(b productivity.Board) {
	r.board = b
	r.buildChart()
}

// lastDay is the final day in the visible range.
func (r reportsModel) lastDay() time.Time {
	today := r.now()
	if r.mode == reportWeekly {
		return today.AddDate(0, 0, -7*weeksShown*r.offset)
	}
	return today.AddDate(0, 0, -7*r.offset)
}

func (r reportsModel) bucketize() []reportBucket {
	if r.mode == reportDaily {
		days := r.board.SessionsPerDay(r.lastDay(), 7)
		out := make([]reportBucket, len(days))
		for i, d := range days {
			out[i] = reportBucket{label: d.Day.Format("Mon 02"), start: d.Day, sessions: d.Count, minutes: d.Minutes}
		}
		return out
	}

	days := r.board.SessionsPerDay(r.lastDay(), 7*weeksShown)
	out := make([]reportBucket, weeksShown)
	for i, d := range days {
		b := &out[i/7]
		if i%7 == 0 {
			b.start = d.Day
			b.label = d.Day.Format("Jan 02")
		}
		b.sessions += d.Count
		b.minutes += d.Minutes
	}
	return out
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
		case key.Matches(msg, keys.Filter):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
		default:
			return r, nil
		}
		r.buildChart()
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	r.buckets = r.bucketize()

	chartWidth := max(20, r.width-8)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	bars := make([]barchart.BarData, 0, len(r.buckets))
	for _, b := range r.buckets {
		style := lipgloss.NewStyle().Foreground(colorAccent)
		if b.minutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  b.label,
			Values: []barchart.BarValue{{Name: "Focus", Value: float64(b.minutes), Style: style}},
		})
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) totals() (sessions, minutes int) {
	for _, b := range r.buckets {
		sessions += b.sessions
		minutes += b.minutes
	}
	return sessions, minutes
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	var dateLabel string
	if len(r.buckets) > 0 {
		first := r.buckets[0].start
		dateLabel = mutedStyle.Render(fmt.Sprintf("%s – %s", first.Format("Jan 02"), r.lastDay().Format("Jan 02, 2006")))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Focus Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	sessions, minutes := r.totals()
	summary := fmt.Sprintf("  %s sessions  %s focused",
		highlightStyle.Render(fmt.Sprint(sessions)),
		highlightStyle.Render(formatMinutes(minutes)))

	nav := mutedStyle.Render("  ←/→: navigate  f: daily/weekly")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", summary, "", r.renderTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderTable(w int) string {
	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s", "Period", "Sessions", "Focused")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 34))),
	}
	for _, b := range r.buckets {
		if b.sessions == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-12s %10d %10s", b.label, b.sessions, formatMinutes(b.minutes)))
	}
	if len(rows) == 2 {
		return mutedStyle.Render("  No focus sessions in this period")
	}
	return strings.Join(rows, "\n")
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}
