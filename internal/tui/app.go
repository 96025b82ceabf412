package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/export"
	"github.com/sadopc/focusnest/internal/productivity"
)

// Options wires the App to its data. Only Session is required.
type Options struct {
	Catalog  catalog.Source
	Settings SettingsStore
	// ExportDir receives export files. Export is disabled when empty.
	ExportDir string
	Now       func() time.Time
}

// App is the root Bubble Tea model for one signed-in user.
type App struct {
	session   *productivity.Session
	catalog   catalog.Source
	exportDir string
	now       func() time.Time
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	planner   plannerModel
	journal   journalModel
	focus     focusModel
	library   libraryModel
	reports   reportsModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(s *productivity.Session, opts Options) App {
	h := help.New()
	h.ShowAll = false

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ident := s.Identity()

	a := App{
		session:    s,
		catalog:    opts.Catalog,
		exportDir:  opts.ExportDir,
		now:        now,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(ident.DisplayName(), now),
		planner:    newPlannerModel(s),
		journal:    newJournalModel(s),
		focus:      newFocusModel(s, now),
		library:    newLibraryModel(s),
		reports:    newReportsModel(now),
		settings:   newSettingsModel(opts.Settings, ident.UserID),
		help:       h,
	}
	a.sync()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadCatalog(a.catalog),
		a.settings.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.update(msg)
	next.sync()
	return next, cmd
}

// sync pushes the session's current state into every view.
func (a *App) sync() {
	snap := a.session.Snapshot()
	a.dashboard.setSnapshot(snap)
	a.planner.setBoard(snap.Board)
	a.journal.setBoard(snap.Board)
	a.focus.setSnapshot(snap)
	a.library.setMemberships(snap.Memberships)
	if a.activeView == viewReports {
		a.reports.setBoard(snap.Board)
	}
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.planner.setSize(a.width, contentHeight)
		a.journal.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.library.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			if a.exportDir == "" {
				return a, statusCmd("Export is not available in this session", true)
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Retry):
			return a.retry()
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewPlanner)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewJournal)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewFocus)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewLibrary)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewReports)
		case key.Matches(msg, keys.Tab7):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case focusTickMsg:
		// The countdown keeps running whichever view is active.
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		return a, cmd

	case catalogMsg:
		if msg.err != nil {
			return a, statusCmd(fmt.Sprintf("Load catalog: %v", msg.err), true)
		}
		a.dashboard.setEvents(msg.listing.Events)
		a.library.setListing(msg.listing)
		return a, nil

	case prefsMsg:
		a.planner, _ = a.planner.update(msg)
		a.journal, _ = a.journal.update(msg)
		a.focus, _ = a.focus.update(msg)
		a.settings, _ = a.settings.update(msg)
		return a, nil

	case persistMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("Not saved: %v (press r to retry)", msg.err)
			a.statusErr = true
			return a, nil
		}
		a.status = msg.done
		a.statusErr = false
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (App, tea.Cmd) {
	a.activeView = v
	if v == viewLibrary || v == viewDashboard {
		return a, loadCatalog(a.catalog)
	}
	return a, nil
}

// retry re-sends writes that failed after every attempt.
func (a App) retry() (App, tea.Cmd) {
	r := a.session.RetryFailed()
	if r == nil {
		return a, statusCmd("Nothing to retry", false)
	}
	a.status = "Retrying save..."
	a.statusErr = false
	return a, waitPersist(r, "Saved")
}

func (a App) updateActiveView(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewPlanner:
		a.planner, cmd = a.planner.update(msg)
	case viewJournal:
		a.journal, cmd = a.journal.update(msg)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewLibrary:
		a.library, cmd = a.library.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPlanner:
		return a.planner.formActive
	case viewJournal:
		return a.journal.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewPlanner:
		content = a.planner.view()
	case viewJournal:
		content = a.journal.view()
	case viewFocus:
		content = a.focus.view()
	case viewLibrary:
		content = a.library.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("focusnest")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	var right string
	if a.focus.running() {
		right += successStyle.Render(" ● " + a.focus.timer.Clock())
	}
	if a.session.Failed() != nil {
		right += errorStyle.Render(" ● unsaved")
	}
	if a.status != "" {
		if a.statusErr {
			right += errorStyle.Render(" " + a.status)
		} else {
			right += mutedStyle.Render(" " + a.status)
		}
	}

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"csv", "json"}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor, style := cursorPrefix(i == a.exportCursor)
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	snap := a.session.Snapshot()
	rec := export.Record{User: a.session.Identity(), Board: snap.Board, Memberships: snap.Memberships}
	path := filepath.Join(a.exportDir, export.Filename(format, a.now()))

	return func() tea.Msg {
		write := export.ToCSV
		if format == "json" {
			write = export.ToJSON
		}
		if err := write(rec, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
