package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/productivity"
)

type librarySection int

const (
	sectionCourses librarySection = iota
	sectionEvents
	sectionResources
)

var sectionNames = []string{"Courses", "Events", "Resources"}

// resourceFilters cycles through every category, "" meaning all of them.
var resourceFilters = append([]catalog.Category{""}, catalog.Categories...)

type libraryModel struct {
	session *productivity.Session
	width   int
	height  int

	listing catalog.Listing
	members catalog.Memberships
	loaded  bool

	section  librarySection
	cursor   int
	courseF  int
	eventF   int
	resource int
}

func newLibraryModel(s *productivity.Session) libraryModel {
	return libraryModel{session: s}
}

func (l *libraryModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

func (l *libraryModel) setMemberships(m catalog.Memberships) {
	l.members = m
	l.clampCursor()
}

func (l *libraryModel) setListing(listing catalog.Listing) {
	l.listing = listing
	l.loaded = true
	l.clampCursor()
}

func (l *libraryModel) clampCursor() {
	if n := l.rowCount(); l.cursor >= n {
		l.cursor = max(0, n-1)
	}
}

func (l libraryModel) courseFilter() catalog.CourseFilter {
	return catalog.CourseFilters[l.courseF]
}

func (l libraryModel) eventFilter() catalog.EventFilter {
	return catalog.EventFilters[l.eventF]
}

func (l libraryModel) category() catalog.Category {
	return resourceFilters[l.resource]
}

func (l libraryModel) courses() []catalog.Course {
	return catalog.FilterCourses(l.listing.Courses, l.members.EnrolledCourses, l.courseFilter())
}

func (l libraryModel) events() []catalog.Event {
	return catalog.FilterEvents(l.listing.Events, l.members.RegisteredEvents, l.eventFilter())
}

func (l libraryModel) resources() []catalog.Resource {
	return catalog.FilterResources(l.listing.Resources, l.category())
}

func (l libraryModel) rowCount() int {
	switch l.section {
	case sectionEvents:
		return len(l.events())
	case sectionResources:
		return len(l.resources())
	}
	return len(l.courses())
}

func (l libraryModel) filterName() string {
	switch l.section {
	case sectionEvents:
		return string(l.eventFilter())
	case sectionResources:
		if c := l.category(); c != "" {
			return string(c)
		}
		return "all"
	}
	return string(l.courseFilter())
}

func (l libraryModel) update(msg tea.Msg) (libraryModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	switch {
	case key.Matches(km, keys.Left):
		l.section = (l.section + 2) % 3
		l.cursor = 0
	case key.Matches(km, keys.Right):
		l.section = (l.section + 1) % 3
		l.cursor = 0
	case key.Matches(km, keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(km, keys.Down):
		if l.cursor < l.rowCount()-1 {
			l.cursor++
		}
	case key.Matches(km, keys.Filter):
		switch l.section {
		case sectionCourses:
			l.courseF = (l.courseF + 1) % len(catalog.CourseFilters)
		case sectionEvents:
			l.eventF = (l.eventF + 1) % len(catalog.EventFilters)
		case sectionResources:
			l.resource = (l.resource + 1) % len(resourceFilters)
		}
		l.cursor = 0
	case key.Matches(km, keys.Enter), key.Matches(km, keys.Toggle):
		return l.act()
	}
	return l, nil
}

// act enrolls in, registers for or favorites the selected row.
func (l libraryModel) act() (libraryModel, tea.Cmd) {
	var (
		snap productivity.Snapshot
		r    *productivity.Receipt
		err  error
		done string
	)
	switch l.section {
	case sectionCourses:
		rows := l.courses()
		if l.cursor >= len(rows) {
			return l, nil
		}
		c := rows[l.cursor]
		if l.members.Enrolled(c.ID) {
			return l, statusCmd("Already enrolled in "+c.Title, false)
		}
		snap, r, err = l.session.Enroll(c.ID)
		done = "Enrolled in " + c.Title
	case sectionEvents:
		rows := l.events()
		if l.cursor >= len(rows) {
			return l, nil
		}
		e := rows[l.cursor]
		if l.members.Registered(e.ID) {
			return l, statusCmd("Already registered for "+e.Name, false)
		}
		snap, r, err = l.session.RegisterEvent(e.ID)
		done = "Registered for " + e.Name
	case sectionResources:
		rows := l.resources()
		if l.cursor >= len(rows) {
			return l, nil
		}
		res := rows[l.cursor]
		snap, r, err = l.session.ToggleFavorite(res.ID)
		done = "Favorites updated"
	}
	if err == nil {
		l.setMemberships(snap.Memberships)
	}
	return l, applied(r, err, done)
}

func (l libraryModel) view() string {
	w := l.width - 4

	var tabs []string
	for i, name := range sectionNames {
		if librarySection(i) == l.section {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Library"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...), "  ",
		mutedStyle.Render("filter: "+l.filterName()),
	)

	var body []string
	switch {
	case !l.loaded:
		body = []string{mutedStyle.Render("Loading catalog...")}
	case l.section == sectionEvents:
		body = l.renderEvents(w - 6)
	case l.section == sectionResources:
		body = l.renderResources(w - 6)
	default:
		body = l.renderCourses(w - 6)
	}

	rows := append([]string{header, ""}, body...)
	rows = append(rows, "", mutedStyle.Render("  ←/→: section  f: filter  enter: enroll / register / favorite"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (l libraryModel) renderCourses(w int) []string {
	courses := l.courses()
	if len(courses) == 0 {
		return []string{mutedStyle.Render("No courses match this filter.")}
	}
	var rows []string
	for i, c := range courses {
		cursor, style := cursorPrefix(i == l.cursor)
		mark := "  "
		if l.members.Enrolled(c.ID) {
			mark = successStyle.Render("✓ ")
		}
		dates := mutedStyle.Render(fmt.Sprintf("%s – %s", c.StartDate.Format("Jan 02"), c.EndDate.Format("Jan 02")))
		rows = append(rows, cursor+mark+style.Render(truncate(c.Title, w/2))+"  "+dates)
		if c.Instructor != "" {
			rows = append(rows, "    "+mutedStyle.Render(truncate(c.Instructor, w-4)))
		}
	}
	return rows
}

func (l libraryModel) renderEvents(w int) []string {
	events := l.events()
	if len(events) == 0 {
		return []string{mutedStyle.Render("No events match this filter.")}
	}
	var rows []string
	for i, e := range events {
		cursor, style := cursorPrefix(i == l.cursor)
		mark := "  "
		if l.members.Registered(e.ID) {
			mark = successStyle.Render("✓ ")
		}
		when := warmStyle.Render(e.Date.Format("Mon Jan 02 2006"))
		rows = append(rows, cursor+mark+style.Render(truncate(e.Name, w/2))+"  "+when)
		if e.Location != "" {
			rows = append(rows, "    "+mutedStyle.Render(truncate(e.Location, w-4)))
		}
	}
	return rows
}

func (l libraryModel) renderResources(w int) []string {
	resources := l.resources()
	if len(resources) == 0 {
		return []string{mutedStyle.Render("No resources in this category.")}
	}
	var rows []string
	for i, r := range resources {
		cursor, style := cursorPrefix(i == l.cursor)
		mark := "  "
		if l.members.Favorite(r.ID) {
			mark = warningStyle.Render("★ ")
		}
		cat := highlightStyle.Render(fmt.Sprintf("[%s]", r.Category))
		rows = append(rows, cursor+mark+style.Render(truncate(r.Title, w/2))+" "+cat)
		if r.Link != "" {
			rows = append(rows, "    "+mutedStyle.Render(truncate(r.Link, w-4)))
		}
	}
	return rows
}
