package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/identity"
	"github.com/sadopc/focusnest/internal/productivity"
	"github.com/sadopc/focusnest/internal/store"
)

var testNow = time.Date(2024, 12, 10, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return testNow }

var testUser = identity.Identity{UserID: "u1", FirstName: "Sam", LastName: "Lee", Email: "sam@example.com", Type: identity.TypeUser}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	if err := s.CreateUser(ctx, identity.Credentials{Identity: testUser, PasswordHash: "x"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.SeedCatalog(ctx, catalog.Seed()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return s
}

// flakyStore fails attribute writes while down is set.
type flakyStore struct {
	*store.Store
	down atomic.Bool
}

func (f *flakyStore) UpdateAttributes(ctx context.Context, userID string, patch identity.Attributes) error {
	if f.down.Load() {
		return errors.New("disk full")
	}
	return f.Store.UpdateAttributes(ctx, userID, patch)
}

func openSession(t *testing.T, st identity.AttributeStore) *productivity.Session {
	t.Helper()
	sess, err := productivity.Open(context.Background(), testUser, st,
		productivity.WithClock(clock),
		productivity.WithRetryPolicy(productivity.RetryPolicy{
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			MaxAttempts:     2,
		}),
	)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { sess.Close(context.Background()) })
	return sess
}

func newTestApp(t *testing.T) (App, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	app := NewApp(openSession(t, s), Options{
		Catalog:   s,
		Settings:  s,
		ExportDir: t.TempDir(),
		Now:       clock,
	})
	app.width = 120
	app.height = 40
	return app, s
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and flattens batches, skipping ticks.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func persisted(t *testing.T, cmd tea.Cmd) persistMsg {
	t.Helper()
	for _, msg := range run(cmd) {
		if p, ok := msg.(persistMsg); ok {
			return p
		}
	}
	t.Fatal("expected a persistMsg")
	return persistMsg{}
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next, cmd
}

// containsString checks if s contains substr, ignoring ANSI escape codes.
func containsString(s, substr string) bool {
	return len(s) > 0 && len(substr) > 0 && strings.Contains(s, substr)
}

// ============================================================
// Planner
// ============================================================

func TestPlannerAddTasksSortedByTime(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	p := newPlannerModel(sess)

	*p.formTime, *p.formTask = "14:30", "Call mom"
	p, cmd := p.submitTask()
	if got := persisted(t, cmd); got.err != nil || got.done != "Task added" {
		t.Fatalf("persist = %+v", got)
	}

	*p.formTime, *p.formTask = "08:00", "Stretch"
	p, cmd = p.submitTask()
	persisted(t, cmd)

	if len(p.tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(p.tasks))
	}
	if p.tasks[0].Task != "Stretch" || p.tasks[1].Task != "Call mom" {
		t.Fatalf("tasks not ordered by time: %+v", p.tasks)
	}
	if p.formActive {
		t.Fatal("form should close after submit")
	}
}

func TestPlannerRejectsEmptyTask(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	p := newPlannerModel(sess)

	*p.formTime, *p.formTask = "09:00", "   "
	p, cmd := p.submitTask()
	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	status, ok := msgs[0].(statusMsg)
	if !ok || !status.isError {
		t.Fatalf("expected error status, got %#v", msgs[0])
	}
	if len(p.tasks) != 0 {
		t.Fatal("empty task should not be added")
	}
}

func TestPlannerToggleAndDelete(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	p := newPlannerModel(sess)

	*p.formTime, *p.formTask = "10:00", "Write report"
	p, cmd := p.submitTask()
	persisted(t, cmd)

	p, cmd = p.update(press("enter"))
	persisted(t, cmd)
	if p.tasks[0].Status != productivity.StatusCompleted {
		t.Fatalf("status = %q, want completed", p.tasks[0].Status)
	}

	p, cmd = p.update(press("space"))
	persisted(t, cmd)
	if p.tasks[0].Status != productivity.StatusPending {
		t.Fatalf("status = %q, want pending", p.tasks[0].Status)
	}

	p, cmd = p.update(press("d"))
	persisted(t, cmd)
	if len(p.tasks) != 0 {
		t.Fatal("task should be deleted")
	}
	if len(sess.Snapshot().Tasks) != 0 {
		t.Fatal("session should have no tasks")
	}
}

func TestPlannerFormUsesDefaultTime(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	p := newPlannerModel(sess)

	p, _ = p.update(prefsMsg{prefs: preferences{taskTime: "07:15", mood: productivity.MoodCalm}})
	p, _ = p.update(press("n"))
	if !p.formActive {
		t.Fatal("n should open the form")
	}
	if *p.formTime != "07:15" {
		t.Fatalf("form time = %q, want 07:15", *p.formTime)
	}

	p, _ = p.update(press("esc"))
	if p.formActive {
		t.Fatal("esc should close the form")
	}
}

// ============================================================
// Journal
// ============================================================

func TestJournalCheckinAndNotes(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	j := newJournalModel(sess)

	j.formType = formCheckin
	*j.formMood, *j.formNotes = productivity.MoodFocused, "deep work"
	j, cmd := j.submit()
	if got := persisted(t, cmd); got.done != "Check-in saved" {
		t.Fatalf("persist = %+v", got)
	}
	if len(j.checkins) != 1 || j.checkins[0].Mood != productivity.MoodFocused {
		t.Fatalf("checkins = %+v", j.checkins)
	}
	if j.tally[productivity.MoodFocused] != 1 {
		t.Fatalf("tally = %v", j.tally)
	}

	j.formType = formNote
	*j.formNote = "first"
	j, cmd = j.submit()
	persisted(t, cmd)
	*j.formNote = "second"
	j, cmd = j.submit()
	persisted(t, cmd)

	if len(j.notes) != 2 || j.notes[0].Content != "second" {
		t.Fatalf("notes should be newest first: %+v", j.notes)
	}

	j, cmd = j.update(press("d"))
	persisted(t, cmd)
	if len(j.notes) != 1 || j.notes[0].Content != "first" {
		t.Fatalf("notes after delete = %+v", j.notes)
	}
}

func TestJournalRejectsBlankNote(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	j := newJournalModel(sess)

	j.formType = formNote
	*j.formNote = "\n  "
	j, cmd := j.submit()
	status, ok := run(cmd)[0].(statusMsg)
	if !ok || !status.isError {
		t.Fatal("blank note should report an error")
	}
	if len(j.notes) != 0 {
		t.Fatal("blank note should not be stored")
	}
}

func TestJournalCheckinFormDefaultsMood(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	j := newJournalModel(sess)

	j, _ = j.update(prefsMsg{prefs: preferences{taskTime: "09:00", mood: productivity.MoodHappy, bell: true}})
	j, _ = j.update(press("m"))
	if !j.formActive || j.formType != formCheckin {
		t.Fatal("m should open the check-in form")
	}
	if *j.formMood != productivity.MoodHappy {
		t.Fatalf("mood = %q, want happy", *j.formMood)
	}
}

// ============================================================
// Focus timer
// ============================================================

func TestFocusToggleSchedulesTick(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	f := newFocusModel(sess, clock)

	f, cmd := f.update(press("s"))
	if !f.running() {
		t.Fatal("timer should run after s")
	}
	if cmd == nil {
		t.Fatal("starting should schedule a tick")
	}

	f, cmd = f.update(press("space"))
	if f.running() {
		t.Fatal("space should pause")
	}
	if cmd != nil {
		t.Fatal("pausing should not schedule a tick")
	}
}

func TestFocusDropsStaleTicks(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	f := newFocusModel(sess, clock)

	f, _ = f.update(press("s"))
	stale := f.gen

	// Pause then resume: the first chain's tick must not count twice.
	f, _ = f.update(press("s"))
	f, _ = f.update(press("s"))

	f, cmd := f.update(focusTickMsg{gen: stale})
	if cmd != nil {
		t.Fatal("stale tick should not reschedule")
	}
	if f.timer.SecondsRemaining != productivity.WorkSeconds {
		t.Fatalf("stale tick changed the clock: %d", f.timer.SecondsRemaining)
	}

	f, cmd = f.update(focusTickMsg{gen: f.gen})
	if cmd == nil {
		t.Fatal("current tick should reschedule")
	}
	if f.timer.SecondsRemaining != productivity.WorkSeconds-1 {
		t.Fatalf("remaining = %d", f.timer.SecondsRemaining)
	}
}

func TestFocusResetStopsTimer(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	f := newFocusModel(sess, clock)

	f, _ = f.update(press("s"))
	f, _ = f.update(focusTickMsg{gen: f.gen})
	old := f.gen

	f, _ = f.update(press("x"))
	if f.running() {
		t.Fatal("reset should stop the timer")
	}
	if f.timer.SecondsRemaining != productivity.WorkSeconds {
		t.Fatalf("reset remaining = %d", f.timer.SecondsRemaining)
	}
	if f.gen == old {
		t.Fatal("reset should bump the generation")
	}
}

func TestFocusCompletesWorkPhase(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	f := newFocusModel(sess, clock)

	f, _ = f.update(press("s"))
	var cmd tea.Cmd
	for i := 0; i < productivity.WorkSeconds; i++ {
		f, cmd = f.update(focusTickMsg{gen: f.gen})
	}

	if f.timer.IsWorkPhase {
		t.Fatal("should be on break after the work phase")
	}
	if f.running() {
		t.Fatal("timer should stop at the phase change")
	}
	if f.timer.SecondsRemaining != productivity.BreakSeconds {
		t.Fatalf("break remaining = %d", f.timer.SecondsRemaining)
	}
	if f.today != 1 {
		t.Fatalf("today = %d, want 1", f.today)
	}

	var sawBell, sawSaved bool
	for _, msg := range run(cmd) {
		switch m := msg.(type) {
		case statusMsg:
			sawBell = strings.Contains(m.text, "Break time") && strings.HasSuffix(m.text, "\a")
		case persistMsg:
			sawSaved = m.err == nil
		}
	}
	if !sawBell {
		t.Fatal("expected break status with bell")
	}
	if !sawSaved {
		t.Fatal("expected the focus session to be saved")
	}
	if n := len(sess.Snapshot().Sessions); n != 1 {
		t.Fatalf("sessions = %d, want 1", n)
	}
}

func TestFocusBellCanBeDisabled(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	f := newFocusModel(sess, clock)
	f, _ = f.update(prefsMsg{prefs: preferences{taskTime: "09:00", mood: productivity.MoodCalm, bell: false}})

	f, _ = f.update(press("s"))
	var cmd tea.Cmd
	for i := 0; i < productivity.WorkSeconds; i++ {
		f, cmd = f.update(focusTickMsg{gen: f.gen})
	}
	for _, msg := range run(cmd) {
		if s, ok := msg.(statusMsg); ok && strings.Contains(s.text, "\a") {
			t.Fatal("bell should be off")
		}
	}
}

// ============================================================
// Library
// ============================================================

func TestLibraryEnrollAndFilter(t *testing.T) {
	app, _ := newTestApp(t)
	app, _ = update(t, app, catalogMsg{listing: catalog.Seed()})
	app, _ = update(t, app, press("5"))

	if app.activeView != viewLibrary {
		t.Fatal("5 should open the library")
	}
	if n := len(app.library.courses()); n != 3 {
		t.Fatalf("courses = %d, want 3", n)
	}

	app, cmd := update(t, app, press("enter"))
	if got := persisted(t, cmd); got.err != nil {
		t.Fatalf("enroll: %v", got.err)
	}
	if !app.library.members.Enrolled("course_1") {
		t.Fatal("course_1 should be enrolled")
	}

	// enrolled
	app, _ = update(t, app, press("f"))
	if n := len(app.library.courses()); n != 1 {
		t.Fatalf("enrolled courses = %d, want 1", n)
	}
	// available
	app, _ = update(t, app, press("f"))
	if n := len(app.library.courses()); n != 2 {
		t.Fatalf("available courses = %d, want 2", n)
	}
}

func TestLibraryRegisterAndFavorite(t *testing.T) {
	app, _ := newTestApp(t)
	app, _ = update(t, app, catalogMsg{listing: catalog.Seed()})
	app, _ = update(t, app, press("5"))

	app, _ = update(t, app, press("l"))
	if app.library.section != sectionEvents {
		t.Fatal("right should move to events")
	}
	app, cmd := update(t, app, press("enter"))
	persisted(t, cmd)
	if got := app.session.Snapshot().Memberships.RegisteredEvents; len(got) != 1 || got[0] != "event_1" {
		t.Fatalf("registered = %v", got)
	}

	// Registering again is reported without a write.
	_, cmd = update(t, app, press("enter"))
	if _, ok := run(cmd)[0].(statusMsg); !ok {
		t.Fatal("second register should only set status")
	}

	app, _ = update(t, app, press("l"))
	app, cmd = update(t, app, press("enter"))
	persisted(t, cmd)
	fav := app.session.Snapshot().Memberships.FavoriteResources
	if len(fav) != 1 {
		t.Fatalf("favorites = %v", fav)
	}
	app, cmd = update(t, app, press("enter"))
	persisted(t, cmd)
	if fav := app.session.Snapshot().Memberships.FavoriteResources; len(fav) != 0 {
		t.Fatalf("favorite should toggle off, got %v", fav)
	}
}

func TestLibraryResourceCategoryCycle(t *testing.T) {
	l := newLibraryModel(nil)
	l.setListing(catalog.Seed())
	l.section = sectionResources

	if l.filterName() != "all" {
		t.Fatalf("filter = %q", l.filterName())
	}
	all := len(l.resources())
	l, _ = l.update(press("f"))
	if l.category() != catalog.Categories[0] {
		t.Fatalf("category = %q", l.category())
	}
	if len(l.resources()) > all {
		t.Fatal("filtering should not add resources")
	}
	for range catalog.Categories {
		l, _ = l.update(press("f"))
	}
	if l.category() != "" {
		t.Fatal("cycle should wrap back to all")
	}
}

// ============================================================
// Reports
// ============================================================

func sessionsBoard() productivity.Board {
	b := productivity.NewBoard()
	b = b.RecordSession("s1", testNow)
	b = b.RecordSession("s2", testNow.Add(-time.Hour))
	b = b.RecordSession("s3", testNow.AddDate(0, 0, -2))
	b = b.RecordSession("s4", testNow.AddDate(0, 0, -20))
	return b
}

func TestReportsDailyBuckets(t *testing.T) {
	r := newReportsModel(clock)
	r.setSize(100, 30)
	r.setBoard(sessionsBoard())

	if len(r.buckets) != 7 {
		t.Fatalf("buckets = %d, want 7", len(r.buckets))
	}
	last := r.buckets[6]
	if last.sessions != 2 || last.minutes != 50 {
		t.Fatalf("today bucket = %+v", last)
	}
	sessions, minutes := r.totals()
	if sessions != 3 || minutes != 75 {
		t.Fatalf("totals = %d sessions, %d min", sessions, minutes)
	}
}

func TestReportsWeeklyAndNavigation(t *testing.T) {
	r := newReportsModel(clock)
	r.setSize(100, 30)
	r.setBoard(sessionsBoard())

	r, _ = r.update(press("f"))
	if r.mode != reportWeekly {
		t.Fatal("f should switch to weekly")
	}
	if len(r.buckets) != weeksShown {
		t.Fatalf("weekly buckets = %d", len(r.buckets))
	}
	if sessions, _ := r.totals(); sessions != 4 {
		t.Fatalf("weekly sessions = %d, want 4", sessions)
	}

	r, _ = r.update(press("f"))
	r, _ = r.update(press("h"))
	if r.offset != 1 {
		t.Fatalf("offset = %d", r.offset)
	}
	if sessions, _ := r.totals(); sessions != 0 {
		t.Fatalf("previous week sessions = %d, want 0", sessions)
	}
	r, _ = r.update(press("l"))
	r, _ = r.update(press("l"))
	if r.offset != 0 {
		t.Fatal("offset should not go below zero")
	}
	if !containsString(r.view(), "Focus Reports") {
		t.Fatal("view should render title")
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0m"},
		{25, "25m"},
		{60, "1h 00m"},
		{135, "2h 15m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.in); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ============================================================
// Settings
// ============================================================

func TestLoadPreferencesDefaults(t *testing.T) {
	s := newTestStore(t)
	p := loadPreferences(s, "u1")
	if p != defaultPreferences() {
		t.Fatalf("prefs = %+v", p)
	}
	if p := loadPreferences(nil, "u1"); p != defaultPreferences() {
		t.Fatalf("nil store prefs = %+v", p)
	}
}

func TestLoadPreferencesIgnoresInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.SetSetting(ctx, "u1", settingTaskTime, "25:99")
	s.SetSetting(ctx, "u1", settingMood, "grumpy")
	s.SetSetting(ctx, "u1", settingPhaseBell, "false")

	p := loadPreferences(s, "u1")
	if p.taskTime != productivity.DefaultTaskTime {
		t.Fatalf("taskTime = %q", p.taskTime)
	}
	if p.mood != productivity.MoodCalm {
		t.Fatalf("mood = %q", p.mood)
	}
	if p.bell {
		t.Fatal("bell should be off")
	}
}

func TestSettingsSave(t *testing.T) {
	s := newTestStore(t)
	m := newSettingsModel(s, "u1")

	*m.taskTime, *m.mood, *m.bell = "7:45", productivity.MoodFocused, false
	msg := m.save()()
	got, ok := msg.(prefsMsg)
	if !ok {
		t.Fatalf("save returned %#v", msg)
	}
	want := preferences{taskTime: "07:45", mood: productivity.MoodFocused, bell: false}
	if got.prefs != want {
		t.Fatalf("prefs = %+v, want %+v", got.prefs, want)
	}
	if p := loadPreferences(s, "u1"); p != want {
		t.Fatalf("stored prefs = %+v", p)
	}
	// Other users keep the defaults.
	if p := loadPreferences(s, "u2"); p != defaultPreferences() {
		t.Fatalf("u2 prefs = %+v", p)
	}
}

func TestSettingsSaveRejectsBadTime(t *testing.T) {
	m := newSettingsModel(nil, "u1")
	*m.taskTime = "noon"
	if _, ok := m.save()().(statusMsg); !ok {
		t.Fatal("bad time should produce a status error")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)

	if app.activeView != viewDashboard {
		t.Fatal("default view should be dashboard")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t)
	app, _ = update(t, app, catalogMsg{listing: catalog.Seed()})

	for i := range viewNames {
		app.activeView = viewState(i)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", i)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	app, _ := newTestApp(t)
	for range viewNames {
		app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyTab})
	}
	if app.activeView != viewDashboard {
		t.Fatalf("tab should wrap around, at %d", app.activeView)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !containsString(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	app, _ := newTestApp(t)
	app.width = 0
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppInitLoadsCatalogAndPrefs(t *testing.T) {
	app, _ := newTestApp(t)
	var sawCatalog, sawPrefs bool
	for _, msg := range run(app.Init()) {
		switch m := msg.(type) {
		case catalogMsg:
			sawCatalog = m.err == nil && len(m.listing.Courses) == 3
		case prefsMsg:
			sawPrefs = m.prefs == defaultPreferences()
		}
	}
	if !sawCatalog || !sawPrefs {
		t.Fatalf("catalog=%v prefs=%v", sawCatalog, sawPrefs)
	}
}

func TestAppDashboardStats(t *testing.T) {
	app, _ := newTestApp(t)
	app, _ = update(t, app, catalogMsg{listing: catalog.Seed()})

	app, _ = update(t, app, press("2"))
	app.planner, _ = app.planner.update(press("n"))
	*app.planner.formTime, *app.planner.formTask = "10:00", "Plan day"
	var cmd tea.Cmd
	app.planner, cmd = app.planner.submitTask()
	persisted(t, cmd)
	app, _ = update(t, app, press("1"))

	s := app.dashboard.stats()
	if s.tasksToday != 1 {
		t.Fatalf("tasksToday = %d", s.tasksToday)
	}
	if s.upcoming != 3 {
		t.Fatalf("upcoming = %d, want 3", s.upcoming)
	}
	if !containsString(app.View(), "Good morning, Sam") {
		t.Fatal("dashboard should greet the user")
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t)
	app, _ = update(t, app, statusMsg{text: "test status"})
	if !containsString(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppQuit(t *testing.T) {
	app, _ := newTestApp(t)
	_, cmd := update(t, app, press("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestAppPersistFailureAndRetry(t *testing.T) {
	fs := &flakyStore{Store: newTestStore(t)}
	sess := openSession(t, fs)
	app := NewApp(sess, Options{Catalog: fs, Settings: fs, Now: clock})
	app.width, app.height = 120, 40

	fs.down.Store(true)
	_, r, err := sess.AddTask("09:00", "Survive outage")
	if err != nil {
		t.Fatal(err)
	}
	app, _ = update(t, app, persisted(t, waitPersist(r, "Task added")))
	if !app.statusErr || !containsString(app.status, "press r to retry") {
		t.Fatalf("status = %q", app.status)
	}
	if !containsString(app.renderFooter(), "unsaved") {
		t.Fatal("footer should flag unsaved changes")
	}

	fs.down.Store(false)
	app, cmd := update(t, app, press("r"))
	got := persisted(t, cmd)
	if got.err != nil {
		t.Fatalf("retry failed: %v", got.err)
	}
	app, _ = update(t, app, got)
	if app.status != "Saved" || app.statusErr {
		t.Fatalf("status = %q", app.status)
	}

	attrs, err := fs.LoadAttributes(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := attrs[productivity.KeyPlannerEntries]; !ok {
		t.Fatal("retry should store the planner")
	}
}

func TestAppRetryWithNothingPending(t *testing.T) {
	app, _ := newTestApp(t)
	_, cmd := update(t, app, press("r"))
	s, ok := run(cmd)[0].(statusMsg)
	if !ok || s.text != "Nothing to retry" {
		t.Fatalf("got %#v", s)
	}
}

func TestAppExport(t *testing.T) {
	app, _ := newTestApp(t)
	_, r, _ := app.session.AddCheckin(productivity.MoodCalm, "ok")
	persisted(t, waitPersist(r, ""))

	app, _ = update(t, app, press("e"))
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	app, _ = update(t, app, press("j"))
	app, cmd := update(t, app, press("enter"))
	if app.exportPicking {
		t.Fatal("enter should close the picker")
	}

	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatal("expected exportDoneMsg")
	}
	if filepath.Base(done.path) != "focusnest-export-2024-12-10.json" {
		t.Fatalf("path = %q", done.path)
	}
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"checkinMood": "calm"`) {
		t.Fatal("export should contain the check-in")
	}
}

func TestAppExportDisabledWithoutDir(t *testing.T) {
	sess := openSession(t, newTestStore(t))
	app := NewApp(sess, Options{Now: clock})

	app, cmd := update(t, app, press("e"))
	if app.exportPicking {
		t.Fatal("picker should stay closed")
	}
	if s, ok := cmd().(statusMsg); !ok || !s.isError {
		t.Fatal("expected an error status")
	}
}

func TestAppFormCapturesKeys(t *testing.T) {
	app, _ := newTestApp(t)
	app, _ = update(t, app, press("2"))
	app, _ = update(t, app, press("n"))
	if !app.isFormActive() {
		t.Fatal("planner form should be active")
	}
	// "1" goes to the form rather than switching views.
	app, _ = update(t, app, press("1"))
	if app.activeView != viewPlanner {
		t.Fatal("keys should go to the open form")
	}
}

func TestAppPrefsReachViews(t *testing.T) {
	app, _ := newTestApp(t)
	p := preferences{taskTime: "06:30", mood: productivity.MoodSad, bell: false}
	app, _ = update(t, app, prefsMsg{prefs: p})

	if app.planner.defaultTime != "06:30" || app.journal.defaultMood != productivity.MoodSad || app.focus.bell {
		t.Fatal("preferences should reach every view")
	}
	if app.settings.prefs != p {
		t.Fatal("settings view should show new prefs")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"héllo", 2, "h…"},
		{"abc", 1, "…"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestGreeting(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2025, 1, 1, h, 0, 0, 0, time.UTC) }
	if greeting(day(8)) != "Good morning" || greeting(day(13)) != "Good afternoon" || greeting(day(21)) != "Good evening" {
		t.Fatal("greeting by hour")
	}
}

func TestDescribe(t *testing.T) {
	if describe(productivity.ErrInvalidTime) != "Time must look like 14:30" {
		t.Fatal("invalid time message")
	}
	if !strings.HasPrefix(describe(errors.New("boom")), "Error: ") {
		t.Fatal("generic errors are prefixed")
	}
}

func TestValidateEmail(t *testing.T) {
	if validateEmail("sam@example.com") != nil {
		t.Fatal("valid email rejected")
	}
	if validateEmail("sam") == nil {
		t.Fatal("invalid email accepted")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapFullHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test: just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	for _, m := range productivity.Moods {
		if moodStyle(m).Render("x") == "" {
			t.Fatalf("mood %q rendered empty", m)
		}
	}
	for _, s := range []string{
		activeTabStyle.Render("t"), panelStyle.Render("t"), cardStyle.Render("t"),
		clockStyle.Render("t"), doneItemStyle.Render("t"), errorStyle.Render("t"),
	} {
		if s == "" {
			t.Fatal("style rendered empty")
		}
	}
}
