package productivity

import (
	"slices"
	"strings"
	"time"
)

// Board holds the four persisted collections. Methods never modify the
// receiver's slices; each change returns a new Board so earlier snapshots
// stay valid.
type Board struct {
	Tasks     []PlannerEntry     `json:"plannerEntries"`
	Checkins  []EmotionalCheckin `json:"emotionalCheckins"`
	BrainDump []BrainDumpEntry   `json:"brainDumpEntries"`
	Sessions  []FocusSession     `json:"focusSessions"`
}

// NewBoard returns a Board with empty, non-nil collections.
func NewBoard() Board {
	return Board{
		Tasks:     []PlannerEntry{},
		Checkins:  []EmotionalCheckin{},
		BrainDump: []BrainDumpEntry{},
		Sessions:  []FocusSession{},
	}
}

// NormalizeTime parses an HH:MM (or H:MM) time and returns it zero-padded.
// An empty string yields DefaultTaskTime.
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTaskTime, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", ErrInvalidTime
	}
	return t.Format("15:04"), nil
}

// timeOrDefault is NormalizeTime with unreadable times replaced by
// DefaultTaskTime. ok is false when s was replaced.
func timeOrDefault(s string) (at string, ok bool) {
	at, err := NormalizeTime(s)
	if err != nil {
		return DefaultTaskTime, false
	}
	return at, true
}

// AddTask appends a pending task. Only empty text is rejected; a time that
// is not HH:MM becomes DefaultTaskTime. Input layers validate the time
// before calling when they want to refuse it.
func (b Board) AddTask(id, at, text string, now time.Time) (Board, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return b, ErrEmptyText
	}
	at, _ = timeOrDefault(at)
	b.Tasks = append(slices.Clip(b.Tasks), PlannerEntry{
		ID:        id,
		Time:      at,
		Task:      text,
		Status:    StatusPending,
		CreatedAt: now,
	})
	return b, nil
}

// ToggleTask flips a task between pending and completed. In-progress tasks
// and unknown ids are left alone and report false.
func (b Board) ToggleTask(id string) (Board, bool) {
	i := slices.IndexFunc(b.Tasks, func(e PlannerEntry) bool { return e.ID == id })
	if i < 0 {
		return b, false
	}
	var next Status
	switch b.Tasks[i].Status {
	case StatusPending:
		next = StatusCompleted
	case StatusCompleted:
		next = StatusPending
	default:
		return b, false
	}
	b.Tasks = slices.Clone(b.Tasks)
	b.Tasks[i].Status = next
	return b, true
}

func (b Board) DeleteTask(id string) (Board, bool) {
	if !slices.ContainsFunc(b.Tasks, func(e PlannerEntry) bool { return e.ID == id }) {
		return b, false
	}
	b.Tasks = slices.DeleteFunc(slices.Clone(b.Tasks), func(e PlannerEntry) bool { return e.ID == id })
	return b, true
}

// AddCheckin appends a check-in. Notes may be empty.
func (b Board) AddCheckin(id string, mood Mood, notes string, now time.Time) (Board, error) {
	if !mood.Valid() {
		return b, ErrInvalidMood
	}
	b.Checkins = append(slices.Clip(b.Checkins), EmotionalCheckin{
		ID:    id,
		Mood:  mood,
		Notes: strings.TrimSpace(notes),
		Date:  now,
	})
	return b, nil
}

// AddBrainDump puts a new note at the front.
func (b Board) AddBrainDump(id, content string, now time.Time) (Board, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return b, ErrEmptyText
	}
	entries := make([]BrainDumpEntry, 0, len(b.BrainDump)+1)
	entries = append(entries, BrainDumpEntry{ID: id, Content: content, CreatedAt: now})
	b.BrainDump = append(entries, b.BrainDump...)
	return b, nil
}

func (b Board) DeleteBrainDump(id string) (Board, bool) {
	if !slices.ContainsFunc(b.BrainDump, func(e BrainDumpEntry) bool { return e.ID == id }) {
		return b, false
	}
	b.BrainDump = slices.DeleteFunc(slices.Clone(b.BrainDump), func(e BrainDumpEntry) bool { return e.ID == id })
	return b, true
}

// RecordSession appends a completed focus session.
func (b Board) RecordSession(id string, now time.Time) Board {
	b.Sessions = append(slices.Clip(b.Sessions), FocusSession{
		ID:          id,
		Duration:    FocusMinutes,
		CompletedAt: now,
	})
	return b
}

// ======================================================================
// Queries
// ======================================================================

func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TasksCreatedOn counts tasks created on day's calendar date.
func (b Board) TasksCreatedOn(day time.Time) int {
	n := 0
	for _, t := range b.Tasks {
		if !t.CreatedAt.IsZero() && sameDay(t.CreatedAt, day) {
			n++
		}
	}
	return n
}

func (b Board) PendingTasks() int {
	n := 0
	for _, t := range b.Tasks {
		if t.Status == StatusPending {
			n++
		}
	}
	return n
}

// TasksByTime returns the tasks ordered by time of day, stable for equal times.
func (b Board) TasksByTime() []PlannerEntry {
	out := slices.Clone(b.Tasks)
	slices.SortStableFunc(out, func(x, y PlannerEntry) int {
		return strings.Compare(x.Time, y.Time)
	})
	return out
}

// SessionsOn returns the sessions completed on day's calendar date.
func (b Board) SessionsOn(day time.Time) []FocusSession {
	var out []FocusSession
	for _, s := range b.Sessions {
		if sameDay(s.CompletedAt, day) {
			out = append(out, s)
		}
	}
	return out
}

// DayCount is the number of sessions completed on one day.
type DayCount struct {
	Day     time.Time
	Count   int
	Minutes int
}

// SessionsPerDay counts sessions for each of the days ending on last,
// oldest first.
func (b Board) SessionsPerDay(last time.Time, days int) []DayCount {
	if days <= 0 {
		return nil
	}
	end := startOfDay(last)
	out := make([]DayCount, days)
	for i := range out {
		out[i].Day = end.AddDate(0, 0, i-days+1)
	}
	for _, s := range b.Sessions {
		d := startOfDay(s.CompletedAt.In(last.Location()))
		for i := range out {
			if out[i].Day.Equal(d) {
				out[i].Count++
				out[i].Minutes += s.Duration
				break
			}
		}
	}
	return out
}

// RecentCheckins returns up to n check-ins, newest first.
func (b Board) RecentCheckins(n int) []EmotionalCheckin {
	if n > len(b.Checkins) {
		n = len(b.Checkins)
	}
	if n <= 0 {
		return []EmotionalCheckin{}
	}
	out := slices.Clone(b.Checkins[len(b.Checkins)-n:])
	slices.Reverse(out)
	return out
}

// MoodTally counts check-ins per mood.
func (b Board) MoodTally() map[Mood]int {
	out := make(map[Mood]int, len(Moods))
	for _, c := range b.Checkins {
		out[c.Mood]++
	}
	return out
}
