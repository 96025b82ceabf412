// Package productivity owns a user's personal productivity record: planner
// tasks, mood check-ins, brain dump notes, completed focus sessions and the
// focus timer that produces them.
package productivity

import (
	"slices"
	"time"
)

// Attribute keys for the collections in the user's attribute document.
const (
	KeyPlannerEntries    = "plannerEntries"
	KeyEmotionalCheckins = "emotionalCheckins"
	KeyBrainDumpEntries  = "brainDumpEntries"
	KeyFocusSessions     = "focusSessions"
)

// BoardKeys lists the collection keys in document order.
var BoardKeys = []string{KeyPlannerEntries, KeyEmotionalCheckins, KeyBrainDumpEntries, KeyFocusSessions}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

type Mood string

const (
	MoodHappy       Mood = "happy"
	MoodSad         Mood = "sad"
	MoodAnxious     Mood = "anxious"
	MoodCalm        Mood = "calm"
	MoodOverwhelmed Mood = "overwhelmed"
	MoodFocused     Mood = "focused"
)

// Moods is the fixed set in picker order.
var Moods = []Mood{MoodHappy, MoodSad, MoodAnxious, MoodCalm, MoodOverwhelmed, MoodFocused}

func (m Mood) Valid() bool {
	return slices.Contains(Moods, m)
}

// Emoji is the glyph shown next to the mood in lists.
func (m Mood) Emoji() string {
	switch m {
	case MoodHappy:
		return "😊"
	case MoodSad:
		return "😢"
	case MoodAnxious:
		return "😰"
	case MoodCalm:
		return "😌"
	case MoodOverwhelmed:
		return "😵"
	case MoodFocused:
		return "🎯"
	}
	return "·"
}

// FocusMinutes is the recorded length of every completed work phase.
const FocusMinutes = 25

// DefaultTaskTime is used when a task is added without a time.
const DefaultTaskTime = "09:00"

type PlannerEntry struct {
	ID        string    `json:"_id"`
	Time      string    `json:"pEntryTime"`
	Task      string    `json:"pEntryTask"`
	Status    Status    `json:"pEntryStatus"`
	CreatedAt time.Time `json:"createdAt"`
}

type EmotionalCheckin struct {
	ID    string    `json:"_id"`
	Mood  Mood      `json:"checkinMood"`
	Notes string    `json:"checkinNotes"`
	Date  time.Time `json:"checkinDate"`
}

type BrainDumpEntry struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type FocusSession struct {
	ID          string    `json:"_id"`
	Duration    int       `json:"duration"`
	CompletedAt time.Time `json:"completedAt"`
}
