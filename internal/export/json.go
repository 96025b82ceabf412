package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/identity"
	"github.com/sadopc/focusnest/internal/productivity"
)

type jsonExport struct {
	ExportedAt  string              `json:"exported_at"`
	User        identity.Identity   `json:"user"`
	Counts      jsonCounts          `json:"counts"`
	Board       productivity.Board  `json:"productivity"`
	Memberships catalog.Memberships `json:"memberships"`
}

type jsonCounts struct {
	Tasks         int `json:"tasks"`
	Checkins      int `json:"checkins"`
	BrainDump     int `json:"brain_dump"`
	FocusSessions int `json:"focus_sessions"`
	FocusMinutes  int `json:"focus_minutes"`
}

func ToJSON(r Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, r)
}

// WriteJSON writes the whole record using the same field names as the
// stored attribute document.
func WriteJSON(w io.Writer, r Record) error {
	minutes := 0
	for _, s := range r.Board.Sessions {
		minutes += s.Duration
	}
	doc := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		User:       r.User,
		Counts: jsonCounts{
			Tasks:         len(r.Board.Tasks),
			Checkins:      len(r.Board.Checkins),
			BrainDump:     len(r.Board.BrainDump),
			FocusSessions: len(r.Board.Sessions),
			FocusMinutes:  minutes,
		},
		Board:       nonNilBoard(r.Board),
		Memberships: r.Memberships,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// nonNilBoard makes empty collections encode as [] rather than null.
func nonNilBoard(b productivity.Board) productivity.Board {
	empty := productivity.NewBoard()
	if b.Tasks == nil {
		b.Tasks = empty.Tasks
	}
	if b.Checkins == nil {
		b.Checkins = empty.Checkins
	}
	if b.BrainDump == nil {
		b.BrainDump = empty.BrainDump
	}
	if b.Sessions == nil {
		b.Sessions = empty.Sessions
	}
	return b
}
