// Package export writes a user's productivity record to CSV or JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/identity"
	"github.com/sadopc/focusnest/internal/productivity"
)

// Record is everything exported for one user.
type Record struct {
	User        identity.Identity
	Board       productivity.Board
	Memberships catalog.Memberships
}

// Row kinds in the CSV export.
const (
	KindTask         = "task"
	KindCheckin      = "checkin"
	KindBrainDump    = "brain_dump"
	KindFocusSession = "focus_session"
)

var csvHeader = []string{"kind", "id", "time", "text", "status", "created_at"}

// Filename is the default export file name for format on day.
func Filename(format string, day time.Time) string {
	return fmt.Sprintf("focusnest-export-%s.%s", day.Format("2006-01-02"), format)
}

func ToCSV(r Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, r)
}

// WriteCSV writes one row per task, check-in, note and focus session.
// Check-ins carry their mood in the status column.
func WriteCSV(out io.Writer, r Record) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	var rows [][]string
	for _, t := range r.Board.Tasks {
		rows = append(rows, []string{KindTask, t.ID, t.Time, t.Task, string(t.Status), formatTime(t.CreatedAt)})
	}
	for _, c := range r.Board.Checkins {
		rows = append(rows, []string{KindCheckin, c.ID, "", c.Notes, string(c.Mood), formatTime(c.Date)})
	}
	for _, n := range r.Board.BrainDump {
		rows = append(rows, []string{KindBrainDump, n.ID, "", n.Content, "", formatTime(n.CreatedAt)})
	}
	for _, s := range r.Board.Sessions {
		rows = append(rows, []string{KindFocusSession, s.ID, "", strconv.Itoa(s.Duration) + " min", "", formatTime(s.CompletedAt)})
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
