package productivity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/focusnest/internal/identity"
)

// DecodeBoard reads the four collections from a user's attribute document.
// Missing keys load as empty. Anything malformed is dropped rather than
// trusted, and every drop is returned as an issue. A task whose only fault
// is its time is kept with DefaultTaskTime, since the next planner write
// replaces the stored collection; the repair is reported as an issue too.
func DecodeBoard(attrs identity.Attributes) (Board, []error) {
	b := NewBoard()
	var issues []error

	b.Tasks, issues = decodeList(attrs, KeyPlannerEntries, issues,
		func(e PlannerEntry) string { return e.ID },
		func(e *PlannerEntry) (note, err error) {
			e.Task = strings.TrimSpace(e.Task)
			if e.Task == "" {
				return nil, ErrEmptyText
			}
			if e.Status == "" {
				e.Status = StatusPending
			}
			if !e.Status.Valid() {
				return nil, fmt.Errorf("unknown status %q", e.Status)
			}
			at, ok := timeOrDefault(e.Time)
			if !ok {
				note = fmt.Errorf("%w: %q replaced with %s", ErrInvalidTime, e.Time, DefaultTaskTime)
			}
			e.Time = at
			return note, nil
		})

	b.Checkins, issues = decodeList(attrs, KeyEmotionalCheckins, issues,
		func(e EmotionalCheckin) string { return e.ID },
		func(e *EmotionalCheckin) (note, err error) {
			if !e.Mood.Valid() {
				return nil, fmt.Errorf("%w %q", ErrInvalidMood, e.Mood)
			}
			return nil, nil
		})

	b.BrainDump, issues = decodeList(attrs, KeyBrainDumpEntries, issues,
		func(e BrainDumpEntry) string { return e.ID },
		func(e *BrainDumpEntry) (note, err error) {
			e.Content = strings.TrimSpace(e.Content)
			if e.Content == "" {
				return nil, ErrEmptyText
			}
			return nil, nil
		})

	b.Sessions, issues = decodeList(attrs, KeyFocusSessions, issues,
		func(e FocusSession) string { return e.ID },
		func(e *FocusSession) (note, err error) {
			if e.Duration <= 0 {
				e.Duration = FocusMinutes
			}
			if e.CompletedAt.IsZero() {
				return nil, errors.New("missing completedAt")
			}
			return nil, nil
		})

	return b, issues
}

// decodeList decodes one collection element by element so that a single bad
// element does not discard the rest. check may repair an element in place;
// a non-nil note keeps the element and records the repair, a non-nil err
// drops it.
func decodeList[T any](attrs identity.Attributes, key string, issues []error, id func(T) string, check func(*T) (note, err error)) ([]T, []error) {
	out := []T{}
	raw, ok := attrs[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return out, issues
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return out, append(issues, fmt.Errorf("decode %s: %w", key, err))
	}
	seen := make(map[string]bool, len(elems))
	for i, elem := range elems {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			issues = append(issues, fmt.Errorf("decode %s[%d]: %w", key, i, err))
			continue
		}
		eid := strings.TrimSpace(id(v))
		switch {
		case eid == "":
			issues = append(issues, fmt.Errorf("decode %s[%d]: missing id", key, i))
			continue
		case seen[eid]:
			issues = append(issues, fmt.Errorf("decode %s[%d]: duplicate id %q", key, i, eid))
			continue
		}
		note, err := check(&v)
		if err != nil {
			issues = append(issues, fmt.Errorf("decode %s[%d]: %w", key, i, err))
			continue
		}
		if note != nil {
			issues = append(issues, fmt.Errorf("decode %s[%d]: %w", key, i, note))
		}
		seen[eid] = true
		out = append(out, v)
	}
	return out, issues
}

// EncodeBoard encodes the collections named by keys, or all four when keys
// is empty.
func EncodeBoard(b Board, keys ...string) (identity.Attributes, error) {
	if len(keys) == 0 {
		keys = BoardKeys
	}
	attrs := identity.Attributes{}
	for _, k := range keys {
		var v any
		switch k {
		case KeyPlannerEntries:
			v = nonNil(b.Tasks)
		case KeyEmotionalCheckins:
			v = nonNil(b.Checkins)
		case KeyBrainDumpEntries:
			v = nonNil(b.BrainDump)
		case KeyFocusSessions:
			v = nonNil(b.Sessions)
		default:
			return nil, fmt.Errorf("unknown collection key %q", k)
		}
		if err := attrs.Set(k, v); err != nil {
			return nil, err
		}
	}
	return attrs, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
