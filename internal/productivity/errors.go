package productivity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyText   = errors.New("text is empty")
	ErrInvalidTime = errors.New("time must be HH:MM")
	ErrInvalidMood = errors.New("unknown mood")
	ErrClosed      = errors.New("session closed")
)

// PersistError reports a write that still failed after every retry. The
// change it carried is kept by the outbox until a retry or a newer write of
// the same keys succeeds.
type PersistError struct {
	Keys     []string
	Attempts int
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s after %d attempt(s): %v", strings.Join(e.Keys, ", "), e.Attempts, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
