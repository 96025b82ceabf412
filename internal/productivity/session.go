package productivity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/identity"
)

// Snapshot is an immutable view of a session's state.
type Snapshot struct {
	Board
	Memberships catalog.Memberships `json:"memberships"`
	Timer       TimerState          `json:"timer"`
}

type options struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	policy RetryPolicy
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces time.Now for timestamps on new entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces uuid.NewString for new entry ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) { o.policy = p }
}

// Session owns one signed-in user's productivity record, memberships and
// focus timer. Every change to a persisted collection is queued on the
// session's outbox before the method returns. Safe for concurrent use.
type Session struct {
	ident  identity.Identity
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	outbox *Outbox

	mu      sync.Mutex
	board   Board
	members catalog.Memberships
	timer   Timer
	closed  bool
}

// Open loads ident's record from store and starts its outbox.
func Open(ctx context.Context, ident identity.Identity, store identity.AttributeStore, opts ...Option) (*Session, error) {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		newID:  uuid.NewString,
		policy: DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("user_id", ident.UserID)

	attrs, err := store.LoadAttributes(ctx, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	board, issues := DecodeBoard(attrs)
	members, more := catalog.DecodeMemberships(attrs)
	for _, issue := range append(issues, more...) {
		logger.Warn("Dropped malformed record", "error", issue)
	}
	logger.Info("Session opened",
		"tasks", len(board.Tasks), "checkins", len(board.Checkins),
		"notes", len(board.BrainDump), "sessions", len(board.Sessions))

	return &Session{
		ident:   ident,
		logger:  logger,
		now:     o.now,
		newID:   o.newID,
		outbox:  NewOutbox(store, ident.UserID, o.policy, logger),
		board:   board,
		members: members,
		timer:   NewTimer(),
	}, nil
}

func (s *Session) Identity() identity.Identity {
	return s.ident
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{Board: s.board, Memberships: s.members, Timer: s.timer.State()}
}

// persistBoard queues the named collections. Callers hold s.mu so writes
// reach the outbox in mutation order.
func (s *Session) persistBoard(keys ...string) *Receipt {
	patch, err := EncodeBoard(s.board, keys...)
	if err != nil {
		return failedReceipt(keys, err)
	}
	return s.outbox.Enqueue(patch)
}

func (s *Session) persistMembers(keys ...string) *Receipt {
	patch, err := s.members.Patch(keys...)
	if err != nil {
		return failedReceipt(keys, err)
	}
	return s.outbox.Enqueue(patch)
}

// apply runs a board change under the lock. A change that reports false
// leaves the state alone and persists nothing.
func (s *Session) apply(key string, change func(Board) (Board, bool, error)) (Snapshot, *Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.snapshot(), nil, ErrClosed
	}
	next, changed, err := change(s.board)
	if err != nil || !changed {
		return s.snapshot(), nil, err
	}
	s.board = next
	return s.snapshot(), s.persistBoard(key), nil
}

// AddTask appends a pending task. An empty or unreadable time uses
// DefaultTaskTime.
func (s *Session) AddTask(at, text string) (Snapshot, *Receipt, error) {
	return s.apply(KeyPlannerEntries, func(b Board) (Board, bool, error) {
		b, err := b.AddTask(s.newID(), at, text, s.now())
		return b, err == nil, err
	})
}

func (s *Session) ToggleTask(id string) (Snapshot, *Receipt, error) {
	return s.apply(KeyPlannerEntries, func(b Board) (Board, bool, error) {
		b, ok := b.ToggleTask(id)
		return b, ok, nil
	})
}

func (s *Session) DeleteTask(id string) (Snapshot, *Receipt, error) {
	return s.apply(KeyPlannerEntries, func(b Board) (Board, bool, error) {
		b, ok := b.DeleteTask(id)
		return b, ok, nil
	})
}

func (s *Session) AddCheckin(mood Mood, notes string) (Snapshot, *Receipt, error) {
	return s.apply(KeyEmotionalCheckins, func(b Board) (Board, bool, error) {
		b, err := b.AddCheckin(s.newID(), mood, notes, s.now())
		return b, err == nil, err
	})
}

func (s *Session) AddBrainDump(content string) (Snapshot, *Receipt, error) {
	return s.apply(KeyBrainDumpEntries, func(b Board) (Board, bool, error) {
		b, err := b.AddBrainDump(s.newID(), content, s.now())
		return b, err == nil, err
	})
}

func (s *Session) DeleteBrainDump(id string) (Snapshot, *Receipt, error) {
	return s.apply(KeyBrainDumpEntries, func(b Board) (Board, bool, error) {
		b, ok := b.DeleteBrainDump(id)
		return b, ok, nil
	})
}

// RecordFocusSession records a completed work phase counted down by the
// caller rather than by this session's timer.
func (s *Session) RecordFocusSession() (Snapshot, *Receipt, error) {
	return s.apply(KeyFocusSessions, func(b Board) (Board, bool, error) {
		return b.RecordSession(s.newID(), s.now()), true, nil
	})
}

// ======================================================================
// Timer
// ======================================================================

// Tick counts the timer down one second. Reaching zero does not complete
// the phase; callers watch Snapshot.Timer and call CompletePhase at zero.
func (s *Session) Tick() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = s.timer.Tick()
	return s.snapshot()
}

func (s *Session) ToggleRunning() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = s.timer.ToggleRunning()
	return s.snapshot()
}

func (s *Session) ResetTimer() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = s.timer.Reset()
	return s.snapshot()
}

// CompletePhase ends an expired phase. Finishing a work phase records a
// focus session and returns its receipt; otherwise the receipt is nil.
func (s *Session) CompletePhase() (Snapshot, *Receipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, worked := s.timer.Complete()
	s.timer = next
	if !worked || s.closed {
		return s.snapshot(), nil
	}
	s.board = s.board.RecordSession(s.newID(), s.now())
	s.logger.Debug("Focus session completed", "total", len(s.board.Sessions))
	return s.snapshot(), s.persistBoard(KeyFocusSessions)
}

// ======================================================================
// Memberships
// ======================================================================

func (s *Session) applyMembers(key string, change func(catalog.Memberships) (catalog.Memberships, bool)) (Snapshot, *Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.snapshot(), nil, ErrClosed
	}
	next, changed := change(s.members)
	if !changed {
		return s.snapshot(), nil, nil
	}
	s.members = next
	return s.snapshot(), s.persistMembers(key), nil
}

// Enroll adds courseID to the enrolled courses. Enrolling twice is a no-op.
func (s *Session) Enroll(courseID string) (Snapshot, *Receipt, error) {
	return s.applyMembers(catalog.KeyEnrolledCourses, func(m catalog.Memberships) (catalog.Memberships, bool) {
		return m.Enroll(courseID)
	})
}

// RegisterEvent adds eventID to the registered events. Registering twice is
// a no-op.
func (s *Session) RegisterEvent(eventID string) (Snapshot, *Receipt, error) {
	return s.applyMembers(catalog.KeyRegisteredEvents, func(m catalog.Memberships) (catalog.Memberships, bool) {
		return m.Register(eventID)
	})
}

// ToggleFavorite adds or removes resourceID from the favorites.
func (s *Session) ToggleFavorite(resourceID string) (Snapshot, *Receipt, error) {
	return s.applyMembers(catalog.KeyFavoriteResources, func(m catalog.Memberships) (catalog.Memberships, bool) {
		if resourceID == "" {
			return m, false
		}
		m, _ = m.ToggleFavorite(resourceID)
		return m, true
	})
}

// ======================================================================
// Persistence
// ======================================================================

// Failed returns the outstanding persistence failure, if any.
func (s *Session) Failed() *PersistError {
	return s.outbox.Failed()
}

// RetryFailed re-queues writes that failed after all retries. Returns nil
// when nothing is outstanding.
func (s *Session) RetryFailed() *Receipt {
	return s.outbox.Retry()
}

// Close flushes queued writes and stops the session. Later mutations fail
// with ErrClosed.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	err := s.outbox.Close(ctx)
	s.logger.Info("Session closed", "error", err)
	return err
}
