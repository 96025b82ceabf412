package productivity

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/identity"
)

func TestOpenDefaultsMissingCollections(t *testing.T) {
	s := openTestSession(t, newMemStore())
	snap := s.Snapshot()
	assert.Empty(t, snap.Tasks)
	assert.NotNil(t, snap.Tasks)
	assert.Empty(t, snap.Memberships.EnrolledCourses)
	assert.Equal(t, NewTimer().State(), snap.Timer)
	assert.Equal(t, testUser, s.Identity())
}

func TestOpenFailsWhenLoadFails(t *testing.T) {
	st := &mockStore{}
	st.On("LoadAttributes", mock.Anything, "u1").Return(nil, errStoreDown)
	_, err := Open(context.Background(), testUser, st)
	assert.ErrorIs(t, err, errStoreDown)
	st.AssertExpectations(t)
}

func TestSessionPersistsOnlyChangedCollection(t *testing.T) {
	st := newMemStore()
	s := openTestSession(t, st)

	snap, r, err := s.AddTask("", "plan week")
	require.NoError(t, err)
	waitOK(t, r)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, PlannerEntry{ID: "e1", Time: "09:00", Task: "plan week", Status: StatusPending, CreatedAt: t0}, snap.Tasks[0])

	_, r, err = s.AddCheckin(MoodFocused, "good start")
	require.NoError(t, err)
	waitOK(t, r)

	_, r, err = s.AddBrainDump("buy milk")
	require.NoError(t, err)
	waitOK(t, r)

	assert.Equal(t, [][]string{{KeyPlannerEntries}, {KeyEmotionalCheckins}, {KeyBrainDumpEntries}}, st.writeKeys())
}

func TestSessionRejectionsPersistNothing(t *testing.T) {
	st := newMemStore()
	s := openTestSession(t, st)
	before := s.Snapshot()

	_, r, err := s.AddTask("09:00", "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Nil(t, r)

	_, r, err = s.AddCheckin(Mood("meh"), "")
	assert.ErrorIs(t, err, ErrInvalidMood)
	assert.Nil(t, r)

	_, r, err = s.AddBrainDump("")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Nil(t, r)

	for _, op := range []func(string) (Snapshot, *Receipt, error){s.ToggleTask, s.DeleteTask, s.DeleteBrainDump} {
		_, r, err = op("missing")
		assert.NoError(t, err)
		assert.Nil(t, r)
	}

	assert.Equal(t, before, s.Snapshot())
	require.NoError(t, s.Close(context.Background()))
	assert.Empty(t, st.writeKeys())
}

func TestSessionKeepsTaskWithUnreadableTime(t *testing.T) {
	st := newMemStore()
	st.docs["u1"] = identity.Attributes{
		KeyPlannerEntries: json.RawMessage(`[{"_id":"a","pEntryTime":"9:00 AM","pEntryTask":"call doctor","pEntryStatus":"pending"}]`),
	}
	s := openTestSession(t, st)
	require.Len(t, s.Snapshot().Tasks, 1)

	_, r, err := s.AddTask("10:00", "new")
	require.NoError(t, err)
	waitOK(t, r)
	require.NoError(t, s.Close(context.Background()))

	b, issues := DecodeBoard(st.doc("u1"))
	assert.Empty(t, issues)
	require.Len(t, b.Tasks, 2)
	assert.Equal(t, "a", b.Tasks[0].ID)
	assert.Equal(t, "call doctor", b.Tasks[0].Task)
	assert.Equal(t, DefaultTaskTime, b.Tasks[0].Time)
	assert.Equal(t, "new", b.Tasks[1].Task)
	assert.Equal(t, "10:00", b.Tasks[1].Time)
}

func TestSessionFocusCycle(t *testing.T) {
	st := newMemStore()
	s := openTestSession(t, st)

	s.ToggleRunning()
	for range WorkSeconds {
		s.Tick()
	}
	snap, r := s.CompletePhase()
	waitOK(t, r)
	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, FocusSession{ID: "e1", Duration: 25, CompletedAt: t0}, snap.Sessions[0])
	assert.Equal(t, TimerState{SecondsRemaining: BreakSeconds}, snap.Timer)

	snap, r = s.CompletePhase()
	assert.Nil(t, r, "completing an unexpired phase does nothing")
	assert.Len(t, snap.Sessions, 1)

	s.ToggleRunning()
	for range BreakSeconds {
		s.Tick()
	}
	snap, r = s.CompletePhase()
	assert.Nil(t, r)
	assert.Len(t, snap.Sessions, 1)
	assert.Equal(t, TimerState{SecondsRemaining: WorkSeconds, IsWorkPhase: true}, snap.Timer)

	assert.Equal(t, [][]string{{KeyFocusSessions}}, st.writeKeys())
}

func TestSessionResetMidCountdown(t *testing.T) {
	s := openTestSession(t, newMemStore())
	s.ToggleRunning()
	for range 600 {
		s.Tick()
	}
	assert.Equal(t, 900, s.Snapshot().Timer.SecondsRemaining)
	snap := s.ResetTimer()
	assert.Equal(t, TimerState{SecondsRemaining: 1500, IsWorkPhase: true}, snap.Timer)
	assert.Empty(t, snap.Sessions)
}

func TestSessionMemberships(t *testing.T) {
	st := newMemStore()
	s := openTestSession(t, st)

	_, r, err := s.Enroll("course_1")
	require.NoError(t, err)
	waitOK(t, r)
	snap, r, err := s.Enroll("course_1")
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, []string{"course_1"}, snap.Memberships.EnrolledCourses)

	_, r, _ = s.RegisterEvent("event_2")
	waitOK(t, r)
	_, r, _ = s.ToggleFavorite("resource_1")
	waitOK(t, r)
	snap, r, _ = s.ToggleFavorite("resource_1")
	waitOK(t, r)
	assert.Empty(t, snap.Memberships.FavoriteResources)

	doc := st.doc("u1")
	assert.JSONEq(t, `["course_1"]`, string(doc[catalog.KeyEnrolledCourses]))
	assert.JSONEq(t, `["event_2"]`, string(doc[catalog.KeyRegisteredEvents]))
	assert.JSONEq(t, `[]`, string(doc[catalog.KeyFavoriteResources]))
}

func TestSessionClosedRejectsMutations(t *testing.T) {
	s := openTestSession(t, newMemStore())
	require.NoError(t, s.Close(context.Background()))

	_, r, err := s.AddTask("", "late")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, r)
	_, _, err = s.Enroll("course_1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSessionSurfacesPersistFailure(t *testing.T) {
	st := newMemStore()
	st.setFail(3)
	s := openTestSession(t, st)

	snap, r, err := s.AddBrainDump("idea")
	require.NoError(t, err)
	assert.Len(t, snap.BrainDump, 1, "state applies before the write lands")

	werr := r.Wait(context.Background())
	var perr *PersistError
	require.True(t, errors.As(werr, &perr))
	assert.Equal(t, []string{KeyBrainDumpEntries}, s.Failed().Keys)

	waitOK(t, s.RetryFailed())
	assert.Nil(t, s.Failed())
	b, issues := DecodeBoard(st.doc("u1"))
	assert.Empty(t, issues)
	assert.Equal(t, snap.BrainDump, b.BrainDump)
}

func TestSessionRoundTrip(t *testing.T) {
	seed := Board{
		Tasks: []PlannerEntry{
			{ID: "t1", Time: "08:00", Task: "stretch", Status: StatusCompleted, CreatedAt: t0},
			{ID: "t2", Time: "10:00", Task: "email", Status: StatusInProgress, CreatedAt: t0},
		},
		Checkins:  []EmotionalCheckin{{ID: "c1", Mood: MoodCalm, Date: t0}},
		BrainDump: []BrainDumpEntry{{ID: "d2", Content: "two", CreatedAt: t0}, {ID: "d1", Content: "one", CreatedAt: t0}},
		Sessions:  []FocusSession{{ID: "s1", Duration: 25, CompletedAt: t0}},
	}
	attrs, err := EncodeBoard(seed)
	require.NoError(t, err)
	st := newMemStore()
	st.docs["u1"] = attrs

	s := openTestSession(t, st)
	assert.Equal(t, seed, s.Snapshot().Board)

	_, r, err := s.AddBrainDump("three")
	require.NoError(t, err)
	waitOK(t, r)
	_, r, err = s.DeleteTask("t1")
	require.NoError(t, err)
	waitOK(t, r)

	got, issues := DecodeBoard(st.doc("u1"))
	assert.Empty(t, issues)
	want := seed
	want.Tasks = seed.Tasks[1:]
	want.BrainDump = append([]BrainDumpEntry{{ID: "e1", Content: "three", CreatedAt: t0}}, seed.BrainDump...)
	assert.Equal(t, want, got)
}

func TestSessionConcurrentUse(t *testing.T) {
	st := newMemStore()
	s := openTestSession(t, st)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.AddTask("12:00", "parallel")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.NoError(t, s.Close(context.Background()))

	var tasks []PlannerEntry
	require.NoError(t, json.Unmarshal(st.doc("u1")[KeyPlannerEntries], &tasks))
	assert.Len(t, tasks, 20)
}

// ======================================================================
// Registry
// ======================================================================

func TestRegistryAcquireRelease(t *testing.T) {
	st := newMemStore()
	reg := NewRegistry(st, WithRetryPolicy(fastRetry))
	ctx := context.Background()

	a, err := reg.Acquire(ctx, testUser)
	require.NoError(t, err)
	b, err := reg.Acquire(ctx, testUser)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, reg.Len())

	_, r, err := a.AddTask("", "persist me")
	require.NoError(t, err)

	require.NoError(t, reg.Release(ctx, testUser.UserID))
	assert.NoError(t, r.Err())
	_, _, err = a.AddTask("", "too late")
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, reg.Release(ctx, testUser.UserID))

	c, err := reg.Acquire(ctx, testUser)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Len(t, c.Snapshot().Tasks, 1)

	other := identity.Identity{UserID: "u2"}
	_, err = reg.Acquire(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	require.NoError(t, reg.Close(ctx))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryConcurrentAcquireSharesSession(t *testing.T) {
	reg := NewRegistry(newMemStore())
	defer reg.Close(context.Background())

	var wg sync.WaitGroup
	got := make([]*Session, 10)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := reg.Acquire(context.Background(), testUser)
			assert.NoError(t, err)
			got[i] = s
		}()
	}
	wg.Wait()
	for _, s := range got[1:] {
		assert.Same(t, got[0], s)
	}
}

// blockingLoadStore holds LoadAttributes until release is closed.
type blockingLoadStore struct {
	*memStore
	loading chan struct{}
	release chan struct{}
}

func (b *blockingLoadStore) LoadAttributes(ctx context.Context, userID string) (identity.Attributes, error) {
	b.loading <- struct{}{}
	<-b.release
	return b.memStore.LoadAttributes(ctx, userID)
}

func TestRegistryReleaseDuringLoadDiscardsSession(t *testing.T) {
	st := &blockingLoadStore{memStore: newMemStore(), loading: make(chan struct{}, 1), release: make(chan struct{})}
	reg := NewRegistry(st)
	defer reg.Close(context.Background())
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := reg.Acquire(ctx, testUser)
		errc <- err
	}()
	<-st.loading

	require.NoError(t, reg.Release(ctx, testUser.UserID))
	close(st.release)

	assert.ErrorIs(t, <-errc, ErrClosed)
	assert.Equal(t, 0, reg.Len())

	// The next request after logout loads a fresh session.
	st.loading = make(chan struct{}, 1)
	s, err := reg.Acquire(ctx, testUser)
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryClosedRefusesAcquire(t *testing.T) {
	reg := NewRegistry(newMemStore())
	ctx := context.Background()
	require.NoError(t, reg.Close(ctx))

	_, err := reg.Acquire(ctx, testUser)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, reg.Len())
}
