package productivity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusnest/internal/identity"
)

var errStoreDown = errors.New("store down")

var fastRetry = RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, MaxAttempts: 3}

// memStore is an in-memory AttributeStore. When gate is set every update
// announces itself on entered and then waits for a token on gate.
type memStore struct {
	mu     sync.Mutex
	docs   map[string]identity.Attributes
	writes []identity.Attributes
	failN  int

	entered chan struct{}
	gate    chan struct{}
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]identity.Attributes{}}
}

func newGatedStore() *memStore {
	m := newMemStore()
	m.entered = make(chan struct{}, 16)
	m.gate = make(chan struct{})
	return m
}

func (m *memStore) LoadAttributes(_ context.Context, userID string) (identity.Attributes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[userID].Clone(), nil
}

func (m *memStore) UpdateAttributes(ctx context.Context, userID string, patch identity.Attributes) error {
	if m.gate != nil {
		m.entered <- struct{}{}
		select {
		case <-m.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failN > 0 {
		m.failN--
		return errStoreDown
	}
	m.docs[userID] = m.docs[userID].Merge(patch)
	m.writes = append(m.writes, patch.Clone())
	return nil
}

func (m *memStore) setFail(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failN = n
}

func (m *memStore) doc(userID string) identity.Attributes {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[userID].Clone()
}

func (m *memStore) writeKeys() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.writes))
	for i, w := range m.writes {
		out[i] = w.Keys()
	}
	return out
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) LoadAttributes(ctx context.Context, userID string) (identity.Attributes, error) {
	args := m.Called(ctx, userID)
	attrs, _ := args.Get(0).(identity.Attributes)
	return attrs, args.Error(1)
}

func (m *mockStore) UpdateAttributes(ctx context.Context, userID string, patch identity.Attributes) error {
	return m.Called(ctx, userID, patch).Error(0)
}

// sequentialIDs returns e1, e2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("e%d", n)
	}
}

var testUser = identity.Identity{UserID: "u1", FirstName: "Sam", Email: "sam@example.com", Type: identity.TypeUser}

func openTestSession(t *testing.T, store identity.AttributeStore) *Session {
	t.Helper()
	s, err := Open(context.Background(), testUser, store,
		WithClock(func() time.Time { return t0 }),
		WithIDGenerator(sequentialIDs()),
		WithRetryPolicy(fastRetry),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func waitOK(t *testing.T, r *Receipt) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx))
}
