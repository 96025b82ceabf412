package productivity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sadopc/focusnest/internal/identity"
)

// Registry keeps one open Session per user for servers that handle many
// requests for the same identity.
type Registry struct {
	store identity.AttributeStore
	opts  []Option
	group singleflight.Group

	mu       sync.Mutex
	sessions map[string]*Session
	// releases counts Release calls per user. A load that started before a
	// Release is discarded instead of stored.
	releases map[string]uint64
	closed   bool
}

func NewRegistry(store identity.AttributeStore, opts ...Option) *Registry {
	return &Registry{store: store, opts: opts, sessions: map[string]*Session{}, releases: map[string]uint64{}}
}

func (r *Registry) lookup(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Acquire returns the user's open session, loading it on first use.
// Concurrent first calls share one load. A load overtaken by Release or
// Close is closed again and reported as ErrClosed.
func (r *Registry) Acquire(ctx context.Context, ident identity.Identity) (*Session, error) {
	if s, ok := r.lookup(ident.UserID); ok {
		return s, nil
	}
	v, err, _ := r.group.Do(ident.UserID, func() (any, error) {
		r.mu.Lock()
		if s, ok := r.sessions[ident.UserID]; ok {
			r.mu.Unlock()
			return s, nil
		}
		if r.closed {
			r.mu.Unlock()
			return nil, ErrClosed
		}
		epoch := r.releases[ident.UserID]
		r.mu.Unlock()

		s, err := Open(ctx, ident, r.store, r.opts...)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		stale := r.closed || r.releases[ident.UserID] != epoch
		if !stale {
			r.sessions[ident.UserID] = s
		}
		r.mu.Unlock()
		if stale {
			_ = s.Close(ctx)
			return nil, ErrClosed
		}
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return v.(*Session), nil
}

// Release closes and forgets the user's session. The next Acquire reloads
// from the store.
func (r *Registry) Release(ctx context.Context, userID string) error {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.releases[userID]++
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Close(ctx)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close releases every session.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*Session{}
	r.closed = true
	r.mu.Unlock()

	var errs []error
	for id, s := range sessions {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
