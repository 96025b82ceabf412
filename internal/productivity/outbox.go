package productivity

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sadopc/focusnest/internal/identity"
)

// RetryPolicy bounds how hard the outbox tries to deliver one write.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxAttempts counts the first try. Zero retries until the outbox closes.
	MaxAttempts int
}

var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: 250 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	MaxAttempts:     5,
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0
	eb.Reset()

	var b backoff.BackOff = eb
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}

// Outbox delivers one user's attribute writes in order on a single worker
// goroutine. Writes queued while another is in flight are merged key by key,
// the newest value winning, and their receipts resolve together.
type Outbox struct {
	store  identity.AttributeStore
	userID string
	policy RetryPolicy
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}
	stop   chan struct{}
	done   chan struct{}

	mu      sync.Mutex
	pending identity.Attributes
	waiters []*Receipt
	failed  identity.Attributes
	lastErr *PersistError
	closed  bool
}

// NewOutbox starts the delivery worker. Call Close to flush and stop it.
func NewOutbox(store identity.AttributeStore, userID string, policy RetryPolicy, logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	o := &Outbox{
		store:  store,
		userID: userID,
		policy: policy,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go o.run()
	return o
}

// Enqueue queues patch and returns at once. An empty patch returns nil.
func (o *Outbox) Enqueue(patch identity.Attributes) *Receipt {
	if len(patch) == 0 {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return failedReceipt(patch.Keys(), ErrClosed)
	}
	o.pending = o.pending.Merge(patch)
	r := newReceipt(patch.Keys())
	o.waiters = append(o.waiters, r)
	o.signal()
	return r
}

// Retry re-queues the writes that failed. Anything queued since then is
// newer and wins over the failed values. Returns nil when nothing failed.
func (o *Outbox) Retry() *Receipt {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failed == nil {
		return nil
	}
	keys := o.failed.Keys()
	if o.closed {
		return failedReceipt(keys, ErrClosed)
	}
	o.pending = o.failed.Merge(o.pending)
	o.failed, o.lastErr = nil, nil
	r := newReceipt(keys)
	o.waiters = append(o.waiters, r)
	o.signal()
	return r
}

// Failed returns the outstanding delivery failure, if any. Its Keys name
// every key whose latest value has not reached the store.
func (o *Outbox) Failed() *PersistError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Close delivers everything still queued and stops the worker. If ctx ends
// first, in-flight retries are abandoned and their receipts fail.
func (o *Outbox) Close(ctx context.Context) error {
	o.mu.Lock()
	already := o.closed
	o.closed = true
	o.mu.Unlock()
	if !already {
		close(o.stop)
	}

	select {
	case <-o.done:
		o.cancel()
		return nil
	case <-ctx.Done():
		o.cancel()
		<-o.done
		return ctx.Err()
	}
}

func (o *Outbox) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Outbox) run() {
	defer close(o.done)
	for {
		select {
		case <-o.wake:
			o.flush()
		case <-o.stop:
			o.flush()
			return
		}
	}
}

func (o *Outbox) flush() {
	for {
		o.mu.Lock()
		patch, waiters := o.pending, o.waiters
		o.pending, o.waiters = nil, nil
		o.mu.Unlock()
		if len(patch) == 0 {
			return
		}

		perr := o.deliver(patch)

		o.mu.Lock()
		if perr != nil {
			o.failed = o.failed.Merge(patch)
		} else if o.failed != nil {
			maps.DeleteFunc(o.failed, func(k string, _ json.RawMessage) bool {
				_, written := patch[k]
				return written
			})
		}
		switch {
		case len(o.failed) == 0:
			o.failed, o.lastErr = nil, nil
		case perr != nil:
			o.lastErr = &PersistError{Keys: o.failed.Keys(), Attempts: perr.Attempts, Err: perr.Err}
		case o.lastErr != nil:
			o.lastErr = &PersistError{Keys: o.failed.Keys(), Attempts: o.lastErr.Attempts, Err: o.lastErr.Err}
		}
		o.mu.Unlock()

		var err error
		if perr != nil {
			err = perr
		}
		for _, w := range waiters {
			w.resolve(err)
		}
	}
}

func (o *Outbox) deliver(patch identity.Attributes) *PersistError {
	keys := patch.Keys()
	attempts := 0
	op := func() error {
		attempts++
		return o.store.UpdateAttributes(o.ctx, o.userID, patch)
	}
	notify := func(err error, wait time.Duration) {
		o.logger.Warn("Persist attempt failed",
			"user_id", o.userID, "keys", keys, "attempt", attempts, "retry_in", wait, "error", err)
	}

	if err := backoff.RetryNotify(op, o.policy.backOff(o.ctx), notify); err != nil {
		o.logger.Error("Persist failed",
			"user_id", o.userID, "keys", keys, "attempts", attempts, "error", err)
		return &PersistError{Keys: slices.Clone(keys), Attempts: attempts, Err: err}
	}
	o.logger.Debug("Persisted attributes", "user_id", o.userID, "keys", keys, "attempts", attempts)
	return nil
}
