package productivity

import (
	"context"
	"slices"
)

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Receipt tracks one queued write. A nil *Receipt means nothing needed to be
// written and behaves as an already-successful receipt.
type Receipt struct {
	keys []string
	done chan struct{}
	err  error
}

func newReceipt(keys []string) *Receipt {
	return &Receipt{keys: slices.Clone(keys), done: make(chan struct{})}
}

func failedReceipt(keys []string, err error) *Receipt {
	r := newReceipt(keys)
	r.resolve(err)
	return r
}

// resolve must be called exactly once.
func (r *Receipt) resolve(err error) {
	r.err = err
	close(r.done)
}

// Done is closed once the write has succeeded or finally failed.
func (r *Receipt) Done() <-chan struct{} {
	if r == nil {
		return closedChan
	}
	return r.done
}

// Err returns the delivery result once Done is closed, nil before.
func (r *Receipt) Err() error {
	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the write resolves or ctx ends.
func (r *Receipt) Wait(ctx context.Context) error {
	select {
	case <-r.Done():
		return r.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Keys are the attribute keys the write carries.
func (r *Receipt) Keys() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.keys)
}
