// Package lock provides the serialization point around read-mutate-write cycles
// on the zoning documents.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAcquired is returned when the lock could not be taken before the context ended
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serializes access to the persisted documents.
// The returned release func is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context) (release func(), err error)
}

// Local is an in-process Locker. It is enough when a single console process
// owns the data directory.
type Local struct {
	ch chan struct{}
}

// NewLocal returns an unlocked Local
func NewLocal() *Local {
	return &Local{ch: make(chan struct{}, 1)}
}

// Lock blocks until the lock is free or ctx is done
func (l *Local) Lock(ctx context.Context) (func(), error) {
	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.Join(ErrNotAcquired, ctx.Err())
	}
	var once sync.Once
	return func() {
		once.Do(func() { <-l.ch })
	}, nil
}
