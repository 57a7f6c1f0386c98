// internal/domain/common/repository_common.go
package common

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Subscription is the handle returned by every live listener (store watches,
// projection views, feed listeners).
//
// Delivery and Cancel are serialized: once Cancel has returned, no callback
// guarded by Deliver runs again. A callback must not call Cancel on its own
// subscription synchronously (it would wait on itself); hand it to a goroutine.
type Subscription struct {
	mu       sync.Mutex // held while a callback runs
	canceled atomic.Bool

	once sync.Once
	stop func()
}

// NewSubscription returns an active subscription. stop (optional) releases the
// underlying resource (backend listener, goroutine) and runs once.
func NewSubscription(stop func()) *Subscription {
	return &Subscription{stop: stop}
}

// Deliver runs fn unless the subscription is canceled. It reports whether fn ran.
func (s *Subscription) Deliver(fn func()) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled.Load() {
		return false
	}
	fn()
	return true
}

// Cancel stops delivery and releases the underlying resource. Idempotent.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.canceled.Store(true)
		// wait for an in-flight callback to finish
		s.mu.Lock()
		s.mu.Unlock()

		if s.stop != nil {
			s.stop()
		}
	})
}

// Canceled reports whether Cancel was called.
func (s *Subscription) Canceled() bool {
	if s == nil {
		return true
	}
	return s.canceled.Load()
}

// ErrorHandler receives listener errors (permission denied, network loss).
// A nil handler drops them.
type ErrorHandler func(error)
