// internal/application/usecase/cart_sessions.go
package usecase

import (
	"context"
	"strings"
	"sync"

	cartdom "coplace/internal/domain/cart"
	"coplace/internal/domain/common"
)

// CartSessions owns one CartAggregate per signed-in user.
//
//	logged-out -> Login -> subscribed -> mutations* -> Logout -> logged-out
type CartSessions struct {
	repo  cartdom.Repository
	clock common.Clock

	mu   sync.Mutex
	byID map[string]*CartAggregate
}

func NewCartSessions(repo cartdom.Repository, clock common.Clock) *CartSessions {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &CartSessions{repo: repo, clock: clock, byID: map[string]*CartAggregate{}}
}

// Login creates and starts the user's aggregate. Logging in again returns
// the existing aggregate with the refreshed profile fields.
//
// The listener outlives the request, so ctx cancellation is detached; only
// ctx values are kept.
func (s *CartSessions) Login(ctx context.Context, sess Session) (*CartAggregate, error) {
	uid := strings.TrimSpace(sess.UID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.byID[uid]; ok {
		a.setProfile(sess)
		return a, nil
	}

	a, err := NewCartAggregate(sess, s.repo, s.clock)
	if err != nil {
		return nil, err
	}
	if err := a.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}
	s.byID[uid] = a
	return a, nil
}

// Logout closes and forgets the aggregate. It reports whether one existed.
func (s *CartSessions) Logout(uid string) bool {
	uid = strings.TrimSpace(uid)
	s.mu.Lock()
	a, ok := s.byID[uid]
	delete(s.byID, uid)
	s.mu.Unlock()

	if ok {
		a.Close()
	}
	return ok
}

func (s *CartSessions) Get(uid string) (*CartAggregate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[strings.TrimSpace(uid)]
	return a, ok
}

// Close logs everyone out (shutdown).
func (s *CartSessions) Close() {
	s.mu.Lock()
	all := s.byID
	s.byID = map[string]*CartAggregate{}
	s.mu.Unlock()

	for _, a := range all {
		a.Close()
	}
}
