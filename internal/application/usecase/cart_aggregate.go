// internal/application/usecase/cart_aggregate.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	cartdom "coplace/internal/domain/cart"
	"coplace/internal/domain/common"
	productdom "coplace/internal/domain/product"
)

var (
	ErrCartClosed          = errors.New("cart_aggregate: closed")
	ErrCartInvalidArgument = errors.New("cart_aggregate: invalid argument")
)

// CartAggregate is one user's optimistic cart.
//
// Every mutation is applied to local state first (listeners see it at once),
// then the full cart document is written. A failed write is returned to the
// caller but not rolled back. Remote snapshots replace local state whenever
// they arrive, including while a local write is still in flight; the last
// observed write wins.
type CartAggregate struct {
	session Session
	repo    cartdom.Repository
	clock   common.Clock

	ready     chan struct{} // closed by the first remote snapshot
	readyOnce sync.Once

	mu        sync.Mutex
	cart      *cartdom.Cart
	sub       *common.Subscription
	closed    bool
	nextLis   int
	listeners map[int]*cartListener
}

type cartListener struct {
	sub *common.Subscription
	fn  func(*cartdom.Cart)
}

func NewCartAggregate(session Session, repo cartdom.Repository, clock common.Clock) (*CartAggregate, error) {
	uid := strings.TrimSpace(session.UID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}
	if clock == nil {
		clock = common.SystemClock{}
	}
	session.UID = uid
	c, err := cartdom.NewCart(uid, time.Time{})
	if err != nil {
		return nil, err
	}
	return &CartAggregate{
		session:   session,
		repo:      repo,
		clock:     clock,
		cart:      c,
		ready:     make(chan struct{}),
		listeners: map[int]*cartListener{},
	}, nil
}

func (a *CartAggregate) Session() Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// setProfile refreshes the denormalized name/email on re-login.
func (a *CartAggregate) setProfile(s Session) {
	a.mu.Lock()
	a.session.DisplayName = s.DisplayName
	a.session.Email = s.Email
	a.session.Role = s.Role
	a.mu.Unlock()
}

// Start subscribes to carts/{uid}. An absent document is an empty cart.
func (a *CartAggregate) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrCartClosed
	}
	if a.sub != nil {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	sub, err := a.repo.Watch(ctx, a.session.UID, a.onRemote, a.onError)
	if err != nil {
		return fmt.Errorf("cart_aggregate: watch: %w", err)
	}

	a.mu.Lock()
	if a.closed || a.sub != nil {
		a.mu.Unlock()
		sub.Cancel()
		return nil
	}
	a.sub = sub
	a.mu.Unlock()
	return nil
}

func (a *CartAggregate) onRemote(c *cartdom.Cart) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if c == nil {
		a.cart = cartdom.FromItems(a.session.UID, nil, a.clock.Now())
	} else {
		a.cart = c.Clone()
	}
	a.mu.Unlock()
	a.readyOnce.Do(func() { close(a.ready) })
	a.notify()
}

// WaitReady blocks until the first remote snapshot has replaced the empty
// initial state, so a fresh session does not overwrite a stored cart.
func (a *CartAggregate) WaitReady(ctx context.Context) error {
	select {
	case <-a.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *CartAggregate) onError(err error) {
	log.Printf("[cart] listener error uid=%s: %v", a.session.UID, err)
}

// Close cancels the listener and drops local state. The stored cart is kept.
func (a *CartAggregate) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	sub := a.sub
	a.sub = nil
	a.cart = cartdom.FromItems(a.session.UID, nil, time.Time{})
	lis := make([]*cartListener, 0, len(a.listeners))
	for _, l := range a.listeners {
		lis = append(lis, l)
	}
	a.listeners = map[int]*cartListener{}
	a.mu.Unlock()

	sub.Cancel()
	for _, l := range lis {
		l.sub.Cancel()
	}
}

// OnChange registers a listener for local and remote state changes.
func (a *CartAggregate) OnChange(fn func(*cartdom.Cart)) *common.Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		sub := common.NewSubscription(nil)
		sub.Cancel()
		return sub
	}
	a.nextLis++
	id := a.nextLis
	l := &cartListener{fn: fn}
	l.sub = common.NewSubscription(func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	})
	a.listeners[id] = l
	return l.sub
}

// notify hands each listener the state current at delivery time.
func (a *CartAggregate) notify() {
	a.mu.Lock()
	lis := make([]*cartListener, 0, len(a.listeners))
	for _, l := range a.listeners {
		lis = append(lis, l)
	}
	a.mu.Unlock()

	for _, l := range lis {
		l := l
		l.sub.Deliver(func() { l.fn(a.Snapshot()) })
	}
}

// Snapshot returns a copy of the local cart.
func (a *CartAggregate) Snapshot() *cartdom.Cart {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cart.Clone()
}

func (a *CartAggregate) Entries() []cartdom.Entry {
	return a.Snapshot().Items
}

func (a *CartAggregate) Total() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cart.Total()
}

func (a *CartAggregate) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cart.Count()
}

// AddToCart appends a snapshot of p or bumps the existing line by qty.
func (a *CartAggregate) AddToCart(ctx context.Context, p productdom.Product, qty int) error {
	return a.mutate(ctx, "add", func(c *cartdom.Cart, now time.Time) error {
		return c.Add(p, qty, now)
	})
}

// RemoveFromCart is idempotent.
func (a *CartAggregate) RemoveFromCart(ctx context.Context, productID string) error {
	return a.mutate(ctx, "remove", func(c *cartdom.Cart, now time.Time) error {
		return c.Remove(productID, now)
	})
}

// UpdateQuantity overwrites the quantity; qty <= 0 removes the line.
func (a *CartAggregate) UpdateQuantity(ctx context.Context, productID string, qty int) error {
	return a.mutate(ctx, "update", func(c *cartdom.Cart, now time.Time) error {
		return c.SetQty(productID, qty, now)
	})
}

// ClearCart empties the cart and persists the empty items list.
func (a *CartAggregate) ClearCart(ctx context.Context) error {
	_, err := a.clear(ctx)
	return err
}

// clear returns the lines that were in the cart right before it was emptied.
func (a *CartAggregate) clear(ctx context.Context) ([]cartdom.Entry, error) {
	var removed []cartdom.Entry
	err := a.mutate(ctx, "clear", func(c *cartdom.Cart, now time.Time) error {
		var err error
		removed, err = c.Clear(now)
		return err
	})
	return removed, err
}

func (a *CartAggregate) mutate(ctx context.Context, op string, fn func(*cartdom.Cart, time.Time) error) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrCartClosed
	}
	next := a.cart.Clone()
	if err := fn(next, a.clock.Now()); err != nil {
		a.mu.Unlock()
		return err
	}
	a.cart = next
	toSave := next.Clone()
	a.mu.Unlock()

	a.notify()

	if err := a.repo.Save(ctx, toSave); err != nil {
		log.Printf("[cart] %s write failed uid=%s: %v", op, toSave.UserID, err)
		return fmt.Errorf("cart_aggregate: save: %w", err)
	}
	return nil
}
