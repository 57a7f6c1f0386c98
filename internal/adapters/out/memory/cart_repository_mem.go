// internal/adapters/out/memory/cart_repository_mem.go
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	cartdom "coplace/internal/domain/cart"
	"coplace/internal/domain/common"
)

// CartRepository implements cart.Repository in memory.
type CartRepository struct {
	mu       sync.Mutex
	docs     map[string]*cartdom.Cart
	version  int64
	watchers watcherSet[*cartdom.Cart]
}

func NewCartRepository() *CartRepository {
	return &CartRepository{docs: map[string]*cartdom.Cart{}}
}

func (r *CartRepository) Get(_ context.Context, uid string) (*cartdom.Cart, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errors.New("cart_repository_mem: uid is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[uid].Clone(), nil
}

func (r *CartRepository) Save(_ context.Context, c *cartdom.Cart) error {
	if c == nil {
		return errors.New("cart_repository_mem: cart is nil")
	}
	uid := strings.TrimSpace(c.UserID)
	if uid == "" {
		return errors.New("cart_repository_mem: Save requires cart.UserID as docId")
	}

	stored := cartdom.FromItems(uid, c.Items, c.UpdatedAt)

	r.mu.Lock()
	r.docs[uid] = stored
	r.version++
	ver := r.version
	targets := r.watchers.targets(uid)
	r.mu.Unlock()

	deliver(targets, ver+1, func() *cartdom.Cart { return stored.Clone() })
	return nil
}

func (r *CartRepository) Watch(_ context.Context, uid string, onSnapshot func(*cartdom.Cart), _ common.ErrorHandler) (*common.Subscription, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errors.New("cart_repository_mem: uid is empty")
	}

	r.mu.Lock()
	w := r.watchers.add(uid, onSnapshot, func(id int) {
		r.mu.Lock()
		r.watchers.remove(id)
		r.mu.Unlock()
	})
	ver := r.version
	cur := r.docs[uid].Clone()
	r.mu.Unlock()

	deliver([]*watcher[*cartdom.Cart]{w}, ver+1, func() *cartdom.Cart { return cur.Clone() })
	return w.sub, nil
}
