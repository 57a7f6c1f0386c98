// internal/adapters/out/memory/product_repository_mem.go
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"coplace/internal/domain/common"
	productdom "coplace/internal/domain/product"
)

// ProductRepository implements product.Repository in memory.
type ProductRepository struct {
	mu       sync.Mutex
	clock    *serverClock
	docs     map[string]productdom.Product
	version  int64
	watchers watcherSet[[]productdom.Product]
}

func NewProductRepository(clock common.Clock) *ProductRepository {
	return &ProductRepository{
		clock: newServerClock(clock),
		docs:  map[string]productdom.Product{},
	}
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (productdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepository) Create(_ context.Context, p productdom.Product) (productdom.Product, error) {
	r.mu.Lock()
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = r.clock.Next()
	r.docs[p.ID] = p
	r.notifyLocked()
	return p, nil
}

func (r *ProductRepository) Update(_ context.Context, id string, patch productdom.Patch) (productdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}
	r.mu.Lock()
	cur, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return productdom.Product{}, productdom.ErrNotFound
	}
	next, err := patch.Apply(cur)
	if err != nil {
		r.mu.Unlock()
		return productdom.Product{}, err
	}
	r.docs[id] = next
	r.notifyLocked()
	return next, nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.ErrInvalidID
	}
	r.mu.Lock()
	delete(r.docs, id)
	r.notifyLocked()
	return nil
}

func (r *ProductRepository) ListByOwner(_ context.Context, ownerID string) ([]productdom.Product, error) {
	ownerID = strings.TrimSpace(ownerID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked(func(p productdom.Product) bool { return p.CreatedBy == ownerID }), nil
}

func (r *ProductRepository) ListByOrigin(_ context.Context, origin string) ([]productdom.Product, error) {
	origin = strings.TrimSpace(origin)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked(func(p productdom.Product) bool { return p.Origin == origin }), nil
}

func (r *ProductRepository) WatchAll(_ context.Context, onSnapshot func([]productdom.Product), _ common.ErrorHandler) (*common.Subscription, error) {
	r.mu.Lock()
	w := r.watchers.add("", onSnapshot, func(id int) {
		r.mu.Lock()
		r.watchers.remove(id)
		r.mu.Unlock()
	})
	ver := r.version
	snap := r.sortedLocked(nil)
	r.mu.Unlock()

	// initial snapshot, like a Firestore listener's first event
	deliver([]*watcher[[]productdom.Product]{w}, ver+1, copyProducts(snap))
	return w.sub, nil
}

// notifyLocked bumps the version, releases the lock and fans out.
func (r *ProductRepository) notifyLocked() {
	r.version++
	ver := r.version
	snap := r.sortedLocked(nil)
	targets := r.watchers.targets("")
	r.mu.Unlock()

	// +1 keeps change events ahead of any initial snapshot taken at ver-1
	deliver(targets, ver+1, copyProducts(snap))
}

func (r *ProductRepository) sortedLocked(keep func(productdom.Product) bool) []productdom.Product {
	out := make([]productdom.Product, 0, len(r.docs))
	for _, p := range r.docs {
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func copyProducts(src []productdom.Product) func() []productdom.Product {
	return func() []productdom.Product {
		out := make([]productdom.Product, len(src))
		copy(out, src)
		return out
	}
}
