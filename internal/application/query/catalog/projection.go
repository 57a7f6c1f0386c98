// internal/application/query/catalog/projection.go
package catalog

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"coplace/internal/domain/common"
	productdom "coplace/internal/domain/product"
)

var ErrAlreadyStarted = errors.New("catalog: projection already started")

// Projection keeps the latest products snapshot (createdAt desc) behind one
// long-lived backend subscription and fans it out to filtered views.
type Projection struct {
	repo productdom.Repository

	mu       sync.Mutex
	products []productdom.Product
	ready    bool
	started  bool
	sub      *common.Subscription
	nextView int
	views    map[int]*View
}

func NewProjection(repo productdom.Repository) *Projection {
	return &Projection{
		repo:     repo,
		products: []productdom.Product{},
		views:    map[int]*View{},
	}
}

// Start opens the products subscription. Errors from the listener are
// logged and leave the last snapshot in place.
func (p *Projection) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	p.mu.Unlock()

	sub, err := p.repo.WatchAll(ctx, p.onSnapshot, p.onError)
	if err != nil {
		p.mu.Lock()
		p.started = false
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()
	log.Printf("[catalog] subscribed to products")
	return nil
}

// Close cancels the backend subscription. Views stay usable but frozen.
func (p *Projection) Close() {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()
	sub.Cancel()
}

func (p *Projection) onSnapshot(products []productdom.Product) {
	p.mu.Lock()
	p.products = products
	p.ready = true
	views := make([]*View, 0, len(p.views))
	for _, v := range p.views {
		views = append(views, v)
	}
	p.mu.Unlock()

	for _, v := range views {
		v.refresh()
	}
}

func (p *Projection) onError(err error) {
	log.Printf("[catalog] products subscription error: %v", err)
}

// Ready reports whether the first snapshot has arrived.
func (p *Projection) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *Projection) snapshot() ([]productdom.Product, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.products, p.ready
}

// All returns a copy of the current snapshot.
func (p *Projection) All() []productdom.Product {
	return p.Products(productdom.Filter{})
}

// Products evaluates f against the current snapshot.
func (p *Projection) Products(f productdom.Filter) []productdom.Product {
	snap, _ := p.snapshot()
	return f.Apply(snap)
}

// Get looks a product up in the current snapshot.
func (p *Projection) Get(id string) (productdom.Product, bool) {
	id = strings.TrimSpace(id)
	snap, _ := p.snapshot()
	for _, prod := range snap {
		if prod.ID == id {
			return prod, true
		}
	}
	return productdom.Product{}, false
}

// Related returns up to n other products from the same origin, newest first.
func (p *Projection) Related(prod productdom.Product, n int) []productdom.Product {
	out := []productdom.Product{}
	if n <= 0 {
		return out
	}
	snap, _ := p.snapshot()
	for _, c := range snap {
		if c.ID == prod.ID || c.Origin != prod.Origin {
			continue
		}
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}

// Subscribe registers a filtered view. listener receives the filtered
// sequence once the first snapshot is in, then on every snapshot change and
// every SetFilter.
func (p *Projection) Subscribe(f productdom.Filter, listener func([]productdom.Product)) *View {
	v := &View{proj: p, filter: f, listener: listener, current: []productdom.Product{}}

	p.mu.Lock()
	p.nextView++
	id := p.nextView
	p.mu.Unlock()

	v.sub = common.NewSubscription(func() {
		p.mu.Lock()
		delete(p.views, id)
		p.mu.Unlock()
	})

	p.mu.Lock()
	p.views[id] = v
	p.mu.Unlock()

	v.refresh()
	return v
}

// View is a live, filtered window on the catalog.
type View struct {
	proj     *Projection
	sub      *common.Subscription
	listener func([]productdom.Product)

	mu      sync.Mutex
	filter  productdom.Filter
	current []productdom.Product
}

func (v *View) Filter() productdom.Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// SetFilter replaces the filter and recomputes the view.
func (v *View) SetFilter(f productdom.Filter) {
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
	v.refresh()
}

// Products returns the last computed sequence.
func (v *View) Products() []productdom.Product {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]productdom.Product, len(v.current))
	copy(out, v.current)
	return out
}

// Cancel stops delivery. No listener call starts after Cancel returns.
func (v *View) Cancel() {
	v.sub.Cancel()
}

// refresh recomputes from the latest snapshot and filter inside Deliver, so
// concurrent refreshes cannot publish an older result after a newer one.
func (v *View) refresh() {
	if v.sub == nil {
		return
	}
	v.sub.Deliver(func() {
		snap, ready := v.proj.snapshot()
		v.mu.Lock()
		items := v.filter.Apply(snap)
		v.current = items
		v.mu.Unlock()

		if !ready || v.listener == nil {
			return
		}
		out := make([]productdom.Product, len(items))
		copy(out, items)
		v.listener(out)
	})
}
