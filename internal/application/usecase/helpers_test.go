package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"coplace/internal/adapters/out/memory"
	cartdom "coplace/internal/domain/cart"
	"coplace/internal/domain/common"
	productdom "coplace/internal/domain/product"
	threaddom "coplace/internal/domain/thread"
)

var (
	testNow   = time.Date(2024, 10, 16, 9, 0, 0, 0, time.UTC)
	testClock = common.ClockFunc(func() time.Time { return testNow })
	errBoom   = errors.New("boom")
)

func kopi(id string, price int64) productdom.Product {
	return productdom.Product{ID: id, Name: "Kopi " + id, Origin: "Toraja", RoastLevel: productdom.RoastMedium, Price: price}
}

// gatedCartRepo parks Save calls while the gate is up.
type gatedCartRepo struct {
	*memory.CartRepository
	gate    atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedCartRepo() *gatedCartRepo {
	return &gatedCartRepo{
		CartRepository: memory.NewCartRepository(),
		entered:        make(chan struct{}, 1),
		release:        make(chan struct{}),
	}
}

func (r *gatedCartRepo) Save(ctx context.Context, c *cartdom.Cart) error {
	if r.gate.Load() {
		r.entered <- struct{}{}
		<-r.release
	}
	return r.CartRepository.Save(ctx, c)
}

type failingCartRepo struct {
	*memory.CartRepository
}

func (failingCartRepo) Save(context.Context, *cartdom.Cart) error { return errBoom }

// silentCartRepo never delivers a snapshot.
type silentCartRepo struct {
	*memory.CartRepository
}

func (silentCartRepo) Watch(context.Context, string, func(*cartdom.Cart), common.ErrorHandler) (*common.Subscription, error) {
	return common.NewSubscription(nil), nil
}

// countingThreadRepo records backend calls and can fail like writes.
type countingThreadRepo struct {
	*memory.ThreadRepository
	creates  atomic.Int32
	lookups  atomic.Int32
	failLike atomic.Bool
}

func (r *countingThreadRepo) Create(ctx context.Context, t threaddom.Thread) (threaddom.Thread, error) {
	r.creates.Add(1)
	return r.ThreadRepository.Create(ctx, t)
}

func (r *countingThreadRepo) GetByID(ctx context.Context, id string) (threaddom.Thread, error) {
	r.lookups.Add(1)
	return r.ThreadRepository.GetByID(ctx, id)
}

func (r *countingThreadRepo) AddLike(ctx context.Context, id, uid string) error {
	if r.failLike.Load() {
		return errBoom
	}
	return r.ThreadRepository.AddLike(ctx, id, uid)
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	panics  bool
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.panics {
		panic("model exploded")
	}
	return g.reply, g.err
}

type sentReceipt struct {
	to, name string
	receipt  cartdom.Receipt
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentReceipt
	err  error
}

func (m *fakeMailer) SendReceipt(_ context.Context, to, name string, r cartdom.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentReceipt{to: to, name: name, receipt: r})
	return m.err
}

// fakeImages counts uploads and deletions.
type fakeImages struct {
	*memory.ImageStore
	uploads atomic.Int32
	deleted []string
}

func newFakeImages() *fakeImages {
	return &fakeImages{ImageStore: memory.NewImageStore("https://img.test")}
}

func (f *fakeImages) Upload(ctx context.Context, obj, ct string, r io.Reader) (string, error) {
	f.uploads.Add(1)
	return f.ImageStore.Upload(ctx, obj, ct, r)
}

func (f *fakeImages) DeleteByURL(ctx context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return f.ImageStore.DeleteByURL(ctx, url)
}
