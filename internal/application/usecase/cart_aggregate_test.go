package usecase

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coplace/internal/adapters/out/memory"
	cartdom "coplace/internal/domain/cart"
)

func login(t *testing.T, repo cartdom.Repository, uid string) (*CartSessions, *CartAggregate) {
	t.Helper()
	sessions := NewCartSessions(repo, testClock)
	t.Cleanup(sessions.Close)
	agg, err := sessions.Login(context.Background(), Session{UID: uid, DisplayName: "Budi", Email: "budi@example.com"})
	require.NoError(t, err)
	require.NoError(t, agg.WaitReady(context.Background()))
	return sessions, agg
}

func lineIDs(es []cartdom.Entry) []string {
	out := []string{}
	for _, e := range es {
		out = append(out, e.Product.ID)
	}
	return out
}

func TestCartAggregate_AddUpdateRemove(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCartRepository()
	_, agg := login(t, repo, "u1")

	require.NoError(t, agg.AddToCart(ctx, kopi("p1", 15000), 2))
	assert.Equal(t, int64(30000), agg.Total())
	assert.Equal(t, 2, agg.Count())

	require.NoError(t, agg.UpdateQuantity(ctx, "p1", 1))
	assert.Equal(t, int64(15000), agg.Total())
	assert.Equal(t, 1, agg.Count())

	require.NoError(t, agg.RemoveFromCart(ctx, "p1"))
	assert.Empty(t, agg.Entries())

	stored, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.Items)
}

func TestCartAggregate_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, agg := login(t, memory.NewCartRepository(), "u1")
	require.NoError(t, agg.AddToCart(ctx, kopi("p1", 100), 1))

	require.NoError(t, agg.RemoveFromCart(ctx, "p1"))
	require.NoError(t, agg.RemoveFromCart(ctx, "p1"))
	require.NoError(t, agg.RemoveFromCart(ctx, "never-added"))
	assert.Zero(t, agg.Count())
}

func TestCartAggregate_UpdateToZeroRemoves(t *testing.T) {
	ctx := context.Background()
	_, agg := login(t, memory.NewCartRepository(), "u1")
	require.NoError(t, agg.AddToCart(ctx, kopi("p1", 100), 3))
	require.NoError(t, agg.AddToCart(ctx, kopi("p2", 200), 1))

	require.NoError(t, agg.UpdateQuantity(ctx, "p1", 0))
	assert.Equal(t, []string{"p2"}, lineIDs(agg.Entries()))

	require.NoError(t, agg.UpdateQuantity(ctx, "p2", -4))
	assert.Empty(t, agg.Entries())
}

func TestCartAggregate_RejectsBadQuantity(t *testing.T) {
	_, agg := login(t, memory.NewCartRepository(), "u1")
	err := agg.AddToCart(context.Background(), kopi("p1", 100), 0)
	assert.ErrorIs(t, err, cartdom.ErrInvalidQuantity)
	assert.Empty(t, agg.Entries())
}

func TestCartAggregate_ListenersSeeLocalStateBeforeWrite(t *testing.T) {
	ctx := context.Background()
	repo := newGatedCartRepo()
	_, agg := login(t, repo, "u1")

	var mu sync.Mutex
	var seen []int
	sub := agg.OnChange(func(c *cartdom.Cart) {
		mu.Lock()
		seen = append(seen, c.Count())
		mu.Unlock()
	})
	defer sub.Cancel()

	repo.gate.Store(true)
	errc := make(chan error, 1)
	go func() { errc <- agg.AddToCart(ctx, kopi("p1", 100), 2) }()
	<-repo.entered

	mu.Lock()
	assert.Equal(t, []int{2}, seen)
	mu.Unlock()

	repo.gate.Store(false)
	close(repo.release)
	require.NoError(t, <-errc)
}

// A remote snapshot that lands while a local write is in flight replaces
// local state; the in-flight write then lands and wins in turn.
func TestCartAggregate_RemoteSnapshotDuringPendingWrite(t *testing.T) {
	ctx := context.Background()
	repo := newGatedCartRepo()
	_, agg := login(t, repo, "u1")
	require.NoError(t, agg.AddToCart(ctx, kopi("p1", 100), 1))

	repo.gate.Store(true)
	errc := make(chan error, 1)
	go func() { errc <- agg.AddToCart(ctx, kopi("p2", 100), 1) }()
	<-repo.entered
	assert.Equal(t, []string{"p1", "p2"}, lineIDs(agg.Entries()))

	// another tab overwrites the cart
	other := cartdom.FromItems("u1", []cartdom.Entry{{Product: kopi("p3", 500), Quantity: 5}}, testNow)
	require.NoError(t, repo.CartRepository.Save(ctx, other))
	assert.Equal(t, []string{"p3"}, lineIDs(agg.Entries()))
	assert.Equal(t, 5, agg.Count())

	repo.gate.Store(false)
	close(repo.release)
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"p1", "p2"}, lineIDs(agg.Entries()))
}

func TestCartAggregate_FailedWriteKeepsOptimisticState(t *testing.T) {
	ctx := context.Background()
	_, agg := login(t, failingCartRepo{memory.NewCartRepository()}, "u1")

	err := agg.AddToCart(ctx, kopi("p1", 100), 1)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, agg.Count())
}

func TestCartAggregate_FreshSessionLoadsStoredCart(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCartRepository()
	stored := cartdom.FromItems("u1", []cartdom.Entry{{Product: kopi("p1", 100), Quantity: 2}}, testNow)
	require.NoError(t, repo.Save(ctx, stored))

	_, agg := login(t, repo, "u1")
	assert.Equal(t, 2, agg.Count())
}

func TestCartAggregate_WaitReadyTimesOut(t *testing.T) {
	sessions := NewCartSessions(silentCartRepo{memory.NewCartRepository()}, testClock)
	defer sessions.Close()
	agg, err := sessions.Login(context.Background(), Session{UID: "u1"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, agg.WaitReady(ctx), context.DeadlineExceeded)
}

func TestCartSessions_LogoutDiscardsLocalState(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCartRepository()
	sessions, agg := login(t, repo, "u1")
	require.NoError(t, agg.AddToCart(ctx, kopi("p1", 100), 2))

	var calls int
	agg.OnChange(func(*cartdom.Cart) { calls++ })

	assert.True(t, sessions.Logout("u1"))
	assert.False(t, sessions.Logout("u1"))
	assert.Zero(t, agg.Count())
	assert.ErrorIs(t, agg.AddToCart(ctx, kopi("p2", 1), 1), ErrCartClosed)

	// remote changes no longer reach the closed aggregate
	require.NoError(t, repo.Save(ctx, cartdom.FromItems("u1", nil, testNow)))
	assert.Zero(t, calls)

	_, ok := sessions.Get("u1")
	assert.False(t, ok)

	again, err := sessions.Login(ctx, Session{UID: "u1"})
	require.NoError(t, err)
	require.NoError(t, again.WaitReady(ctx))
	assert.NotSame(t, agg, again)
}

func TestCartSessions_LoginIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sessions, agg := login(t, memory.NewCartRepository(), "u1")

	again, err := sessions.Login(ctx, Session{UID: " u1 ", DisplayName: "Budi S", Email: "b@example.com"})
	require.NoError(t, err)
	assert.Same(t, agg, again)
	assert.Equal(t, "Budi S", agg.Session().DisplayName)

	_, err = sessions.Login(ctx, Session{UID: "  "})
	assert.ErrorIs(t, err, ErrCartInvalidArgument)
}

func TestCartAggregate_OnChangeAfterCloseIsInert(t *testing.T) {
	agg, err := NewCartAggregate(Session{UID: "u1"}, memory.NewCartRepository(), testClock)
	require.NoError(t, err)
	agg.Close()

	sub := agg.OnChange(func(*cartdom.Cart) { t.Fatal("listener called on closed cart") })
	assert.True(t, sub.Canceled())
}

type savesCartRepo struct {
	*memory.CartRepository
	saves atomic.Int32
}

func (r *savesCartRepo) Save(ctx context.Context, c *cartdom.Cart) error {
	r.saves.Add(1)
	return r.CartRepository.Save(ctx, c)
}

func TestCartAggregate_RejectsOversizedQuantity(t *testing.T) {
	ctx := context.Background()
	repo := &savesCartRepo{CartRepository: memory.NewCartRepository()}
	_, agg := login(t, repo, "u1")

	err := agg.AddToCart(ctx, kopi("p1", 15000), math.MaxInt64/10000)
	assert.ErrorIs(t, err, cartdom.ErrInvalidQuantity)
	assert.Empty(t, agg.Entries())
	assert.Zero(t, repo.saves.Load())

	require.NoError(t, agg.AddToCart(ctx, kopi("p1", 15000), 2))
	assert.ErrorIs(t, agg.UpdateQuantity(ctx, "p1", math.MaxInt), cartdom.ErrInvalidQuantity)
	assert.ErrorIs(t, agg.AddToCart(ctx, kopi("p1", 15000), cartdom.MaxQuantity), cartdom.ErrInvalidQuantity)
	assert.Equal(t, 2, agg.Count())
	assert.Equal(t, int64(30000), agg.Total())
	assert.Equal(t, int32(1), repo.saves.Load())
}

func TestCartAggregate_RandomOperationSequence(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCartRepository()
	_, agg := login(t, repo, "u1")

	rng := rand.New(rand.NewSource(1729069200))
	ids := []string{"p1", "p2", "p3"}
	qtys := []int{-2, 0, 1, 3, 10, cartdom.MaxQuantity + 1}

	check := func(step int, entries []cartdom.Entry, count int) {
		sum := 0
		seen := map[string]bool{}
		for _, e := range entries {
			assert.GreaterOrEqual(t, e.Quantity, 1, "step %d", step)
			assert.LessOrEqual(t, e.Quantity, cartdom.MaxQuantity, "step %d", step)
			assert.False(t, seen[e.Product.ID], "step %d duplicate %s", step, e.Product.ID)
			seen[e.Product.ID] = true
			sum += e.Quantity
		}
		assert.Equal(t, sum, count, "step %d", step)
	}

	for step := 0; step < 300; step++ {
		id := ids[rng.Intn(len(ids))]
		qty := qtys[rng.Intn(len(qtys))]

		var err error
		switch rng.Intn(3) {
		case 0:
			err = agg.AddToCart(ctx, kopi(id, 12000), qty)
		case 1:
			err = agg.UpdateQuantity(ctx, id, qty)
		default:
			err = agg.RemoveFromCart(ctx, id)
		}
		if err != nil {
			require.ErrorIs(t, err, cartdom.ErrInvalidQuantity, "step %d", step)
		}

		check(step, agg.Entries(), agg.Count())

		stored, err := repo.Get(ctx, "u1")
		require.NoError(t, err)
		if stored != nil {
			check(step, stored.Items, stored.Count())
			assert.Equal(t, lineIDs(agg.Entries()), lineIDs(stored.Items), "step %d", step)
		}
	}
}
