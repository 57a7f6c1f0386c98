// internal/adapters/out/memory/store.go
// Package memory is an in-process document store implementing the same
// repository ports as the Firestore adapters. Writes notify watchers
// synchronously on the writer's goroutine, after the store lock is released.
package memory

import (
	"sync"
	"time"

	"coplace/internal/domain/common"
)

// serverClock hands out strictly increasing timestamps (the store-side
// equivalent of Firestore server timestamps).
type serverClock struct {
	mu    sync.Mutex
	clock common.Clock
	last  time.Time
}

func newServerClock(c common.Clock) *serverClock {
	if c == nil {
		c = common.SystemClock{}
	}
	return &serverClock{clock: c}
}

func (c *serverClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.clock.Now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// watcher is one live listener. lastVer is only touched inside sub.Deliver,
// which serializes it.
type watcher[T any] struct {
	key     string
	sub     *common.Subscription
	fn      func(T)
	lastVer int64
}

type watcherSet[T any] struct {
	next int
	m    map[int]*watcher[T]
}

// add registers a watcher; the caller holds the repository lock.
// remove must take that lock itself.
func (ws *watcherSet[T]) add(key string, fn func(T), remove func(id int)) *watcher[T] {
	if ws.m == nil {
		ws.m = map[int]*watcher[T]{}
	}
	ws.next++
	id := ws.next
	w := &watcher[T]{key: key, fn: fn}
	w.sub = common.NewSubscription(func() { remove(id) })
	ws.m[id] = w
	return w
}

func (ws *watcherSet[T]) remove(id int) {
	delete(ws.m, id)
}

// targets lists the watchers for key ("" matches watchers registered with "").
func (ws *watcherSet[T]) targets(key string) []*watcher[T] {
	out := make([]*watcher[T], 0, len(ws.m))
	for _, w := range ws.m {
		if w.key == key {
			out = append(out, w)
		}
	}
	return out
}

// deliver pushes a snapshot at version ver. Older versions than the last one
// a watcher saw are dropped, so each stream only moves forward.
func deliver[T any](ws []*watcher[T], ver int64, snapshot func() T) {
	for _, w := range ws {
		w := w
		w.sub.Deliver(func() {
			if ver <= w.lastVer {
				return
			}
			w.lastVer = ver
			w.fn(snapshot())
		})
	}
}
