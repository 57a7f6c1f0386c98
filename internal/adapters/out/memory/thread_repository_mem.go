// internal/adapters/out/memory/thread_repository_mem.go
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"coplace/internal/domain/common"
	threaddom "coplace/internal/domain/thread"
)

// ThreadRepository implements thread.Repository in memory.
type ThreadRepository struct {
	mu       sync.Mutex
	clock    *serverClock
	docs     map[string]threaddom.Thread
	version  int64
	watchers watcherSet[[]threaddom.Thread]
}

func NewThreadRepository(clock common.Clock) *ThreadRepository {
	return &ThreadRepository{
		clock: newServerClock(clock),
		docs:  map[string]threaddom.Thread{},
	}
}

func (r *ThreadRepository) GetByID(_ context.Context, id string) (threaddom.Thread, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return threaddom.Thread{}, threaddom.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.docs[id]
	if !ok {
		return threaddom.Thread{}, threaddom.ErrNotFound
	}
	return cloneThread(t), nil
}

func (r *ThreadRepository) Create(_ context.Context, t threaddom.Thread) (threaddom.Thread, error) {
	r.mu.Lock()
	if strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = r.clock.Next()
	if t.Likes == nil {
		t.Likes = []string{}
	}
	t = cloneThread(t)
	r.docs[t.ID] = t
	r.notifyLocked()
	return cloneThread(t), nil
}

func (r *ThreadRepository) AddLike(_ context.Context, id, uid string) error {
	return r.mutate(id, func(t threaddom.Thread) threaddom.Thread { return t.WithLike(uid) })
}

func (r *ThreadRepository) RemoveLike(_ context.Context, id, uid string) error {
	return r.mutate(id, func(t threaddom.Thread) threaddom.Thread { return t.WithoutLike(uid) })
}

func (r *ThreadRepository) IncrementReplyCount(_ context.Context, id string, delta int) error {
	return r.mutate(id, func(t threaddom.Thread) threaddom.Thread {
		t.ReplyCount += delta
		return t
	})
}

func (r *ThreadRepository) ListReplies(_ context.Context, id string) ([]threaddom.Thread, error) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]threaddom.Thread, 0)
	for _, t := range r.docs {
		if t.ReplyTo == id {
			out = append(out, cloneThread(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ThreadRepository) WatchTopLevel(_ context.Context, onSnapshot func([]threaddom.Thread), _ common.ErrorHandler) (*common.Subscription, error) {
	r.mu.Lock()
	w := r.watchers.add("", onSnapshot, func(id int) {
		r.mu.Lock()
		r.watchers.remove(id)
		r.mu.Unlock()
	})
	ver := r.version
	snap := r.topLevelLocked()
	r.mu.Unlock()

	deliver([]*watcher[[]threaddom.Thread]{w}, ver+1, copyThreads(snap))
	return w.sub, nil
}

func (r *ThreadRepository) mutate(id string, fn func(threaddom.Thread) threaddom.Thread) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return threaddom.ErrInvalidID
	}
	r.mu.Lock()
	t, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return threaddom.ErrNotFound
	}
	r.docs[id] = cloneThread(fn(t))
	r.notifyLocked()
	return nil
}

func (r *ThreadRepository) notifyLocked() {
	r.version++
	ver := r.version
	snap := r.topLevelLocked()
	targets := r.watchers.targets("")
	r.mu.Unlock()

	deliver(targets, ver+1, copyThreads(snap))
}

func (r *ThreadRepository) topLevelLocked() []threaddom.Thread {
	out := make([]threaddom.Thread, 0, len(r.docs))
	for _, t := range r.docs {
		if t.IsTopLevel() {
			out = append(out, t)
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

func cloneThread(t threaddom.Thread) threaddom.Thread {
	likes := make([]string, len(t.Likes))
	copy(likes, t.Likes)
	t.Likes = likes
	return t
}

func copyThreads(src []threaddom.Thread) func() []threaddom.Thread {
	return func() []threaddom.Thread {
		out := make([]threaddom.Thread, len(src))
		for i, t := range src {
			out[i] = cloneThread(t)
		}
		return out
	}
}
