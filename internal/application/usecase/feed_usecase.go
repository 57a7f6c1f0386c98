// internal/application/usecase/feed_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"coplace/internal/domain/common"
	threaddom "coplace/internal/domain/thread"
)

var ErrFeedAlreadyStarted = errors.New("feed: already started")

// FeedUsecase is the live projection of top-level threads (newest first)
// plus the commands that mutate them.
//
// replyCount is maintained here: after a reply is created the parent's
// counter is incremented with a field-level update. The two writes are not
// atomic; a failed increment is logged and the reply stays.
type FeedUsecase struct {
	repo threaddom.Repository

	mu        sync.Mutex
	threads   []threaddom.Thread
	ready     bool
	started   bool
	sub       *common.Subscription
	nextLis   int
	listeners map[int]*feedListener
}

type feedListener struct {
	sub *common.Subscription
	fn  func([]threaddom.Thread)
}

func NewFeedUsecase(repo threaddom.Repository) *FeedUsecase {
	return &FeedUsecase{
		repo:      repo,
		threads:   []threaddom.Thread{},
		listeners: map[int]*feedListener{},
	}
}

func (uc *FeedUsecase) Start(ctx context.Context) error {
	uc.mu.Lock()
	if uc.started {
		uc.mu.Unlock()
		return ErrFeedAlreadyStarted
	}
	uc.started = true
	uc.mu.Unlock()

	sub, err := uc.repo.WatchTopLevel(ctx, uc.onSnapshot, uc.onError)
	if err != nil {
		uc.mu.Lock()
		uc.started = false
		uc.mu.Unlock()
		return err
	}

	uc.mu.Lock()
	uc.sub = sub
	uc.mu.Unlock()
	log.Printf("[feed] subscribed to threads")
	return nil
}

func (uc *FeedUsecase) Close() {
	uc.mu.Lock()
	sub := uc.sub
	uc.sub = nil
	uc.mu.Unlock()
	sub.Cancel()
}

func (uc *FeedUsecase) onSnapshot(ts []threaddom.Thread) {
	uc.mu.Lock()
	uc.threads = ts
	uc.ready = true
	uc.mu.Unlock()
	uc.notify()
}

func (uc *FeedUsecase) onError(err error) {
	log.Printf("[feed] threads subscription error: %v", err)
}

func (uc *FeedUsecase) Ready() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.ready
}

// Threads returns a copy of the current feed.
func (uc *FeedUsecase) Threads() []threaddom.Thread {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return cloneThreads(uc.threads)
}

// Subscribe delivers the feed now (once loaded) and after every change.
func (uc *FeedUsecase) Subscribe(fn func([]threaddom.Thread)) *common.Subscription {
	uc.mu.Lock()
	uc.nextLis++
	id := uc.nextLis
	uc.mu.Unlock()

	l := &feedListener{fn: fn}
	l.sub = common.NewSubscription(func() {
		uc.mu.Lock()
		delete(uc.listeners, id)
		uc.mu.Unlock()
	})

	uc.mu.Lock()
	uc.listeners[id] = l
	uc.mu.Unlock()

	uc.deliver(l)
	return l.sub
}

func (uc *FeedUsecase) notify() {
	uc.mu.Lock()
	lis := make([]*feedListener, 0, len(uc.listeners))
	for _, l := range uc.listeners {
		lis = append(lis, l)
	}
	uc.mu.Unlock()

	for _, l := range lis {
		uc.deliver(l)
	}
}

// deliver reads the state inside Deliver so a listener never sees an older
// feed after a newer one.
func (uc *FeedUsecase) deliver(l *feedListener) {
	l.sub.Deliver(func() {
		uc.mu.Lock()
		ready := uc.ready
		ts := cloneThreads(uc.threads)
		uc.mu.Unlock()
		if ready {
			l.fn(ts)
		}
	})
}

// Post creates a top-level thread or, with replyTo set, a reply.
// Content rules are checked before any backend call.
func (uc *FeedUsecase) Post(ctx context.Context, sess Session, content, replyTo string) (threaddom.Thread, error) {
	t, err := threaddom.New(content, sess.UID, sess.DisplayName, replyTo)
	if err != nil {
		return threaddom.Thread{}, err
	}

	if !t.IsTopLevel() {
		if _, err := uc.repo.GetByID(ctx, t.ReplyTo); err != nil {
			if errors.Is(err, threaddom.ErrNotFound) || errors.Is(err, threaddom.ErrInvalidID) {
				return threaddom.Thread{}, threaddom.ErrParentNotFound
			}
			return threaddom.Thread{}, err
		}
	}

	created, err := uc.repo.Create(ctx, t)
	if err != nil {
		return threaddom.Thread{}, fmt.Errorf("feed: create thread: %w", err)
	}

	if !created.IsTopLevel() {
		if err := uc.repo.IncrementReplyCount(ctx, created.ReplyTo, 1); err != nil {
			log.Printf("[feed] replyCount increment failed parent=%s reply=%s: %v", created.ReplyTo, created.ID, err)
		}
	}
	return created, nil
}

// Like adds uid to the thread's likes. The local feed is updated before
// the write; a failed write is returned but not rolled back, the next
// snapshot reconciles.
func (uc *FeedUsecase) Like(ctx context.Context, threadID, uid string) error {
	return uc.toggle(ctx, threadID, uid, true)
}

// Unlike removes uid from the thread's likes (same optimistic rules as Like).
func (uc *FeedUsecase) Unlike(ctx context.Context, threadID, uid string) error {
	return uc.toggle(ctx, threadID, uid, false)
}

func (uc *FeedUsecase) toggle(ctx context.Context, threadID, uid string, like bool) error {
	threadID = strings.TrimSpace(threadID)
	uid = strings.TrimSpace(uid)
	if threadID == "" {
		return threaddom.ErrInvalidID
	}
	if uid == "" {
		return threaddom.ErrInvalidLikeUser
	}

	uc.mu.Lock()
	changed := false
	for i := range uc.threads {
		if uc.threads[i].ID != threadID {
			continue
		}
		// copy-on-write: earlier snapshots handed to listeners stay untouched
		next := cloneThreads(uc.threads)
		if like {
			next[i] = next[i].WithLike(uid)
		} else {
			next[i] = next[i].WithoutLike(uid)
		}
		uc.threads = next
		changed = true
		break
	}
	uc.mu.Unlock()
	if changed {
		uc.notify()
	}

	var err error
	if like {
		err = uc.repo.AddLike(ctx, threadID, uid)
	} else {
		err = uc.repo.RemoveLike(ctx, threadID, uid)
	}
	if err != nil {
		log.Printf("[feed] like=%t write failed thread=%s uid=%s: %v", like, threadID, uid, err)
		return fmt.Errorf("feed: update likes: %w", err)
	}
	return nil
}

// Replies lists replies to threadID, oldest first.
func (uc *FeedUsecase) Replies(ctx context.Context, threadID string) ([]threaddom.Thread, error) {
	id := strings.TrimSpace(threadID)
	if id == "" {
		return nil, threaddom.ErrInvalidID
	}
	return uc.repo.ListReplies(ctx, id)
}

// TrendingHashtags ranks hashtags in the current feed.
func (uc *FeedUsecase) TrendingHashtags(n int) []threaddom.TagCount {
	return threaddom.Trending(uc.Threads(), n)
}

func cloneThreads(src []threaddom.Thread) []threaddom.Thread {
	out := make([]threaddom.Thread, len(src))
	for i, t := range src {
		t.Likes = append([]string(nil), t.Likes...)
		if t.Likes == nil {
			t.Likes = []string{}
		}
		out[i] = t
	}
	return out
}
