// internal/adapters/out/firestore/watch_fs.go
package firestore

import (
	"context"
	"errors"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"coplace/internal/domain/common"
)

// watchQuery runs a snapshot listener on q until the returned subscription is
// canceled or ctx ends. Every event carries the full ordered result set.
// Documents that fail to decode are logged and skipped.
func watchQuery[T any](
	ctx context.Context,
	q firestore.Query,
	name string,
	decode func(*firestore.DocumentSnapshot) (T, error),
	onSnapshot func([]T),
	onError common.ErrorHandler,
) *common.Subscription {
	wctx, cancel := context.WithCancel(ctx)
	sub := common.NewSubscription(cancel)

	it := q.Snapshots(wctx)
	go func() {
		// Stop is called from this goroutine only; Cancel just ends wctx.
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				reportWatchErr(wctx, sub, name, err, onError)
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				reportWatchErr(wctx, sub, name, err, onError)
				return
			}
			out := make([]T, 0, len(docs))
			for _, d := range docs {
				v, err := decode(d)
				if err != nil {
					log.Printf("[firestore.watch] %s: skip doc=%s err=%v", name, d.Ref.ID, err)
					continue
				}
				out = append(out, v)
			}
			sub.Deliver(func() { onSnapshot(out) })
		}
	}()
	return sub
}

// watchDoc streams a single document. onSnapshot gets ok=false while the
// document does not exist.
func watchDoc[T any](
	ctx context.Context,
	ref *firestore.DocumentRef,
	name string,
	decode func(*firestore.DocumentSnapshot) (T, error),
	onSnapshot func(v T, ok bool),
	onError common.ErrorHandler,
) *common.Subscription {
	wctx, cancel := context.WithCancel(ctx)
	sub := common.NewSubscription(cancel)

	it := ref.Snapshots(wctx)
	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				reportWatchErr(wctx, sub, name, err, onError)
				return
			}
			var zero T
			if snap == nil || !snap.Exists() {
				sub.Deliver(func() { onSnapshot(zero, false) })
				continue
			}
			v, err := decode(snap)
			if err != nil {
				log.Printf("[firestore.watch] %s: decode doc=%s err=%v", name, snap.Ref.ID, err)
				continue
			}
			sub.Deliver(func() { onSnapshot(v, true) })
		}
	}()
	return sub
}

// reportWatchErr forwards a terminal listener error. Shutdown paths
// (canceled subscription, ended ctx, stopped iterator) stay silent.
func reportWatchErr(ctx context.Context, sub *common.Subscription, name string, err error, onError common.ErrorHandler) {
	if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled || sub.Canceled() {
		return
	}
	log.Printf("[firestore.watch] %s: listener stopped: %v", name, err)
	if onError == nil {
		return
	}
	sub.Deliver(func() { onError(err) })
}
