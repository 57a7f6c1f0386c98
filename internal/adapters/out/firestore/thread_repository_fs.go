// internal/adapters/out/firestore/thread_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"coplace/internal/domain/common"
	threaddom "coplace/internal/domain/thread"
)

// ThreadRepositoryFS implements thread.Repository using Firestore.
//
// - collection: threads
// - replyTo: null for top-level posts
// - WatchTopLevel needs the composite index (replyTo ASC, createdAt DESC)
type ThreadRepositoryFS struct {
	Client *firestore.Client
}

func NewThreadRepositoryFS(client *firestore.Client) *ThreadRepositoryFS {
	return &ThreadRepositoryFS{Client: client}
}

func (r *ThreadRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("threads")
}

var errThreadClientNil = errors.New("thread_repository_fs: firestore client is nil")

func (r *ThreadRepositoryFS) GetByID(ctx context.Context, id string) (threaddom.Thread, error) {
	if r == nil || r.Client == nil {
		return threaddom.Thread{}, errThreadClientNil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return threaddom.Thread{}, threaddom.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return threaddom.Thread{}, threaddom.ErrNotFound
		}
		return threaddom.Thread{}, err
	}
	return docToThread(snap)
}

func (r *ThreadRepositoryFS) Create(ctx context.Context, t threaddom.Thread) (threaddom.Thread, error) {
	if r == nil || r.Client == nil {
		return threaddom.Thread{}, errThreadClientNil
	}

	var replyTo any // nil => stored as null
	if s := strings.TrimSpace(t.ReplyTo); s != "" {
		replyTo = s
	}
	likes := t.Likes
	if likes == nil {
		likes = []string{}
	}

	docRef := r.col().NewDoc()
	_, err := docRef.Create(ctx, map[string]any{
		"content":    t.Content,
		"authorId":   t.AuthorID,
		"authorName": t.AuthorName,
		"createdAt":  firestore.ServerTimestamp,
		"likes":      likes,
		"replyCount": t.ReplyCount,
		"replyTo":    replyTo,
	})
	if err != nil {
		return threaddom.Thread{}, err
	}

	snap, err := docRef.Get(ctx)
	if err != nil {
		return threaddom.Thread{}, err
	}
	return docToThread(snap)
}

func (r *ThreadRepositoryFS) AddLike(ctx context.Context, id, uid string) error {
	return r.update(ctx, id, firestore.Update{Path: "likes", Value: firestore.ArrayUnion(uid)})
}

func (r *ThreadRepositoryFS) RemoveLike(ctx context.Context, id, uid string) error {
	return r.update(ctx, id, firestore.Update{Path: "likes", Value: firestore.ArrayRemove(uid)})
}

func (r *ThreadRepositoryFS) IncrementReplyCount(ctx context.Context, id string, delta int) error {
	return r.update(ctx, id, firestore.Update{Path: "replyCount", Value: firestore.Increment(delta)})
}

func (r *ThreadRepositoryFS) update(ctx context.Context, id string, u firestore.Update) error {
	if r == nil || r.Client == nil {
		return errThreadClientNil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return threaddom.ErrInvalidID
	}
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{u})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return threaddom.ErrNotFound
		}
		return err
	}
	return nil
}

// ListReplies sorts client-side (oldest first) to avoid another index.
func (r *ThreadRepositoryFS) ListReplies(ctx context.Context, id string) ([]threaddom.Thread, error) {
	if r == nil || r.Client == nil {
		return nil, errThreadClientNil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, threaddom.ErrInvalidID
	}

	docs, err := r.col().Where("replyTo", "==", id).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]threaddom.Thread, 0, len(docs))
	for _, d := range docs {
		t, err := docToThread(d)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ThreadRepositoryFS) WatchTopLevel(ctx context.Context, onSnapshot func([]threaddom.Thread), onError common.ErrorHandler) (*common.Subscription, error) {
	if r == nil || r.Client == nil {
		return nil, errThreadClientNil
	}
	q := r.col().Where("replyTo", "==", nil).OrderBy("createdAt", firestore.Desc)
	return watchQuery(ctx, q, "threads", docToThread, onSnapshot, onError), nil
}

func docToThread(doc *firestore.DocumentSnapshot) (threaddom.Thread, error) {
	data := doc.Data()
	if data == nil {
		return threaddom.Thread{}, fmt.Errorf("empty thread document: %s", doc.Ref.ID)
	}
	t := threaddom.Thread{
		ID:         doc.Ref.ID,
		Content:    asString(data["content"]),
		AuthorID:   asString(data["authorId"]),
		AuthorName: asString(data["authorName"]),
		Likes:      asStrings(data["likes"]),
		ReplyCount: asInt(data["replyCount"]),
		ReplyTo:    asString(data["replyTo"]),
	}
	if t.AuthorName == "" {
		t.AuthorName = threaddom.AnonymousAuthor
	}
	if ts, ok := asTime(data["createdAt"]); ok {
		t.CreatedAt = ts
	}
	return t, nil
}
