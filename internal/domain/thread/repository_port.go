// internal/domain/thread/repository_port.go
package thread

import (
	"context"

	"coplace/internal/domain/common"
)

// Repository is the persistence port for threads.
//
// Storage (Firestore):
// - collection: threads
// - likes: array used as a set (arrayUnion / arrayRemove)
// - replyTo: null for top-level posts
//
// Like/Unlike/IncrementReplyCount are field-level mutations; they never
// rewrite the whole document.
type Repository interface {
	GetByID(ctx context.Context, id string) (Thread, error)

	// Create assigns ID and a server CreatedAt.
	Create(ctx context.Context, t Thread) (Thread, error)

	AddLike(ctx context.Context, id, uid string) error
	RemoveLike(ctx context.Context, id, uid string) error
	IncrementReplyCount(ctx context.Context, id string, delta int) error

	// ListReplies returns replies to id, oldest first.
	ListReplies(ctx context.Context, id string) ([]Thread, error)

	// WatchTopLevel streams threads with replyTo == null, newest first.
	WatchTopLevel(ctx context.Context, onSnapshot func([]Thread), onError common.ErrorHandler) (*common.Subscription, error)
}
