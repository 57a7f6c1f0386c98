// internal/domain/thread/entity.go
package thread

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentRunes is the post length limit in code points.
const MaxContentRunes = 280

// AnonymousAuthor is stored when the author has no display name.
const AnonymousAuthor = "Anonymous"

var (
	ErrNotFound        = errors.New("thread: not found")
	ErrInvalidID       = errors.New("thread: invalid id")
	ErrEmptyContent    = errors.New("thread: content is empty")
	ErrContentTooLong  = errors.New("thread: content exceeds 280 characters")
	ErrInvalidAuthor   = errors.New("thread: authorId is required")
	ErrParentNotFound  = errors.New("thread: replyTo does not reference an existing thread")
	ErrInvalidLikeUser = errors.New("thread: like requires a user id")
)

// Thread is a feed post (Firestore: threads/{id}).
//   - ReplyTo == "" marks a top-level post (stored as null)
//   - AuthorName is copied at post time and never re-synced
//   - Likes is a set of uids; order carries no meaning
type Thread struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	Likes      []string  `json:"likes"`
	ReplyCount int       `json:"replyCount"`
	ReplyTo    string    `json:"replyTo,omitempty"`
}

// IsTopLevel reports whether the thread is not a reply.
func (t Thread) IsTopLevel() bool { return t.ReplyTo == "" }

// LikeCount is the size of the likes set.
func (t Thread) LikeCount() int { return len(t.Likes) }

// LikedBy reports set membership of uid.
func (t Thread) LikedBy(uid string) bool {
	for _, u := range t.Likes {
		if u == uid {
			return true
		}
	}
	return false
}

// WithLike returns a copy whose likes contain uid (idempotent).
func (t Thread) WithLike(uid string) Thread {
	if t.LikedBy(uid) {
		return t
	}
	out := t
	out.Likes = append(append(make([]string, 0, len(t.Likes)+1), t.Likes...), uid)
	return out
}

// WithoutLike returns a copy whose likes do not contain uid (idempotent).
func (t Thread) WithoutLike(uid string) Thread {
	out := t
	out.Likes = make([]string, 0, len(t.Likes))
	for _, u := range t.Likes {
		if u != uid {
			out.Likes = append(out.Likes, u)
		}
	}
	return out
}

// NormalizeContent trims content and checks the length rules.
func NormalizeContent(content string) (string, error) {
	c := strings.TrimSpace(content)
	if c == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(c) > MaxContentRunes {
		return "", ErrContentTooLong
	}
	return c, nil
}

// New validates a post. ID and CreatedAt are assigned by the store.
func New(content, authorID, authorName, replyTo string) (Thread, error) {
	c, err := NormalizeContent(content)
	if err != nil {
		return Thread{}, err
	}
	aid := strings.TrimSpace(authorID)
	if aid == "" {
		return Thread{}, ErrInvalidAuthor
	}
	name := strings.TrimSpace(authorName)
	if name == "" {
		name = AnonymousAuthor
	}
	return Thread{
		Content:    c,
		AuthorID:   aid,
		AuthorName: name,
		Likes:      []string{},
		ReplyCount: 0,
		ReplyTo:    strings.TrimSpace(replyTo),
	}, nil
}
