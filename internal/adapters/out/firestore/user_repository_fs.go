// internal/adapters/out/firestore/user_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	userdom "coplace/internal/domain/user"
)

// UserRepositoryFS stores profiles in users/{uid}.
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

type userDoc struct {
	Email       string    `firestore:"email"`
	DisplayName string    `firestore:"displayName"`
	Role        string    `firestore:"role"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func (r *UserRepositoryFS) Get(ctx context.Context, uid string) (userdom.Profile, error) {
	if r == nil || r.Client == nil {
		return userdom.Profile{}, errors.New("user_repository_fs: firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.Profile{}, userdom.ErrInvalidID
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return userdom.Profile{}, userdom.ErrNotFound
		}
		return userdom.Profile{}, err
	}

	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return userdom.Profile{}, err
	}
	return userdom.Profile{
		UID:         snap.Ref.ID,
		Email:       strings.TrimSpace(d.Email),
		DisplayName: strings.TrimSpace(d.DisplayName),
		Role:        userdom.Role(strings.TrimSpace(d.Role)),
		CreatedAt:   d.CreatedAt.UTC(),
	}, nil
}

// Upsert keeps the original createdAt when the profile already exists.
func (r *UserRepositoryFS) Upsert(ctx context.Context, p userdom.Profile) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(p.UID)
	if uid == "" {
		return userdom.ErrInvalidID
	}

	ref := r.col().Doc(uid)
	return r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		createdAt := p.CreatedAt.UTC()
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if t, ok := asTime(snap.Data()["createdAt"]); ok && !t.IsZero() {
				createdAt = t
			}
		case status.Code(err) == codes.NotFound:
		default:
			return err
		}

		return tx.Set(ref, userDoc{
			Email:       p.Email,
			DisplayName: p.DisplayName,
			Role:        string(p.Role),
			CreatedAt:   createdAt,
		})
	})
}
