// internal/adapters/out/memory/user_repository_mem.go
package memory

import (
	"context"
	"strings"
	"sync"

	userdom "coplace/internal/domain/user"
)

// UserRepository implements user.Repository in memory.
type UserRepository struct {
	mu   sync.Mutex
	docs map[string]userdom.Profile
}

func NewUserRepository() *UserRepository {
	return &UserRepository{docs: map[string]userdom.Profile{}}
}

func (r *UserRepository) Get(_ context.Context, uid string) (userdom.Profile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.Profile{}, userdom.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[uid]
	if !ok {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	return p, nil
}

func (r *UserRepository) Upsert(_ context.Context, p userdom.Profile) error {
	uid := strings.TrimSpace(p.UID)
	if uid == "" {
		return userdom.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.docs[uid]; ok && !prev.CreatedAt.IsZero() {
		p.CreatedAt = prev.CreatedAt
	}
	r.docs[uid] = p
	return nil
}
