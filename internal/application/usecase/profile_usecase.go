// internal/application/usecase/profile_usecase.go
package usecase

import (
	"context"
	"errors"

	"coplace/internal/domain/common"
	userdom "coplace/internal/domain/user"
)

// ProfileUsecase registers and reads users/{uid}.
type ProfileUsecase struct {
	repo  userdom.Repository
	clock common.Clock
}

func NewProfileUsecase(repo userdom.Repository, clock common.Clock) *ProfileUsecase {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &ProfileUsecase{repo: repo, clock: clock}
}

// Lookup returns the stored profile, or a zero Profile when the user has
// never registered.
func (uc *ProfileUsecase) Lookup(ctx context.Context, uid string) (userdom.Profile, error) {
	p, err := uc.repo.Get(ctx, uid)
	if errors.Is(err, userdom.ErrNotFound) {
		return userdom.Profile{}, nil
	}
	return p, err
}

// Register sets display name and role. An empty displayName falls back to
// the token's name claim.
func (uc *ProfileUsecase) Register(ctx context.Context, id userdom.Identity, displayName string, role userdom.Role) (userdom.Profile, error) {
	p, err := userdom.NewProfile(id, displayName, role, uc.clock.Now())
	if err != nil {
		return userdom.Profile{}, err
	}
	if err := uc.repo.Upsert(ctx, p); err != nil {
		return userdom.Profile{}, err
	}
	return uc.repo.Get(ctx, p.UID)
}
