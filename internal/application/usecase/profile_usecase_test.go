package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coplace/internal/adapters/out/memory"
	userdom "coplace/internal/domain/user"
)

func TestProfileUsecase(t *testing.T) {
	ctx := context.Background()
	uc := NewProfileUsecase(memory.NewUserRepository(), testClock)
	id := userdom.Identity{UID: "u1", DisplayName: "Budi", Email: "budi@example.com"}

	p, err := uc.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, userdom.Profile{}, p)

	p, err = uc.Register(ctx, id, "", userdom.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, "Budi", p.DisplayName)
	assert.Equal(t, testNow, p.CreatedAt)

	got, err := uc.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.IsSeller())

	_, err = uc.Register(ctx, id, "x", "admin")
	assert.ErrorIs(t, err, userdom.ErrInvalidRole)
}

func TestSessionFromIdentity(t *testing.T) {
	id := userdom.Identity{UID: " u1 ", DisplayName: "token name", Email: ""}
	p := userdom.Profile{UID: "u1", DisplayName: "Toko Budi", Email: "stored@example.com", Role: userdom.RoleSeller}

	s := SessionFromIdentity(id, p)
	assert.Equal(t, "u1", s.UID)
	assert.Equal(t, "Toko Budi", s.DisplayName)
	assert.Equal(t, "stored@example.com", s.Email)
	assert.True(t, s.IsSeller())

	s = SessionFromIdentity(id, userdom.Profile{})
	assert.Equal(t, "token name", s.DisplayName)
	assert.False(t, s.IsSeller())

	ctx := WithSession(context.Background(), s)
	got, ok := SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, s, got)

	_, ok = SessionFromContext(WithSession(context.Background(), Session{}))
	assert.False(t, ok)
}
