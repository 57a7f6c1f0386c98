package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coplace/internal/adapters/out/memory"
	usecase "coplace/internal/application/usecase"
	userdom "coplace/internal/domain/user"
)

type brokenUsers struct{}

func (brokenUsers) Get(context.Context, string) (userdom.Profile, error) {
	return userdom.Profile{}, errors.New("firestore unavailable")
}
func (brokenUsers) Upsert(context.Context, userdom.Profile) error { return nil }

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	verifier := memory.NewTokenVerifier()
	verifier.Register("tok", userdom.Identity{UID: "u1", DisplayName: "Budi"})
	m := &AuthMiddleware{Verifier: verifier, Profiles: usecase.NewProfileUsecase(memory.NewUserRepository(), nil)}

	var got usecase.Session
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := CurrentSession(r)
		require.True(t, ok)
		id, ok := CurrentIdentity(r)
		require.True(t, ok)
		assert.Equal(t, "u1", id.UID)
		got = s
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer  ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer nope").Code)

	require.Equal(t, http.StatusOK, serve(h, "Bearer tok").Code)
	assert.Equal(t, "Budi", got.DisplayName)
	assert.False(t, got.IsSeller())
}

func TestAuthMiddleware_Unavailable(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	var nilAuth *AuthMiddleware
	assert.Equal(t, http.StatusServiceUnavailable, serve(nilAuth.Handler(ok), "Bearer tok").Code)

	verifier := memory.NewTokenVerifier()
	verifier.Register("tok", userdom.Identity{UID: "u1"})
	m := &AuthMiddleware{Verifier: verifier, Profiles: usecase.NewProfileUsecase(brokenUsers{}, nil)}
	assert.Equal(t, http.StatusServiceUnavailable, serve(m.Handler(ok), "Bearer tok").Code)
}

func TestRequireSeller(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireSeller(ok)

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)

	for role, want := range map[userdom.Role]int{
		userdom.RoleBuyer:  http.StatusForbidden,
		userdom.RoleSeller: http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(usecase.WithSession(req.Context(), usecase.Session{UID: "u1", Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") }))
	rec := serve(h, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
