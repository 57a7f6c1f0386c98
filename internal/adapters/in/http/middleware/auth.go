// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	usecase "coplace/internal/application/usecase"
	userdom "coplace/internal/domain/user"
)

// unexported key type keeps context values private to this package
type ctxKey struct{ name string }

var ctxKeyIdentity = ctxKey{name: "identity"}

// AuthMiddleware verifies "Authorization: Bearer <ID_TOKEN>", loads the
// stored profile and puts both the Identity and the usecase.Session into the
// request context.
type AuthMiddleware struct {
	Verifier userdom.TokenVerifier
	Profiles *usecase.ProfileUsecase
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.Verifier == nil || m.Profiles == nil {
			writeError(w, http.StatusServiceUnavailable, "auth middleware not initialized")
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized: missing bearer token")
			return
		}
		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized: empty bearer token")
			return
		}

		id, err := m.Verifier.Verify(r.Context(), idToken)
		if err != nil {
			log.Printf("[auth] verify failed path=%s: %v", r.URL.Path, err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if strings.TrimSpace(id.UID) == "" {
			writeError(w, http.StatusUnauthorized, "invalid uid in token")
			return
		}

		profile, err := m.Profiles.Lookup(r.Context(), id.UID)
		if err != nil {
			log.Printf("[auth] profile lookup failed uid=%s: %v", id.UID, err)
			writeError(w, http.StatusServiceUnavailable, "profile lookup failed")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyIdentity, id)
		ctx = usecase.WithSession(ctx, usecase.SessionFromIdentity(id, profile))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentIdentity returns the verified token claims.
func CurrentIdentity(r *http.Request) (userdom.Identity, bool) {
	id, ok := r.Context().Value(ctxKeyIdentity).(userdom.Identity)
	return id, ok
}

// CurrentSession returns the session stored by AuthMiddleware.
func CurrentSession(r *http.Request) (usecase.Session, bool) {
	return usecase.SessionFromContext(r.Context())
}

// RequireSeller rejects callers whose profile role is not seller.
func RequireSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := CurrentSession(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !s.IsSeller() {
			writeError(w, http.StatusForbidden, "seller role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
