// internal/application/usecase/context.go
package usecase

import (
	"context"
	"strings"

	userdom "coplace/internal/domain/user"
)

// Session is the signed-in user as seen by the use cases. It is passed
// explicitly; nothing reads a process-wide "current user".
type Session struct {
	UID         string
	DisplayName string
	Email       string
	Role        userdom.Role
}

// IsSeller reports whether the session may manage products.
func (s Session) IsSeller() bool { return s.Role == userdom.RoleSeller }

// SessionFromIdentity builds a session from verified token claims and the
// stored profile (zero Profile when the user has not registered yet).
func SessionFromIdentity(id userdom.Identity, p userdom.Profile) Session {
	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		name = strings.TrimSpace(id.DisplayName)
	}
	email := strings.TrimSpace(id.Email)
	if email == "" {
		email = strings.TrimSpace(p.Email)
	}
	return Session{
		UID:         strings.TrimSpace(id.UID),
		DisplayName: name,
		Email:       email,
		Role:        p.Role,
	}
}

type ctxKey struct{}

// WithSession is called by the auth middleware.
func WithSession(ctx context.Context, s Session) context.Context {
	if strings.TrimSpace(s.UID) == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, s)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
