// internal/domain/user/repository_port.go
package user

import "context"

// Repository stores profiles (Firestore: users/{uid}).
type Repository interface {
	// Get returns ErrNotFound when the user never registered a profile.
	Get(ctx context.Context, uid string) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
}

// TokenVerifier is the auth provider port: it turns a client ID token into
// a verified Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}
