// internal/adapters/out/firebase/token_verifier.go
package firebase

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	userdom "coplace/internal/domain/user"
)

// TokenVerifier implements user.TokenVerifier with Firebase Auth ID tokens.
type TokenVerifier struct {
	Client *fbauth.Client
}

func NewTokenVerifier(client *fbauth.Client) *TokenVerifier {
	return &TokenVerifier{Client: client}
}

func (v *TokenVerifier) Verify(ctx context.Context, idToken string) (userdom.Identity, error) {
	if v == nil || v.Client == nil {
		return userdom.Identity{}, errors.New("token_verifier: firebase auth client is nil")
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return userdom.Identity{}, errors.New("token_verifier: token is empty")
	}

	tok, err := v.Client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return userdom.Identity{}, err
	}
	return userdom.Identity{
		UID:         tok.UID,
		DisplayName: claimString(tok.Claims, "name"),
		Email:       claimString(tok.Claims, "email"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	if claims == nil {
		return ""
	}
	if s, ok := claims[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
