// internal/adapters/out/memory/token_verifier_mem.go
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	userdom "coplace/internal/domain/user"
)

var ErrUnknownToken = errors.New("token_verifier_mem: unknown token")

// TokenVerifier accepts a fixed set of bearer tokens. It stands in for the
// Firebase verifier in tests and in local runs without a Firebase project.
type TokenVerifier struct {
	mu     sync.RWMutex
	tokens map[string]userdom.Identity
}

func NewTokenVerifier() *TokenVerifier {
	return &TokenVerifier{tokens: map[string]userdom.Identity{}}
}

// Register makes token resolve to id.
func (v *TokenVerifier) Register(token string, id userdom.Identity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[strings.TrimSpace(token)] = id
}

func (v *TokenVerifier) Verify(_ context.Context, idToken string) (userdom.Identity, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.tokens[strings.TrimSpace(idToken)]
	if !ok {
		return userdom.Identity{}, ErrUnknownToken
	}
	return id, nil
}
