// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Role decides which parts of the app a user may use.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func (r Role) Valid() bool { return r == RoleBuyer || r == RoleSeller }

// Errors (single source)
var (
	ErrNotFound           = errors.New("user: not found")
	ErrInvalidID          = errors.New("user: invalid id")
	ErrInvalidRole        = errors.New("user: role must be buyer or seller")
	ErrInvalidDisplayName = errors.New("user: invalid displayName")
)

// Policy
var (
	MaxNameLength = 100
)

// Identity is what the auth provider vouches for: a stable opaque uid plus
// the claims we denormalize (display name, email).
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Profile is the users/{uid} document written at registration.
type Profile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Profile) IsSeller() bool { return p.Role == RoleSeller }

// NewProfile validates registration input.
func NewProfile(id Identity, displayName string, role Role, now time.Time) (Profile, error) {
	uid := strings.TrimSpace(id.UID)
	if uid == "" {
		return Profile{}, ErrInvalidID
	}
	if !role.Valid() {
		return Profile{}, ErrInvalidRole
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = strings.TrimSpace(id.DisplayName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Profile{}, ErrInvalidDisplayName
	}
	return Profile{
		UID:         uid,
		Email:       strings.TrimSpace(id.Email),
		DisplayName: name,
		Role:        role,
		CreatedAt:   now,
	}, nil
}
