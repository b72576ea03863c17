// Package identity defines the collaborator port for the external identity
// provider. The reconciliation service never issues or validates tokens
// itself; it only consumes verified principals.
package identity

import (
	"context"
	"errors"
)

// RoleAdmin grants the administrative capability that bypasses the ownership
// check on adoption cancellation and unlocks catalog mutations.
const RoleAdmin = "admin"

// ErrUnauthenticated signals a missing, expired, or unknown credential.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the authenticated caller identity supplied by the provider.
type Principal struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the principal carries the given role claim.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal carries the administrative capability.
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// Verifier resolves a bearer token into a Principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}
