// Package static provides a token-map identity verifier for development and
// tests, standing in for the external identity provider.
package static

import (
	"context"
	"fmt"
	"strings"

	"github.com/pawhaven/adoption-api/internal/identity"
)

var _ identity.Verifier = (*Verifier)(nil)

// Verifier resolves tokens against a fixed in-memory map.
type Verifier struct {
	principals map[string]identity.Principal
}

// NewVerifier builds a verifier over the provided token map.
func NewVerifier(principals map[string]identity.Principal) *Verifier {
	if principals == nil {
		principals = map[string]identity.Principal{}
	}
	return &Verifier{principals: principals}
}

// Verify looks the token up, returning ErrUnauthenticated when unknown.
func (v *Verifier) Verify(_ context.Context, token string) (identity.Principal, error) {
	principal, ok := v.principals[token]
	if !ok {
		return identity.Principal{}, identity.ErrUnauthenticated
	}
	return principal, nil
}

// ParseTokens parses the AUTH_STATIC_TOKENS format:
// "token:user" or "token:user:role1|role2", comma separated.
func ParseTokens(raw string) (map[string]identity.Principal, error) {
	principals := map[string]identity.Principal{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid static token entry %q", entry)
		}
		principal := identity.Principal{UserID: parts[1]}
		if len(parts) == 3 && parts[2] != "" {
			principal.Roles = strings.Split(parts[2], "|")
		}
		principals[parts[0]] = principal
	}
	return principals, nil
}
