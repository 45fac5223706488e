package auth

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

// Principal is the outcome of a successful pass through the authorization
// gate: the resolved account and the bearer token it presented.
type Principal struct {
	Account *models.Account
	Token   string
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by the gate, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil && p.Account != nil
}

// RequireRole checks that p holds one of roles.
// A missing principal is ErrorUnauthorized, a role mismatch ErrForbidden.
func RequireRole(p *Principal, roles ...models.Role) error {
	if p == nil || p.Account == nil {
		return common.ErrorUnauthorized
	}
	if slices.Contains(roles, p.Account.Role) {
		return nil
	}
	return common.ErrForbidden
}

// RequireOwnerOrRole lets p through when it owns the resource (ownerID) or
// holds one of roles.
func RequireOwnerOrRole(p *Principal, ownerID string, roles ...models.Role) error {
	if p == nil || p.Account == nil {
		return common.ErrorUnauthorized
	}
	if ownerID != "" && p.Account.ID == ownerID {
		return nil
	}
	return RequireRole(p, roles...)
}
