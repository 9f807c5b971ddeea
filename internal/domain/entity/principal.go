package entity

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the identity handed to the core by the external role/profile
// store. The core trusts it for every authorization decision.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// Is reports whether the principal is the given user acting in the given role.
func (p Principal) Is(role Role, userID uuid.UUID) bool {
	return p.Role == role && p.UserID == userID
}

type principalKey struct{}

// WithPrincipal attaches the current user to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// CurrentUser returns the principal attached by the auth middleware.
func CurrentUser(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == uuid.Nil || !p.Role.Valid() {
		return Principal{}, false
	}
	return p, true
}
