package auth

import (
	"context"

	"github.com/calebwray/theotime/internal/model"
)

type contextKey struct{}

// Principal is the authenticated actor on a request, extracted from the
// bearer token by the auth middleware. Core logic trusts it as-is.
type Principal struct {
	UserID int64
	Role   string
}

// IsParent reports whether the principal has the parent (administrator) role.
func (p Principal) IsParent() bool {
	return p.Role == model.RoleParent
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// MustFromContext returns the request principal; it returns the zero value
// when the middleware did not run, which fails every permission check.
func MustFromContext(ctx context.Context) Principal {
	p, _ := FromContext(ctx)
	return p
}
