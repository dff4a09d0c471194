package auth

import "context"

// Principal is the authenticated caller. It is resolved once per request and passed explicitly
// to every service operation.
type Principal struct {
	UserID    string
	Roles     []string
	IPAddress string
	UserAgent string
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by the middleware, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
