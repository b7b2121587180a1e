// internal/gate/context.go
//
// Request-context carriers for the authenticated principal.
//
// Usage
// -----
//     // Middleware attaches the verified claims.
//     ctx = gate.WithClaims(ctx, claims)
//
//     // Handlers retrieve them.
//     c, ok := gate.ClaimsFromContext(ctx)
//
// Notes
// -----
// • Stores *token.Claims directly in context under an unexported key to
//   avoid collisions.
// • Oxford commas, two spaces after periods.

package gate

import (
	"context"

	"github.com/latticecms/lattice/internal/token"
)

// claimsKey is unexported to avoid context-key collisions.
type claimsKey struct{}

// WithClaims returns a new context carrying the verified claims.
func WithClaims(ctx context.Context, c *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext extracts the claims attached by the middleware.  It
// returns (nil, false) when no gate has run, which handlers treat as a
// programming error rather than an anonymous caller.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*token.Claims)
	return c, ok
}

// SiteTenantID returns the bound tenant of a site-admin principal, or
// (0, false) for anonymous or central callers.
func SiteTenantID(ctx context.Context) (int64, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.Kind != token.KindSite {
		return 0, false
	}
	return c.TenantID, true
}
