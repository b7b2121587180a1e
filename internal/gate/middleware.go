// internal/gate/middleware.go
//
// Chi middleware that enforces the two-tier principal model.
//
// Context
// -------
// Every authenticated route passes one of these wrappers.  They verify
// the bearer token, check the kind discriminant, and (for central
// routes) test role membership against an explicit allow-set.  Roles
// are never rank-compared: an operation names exactly the roles it
// permits.
//
// Error mapping follows the boundary taxonomy: missing/invalid/expired
// token → Unauthenticated; valid token of the wrong kind, or with a
// role outside the allow-set → Forbidden.
package gate

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/latticecms/lattice/internal/credential"
	"github.com/latticecms/lattice/internal/httpx"
	"github.com/latticecms/lattice/internal/metrics"
	"github.com/latticecms/lattice/internal/token"
)

// RequireCentral ensures the caller holds a valid central-admin token
// whose role is in the allow-set.  An empty set admits every central
// role (read-only listings).
func RequireCentral(issuer *token.Issuer, roles ...credential.Role) func(http.Handler) http.Handler {
	allowSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowSet[string(r)] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verify(w, r, issuer, token.CentralCookie)
			if !ok {
				return
			}
			if claims.Kind != token.KindCentral {
				metrics.AuthzDeniedTotal.WithLabelValues("forbidden").Inc()
				httpx.Forbidden(w)
				return
			}
			if len(allowSet) > 0 {
				if _, ok := allowSet[claims.Role]; !ok {
					metrics.AuthzDeniedTotal.WithLabelValues("forbidden").Inc()
					httpx.Forbidden(w)
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireSiteAdmin ensures the caller holds a valid site-admin token and
// binds its tenant identity into the request context for the ownership
// checks downstream.
func RequireSiteAdmin(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verify(w, r, issuer, token.SiteCookie)
			if !ok {
				return
			}
			if claims.Kind != token.KindSite {
				metrics.AuthzDeniedTotal.WithLabelValues("forbidden").Inc()
				httpx.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// verify extracts and verifies the bearer token, writing the 401 itself
// on failure.  Expired and malformed tokens are distinguished in logs
// only; the wire response is identical.
func verify(w http.ResponseWriter, r *http.Request, issuer *token.Issuer, cookieName string) (*token.Claims, bool) {
	raw := token.FromRequest(r, cookieName)
	if raw == "" {
		metrics.AuthzDeniedTotal.WithLabelValues("unauthenticated").Inc()
		httpx.Unauthenticated(w)
		return nil, false
	}
	claims, err := issuer.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			zap.S().Debugw("token expired", "path", r.URL.Path)
		} else {
			zap.S().Warnw("token rejected", "path", r.URL.Path, "err", err)
		}
		metrics.AuthzDeniedTotal.WithLabelValues("unauthenticated").Inc()
		httpx.Unauthenticated(w)
		return nil, false
	}
	return claims, true
}
