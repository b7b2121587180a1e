// internal/token/cookie.go
//
// Token delivery helpers: secure cookies for browser sessions, bearer
// headers for programmatic clients.  The cookie is checked first so a
// browser session wins when both are present.
package token

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names for the two principal kinds.
const (
	CentralCookie = "token"
	SiteCookie    = "site_admin_token"
)

// CookieOptions captures the deploy-specific cookie attributes.
type CookieOptions struct {
	Domain string
	Secure bool          // true in production (HTTPS)
	MaxAge time.Duration // normally Issuer.TTL()
}

// SetCookie writes an http-only token cookie.  SameSite is None when
// Secure (the dashboards are served cross-origin in production) and Lax
// otherwise, since browsers refuse None without Secure.
func SetCookie(w http.ResponseWriter, name, value string, opts CookieOptions) {
	sameSite := http.SameSiteLaxMode
	if opts.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   opts.Domain,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: sameSite,
		MaxAge:   int(opts.MaxAge.Seconds()),
	})
}

// ClearCookie expires the named token cookie.  The old token remains
// cryptographically valid until its natural expiry; clearing only
// removes the client's stored copy.
func ClearCookie(w http.ResponseWriter, name string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Domain:   opts.Domain,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		MaxAge:   -1,
	})
}

// FromRequest extracts a raw token: the named cookie first, then an
// `Authorization: Bearer` header.  Empty string when neither is present.
func FromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return bearerToken(r.Header.Get("Authorization"))
}

// bearerToken parses "Bearer <token>" case-insensitively.
func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
