// internal/middleware/security.go
//
// Security-header middleware for the admin API.
//
// Context
// -------
// Every surface here is JSON over XHR; nothing renders HTML.  That
// changes the usual header set in two ways: the CSP can be maximally
// strict (deny everything, nothing is a document), and credentialed
// responses must never land in a shared cache, because login and
// credential endpoints return tokens in their bodies.
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy    –  deny-all; responses are data, not pages
//   • X-Frame-Options            –  click-jacking defence for stray browsers
//   • X-Content-Type-Options     –  MIME-sniffing defence
//   • Referrer-Policy            –  drops path/query from Referer
//   • Cache-Control              –  no-store on everything under the API
//
// Notes
// -----
// • Headers are set before next.ServeHTTP runs; anything written after
//   the handler's WriteHeader call would be silently dropped.
// • Values are Set, not Add: no endpoint in the admin API has a reason
//   to override them, so last-writer-wins keeps the policy uniform.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		hsts = "max-age=63072000; includeSubDomains; preload"
		csp  = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Strict-Transport-Security", hsts)
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
