// internal/middleware/cors.go
//
// CORS allow-list middleware.
//
// The admin dashboards are served from separate origins, so both APIs
// must answer preflights and echo the caller’s origin when it is on the
// configured allow-list.  Credentials are always allowed because both
// token kinds ride in cookies.
//
// Notes
// -----
// • A wildcard entry ("*") matches any origin but still echoes the
//   concrete Origin header; wildcards with credentials are rejected by
//   browsers otherwise.
// • Oxford commas, two spaces after periods.

package middleware

import (
	"net/http"
	"strings"
)

// CORS wraps next with an allow-list of origins.
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !originAllowed(allowed, origin) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Set("Access-Control-Max-Age", "3600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed reports whether origin is on the allow-list.
func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
