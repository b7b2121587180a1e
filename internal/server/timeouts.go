// internal/server/timeouts.go
//
// HTTP server helper with hardened timeouts.
//
// The login endpoints make this service an attractive slow-loris
// target, so the header deadline is tight and separate from the body
// deadline:
//
//   • ReadHeaderTimeout – 5 s to deliver the full header block
//   • ReadTimeout       – 10 s for the whole request (JSON bodies are small)
//   • WriteTimeout      – 15 s cap on response time (bcrypt sits inside this)
//   • IdleTimeout       – 60 s keep-alive for dashboard request bursts
//
// This helper centralises those defaults so cmd/api doesn’t repeat
// boilerplate.
//

package server

import (
	"net/http"
	"time"
)

// maxHeaderBytes bounds header memory per connection; the admin API
// carries at most one bearer token and a handful of small headers.
const maxHeaderBytes = 64 << 10

// New constructs an *http.Server with the hardened defaults above.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    maxHeaderBytes,
		// TLSConfig may be injected by callers (e.g., autocert).
	}
}
