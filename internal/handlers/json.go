// internal/handlers/json.go
//
// Request-body decoding shared by every endpoint.  Strict JSON: unknown
// fields are rejected so typos surface as 400s instead of silently
// dropped attributes.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/latticecms/lattice/internal/httpx"
)

const maxBodyBytes = 1 << 20 // 1 MiB, generous for JSON section payloads

// decode fills dst from the request body.  On failure it writes the
// validation error itself and returns false; the caller just returns.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.Validation(w, "malformed JSON body")
		return false
	}
	return true
}

// urlID parses a chi URL parameter as a positive int64.  Writes NotFound
// on failure so unparsable IDs are indistinguishable from absent rows.
func urlID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		httpx.NotFound(w)
		return 0, false
	}
	return id, true
}
