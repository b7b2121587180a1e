// internal/httpx/respond.go
//
// JSON response helpers and the boundary error taxonomy.
//
// Context
// -------
// Every handler shapes its failures through these helpers so the wire
// format stays uniform: `{"error":{"code":"…","message":"…"}}`.  The
// codes form a closed set; nothing below the HTTP boundary constructs
// response bodies.
//
// Two deliberate asymmetries, both security-motivated:
//
//   • InvalidCredentials is identical whether the email is unknown or
//     the password wrong, preventing account enumeration.
//   • NotFound is returned for entities that exist but belong to a
//     different tenant, so a site admin cannot probe other tenants’
//     content IDs.
//
// AccountLocked is the one place that does reveal account existence;
// the remaining lock time is a usability requirement for site admins.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Error codes surfaced to API clients.
const (
	CodeValidation         = "validation_error"
	CodeUnauthenticated    = "unauthenticated"
	CodeInvalidCredentials = "invalid_credentials"
	CodeAccountLocked      = "account_locked"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

type errorBody struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// RetryAfterMinutes is set only for account_locked responses.
	RetryAfterMinutes int `json:"retryAfterMinutes,omitempty"`
}

// WriteJSON encodes payload with the given status.  A nil payload writes
// only headers.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// Fail writes an error body with an arbitrary code.
func Fail(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorBody{Error: responseError{Code: code, Message: message}})
}

//
// Canned taxonomy helpers
//

// Validation reports a malformed or incomplete request body.
func Validation(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, CodeValidation, message)
}

// Unauthenticated covers missing, malformed, expired, or wrong-kind
// tokens.  The message stays generic to avoid oracle leakage; the
// precise reason is logged server-side.
func Unauthenticated(w http.ResponseWriter) {
	Fail(w, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
}

// InvalidCredentials is deliberately identical for unknown email and
// wrong password.
func InvalidCredentials(w http.ResponseWriter) {
	Fail(w, http.StatusUnauthorized, CodeInvalidCredentials, "invalid email or password")
}

// AccountLocked reports the remaining lock window in whole minutes.
func AccountLocked(w http.ResponseWriter, minutes int) {
	WriteJSON(w, http.StatusForbidden, errorBody{Error: responseError{
		Code:              CodeAccountLocked,
		Message:           "account temporarily locked; try again later",
		RetryAfterMinutes: minutes,
	}})
}

// Forbidden covers a valid token with insufficient role or wrong kind.
func Forbidden(w http.ResponseWriter) {
	Fail(w, http.StatusForbidden, CodeForbidden, "insufficient privileges")
}

// NotFound covers both genuinely missing entities and cross-tenant
// ownership mismatches.
func NotFound(w http.ResponseWriter) {
	Fail(w, http.StatusNotFound, CodeNotFound, "not found")
}

// RateLimited rejects a caller that exceeded the login attempt budget.
func RateLimited(w http.ResponseWriter) {
	Fail(w, http.StatusTooManyRequests, CodeRateLimited, "too many attempts; slow down")
}

// Internal hides store and configuration failures behind a generic 500.
func Internal(w http.ResponseWriter) {
	Fail(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}
