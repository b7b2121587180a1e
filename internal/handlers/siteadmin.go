// internal/handlers/siteadmin.go
//
// Site-admin session lifecycle and credential management.
//
// Context
// -------
// Site-admin login is the hardened path: a per-IP rate limit sits in
// front, then the per-credential lockout state machine.  The ordering
// below is load-bearing:
//
//   1. Rate limit check (cheap, before any DB work).
//   2. Tenant resolution via the registry cache.
//   3. Credential fetch.
//   4. Lock check BEFORE the bcrypt compare, so attempts against a
//      locked credential never touch the password and never advance
//      the counter.
//   5. Expired lock is cleared first, giving the caller a fresh window
//      of five attempts rather than locking again on the next miss.
//   6. Failure increments atomically in the store; the fifth failure
//      sets the lock in the same statement.
//   7. Success resets both lockout columns.
//
// Unknown tenant, unknown email, and wrong password all return the
// identical invalid_credentials response.  A locked credential answers
// account_locked with the remaining whole minutes (rounded up), which
// deliberately confirms the account exists; the operators decided the
// support-call cost of a silent lock outweighed that leak.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/latticecms/lattice/internal/audit"
	"github.com/latticecms/lattice/internal/credential"
	"github.com/latticecms/lattice/internal/gate"
	"github.com/latticecms/lattice/internal/httpx"
	"github.com/latticecms/lattice/internal/lockout"
	"github.com/latticecms/lattice/internal/metrics"
	"github.com/latticecms/lattice/internal/requestinfo"
	"github.com/latticecms/lattice/internal/tenant"
	"github.com/latticecms/lattice/internal/token"
)

type siteLoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TenantSlug string `json:"tenantSlug"`
}

type siteLoginResponse struct {
	Token      string `json:"token"`
	TenantID   int64  `json:"tenantId"`
	TenantSlug string `json:"tenantSlug"`
	TenantName string `json:"tenantName"`
	Email      string `json:"email"`
}

func (h *Handler) siteLogin(w http.ResponseWriter, r *http.Request) {
	ip := requestinfo.ClientIP(r)
	ipKey := ""
	if ip != nil {
		ipKey = ip.String()
	}
	if !h.limiter.Allow(ipKey) {
		metrics.LoginAttemptsTotal.WithLabelValues("site", "rate_limited").Inc()
		httpx.RateLimited(w)
		return
	}

	var req siteLoginRequest
	if !decode(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.TenantSlug = strings.TrimSpace(req.TenantSlug)
	if req.Email == "" || req.Password == "" || req.TenantSlug == "" {
		httpx.Validation(w, "email, password, and tenantSlug are required")
		return
	}

	reject := func(tenantID *int64) {
		metrics.LoginAttemptsTotal.WithLabelValues("site", "invalid").Inc()
		h.audit.Record(r.Context(), audit.Entry{
			TenantID:  tenantID,
			ActorKind: "anonymous",
			Action:    audit.ActionSiteLoginFailed,
			Detail:    map[string]any{"email": req.Email, "tenantSlug": req.TenantSlug},
		})
		httpx.InvalidCredentials(w)
	}

	ten, err := h.tenants.Get(r.Context(), req.TenantSlug)
	if err != nil {
		if !errors.Is(err, tenant.ErrNotFound) {
			zap.S().Errorw("site login tenant lookup", "slug", req.TenantSlug, "err", err)
			httpx.Internal(w)
			return
		}
		credential.CheckPassword(credential.DummyHash, req.Password)
		reject(nil)
		return
	}
	if !ten.Active() || !ten.AdminEnabled {
		credential.CheckPassword(credential.DummyHash, req.Password)
		reject(&ten.ID)
		return
	}

	sa, err := credential.SiteAdminByTenant(r.Context(), h.db, ten.ID)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			zap.S().Errorw("site login credential lookup", "tenant", ten.ID, "err", err)
			httpx.Internal(w)
			return
		}
		credential.CheckPassword(credential.DummyHash, req.Password)
		reject(&ten.ID)
		return
	}

	now := time.Now()
	if lockout.Locked(sa, now) {
		metrics.LoginAttemptsTotal.WithLabelValues("site", "locked").Inc()
		httpx.AccountLocked(w, lockout.RemainingMinutes(sa, now))
		return
	}
	if sa.LockedUntil != nil {
		// The lock has expired: clear it so this window starts from a
		// clean counter instead of locking again on the first miss.
		if err := lockout.ClearExpiredLock(r.Context(), h.db, sa.ID); err != nil {
			zap.S().Errorw("site login clear expired lock", "id", sa.ID, "err", err)
			httpx.Internal(w)
			return
		}
		sa.FailedAttempts = 0
		sa.LockedUntil = nil
	}

	// The email on file must match too; the tenant relationship is 1:1
	// but the caller still has to know the address.
	if !strings.EqualFold(sa.Email, req.Email) || !credential.CheckPassword(sa.PasswordHash, req.Password) {
		after, ferr := lockout.RecordFailure(r.Context(), h.db, sa.ID)
		if ferr != nil {
			zap.S().Errorw("site login record failure", "id", sa.ID, "err", ferr)
			httpx.Internal(w)
			return
		}
		if lockout.Locked(after, now) {
			metrics.LockoutsTotal.Inc()
			metrics.LoginAttemptsTotal.WithLabelValues("site", "locked").Inc()
			h.audit.Record(r.Context(), audit.Entry{
				TenantID:  &ten.ID,
				ActorKind: "anonymous",
				Action:    audit.ActionSiteLockout,
				Detail:    map[string]any{"email": req.Email, "failedAttempts": after.FailedAttempts},
			})
			httpx.AccountLocked(w, lockout.RemainingMinutes(after, now))
			return
		}
		reject(&ten.ID)
		return
	}

	if err := lockout.Reset(r.Context(), h.db, sa.ID); err != nil {
		zap.S().Errorw("site login lockout reset", "id", sa.ID, "err", err)
		httpx.Internal(w)
		return
	}

	tok, err := h.issuer.Mint(token.Claims{
		Kind:       token.KindSite,
		Subject:    sa.ID,
		Email:      sa.Email,
		TenantID:   ten.ID,
		TenantSlug: ten.Slug,
	})
	if err != nil {
		zap.S().Errorw("site token mint", "err", err)
		httpx.Internal(w)
		return
	}
	token.SetCookie(w, token.SiteCookie, tok, h.cookies)

	metrics.LoginAttemptsTotal.WithLabelValues("site", "ok").Inc()
	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &ten.ID,
		ActorKind: "site",
		ActorID:   sa.ID,
		Action:    audit.ActionSiteLogin,
		Detail:    map[string]any{"email": sa.Email, "tenantSlug": ten.Slug},
	})

	httpx.WriteJSON(w, http.StatusOK, siteLoginResponse{
		Token:      tok,
		TenantID:   ten.ID,
		TenantSlug: ten.Slug,
		TenantName: ten.Name,
		Email:      sa.Email,
	})
}

func (h *Handler) siteLogout(w http.ResponseWriter, r *http.Request) {
	token.ClearCookie(w, token.SiteCookie, h.cookies)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// changePassword re-authenticates with the current password before
// accepting the new one, then clears the cookie so the admin signs in
// again.  Tokens already minted stay valid until expiry (stateless
// design); the re-login is a UX convention, not revocation.
func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := gate.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Unauthenticated(w)
		return
	}

	var req changePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	sa, err := credential.SiteAdminByID(r.Context(), h.db, claims.Subject)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			// Credential was replaced or the tenant removed since the
			// token was minted.
			httpx.Unauthenticated(w)
			return
		}
		zap.S().Errorw("change password lookup", "id", claims.Subject, "err", err)
		httpx.Internal(w)
		return
	}

	if !credential.CheckPassword(sa.PasswordHash, req.CurrentPassword) {
		httpx.InvalidCredentials(w)
		return
	}

	hash, err := credential.HashPassword(req.NewPassword)
	if err != nil {
		if errors.Is(err, credential.ErrPasswordTooShort) {
			httpx.Validation(w, err.Error())
			return
		}
		zap.S().Errorw("change password hash", "err", err)
		httpx.Internal(w)
		return
	}
	if err := credential.UpdateSiteAdminPassword(r.Context(), h.db, sa.ID, hash); err != nil {
		zap.S().Errorw("change password update", "id", sa.ID, "err", err)
		httpx.Internal(w)
		return
	}

	token.ClearCookie(w, token.SiteCookie, h.cookies)
	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &sa.TenantID,
		ActorKind: "site",
		ActorID:   sa.ID,
		Action:    audit.ActionPasswordChange,
		Detail:    map[string]any{"email": sa.Email},
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}

//
// Credential management (central side).
//

type credentialResponse struct {
	TenantID       int64      `json:"tenantId"`
	Email          string     `json:"email"`
	FailedAttempts int        `json:"failedAttempts"`
	LockedUntil    *time.Time `json:"lockedUntil,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (h *Handler) getCredential(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := urlID(w, chi.URLParam(r, "tenantID"))
	if !ok {
		return
	}
	sa, err := credential.SiteAdminByTenant(r.Context(), h.db, tenantID)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			httpx.NotFound(w)
			return
		}
		zap.S().Errorw("credential fetch", "tenant", tenantID, "err", err)
		httpx.Internal(w)
		return
	}
	// The password hash never leaves the service.
	httpx.WriteJSON(w, http.StatusOK, credentialResponse{
		TenantID:       sa.TenantID,
		Email:          sa.Email,
		FailedAttempts: sa.FailedAttempts,
		LockedUntil:    sa.LockedUntil,
		CreatedAt:      sa.CreatedAt,
		UpdatedAt:      sa.UpdatedAt,
	})
}

type putCredentialRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// putCredential creates or replaces the tenant's single site-admin
// credential.  The upsert also zeroes failed_attempts and locked_until,
// making it the operator's unlock lever for a locked-out customer.
func (h *Handler) putCredential(w http.ResponseWriter, r *http.Request) {
	claims, ok := mustCentralClaims(w, r)
	if !ok {
		return
	}
	tenantID, ok := urlID(w, chi.URLParam(r, "tenantID"))
	if !ok {
		return
	}

	var req putCredentialRequest
	if !decode(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		httpx.Validation(w, "a valid email is required")
		return
	}

	if _, err := tenant.ByID(r.Context(), h.db, tenantID); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			httpx.NotFound(w)
			return
		}
		zap.S().Errorw("credential upsert tenant check", "tenant", tenantID, "err", err)
		httpx.Internal(w)
		return
	}

	hash, err := credential.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, credential.ErrPasswordTooShort) {
			httpx.Validation(w, err.Error())
			return
		}
		zap.S().Errorw("credential upsert hash", "err", err)
		httpx.Internal(w)
		return
	}

	if err := credential.UpsertSiteAdmin(r.Context(), h.db, tenantID, req.Email, hash); err != nil {
		zap.S().Errorw("credential upsert", "tenant", tenantID, "err", err)
		httpx.Internal(w)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &tenantID,
		ActorKind: "central",
		ActorID:   claims.Subject,
		Action:    audit.ActionCredentialIssue,
		Detail:    map[string]any{"email": req.Email},
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"tenantId": tenantID,
		"email":    req.Email,
	})
}
