// internal/handlers/central.go
//
// Central-admin session lifecycle: login, logout, and registration.
//
// Context
// -------
// Central credentials are global (never tenant-bound) and carry a role
// that the gate later matches against per-route allow-sets.  Login
// failures return the identical invalid_credentials response whether
// the email is unknown or the password is wrong, so the endpoint leaks
// nothing about which accounts exist.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/latticecms/lattice/internal/audit"
	"github.com/latticecms/lattice/internal/credential"
	"github.com/latticecms/lattice/internal/gate"
	"github.com/latticecms/lattice/internal/httpx"
	"github.com/latticecms/lattice/internal/metrics"
	"github.com/latticecms/lattice/internal/token"
)

type centralLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type centralUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type centralLoginResponse struct {
	Token string      `json:"token"`
	User  centralUser `json:"user"`
}

func (h *Handler) centralLogin(w http.ResponseWriter, r *http.Request) {
	var req centralLoginRequest
	if !decode(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		httpx.Validation(w, "email and password are required")
		return
	}

	admin, err := credential.CentralByEmail(r.Context(), h.db, req.Email)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			zap.S().Errorw("central login lookup", "err", err)
			httpx.Internal(w)
			return
		}
		// Unknown email: burn a bcrypt round anyway so timing does not
		// reveal account existence, then fall through to the same
		// rejection as a wrong password.
		credential.CheckPassword(credential.DummyHash, req.Password)
		metrics.LoginAttemptsTotal.WithLabelValues("central", "invalid").Inc()
		h.audit.Record(r.Context(), audit.Entry{
			ActorKind: "anonymous",
			Action:    audit.ActionCentralLoginFailed,
			Detail:    map[string]any{"email": req.Email},
		})
		httpx.InvalidCredentials(w)
		return
	}

	if !credential.CheckPassword(admin.PasswordHash, req.Password) {
		metrics.LoginAttemptsTotal.WithLabelValues("central", "invalid").Inc()
		h.audit.Record(r.Context(), audit.Entry{
			ActorKind: "anonymous",
			Action:    audit.ActionCentralLoginFailed,
			Detail:    map[string]any{"email": req.Email},
		})
		httpx.InvalidCredentials(w)
		return
	}

	tok, err := h.issuer.Mint(token.Claims{
		Kind:    token.KindCentral,
		Subject: admin.ID,
		Email:   admin.Email,
		Role:    string(admin.Role),
	})
	if err != nil {
		zap.S().Errorw("central token mint", "err", err)
		httpx.Internal(w)
		return
	}
	token.SetCookie(w, token.CentralCookie, tok, h.cookies)

	metrics.LoginAttemptsTotal.WithLabelValues("central", "ok").Inc()
	h.audit.Record(r.Context(), audit.Entry{
		ActorKind: "central",
		ActorID:   admin.ID,
		Action:    audit.ActionCentralLogin,
		Detail:    map[string]any{"email": admin.Email, "role": admin.Role},
	})

	httpx.WriteJSON(w, http.StatusOK, centralLoginResponse{
		Token: tok,
		User: centralUser{
			ID:    admin.ID,
			Name:  admin.Name,
			Email: admin.Email,
			Role:  string(admin.Role),
		},
	})
}

func (h *Handler) centralLogout(w http.ResponseWriter, r *http.Request) {
	token.ClearCookie(w, token.CentralCookie, h.cookies)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// centralRegisterRequest deliberately has no role field.  Registration
// is public, so every new account starts as EDITOR; elevation is a
// separate operation gated on SUPER_ADMIN.  The strict decoder rejects
// a body that tries to smuggle a role in anyway.
type centralRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) centralRegister(w http.ResponseWriter, r *http.Request) {
	var req centralRegisterRequest
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || !strings.Contains(req.Email, "@") {
		httpx.Validation(w, "name and a valid email are required")
		return
	}

	hash, err := credential.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, credential.ErrPasswordTooShort) {
			httpx.Validation(w, err.Error())
			return
		}
		zap.S().Errorw("central register hash", "err", err)
		httpx.Internal(w)
		return
	}

	id, err := credential.CreateCentral(r.Context(), h.db, req.Name, req.Email, hash, credential.RoleEditor)
	if err != nil {
		// The schema's unique key on email surfaces duplicates here;
		// anything else is a store outage.
		if isDuplicate(err) {
			httpx.Validation(w, "email already registered")
			return
		}
		zap.S().Errorw("central register create", "email", req.Email, "err", err)
		httpx.Internal(w)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorKind: "central",
		ActorID:   id,
		Action:    audit.ActionCentralRegister,
		Detail:    map[string]any{"email": req.Email, "role": string(credential.RoleEditor)},
	})

	httpx.WriteJSON(w, http.StatusCreated, centralUser{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Role:  string(credential.RoleEditor),
	})
}

type roleChangeRequest struct {
	Role string `json:"role"`
}

// centralRoleChange serves PUT /auth/users/{userID}/role.  Only a
// SUPER_ADMIN reaches this handler, so it is the single path by which
// an account gains ADMIN or SUPER_ADMIN.
func (h *Handler) centralRoleChange(w http.ResponseWriter, r *http.Request) {
	claims, ok := mustCentralClaims(w, r)
	if !ok {
		return
	}
	userID, ok := urlID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	var req roleChangeRequest
	if !decode(w, r, &req) {
		return
	}
	if !credential.ValidRole(req.Role) {
		httpx.Validation(w, "role must be SUPER_ADMIN, ADMIN, or EDITOR")
		return
	}

	if err := credential.UpdateCentralRole(r.Context(), h.db, userID, credential.Role(req.Role)); err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			httpx.NotFound(w)
			return
		}
		zap.S().Errorw("central role change", "user", userID, "err", err)
		httpx.Internal(w)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorKind: "central",
		ActorID:   claims.Subject,
		Action:    audit.ActionCentralRoleChange,
		Detail:    map[string]any{"userId": userID, "role": req.Role},
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": userID, "role": req.Role})
}

// mustCentralClaims fetches the verified central claims the gate stored.
// The middleware guarantees presence; the fallback guards route wiring
// mistakes in development.
func mustCentralClaims(w http.ResponseWriter, r *http.Request) (*token.Claims, bool) {
	claims, ok := gate.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Unauthenticated(w)
		return nil, false
	}
	return claims, true
}
