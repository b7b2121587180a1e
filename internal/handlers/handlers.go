// internal/handlers/handlers.go
//
// HTTP surface of the access-control core.
//
// Context
// -------
// One Handler owns the shared dependencies (DB pool, token issuer,
// tenant cache, audit recorder, login limiter) and Router() assembles
// the chi tree.  Authorization is declared route-side with the gate
// middlewares, so reading this file shows which principal kind and
// which central roles each endpoint demands.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/latticecms/lattice/internal/audit"
	"github.com/latticecms/lattice/internal/credential"
	"github.com/latticecms/lattice/internal/gate"
	"github.com/latticecms/lattice/internal/ratelimit"
	"github.com/latticecms/lattice/internal/tenant"
	"github.com/latticecms/lattice/internal/token"
)

// Handler bundles the dependencies shared by every endpoint.
type Handler struct {
	db      *sqlx.DB
	issuer  *token.Issuer
	tenants *tenant.Cache
	audit   *audit.Recorder
	limiter *ratelimit.LoginLimiter
	cookies token.CookieOptions
}

// New wires a Handler.  All arguments are required.
func New(db *sqlx.DB, issuer *token.Issuer, tenants *tenant.Cache,
	rec *audit.Recorder, limiter *ratelimit.LoginLimiter, cookies token.CookieOptions) *Handler {
	return &Handler{
		db:      db,
		issuer:  issuer,
		tenants: tenants,
		audit:   rec,
		limiter: limiter,
		cookies: cookies,
	}
}

// Router returns the complete route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.healthz)

	// Central-admin authentication.  Login and register are public;
	// register always creates an EDITOR, and only a SUPER_ADMIN can
	// elevate an account afterwards.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.centralLogin)
		r.Post("/logout", h.centralLogout)
		r.Post("/register", h.centralRegister)
		r.With(gate.RequireCentral(h.issuer, credential.RoleSuperAdmin)).
			Put("/users/{userID}/role", h.centralRoleChange)
	})

	// Tenant registry.  Central principals only.
	r.Route("/tenants", func(r chi.Router) {
		r.With(gate.RequireCentral(h.issuer)).
			Get("/", h.listTenants)
		r.With(gate.RequireCentral(h.issuer, credential.RoleSuperAdmin, credential.RoleAdmin)).
			Post("/", h.createTenant)
		r.With(gate.RequireCentral(h.issuer, credential.RoleSuperAdmin)).
			Delete("/{tenantID}", h.deleteTenant)
		r.With(gate.RequireCentral(h.issuer, credential.RoleSuperAdmin, credential.RoleAdmin)).
			Post("/{tenantID}/pages", h.centralCreatePage)
	})

	// Site-admin credential management (central side) and the
	// site-admin session lifecycle.
	r.Route("/site-admin", func(r chi.Router) {
		r.With(gate.RequireCentral(h.issuer, credential.RoleSuperAdmin, credential.RoleAdmin)).
			Get("/credentials/{tenantID}", h.getCredential)
		r.With(gate.RequireCentral(h.issuer, credential.RoleSuperAdmin, credential.RoleAdmin)).
			Put("/credentials/{tenantID}", h.putCredential)

		r.Post("/login", h.siteLogin)
		r.Post("/logout", h.siteLogout)
		r.With(gate.RequireSiteAdmin(h.issuer)).
			Post("/change-password", h.changePassword)

		// Content, scoped to the token's tenant.
		r.Route("/content", func(r chi.Router) {
			r.Use(gate.RequireSiteAdmin(h.issuer))
			r.Get("/pages", h.listPages)
			r.Get("/pages/{pageID}", h.getPage)
			r.Post("/pages", h.siteCreatePage)
			r.Post("/pages/{pageID}/publish", h.publishPage)
			r.Post("/pages/{pageID}/sections", h.createSection)
			r.Put("/sections/{sectionID}", h.updateSection)
		})
	})

	// Central-side content cleanup.
	r.Route("/content", func(r chi.Router) {
		r.Use(gate.RequireCentral(h.issuer, credential.RoleSuperAdmin, credential.RoleAdmin))
		r.Delete("/pages/{pageID}", h.centralDeletePage)
		r.Delete("/sections/{sectionID}", h.centralDeleteSection)
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "db unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
