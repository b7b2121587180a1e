// internal/handlers/tenants.go
//
// Tenant registry endpoints (central principals only).
//
// Deleting a tenant cascades at the schema level: pages, sections, the
// site-admin credential, and nothing else (audit rows keep a nullable
// tenant_id so history survives the tenant).  The registry cache entry
// is invalidated so in-flight site logins cannot resolve the slug.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/latticecms/lattice/internal/audit"
	"github.com/latticecms/lattice/internal/httpx"
	"github.com/latticecms/lattice/internal/routing"
	"github.com/latticecms/lattice/internal/tenant"
)

type tenantResponse struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	AdminEnabled bool   `json:"adminEnabled"`
}

func (h *Handler) listTenants(w http.ResponseWriter, r *http.Request) {
	rows, err := tenant.AllActive(r.Context(), h.db)
	if err != nil {
		zap.S().Errorw("tenant list", "err", err)
		httpx.Internal(w)
		return
	}
	out := make([]tenantResponse, 0, len(rows))
	for _, t := range rows {
		out = append(out, tenantResponse{
			ID:           t.ID,
			Slug:         t.Slug,
			Name:         t.Name,
			AdminEnabled: t.AdminEnabled,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tenants": out})
}

type createTenantRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *Handler) createTenant(w http.ResponseWriter, r *http.Request) {
	claims, ok := mustCentralClaims(w, r)
	if !ok {
		return
	}

	var req createTenantRequest
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.Validation(w, "name is required")
		return
	}
	slug := req.Slug
	if slug == "" {
		slug = routing.MakeSlug(req.Name)
	} else {
		slug = routing.MakeSlug(slug)
	}
	if slug == "" {
		httpx.Validation(w, "name must contain at least one slug-safe character")
		return
	}

	id, err := tenant.Create(r.Context(), h.db, slug, req.Name)
	if err != nil {
		// Unique key on slug.
		if isDuplicate(err) {
			httpx.Validation(w, "slug already in use")
			return
		}
		zap.S().Errorw("tenant create", "slug", slug, "err", err)
		httpx.Internal(w)
		return
	}
	h.tenants.Invalidate(slug)

	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &id,
		ActorKind: "central",
		ActorID:   claims.Subject,
		Action:    audit.ActionTenantCreate,
		Detail:    map[string]any{"slug": slug, "name": req.Name},
	})
	httpx.WriteJSON(w, http.StatusCreated, tenantResponse{
		ID:           id,
		Slug:         slug,
		Name:         req.Name,
		AdminEnabled: true,
	})
}

func (h *Handler) deleteTenant(w http.ResponseWriter, r *http.Request) {
	claims, ok := mustCentralClaims(w, r)
	if !ok {
		return
	}
	tenantID, ok := urlID(w, chi.URLParam(r, "tenantID"))
	if !ok {
		return
	}

	// Fetch first so the cache can be invalidated by slug and the audit
	// record names what was removed.
	ten, err := tenant.ByID(r.Context(), h.db, tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			httpx.NotFound(w)
			return
		}
		zap.S().Errorw("tenant delete lookup", "tenant", tenantID, "err", err)
		httpx.Internal(w)
		return
	}

	if err := tenant.Delete(r.Context(), h.db, tenantID); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			httpx.NotFound(w)
			return
		}
		zap.S().Errorw("tenant delete", "tenant", tenantID, "err", err)
		httpx.Internal(w)
		return
	}
	h.tenants.Invalidate(ten.Slug)

	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &tenantID,
		ActorKind: "central",
		ActorID:   claims.Subject,
		Action:    audit.ActionTenantDelete,
		Detail:    map[string]any{"slug": ten.Slug, "name": ten.Name},
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
