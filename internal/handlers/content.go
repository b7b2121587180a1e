// internal/handlers/content.go
//
// Page and section endpoints.
//
// Context
// -------
// Every site-admin content route re-resolves the ownership chain
// (Section → Page → Tenant) on each request via the gate helpers, and a
// mismatch is answered with the same not_found body as a genuinely
// absent row.  A site admin probing IDs learns nothing about other
// tenants' content.  Central admins skip the ownership check; their
// routes are role-gated instead.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/latticecms/lattice/internal/audit"
	"github.com/latticecms/lattice/internal/content"
	"github.com/latticecms/lattice/internal/gate"
	"github.com/latticecms/lattice/internal/httpx"
	"github.com/latticecms/lattice/internal/routing"
	"github.com/latticecms/lattice/internal/tenant"
)

type pageResponse struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type sectionResponse struct {
	ID       int64           `json:"id"`
	Type     string          `json:"type"`
	ImageURL *string         `json:"imageUrl,omitempty"`
	Content  json.RawMessage `json:"content"`
	Position int             `json:"position"`
}

func toPageResponse(p *content.Page) pageResponse {
	return pageResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toSectionResponse(s *content.Section) sectionResponse {
	return sectionResponse{
		ID:       s.ID,
		Type:     s.Type,
		ImageURL: s.ImageURL,
		Content:  s.Content,
		Position: s.Position,
	}
}

// siteTenant extracts the tenant bound into the context by the gate.
func siteTenant(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := gate.SiteTenantID(r.Context())
	if !ok {
		httpx.Unauthenticated(w)
		return 0, false
	}
	return id, true
}

//
// Site-admin routes.
//

func (h *Handler) listPages(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := siteTenant(w, r)
	if !ok {
		return
	}
	pages, err := content.PagesByTenant(r.Context(), h.db, tenantID)
	if err != nil {
		zap.S().Errorw("page list", "tenant", tenantID, "err", err)
		httpx.Internal(w)
		return
	}
	out := make([]pageResponse, 0, len(pages))
	for i := range pages {
		out = append(out, toPageResponse(&pages[i]))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"pages": out})
}

func (h *Handler) getPage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := siteTenant(w, r)
	if !ok {
		return
	}
	pageID, ok := urlID(w, chi.URLParam(r, "pageID"))
	if !ok {
		return
	}
	if !h.checkPage(w, r, pageID, tenantID) {
		return
	}

	page, err := content.PageByID(r.Context(), h.db, pageID)
	if err != nil {
		h.contentError(w, "page fetch", err)
		return
	}
	sections, err := content.SectionsByPage(r.Context(), h.db, pageID)
	if err != nil {
		zap.S().Errorw("section list", "page", pageID, "err", err)
		httpx.Internal(w)
		return
	}
	secOut := make([]sectionResponse, 0, len(sections))
	for i := range sections {
		secOut = append(secOut, toSectionResponse(&sections[i]))
	}

	resp := struct {
		pageResponse
		Sections []sectionResponse `json:"sections"`
	}{toPageResponse(page), secOut}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type createPageRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

func (h *Handler) siteCreatePage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := siteTenant(w, r)
	if !ok {
		return
	}
	claims, _ := gate.ClaimsFromContext(r.Context())
	h.createPage(w, r, tenantID, "site", claims.Subject)
}

// centralCreatePage serves POST /tenants/{tenantID}/pages for central
// admins provisioning initial content.
func (h *Handler) centralCreatePage(w http.ResponseWriter, r *http.Request) {
	claims, ok := mustCentralClaims(w, r)
	if !ok {
		return
	}
	tenantID, ok := urlID(w, chi.URLParam(r, "tenantID"))
	if !ok {
		return
	}
	if _, err := tenant.ByID(r.Context(), h.db, tenantID); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			httpx.NotFound(w)
			return
		}
		zap.S().Errorw("central page create tenant check", "tenant", tenantID, "err", err)
		httpx.Internal(w)
		return
	}
	h.createPage(w, r, tenantID, "central", claims.Subject)
}

func (h *Handler) createPage(w http.ResponseWriter, r *http.Request, tenantID int64, actorKind string, actorID int64) {
	var req createPageRequest
	if !decode(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		httpx.Validation(w, "title is required")
		return
	}
	slug := req.Slug
	if slug == "" {
		slug = req.Title
	}
	slug = routing.MakeSlug(slug)
	if slug == "" {
		httpx.Validation(w, "title must contain at least one slug-safe character")
		return
	}

	id, err := content.CreatePage(r.Context(), h.db, tenantID, slug, req.Title)
	if err != nil {
		// Unique key on (tenant_id, slug).
		if isDuplicate(err) {
			httpx.Validation(w, "a page with that slug already exists")
			return
		}
		zap.S().Errorw("page create", "tenant", tenantID, "slug", slug, "err", err)
		httpx.Internal(w)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &tenantID,
		ActorKind: actorKind,
		ActorID:   actorID,
		Action:    audit.ActionPageCreate,
		Detail:    map[string]any{"pageId": id, "slug": slug, "title": req.Title},
	})
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"id":     id,
		"slug":   slug,
		"title":  req.Title,
		"status": string(content.PageDraft),
	})
}

func (h *Handler) publishPage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := siteTenant(w, r)
	if !ok {
		return
	}
	pageID, ok := urlID(w, chi.URLParam(r, "pageID"))
	if !ok {
		return
	}
	if !h.checkPage(w, r, pageID, tenantID) {
		return
	}

	if err := content.PublishPage(r.Context(), h.db, pageID); err != nil {
		h.contentError(w, "page publish", err)
		return
	}

	claims, _ := gate.ClaimsFromContext(r.Context())
	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &tenantID,
		ActorKind: "site",
		ActorID:   claims.Subject,
		Action:    audit.ActionPagePublish,
		Detail:    map[string]any{"pageId": pageID},
	})

	page, err := content.PageByID(r.Context(), h.db, pageID)
	if err != nil {
		h.contentError(w, "page fetch after publish", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPageResponse(page))
}

type createSectionRequest struct {
	Type     string          `json:"type"`
	ImageURL *string         `json:"imageUrl"`
	Content  json.RawMessage `json:"content"`
	Position *int            `json:"position"`
}

func (h *Handler) createSection(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := siteTenant(w, r)
	if !ok {
		return
	}
	pageID, ok := urlID(w, chi.URLParam(r, "pageID"))
	if !ok {
		return
	}
	if !h.checkPage(w, r, pageID, tenantID) {
		return
	}

	var req createSectionRequest
	if !decode(w, r, &req) {
		return
	}
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" {
		httpx.Validation(w, "type is required")
		return
	}
	if err := content.ValidatePayload(req.Type, req.Content); err != nil {
		httpx.Validation(w, err.Error())
		return
	}

	position := -1 // repository default: after the last sibling
	if req.Position != nil {
		if *req.Position < 0 {
			httpx.Validation(w, "position must not be negative")
			return
		}
		position = *req.Position
	}

	id, err := content.CreateSection(r.Context(), h.db, pageID, req.Type, req.ImageURL, req.Content, position)
	if err != nil {
		zap.S().Errorw("section create", "page", pageID, "err", err)
		httpx.Internal(w)
		return
	}

	claims, _ := gate.ClaimsFromContext(r.Context())
	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &tenantID,
		ActorKind: "site",
		ActorID:   claims.Subject,
		Action:    audit.ActionSectionCreate,
		Detail:    map[string]any{"pageId": pageID, "sectionId": id, "type": req.Type},
	})

	sec, err := content.SectionByID(r.Context(), h.db, id)
	if err != nil {
		h.contentError(w, "section fetch after create", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toSectionResponse(sec))
}

type updateSectionRequest struct {
	Type     *string         `json:"type"`
	ImageURL *string         `json:"imageUrl"`
	Content  json.RawMessage `json:"content"`
	Position *int            `json:"position"`
}

func (h *Handler) updateSection(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := siteTenant(w, r)
	if !ok {
		return
	}
	sectionID, ok := urlID(w, chi.URLParam(r, "sectionID"))
	if !ok {
		return
	}
	if err := gate.CheckSectionOwner(r.Context(), h.db, sectionID, tenantID); err != nil {
		h.contentError(w, "section ownership", err)
		return
	}

	var req updateSectionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Position != nil && *req.Position < 0 {
		httpx.Validation(w, "position must not be negative")
		return
	}
	if req.Content != nil {
		// Validate against the section's effective type: the patched
		// one when supplied, the stored one otherwise.
		effective := req.Type
		if effective == nil {
			cur, err := content.SectionByID(r.Context(), h.db, sectionID)
			if err != nil {
				h.contentError(w, "section fetch for patch", err)
				return
			}
			effective = &cur.Type
		}
		if err := content.ValidatePayload(*effective, req.Content); err != nil {
			httpx.Validation(w, err.Error())
			return
		}
	}

	patch := content.SectionPatch{
		Type:     req.Type,
		ImageURL: req.ImageURL,
		Content:  req.Content,
		Position: req.Position,
	}
	if err := content.UpdateSection(r.Context(), h.db, sectionID, patch); err != nil {
		h.contentError(w, "section update", err)
		return
	}

	claims, _ := gate.ClaimsFromContext(r.Context())
	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &tenantID,
		ActorKind: "site",
		ActorID:   claims.Subject,
		Action:    audit.ActionSectionUpdate,
		Detail:    map[string]any{"sectionId": sectionID},
	})

	sec, err := content.SectionByID(r.Context(), h.db, sectionID)
	if err != nil {
		h.contentError(w, "section fetch after update", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSectionResponse(sec))
}

//
// Central-admin cleanup routes.  No ownership check; the role gate on
// the route is the authority.
//

func (h *Handler) centralDeletePage(w http.ResponseWriter, r *http.Request) {
	claims, ok := mustCentralClaims(w, r)
	if !ok {
		return
	}
	pageID, ok := urlID(w, chi.URLParam(r, "pageID"))
	if !ok {
		return
	}

	owner, err := content.OwnerOfPage(r.Context(), h.db, pageID)
	if err != nil {
		h.contentError(w, "page delete lookup", err)
		return
	}
	if err := content.DeletePage(r.Context(), h.db, pageID); err != nil {
		h.contentError(w, "page delete", err)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &owner,
		ActorKind: "central",
		ActorID:   claims.Subject,
		Action:    audit.ActionPageDelete,
		Detail:    map[string]any{"pageId": pageID},
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) centralDeleteSection(w http.ResponseWriter, r *http.Request) {
	claims, ok := mustCentralClaims(w, r)
	if !ok {
		return
	}
	sectionID, ok := urlID(w, chi.URLParam(r, "sectionID"))
	if !ok {
		return
	}

	owner, err := content.OwnerOfSection(r.Context(), h.db, sectionID)
	if err != nil {
		h.contentError(w, "section delete lookup", err)
		return
	}
	if err := content.DeleteSection(r.Context(), h.db, sectionID); err != nil {
		h.contentError(w, "section delete", err)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		TenantID:  &owner,
		ActorKind: "central",
		ActorID:   claims.Subject,
		Action:    audit.ActionSectionDelete,
		Detail:    map[string]any{"sectionId": sectionID},
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

//
// Shared helpers.
//

// checkPage runs the ownership check and writes the collapsed NotFound
// on failure.  Returns true when the handler may proceed.
func (h *Handler) checkPage(w http.ResponseWriter, r *http.Request, pageID, tenantID int64) bool {
	if err := gate.CheckPageOwner(r.Context(), h.db, pageID, tenantID); err != nil {
		h.contentError(w, "page ownership", err)
		return false
	}
	return true
}

// contentError maps content.ErrNotFound to the anti-enumeration 404 and
// everything else to a logged 500.
func (h *Handler) contentError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, content.ErrNotFound) {
		httpx.NotFound(w)
		return
	}
	zap.S().Errorw(op, "err", err)
	httpx.Internal(w)
}
