// internal/content/model.go
//
// Page and Section entities.
//
// Context
// -------
// Pages belong to exactly one tenant; sections belong to exactly one
// page.  That two-hop chain (Section → Page → Tenant) is the ownership
// path the authorization gate walks before any content mutation.
//
// Section content is a type-tagged JSON payload.  Known types are
// validated strictly at the boundary (see payload.go); unknown types
// pass through opaque so new visual section kinds never require a
// schema migration.
package content

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned for missing pages and sections.  Handlers also
// map cross-tenant ownership mismatches onto this error so the two cases
// are indistinguishable on the wire.
var ErrNotFound = errors.New("content not found")

//
// Page
//

// PageStatus is the lifecycle state of a page.
type PageStatus string

const (
	PageDraft     PageStatus = "DRAFT"
	PagePublished PageStatus = "PUBLISHED"
)

// Page mirrors one row in the `page` table.  Slug is unique within the
// owning tenant only; PublishedAt is set once, on the DRAFT→PUBLISHED
// transition, and never cleared.
type Page struct {
	ID          int64      `db:"id"`
	TenantID    int64      `db:"tenant_id"`
	Slug        string     `db:"slug"`
	Title       string     `db:"title"`
	Status      PageStatus `db:"status"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

//
// Section
//

// Section mirrors one row in the `section` table.  Position orders
// sections within their page; values need not be contiguous, and the
// repository sorts by (position, id) so ties resolve by creation order.
type Section struct {
	ID        int64           `db:"id"`
	PageID    int64           `db:"page_id"`
	Type      string          `db:"type"`
	ImageURL  *string         `db:"image_url"`
	Content   json.RawMessage `db:"content"`
	Position  int             `db:"position"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// SectionPatch carries a partial update: nil fields are left untouched.
// Deleting a section does not renumber its siblings.
type SectionPatch struct {
	Type     *string
	ImageURL *string
	Content  json.RawMessage // nil means “do not touch”
	Position *int
}

// Empty reports whether the patch would change nothing.
func (p SectionPatch) Empty() bool {
	return p.Type == nil && p.ImageURL == nil && p.Content == nil && p.Position == nil
}
