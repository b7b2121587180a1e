// internal/content/pages.go
//
// Query helpers for the `page` table.  These are thin, parameterised
// sqlx calls; the authorization gate decides *whether* they run, never
// the other way around.
package content

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const pageCols = `id, tenant_id, slug, title, status,
               published_at, created_at, updated_at`

// PagesByTenant returns every page owned by tenantID, newest first.
func PagesByTenant(ctx context.Context, db *sqlx.DB, tenantID int64) ([]Page, error) {
	const q = `
        SELECT ` + pageCols + `
        FROM   page
        WHERE  tenant_id = ?
        ORDER BY created_at DESC, id DESC`
	var rows []Page
	if err := db.SelectContext(ctx, &rows, q, tenantID); err != nil {
		return nil, err
	}
	return rows, nil
}

// PageByID fetches one page row.
func PageByID(ctx context.Context, db *sqlx.DB, id int64) (*Page, error) {
	const q = `
        SELECT ` + pageCols + `
        FROM   page
        WHERE  id = ?
        LIMIT  1`
	var p Page
	if err := db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreatePage inserts a DRAFT page.  Slug uniqueness is per tenant,
// enforced by the schema's (tenant_id, slug) unique key.
func CreatePage(ctx context.Context, db *sqlx.DB, tenantID int64, slug, title string) (int64, error) {
	const q = `
        INSERT INTO page (tenant_id, slug, title, status)
        VALUES (?, ?, ?, 'DRAFT')`
	res, err := db.ExecContext(ctx, q, tenantID, slug, title)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// PublishPage flips a page to PUBLISHED.  The publish timestamp is set
// only on the DRAFT→PUBLISHED transition; republishing an already
// published page is a no-op for published_at.
func PublishPage(ctx context.Context, db *sqlx.DB, id int64) error {
	const q = `
        UPDATE page
        SET    published_at = IF(status = 'DRAFT', NOW(), published_at),
               status       = 'PUBLISHED'
        WHERE  id = ?`
	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePage removes a page; its sections cascade at the schema level.
// Only the central-admin API reaches this.
func DeletePage(ctx context.Context, db *sqlx.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM page WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// OwnerOfPage resolves a page ID to its owning tenant ID.  Missing rows
// return ErrNotFound so callers can collapse “absent” and “not yours”
// into one response.
func OwnerOfPage(ctx context.Context, db *sqlx.DB, pageID int64) (int64, error) {
	const q = `SELECT tenant_id FROM page WHERE id = ? LIMIT 1`
	var tenantID int64
	if err := db.GetContext(ctx, &tenantID, q, pageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return tenantID, nil
}
