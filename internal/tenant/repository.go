package tenant

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a slug or ID is not present in the tenant
// table (or the row is suspended/deleted).
var ErrNotFound = errors.New("tenant not found")

const selectCols = `id, slug, name, admin_enabled,
               suspended_at, deleted_at, created_at, updated_at`

// AllActive returns every tenant that is neither suspended nor deleted.
// Used by the central-admin tenant listing, not by the hot request path.
func AllActive(ctx context.Context, db *sqlx.DB) ([]Record, error) {
	const q = `
        SELECT ` + selectCols + `
        FROM   tenant
        WHERE  suspended_at IS NULL
          AND  deleted_at   IS NULL
        ORDER BY slug`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// BySlug fetches a single tenant row that is not suspended or deleted.
// The caller supplies a context so the lookup respects request deadlines.
func BySlug(ctx context.Context, db *sqlx.DB, slug string) (*Record, error) {
	const q = `
        SELECT ` + selectCols + `
        FROM   tenant
        WHERE  slug = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ByID fetches a single tenant row by primary key, active only.
func ByID(ctx context.Context, db *sqlx.DB, id int64) (*Record, error) {
	const q = `
        SELECT ` + selectCols + `
        FROM   tenant
        WHERE  id = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Create inserts a new tenant row.  Slug uniqueness is enforced by the
// schema; a duplicate surfaces as a driver error the handler maps to a
// validation failure.
func Create(ctx context.Context, db *sqlx.DB, slug, name string) (int64, error) {
	const q = `
        INSERT INTO tenant (slug, name, admin_enabled)
        VALUES (?, ?, TRUE)`
	res, err := db.ExecContext(ctx, q, slug, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes the tenant row.  Pages, sections, and the site-admin
// credential cascade at the schema level (see migrations/0001_init.sql),
// so one statement tears down the whole ownership tree.
func Delete(ctx context.Context, db *sqlx.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tenant WHERE id = ?`, id)
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
