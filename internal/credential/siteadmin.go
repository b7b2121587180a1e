// internal/credential/siteadmin.go
//
// Query helpers for the `site_admin` table.
//
// Context
// -------
// The lockout columns (failed_attempts, locked_until) are mutated only
// through internal/lockout, which performs store-atomic updates.  This
// file covers reads plus the central-admin-driven upsert and the
// self-service password change.
package credential

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const siteAdminCols = `id, tenant_id, email, password_hash,
               failed_attempts, locked_until, created_at, updated_at`

// SiteAdminByTenant fetches the single credential bound to tenantID.
func SiteAdminByTenant(ctx context.Context, db *sqlx.DB, tenantID int64) (*SiteAdmin, error) {
	const q = `
        SELECT ` + siteAdminCols + `
        FROM   site_admin
        WHERE  tenant_id = ?
        LIMIT  1`
	var sa SiteAdmin
	if err := db.GetContext(ctx, &sa, q, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sa, nil
}

// SiteAdminByID fetches one credential by primary key.
func SiteAdminByID(ctx context.Context, db *sqlx.DB, id int64) (*SiteAdmin, error) {
	const q = `
        SELECT ` + siteAdminCols + `
        FROM   site_admin
        WHERE  id = ?
        LIMIT  1`
	var sa SiteAdmin
	if err := db.GetContext(ctx, &sa, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sa, nil
}

// UpsertSiteAdmin creates or replaces the tenant's credential in one
// statement.  The (tenant_id) unique key makes this a true upsert, and
// the lockout columns are reset either way, so issuing a fresh
// credential always reopens a locked account.
func UpsertSiteAdmin(ctx context.Context, db *sqlx.DB, tenantID int64, email, passwordHash string) error {
	const q = `
        INSERT INTO site_admin (tenant_id, email, password_hash, failed_attempts, locked_until)
        VALUES (?, ?, ?, 0, NULL)
        ON DUPLICATE KEY UPDATE
               email           = VALUES(email),
               password_hash   = VALUES(password_hash),
               failed_attempts = 0,
               locked_until    = NULL`
	_, err := db.ExecContext(ctx, q, tenantID, email, passwordHash)
	return err
}

// UpdateSiteAdminPassword replaces the hash after a verified
// self-service password change.
func UpdateSiteAdminPassword(ctx context.Context, db *sqlx.DB, id int64, passwordHash string) error {
	const q = `UPDATE site_admin SET password_hash = ? WHERE id = ?`
	res, err := db.ExecContext(ctx, q, passwordHash, id)
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
