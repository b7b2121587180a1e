// internal/credential/central.go
//
// Query helpers for the `central_admin` table.
package credential

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const centralCols = `id, name, email, password_hash, role,
               created_at, updated_at`

// CentralByEmail fetches one central admin by unique email.
func CentralByEmail(ctx context.Context, db *sqlx.DB, email string) (*CentralAdmin, error) {
	const q = `
        SELECT ` + centralCols + `
        FROM   central_admin
        WHERE  email = ?
        LIMIT  1`
	var a CentralAdmin
	if err := db.GetContext(ctx, &a, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CentralByID fetches one central admin by primary key.
func CentralByID(ctx context.Context, db *sqlx.DB, id int64) (*CentralAdmin, error) {
	const q = `
        SELECT ` + centralCols + `
        FROM   central_admin
        WHERE  id = ?
        LIMIT  1`
	var a CentralAdmin
	if err := db.GetContext(ctx, &a, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CreateCentral inserts a new central admin.  Duplicate emails surface
// as a driver error the handler maps to a validation failure.
func CreateCentral(ctx context.Context, db *sqlx.DB, name, email, passwordHash string, role Role) (int64, error) {
	const q = `
        INSERT INTO central_admin (name, email, password_hash, role)
        VALUES (?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q, name, email, passwordHash, role)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateCentralRole changes one admin's role.  Relies on the
// clientFoundRows DSN flag so re-granting the current role still
// reports a matched row instead of ErrNotFound.
func UpdateCentralRole(ctx context.Context, db *sqlx.DB, id int64, role Role) error {
	const q = `
        UPDATE central_admin
        SET    role = ?
        WHERE  id = ?`
	res, err := db.ExecContext(ctx, q, role, id)
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
