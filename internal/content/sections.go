// internal/content/sections.go
//
// Query helpers for the `section` table, including the ownership-chain
// resolver the authorization gate depends on.
package content

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const sectionCols = `id, page_id, type, image_url, content, position,
               created_at, updated_at`

// SectionsByPage returns a page's sections in display order.  Position
// values need not be contiguous; ties break by id, i.e. creation order.
func SectionsByPage(ctx context.Context, db *sqlx.DB, pageID int64) ([]Section, error) {
	const q = `
        SELECT ` + sectionCols + `
        FROM   section
        WHERE  page_id = ?
        ORDER BY position, id`
	var rows []Section
	if err := db.SelectContext(ctx, &rows, q, pageID); err != nil {
		return nil, err
	}
	return rows, nil
}

// SectionByID fetches one section row.
func SectionByID(ctx context.Context, db *sqlx.DB, id int64) (*Section, error) {
	const q = `
        SELECT ` + sectionCols + `
        FROM   section
        WHERE  id = ?
        LIMIT  1`
	var s Section
	if err := db.GetContext(ctx, &s, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateSection inserts a section.  When position < 0 the new section
// lands after the current last sibling (max position + 1, computed in
// the INSERT itself so concurrent creates cannot race an application
// read).
func CreateSection(ctx context.Context, db *sqlx.DB, pageID int64, sectionType string,
	imageURL *string, payload []byte, position int) (int64, error) {

	if position >= 0 {
		const q = `
	        INSERT INTO section (page_id, type, image_url, content, position)
	        VALUES (?, ?, ?, ?, ?)`
		res, err := db.ExecContext(ctx, q, pageID, sectionType, imageURL, payload, position)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	const q = `
        INSERT INTO section (page_id, type, image_url, content, position)
        SELECT ?, ?, ?, ?, COALESCE(MAX(s.position), 0) + 1
        FROM   (SELECT position FROM section WHERE page_id = ?) s`
	res, err := db.ExecContext(ctx, q, pageID, sectionType, imageURL, payload, pageID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateSection applies a partial patch: only non-nil fields change.
// The SET clause is assembled dynamically, one fragment per supplied
// field.
func UpdateSection(ctx context.Context, db *sqlx.DB, id int64, patch SectionPatch) error {
	if patch.Empty() {
		return nil
	}

	set := make([]byte, 0, 64)
	args := make([]any, 0, 5)
	appendSet := func(frag string, arg any) {
		if len(set) > 0 {
			set = append(set, ", "...)
		}
		set = append(set, frag...)
		args = append(args, arg)
	}

	if patch.Type != nil {
		appendSet("type = ?", *patch.Type)
	}
	if patch.ImageURL != nil {
		appendSet("image_url = ?", *patch.ImageURL)
	}
	if patch.Content != nil {
		appendSet("content = ?", []byte(patch.Content))
	}
	if patch.Position != nil {
		appendSet("position = ?", *patch.Position)
	}
	args = append(args, id)

	q := `UPDATE section SET ` + string(set) + ` WHERE id = ?`
	res, err := db.ExecContext(ctx, q, args...)
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

// DeleteSection removes one section.  Sibling positions are left alone;
// ordering remains stable because sorts are (position, id).
func DeleteSection(ctx context.Context, db *sqlx.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM section WHERE id = ?`, id)
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

// OwnerOfSection walks Section → Page → tenant in one query.  Missing
// rows anywhere along the chain return ErrNotFound.
func OwnerOfSection(ctx context.Context, db *sqlx.DB, sectionID int64) (int64, error) {
	const q = `
        SELECT p.tenant_id
        FROM   section s
        JOIN   page p ON p.id = s.page_id
        WHERE  s.id = ?
        LIMIT  1`
	var tenantID int64
	if err := db.GetContext(ctx, &tenantID, q, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return tenantID, nil
}
