// internal/gate/ownership.go
//
// Ownership-chain checks for tenant-scoped content mutations.
//
// Context
// -------
// A site-admin token is bound to exactly one tenant.  Before any
// operation that addresses a specific Page or Section, the gate walks
// the entity's ownership chain (Section → Page → Tenant) with a fresh
// store read and compares the owning tenant against the token's bound
// tenant.
//
// A mismatch returns content.ErrNotFound, the same error as a genuinely
// absent entity.  This is deliberate: site admins must not be able to
// distinguish “exists but belongs to someone else” from “does not
// exist”, or content IDs become enumerable across tenants.
package gate

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/latticecms/lattice/internal/content"
	"github.com/latticecms/lattice/internal/metrics"
)

// CheckSectionOwner verifies that sectionID's chain resolves to
// tenantID.  Returns content.ErrNotFound for both “absent” and “owned
// by another tenant”.
func CheckSectionOwner(ctx context.Context, db *sqlx.DB, sectionID, tenantID int64) error {
	owner, err := content.OwnerOfSection(ctx, db, sectionID)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			metrics.AuthzDeniedTotal.WithLabelValues("not_found").Inc()
		}
		return err
	}
	if owner != tenantID {
		metrics.AuthzDeniedTotal.WithLabelValues("not_found").Inc()
		return content.ErrNotFound
	}
	return nil
}

// CheckPageOwner verifies that pageID belongs to tenantID, with the
// same collapsed not-found semantics as CheckSectionOwner.
func CheckPageOwner(ctx context.Context, db *sqlx.DB, pageID, tenantID int64) error {
	owner, err := content.OwnerOfPage(ctx, db, pageID)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			metrics.AuthzDeniedTotal.WithLabelValues("not_found").Inc()
		}
		return err
	}
	if owner != tenantID {
		metrics.AuthzDeniedTotal.WithLabelValues("not_found").Inc()
		return content.ErrNotFound
	}
	return nil
}
