// internal/credential/model.go
//
// The two principal kinds.
//
// Context
// -------
// Central admins are global, role-bearing accounts; site admins are
// bound 1:1 to a tenant and carry the brute-force lockout state.  The
// two populations never mix: they live in separate tables, mint
// differently-tagged tokens, and are checked by separate middlewares.
package credential

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no credential row matches.
var ErrNotFound = errors.New("credential not found")

//
// Roles (central admins only)
//

// Role is an enumerated privilege label.  Authorization is explicit
// allow-list membership per operation; roles are never compared by
// rank, so adding a role can never silently widen an existing gate.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleEditor     Role = "EDITOR"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleEditor:
		return true
	}
	return false
}

//
// Central admin
//

// CentralAdmin mirrors one row in `central_admin`.  Email is globally
// unique; the account is never tenant-bound.
type CentralAdmin struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

//
// Site admin
//

// SiteAdmin mirrors one row in `site_admin`.  TenantID is unique, making
// the Tenant↔SiteAdmin relationship exactly one-to-one; upserting a
// credential replaces the previous one and resets the lockout columns.
// Email need not be globally unique, only meaningful within its tenant.
type SiteAdmin struct {
	ID             int64      `db:"id"`
	TenantID       int64      `db:"tenant_id"`
	Email          string     `db:"email"`
	PasswordHash   string     `db:"password_hash"`
	FailedAttempts int        `db:"failed_attempts"`
	LockedUntil    *time.Time `db:"locked_until"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
