package tenant

import "time"

// Record mirrors one row in the persistent `tenant` table.  The
// operational state is captured by two nullable timestamps:
//
//   - SuspendedAt – tenant is temporarily disabled (e.g., billing).
//   - DeletedAt   – tenant is permanently removed.
//
// Either timestamp being non-NULL hides the tenant from lookups, which
// also disables its site-admin login (a suspended tenant cannot be
// administered by its own staff).
type Record struct {
	ID           int64      `db:"id"`
	Slug         string     `db:"slug"`
	Name         string     `db:"name"`
	AdminEnabled bool       `db:"admin_enabled"`
	SuspendedAt  *time.Time `db:"suspended_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// Active reports whether the tenant is neither suspended nor deleted.
func (r *Record) Active() bool {
	return r.SuspendedAt == nil && r.DeletedAt == nil
}
