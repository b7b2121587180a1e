// internal/lockout/lockout.go
//
// Brute-force lockout state machine for site-admin credentials.
//
// Context
// -------
// Each site-admin row carries failed_attempts and a nullable
// locked_until.  The machine has two states:
//
//	OPEN    failed_attempts < Threshold and no future locked_until
//	LOCKED  locked_until is set and in the future
//
// Transitions:
//
//   - failed password while OPEN → increment; the increment that reaches
//     Threshold also sets locked_until = now + Duration.  Both writes
//     happen in ONE conditional UPDATE so concurrent failures cannot
//     lose counts to a read-modify-write race.
//   - any attempt while LOCKED → rejected with the remaining time,
//     before the credential row is touched; the counter is not bumped.
//   - successful password (only reachable while OPEN) → Reset.
//   - LOCKED → OPEN is implicit once locked_until passes.  The next
//     failed attempt starts a fresh counting window: the login path
//     calls ClearExpiredLock before evaluating the password.
//
// Threshold and Duration are fixed constants shared by all tenants.
package lockout

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/latticecms/lattice/internal/credential"
)

const (
	// Threshold is the failed-attempt count that trips the lock.
	Threshold = 5
	// Duration is the length of the lock window.
	Duration = 15 * time.Minute
)

// Locked reports whether the credential is in the LOCKED state at now.
func Locked(sa *credential.SiteAdmin, now time.Time) bool {
	return sa.LockedUntil != nil && now.Before(*sa.LockedUntil)
}

// Remaining returns the time left on an active lock, or zero.
func Remaining(sa *credential.SiteAdmin, now time.Time) time.Duration {
	if !Locked(sa, now) {
		return 0
	}
	return sa.LockedUntil.Sub(now)
}

// RemainingMinutes rounds an active lock's remainder UP to whole
// minutes, matching the number surfaced in AccountLocked responses.
func RemainingMinutes(sa *credential.SiteAdmin, now time.Time) int {
	rem := Remaining(sa, now)
	if rem <= 0 {
		return 0
	}
	mins := int(rem / time.Minute)
	if rem%time.Minute != 0 {
		mins++
	}
	return mins
}

// RecordFailure registers one failed password check.  The increment and
// the conditional lock are a single statement, so two concurrent
// failures both land (no lost update) and exactly one of them trips the
// lock.  The refreshed row is returned so the caller can report state.
func RecordFailure(ctx context.Context, db *sqlx.DB, id int64) (*credential.SiteAdmin, error) {
	const q = `
        UPDATE site_admin
        SET    locked_until    = IF(failed_attempts + 1 >= ?,
                                    NOW() + INTERVAL ? MINUTE,
                                    locked_until),
               failed_attempts = failed_attempts + 1
        WHERE  id = ?`
	if _, err := db.ExecContext(ctx, q, Threshold, int(Duration.Minutes()), id); err != nil {
		return nil, err
	}
	return credential.SiteAdminByID(ctx, db, id)
}

// Reset returns the credential to a clean OPEN state.  Called after a
// successful password check.
func Reset(ctx context.Context, db *sqlx.DB, id int64) error {
	const q = `
        UPDATE site_admin
        SET    failed_attempts = 0,
               locked_until    = NULL
        WHERE  id = ?`
	_, err := db.ExecContext(ctx, q, id)
	return err
}

// ClearExpiredLock starts a fresh counting window once a lock has
// naturally elapsed.  The WHERE clause makes it a no-op for open or
// still-locked rows, so the login path can call it unconditionally.
func ClearExpiredLock(ctx context.Context, db *sqlx.DB, id int64) error {
	const q = `
        UPDATE site_admin
        SET    failed_attempts = 0,
               locked_until    = NULL
        WHERE  id = ?
          AND  locked_until IS NOT NULL
          AND  locked_until <= NOW()`
	_, err := db.ExecContext(ctx, q, id)
	return err
}
