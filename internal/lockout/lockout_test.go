// internal/lockout/lockout_test.go
//
// Unit-tests for the lockout state machine.
//
// Context
// -------
// The pure helpers (Locked, Remaining, RemainingMinutes) are tested
// with synthetic rows; the store transitions (RecordFailure, Reset,
// ClearExpiredLock) run against sqlmock so the exact SQL shape — one
// conditional UPDATE for the increment-and-maybe-lock — is pinned down.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/latticecms/lattice/internal/credential"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestLocked_States(t *testing.T) {
	now := time.Now()
	future := now.Add(10 * time.Minute)
	past := now.Add(-time.Minute)

	cases := []struct {
		name string
		sa   credential.SiteAdmin
		want bool
	}{
		{"open, never locked", credential.SiteAdmin{FailedAttempts: 2}, false},
		{"locked", credential.SiteAdmin{FailedAttempts: 5, LockedUntil: &future}, true},
		{"lock expired", credential.SiteAdmin{FailedAttempts: 5, LockedUntil: &past}, false},
	}
	for _, tc := range cases {
		if got := Locked(&tc.sa, now); got != tc.want {
			t.Errorf("%s: Locked = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRemainingMinutes_RoundsUp(t *testing.T) {
	now := time.Now()

	cases := []struct {
		remaining time.Duration
		want      int
	}{
		{14*time.Minute + 59*time.Second, 15},
		{14 * time.Minute, 14},
		{30 * time.Second, 1},
		{0, 0},
	}
	for _, tc := range cases {
		var until *time.Time
		if tc.remaining > 0 {
			u := now.Add(tc.remaining)
			until = &u
		}
		sa := credential.SiteAdmin{LockedUntil: until}
		if got := RemainingMinutes(&sa, now); got != tc.want {
			t.Errorf("remaining %v: got %d minutes, want %d", tc.remaining, got, tc.want)
		}
	}
}

func TestRecordFailure_IncrementsAtomically(t *testing.T) {
	db, mock := newMockDB(t)

	// One UPDATE carrying both the threshold and the lock duration,
	// then the re-read.
	mock.ExpectExec(`UPDATE site_admin`).
		WithArgs(Threshold, int(Duration.Minutes()), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+site_admin\s+WHERE\s+id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "email", "password_hash",
			"failed_attempts", "locked_until", "created_at", "updated_at",
		}).AddRow(7, 3, "admin@acme.test", "$2a$10$x", 3, nil, time.Now(), time.Now()))

	sa, err := RecordFailure(context.Background(), db, 7)
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if sa.FailedAttempts != 3 {
		t.Errorf("failed_attempts = %d, want 3", sa.FailedAttempts)
	}
	if Locked(sa, time.Now()) {
		t.Error("credential unexpectedly locked below threshold")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordFailure_FifthAttemptLocks(t *testing.T) {
	db, mock := newMockDB(t)

	lockedUntil := time.Now().Add(Duration)
	mock.ExpectExec(`UPDATE site_admin`).
		WithArgs(Threshold, int(Duration.Minutes()), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+site_admin\s+WHERE\s+id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "email", "password_hash",
			"failed_attempts", "locked_until", "created_at", "updated_at",
		}).AddRow(7, 3, "admin@acme.test", "$2a$10$x", 5, lockedUntil, time.Now(), time.Now()))

	sa, err := RecordFailure(context.Background(), db, 7)
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if !Locked(sa, time.Now()) {
		t.Fatal("fifth failure must lock the credential")
	}
	if mins := RemainingMinutes(sa, time.Now()); mins != 15 {
		t.Errorf("remaining = %d minutes, want 15", mins)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReset_ClearsBothColumns(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE site_admin\s+SET\s+failed_attempts = 0,\s+locked_until\s+= NULL\s+WHERE\s+id = \?`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := Reset(context.Background(), db, 7); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestClearExpiredLock_GuardedByWhere(t *testing.T) {
	db, mock := newMockDB(t)

	// The statement must only touch rows whose lock has elapsed.
	mock.ExpectExec(`locked_until <= NOW\(\)`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0)) // open row: no-op

	if err := ClearExpiredLock(context.Background(), db, 7); err != nil {
		t.Fatalf("ClearExpiredLock: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
