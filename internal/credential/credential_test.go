// internal/credential/credential_test.go
//
// Unit-tests for password policy and the site-admin upsert.
//
// Context
// -------
// The upsert is the central-admin "issue credential" operation and
// doubles as the unlock lever for locked-out customers, so the test
// pins the ON DUPLICATE KEY UPDATE shape including the lockout-column
// reset.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
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

func TestHashPassword_Policy(t *testing.T) {
	if _, err := HashPassword("short7!"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("7-char password: want ErrPasswordTooShort, got %v", err)
	}

	hash, err := HashPassword("longenough")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "longenough") {
		t.Error("hash does not verify its own plaintext")
	}
	if CheckPassword(hash, "longenougH") {
		t.Error("hash verified a different plaintext")
	}
}

func TestCheckPassword_DummyHashNeverMatches(t *testing.T) {
	for _, plain := range []string{"", "password", DummyHash} {
		if CheckPassword(DummyHash, plain) {
			t.Errorf("DummyHash matched %q", plain)
		}
	}
}

func TestUpsertSiteAdmin_ResetsLockoutColumns(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`ON DUPLICATE KEY UPDATE\s+email\s+= VALUES\(email\),\s+password_hash\s+= VALUES\(password_hash\),\s+failed_attempts = 0,\s+locked_until\s+= NULL`).
		WithArgs(int64(3), "new@acme.test", "$2a$10$hash").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := UpsertSiteAdmin(context.Background(), db, 3, "new@acme.test", "$2a$10$hash")
	if err != nil {
		t.Fatalf("UpsertSiteAdmin: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateSiteAdminPassword_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE site_admin SET password_hash = \? WHERE id = \?`).
		WithArgs("$2a$10$hash", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := UpdateSiteAdminPassword(context.Background(), db, 99, "$2a$10$hash")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
