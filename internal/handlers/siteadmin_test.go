// internal/handlers/siteadmin_test.go
//
// End-to-end tests for the site-admin login flow, wired through the
// real router with sqlmock behind the repositories.
//
// Context
// -------
// These map to the canonical "acme" scenarios:
//
//   • correct credentials            → 200, site token, cookie set
//   • wrong password                 → 401 invalid_credentials, counter
//     incremented in the store
//   • fifth wrong password           → 403 account_locked with the
//     remaining minutes
//   • attempt while locked           → 403 before any credential read
//     beyond the row fetch; no bcrypt, no counter bump
//   • unknown tenant slug            → 401 identical to wrong password
//
// Audit inserts are best-effort by design, so the tests register their
// expectations out of order and assert only on the statements that
// carry behaviour.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/latticecms/lattice/internal/audit"
	"github.com/latticecms/lattice/internal/credential"
	"github.com/latticecms/lattice/internal/ratelimit"
	"github.com/latticecms/lattice/internal/tenant"
	"github.com/latticecms/lattice/internal/token"
)

const (
	testSecret   = "handlers-test-secret"
	testPassword = "correct-horse"
)

// testHash is computed once; bcrypt at default cost is too slow to
// re-derive in every sub-test.
var testHash = func() string {
	h, err := credential.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return h
}()

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *token.Issuer) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { db.Close() })

	issuer := token.NewIssuer(testSecret, time.Hour)
	h := New(db, issuer,
		tenant.NewCache(db, tenant.IdleTTL, tenant.MaxEntries),
		audit.NewRecorder(db),
		ratelimit.NewLoginLimiter(),
		token.CookieOptions{MaxAge: time.Hour},
	)
	return h, mock, issuer
}

func tenantRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "slug", "name", "admin_enabled",
		"suspended_at", "deleted_at", "created_at", "updated_at",
	}).AddRow(1, "acme", "Acme Corp", true, nil, nil, now, now)
}

func siteAdminRows(attempts int, lockedUntil any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "email", "password_hash",
		"failed_attempts", "locked_until", "created_at", "updated_at",
	}).AddRow(7, 1, "admin@acme.test", testHash, attempts, lockedUntil, now, now)
}

func postLogin(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/site-admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) (string, int) {
	t.Helper()
	var body struct {
		Error struct {
			Code              string `json:"code"`
			RetryAfterMinutes int    `json:"retryAfterMinutes"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error.Code, body.Error.RetryAfterMinutes
}

func TestSiteLogin_Success(t *testing.T) {
	h, mock, issuer := newTestHandler(t)

	mock.ExpectQuery(`FROM\s+tenant\s+WHERE\s+slug = \?`).
		WillReturnRows(tenantRows())
	mock.ExpectQuery(`FROM\s+site_admin\s+WHERE\s+tenant_id = \?`).
		WillReturnRows(siteAdminRows(0, nil))
	// Reset after the successful password check.
	mock.ExpectExec(`UPDATE site_admin\s+SET\s+failed_attempts = 0`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postLogin(t, h, `{"email":"admin@acme.test","password":"correct-horse","tenantSlug":"acme"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token      string `json:"token"`
		TenantID   int64  `json:"tenantId"`
		TenantSlug string `json:"tenantSlug"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := issuer.Verify(resp.Token)
	if err != nil {
		t.Fatalf("minted token does not verify: %v", err)
	}
	if claims.Kind != token.KindSite || claims.TenantID != 1 || resp.TenantSlug != "acme" {
		t.Errorf("claims %+v / resp %+v", claims, resp)
	}

	// The session cookie must be http-only.
	cookies := rec.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == token.SiteCookie {
			found = true
			if !c.HttpOnly {
				t.Error("site cookie is not HttpOnly")
			}
		}
	}
	if !found {
		t.Error("site cookie not set")
	}
}

func TestSiteLogin_WrongPasswordIncrementsCounter(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	mock.ExpectQuery(`FROM\s+tenant\s+WHERE\s+slug = \?`).
		WillReturnRows(tenantRows())
	mock.ExpectQuery(`FROM\s+site_admin\s+WHERE\s+tenant_id = \?`).
		WillReturnRows(siteAdminRows(0, nil))
	// RecordFailure: conditional UPDATE, then the re-read.
	mock.ExpectExec(`UPDATE site_admin\s+SET\s+locked_until\s+= IF\(failed_attempts \+ 1 >= \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+site_admin\s+WHERE\s+id = \?`).
		WillReturnRows(siteAdminRows(1, nil))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postLogin(t, h, `{"email":"admin@acme.test","password":"wrong","tenantSlug":"acme"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	if code, _ := errorCode(t, rec); code != "invalid_credentials" {
		t.Errorf("code = %q, want invalid_credentials", code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSiteLogin_FifthFailureLocks(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	lockedUntil := time.Now().Add(15 * time.Minute)
	mock.ExpectQuery(`FROM\s+tenant\s+WHERE\s+slug = \?`).
		WillReturnRows(tenantRows())
	mock.ExpectQuery(`FROM\s+site_admin\s+WHERE\s+tenant_id = \?`).
		WillReturnRows(siteAdminRows(4, nil))
	mock.ExpectExec(`UPDATE site_admin\s+SET\s+locked_until\s+= IF\(failed_attempts \+ 1 >= \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+site_admin\s+WHERE\s+id = \?`).
		WillReturnRows(siteAdminRows(5, lockedUntil))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postLogin(t, h, `{"email":"admin@acme.test","password":"wrong","tenantSlug":"acme"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	code, mins := errorCode(t, rec)
	if code != "account_locked" {
		t.Errorf("code = %q, want account_locked", code)
	}
	if mins != 15 {
		t.Errorf("retryAfterMinutes = %d, want 15", mins)
	}
}

func TestSiteLogin_LockedAttemptRejectedBeforePasswordCheck(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	lockedUntil := time.Now().Add(9*time.Minute + 30*time.Second)
	mock.ExpectQuery(`FROM\s+tenant\s+WHERE\s+slug = \?`).
		WillReturnRows(tenantRows())
	mock.ExpectQuery(`FROM\s+site_admin\s+WHERE\s+tenant_id = \?`).
		WillReturnRows(siteAdminRows(5, lockedUntil))
	// Deliberately NO further expectations: a locked attempt must not
	// write anything, even with the correct password.

	rec := postLogin(t, h, `{"email":"admin@acme.test","password":"correct-horse","tenantSlug":"acme"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	code, mins := errorCode(t, rec)
	if code != "account_locked" {
		t.Errorf("code = %q, want account_locked", code)
	}
	// 9m30s rounds up to 10 whole minutes.
	if mins != 10 {
		t.Errorf("retryAfterMinutes = %d, want 10", mins)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Sixteen minutes after the fifth failure the lock has elapsed: the
// login path clears the stale lock, giving the window a fresh counter,
// and the correct password then succeeds.
func TestSiteLogin_ExpiredLockClearedThenSucceeds(t *testing.T) {
	h, mock, issuer := newTestHandler(t)

	lockedUntil := time.Now().Add(-time.Minute)
	mock.ExpectQuery(`FROM\s+tenant\s+WHERE\s+slug = \?`).
		WillReturnRows(tenantRows())
	mock.ExpectQuery(`FROM\s+site_admin\s+WHERE\s+tenant_id = \?`).
		WillReturnRows(siteAdminRows(5, lockedUntil))
	// The guarded clear runs first; only then the post-success reset.
	mock.ExpectExec(`UPDATE site_admin\s+SET\s+failed_attempts = 0,[\s\S]+locked_until <= NOW\(\)`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE site_admin\s+SET\s+failed_attempts = 0,\s+locked_until\s+= NULL\s+WHERE\s+id = \?`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postLogin(t, h, `{"email":"admin@acme.test","password":"correct-horse","tenantSlug":"acme"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims, err := issuer.Verify(resp.Token); err != nil || claims.Kind != token.KindSite {
		t.Errorf("token verify: claims %+v, err %v", claims, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSiteLogin_UnknownTenantMatchesWrongPassword(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	mock.ExpectQuery(`FROM\s+tenant\s+WHERE\s+slug = \?`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "slug", "name", "admin_enabled",
			"suspended_at", "deleted_at", "created_at", "updated_at",
		}))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postLogin(t, h, `{"email":"admin@nowhere.test","password":"whatever1","tenantSlug":"ghost"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	if code, _ := errorCode(t, rec); code != "invalid_credentials" {
		t.Errorf("code = %q, want invalid_credentials", code)
	}
}
