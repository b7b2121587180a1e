// internal/handlers/central_test.go
//
// Tests for the central-admin registration and role-elevation paths.
//
// Context
// -------
// Registration is public, so the role a new account receives must not
// be caller-controlled: every register creates an EDITOR, and the only
// way up is PUT /auth/users/{id}/role behind a SUPER_ADMIN gate.  The
// tests here pin both halves, plus the split between duplicate-key
// errors (caller's fault, 400) and store outages (ours, 500).
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/latticecms/lattice/internal/credential"
	"github.com/latticecms/lattice/internal/token"
)

func centralToken(t *testing.T, issuer *token.Issuer, role credential.Role) string {
	t.Helper()
	tok, err := issuer.Mint(token.Claims{
		Kind:    token.KindCentral,
		Subject: 1,
		Email:   "root@lattice.test",
		Role:    string(role),
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return tok
}

func doJSON(t *testing.T, h *Handler, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestCentralRegister_CreatesEditor(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	mock.ExpectExec(`INSERT INTO central_admin`).
		WithArgs("Pat", "pat@lattice.test", sqlmock.AnyArg(), credential.RoleEditor).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "",
		`{"name":"Pat","email":"Pat@Lattice.test","password":"long-enough-pw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != 5 || resp.Role != string(credential.RoleEditor) {
		t.Errorf("resp = %+v, want id 5 role EDITOR", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// A body that supplies a role must be rejected outright; the strict
// decoder treats it as an unknown field, so nothing reaches the store.
func TestCentralRegister_RoleFieldRejected(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "",
		`{"name":"Mallory","email":"mallory@evil.test","password":"long-enough-pw","role":"SUPER_ADMIN"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	if code, _ := errorCode(t, rec); code != "validation_error" {
		t.Errorf("code = %q, want validation_error", code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCentralRegister_DuplicateEmail(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	mock.ExpectExec(`INSERT INTO central_admin`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "",
		`{"name":"Pat","email":"pat@lattice.test","password":"long-enough-pw"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	if code, _ := errorCode(t, rec); code != "validation_error" {
		t.Errorf("code = %q, want validation_error", code)
	}
}

func TestCentralRegister_StoreOutageIsInternal(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	mock.ExpectExec(`INSERT INTO central_admin`).
		WillReturnError(errors.New("dial tcp: connection refused"))

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "",
		`{"name":"Pat","email":"pat@lattice.test","password":"long-enough-pw"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	if code, _ := errorCode(t, rec); code != "internal_error" {
		t.Errorf("code = %q, want internal_error", code)
	}
}

func TestCentralRoleChange_RequiresSuperAdmin(t *testing.T) {
	h, mock, issuer := newTestHandler(t)

	for _, role := range []credential.Role{credential.RoleEditor, credential.RoleAdmin} {
		rec := doJSON(t, h, http.MethodPut, "/auth/users/5/role",
			centralToken(t, issuer, role), `{"role":"SUPER_ADMIN"}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: code = %d, want 403", role, rec.Code)
		}
	}
	// Anonymous callers never reach the handler either.
	rec := doJSON(t, h, http.MethodPut, "/auth/users/5/role", "", `{"role":"ADMIN"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: code = %d, want 401", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCentralRoleChange_Grants(t *testing.T) {
	h, mock, issuer := newTestHandler(t)

	mock.ExpectExec(`UPDATE central_admin\s+SET\s+role = \?`).
		WithArgs(credential.RoleAdmin, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := doJSON(t, h, http.MethodPut, "/auth/users/5/role",
		centralToken(t, issuer, credential.RoleSuperAdmin), `{"role":"ADMIN"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCentralRoleChange_UnknownUser(t *testing.T) {
	h, mock, issuer := newTestHandler(t)

	mock.ExpectExec(`UPDATE central_admin\s+SET\s+role = \?`).
		WithArgs(credential.RoleEditor, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := doJSON(t, h, http.MethodPut, "/auth/users/99/role",
		centralToken(t, issuer, credential.RoleSuperAdmin), `{"role":"EDITOR"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
}
