// internal/content/content_test.go
//
// Unit-tests for the content repository and payload validation.
//
// Context
// -------
// The interesting behaviours are the ones a casual reading of the SQL
// could get wrong:
//
//   • CreateSection with a negative position computes max+1 inside the
//     INSERT (no application-side read).
//   • UpdateSection builds its SET clause from exactly the supplied
//     patch fields, in declaration order.
//   • PublishPage touches published_at only on the DRAFT row.
//   • ValidatePayload is strict for known types and lenient-but-object
//     for unknown ones.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package content

import (
	"context"
	"encoding/json"
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

func TestCreateSection_DefaultPositionComputedInInsert(t *testing.T) {
	db, mock := newMockDB(t)

	// position < 0 selects the COALESCE(MAX(...)) + 1 form; the page ID
	// appears twice (insert target and subquery).
	mock.ExpectExec(`INSERT INTO section \(page_id, type, image_url, content, position\)\s+SELECT \?, \?, \?, \?, COALESCE\(MAX\(s.position\), 0\) \+ 1`).
		WithArgs(int64(4), "hero", nil, []byte(`{"heading":"Hi"}`), int64(4)).
		WillReturnResult(sqlmock.NewResult(9, 1))

	id, err := CreateSection(context.Background(), db, 4, "hero", nil, []byte(`{"heading":"Hi"}`), -1)
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if id != 9 {
		t.Errorf("id = %d, want 9", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateSection_ExplicitPosition(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO section \(page_id, type, image_url, content, position\)\s+VALUES \(\?, \?, \?, \?, \?\)`).
		WithArgs(int64(4), "text-image", nil, []byte(`{}`), 2).
		WillReturnResult(sqlmock.NewResult(10, 1))

	if _, err := CreateSection(context.Background(), db, 4, "text-image", nil, []byte(`{}`), 2); err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateSection_PartialPatch(t *testing.T) {
	db, mock := newMockDB(t)

	// Only image_url and position supplied: the SET clause must carry
	// those two fragments and nothing else.
	mock.ExpectExec(`UPDATE section SET image_url = \?, position = \? WHERE id = \?`).
		WithArgs("https://cdn.acme.test/new.jpg", 3, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	img := "https://cdn.acme.test/new.jpg"
	pos := 3
	err := UpdateSection(context.Background(), db, 7, SectionPatch{ImageURL: &img, Position: &pos})
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateSection_EmptyPatchIsNoop(t *testing.T) {
	db, mock := newMockDB(t)

	// No expectations registered: any statement would fail the test.
	if err := UpdateSection(context.Background(), db, 7, SectionPatch{}); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateSection_MissingRow(t *testing.T) {
	db, mock := newMockDB(t)

	typ := "hero"
	mock.ExpectExec(`UPDATE section SET type = \? WHERE id = \?`).
		WithArgs("hero", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := UpdateSection(context.Background(), db, 99, SectionPatch{Type: &typ})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestPublishPage_GuardsPublishedAt(t *testing.T) {
	db, mock := newMockDB(t)

	// published_at changes only via the IF(status = 'DRAFT', ...) guard.
	mock.ExpectExec(`SET\s+published_at = IF\(status = 'DRAFT', NOW\(\), published_at\),\s+status\s+= 'PUBLISHED'`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := PublishPage(context.Background(), db, 4); err != nil {
		t.Fatalf("PublishPage: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPublishPage_MissingRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE page`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := PublishPage(context.Background(), db, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

//
// Payload validation.
//

func TestValidatePayload_KnownTypeStrict(t *testing.T) {
	// Valid hero payload.
	ok := json.RawMessage(`{"heading":"Welcome","subheading":"","ctaText":"Go","ctaUrl":"https://acme.test/start"}`)
	if err := ValidatePayload("hero", ok); err != nil {
		t.Errorf("valid hero rejected: %v", err)
	}

	// Unknown field inside a known type must be rejected.
	bad := json.RawMessage(`{"heading":"Welcome","bogus":true}`)
	if err := ValidatePayload("hero", bad); err == nil {
		t.Error("hero with unknown field accepted")
	}

	// Missing required field.
	missing := json.RawMessage(`{"subheading":"only"}`)
	if err := ValidatePayload("hero", missing); err == nil {
		t.Error("hero without heading accepted")
	}
}

func TestValidatePayload_UnknownTypeOpaqueObject(t *testing.T) {
	if err := ValidatePayload("custom-widget", json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Errorf("opaque object rejected: %v", err)
	}
	if err := ValidatePayload("custom-widget", json.RawMessage(`[1,2,3]`)); err == nil {
		t.Error("non-object payload accepted")
	}
	if err := ValidatePayload("custom-widget", nil); err == nil {
		t.Error("empty payload accepted")
	}
}
