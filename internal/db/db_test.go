package db

import (
	"database/sql"
	"testing"
	"time"

	clipstream "github.com/kvasir-media/clipstream"
	"github.com/kvasir-media/clipstream/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := Migrate(database, clipstream.MigrationFS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := setupTestDB(t)
	if err := Migrate(database, clipstream.MigrationFS); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	database := setupTestDB(t)

	if s, err := GetSession(database); err != nil || s != nil {
		t.Fatalf("expected no session initially, got %+v (%v)", s, err)
	}

	session := &model.Session{
		UserID:    "u1",
		Name:      "Ada",
		Email:     "ada@example.com",
		Token:     "tok-1",
		CreatedAt: time.Now(),
	}
	if err := SaveSession(database, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, err := GetSession(database)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != "u1" || got.Token != "tok-1" || got.Email != "ada@example.com" {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestSaveSessionReplacesPrevious(t *testing.T) {
	database := setupTestDB(t)

	first := &model.Session{UserID: "u1", Name: "Ada", Email: "a@x", Token: "tok-1", CreatedAt: time.Now()}
	second := &model.Session{UserID: "u2", Name: "Bob", Email: "b@x", Token: "tok-2", CreatedAt: time.Now()}

	if err := SaveSession(database, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := SaveSession(database, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := GetSession(database)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != "u2" || got.Token != "tok-2" {
		t.Errorf("expected the second session to win, got %+v", got)
	}
}

func TestDeleteSession(t *testing.T) {
	database := setupTestDB(t)

	session := &model.Session{UserID: "u1", Name: "Ada", Email: "a@x", Token: "tok", CreatedAt: time.Now()}
	if err := SaveSession(database, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := DeleteSession(database); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := GetSession(database)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session after delete, got %+v", got)
	}
}

func TestUploadHistory(t *testing.T) {
	database := setupTestDB(t)

	if err := AppendUpload(database, "v1", "First clip", model.TypeShort, 1024); err != nil {
		t.Fatalf("append: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := AppendUpload(database, "v2", "Second clip", model.TypeLong, 2048); err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := ListUploads(database, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].VideoID != "v2" {
		t.Errorf("expected most recent first, got %s", records[0].VideoID)
	}
	if records[1].VideoType != model.TypeShort || records[1].SizeBytes != 1024 {
		t.Errorf("unexpected record: %+v", records[1])
	}

	limited, err := ListUploads(database, 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d records", len(limited))
	}
}
