package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestIdempotency_Schema(t *testing.T) {
	db := newTestDB(t)
	m := db.Migrator()

	if !m.HasTable("idempotency") {
		t.Fatalf("table idempotency missing")
	}
	if !m.HasIndex(&Idempotency{}, "ux_client_scope_key") {
		t.Fatalf("unique index ux_client_scope_key missing")
	}
	for _, col := range []string{"client_id", "scope", "key", "submission_id", "status", "created_at", "expires_at"} {
		if !m.HasColumn(&Idempotency{}, col) {
			t.Fatalf("column %s missing", col)
		}
	}
}

func TestIdempotency_Constraints(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	row := func(id, client, key string) *Idempotency {
		return &Idempotency{
			ID:           id,
			ClientID:     client,
			Scope:        "submissions.create",
			Key:          key,
			SubmissionID: 1700000000000,
			Status:       201,
			CreatedAt:    now,
			ExpiresAt:    now.Add(24 * time.Hour),
		}
	}

	if err := db.Create(row("a", "visitor-1", "k1")).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	var got Idempotency
	if err := db.First(&got, "id = ?", "a").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.ClientID != "visitor-1" || got.SubmissionID != 1700000000000 || !got.ExpiresAt.After(got.CreatedAt) {
		t.Fatalf("unexpected row: %+v", got)
	}

	// One record per (client, scope, key); other visitors may reuse a key.
	if err := db.Create(row("b", "visitor-1", "k1")).Error; err == nil {
		t.Fatalf("expected unique violation on (client_id, scope, key)")
	}
	if err := db.Create(row("c", "visitor-2", "k1")).Error; err != nil {
		t.Fatalf("other visitor with same key: %v", err)
	}

	// NOT NULL columns reject NULL.
	for _, col := range []string{"client_id", "scope", "key", "submission_id", "status", "expires_at"} {
		err := db.Exec(`INSERT INTO idempotency (id, client_id, scope, key, submission_id, status, created_at, expires_at)
			VALUES ('n-`+col+`', 'v', 's', 'k-`+col+`', 1, 201, ?, ?)`, now, now).Error
		if err != nil {
			t.Fatalf("baseline insert for %s: %v", col, err)
		}
		if err := db.Exec(`UPDATE idempotency SET `+col+` = NULL WHERE id = ?`, "n-"+col).Error; err == nil {
			t.Fatalf("expected NOT NULL violation for %s", col)
		}
	}
}
