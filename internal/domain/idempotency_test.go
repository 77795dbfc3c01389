package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newIdempotencyDB(t *testing.T) *gorm.DB {
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
	db := newIdempotencyDB(t)
	m := db.Migrator()

	if (Idempotency{}).TableName() != "idempotency" || !m.HasTable("idempotency") {
		t.Fatal("idempotency table missing")
	}
	if !m.HasIndex(&Idempotency{}, "ux_user_scope_key") {
		t.Fatal("unique index ux_user_scope_key missing")
	}
	if !m.HasIndex(&Idempotency{}, "idx_idempotency_expires_at") {
		t.Fatal("expires_at index missing")
	}
}

func TestIdempotency_KeyIsUniquePerUserAndScope(t *testing.T) {
	db := newIdempotencyDB(t)
	now := time.Now().UTC()
	rec := func(id, user, scope string) *Idempotency {
		return &Idempotency{ID: id, UserID: user, Scope: scope, Key: "k1", ResourceID: "c-" + id, Status: 201, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	}

	tests := []struct {
		name    string
		row     *Idempotency
		wantErr bool
	}{
		{"first use", rec("1", "u1", "cases.create"), false},
		{"same user and scope", rec("2", "u1", "cases.create"), true},
		{"other user", rec("3", "u2", "cases.create"), false},
		{"other scope", rec("4", "u1", "directory.register"), false},
	}
	for _, tc := range tests {
		err := db.Create(tc.row).Error
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err=%v wantErr=%v", tc.name, err, tc.wantErr)
		}
	}
}

func TestIdempotency_RequiredColumns(t *testing.T) {
	db := newIdempotencyDB(t)
	for i, col := range []string{"user_id", "scope", "key", "resource_id", "status", "expires_at"} {
		cols := map[string]any{
			"id": fmt.Sprintf("n%d", i), "user_id": "u1", "scope": "cases.create", "key": fmt.Sprintf("k%d", i),
			"resource_id": "c1", "status": 201, "created_at": time.Now().UTC(), "expires_at": time.Now().UTC(),
		}
		cols[col] = nil
		if err := db.Table("idempotency").Create(cols).Error; err == nil {
			t.Errorf("NULL %s accepted", col)
		}
	}
}

func TestIdempotency_Live(t *testing.T) {
	exp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	i := Idempotency{ExpiresAt: exp}
	if !i.Live(exp.Add(-time.Second)) {
		t.Fatal("record should be live before expiry")
	}
	if i.Live(exp) || i.Live(exp.Add(time.Minute)) {
		t.Fatal("record should not be live at or after expiry")
	}
}
