package database

import (
	"context"
	"testing"
	"time"
)

func TestMigrateSQLite(t *testing.T) {
	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run must be a no-op
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	now := time.Now().UTC()
	_, err = db.ExecContext(ctx, "INSERT INTO users (email, password_hash, role, created_at, updated_at) VALUES (?,?,?,?,?)",
		"a@b.pe", "x", "TOURIST", now, now)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err = db.ExecContext(ctx, "INSERT INTO users (email, password_hash, role, created_at, updated_at) VALUES (?,?,?,?,?)",
		"a@b.pe", "x", "TOURIST", now, now)
	if !IsDuplicateKey(err) {
		t.Fatalf("expected duplicate key, got %v", err)
	}
	_, err = db.ExecContext(ctx, "INSERT INTO boats (operator_id, name, capacity, created_at, updated_at) VALUES (?,?,?,?,?)",
		999, "Ghost", 10, now, now)
	if !IsForeignKey(err) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("postgres", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- header\nCREATE TABLE a (x INT);\n\nCREATE INDEX i ON a (x);\n")
	if len(got) != 2 {
		t.Fatalf("got %d statements: %q", len(got), got)
	}
}

func TestLockClause(t *testing.T) {
	if LockClause(DriverMySQL) != " FOR UPDATE" || LockClause(DriverSQLite) != "" {
		t.Fatal("unexpected lock clause")
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	cases := map[string]string{
		":memory:":                     ":memory:?_pragma=foreign_keys(1)",
		"selvawasi.db":                 "selvawasi.db?_pragma=foreign_keys(1)",
		"file:x.db?cache=shared":       "file:x.db?cache=shared&_pragma=foreign_keys(1)",
		"x.db?_pragma=foreign_keys(0)": "x.db?_pragma=foreign_keys(0)",
	}
	for in, want := range cases {
		if got := sqliteDSN(in); got != want {
			t.Fatalf("sqliteDSN(%q) = %q, want %q", in, got, want)
		}
	}

	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	// A connection recycled by the pool must still enforce the pragma.
	db.SetConnMaxLifetime(time.Nanosecond)
	time.Sleep(time.Millisecond)
	var on int
	if err := db.Get(&on, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if on != 1 {
		t.Fatalf("foreign_keys = %d", on)
	}
}
