package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	return n == 1
}

var twoSteps = Static{
	{Version: 2, Name: "add_b", Up: `CREATE TABLE b (id INTEGER)`, Down: `DROP TABLE b`},
	{Version: 1, Name: "add_a", Up: `CREATE TABLE a (id INTEGER)`, Down: `DROP TABLE a`},
}

func TestMigrateUpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := NewMigrator(db, twoSteps, "")

	if err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	v, err := m.CurrentVersion(ctx)
	if err != nil || v != 2 {
		t.Fatalf("version = %d, %v; want 2", v, err)
	}
	if !tableExists(t, db, "a") || !tableExists(t, db, "b") {
		t.Fatal("tables missing after MigrateUp")
	}

	// Re-running is a no-op
	if err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}

	if err := m.MigrateTo(ctx, 1); err != nil {
		t.Fatalf("MigrateTo(1): %v", err)
	}
	if tableExists(t, db, "b") || !tableExists(t, db, "a") {
		t.Fatal("rollback to 1 should drop only b")
	}
	pending, err := m.Pending(ctx)
	if err != nil || len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("pending = %+v, %v", pending, err)
	}
}

func TestMigrateRejectsDuplicates(t *testing.T) {
	dup := Static{
		{Version: 1, Name: "x", Up: `SELECT 1`},
		{Version: 1, Name: "y", Up: `SELECT 1`},
	}
	if err := NewMigrator(openDB(t), dup, "").MigrateUp(context.Background()); err == nil {
		t.Fatal("expected an error for duplicate versions")
	}
}

func TestFSProvider(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_init.up.sql":   {Data: []byte(`CREATE TABLE a (id INTEGER)`)},
		"m/001_init.down.sql": {Data: []byte(`DROP TABLE a`)},
		"m/002_more.up.sql":   {Data: []byte(`CREATE TABLE b (id INTEGER)`)},
		"m/README":            {Data: []byte(`ignored`)},
	}
	migrations, err := NewFSProvider(fsys, "m").Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("got %d migrations, want 2", len(migrations))
	}

	db := openDB(t)
	if err := NewMigrator(db, NewFSProvider(fsys, "m"), "").MigrateUp(context.Background()); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if !tableExists(t, db, "b") {
		t.Fatal("table b missing")
	}

	missingUp := fstest.MapFS{"m/003_x.down.sql": {Data: []byte(`SELECT 1`)}}
	if _, err := NewFSProvider(missingUp, "m").Migrations(); err == nil {
		t.Fatal("expected an error for a migration without an up file")
	}
}
