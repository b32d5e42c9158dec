package db

import (
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_indexes.sql": {Data: []byte("CREATE INDEX two;")},
		"001_init.sql":    {Data: []byte("CREATE TABLE one;")},
		"010_later.sql":   {Data: []byte("CREATE TABLE ten;")},
		"README.md":       {Data: []byte("not a migration")},
		"notes.sql":       {Data: []byte("no numeric prefix")},
	}

	migrations, err := LoadMigrations(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	wantVersions := []int{1, 2, 10}
	for i, want := range wantVersions {
		if migrations[i].Version != want {
			t.Errorf("migration %d: version = %d, want %d", i, migrations[i].Version, want)
		}
	}
	if migrations[0].Name != "001_init.sql" {
		t.Errorf("first migration name = %s", migrations[0].Name)
	}
	if migrations[0].SQL != "CREATE TABLE one;" {
		t.Errorf("first migration SQL = %q", migrations[0].SQL)
	}
}

func TestLoadMigrations_Empty(t *testing.T) {
	migrations, err := LoadMigrations(fstest.MapFS{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("expected no migrations, got %d", len(migrations))
	}
}
