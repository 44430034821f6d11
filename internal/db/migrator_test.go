package db

import (
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"snagaudit/migrations"
)

func TestSplitStatements(t *testing.T) {
	script := `-- leading comment
CREATE TABLE a (id TEXT);

CREATE FUNCTION touch() RETURNS trigger AS $$
BEGIN
  NEW.updated_at = now();
  RETURN NEW;
END;
$$ LANGUAGE plpgsql;
-- trailing comment
`
	got := SplitStatements(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if !strings.HasPrefix(got[0], "-- leading comment\nCREATE TABLE a") {
		t.Errorf("first statement = %q", got[0])
	}
	if !strings.Contains(got[1], "RETURN NEW;") || !strings.HasSuffix(got[1], "LANGUAGE plpgsql;") {
		t.Errorf("dollar-quoted body was split: %q", got[1])
	}
}

func TestPendingMigrations(t *testing.T) {
	files := fstest.MapFS{
		"0002_media.sql": {Data: []byte("SELECT 1;")},
		"0001_init.sql":  {Data: []byte("SELECT 1;")},
		"0003_more.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("docs")},
	}

	got, err := PendingMigrations(files, map[string]bool{"0002_media.sql": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"0001_init.sql", "0003_more.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PendingMigrations() = %v, want %v", got, want)
	}
}

func TestEmbeddedMigrationsParse(t *testing.T) {
	pending, err := PendingMigrations(migrations.FS, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) == 0 {
		t.Fatal("expected embedded migrations")
	}
	if pending[0] != "0001_init.sql" {
		t.Errorf("first migration = %s", pending[0])
	}
}
