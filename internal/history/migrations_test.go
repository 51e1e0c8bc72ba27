package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestParseStepName(t *testing.T) {
	tests := []struct {
		file    string
		want    int
		wantErr bool
	}{
		{"001_init.sql", 1, false},
		{"012_add_index.sql", 12, false},
		{"init.sql", 0, true},
		{"abc_init.sql", 0, true},
		{"000_zero.sql", 0, true},
	}
	for _, tc := range tests {
		got, err := parseStepName(tc.file)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseStepName(%q): expected error", tc.file)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("parseStepName(%q) = %d, %v", tc.file, got, err)
		}
	}
}

func TestSchemaStepsOrderNumerically(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_later.sql": {Data: []byte("SELECT 1;")},
		"migrations/002_next.sql":  {Data: []byte("SELECT 1;")},
		"migrations/001_init.sql":  {Data: []byte("SELECT 1;")},
	}
	steps, err := schemaSteps(fsys)
	if err != nil {
		t.Fatalf("schemaSteps returned error: %v", err)
	}
	var versions []int
	for _, step := range steps {
		versions = append(versions, step.version)
	}
	if len(versions) != 3 || versions[0] != 1 || versions[1] != 2 || versions[2] != 10 {
		t.Fatalf("unexpected order %v", versions)
	}
}

func TestSchemaStepsRejectDuplicateVersions(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/001_init.sql":  {Data: []byte("SELECT 1;")},
		"migrations/001_other.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := schemaSteps(fsys); err == nil || !strings.Contains(err.Error(), "share version 1") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestMigrateAppliesOnlyNewSteps(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	if version, err := store.SchemaVersion(ctx); err != nil || version != 1 {
		t.Fatalf("expected schema version 1 after open, got %d (%v)", version, err)
	}

	embedded, err := migrationFS.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}
	fsys := fstest.MapFS{
		// Re-running 001 would fail on this statement if it were applied twice.
		"migrations/001_init.sql":  {Data: append(embedded, []byte("\nCREATE TABLE only_once (id INTEGER);")...)},
		"migrations/002_notes.sql": {Data: []byte("ALTER TABLE sync_outcomes ADD COLUMN notes TEXT;")},
	}
	for i := 0; i < 2; i++ {
		if err := store.migrate(ctx, fsys); err != nil {
			t.Fatalf("migrate #%d returned error: %v", i+1, err)
		}
	}
	if version, err := store.SchemaVersion(ctx); err != nil || version != 2 {
		t.Fatalf("expected schema version 2, got %d (%v)", version, err)
	}
	if _, err := store.db.ExecContext(ctx, "UPDATE sync_outcomes SET notes = 'x'"); err != nil {
		t.Fatalf("expected notes column after migration: %v", err)
	}
}

func TestMigrateRollsBackFailedStep(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	fsys := fstest.MapFS{
		"migrations/002_ok.sql":     {Data: []byte("CREATE TABLE partial (id INTEGER);")},
		"migrations/003_broken.sql": {Data: []byte("NOT VALID SQL;")},
	}
	if err := store.migrate(ctx, fsys); err == nil || !strings.Contains(err.Error(), "003_broken.sql") {
		t.Fatalf("expected failure naming the broken step, got %v", err)
	}
	if version, err := store.SchemaVersion(ctx); err != nil || version != 1 {
		t.Fatalf("expected schema version to stay at 1, got %d (%v)", version, err)
	}
}
