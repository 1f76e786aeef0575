package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"mcremap/internal/slogutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenPath(filepath.Join(t.TempDir(), "remap.db"), slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_CreatesSchema(t *testing.T) {
	db := openTestDB(t)

	version, err := db.getSchemaVersion()
	if err != nil {
		t.Fatalf("getSchemaVersion failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("version = %d, want %d", version, currentSchemaVersion)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["remapped_artifacts"] != 0 || stats["mapping_dependencies"] != 0 {
		t.Errorf("new database should be empty, got %v", stats)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	db := openTestDB(t)

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remap.db")
	db, err := OpenPath(path, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if err := NewArtifactRepository(db).Upsert(&Artifact{CacheKey: "k", Path: "p", InputPath: "in"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	_ = db.Close()

	db, err = OpenPath(path, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	a, err := NewArtifactRepository(db).Get("k")
	if err != nil || a == nil {
		t.Fatalf("Get after reopen = %v, %v", a, err)
	}
}

func TestOpen_MigratesFromV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remap.db")

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	tx, err := conn.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := createSchemaVersionTable(tx); err != nil {
		t.Fatal(err)
	}
	if err := createRemappedArtifactsTable(tx); err != nil {
		t.Fatal(err)
	}
	if err := setSchemaVersion(tx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := tx.Exec(`INSERT INTO remapped_artifacts VALUES ('k', 'p', 'in', 'official', 'named', 'a-1', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	_ = conn.Close()

	db, err := OpenPath(path, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	defer db.Close()

	version, _ := db.getSchemaVersion()
	if version != currentSchemaVersion {
		t.Errorf("version = %d, want %d", version, currentSchemaVersion)
	}
	a, err := NewArtifactRepository(db).Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a == nil || a.SourceNamespace != "official" || len(a.Hops) != 0 {
		t.Errorf("migrated row = %+v", a)
	}
	if err := NewDependencyRepository(db).Record(&Dependency{Name: "mcp", Version: "1", Path: "x", SHA1: "00"}); err != nil {
		t.Errorf("mapping_dependencies should exist after migration: %v", err)
	}
}

func TestArtifactRepository(t *testing.T) {
	repo := NewArtifactRepository(openTestDB(t))

	a := &Artifact{
		CacheKey:             "mod.jar|mcp-1+yarn-2|named",
		Path:                 "/cache/mod-mapped.jar",
		InputPath:            "/libs/mod.jar",
		SourceNamespace:      "official",
		DestinationNamespace: "named",
		Dependencies:         []string{"mcp-1", "yarn-2"},
		Hops:                 []string{"official->searge", "searge->named"},
	}
	if err := repo.Upsert(a); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.Get(a.CacheKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.Path != a.Path || got.SourceNamespace != "official" {
		t.Errorf("Get = %+v", got)
	}
	if len(got.Dependencies) != 2 || got.Dependencies[1] != "yarn-2" {
		t.Errorf("Dependencies = %v", got.Dependencies)
	}
	if len(got.Hops) != 2 {
		t.Errorf("Hops = %v", got.Hops)
	}

	// overwrite keeps one row per key
	a.SourceNamespace = "searge"
	a.Hops = nil
	if err := repo.Upsert(a); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	list, err := repo.ListByInput("/libs/mod.jar")
	if err != nil {
		t.Fatalf("ListByInput failed: %v", err)
	}
	if len(list) != 1 || list[0].SourceNamespace != "searge" || list[0].Hops != nil {
		t.Errorf("ListByInput = %+v", list)
	}

	if err := repo.Delete(a.CacheKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err = repo.Get(a.CacheKey)
	if err != nil || got != nil {
		t.Errorf("Get after Delete = %v, %v", got, err)
	}
}

func TestDependencyRepository(t *testing.T) {
	repo := NewDependencyRepository(openTestDB(t))

	if got, err := repo.Get("mcp", "9.0"); err != nil || got != nil {
		t.Fatalf("Get on empty table = %v, %v", got, err)
	}

	d := &Dependency{Name: "mcp", Version: "9.0", Path: "/deps/mcp.zip", SHA1: "abc"}
	if err := repo.Record(d); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	d.SHA1 = "def"
	if err := repo.Record(d); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := repo.Get("mcp", "9.0")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.SHA1 != "def" || got.FetchedAt.IsZero() {
		t.Errorf("Get = %+v", got)
	}
}
