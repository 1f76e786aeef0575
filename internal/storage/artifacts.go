package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Artifact is one remapped_artifacts row.
type Artifact struct {
	CacheKey             string    `json:"cacheKey" yaml:"cacheKey"`
	Path                 string    `json:"path" yaml:"path"`
	InputPath            string    `json:"inputPath" yaml:"inputPath"`
	SourceNamespace      string    `json:"sourceNamespace" yaml:"sourceNamespace"`
	DestinationNamespace string    `json:"destinationNamespace" yaml:"destinationNamespace"`
	Dependencies         []string  `json:"dependencies" yaml:"dependencies"`
	Hops                 []string  `json:"hops,omitempty" yaml:"hops,omitempty"`
	CreatedAt            time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// ArtifactRepository provides CRUD operations for the remapped_artifacts table
type ArtifactRepository struct {
	db *DB
}

// NewArtifactRepository creates a new artifact repository
func NewArtifactRepository(db *DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Upsert inserts or replaces the row for a.CacheKey. CreatedAt is kept from
// an existing row.
func (r *ArtifactRepository) Upsert(a *Artifact) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO remapped_artifacts (
			cache_key, path, input_path, source_namespace, destination_namespace,
			dependencies, hops, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			path = excluded.path,
			input_path = excluded.input_path,
			source_namespace = excluded.source_namespace,
			destination_namespace = excluded.destination_namespace,
			dependencies = excluded.dependencies,
			hops = excluded.hops,
			updated_at = excluded.updated_at
	`,
		a.CacheKey,
		a.Path,
		a.InputPath,
		a.SourceNamespace,
		a.DestinationNamespace,
		joinList(a.Dependencies),
		joinList(a.Hops),
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert artifact: %w", err)
	}
	return nil
}

// Get retrieves the artifact for a cache key, or nil when there is none
func (r *ArtifactRepository) Get(cacheKey string) (*Artifact, error) {
	row := r.db.QueryRow(`
		SELECT cache_key, path, input_path, source_namespace, destination_namespace,
		       dependencies, hops, created_at, updated_at
		FROM remapped_artifacts
		WHERE cache_key = ?
	`, cacheKey)

	a, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return a, nil
}

// Delete removes the row for a cache key
func (r *ArtifactRepository) Delete(cacheKey string) error {
	if _, err := r.db.Exec("DELETE FROM remapped_artifacts WHERE cache_key = ?", cacheKey); err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

// ListByInput returns every artifact produced from inputPath, newest first
func (r *ArtifactRepository) ListByInput(inputPath string) ([]*Artifact, error) {
	return r.list(`WHERE input_path = ?`, inputPath)
}

// List returns every artifact, newest first
func (r *ArtifactRepository) List() ([]*Artifact, error) {
	return r.list("")
}

func (r *ArtifactRepository) list(where string, args ...interface{}) ([]*Artifact, error) {
	rows, err := r.db.Query(`
		SELECT cache_key, path, input_path, source_namespace, destination_namespace,
		       dependencies, hops, created_at, updated_at
		FROM remapped_artifacts
		`+where+`
		ORDER BY updated_at DESC, cache_key
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var out []*Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(s scanner) (*Artifact, error) {
	var a Artifact
	var deps, hops, createdAt, updatedAt string
	err := s.Scan(
		&a.CacheKey,
		&a.Path,
		&a.InputPath,
		&a.SourceNamespace,
		&a.DestinationNamespace,
		&deps,
		&hops,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Dependencies = splitList(deps)
	a.Hops = splitList(hops)
	if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at format: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at format: %w", err)
	}
	return &a, nil
}

// Dependency is one mapping_dependencies row.
type Dependency struct {
	Name      string    `json:"name" yaml:"name"`
	Version   string    `json:"version" yaml:"version"`
	Path      string    `json:"path" yaml:"path"`
	SHA1      string    `json:"sha1" yaml:"sha1"`
	FetchedAt time.Time `json:"fetchedAt" yaml:"fetchedAt"`
}

// DependencyRepository records which mapping dependencies were fetched and verified
type DependencyRepository struct {
	db *DB
}

// NewDependencyRepository creates a new dependency repository
func NewDependencyRepository(db *DB) *DependencyRepository {
	return &DependencyRepository{db: db}
}

// Record inserts or replaces a dependency row
func (r *DependencyRepository) Record(d *Dependency) error {
	if d.FetchedAt.IsZero() {
		d.FetchedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO mapping_dependencies (name, version, path, sha1, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`, d.Name, d.Version, d.Path, d.SHA1, d.FetchedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record dependency: %w", err)
	}
	return nil
}

// Get returns the row for name and version, or nil when there is none
func (r *DependencyRepository) Get(name, version string) (*Dependency, error) {
	var d Dependency
	var fetchedAt string
	err := r.db.QueryRow(`
		SELECT name, version, path, sha1, fetched_at
		FROM mapping_dependencies
		WHERE name = ? AND version = ?
	`, name, version).Scan(&d.Name, &d.Version, &d.Path, &d.SHA1, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dependency: %w", err)
	}
	if d.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt); err != nil {
		return nil, fmt.Errorf("invalid fetched_at format: %w", err)
	}
	return &d, nil
}

// Stats returns row counts per table
func (db *DB) Stats() (map[string]int, error) {
	stats := make(map[string]int)
	for _, table := range []string{"remapped_artifacts", "mapping_dependencies"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = n
	}
	return stats, nil
}

func joinList(items []string) string {
	return strings.Join(items, "\n")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
