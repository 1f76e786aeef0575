package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mcremap/internal/archive"
	"mcremap/internal/paths"
	"mcremap/internal/storage"
)

// storeLockWait bounds how long Store waits for another build storing the
// same artifact.
const storeLockWait = 30 * time.Second

// Cache is the remapped artifact cache. An entry is the file at Key.Path, its
// marker and its remapped_artifacts row; all three must agree for a hit.
type Cache struct {
	artifacts *storage.ArtifactRepository
	logger    *slog.Logger
}

// New creates a cache indexed in db.
func New(db *storage.DB, logger *slog.Logger) *Cache {
	return &Cache{artifacts: storage.NewArtifactRepository(db), logger: logger}
}

// Lookup returns the cached artifact for key when it exists and was produced
// from the source namespace.
func (c *Cache) Lookup(key Key, source string) (string, bool, error) {
	path := key.Path()
	if !paths.FileExists(path) {
		return "", false, nil
	}

	row, err := c.artifacts.Get(key.String())
	if err != nil {
		return "", false, err
	}
	if row == nil {
		c.logger.Debug("Cached file has no index row", "path", path)
		return "", false, nil
	}

	marker, err := ReadMarker(path)
	if err != nil {
		return "", false, err
	}
	if marker == nil || marker.Source != source {
		c.logger.Debug("Cached file was produced from another namespace",
			"path", path, "want", source, "marker", markerSource(marker))
		return "", false, nil
	}

	return path, true, nil
}

// Store promotes produced onto the key's path and records it. A previous
// entry for the key is overwritten.
func (c *Cache) Store(key Key, source, produced string, hops []string) (string, error) {
	path := key.Path()
	lock, err := LockArtifact(path, storeLockWait)
	if err != nil {
		return "", err
	}
	defer lock.Release()

	if err := promote(produced, path); err != nil {
		return "", fmt.Errorf("promoting %s: %w", produced, err)
	}

	deps := key.Dependencies
	if err := WriteMarker(path, &Marker{
		Source:       source,
		Destination:  key.Destination,
		Dependencies: deps,
		Hops:         hops,
		Created:      time.Now().UTC().Truncate(time.Second),
	}); err != nil {
		return "", fmt.Errorf("writing cache marker: %w", err)
	}

	if err := c.artifacts.Upsert(&storage.Artifact{
		CacheKey:             key.String(),
		Path:                 path,
		InputPath:            key.Artifact,
		SourceNamespace:      source,
		DestinationNamespace: key.Destination,
		Dependencies:         deps,
		Hops:                 hops,
	}); err != nil {
		return "", err
	}

	c.logger.Debug("Stored remapped artifact", "path", path, "source", source, "destination", key.Destination)
	return path, nil
}

// Forget removes the entry for key.
func (c *Cache) Forget(key Key) error {
	path := key.Path()
	for _, p := range []string{path, MarkerPath(path)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return c.artifacts.Delete(key.String())
}

// Entries lists every recorded artifact produced from input.
func (c *Cache) Entries(input string) ([]*storage.Artifact, error) {
	return c.artifacts.ListByInput(input)
}

// promote moves src onto dst, copying through a sibling temp file when a
// rename is not possible.
func promote(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	tmp := dst + ".tmp"
	if err := archive.CopyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	_ = os.Remove(src)
	return nil
}

func markerSource(m *Marker) string {
	if m == nil {
		return ""
	}
	return m.Source
}
