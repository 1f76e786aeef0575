// Package deps reads the mapping dependency manifest (remap.toml) and makes
// every declared mapping archive available on disk with a verified checksum.
package deps

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	remaperrors "mcremap/internal/errors"
)

// Manifest is the remap.toml file.
type Manifest struct {
	// Minecraft optionally names the game jar the mappings describe,
	// relative to the project root.
	Minecraft string `toml:"minecraft,omitempty"`

	// Mappings lists the mapping dependencies in merge order.
	Mappings []Dependency `toml:"mapping"`
}

// Dependency is one mapping archive.
type Dependency struct {
	// Name and Version form the dependency's identity in cache keys.
	Name    string `toml:"name"`
	Version string `toml:"version"`

	// Path is where the archive lives, relative to the project root. When it
	// is missing and URL is set, the archive is fetched there.
	Path string `toml:"path,omitempty"`
	URL  string `toml:"url,omitempty"`

	// SHA1 is the expected hex checksum; empty skips verification.
	SHA1 string `toml:"sha1,omitempty"`
}

// ID returns name-version.
func (d Dependency) ID() string {
	return d.Name + "-" + d.Version
}

// LoadManifest reads a manifest. A missing file is an empty manifest.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &m, nil
	}
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, remaperrors.New(remaperrors.ConfigInvalid, "failed to parse "+filepath.Base(path), err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every dependency is identifiable and locatable.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool)
	for i, d := range m.Mappings {
		if d.Name == "" || d.Version == "" {
			return remaperrors.Newf(remaperrors.ConfigInvalid, "mapping %d: name and version are required", i+1)
		}
		if d.Path == "" && d.URL == "" {
			return remaperrors.Newf(remaperrors.ConfigInvalid, "mapping %s: path or url is required", d.ID())
		}
		if seen[d.ID()] {
			return remaperrors.Newf(remaperrors.ConfigInvalid, "mapping %s is declared twice", d.ID())
		}
		seen[d.ID()] = true
	}
	return nil
}

// Add appends a dependency.
func (m *Manifest) Add(d Dependency) error {
	for _, existing := range m.Mappings {
		if existing.ID() == d.ID() {
			return fmt.Errorf("mapping %s already exists", d.ID())
		}
	}
	m.Mappings = append(m.Mappings, d)
	return m.Validate()
}

// IDs returns the identity of every dependency in declaration order.
func (m *Manifest) IDs() []string {
	ids := make([]string, len(m.Mappings))
	for i, d := range m.Mappings {
		ids[i] = d.ID()
	}
	return ids
}

// Save writes the manifest.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return nil
}
