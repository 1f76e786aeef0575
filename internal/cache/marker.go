package cache

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// MarkerSuffix is appended to an artifact path to name its marker file.
const MarkerSuffix = ".remap.toml"

// Marker records how a cached artifact was produced. A cached file whose
// marker names a different source namespace is stale.
type Marker struct {
	Source       string    `toml:"source"`
	Destination  string    `toml:"destination"`
	Dependencies []string  `toml:"dependencies"`
	Hops         []string  `toml:"hops,omitempty"`
	Created      time.Time `toml:"created"`
}

// MarkerPath returns the marker file for artifact.
func MarkerPath(artifact string) string {
	return artifact + MarkerSuffix
}

// ReadMarker reads the marker beside artifact. A missing marker returns nil
// without error.
func ReadMarker(artifact string) (*Marker, error) {
	data, err := os.ReadFile(MarkerPath(artifact))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Marker
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MarkerPath(artifact), err)
	}
	return &m, nil
}

// WriteMarker writes m beside artifact.
func WriteMarker(artifact string, m *Marker) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(MarkerPath(artifact), data, 0644)
}
