// Package cache stores remapped artifacts at deterministic paths so repeated
// requests with the same inputs skip the remap pipeline.
package cache

import (
	"path/filepath"
	"sort"
	"strings"

	"mcremap/internal/paths"
)

// Key identifies one remapped artifact: the input, the identities of every
// mapping dependency in the session and the destination namespace.
type Key struct {
	Artifact     string
	Dependencies []string
	Destination  string
	// Dir replaces the artifact's directory as the cache root when set.
	Dir string
}

// Combined returns the dependency identities sorted and joined with '+'.
func (k Key) Combined() string {
	deps := append([]string(nil), k.Dependencies...)
	sort.Strings(deps)
	return strings.Join(deps, "+")
}

// Path returns <root>/<combined>/<base>-mapped-<combined>-<destination>.<ext>.
func (k Key) Path() string {
	root := k.Dir
	if root == "" {
		root = filepath.Dir(k.Artifact)
	}
	combined := k.Combined()
	base, ext := paths.SplitExt(k.Artifact)
	name := base + "-mapped-" + combined + "-" + k.Destination
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(root, combined, name)
}

// String is the key's database identity.
func (k Key) String() string {
	return k.Path()
}
