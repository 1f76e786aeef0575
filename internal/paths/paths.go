package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DirName is the per-project state directory.
	DirName = ".mcremap"
	// HomeEnvVar overrides the project state directory.
	HomeEnvVar = "MCREMAP_HOME"

	configFile   = "config.json"
	databaseFile = "remap.db"
	logFile      = "remap.log"
	manifestFile = "remap.toml"
)

// ProjectDir returns the state directory for a project root.
// MCREMAP_HOME takes precedence when set.
func ProjectDir(projectRoot string) string {
	if env := os.Getenv(HomeEnvVar); env != "" {
		return env
	}
	return filepath.Join(projectRoot, DirName)
}

// EnsureProjectDir creates the state directory if needed and returns it.
func EnsureProjectDir(projectRoot string) (string, error) {
	dir := ProjectDir(projectRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// ConfigDir is the directory viper searches for config.json.
func ConfigDir(projectRoot string) string {
	return ProjectDir(projectRoot)
}

// ConfigPath returns <state>/config.json.
func ConfigPath(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), configFile)
}

// DatabasePath returns <state>/remap.db.
func DatabasePath(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), databaseFile)
}

// LogPath returns <state>/logs/remap.log.
func LogPath(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "logs", logFile)
}

// TempDir returns <state>/tmp.
func TempDir(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "tmp")
}

// ManifestPath returns the default mapping dependency manifest, <root>/remap.toml.
func ManifestPath(projectRoot string) string {
	return filepath.Join(projectRoot, manifestFile)
}

// NormalizeEntryName converts an archive entry name to forward slashes
// and strips any leading "./" or "/".
func NormalizeEntryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	return strings.TrimLeft(name, "/")
}

// SplitExt splits a file name into its base name without extension and the
// extension without its dot.
func SplitExt(path string) (string, string) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext), strings.TrimPrefix(ext, ".")
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
