package deps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	remaperrors "mcremap/internal/errors"
	"mcremap/internal/paths"
	"mcremap/internal/slogutil"
	"mcremap/internal/storage"
	"mcremap/internal/version"
)

func sha1Of(t *testing.T, path string) string {
	t.Helper()
	sum, err := FileSHA1(path)
	require.NoError(t, err)
	return sum
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remap.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
minecraft = "minecraft.jar"

[[mapping]]
name = "mcp"
version = "9.0"
path = "deps/mcp.zip"

[[mapping]]
name = "yarn"
version = "1.14+build.1"
url = "https://example.invalid/yarn.jar"
sha1 = "ABC"
`), 0644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "minecraft.jar", m.Minecraft)
	require.Len(t, m.Mappings, 2)
	assert.Equal(t, []string{"mcp-9.0", "yarn-1.14+build.1"}, m.IDs())
	assert.Equal(t, "ABC", m.Mappings[1].SHA1)
}

func TestLoadManifest_Missing(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "remap.toml"))
	require.NoError(t, err)
	assert.Empty(t, m.Mappings)
}

func TestLoadManifest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[[mapping]\n"},
		{"no version", "[[mapping]]\nname = \"mcp\"\npath = \"x\"\n"},
		{"no location", "[[mapping]]\nname = \"mcp\"\nversion = \"1\"\n"},
		{"duplicate", "[[mapping]]\nname = \"mcp\"\nversion = \"1\"\npath = \"a\"\n[[mapping]]\nname = \"mcp\"\nversion = \"1\"\npath = \"b\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "remap.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadManifest(path)
			assert.True(t, remaperrors.HasCode(err, remaperrors.ConfigInvalid), "got %v", err)
		})
	}
}

func TestManifest_AddAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "remap.toml")
	m := &Manifest{}
	require.NoError(t, m.Add(Dependency{Name: "mcp", Version: "1", Path: "mcp.zip"}))
	assert.Error(t, m.Add(Dependency{Name: "mcp", Version: "1", Path: "other.zip"}))
	require.NoError(t, m.Save(path))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.Mappings, loaded.Mappings)
}

func TestResolver_LocalFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "deps"), 0755))
	path := filepath.Join(root, "deps", "mcp.zip")
	require.NoError(t, os.WriteFile(path, []byte("mappings"), 0644))
	sum := sha1Of(t, path)

	db, err := storage.OpenPath(filepath.Join(root, "remap.db"), slogutil.NewDiscardLogger())
	require.NoError(t, err)
	defer db.Close()
	records := storage.NewDependencyRepository(db)

	r := NewResolver(root, nil, records, slogutil.NewDiscardLogger())
	got, err := r.Resolve(context.Background(), Dependency{Name: "mcp", Version: "1", Path: "deps/mcp.zip", SHA1: sum})
	require.NoError(t, err)
	assert.Equal(t, path, got)

	rec, err := records.Get("mcp", "1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, sum, rec.SHA1)

	_, err = r.Resolve(context.Background(), Dependency{Name: "mcp", Version: "1", Path: "deps/mcp.zip", SHA1: "0000000000000000000000000000000000000000"})
	assert.True(t, remaperrors.HasCode(err, remaperrors.ChecksumMismatch), "got %v", err)
	assert.FileExists(t, path, "local files are never deleted")
}

func TestResolver_MissingWithoutURL(t *testing.T) {
	r := NewResolver(t.TempDir(), nil, nil, slogutil.NewDiscardLogger())
	_, err := r.Resolve(context.Background(), Dependency{Name: "mcp", Version: "1", Path: "nope.zip"})
	assert.True(t, remaperrors.HasCode(err, remaperrors.DownloadFailure), "got %v", err)
}

type countingFetcher struct {
	calls int
	body  string
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, url, dst string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(f.body), 0644)
}

func TestResolver_FetchesOnce(t *testing.T) {
	t.Setenv(paths.HomeEnvVar, "")
	root := t.TempDir()
	f := &countingFetcher{body: "mappings"}
	r := NewResolver(root, f, nil, slogutil.NewDiscardLogger())
	d := Dependency{Name: "yarn", Version: "2", URL: "https://example.invalid/yarn-2.jar?x=1"}

	path, err := r.Resolve(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, paths.DirName, "deps", "yarn-2.jar"), path)

	_, err = r.Resolve(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
}

func TestResolver_FetchedChecksumMismatchIsRemoved(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(root, &countingFetcher{body: "tampered"}, nil, slogutil.NewDiscardLogger())
	d := Dependency{Name: "yarn", Version: "2", URL: "https://example.invalid/yarn.zip", SHA1: "0000000000000000000000000000000000000000"}

	_, err := r.Resolve(context.Background(), d)
	assert.True(t, remaperrors.HasCode(err, remaperrors.ChecksumMismatch), "got %v", err)
	assert.NoFileExists(t, r.LocalPath(d))
}

func TestResolver_FetchFailure(t *testing.T) {
	r := NewResolver(t.TempDir(), &countingFetcher{err: assert.AnError}, nil, slogutil.NewDiscardLogger())
	_, err := r.Resolve(context.Background(), Dependency{Name: "yarn", Version: "2", URL: "https://example.invalid/y.zip"})
	assert.True(t, remaperrors.HasCode(err, remaperrors.DownloadFailure), "got %v", err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.UserAgent() != version.UserAgent() || !strings.HasPrefix(r.UserAgent(), "mcremap/") {
			http.Error(w, "unexpected user agent "+r.UserAgent(), http.StatusForbidden)
			return
		}
		if r.URL.Path == "/ok.zip" {
			_, _ = w.Write([]byte("mappings"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewHTTPFetcher(5 * time.Second)

	dst := filepath.Join(dir, "nested", "ok.zip")
	require.NoError(t, f.Fetch(context.Background(), srv.URL+"/ok.zip", dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "mappings", string(data))
	assert.NoFileExists(t, dst+".part")

	err = f.Fetch(context.Background(), srv.URL+"/missing.zip", filepath.Join(dir, "missing.zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.NoFileExists(t, filepath.Join(dir, "missing.zip"))
}
