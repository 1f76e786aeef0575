package archive

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcremap/internal/testutil"
)

func TestListEntries_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteZip(t, dir, "maps.zip",
		testutil.Entry{Name: "config/"},
		testutil.Entry{Name: "config/joined.tsrg", Data: []byte("a b\n")},
		testutil.Entry{Name: "README", Data: []byte("x")},
	)

	names, err := ListEntries(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"config/joined.tsrg", "README"}, names)
}

func TestListEntries_NotAnArchive(t *testing.T) {
	_, err := ListEntries(filepath.Join(t.TempDir(), "missing.zip"))
	assert.Error(t, err)
}

func TestReadEntry(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteZip(t, dir, "maps.zip",
		testutil.Entry{Name: "mappings/mappings.tiny", Data: []byte("v1\tofficial\tnamed\n")},
	)

	data, found, err := ReadEntryBytes(path, "mappings/mappings.tiny")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1\tofficial\tnamed\n", string(data))

	found, err = ReadEntry(path, "nope", func(io.Reader) error { return nil })
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWriter_RejectsDuplicates(t *testing.T) {
	w, err := Create(filepath.Join(t.TempDir(), "out.jar"))
	require.NoError(t, err)
	require.NoError(t, w.WriteEntry("a.class", []byte{1}))
	assert.True(t, w.Has("a.class"))
	assert.Error(t, w.WriteEntry("a.class", []byte{2}))
	require.NoError(t, w.Close())
}

func TestReplaceManifest(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteZip(t, dir, "in.jar",
		testutil.Entry{Name: ManifestName, Data: []byte("Manifest-Version: 1.0\nMain-Class: a\n")},
		testutil.Entry{Name: "a.class", Data: []byte{0xCA}},
	)
	remapped := testutil.WriteZip(t, dir, "hop.jar",
		testutil.Entry{Name: ManifestName, Data: []byte("Manifest-Version: 1.0\n")},
		testutil.Entry{Name: "net/Foo.class", Data: []byte{0xFE}},
	)

	out := filepath.Join(dir, "out.jar")
	require.NoError(t, ReplaceManifest(remapped, original, out))

	got := testutil.ReadZip(t, out)
	assert.Equal(t, "Manifest-Version: 1.0\nMain-Class: a\n", string(got[ManifestName]))
	assert.Equal(t, []byte{0xFE}, got["net/Foo.class"])
	assert.NotContains(t, got, "a.class")
}

func TestReplaceManifest_SourceWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteZip(t, dir, "in.jar", testutil.Entry{Name: "a.class", Data: []byte{1}})
	remapped := testutil.WriteZip(t, dir, "hop.jar",
		testutil.Entry{Name: ManifestName, Data: []byte("Manifest-Version: 1.0\n")},
		testutil.Entry{Name: "b.class", Data: []byte{2}},
	)

	out := filepath.Join(dir, "out.jar")
	require.NoError(t, ReplaceManifest(remapped, original, out))

	got := testutil.ReadZip(t, out)
	assert.NotContains(t, got, ManifestName)
	assert.Contains(t, got, "b.class")
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := testutil.WriteZip(t, dir, "in.jar", testutil.Entry{Name: "a", Data: []byte("x")})
	dst := filepath.Join(dir, "nested", "out.jar")
	require.NoError(t, CopyFile(src, dst))
	assert.True(t, IsArchive(dst))

	var names []string
	require.NoError(t, Walk(dst, func(f *zip.File) error {
		names = append(names, f.Name)
		return nil
	}))
	assert.Equal(t, []string{"a"}, names)
}
