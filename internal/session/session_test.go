package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcremap/internal/classfile"
	"mcremap/internal/config"
	"mcremap/internal/deps"
	remaperrors "mcremap/internal/errors"
	"mcremap/internal/mapping"
	"mcremap/internal/paths"
	"mcremap/internal/remap"
	"mcremap/internal/rewrite"
	"mcremap/internal/testutil"
)

const tinyMappings = "tiny\t2\t0\tofficial\tnamed\n" +
	"c\ta\tnet/foo/Bar\n" +
	"\tm\t(La;)V\tc\trun\n"

const tsrgMappings = "a net/minecraft/src/C_1_\n" +
	"\tc (La;)V func_1_c\n"

func settings(t *testing.T, fn func(*config.Config)) *config.Settings {
	t.Helper()
	b := config.NewBuilder(nil)
	b.Update(func(c *config.Config) {
		c.Remap.Threads = 2
		c.Logging.File = false
		if fn != nil {
			fn(c)
		}
	})
	s, err := b.Freeze()
	require.NoError(t, err)
	return s
}

func writeProject(t *testing.T, m *deps.Manifest) string {
	t.Helper()
	t.Setenv(paths.HomeEnvVar, "")
	root := t.TempDir()
	require.NoError(t, m.Save(filepath.Join(root, "remap.toml")))
	return root
}

func classJar(t *testing.T, dir string) string {
	t.Helper()
	c := classfile.New("a", "")
	c.AddMethod(0x0001, "c", "(La;)V")
	data, err := c.Bytes()
	require.NoError(t, err)
	return testutil.WriteZip(t, dir, "mod.jar",
		testutil.Entry{Name: "META-INF/MANIFEST.MF", Data: []byte("Manifest-Version: 1.0\n")},
		testutil.Entry{Name: "a.class", Data: data},
	)
}

func TestOpen_MergesDependencies(t *testing.T) {
	root := writeProject(t, &deps.Manifest{Mappings: []deps.Dependency{
		{Name: "yarn", Version: "1", Path: "deps/yarn.jar"},
		{Name: "mcp", Version: "2", Path: "deps/joined.tsrg"},
	}})
	testutil.WriteMappingArchive(t, filepath.Join(root, "deps"), "yarn.jar", map[string]string{
		"mappings/mappings.tiny": tinyMappings,
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "deps", "joined.tsrg"), []byte(tsrgMappings), 0644))

	s, err := Open(context.Background(), Options{Root: root, Settings: settings(t, nil)})
	require.NoError(t, err)
	defer s.Close()

	assert.ElementsMatch(t, []string{"official", "named", "searge"}, s.Tree.Namespaces())
	assert.True(t, s.Tree.Frozen())
	assert.Equal(t, []string{"yarn-1", "mcp-2"}, s.Manifest.IDs())
	assert.Equal(t, filepath.Join(root, "deps", "joined.tsrg"), s.Dependencies[1])

	name, ok, err := s.Tree.ResolveName(mapping.Query{Kind: mapping.KindClass, Name: "a", Source: "official", Destination: "searge"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "net/minecraft/src/C_1_", name)

	hops, err := remap.Plan(s.Tree, "named", "searge", "searge")
	require.NoError(t, err)
	assert.Equal(t, []string{"named->official", "official->searge"}, remap.HopNames(hops))
}

func TestOpen_SnapshotNamesMCPConfigMembers(t *testing.T) {
	root := writeProject(t, &deps.Manifest{Mappings: []deps.Dependency{
		{Name: "mcp_config", Version: "1.12.2", Path: "deps/joined.tsrg"},
		{Name: "mcp_snapshot", Version: "20180101", Path: "deps/snapshot.zip"},
	}})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "deps"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "deps", "joined.tsrg"),
		[]byte("a net/minecraft/src/C_1_\n\tb (I)V func_5_b\n\tc ()V func_6_c\n"), 0644))
	testutil.WriteMappingArchive(t, filepath.Join(root, "deps"), "snapshot.zip", map[string]string{
		"methods.csv": "searge,name,side,desc\nfunc_5_b,setCount,2,\n",
		"params.csv":  "param,name,side\np_5_1_,count,2\n",
		"fields.csv":  "searge,name,side,desc\n",
	})

	s, err := Open(context.Background(), Options{Root: root, Settings: settings(t, nil)})
	require.NoError(t, err)
	defer s.Close()

	query := mapping.Query{Owner: "a", Name: "b", Desc: "(I)V", Source: "official", Fallback: "searge", Destination: "named"}

	query.Kind = mapping.KindMethod
	name, ok, err := s.Tree.ResolveName(query)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "setCount", name)

	query.Kind = mapping.KindArg
	query.LvIndex = 1
	name, ok, err = s.Tree.ResolveName(query)
	require.NoError(t, err)
	assert.True(t, ok, "parameter names from params.csv must reach the merged tree")
	assert.Equal(t, "count", name)

	// an unnamed method keeps its searge name on the second hop
	hops, err := remap.Plan(s.Tree, "official", "official", "named")
	require.NoError(t, err)
	require.Len(t, hops, 2)
	r, err := mapping.NewResolver(s.Tree, hops[1].From, hops[1].Fallback, hops[1].To)
	require.NoError(t, err)
	assert.Equal(t, "func_6_c", r.Method("net/minecraft/src/C_1_", "func_6_c", "()V"))
	assert.Equal(t, "setCount", r.Method("net/minecraft/src/C_1_", "func_5_b", "(I)V"))
}

func TestOpen_ProvideWithBuiltinRewriter(t *testing.T) {
	root := writeProject(t, &deps.Manifest{Mappings: []deps.Dependency{
		{Name: "yarn", Version: "1", Path: "deps/yarn.jar"},
	}})
	testutil.WriteMappingArchive(t, filepath.Join(root, "deps"), "yarn.jar", map[string]string{
		"mappings/mappings.tiny": tinyMappings,
	})
	input := classJar(t, filepath.Join(root, "libs"))

	s, err := Open(context.Background(), Options{Root: root, Settings: settings(t, nil)})
	require.NoError(t, err)
	tempDir := s.TempDir()

	out, err := s.Provider.Provide(context.Background(), remap.ProvideRequest{
		Artifact: input, From: "official", Fallback: "official", To: "named",
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoDirExists(t, tempDir)

	entries := testutil.ReadZip(t, out)
	require.Contains(t, entries, "net/foo/Bar.class")
	c, err := classfile.Parse(entries["net/foo/Bar.class"])
	require.NoError(t, err)
	name, err := c.Pool.Utf8(c.Methods[0].Name)
	require.NoError(t, err)
	assert.Equal(t, "run", name)

	// a second session finds the cached artifact without rewriting
	calls := 0
	counting := rewrite.Func(func(ctx context.Context, job rewrite.Job) error {
		calls++
		return nil
	})
	s2, err := Open(context.Background(), Options{Root: root, Settings: settings(t, nil), Rewriter: counting})
	require.NoError(t, err)
	defer s2.Close()
	again, err := s2.Provider.Provide(context.Background(), remap.ProvideRequest{
		Artifact: input, From: "official", Fallback: "official", To: "named",
	})
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Equal(t, 0, calls)
}

func TestOpen_MissingDependency(t *testing.T) {
	root := writeProject(t, &deps.Manifest{Mappings: []deps.Dependency{
		{Name: "mcp", Version: "1", Path: "deps/missing.zip"},
	}})

	_, err := Open(context.Background(), Options{Root: root, Settings: settings(t, nil)})
	assert.True(t, remaperrors.HasCode(err, remaperrors.DownloadFailure), "got %v", err)

	left, _ := os.ReadDir(paths.TempDir(root))
	assert.Empty(t, left)
}

func TestOpen_UnrecognizedArchive(t *testing.T) {
	root := writeProject(t, &deps.Manifest{Mappings: []deps.Dependency{
		{Name: "odd", Version: "1", Path: "deps/odd.zip"},
	}})
	testutil.WriteMappingArchive(t, filepath.Join(root, "deps"), "odd.zip", map[string]string{"readme.txt": "hi"})

	_, err := Open(context.Background(), Options{Root: root, Settings: settings(t, nil)})
	assert.True(t, remaperrors.HasCode(err, remaperrors.UnrecognizedFormat), "got %v", err)
}

func TestOpen_RequiresSettings(t *testing.T) {
	_, err := Open(context.Background(), Options{Root: t.TempDir()})
	assert.Error(t, err)
}

func TestNewRewriter(t *testing.T) {
	s := settings(t, nil)
	_, ok := NewRewriter(s, t.TempDir(), nil).(*rewrite.Builtin)
	assert.True(t, ok)

	s = settings(t, func(c *config.Config) {
		c.Remap.Rewriter = config.RewriterTinyRemapper
		c.Remap.TinyRemapperJar = "tiny-remapper.jar"
	})
	tr, ok := NewRewriter(s, t.TempDir(), nil).(*rewrite.TinyRemapper)
	require.True(t, ok)
	assert.Equal(t, "tiny-remapper.jar", tr.Jar)
	assert.Equal(t, 2, tr.Threads)
}
