package rewrite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcremap/internal/classfile"
	"mcremap/internal/mapping"
	"mcremap/internal/testutil"
)

func testSet(t *testing.T) *mapping.Set {
	t.Helper()
	tree := mapping.NewTree()
	v := tree.Visit("official", "named")
	c := v.Class("a", "net/foo/Bar")
	c.Field("b", "La;", "baz")
	m := c.Method("c", "(La;)V", "run")
	m.Arg(1, "", "target")
	m.Var(2, -1, -1, "", "tmp")
	v.Class("d", "net/foo/Sub")
	v.Class("a$1", "net/foo/Bar$Anon")
	tree.Freeze()

	r, err := mapping.NewResolver(tree, "official", "", "named")
	require.NoError(t, err)
	return r.Set(mapping.SetOptions{Locals: true})
}

func baseClass(t *testing.T) []byte {
	t.Helper()
	c := classfile.New("a", "")
	c.AddField(0x0001, "b", "La;")
	c.AddMethod(0x0001, "c", "(La;)V", c.CodeAttribute(1, 3, []byte{0xb1},
		classfile.Local{Index: 0, Length: 1, Name: "this", Desc: "La;"},
		classfile.Local{Index: 1, Length: 1, Name: "p1", Desc: "La;"},
		classfile.Local{Index: 2, Length: 1, Name: "v2", Desc: "I"},
	))
	c.Attributes = append(c.Attributes, c.SignatureAttribute("Ljava/lang/Object;Ljava/lang/Comparable<La;>;"))
	data, err := c.Bytes()
	require.NoError(t, err)
	return data
}

func subClass(t *testing.T) []byte {
	t.Helper()
	c := classfile.New("d", "a")
	c.Pool.AddRef(classfile.TagMethodref, "d", "c", "(La;)V")
	c.Pool.AddRef(classfile.TagFieldref, "d", "b", "La;")
	c.Pool.AddRef(classfile.TagMethodref, "[La;", "clone", "()Ljava/lang/Object;")
	data, err := c.Bytes()
	require.NoError(t, err)
	return data
}

func parseEntry(t *testing.T, entries map[string][]byte, name string) *classfile.Class {
	t.Helper()
	data, ok := entries[name]
	require.True(t, ok, "missing entry %s", name)
	c, err := classfile.Parse(data)
	require.NoError(t, err)
	return c
}

func utf8(t *testing.T, c *classfile.Class, i uint16) string {
	t.Helper()
	s, err := c.Pool.Utf8(i)
	require.NoError(t, err)
	return s
}

type ref struct{ owner, name, desc string }

func refs(t *testing.T, c *classfile.Class) []ref {
	t.Helper()
	var out []ref
	c.Pool.Entries(func(i uint16, k *classfile.Constant) {
		if k.Tag != classfile.TagFieldref && k.Tag != classfile.TagMethodref {
			return
		}
		owner, err := c.Pool.ClassName(k.A)
		require.NoError(t, err)
		name, desc, err := c.Pool.NameAndType(k.B)
		require.NoError(t, err)
		out = append(out, ref{owner, name, desc})
	})
	return out
}

func TestBuiltin_RenamesDeclarationsAndLocals(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteZip(t, dir, "in.jar",
		testutil.Entry{Name: "META-INF/MANIFEST.MF", Data: []byte("Manifest-Version: 1.0\n")},
		testutil.Entry{Name: "META-INF/MOD.SF", Data: []byte("signature")},
		testutil.Entry{Name: "a.class", Data: baseClass(t)},
		testutil.Entry{Name: "assets/lang.json", Data: []byte("{}")},
	)
	output := filepath.Join(dir, "out", "out.jar")

	err := NewBuiltin(2, nil).Rewrite(context.Background(), Job{
		Input: input, Output: output, Mappings: testSet(t), From: "official", To: "named",
	})
	require.NoError(t, err)

	entries := testutil.ReadZip(t, output)
	assert.Contains(t, entries, "META-INF/MANIFEST.MF")
	assert.NotContains(t, entries, "META-INF/MOD.SF")
	assert.NotContains(t, entries, "a.class")
	assert.Equal(t, []byte("{}"), entries["assets/lang.json"])

	c := parseEntry(t, entries, "net/foo/Bar.class")
	name, err := c.Name()
	require.NoError(t, err)
	assert.Equal(t, "net/foo/Bar", name)

	require.Len(t, c.Fields, 1)
	assert.Equal(t, "baz", utf8(t, c, c.Fields[0].Name))
	assert.Equal(t, "Lnet/foo/Bar;", utf8(t, c, c.Fields[0].Desc))

	require.Len(t, c.Methods, 1)
	assert.Equal(t, "run", utf8(t, c, c.Methods[0].Name))
	assert.Equal(t, "(Lnet/foo/Bar;)V", utf8(t, c, c.Methods[0].Desc))

	var locals []string
	for _, a := range c.Methods[0].Attributes {
		if c.AttributeName(a) != "Code" {
			continue
		}
		code, err := classfile.DecodeCode(a.Data)
		require.NoError(t, err)
		for _, na := range code.Attributes {
			if c.AttributeName(na) != "LocalVariableTable" {
				continue
			}
			rows, err := classfile.DecodeLocalVariables(na.Data)
			require.NoError(t, err)
			for _, row := range rows {
				locals = append(locals, utf8(t, c, row.Name)+" "+utf8(t, c, row.Desc))
			}
		}
	}
	assert.Equal(t, []string{"this Lnet/foo/Bar;", "target Lnet/foo/Bar;", "tmp I"}, locals)

	var sig string
	for _, a := range c.Attributes {
		if c.AttributeName(a) == "Signature" {
			idx, err := classfile.U2(a.Data)
			require.NoError(t, err)
			sig = utf8(t, c, idx)
		}
	}
	assert.Equal(t, "Ljava/lang/Object;Ljava/lang/Comparable<Lnet/foo/Bar;>;", sig)
}

func TestBuiltin_InheritedReferencesUseClasspath(t *testing.T) {
	dir := t.TempDir()
	lib := testutil.WriteZip(t, dir, "lib.jar", testutil.Entry{Name: "a.class", Data: baseClass(t)})
	input := testutil.WriteZip(t, dir, "in.jar", testutil.Entry{Name: "d.class", Data: subClass(t)})
	output := filepath.Join(dir, "out.jar")

	err := NewBuiltin(1, nil).Rewrite(context.Background(), Job{
		Input: input, Output: output, Mappings: testSet(t), Classpath: []string{lib, filepath.Join(dir, "missing.jar")},
	})
	require.NoError(t, err)

	entries := testutil.ReadZip(t, output)
	require.Len(t, entries, 1)
	c := parseEntry(t, entries, "net/foo/Sub.class")

	super, err := c.SuperName()
	require.NoError(t, err)
	assert.Equal(t, "net/foo/Bar", super)

	assert.ElementsMatch(t, []ref{
		{"net/foo/Sub", "run", "(Lnet/foo/Bar;)V"},
		{"net/foo/Sub", "baz", "Lnet/foo/Bar;"},
		{"[Lnet/foo/Bar;", "clone", "()Ljava/lang/Object;"},
	}, refs(t, c))
}

func TestBuiltin_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteZip(t, dir, "in.jar", testutil.Entry{Name: "a.class", Data: baseClass(t)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewBuiltin(1, nil).Rewrite(ctx, Job{Input: input, Output: filepath.Join(dir, "out.jar"), Mappings: testSet(t)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuiltin_RejectsBrokenClass(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteZip(t, dir, "in.jar", testutil.Entry{Name: "a.class", Data: []byte{0xCA, 0xFE}})

	err := NewBuiltin(1, nil).Rewrite(context.Background(), Job{Input: input, Output: filepath.Join(dir, "out.jar"), Mappings: testSet(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.class")
}

func TestBuiltin_NoMappings(t *testing.T) {
	err := NewBuiltin(1, nil).Rewrite(context.Background(), Job{Input: "in.jar"})
	assert.Error(t, err)
}

func TestClassEntryName(t *testing.T) {
	tests := []struct {
		entry, class, want string
	}{
		{"a.class", "net/foo/Bar", "net/foo/Bar.class"},
		{"META-INF/versions/9/a.class", "net/foo/Bar", "META-INF/versions/9/net/foo/Bar.class"},
		{"x/y/a.class", "a", "a.class"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classEntryName(tt.entry, tt.class), tt.entry)
	}
}
