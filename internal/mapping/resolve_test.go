package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	remaperrors "mcremap/internal/errors"
)

func TestResolveName_TinyScenario(t *testing.T) {
	tree := sampleTree()
	tree.Freeze()

	got, ok, err := tree.ResolveName(Query{Kind: KindClass, Name: "a", Source: "official", Destination: "intermediary"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "net/minecraft/class_1", got)

	got, _, err = tree.ResolveName(Query{Kind: KindClass, Name: "a", Source: "official", Destination: "named"})
	require.NoError(t, err)
	assert.Equal(t, "net/foo/Bar", got)
}

func TestResolveName_FallbackTotality(t *testing.T) {
	tree := NewTree()
	v := tree.Visit("official", "searge", "named")
	c := v.Class("a", "C_1", "")
	c.Field("f", "I", "field_1", "")
	c.Method("m", "()V", "", "")
	tree.Freeze()

	tests := []struct {
		name   string
		q      Query
		want   string
		wantOK bool
	}{
		{"destination missing uses fallback",
			Query{Kind: KindClass, Name: "a", Source: "official", Fallback: "searge", Destination: "named"}, "C_1", true},
		{"field falls back",
			Query{Kind: KindField, Owner: "a", Name: "f", Desc: "I", Source: "official", Fallback: "searge", Destination: "named"}, "field_1", true},
		{"method falls back to source",
			Query{Kind: KindMethod, Owner: "a", Name: "m", Desc: "()V", Source: "official", Fallback: "searge", Destination: "named"}, "m", true},
		{"unknown class keeps source name",
			Query{Kind: KindClass, Name: "zz", Source: "official", Fallback: "searge", Destination: "named"}, "zz", true},
		{"unknown member keeps source name",
			Query{Kind: KindMethod, Owner: "zz", Name: "q", Desc: "()V", Source: "official", Destination: "named"}, "q", true},
		{"unknown fallback degrades to source",
			Query{Kind: KindMethod, Owner: "a", Name: "m", Desc: "()V", Source: "official", Fallback: "nope", Destination: "named"}, "m", true},
		{"arg without names is dropped",
			Query{Kind: KindArg, Owner: "a", Name: "m", Desc: "()V", LvIndex: 1, Source: "official", Fallback: "searge", Destination: "named"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := tree.ResolveName(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if tt.q.Kind != KindArg && tt.q.Kind != KindVar {
				assert.NotEmpty(t, got)
			}
		})
	}
}

func TestResolveName_UnknownNamespace(t *testing.T) {
	tree := sampleTree()

	_, _, err := tree.ResolveName(Query{Kind: KindClass, Name: "a", Source: "official", Destination: "mojmap"})
	assert.True(t, remaperrors.HasCode(err, remaperrors.UnknownNamespace))

	_, _, err = tree.ResolveName(Query{Kind: KindClass, Name: "a", Source: "mojmap", Destination: "named"})
	assert.True(t, remaperrors.HasCode(err, remaperrors.UnknownNamespace))
}

func TestResolver_ArgsAndVars(t *testing.T) {
	r, err := NewResolver(sampleTree(), "official", "intermediary", "named")
	require.NoError(t, err)

	name, ok := r.Arg("a", "c", "(La;)V", 1)
	assert.True(t, ok)
	assert.Equal(t, "target", name)

	name, ok = r.Var("a", "c", "(La;)V", 2, -1)
	assert.True(t, ok)
	assert.Equal(t, "tmp", name)

	_, ok = r.Var("a", "c", "(La;)V", 2, 9)
	assert.False(t, ok)
}

func TestResolver_NestedClassThroughOuter(t *testing.T) {
	r, err := NewResolver(sampleTree(), "official", "", "named")
	require.NoError(t, err)
	assert.Equal(t, "net/foo/Bar$1", r.Class("a$1"))
	assert.Equal(t, "(Lnet/foo/Bar;)V", r.MapDescriptor("(La;)V"))
	assert.Equal(t, "official", r.Fallback())
}

func TestResolver_DescriptorInAnotherNamespace(t *testing.T) {
	// member descriptors are stored as first seen and matched in any namespace
	r, err := NewResolver(sampleTree(), "named", "", "intermediary")
	require.NoError(t, err)
	assert.Equal(t, "method_1", r.Method("net/foo/Bar", "run", "(Lnet/foo/Bar;)V"))
	assert.Equal(t, "field_1", r.Field("net/foo/Bar", "baz", "Lnet/foo/Bar;"))
}
