package rewrite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcremap/internal/testutil"
)

func TestTinyRemapper_Args(t *testing.T) {
	tr := &TinyRemapper{Jar: "tr.jar", Threads: 4}
	job := Job{Input: "in.jar", Output: "out.jar", Mappings: testSet(t), Classpath: []string{"lib.jar"}}

	assert.Equal(t, "java", tr.java())
	assert.Equal(t,
		[]string{"-jar", "tr.jar", "in.jar", "out.jar", "m.tiny", "official", "named", "lib.jar", "--threads=4"},
		tr.args(job, "m.tiny"))
}

func TestTinyRemapper_JavaMissing(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteZip(t, dir, "in.jar", testutil.Entry{Name: "a.class", Data: baseClass(t)})
	output := filepath.Join(dir, "out.jar")
	tmp := filepath.Join(dir, "tmp")

	tr := &TinyRemapper{Java: filepath.Join(dir, "no-such-java"), Jar: "tr.jar", TempDir: tmp}
	err := tr.Rewrite(context.Background(), Job{Input: input, Output: output, Mappings: testSet(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tiny-remapper failed")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))

	left, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, left, "mapping file should be removed")
}

func TestTinyRemapper_NoJar(t *testing.T) {
	tr := &TinyRemapper{}
	err := tr.Rewrite(context.Background(), Job{Input: "in.jar", Output: "out.jar", Mappings: testSet(t)})
	assert.Error(t, err)
}
