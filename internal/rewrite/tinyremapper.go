package rewrite

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"mcremap/internal/slogutil"
)

// TinyRemapper runs an external tiny-remapper jar. The symbol table is written
// to a temporary tiny v2 file and passed on the command line with the
// classpath.
type TinyRemapper struct {
	Java    string
	Jar     string
	Threads int
	TempDir string
	Logger  *slog.Logger
}

// Rewrite implements Rewriter.
func (t *TinyRemapper) Rewrite(ctx context.Context, job Job) error {
	logger := t.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if job.Mappings == nil {
		return fmt.Errorf("rewrite %s: no mappings", job.Input)
	}
	if t.Jar == "" {
		return fmt.Errorf("tiny-remapper jar not configured")
	}

	if t.TempDir != "" {
		if err := os.MkdirAll(t.TempDir, 0755); err != nil {
			return err
		}
	}
	f, err := os.CreateTemp(t.TempDir, "mappings-*.tiny")
	if err != nil {
		return fmt.Errorf("creating mapping file: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	w := bufio.NewWriter(f)
	if err := job.Mappings.WriteTiny2(w); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing mapping file: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), 0755); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, t.java(), t.args(job, f.Name())...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Running tiny-remapper", "input", job.Input, "output", job.Output,
		"from", job.From, "to", job.To, "classpath", len(job.Classpath))
	if err := cmd.Run(); err != nil {
		_ = os.Remove(job.Output)
		return fmt.Errorf("tiny-remapper failed: %v (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (t *TinyRemapper) java() string {
	if t.Java == "" {
		return "java"
	}
	return t.Java
}

// args builds the tiny-remapper command line:
// input output mappings from to [classpath...] [--threads=N].
func (t *TinyRemapper) args(job Job, mappings string) []string {
	args := []string{"-jar", t.Jar, job.Input, job.Output, mappings, job.Mappings.Source, job.Mappings.Destination}
	args = append(args, job.Classpath...)
	if t.Threads > 0 {
		args = append(args, "--threads="+strconv.Itoa(t.Threads))
	}
	return args
}
