package remap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mcremap/internal/archive"
	"mcremap/internal/mapping"
	"mcremap/internal/paths"
)

// Request is one remap of Input into Output.
type Request struct {
	Input       string
	Output      string
	Dev         string
	DevFallback string
	Prod        string
	Classpath   []string
}

// Result describes a completed remap.
type Result struct {
	Output   string        `json:"output" yaml:"output"`
	Hops     []Hop         `json:"hops" yaml:"hops"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Pipeline plans a request and runs its hops in order.
type Pipeline struct {
	tree    *mapping.Tree
	exec    *Executor
	tempDir string
	logger  *slog.Logger
}

// NewPipeline creates a pipeline whose intermediate files live under tempDir.
func NewPipeline(tree *mapping.Tree, exec *Executor, tempDir string, logger *slog.Logger) *Pipeline {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Pipeline{tree: tree, exec: exec, tempDir: tempDir, logger: logger}
}

// Executor returns the hop executor.
func (p *Pipeline) Executor() *Executor {
	return p.exec
}

// Run remaps req.Input into req.Output. The plan is computed before any hop
// runs. Output is only written when every hop succeeds, and always carries
// the manifest of the original input.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	hops, err := Plan(p.tree, req.Dev, req.DevFallback, req.Prod)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.tempDir, 0755); err != nil {
		return nil, err
	}
	work, err := os.MkdirTemp(p.tempDir, "remap-")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(work) }()

	if err := os.MkdirAll(filepath.Dir(req.Output), 0755); err != nil {
		return nil, err
	}
	final := req.Output + "." + uuid.NewString() + ".tmp"
	defer func() { _ = os.Remove(final) }()

	if len(hops) == 0 {
		p.logger.Info("Empty remap path, copying input", "input", req.Input, "namespace", req.Prod)
		if err := archive.CopyFile(req.Input, final); err != nil {
			return nil, err
		}
	} else {
		p.logger.Info("Remapping artifact",
			"input", filepath.Base(req.Input),
			"from", req.Dev+"/"+req.DevFallback,
			"to", req.Prod,
			"path", HopNames(hops),
		)
		base, ext := paths.SplitExt(req.Input)
		prev := req.Input
		for _, hop := range hops {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			next := filepath.Join(work, base+"-temp-"+hop.To)
			if ext != "" {
				next += "." + ext
			}
			p.logger.Debug("Running hop", "hop", hop.String(), "fallback", hop.Fallback, "game", hop.Game)
			if err := p.exec.Execute(ctx, hop, prev, next, req.Classpath); err != nil {
				p.logger.Error("Hop failed", "hop", hop.String(), "input", filepath.Base(prev), "error", err)
				return nil, err
			}
			prev = next
		}
		if err := archive.ReplaceManifest(prev, req.Input, final); err != nil {
			return nil, fmt.Errorf("restoring manifest: %w", err)
		}
	}

	if err := os.Rename(final, req.Output); err != nil {
		return nil, err
	}
	return &Result{Output: req.Output, Hops: hops, Duration: time.Since(start)}, nil
}
