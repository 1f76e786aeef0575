package remap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"mcremap/internal/mapping"
	"mcremap/internal/rewrite"
	"mcremap/internal/slogutil"
)

// MinecraftSource provides the game jar in a namespace and recognizes every
// form of it, so hops never see the game twice on their classpath.
type MinecraftSource interface {
	Minecraft(ctx context.Context, ns, fallback string) (string, error)
	IsMinecraftJar(path string) bool
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	Rewriter  rewrite.Rewriter
	Minecraft MinecraftSource
	// Exclude holds doublestar patterns for classpath entries never passed to a hop.
	Exclude []string
	// Locals includes parameter and local variable names in hop symbol tables.
	Locals bool
	// SetCacheSize bounds how many hop symbol tables are kept.
	SetCacheSize int
	Logger       *slog.Logger
}

// Executor runs single hops.
type Executor struct {
	tree      *mapping.Tree
	rewriter  rewrite.Rewriter
	minecraft MinecraftSource
	exclude   []string
	locals    bool
	sets      *lru.Cache[Hop, *mapping.Set]
	logger    *slog.Logger
}

// NewExecutor creates an executor over a frozen tree.
func NewExecutor(tree *mapping.Tree, opts ExecutorOptions) (*Executor, error) {
	if opts.Rewriter == nil {
		return nil, fmt.Errorf("executor: no rewriter")
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid classpath exclude pattern %q", p)
		}
	}
	size := opts.SetCacheSize
	if size <= 0 {
		size = 16
	}
	sets, err := lru.New[Hop, *mapping.Set](size)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Executor{
		tree:      tree,
		rewriter:  opts.Rewriter,
		minecraft: opts.Minecraft,
		exclude:   opts.Exclude,
		locals:    opts.Locals,
		sets:      sets,
		logger:    logger,
	}, nil
}

// Set returns the symbol table for hop.
func (e *Executor) Set(hop Hop) (*mapping.Set, error) {
	hop.Game = ""
	if s, ok := e.sets.Get(hop); ok {
		return s, nil
	}
	r, err := mapping.NewResolver(e.tree, hop.From, hop.Fallback, hop.To)
	if err != nil {
		return nil, err
	}
	s := r.Set(mapping.SetOptions{Locals: e.locals})
	e.sets.Add(hop, s)
	e.logger.Debug("Built hop symbol table", "hop", hop.String(), "fallback", r.Fallback(), "renames", s.Len())
	return s, nil
}

// Classpath filters classpath for hop: missing files, excluded files and
// forms of the game jar are dropped, then the game jar in the hop's source
// namespace, completed from hop.Game, is appended.
func (e *Executor) Classpath(ctx context.Context, hop Hop, classpath []string) ([]string, error) {
	var out []string
	for _, p := range classpath {
		if _, err := os.Stat(p); err != nil {
			e.logger.Warn("Classpath entry not found, skipping", "path", p)
			continue
		}
		if e.excluded(p) {
			e.logger.Debug("Classpath entry excluded", "path", p)
			continue
		}
		if e.minecraft != nil && e.minecraft.IsMinecraftJar(p) {
			continue
		}
		out = append(out, p)
	}
	if e.minecraft != nil {
		mc, err := e.minecraft.Minecraft(ctx, hop.From, hop.Game)
		if err != nil {
			return nil, fmt.Errorf("providing minecraft in %s: %w", hop.From, err)
		}
		if mc != "" {
			out = append(out, mc)
		}
	}
	return out, nil
}

func (e *Executor) excluded(path string) bool {
	slash := filepath.ToSlash(path)
	for _, p := range e.exclude {
		if ok, _ := doublestar.Match(p, slash); ok {
			return true
		}
	}
	return false
}

// Execute rewrites input into output for one hop.
func (e *Executor) Execute(ctx context.Context, hop Hop, input, output string, classpath []string) error {
	set, err := e.Set(hop)
	if err != nil {
		return err
	}
	cp, err := e.Classpath(ctx, hop, classpath)
	if err != nil {
		return err
	}
	for _, p := range cp {
		e.logger.Debug("Hop classpath", "hop", hop.String(), "path", p)
	}
	return e.rewriter.Rewrite(ctx, rewrite.Job{
		Input:     input,
		Output:    output,
		Mappings:  set,
		Classpath: cp,
		From:      hop.From,
		To:        hop.To,
	})
}
