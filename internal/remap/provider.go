package remap

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"mcremap/internal/cache"
	"mcremap/internal/mapping"
	"mcremap/internal/paths"
	"mcremap/internal/rewrite"
	"mcremap/internal/slogutil"
)

// ProviderOptions configures a Provider.
type ProviderOptions struct {
	Rewriter rewrite.Rewriter
	// Dependencies are the identities of every mapping dependency, for cache keys.
	Dependencies []string
	// CacheDir replaces each artifact's directory as the cache root when set.
	CacheDir string
	// MinecraftJar is the game jar in MinecraftNamespace. Empty disables
	// the game jar on hop classpaths.
	MinecraftJar       string
	MinecraftNamespace string
	Exclude            []string
	Locals             bool
	SetCacheSize       int
	TempDir            string
	Logger             *slog.Logger
}

// Provider is the cached front of the pipeline. It also provides the game jar
// in any namespace to the hops it runs.
type Provider struct {
	tree     *mapping.Tree
	cache    *cache.Cache
	pipeline *Pipeline
	opts     ProviderOptions
	logger   *slog.Logger

	mu   sync.Mutex
	runs int
}

// ProvideRequest asks for Artifact, currently in From (with missing names in
// Fallback), remapped to To.
type ProvideRequest struct {
	Artifact  string
	From      string
	Fallback  string
	To        string
	Classpath []string
	// Refresh skips the cache lookup. The result still replaces the cached file.
	Refresh bool
}

// NewProvider creates a provider over a frozen tree.
func NewProvider(tree *mapping.Tree, c *cache.Cache, opts ProviderOptions) (*Provider, error) {
	if opts.Logger == nil {
		opts.Logger = slogutil.NewDiscardLogger()
	}
	p := &Provider{tree: tree, cache: c, opts: opts, logger: opts.Logger}
	exec, err := NewExecutor(tree, ExecutorOptions{
		Rewriter:     opts.Rewriter,
		Minecraft:    p,
		Exclude:      opts.Exclude,
		Locals:       opts.Locals,
		SetCacheSize: opts.SetCacheSize,
		Logger:       opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	p.pipeline = NewPipeline(tree, exec, opts.TempDir, opts.Logger)
	return p, nil
}

// Pipeline returns the uncached pipeline.
func (p *Provider) Pipeline() *Pipeline {
	return p.pipeline
}

// Runs reports how many times the pipeline ran.
func (p *Provider) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

func (p *Provider) key(artifact, to string) cache.Key {
	return cache.Key{
		Artifact:     artifact,
		Dependencies: p.opts.Dependencies,
		Destination:  to,
		Dir:          p.opts.CacheDir,
	}
}

// Provide returns the cached remap of req.Artifact, producing it first when
// needed.
func (p *Provider) Provide(ctx context.Context, req ProvideRequest) (string, error) {
	key := p.key(req.Artifact, req.To)
	if !req.Refresh {
		path, ok, err := p.cache.Lookup(key, req.From)
		if err != nil {
			return "", err
		}
		if ok {
			p.logger.Debug("Using cached artifact", "path", path)
			return path, nil
		}
	}

	_, ext := paths.SplitExt(req.Artifact)
	tmp := filepath.Join(p.pipeline.tempDir, "provide-"+uuid.NewString())
	if ext != "" {
		tmp += "." + ext
	}
	res, err := p.pipeline.Run(ctx, Request{
		Input:       req.Artifact,
		Output:      tmp,
		Dev:         req.From,
		DevFallback: req.Fallback,
		Prod:        req.To,
		Classpath:   req.Classpath,
	})
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	p.runs++
	p.mu.Unlock()

	return p.cache.Store(key, req.From, res.Output, HopNames(res.Hops))
}

// Minecraft implements MinecraftSource.
func (p *Provider) Minecraft(ctx context.Context, ns, fallback string) (string, error) {
	jar := p.opts.MinecraftJar
	if jar == "" || ns == p.opts.MinecraftNamespace {
		return jar, nil
	}
	return p.Provide(ctx, ProvideRequest{
		Artifact: jar,
		From:     p.opts.MinecraftNamespace,
		Fallback: fallback,
		To:       ns,
	})
}

// IsMinecraftJar implements MinecraftSource.
func (p *Provider) IsMinecraftJar(path string) bool {
	jar := p.opts.MinecraftJar
	if jar == "" {
		return false
	}
	path = filepath.Clean(path)
	if path == filepath.Clean(jar) {
		return true
	}
	for _, ns := range p.tree.Namespaces() {
		if path == filepath.Clean(p.key(jar, ns).Path()) {
			return true
		}
	}
	return false
}
