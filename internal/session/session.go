// Package session builds the context of one mcremap invocation: frozen
// settings, logger, database, mapping graph and the cached remap provider.
// Every component receives what it needs from here; nothing is global.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mcremap/internal/cache"
	"mcremap/internal/config"
	"mcremap/internal/deps"
	"mcremap/internal/mapping"
	"mcremap/internal/paths"
	"mcremap/internal/remap"
	"mcremap/internal/rewrite"
	"mcremap/internal/slogutil"
	"mcremap/internal/storage"
)

// Options configures Open.
type Options struct {
	Root     string
	Settings *config.Settings
	Logger   *slog.Logger
	// Fetcher downloads remote mapping dependencies; nil uses HTTP.
	Fetcher deps.Fetcher
	// Rewriter replaces the configured rewrite primitive.
	Rewriter rewrite.Rewriter
}

// Session is one invocation's context. Close releases it.
type Session struct {
	ID       string
	Root     string
	Settings *config.Settings
	Logger   *slog.Logger
	DB       *storage.DB
	Cache    *cache.Cache
	Manifest *deps.Manifest
	Tree     *mapping.Tree
	Provider *remap.Provider

	// Dependencies holds the local path of each manifest entry, in order.
	Dependencies []string

	tempDir string
}

// Open loads the manifest, parses and merges every mapping dependency and
// wires the remap provider.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Settings == nil {
		return nil, fmt.Errorf("session: settings are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	s := &Session{
		ID:       uuid.NewString(),
		Root:     opts.Root,
		Settings: opts.Settings,
		Logger:   logger,
	}
	s.tempDir = filepath.Join(paths.TempDir(opts.Root), s.ID)

	ok := false
	defer func() {
		if !ok {
			_ = s.Close()
		}
	}()

	db, err := storage.Open(opts.Root, logger)
	if err != nil {
		return nil, err
	}
	s.DB = db
	s.Cache = cache.New(db, logger)

	manifest, err := deps.LoadManifest(s.resolve(opts.Settings.Manifest()))
	if err != nil {
		return nil, err
	}
	s.Manifest = manifest

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = deps.NewHTTPFetcher(5 * time.Minute)
	}
	resolver := deps.NewResolver(opts.Root, fetcher, storage.NewDependencyRepository(db), logger)

	start := time.Now()
	tree, files, err := LoadTree(ctx, resolver, manifest.Mappings, opts.Settings, logger)
	if err != nil {
		return nil, err
	}
	s.Tree = tree
	s.Dependencies = files
	logger.Debug("Mapping graph ready",
		"namespaces", tree.Namespaces(),
		"dependencies", len(files),
		"duration", time.Since(start).String(),
	)

	rw := opts.Rewriter
	if rw == nil {
		rw = NewRewriter(opts.Settings, s.tempDir, logger)
	}

	mcJar := opts.Settings.MinecraftJar()
	if mcJar == "" {
		mcJar = manifest.Minecraft
	}
	if mcJar != "" {
		mcJar = s.resolve(mcJar)
	}

	cacheDir := opts.Settings.CacheDir()
	if cacheDir != "" {
		cacheDir = s.resolve(cacheDir)
	}

	provider, err := remap.NewProvider(tree, s.Cache, remap.ProviderOptions{
		Rewriter:           rw,
		Dependencies:       manifest.IDs(),
		CacheDir:           cacheDir,
		MinecraftJar:       mcJar,
		MinecraftNamespace: opts.Settings.SourceNamespace(),
		Exclude:            opts.Settings.ClasspathExclude(),
		Locals:             opts.Settings.RemapLocals(),
		SetCacheSize:       opts.Settings.GraphEntries(),
		TempDir:            s.tempDir,
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}
	s.Provider = provider

	ok = true
	return s, nil
}

// NewRewriter returns the rewrite primitive the settings select.
func NewRewriter(settings *config.Settings, tempDir string, logger *slog.Logger) rewrite.Rewriter {
	if settings.Rewriter() == config.RewriterTinyRemapper {
		return &rewrite.TinyRemapper{
			Java:    settings.Java(),
			Jar:     settings.TinyRemapperJar(),
			Threads: settings.Threads(),
			TempDir: tempDir,
			Logger:  logger,
		}
	}
	return rewrite.NewBuiltin(settings.Threads(), logger)
}

func (s *Session) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Root, p)
}

// TempDir is the session's scratch directory, removed by Close.
func (s *Session) TempDir() string {
	return s.tempDir
}

// Close releases the database and removes the session's temp files.
func (s *Session) Close() error {
	var err error
	if s.DB != nil {
		err = s.DB.Close()
		s.DB = nil
	}
	if s.tempDir != "" {
		if rmErr := os.RemoveAll(s.tempDir); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
