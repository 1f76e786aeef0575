package config

import (
	"fmt"
	"runtime"
	"sync"

	remaperrors "mcremap/internal/errors"
)

// Builder holds a Config during setup. Update may be called any number of
// times until Freeze; after that Update panics, and Settings may be read.
type Builder struct {
	mu       sync.Mutex
	cfg      Config
	settings *Settings
}

// NewBuilder starts the setup phase from cfg (DefaultConfig when nil).
func NewBuilder(cfg *Config) *Builder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	b := &Builder{cfg: *cfg}
	b.cfg.Remap.ClasspathExclude = append([]string(nil), cfg.Remap.ClasspathExclude...)
	return b
}

// Update applies fn to the configuration under construction.
func (b *Builder) Update(fn func(*Config)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settings != nil {
		panic("config: Update called after Freeze")
	}
	fn(&b.cfg)
}

// Freeze validates the configuration and ends the setup phase.
// Calling Freeze again returns the same Settings.
func (b *Builder) Freeze() (*Settings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settings != nil {
		return b.settings, nil
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, remaperrors.New(remaperrors.ConfigInvalid, "invalid configuration", err)
	}
	frozen := b.cfg
	frozen.Remap.ClasspathExclude = append([]string(nil), b.cfg.Remap.ClasspathExclude...)
	if frozen.Remap.Threads == 0 {
		frozen.Remap.Threads = runtime.NumCPU()
	}
	b.settings = &Settings{cfg: frozen}
	return b.settings, nil
}

// Frozen reports whether Freeze has succeeded.
func (b *Builder) Frozen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings != nil
}

// Settings returns the frozen settings. It panics before Freeze.
func (b *Builder) Settings() *Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settings == nil {
		panic("config: Settings read before Freeze")
	}
	return b.settings
}

// Settings is the immutable configuration used throughout remapping.
type Settings struct {
	cfg Config
}

func (s *Settings) SourceNamespace() string       { return s.cfg.Namespaces.Source }
func (s *Settings) IntermediateNamespace() string { return s.cfg.Namespaces.Intermediate }
func (s *Settings) NamedNamespace() string        { return s.cfg.Namespaces.Named }

func (s *Settings) DevNamespace() string         { return s.cfg.Remap.Dev }
func (s *Settings) DevFallbackNamespace() string { return s.cfg.Remap.DevFallback }
func (s *Settings) ProdNamespace() string        { return s.cfg.Remap.Prod }
func (s *Settings) Side() string                 { return s.cfg.Remap.Side }
func (s *Settings) Threads() int                 { return s.cfg.Remap.Threads }
func (s *Settings) RemapLocals() bool            { return s.cfg.Remap.RemapLocals }
func (s *Settings) Rewriter() string             { return s.cfg.Remap.Rewriter }
func (s *Settings) TinyRemapperJar() string      { return s.cfg.Remap.TinyRemapperJar }
func (s *Settings) Java() string                 { return s.cfg.Remap.Java }

// ClasspathExclude returns a copy of the classpath exclusion globs.
func (s *Settings) ClasspathExclude() []string {
	return append([]string(nil), s.cfg.Remap.ClasspathExclude...)
}

func (s *Settings) CacheDir() string     { return s.cfg.Cache.Dir }
func (s *Settings) Refresh() bool        { return s.cfg.Cache.Refresh }
func (s *Settings) GraphEntries() int    { return s.cfg.Cache.GraphEntries }
func (s *Settings) MinecraftJar() string { return s.cfg.Minecraft.Jar }
func (s *Settings) LogLevel() string     { return s.cfg.Logging.Level }
func (s *Settings) LogFormat() string    { return s.cfg.Logging.Format }
func (s *Settings) LogToFile() bool      { return s.cfg.Logging.File }
func (s *Settings) Manifest() string     { return s.cfg.Manifest }

// Snapshot returns a copy of the frozen configuration, for display.
func (s *Settings) Snapshot() Config {
	c := s.cfg
	c.Remap.ClasspathExclude = s.ClasspathExclude()
	return c
}

func (s *Settings) String() string {
	return fmt.Sprintf("dev=%s/%s prod=%s side=%s rewriter=%s",
		s.DevNamespace(), s.DevFallbackNamespace(), s.ProdNamespace(), s.Side(), s.Rewriter())
}
