package config

import (
	"os"
	"path/filepath"
	"testing"

	remaperrors "mcremap/internal/errors"
	"mcremap/internal/paths"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Namespaces.Source != "official" {
		t.Errorf("Namespaces.Source = %q, want official", cfg.Namespaces.Source)
	}
	if cfg.Namespaces.Intermediate != "searge" {
		t.Errorf("Namespaces.Intermediate = %q, want searge", cfg.Namespaces.Intermediate)
	}
	if cfg.Namespaces.Named != "named" {
		t.Errorf("Namespaces.Named = %q, want named", cfg.Namespaces.Named)
	}
	if cfg.Remap.Threads <= 0 {
		t.Error("Threads should default to the processor count")
	}
	if cfg.Remap.Rewriter != RewriterBuiltin {
		t.Errorf("Rewriter = %q, want %q", cfg.Remap.Rewriter, RewriterBuiltin)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	t.Setenv(paths.HomeEnvVar, "")
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Remap.Dev != "named" {
		t.Errorf("Remap.Dev = %q, want named", cfg.Remap.Dev)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	t.Setenv(paths.HomeEnvVar, "")
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Remap.Prod = "intermediary"
	cfg.Remap.DevFallback = "intermediary"
	cfg.Minecraft.Jar = "minecraft.jar"
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, paths.DirName, "config.json")); err != nil {
		t.Fatalf("config.json not written: %v", err)
	}

	t.Setenv("MCREMAP_REMAP_SIDE", "server")

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Remap.Prod != "intermediary" {
		t.Errorf("Remap.Prod = %q, want intermediary", loaded.Remap.Prod)
	}
	if loaded.Minecraft.Jar != "minecraft.jar" {
		t.Errorf("Minecraft.Jar = %q", loaded.Minecraft.Jar)
	}
	if loaded.Remap.Side != "server" {
		t.Errorf("Remap.Side = %q, want env override server", loaded.Remap.Side)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad version", func(c *Config) { c.Version = 9 }, "version"},
		{"empty namespace", func(c *Config) { c.Namespaces.Named = "" }, "namespaces"},
		{"bad side", func(c *Config) { c.Remap.Side = "both" }, "remap.side"},
		{"bad rewriter", func(c *Config) { c.Remap.Rewriter = "asm" }, "remap.rewriter"},
		{"tiny-remapper without jar", func(c *Config) { c.Remap.Rewriter = RewriterTinyRemapper }, "remap.tinyRemapperJar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			ce, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestBuilder_Freeze(t *testing.T) {
	b := NewBuilder(nil)
	b.Update(func(c *Config) {
		c.Remap.Prod = "official"
		c.Remap.Threads = 0
	})

	s, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	if s.ProdNamespace() != "official" {
		t.Errorf("ProdNamespace = %q, want official", s.ProdNamespace())
	}
	if s.Threads() <= 0 {
		t.Error("Threads = 0 should be replaced by the processor count")
	}
	again, _ := b.Freeze()
	if again != s {
		t.Error("second Freeze should return the same settings")
	}
	if b.Settings() != s {
		t.Error("Settings() should return the frozen settings")
	}
}

func TestBuilder_UpdateAfterFreezePanics(t *testing.T) {
	b := NewBuilder(nil)
	if _, err := b.Freeze(); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Update after Freeze should panic")
		}
	}()
	b.Update(func(c *Config) { c.Remap.Dev = "official" })
}

func TestBuilder_SettingsBeforeFreezePanics(t *testing.T) {
	b := NewBuilder(nil)
	defer func() {
		if recover() == nil {
			t.Error("Settings before Freeze should panic")
		}
	}()
	_ = b.Settings()
}

func TestBuilder_FreezeInvalid(t *testing.T) {
	b := NewBuilder(nil)
	b.Update(func(c *Config) { c.Remap.Side = "nether" })
	_, err := b.Freeze()
	if !remaperrors.HasCode(err, remaperrors.ConfigInvalid) {
		t.Fatalf("Freeze() = %v, want CONFIG_INVALID", err)
	}
	if b.Frozen() {
		t.Error("failed Freeze must leave the builder in setup")
	}
	// still mutable
	b.Update(func(c *Config) { c.Remap.Side = SideClient })
	if _, err := b.Freeze(); err != nil {
		t.Fatalf("Freeze after fix failed: %v", err)
	}
}

func TestSettings_ClasspathExcludeIsCopy(t *testing.T) {
	b := NewBuilder(nil)
	b.Update(func(c *Config) { c.Remap.ClasspathExclude = []string{"**/*-sources.jar"} })
	s, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	got := s.ClasspathExclude()
	got[0] = "mutated"
	if s.ClasspathExclude()[0] != "**/*-sources.jar" {
		t.Error("ClasspathExclude must not expose internal state")
	}
}
