package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"mcremap/internal/paths"
)

// Config represents the complete mcremap configuration (v1 schema).
// It is mutable; see Builder for the freeze step that turns it into Settings.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Namespaces NamespacesConfig `json:"namespaces" mapstructure:"namespaces"`
	Remap      RemapConfig      `json:"remap" mapstructure:"remap"`
	Cache      CacheConfig      `json:"cache" mapstructure:"cache"`
	Minecraft  MinecraftConfig  `json:"minecraft" mapstructure:"minecraft"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`

	// Manifest is the mapping dependency manifest (remap.toml), relative to the project root.
	Manifest string `json:"manifest" mapstructure:"manifest"`
}

// NamespacesConfig names the three namespaces legacy formats imply.
type NamespacesConfig struct {
	Source       string `json:"source" mapstructure:"source"`
	Intermediate string `json:"intermediate" mapstructure:"intermediate"`
	Named        string `json:"named" mapstructure:"named"`
}

// RemapConfig controls remap requests.
type RemapConfig struct {
	Dev             string `json:"dev" mapstructure:"dev"`
	DevFallback     string `json:"devFallback" mapstructure:"devFallback"`
	Prod            string `json:"prod" mapstructure:"prod"`
	Side            string `json:"side" mapstructure:"side"`
	Threads         int    `json:"threads" mapstructure:"threads"`
	RemapLocals     bool   `json:"remapLocals" mapstructure:"remapLocals"`
	Rewriter        string `json:"rewriter" mapstructure:"rewriter"`
	TinyRemapperJar string `json:"tinyRemapperJar" mapstructure:"tinyRemapperJar"`
	Java            string `json:"java" mapstructure:"java"`
	// ClasspathExclude holds doublestar globs for classpath entries never passed to hops.
	ClasspathExclude []string `json:"classpathExclude" mapstructure:"classpathExclude"`
}

// CacheConfig contains remap cache configuration.
type CacheConfig struct {
	// Dir overrides where remapped artifacts are stored; empty keeps them beside the input.
	Dir          string `json:"dir" mapstructure:"dir"`
	Refresh      bool   `json:"refresh" mapstructure:"refresh"`
	GraphEntries int    `json:"graphEntries" mapstructure:"graphEntries"`
}

// MinecraftConfig points at the game artifact the mappings describe.
type MinecraftConfig struct {
	Jar string `json:"jar" mapstructure:"jar"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
	File   bool   `json:"file" mapstructure:"file"`
}

// Rewriter implementations.
const (
	RewriterBuiltin      = "builtin"
	RewriterTinyRemapper = "tiny-remapper"
)

// Environment sides.
const (
	SideClient   = "client"
	SideServer   = "server"
	SideCombined = "combined"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Namespaces: NamespacesConfig{
			Source:       "official",
			Intermediate: "searge",
			Named:        "named",
		},
		Remap: RemapConfig{
			Dev:              "named",
			DevFallback:      "searge",
			Prod:             "searge",
			Side:             SideCombined,
			Threads:          runtime.NumCPU(),
			RemapLocals:      true,
			Rewriter:         RewriterBuiltin,
			Java:             "java",
			ClasspathExclude: []string{},
		},
		Cache: CacheConfig{
			GraphEntries: 16,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
			File:   true,
		},
		Manifest: "remap.toml",
	}
}

// LoadConfig loads configuration from <project>/.mcremap/config.json.
// MCREMAP_* environment variables override file values.
func LoadConfig(projectRoot string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("namespaces.source", def.Namespaces.Source)
	v.SetDefault("namespaces.intermediate", def.Namespaces.Intermediate)
	v.SetDefault("namespaces.named", def.Namespaces.Named)
	v.SetDefault("remap.dev", def.Remap.Dev)
	v.SetDefault("remap.devFallback", def.Remap.DevFallback)
	v.SetDefault("remap.prod", def.Remap.Prod)
	v.SetDefault("remap.side", def.Remap.Side)
	v.SetDefault("remap.threads", def.Remap.Threads)
	v.SetDefault("remap.remapLocals", def.Remap.RemapLocals)
	v.SetDefault("remap.rewriter", def.Remap.Rewriter)
	v.SetDefault("remap.tinyRemapperJar", def.Remap.TinyRemapperJar)
	v.SetDefault("remap.java", def.Remap.Java)
	v.SetDefault("remap.classpathExclude", def.Remap.ClasspathExclude)
	v.SetDefault("cache.dir", def.Cache.Dir)
	v.SetDefault("cache.refresh", def.Cache.Refresh)
	v.SetDefault("cache.graphEntries", def.Cache.GraphEntries)
	v.SetDefault("minecraft.jar", def.Minecraft.Jar)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("manifest", def.Manifest)

	v.SetEnvPrefix("MCREMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.ConfigDir(projectRoot))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <project>/.mcremap/config.json
func (c *Config) Save(projectRoot string) error {
	configPath := paths.ConfigPath(projectRoot)
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Namespaces.Source == "" || c.Namespaces.Intermediate == "" || c.Namespaces.Named == "" {
		return &ConfigError{Field: "namespaces", Message: "namespace labels must not be empty"}
	}
	if c.Remap.Dev == "" || c.Remap.Prod == "" {
		return &ConfigError{Field: "remap", Message: "dev and prod namespaces are required"}
	}
	switch c.Remap.Side {
	case SideClient, SideServer, SideCombined:
	default:
		return &ConfigError{Field: "remap.side", Message: "must be client, server or combined"}
	}
	switch c.Remap.Rewriter {
	case RewriterBuiltin:
	case RewriterTinyRemapper:
		if c.Remap.TinyRemapperJar == "" {
			return &ConfigError{Field: "remap.tinyRemapperJar", Message: "required for the tiny-remapper rewriter"}
		}
	default:
		return &ConfigError{Field: "remap.rewriter", Message: "must be builtin or tiny-remapper"}
	}
	if c.Remap.Threads < 0 {
		return &ConfigError{Field: "remap.threads", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
