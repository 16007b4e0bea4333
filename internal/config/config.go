// Package config loads the lanegraph TOML configuration file.
//
//	[validate]
//	strict = false
//	[validate.rules]
//	weight_symmetry = true
//
//	[cache]
//	backend = "file"        # file | redis | none
//	dir = "~/.cache/lanegraph"
//	redis_addr = "localhost:6379"
//	ttl = "168h"
//	prefix = "lanegraph:"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lanegraph/pkg/errors"
	"github.com/matzehuels/lanegraph/pkg/graph"
)

// AppName names the config and cache directories.
const AppName = "lanegraph"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the whole configuration file.
type Config struct {
	Validate ValidateConfig `toml:"validate"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// ValidateConfig holds validation defaults.
type ValidateConfig struct {
	Strict bool            `toml:"strict"`
	Rules  map[string]bool `toml:"rules"`
}

// CacheConfig selects and configures the report cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
	Prefix        string   `toml:"prefix"`
}

// ServerConfig configures `lanegraph serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a string ("90s", "168h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Validate: ValidateConfig{Rules: map[string]bool{}},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{7 * 24 * time.Hour},
			Prefix:  AppName + ":",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			MaxBodyBytes: 4 << 20,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lanegraph/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/lanegraph, falling back to ~/.cache.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the config at path over [Default]. An empty path means
// [DefaultPath], and a missing default file is not an error; a missing
// explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, cfg.resolve()
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, cfg.resolve()
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a config from TOML text over [Default].
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config")
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve fills derived defaults and checks values.
func (c *Config) resolve() error {
	if c.Cache.Dir == "" {
		if dir, err := DefaultCacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	} else if strings.HasPrefix(c.Cache.Dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.Cache.Dir = filepath.Join(home, c.Cache.Dir[2:])
		}
	}
	return c.Check()
}

// Check reports the first invalid value.
func (c *Config) Check() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"cache.backend %q: want %s, %s or %s", c.Cache.Backend, BackendFile, BackendRedis, BackendNone)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	for _, name := range c.RuleNames() {
		if _, err := graph.ParseRule(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate.rules")
		}
	}
	return nil
}

// RuleNames returns the configured rule names, sorted.
func (c *Config) RuleNames() []string {
	names := make([]string, 0, len(c.Validate.Rules))
	for name := range c.Validate.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders the effective config as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
