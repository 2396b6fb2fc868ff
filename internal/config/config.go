// Package config loads circuitdraw settings from an optional TOML file and
// the environment.
//
// Settings are resolved in order, later sources winning:
//
//  1. Built-in defaults ([Default])
//  2. $XDG_CONFIG_HOME/circuitdraw/config.toml, or the file given by --config
//  3. Environment variables (GEMINI_API_KEY, CIRCUITDRAW_REDIS_URL, ...)
//
// A minimal file looks like:
//
//	[llm]
//	model = "gemini-2.5-flash"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8000"
//	public_url = "http://localhost:8000"
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/circuitdraw/pkg/errors"
	"github.com/matzehuels/circuitdraw/pkg/llm"
	"github.com/matzehuels/circuitdraw/pkg/pipeline"
	"github.com/matzehuels/circuitdraw/pkg/storage"
)

const (
	appName  = "circuitdraw"
	fileName = "config.toml"
)

// Backend names for the cache and history sections.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Environment variables that override file settings.
const (
	EnvAPIKey     = "GEMINI_API_KEY"
	EnvRedisURL   = "CIRCUITDRAW_REDIS_URL"
	EnvMongoURI   = "CIRCUITDRAW_MONGO_URI"
	EnvPublicURL  = "CIRCUITDRAW_PUBLIC_URL"
	EnvSigningKey = "CIRCUITDRAW_SIGNING_KEY"
)

// Duration is a time.Duration that decodes from strings such as "90s".
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
	return []byte(d.Duration.String()), nil
}

// Config is the complete set of settings.
type Config struct {
	LLM     LLMConfig     `toml:"llm"`
	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
	Render  RenderConfig  `toml:"render"`
	Server  ServerConfig  `toml:"server"`
}

// LLMConfig configures the text-generation client.
type LLMConfig struct {
	APIKey   string   `toml:"api_key"`
	Model    string   `toml:"model"`
	BaseURL  string   `toml:"base_url"`
	Timeout  Duration `toml:"timeout"`
	Attempts int      `toml:"attempts"`
}

// CacheConfig selects the pipeline cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"` // file, redis or none
	Dir      string `toml:"dir"`     // file backend; XDG cache dir when empty
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"` // key namespace for shared Redis databases
}

// HistoryConfig selects where generation records are kept.
type HistoryConfig struct {
	Backend    string `toml:"backend"` // file, mongo or none
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// RenderConfig holds image defaults.
type RenderConfig struct {
	Format    string  `toml:"format"`
	UnitScale float64 `toml:"unit_scale"`
	OutputDir string  `toml:"output_dir"`
}

// ServerConfig configures the HTTP service and its published links.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	PublicURL  string   `toml:"public_url"`
	PublicDir  string   `toml:"public_dir"`
	SigningKey string   `toml:"signing_key"`
	LinkTTL    Duration `toml:"link_ttl"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:    llm.DefaultModel,
			BaseURL:  llm.DefaultBaseURL,
			Timeout:  Duration{llm.DefaultTimeout},
			Attempts: llm.DefaultAttempts,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
		},
		History: HistoryConfig{
			Backend:    BackendFile,
			Database:   appName,
			Collection: "history",
		},
		Render: RenderConfig{
			Format:    pipeline.DefaultFormat,
			UnitScale: pipeline.DefaultUnitScale,
			OutputDir: pipeline.DefaultOutputDir,
		},
		Server: ServerConfig{
			Addr:      ":8000",
			PublicURL: "http://localhost:8000",
			PublicDir: filepath.Join(pipeline.DefaultOutputDir, "public"),
			LinkTTL:   Duration{storage.DefaultLinkTTL},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/circuitdraw/config.toml, falling
// back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads settings from path and the process environment.
// An empty path means [DefaultPath], which may be absent; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			if explicit || !stderrors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides settings with the non-empty variables returned by
// getenv. Setting a Redis URL or Mongo URI also selects that backend.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = BackendRedis
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.History.MongoURI = v
		c.History.Backend = BackendMongo
	}
	if v := getenv(EnvPublicURL); v != "" {
		c.Server.PublicURL = v
	}
	if v := getenv(EnvSigningKey); v != "" {
		c.Server.SigningKey = v
	}
}

// Validate checks backend names and the values that downstream
// constructors would otherwise reject late.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	switch c.History.Backend {
	case BackendFile, BackendNone:
	case BackendMongo:
		if c.History.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "history backend mongo requires mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown history backend %q", c.History.Backend)
	}

	if err := pipeline.ValidateFormat(c.Render.Format); err != nil {
		return err
	}
	if c.Render.UnitScale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unit_scale must be positive")
	}
	if c.Server.PublicURL != "" {
		if err := errors.ValidateURL(c.Server.PublicURL); err != nil {
			return fmt.Errorf("server.public_url: %w", err)
		}
	}
	return nil
}

// LLMClientConfig converts the llm section into client settings.
func (c *Config) LLMClientConfig() llm.Config {
	return llm.Config{
		APIKey:   c.LLM.APIKey,
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
		Timeout:  c.LLM.Timeout.Duration,
		Attempts: c.LLM.Attempts,
	}
}

// LocalOptions converts the server section into publisher settings.
func (c *Config) LocalOptions() storage.LocalOptions {
	return storage.LocalOptions{
		Dir:        c.Server.PublicDir,
		BaseURL:    c.Server.PublicURL,
		SigningKey: []byte(c.Server.SigningKey),
		TTL:        c.Server.LinkTTL.Duration,
	}
}
