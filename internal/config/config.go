// Package config loads jsonmend settings from YAML or TOML files, .env files
// and JSONMEND_* environment variables, and turns them into the runtime
// collaborators of the loader: repair options, the completion tier router,
// the cache store and the observability provider.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/jsonmend/core/repair"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Config is the root of the configuration file.
type Config struct {
	Repair    Repair    `yaml:"repair" toml:"repair"`
	Providers Providers `yaml:"providers" toml:"providers"`
	Cache     Cache     `yaml:"cache" toml:"cache"`
	Server    Server    `yaml:"server" toml:"server"`
	Logging   Logging   `yaml:"logging" toml:"logging"`
}

type Repair struct {
	MaxAttempts      int           `yaml:"max_attempts" toml:"max_attempts"`
	EscalateAfter    int           `yaml:"escalate_after" toml:"escalate_after"`
	BackoffBase      time.Duration `yaml:"backoff_base" toml:"backoff_base"`
	BackoffCap       time.Duration `yaml:"backoff_cap" toml:"backoff_cap"`
	CallTimeout      time.Duration `yaml:"call_timeout" toml:"call_timeout"`
	SessionTimeout   time.Duration `yaml:"session_timeout" toml:"session_timeout"`
	LibraryRepair    bool          `yaml:"library_repair" toml:"library_repair"`
	JoinConcatenated bool          `yaml:"join_concatenated" toml:"join_concatenated"`
	DecodeHTML       bool          `yaml:"decode_html" toml:"decode_html"`
}

// Tier selects the backend and model behind one tier.
type Tier struct {
	Provider string `yaml:"provider" toml:"provider"`
	Model    string `yaml:"model" toml:"model"`
}

type Endpoint struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
}

type OllamaEndpoint struct {
	Host string `yaml:"host" toml:"host"`
}

type Providers struct {
	Fast      Tier           `yaml:"fast" toml:"fast"`
	Strong    Tier           `yaml:"strong" toml:"strong"`
	OpenAI    Endpoint       `yaml:"openai" toml:"openai"`
	Anthropic Endpoint       `yaml:"anthropic" toml:"anthropic"`
	Gemini    Endpoint       `yaml:"gemini" toml:"gemini"`
	Ollama    OllamaEndpoint `yaml:"ollama" toml:"ollama"`
}

type Cache struct {
	Backend string        `yaml:"backend" toml:"backend"`
	Path    string        `yaml:"path" toml:"path"`
	URL     string        `yaml:"url" toml:"url"`
	Prefix  string        `yaml:"prefix" toml:"prefix"`
	TTL     time.Duration `yaml:"ttl" toml:"ttl"`
}

type Server struct {
	Addr string `yaml:"addr" toml:"addr"`
}

type Logging struct {
	Backend string `yaml:"backend" toml:"backend"`
	Level   string `yaml:"level" toml:"level"`
	Format  string `yaml:"format" toml:"format"`
}

// Default returns the built-in configuration, identical to default.yaml.
func Default() *Config {
	opts := repair.DefaultOptions()
	return &Config{
		Repair: Repair{
			MaxAttempts:   opts.MaxAttempts,
			EscalateAfter: opts.TierEscalationThreshold,
			BackoffBase:   opts.BackoffBase,
			BackoffCap:    opts.BackoffCap,
			CallTimeout:   opts.CallTimeout,
		},
		Providers: Providers{
			Fast:   Tier{Provider: ProviderOpenAI, Model: "llama-3.1-8b-instant"},
			Strong: Tier{Provider: ProviderOpenAI, Model: "llama-3.3-70b-versatile"},
		},
		Cache: Cache{
			Backend: CacheSQLite,
			URL:     "redis://localhost:6379/0",
			Prefix:  "jsonmend:",
			TTL:     opts.CacheTTL,
		},
		Server:  Server{Addr: ":8080"},
		Logging: Logging{Backend: "slog", Level: "info", Format: "compact"},
	}
}

// ConfigDir returns the XDG config directory for jsonmend.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "jsonmend")
	}
	return filepath.Join(homeDir(), ".config", "jsonmend")
}

// CacheDir returns the XDG cache directory for jsonmend.
func CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "jsonmend")
	}
	return filepath.Join(homeDir(), ".cache", "jsonmend")
}

// DefaultPath is where `jsonmend init` writes the configuration.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > $XDG_CONFIG_HOME/jsonmend/config.yaml > ./jsonmend.yaml.
// It returns "" when no file exists and none was requested.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, candidate := range []string{DefaultPath(), "jsonmend.yaml", "jsonmend.toml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// Load resolves the config file, reads it over the defaults and applies
// environment overrides. With no file, defaults and environment are used.
func Load(explicit string) (*Config, error) {
	path, err := ResolveConfigPath(explicit)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if cfg, err = parse(data, formatOf(path)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads variables from the given .env files (default ".env") without
// overriding the ones already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}
	return nil
}

type fileFormat int

const (
	formatYAML fileFormat = iota
	formatTOML
)

func formatOf(path string) fileFormat {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return formatTOML
	}
	return formatYAML
}

// parse decodes data over the defaults.
func parse(data []byte, format fileFormat) (*Config, error) {
	cfg := Default()
	switch format {
	case formatTOML:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	}
	return cfg, nil
}

// applyEnv overrides fields from JSONMEND_* variables.
func (c *Config) applyEnv() error {
	texts := map[string]*string{
		"JSONMEND_FAST_PROVIDER":   &c.Providers.Fast.Provider,
		"JSONMEND_FAST_MODEL":      &c.Providers.Fast.Model,
		"JSONMEND_STRONG_PROVIDER": &c.Providers.Strong.Provider,
		"JSONMEND_STRONG_MODEL":    &c.Providers.Strong.Model,
		"JSONMEND_CACHE":           &c.Cache.Backend,
		"JSONMEND_CACHE_PATH":      &c.Cache.Path,
		"JSONMEND_REDIS_URL":       &c.Cache.URL,
		"JSONMEND_SERVER_ADDR":     &c.Server.Addr,
		"JSONMEND_LOG_BACKEND":     &c.Logging.Backend,
		"JSONMEND_LOG_LEVEL":       &c.Logging.Level,
		"JSONMEND_LOG_FORMAT":      &c.Logging.Format,
	}
	for key, field := range texts {
		if value, ok := os.LookupEnv(key); ok {
			*field = value
		}
	}

	ints := map[string]*int{
		"JSONMEND_MAX_ATTEMPTS":   &c.Repair.MaxAttempts,
		"JSONMEND_ESCALATE_AFTER": &c.Repair.EscalateAfter,
	}
	for key, field := range ints {
		if value, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*field = n
		}
	}

	durations := map[string]*time.Duration{
		"JSONMEND_CALL_TIMEOUT":    &c.Repair.CallTimeout,
		"JSONMEND_SESSION_TIMEOUT": &c.Repair.SessionTimeout,
		"JSONMEND_CACHE_TTL":       &c.Cache.TTL,
	}
	for key, field := range durations {
		if value, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*field = d
		}
	}
	return nil
}

// RepairOptions maps the repair section onto repair.Options. Zero values are
// filled with defaults by the loader.
func (c *Config) RepairOptions() repair.Options {
	return repair.Options{
		MaxAttempts:             c.Repair.MaxAttempts,
		TierEscalationThreshold: c.Repair.EscalateAfter,
		BackoffBase:             c.Repair.BackoffBase,
		BackoffCap:              c.Repair.BackoffCap,
		CallTimeout:             c.Repair.CallTimeout,
		SessionTimeout:          c.Repair.SessionTimeout,
		Tiers:                   repair.Tiers{Fast: repair.DefaultFastTier, Strong: repair.DefaultStrongTier},
		CacheTTL:                c.Cache.TTL,
		LibraryRepair:           c.Repair.LibraryRepair,
		JoinConcatenated:        c.Repair.JoinConcatenated,
		DecodeHTML:              c.Repair.DecodeHTML,
	}
}

// WriteDefault writes the commented default configuration to path. It
// refuses to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}
	return writeFile(path, DefaultConfigYAML)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
