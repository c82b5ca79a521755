package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// configDir is the configuration directory path
	// Can be set via SetConfigDir before loading config
	configDir     string
	configDirInit bool
)

// SetConfigDir sets a custom configuration directory
// Must be called before any config loading functions
func SetConfigDir(dir string) {
	configDir = dir
	configDirInit = true
}

// GetConfigDir returns the configuration directory
// Priority: 1. Manually set via SetConfigDir, 2. ./config in current directory
func GetConfigDir() string {
	if !configDirInit {
		cwd, err := os.Getwd()
		if err == nil {
			configDir = filepath.Join(cwd, "config")
		}
		configDirInit = true
	}
	return configDir
}

// Config application configuration structure
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Engines EnginesConfig `yaml:"engines"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
	Tracing TracingConfig `yaml:"tracing"`
}

// SearchConfig defaults applied to every search request
type SearchConfig struct {
	Engine          string   `yaml:"engine"`
	MaxResults      int      `yaml:"max_results"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
	CaseSensitive   bool     `yaml:"case_sensitive"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// Timeout returns the configured search budget as a duration
func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EnginesConfig external engine settings
type EnginesConfig struct {
	Ripgrep       EngineConfig `yaml:"ripgrep"`
	Grep          EngineConfig `yaml:"grep"`
	KillOnTimeout bool         `yaml:"kill_on_timeout"`
}

// EngineConfig per-engine settings
type EngineConfig struct {
	Path string `yaml:"path"` // Executable override, empty means resolve via PATH
}

// HistoryConfig search history storage configuration
type HistoryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	DBPath    string `yaml:"db_path"`
	ListLimit int    `yaml:"list_limit"`
}

// LogConfig logging configuration
type LogConfig struct {
	Level   string `yaml:"level"`
	MaxDays int    `yaml:"max_days"`
	Console bool   `yaml:"console"`
}

// TracingConfig OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" | "noop"
}

var knownEngines = []string{"ripgrep", "grep"}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Search: SearchConfig{
			Engine:          "ripgrep",
			MaxResults:      100,
			TimeoutSeconds:  60,
			CaseSensitive:   true,
			ExcludePatterns: []string{},
		},
		Engines: EnginesConfig{
			KillOnTimeout: false,
		},
		History: HistoryConfig{
			Enabled:   true,
			DBPath:    filepath.Join(homeDir, ".searchmate", "history.db"),
			ListLimit: 20,
		},
		Log: LogConfig{
			Level:   "info",
			MaxDays: 7,
			Console: false,
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
	}
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	dir := GetConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return dir, nil
}

// LogDir returns the log directory path
func LogDir() string {
	dir := GetConfigDir()
	if dir == "" {
		return "logs"
	}
	return filepath.Join(dir, "logs")
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from file, creating a default one on first run
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig() // Use default values as base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	content := "# SearchMate Configuration File\n# For more info: https://github.com/hession/searchmate\n\n" + string(data)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	engine := strings.ToLower(strings.TrimSpace(c.Search.Engine))
	if engine == "" {
		return fmt.Errorf("config error: search.engine cannot be empty")
	}
	known := false
	for _, name := range knownEngines {
		if engine == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("config error: search.engine must be one of %s", strings.Join(knownEngines, ", "))
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("config error: search.max_results must be greater than 0")
	}
	if c.Search.TimeoutSeconds <= 0 {
		return fmt.Errorf("config error: search.timeout_seconds must be greater than 0")
	}
	for _, p := range c.Search.ExcludePatterns {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("config error: search.exclude_patterns cannot contain empty entries")
		}
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("config error: history.db_path cannot be empty when history is enabled")
	}
	if c.History.ListLimit <= 0 {
		return fmt.Errorf("config error: history.list_limit must be greater than 0")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: log.level must be one of debug, info, warn, error")
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout", "noop", "":
		default:
			return fmt.Errorf("config error: tracing.exporter must be stdout or noop")
		}
	}

	return nil
}

// EnginePath returns the executable override for an engine, if any
func (c *Config) EnginePath(engine string) string {
	switch engine {
	case "ripgrep":
		return c.Engines.Ripgrep.Path
	case "grep":
		return c.Engines.Grep.Path
	default:
		return ""
	}
}

// String returns string representation of config
func (c *Config) String() string {
	excludes := "(none)"
	if len(c.Search.ExcludePatterns) > 0 {
		excludes = strings.Join(c.Search.ExcludePatterns, ", ")
	}

	return fmt.Sprintf(`SearchMate Configuration:
  Search:
    Engine: %s
    Max Results: %d
    Timeout Seconds: %d
    Case Sensitive: %v
    Exclude Patterns: %s
  Engines:
    ripgrep: %s
    grep: %s
    Kill On Timeout: %v
  History:
    Enabled: %v
    DB Path: %s
    List Limit: %d
  Log:
    Level: %s
    Max Days: %d
    Console: %v
  Tracing:
    Enabled: %v
    Exporter: %s`,
		c.Search.Engine,
		c.Search.MaxResults,
		c.Search.TimeoutSeconds,
		c.Search.CaseSensitive,
		excludes,
		displayPath(c.Engines.Ripgrep.Path, "rg"),
		displayPath(c.Engines.Grep.Path, "grep"),
		c.Engines.KillOnTimeout,
		c.History.Enabled,
		c.History.DBPath,
		c.History.ListLimit,
		c.Log.Level,
		c.Log.MaxDays,
		c.Log.Console,
		c.Tracing.Enabled,
		c.Tracing.Exporter,
	)
}

func displayPath(path, fallback string) string {
	if path == "" {
		return fallback + " (from PATH)"
	}
	return path
}
