package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all cropcast configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Data directory (logs, sqlite database)
	DataDir string `yaml:"data_dir"`

	// HTTP server
	Server ServerConfig `yaml:"server"`

	// Yield model artifacts
	Models ModelsConfig `yaml:"models"`

	// Satellite data integration
	GEE GEEConfig `yaml:"gee"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "cropcast",
		Version: "1.2.0",
		DataDir: "data",

		Server: ServerConfig{
			Addr:            ":8099",
			ReadTimeout:     "15s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},

		Models: ModelsConfig{
			Dir:             "models",
			HotReload:       true,
			ReloadDebounce:  "2s",
			ConfidenceLevel: 0.90,
			FallbackRelBand: 0.25,
		},

		GEE: GEEConfig{
			Enabled:  true,
			BaseURL:  "http://localhost:8090",
			Timeout:  "20s",
			CacheTTL: "6h",
			Cooldown: "60s",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file is absent.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("CROPCAST_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if dir := os.Getenv("CROPCAST_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if dir := os.Getenv("CROPCAST_MODEL_DIR"); dir != "" {
		c.Models.Dir = dir
	}
	if url := os.Getenv("GEE_BASE_URL"); url != "" {
		c.GEE.BaseURL = url
	}
	if key := os.Getenv("GEE_API_KEY"); key != "" {
		c.GEE.APIKey = key
	}
	if lvl := os.Getenv("CROPCAST_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// DatabasePath returns the sqlite database location under the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "cropcast.db")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Models.Dir == "" {
		return fmt.Errorf("models.dir is required")
	}
	if c.Models.ConfidenceLevel <= 0 || c.Models.ConfidenceLevel >= 1 {
		return fmt.Errorf("models.confidence_level must be in (0, 1), got %v", c.Models.ConfidenceLevel)
	}
	if c.GEE.Enabled && c.GEE.BaseURL == "" {
		return fmt.Errorf("gee.base_url is required when gee.enabled is true")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}
	return nil
}
