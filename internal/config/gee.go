package config

import "time"

// GEEConfig configures the Earth Engine style satellite data integration.
type GEEConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
	CacheTTL string `yaml:"cache_ttl"`

	// How long to skip network fetches after repeated failures
	Cooldown string `yaml:"cooldown"`
}

// GetGEETimeout returns the satellite fetch timeout as a duration.
func (c *Config) GetGEETimeout() time.Duration {
	d, err := time.ParseDuration(c.GEE.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// GetGEECacheTTL returns the satellite cache TTL as a duration.
func (c *Config) GetGEECacheTTL() time.Duration {
	d, err := time.ParseDuration(c.GEE.CacheTTL)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// GetGEECooldown returns the failure cooldown as a duration.
func (c *Config) GetGEECooldown() time.Duration {
	d, err := time.ParseDuration(c.GEE.Cooldown)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
