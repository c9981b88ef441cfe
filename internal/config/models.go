package config

import "time"

// ModelsConfig configures yield model artifact loading.
type ModelsConfig struct {
	// Directory scanned for *.model.json artifacts
	Dir string `yaml:"dir"`

	// Watch the artifact directory and reload on change
	HotReload bool `yaml:"hot_reload"`

	// Debounce window for filesystem events before a reload
	ReloadDebounce string `yaml:"reload_debounce"`

	// Confidence level reported with prediction intervals (e.g. 0.90)
	ConfidenceLevel float64 `yaml:"confidence_level"`

	// Relative interval half-width used by baseline fallback models
	FallbackRelBand float64 `yaml:"fallback_rel_band"`
}

// GetReloadDebounce returns the hot-reload debounce window as a duration.
func (c *Config) GetReloadDebounce() time.Duration {
	d, err := time.ParseDuration(c.Models.ReloadDebounce)
	if err != nil {
		return 2 * time.Second
	}
	return d
}
