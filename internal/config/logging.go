package config

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	// When false, no category log files are written
	DebugMode bool `yaml:"debug_mode"`

	// debug, info, warn, error
	Level string `yaml:"level"`

	// Per-category enable/disable; empty means all categories
	Categories map[string]bool `yaml:"categories"`

	// Emit structured JSON log lines instead of text
	JSONFormat bool `yaml:"json_format"`
}
