package config

// Config represents the complete stubcheck configuration.
// It can be loaded from .stubcheck/config.yml with environment variable overrides.
type Config struct {
	Stubs      StubsConfig      `yaml:"stubs" mapstructure:"stubs"`
	Reflection ReflectionConfig `yaml:"reflection" mapstructure:"reflection"`
	Suppress   SuppressConfig   `yaml:"suppress" mapstructure:"suppress"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StubsConfig defines where stub files live and which of them to read.
type StubsConfig struct {
	Root    string   `yaml:"root" mapstructure:"root"`       // directory holding the stubs
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns relative to root
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// ReflectionConfig selects the runtime data source.
// A non-empty Dump wins over running PHPBinary.
type ReflectionConfig struct {
	Dump      string `yaml:"dump" mapstructure:"dump"`             // path to a JSON reflection dump
	PHPBinary string `yaml:"php_binary" mapstructure:"php_binary"` // interpreter used when no dump is given
}

// SuppressConfig lists muted-problem documents, applied in order.
type SuppressConfig struct {
	Files []string `yaml:"files" mapstructure:"files"`
}

// StorageConfig configures the report database. Empty Database disables it.
type StorageConfig struct {
	Database string `yaml:"database" mapstructure:"database"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn or error
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Stubs: StubsConfig{
			Root:    "stubs",
			Include: []string{"**/*.php"},
			Ignore: []string{
				"tests/**",
				".git/**",
				"vendor/**",
			},
		},
		Reflection: ReflectionConfig{
			PHPBinary: "php",
		},
		Suppress: SuppressConfig{
			Files: []string{},
		},
		Storage: StorageConfig{
			Database: "",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
