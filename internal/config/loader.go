package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (STUBCHECK_*)
// 2. Config file (.stubcheck/config.yml or .stubcheck/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, ".stubcheck"))

	// STUBCHECK_REFLECTION_PHP_BINARY -> reflection.php_binary
	v.SetEnvPrefix("STUBCHECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("stubs.root")
	v.BindEnv("reflection.dump")
	v.BindEnv("reflection.php_binary")
	v.BindEnv("storage.database")
	v.BindEnv("log.level")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	l.resolvePaths(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// resolvePaths makes relative file settings relative to the root directory.
func (l *loader) resolvePaths(cfg *Config) {
	abs := func(p string) string {
		if p == "" || p == ":memory:" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(l.rootDir, p)
	}

	cfg.Stubs.Root = abs(cfg.Stubs.Root)
	cfg.Reflection.Dump = abs(cfg.Reflection.Dump)
	cfg.Storage.Database = abs(cfg.Storage.Database)
	for i, f := range cfg.Suppress.Files {
		cfg.Suppress.Files[i] = abs(f)
	}
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("stubs.root", defaults.Stubs.Root)
	v.SetDefault("stubs.include", defaults.Stubs.Include)
	v.SetDefault("stubs.ignore", defaults.Stubs.Ignore)

	v.SetDefault("reflection.dump", defaults.Reflection.Dump)
	v.SetDefault("reflection.php_binary", defaults.Reflection.PHPBinary)

	v.SetDefault("suppress.files", defaults.Suppress.Files)

	v.SetDefault("storage.database", defaults.Storage.Database)

	v.SetDefault("log.level", defaults.Log.Level)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
