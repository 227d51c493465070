package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads .stubcheck/config.yml and .stubcheck/config.yaml
// - Load() merges config file with defaults
// - Environment variables override config file values and defaults
// - Relative paths resolve against the root directory
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects each invalid field and aggregates multiple errors
// - ParseLevel() maps names to slog levels

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".stubcheck")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "stubs", cfg.Stubs.Root)
	assert.Equal(t, []string{"**/*.php"}, cfg.Stubs.Include)
	assert.Contains(t, cfg.Stubs.Ignore, "tests/**")
	assert.Equal(t, "php", cfg.Reflection.PHPBinary)
	assert.Empty(t, cfg.Reflection.Dump)
	assert.Empty(t, cfg.Suppress.Files)
	assert.Empty(t, cfg.Storage.Database)
	assert.Equal(t, "warn", cfg.Log.Level)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tempDir, "stubs"), cfg.Stubs.Root)
	assert.Equal(t, Default().Stubs.Include, cfg.Stubs.Include)
	assert.Equal(t, "php", cfg.Reflection.PHPBinary)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"config.yml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tempDir := t.TempDir()
			writeConfig(t, tempDir, name, `
stubs:
  root: php-src
  include:
    - "ext/**/*.stub.php"
reflection:
  dump: reflection.json
suppress:
  files:
    - muted.json
    - /etc/stubcheck/muted.yaml
storage:
  database: .stubcheck/reports.db
log:
  level: debug
`)

			cfg, err := NewLoader(tempDir).Load()
			require.NoError(t, err)

			assert.Equal(t, filepath.Join(tempDir, "php-src"), cfg.Stubs.Root)
			assert.Equal(t, []string{"ext/**/*.stub.php"}, cfg.Stubs.Include)
			// Not in file, default kept
			assert.Equal(t, Default().Stubs.Ignore, cfg.Stubs.Ignore)
			assert.Equal(t, filepath.Join(tempDir, "reflection.json"), cfg.Reflection.Dump)
			assert.Equal(t, "php", cfg.Reflection.PHPBinary)
			assert.Equal(t, []string{filepath.Join(tempDir, "muted.json"), "/etc/stubcheck/muted.yaml"}, cfg.Suppress.Files)
			assert.Equal(t, filepath.Join(tempDir, ".stubcheck", "reports.db"), cfg.Storage.Database)
			assert.Equal(t, "debug", cfg.Log.Level)
		})
	}
}

func TestLoad_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
reflection:
  php_binary: /usr/bin/php8.2
log:
  level: info
`)

	t.Setenv("STUBCHECK_REFLECTION_PHP_BINARY", "/opt/php/bin/php")
	t.Setenv("STUBCHECK_STORAGE_DATABASE", ":memory:")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/php/bin/php", cfg.Reflection.PHPBinary)
	assert.Equal(t, ":memory:", cfg.Storage.Database)
	// Not overridden, should come from config file
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()

	tempDir := t.TempDir()
	t.Setenv("STUBCHECK_LOG_LEVEL", "error")
	t.Setenv("STUBCHECK_STUBS_ROOT", "/srv/stubs")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/srv/stubs", cfg.Stubs.Root)
}

func TestLoad_ReturnsErrorForMalformedYAML(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "stubs:\n  root: [unclosed\n")

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "log:\n  level: verbose\n")

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLogLevel))
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty root",
			mutate:  func(c *Config) { c.Stubs.Root = " " },
			wantErr: ErrEmptyStubRoot,
		},
		{
			name:    "no include patterns",
			mutate:  func(c *Config) { c.Stubs.Include = nil },
			wantErr: ErrEmptyInclude,
		},
		{
			name:    "bad ignore pattern",
			mutate:  func(c *Config) { c.Stubs.Ignore = []string{"[abc"} },
			wantErr: ErrInvalidPattern,
		},
		{
			name: "no reflection source",
			mutate: func(c *Config) {
				c.Reflection.Dump = ""
				c.Reflection.PHPBinary = ""
			},
			wantErr: ErrNoReflectionSource,
		},
		{
			name:    "suppression file extension",
			mutate:  func(c *Config) { c.Suppress.Files = []string{"muted.txt"} },
			wantErr: ErrInvalidSuppressFile,
		},
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Stubs.Root = ""
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed:")
	assert.Contains(t, err.Error(), "stubs.root is required")
	assert.Contains(t, err.Error(), "'loud'")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("chatty")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
