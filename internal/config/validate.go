package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyStubRoot indicates a missing stub directory
	ErrEmptyStubRoot = errors.New("empty stub root")

	// ErrEmptyInclude indicates no include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrNoReflectionSource indicates neither a dump nor a PHP binary is set
	ErrNoReflectionSource = errors.New("no reflection source")

	// ErrInvalidSuppressFile indicates a suppression file with an unknown extension
	ErrInvalidSuppressFile = errors.New("invalid suppression file")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateStubs(&cfg.Stubs); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(cfg.Reflection.Dump) == "" && strings.TrimSpace(cfg.Reflection.PHPBinary) == "" {
		errs = append(errs, fmt.Errorf("%w: set reflection.dump or reflection.php_binary", ErrNoReflectionSource))
	}

	for _, f := range cfg.Suppress.Files {
		switch strings.ToLower(filepath.Ext(f)) {
		case ".json", ".yml", ".yaml", ".toml":
		default:
			errs = append(errs, fmt.Errorf("%w: %s must be .json, .yaml or .toml", ErrInvalidSuppressFile, f))
		}
	}

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateStubs(cfg *StubsConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Root) == "" {
		errs = append(errs, fmt.Errorf("%w: stubs.root is required", ErrEmptyStubRoot))
	}

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one stubs.include pattern required", ErrEmptyInclude))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	return joinErrors(errs)
}

// ParseLevel maps a configured level name to a slog level. Empty means warn.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("%w: must be debug, info, warn or error, got '%s'", ErrInvalidLogLevel, level)
	}
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
