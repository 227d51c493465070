package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/stubcheck/internal/config"
)

var (
	dirFlag      string
	logLevelFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stubcheck",
	Short: "Stubcheck - compare PHP stubs with the runtime",
	Long: `Stubcheck reads PHP stub files, reads the functions a PHP runtime
reports through reflection, and lists every place where the two disagree:
functions without a stub, deprecations the stub does not declare and
parameter lists that differ.

Known problems can be muted per function with suppression files.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "C", "", "project directory holding .stubcheck/config.yml (default is the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn or error (overrides log.level)")
}

// loadConfig loads the configuration for the selected project directory and
// applies global flag overrides.
func loadConfig() (*config.Config, error) {
	dir := dirFlag
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	cfg, err := config.LoadConfigFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevelFlag != "" {
		if _, err := config.ParseLevel(logLevelFlag); err != nil {
			return nil, err
		}
		cfg.Log.Level = logLevelFlag
	}
	return cfg, nil
}

// newLogger creates a text logger on w at the given level.
func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
