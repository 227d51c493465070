package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/stubcheck/internal/checker"
	"github.com/mvp-joe/stubcheck/internal/config"
	"github.com/mvp-joe/stubcheck/internal/git"
	"github.com/mvp-joe/stubcheck/internal/storage"
	"github.com/mvp-joe/stubcheck/internal/watcher"
)

// ErrCheckFailed is returned when a check finds unmuted problems or errors.
var ErrCheckFailed = errors.New("check failed")

var (
	checkQuiet     bool
	checkJSON      bool
	checkShowMuted bool
	checkDump      string
	checkPHP       string
	checkDatabase  string
	checkWatch     bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare stubs with the PHP runtime",
	Long: `Check parses every stub file, loads runtime reflection data and
reports the differences.

Runtime data comes from a JSON dump (reflection.dump or --dump) or, when no
dump is given, from running the configured PHP binary.

Examples:
  # Check against the php on PATH
  stubcheck check

  # Check against a saved dump and keep the result
  stubcheck check --dump reflection.json --db .stubcheck/reports.db

  # Machine readable output
  stubcheck check --json

  # Re-run whenever a stub or suppression file changes
  stubcheck check --watch
`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Disable progress output")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")
	checkCmd.Flags().BoolVar(&checkShowMuted, "show-muted", false, "Also list muted problems")
	checkCmd.Flags().StringVar(&checkDump, "dump", "", "Reflection dump to read (overrides reflection.dump)")
	checkCmd.Flags().StringVar(&checkPHP, "php", "", "PHP binary to run (overrides reflection.php_binary)")
	checkCmd.Flags().StringVar(&checkDatabase, "db", "", "Save the report to this database (overrides storage.database)")
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "Watch stubs and suppression files and check again on change")
}

// checkOptions are the per-invocation settings of a check.
type checkOptions struct {
	json      bool
	showMuted bool
	progress  checker.ProgressReporter
	logger    *slog.Logger
	source    checker.DumpSource
	git       git.Operations
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if checkDump != "" {
		cfg.Reflection.Dump = checkDump
	}
	if checkPHP != "" {
		cfg.Reflection.PHPBinary = checkPHP
		if checkDump == "" {
			cfg.Reflection.Dump = ""
		}
	}
	if checkDatabase != "" {
		cfg.Storage.Database = checkDatabase
	}

	opts := checkOptions{
		json:      checkJSON,
		showMuted: checkShowMuted,
		progress:  checker.NoOpProgressReporter{},
		logger:    newLogger(cmd.ErrOrStderr(), cfg.Log.Level),
	}
	if !checkQuiet && !checkJSON {
		opts.progress = NewCLIProgressReporter(cmd.ErrOrStderr())
	}

	if !checkWatch {
		return executeCheck(ctx, cmd.OutOrStdout(), cfg, opts)
	}
	return watchCheck(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts)
}

// watchCheck runs a check, then runs it again after every change to its
// inputs until ctx is cancelled. Failed checks do not stop the loop.
func watchCheck(ctx context.Context, out, errOut io.Writer, cfg *config.Config, opts checkOptions) error {
	run := func() {
		if err := executeCheck(ctx, out, cfg, opts); err != nil && !errors.Is(err, ErrCheckFailed) {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
	run()

	inputs := append([]string{}, cfg.Suppress.Files...)
	if cfg.Reflection.Dump != "" {
		inputs = append(inputs, cfg.Reflection.Dump)
	}
	w, err := watcher.New([]string{cfg.Stubs.Root}, inputs, []string{".php"}, watcher.WithLogger(opts.logger))
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintln(errOut, "Watching for changes (Ctrl+C to stop)...")
	err = w.Run(ctx, func(changed []string) {
		fmt.Fprintf(errOut, "\n%d files changed, checking again\n", len(changed))
		run()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// executeCheck runs the check, prints the report, saves it when a database is
// configured and returns ErrCheckFailed when the result is not clean.
func executeCheck(ctx context.Context, out io.Writer, cfg *config.Config, opts checkOptions) error {
	checkerOpts := []checker.Option{
		checker.WithProgress(opts.progress),
		checker.WithLogger(opts.logger),
	}
	if opts.source != nil {
		checkerOpts = append(checkerOpts, checker.WithDumpSource(opts.source))
	}

	result, err := checker.New(cfg, checkerOpts...).Run(ctx)
	if err != nil {
		return err
	}

	runID := ""
	if cfg.Storage.Database != "" {
		if runID, err = saveResult(ctx, cfg, result, opts.git); err != nil {
			return err
		}
		opts.logger.Info("saved report", "run_id", runID, "database", cfg.Storage.Database)
	}

	if opts.json {
		if err := writeJSONReport(out, result, runID); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		writeTextReport(out, result, opts.showMuted)
		if runID != "" {
			fmt.Fprintf(out, "Saved as run %s\n", runID)
		}
	}

	if !result.OK() {
		return fmt.Errorf("%w: %d problems, %d errors", ErrCheckFailed,
			len(result.Report.Problems), len(result.Report.Failures)+len(result.FileErrors))
	}
	return nil
}

func saveResult(ctx context.Context, cfg *config.Config, result *checker.Result, ops git.Operations) (string, error) {
	if ops == nil {
		ops = git.NewOperations()
	}
	revision, branch := git.Revision(ops, cfg.Stubs.Root)

	store, err := storage.Open(cfg.Storage.Database)
	if err != nil {
		return "", err
	}
	defer store.Close()

	return store.SaveReport(ctx, result.Report, storage.RunMeta{
		StartedAt:    result.StartedAt,
		PHPVersion:   result.PHPVersion,
		StubRoot:     cfg.Stubs.Root,
		StubRevision: revision,
		StubBranch:   branch,
	})
}
