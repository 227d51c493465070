package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/stubcheck/internal/storage"
)

// ErrNoDatabase is returned when the runs command has no database to read.
var ErrNoDatabase = errors.New("no report database configured")

var runsDatabase string

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List saved check runs",
	Long: `Runs lists the reports saved by "stubcheck check", newest first.
With a run ID it prints the problems of that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := cfg.Storage.Database
		if runsDatabase != "" {
			path = runsDatabase
		}
		if path == "" {
			return fmt.Errorf("%w: set storage.database or pass --db", ErrNoDatabase)
		}

		store, err := storage.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		if len(args) == 1 {
			return writeRunProblems(ctx, cmd.OutOrStdout(), store, args[0])
		}
		return writeRuns(ctx, cmd.OutOrStdout(), store)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsDatabase, "db", "", "Database to read (overrides storage.database)")
}

func writeRuns(ctx context.Context, w io.Writer, store *storage.Store) error {
	runs, err := store.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No saved runs")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tPHP\tSTUBS\tCHECKED\tPROBLEMS\tMUTED\tERRORS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.PHPVersion, shortRevision(r.StubRevision),
			r.Checked, r.Problems, r.Muted, r.Failures)
	}
	return tw.Flush()
}

func writeRunProblems(ctx context.Context, w io.Writer, store *storage.Store, runID string) error {
	problems, err := store.LoadProblems(ctx, runID)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		fmt.Fprintf(w, "No problems recorded for run %s\n", runID)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range problems {
		muted := ""
		if p.Muted {
			muted = "(muted)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Function, p.Code, p.Detail, muted)
	}
	return tw.Flush()
}

// shortRevision abbreviates a git hash, keeping a "-dirty" suffix.
func shortRevision(rev string) string {
	if rev == "" {
		return "-"
	}
	hash, suffix, _ := strings.Cut(rev, "-")
	if len(hash) > 10 {
		hash = hash[:10]
	}
	if suffix != "" {
		return hash + "-" + suffix
	}
	return hash
}
