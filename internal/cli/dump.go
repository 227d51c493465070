package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/stubcheck/internal/checker"
	"github.com/mvp-joe/stubcheck/internal/reflection"
)

var (
	dumpOutput string
	dumpPHP    string
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the runtime reflection data as JSON",
	Long: `Dump runs the PHP binary, collects every internal function through
reflection and writes the result. The file can be passed to
"stubcheck check --dump" on machines without that PHP build.

Output files ending in .gz or .zst are compressed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		binary := cfg.Reflection.PHPBinary
		if dumpPHP != "" {
			binary = dumpPHP
		}

		runner := reflection.NewRunner(binary)
		if dumpOutput == "" || dumpOutput == "-" {
			return writeRuntimeDump(cmd.Context(), cmd.OutOrStdout(), runner)
		}

		d, err := runner.Dump(cmd.Context())
		if err != nil {
			return err
		}
		if err := reflection.SaveDump(dumpOutput, d); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s functions to %s\n", formatNumber(len(d.Functions)), dumpOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "File to write, .gz and .zst are compressed (default is stdout)")
	dumpCmd.Flags().StringVar(&dumpPHP, "php", "", "PHP binary to run (overrides reflection.php_binary)")
}

func writeRuntimeDump(ctx context.Context, out io.Writer, source checker.DumpSource) error {
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := source.Dump(ctx)
	if err != nil {
		return err
	}
	if err := reflection.WriteDump(out, d); err != nil {
		return fmt.Errorf("failed to write reflection dump: %w", err)
	}
	return nil
}
