package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/stubcheck/internal/checker"
)

// CLIProgressReporter implements checker.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	out     io.Writer
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a reporter writing to out (normally stderr).
func NewCLIProgressReporter(out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{out: out}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(stubFiles int) {
	c.fileBar = progressbar.NewOptions(stubFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Parsing stubs"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileParsed(fileName string) {
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnReflectionLoaded(functions int) {
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	fmt.Fprintf(c.out, "✓ Loaded %s runtime functions\n", formatNumber(functions))
}

func (c *CLIProgressReporter) OnComplete(result *checker.Result) {
	fmt.Fprintf(c.out, "✓ Compared %s functions from %s stub files in %.1fs\n",
		formatNumber(result.Report.Checked), formatNumber(result.StubFiles), result.Duration.Seconds())
}

// formatNumber formats an integer with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
