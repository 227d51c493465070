package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mvp-joe/stubcheck/internal/checker"
	"github.com/mvp-joe/stubcheck/internal/reconcile"
)

// jsonReport is the --json view of a check result.
type jsonReport struct {
	OK         bool            `json:"ok"`
	PHPVersion string          `json:"phpVersion,omitempty"`
	StubFiles  int             `json:"stubFiles"`
	Checked    int             `json:"checked"`
	Problems   []jsonProblem   `json:"problems"`
	Muted      []jsonProblem   `json:"muted"`
	Failures   []jsonFailure   `json:"failures"`
	FileErrors []jsonFileError `json:"fileErrors"`
	Duplicates []string        `json:"duplicates"`
	RunID      string          `json:"runId,omitempty"`
}

type jsonProblem struct {
	Function string `json:"function"`
	Problem  string `json:"problem"`
	Detail   string `json:"detail,omitempty"`
}

type jsonFailure struct {
	Function string `json:"function"`
	Source   string `json:"source"`
	Error    string `json:"error"`
}

type jsonFileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func toJSONProblems(problems []reconcile.Problem) []jsonProblem {
	out := make([]jsonProblem, 0, len(problems))
	for _, p := range problems {
		out = append(out, jsonProblem{Function: p.Function, Problem: p.Code.String(), Detail: p.Detail})
	}
	return out
}

func writeJSONReport(w io.Writer, result *checker.Result, runID string) error {
	r := result.Report
	view := jsonReport{
		OK:         result.OK(),
		PHPVersion: result.PHPVersion,
		StubFiles:  result.StubFiles,
		Checked:    r.Checked,
		Problems:   toJSONProblems(r.Problems),
		Muted:      toJSONProblems(r.Muted),
		Failures:   make([]jsonFailure, 0, len(r.Failures)),
		FileErrors: make([]jsonFileError, 0, len(result.FileErrors)),
		Duplicates: append([]string{}, r.Duplicates...),
		RunID:      runID,
	}
	for _, f := range r.Failures {
		view.Failures = append(view.Failures, jsonFailure{Function: f.Function, Source: string(f.Source), Error: f.Err.Error()})
	}
	for _, fe := range result.FileErrors {
		view.FileErrors = append(view.FileErrors, jsonFileError{Path: fe.Path, Error: fe.Err.Error()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func writeTextReport(w io.Writer, result *checker.Result, showMuted bool) {
	r := result.Report

	for _, fe := range result.FileErrors {
		fmt.Fprintf(w, "error: %v\n", fe.Err)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "error: %s (%s): %v\n", f.Function, f.Source, f.Err)
	}
	for _, name := range r.Duplicates {
		fmt.Fprintf(w, "warning: %s has more than one stub, the first is used\n", name)
	}

	if len(r.Problems) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, p := range r.Problems {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Function, p.Code, p.Detail)
		}
		tw.Flush()
	}

	if showMuted && len(r.Muted) > 0 {
		fmt.Fprintln(w, "\nMuted:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, p := range r.Muted {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Function, p.Code, p.Detail)
		}
		tw.Flush()
	}

	fmt.Fprintf(w, "\n%s checked, %s problems, %s muted, %s errors\n",
		formatNumber(r.Checked),
		formatNumber(len(r.Problems)),
		formatNumber(len(r.Muted)),
		formatNumber(len(r.Failures)+len(result.FileErrors)))
}
