// Package reconcile compares runtime functions with their stub declarations.
package reconcile

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mvp-joe/stubcheck/internal/model"
)

// Problem is one mismatch between the runtime and the stubs.
type Problem struct {
	Function string
	Code     model.ProblemCode
	Detail   string
}

func (p Problem) String() string {
	if p.Detail == "" {
		return fmt.Sprintf("%s: %s", p.Function, p.Code)
	}
	return fmt.Sprintf("%s: %s: %s", p.Function, p.Code, p.Detail)
}

// Source tells which pipeline failed to build a model.
type Source string

const (
	SourceReflection Source = "reflection"
	SourceStub       Source = "stub"
)

// Failure is a function whose model could not be built reliably.
// Such functions are reported here and never compared.
type Failure struct {
	Function string
	Source   Source
	Err      error
}

// Report is the outcome of one comparison.
type Report struct {
	Problems []Problem
	Muted    []Problem
	Failures []Failure
	// Duplicates lists stub names declared more than once; the first
	// declaration is the one compared.
	Duplicates []string
	Checked    int
}

// OK reports whether there is nothing left to fix.
func (r *Report) OK() bool {
	return len(r.Problems) == 0 && len(r.Failures) == 0
}

// Engine compares reflected models with stub models.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger discards output.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{logger: logger}
}

// Compare checks every reflected function against the stub of the same name.
// Muted problems are taken from the reflected model.
func (e *Engine) Compare(reflected, stubs []*model.Function) *Report {
	report := &Report{
		Problems: []Problem{},
		Muted:    []Problem{},
		Failures: []Failure{},
	}

	// PHP function names are case-insensitive.
	byName := make(map[string]*model.Function, len(stubs))
	for _, s := range stubs {
		key := strings.ToLower(s.Name)
		if _, ok := byName[key]; ok {
			report.Duplicates = append(report.Duplicates, s.Name)
			e.logger.Warn("duplicate stub declaration", "function", s.Name)
			continue
		}
		byName[key] = s
	}

	for _, r := range reflected {
		if r.Failed() {
			report.Failures = append(report.Failures, Failure{Function: r.Name, Source: SourceReflection, Err: r.Err()})
			continue
		}
		report.Checked++

		stub, ok := byName[strings.ToLower(r.Name)]
		if !ok {
			e.add(report, r, Problem{Function: r.Name, Code: model.ProblemStubMissing})
			continue
		}
		if stub.Failed() {
			e.logger.Debug("stub model unreliable", "function", stub.Name, "error", stub.Err())
			report.Failures = append(report.Failures, Failure{Function: stub.Name, Source: SourceStub, Err: stub.Err()})
			continue
		}

		for _, p := range compareFunction(r, stub) {
			e.add(report, r, p)
		}
	}

	e.logger.Info("comparison finished",
		"checked", report.Checked,
		"problems", len(report.Problems),
		"muted", len(report.Muted),
		"failures", len(report.Failures))
	return report
}

func (e *Engine) add(report *Report, reflected *model.Function, p Problem) {
	if reflected.IsMuted(p.Code) {
		report.Muted = append(report.Muted, p)
		return
	}
	report.Problems = append(report.Problems, p)
}

func compareFunction(reflected, stub *model.Function) []Problem {
	var problems []Problem

	if reflected.Deprecated == model.True && stub.Deprecated != model.True {
		problems = append(problems, Problem{
			Function: reflected.Name,
			Code:     model.ProblemDeprecatedFunction,
			Detail:   "deprecated at runtime but not in stub",
		})
	}

	return append(problems, compareParameters(reflected, stub)...)
}

// compareParameters matches parameters by position only.
func compareParameters(reflected, stub *model.Function) []Problem {
	mismatch := func(format string, args ...any) Problem {
		return Problem{
			Function: reflected.Name,
			Code:     model.ProblemParameterMismatch,
			Detail:   fmt.Sprintf(format, args...),
		}
	}

	if len(reflected.Parameters) != len(stub.Parameters) {
		return []Problem{mismatch("runtime has %d parameters, stub has %d",
			len(reflected.Parameters), len(stub.Parameters))}
	}

	var problems []Problem
	for i := range reflected.Parameters {
		rp, sp := reflected.Parameters[i], stub.Parameters[i]
		pos := i + 1
		if rp.Name != sp.Name {
			problems = append(problems, mismatch("parameter %d is $%s at runtime, $%s in stub", pos, rp.Name, sp.Name))
		}
		if rp.PassedByReference != sp.PassedByReference {
			problems = append(problems, mismatch("parameter %d ($%s) by-reference: runtime %t, stub %t", pos, rp.Name, rp.PassedByReference, sp.PassedByReference))
		}
		if rp.Variadic != sp.Variadic {
			problems = append(problems, mismatch("parameter %d ($%s) variadic: runtime %t, stub %t", pos, rp.Name, rp.Variadic, sp.Variadic))
		}
		if rp.Optional != sp.Optional {
			problems = append(problems, mismatch("parameter %d ($%s) optional: runtime %t, stub %t", pos, rp.Name, rp.Optional, sp.Optional))
		}
	}
	return problems
}
