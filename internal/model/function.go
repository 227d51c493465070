// Package model holds the normalized function description shared by the
// reflection and stub pipelines, and the builders that produce it.
package model

// Tristate is a boolean that may not have been determined yet.
type Tristate int8

const (
	Unset Tristate = iota
	False
	True
)

// TristateOf converts a determined boolean.
func TristateOf(b bool) Tristate {
	if b {
		return True
	}
	return False
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unset"
	}
}

// IsSet reports whether the value has been determined.
func (t Tristate) IsSet() bool { return t != Unset }

// Function is one function as seen by either the runtime or a stub.
//
// Builders populate every field once. The only later mutation is
// ApplyMutedProblems appending to MutedProblems.
type Function struct {
	// Name is the simple name from reflection or the fully-qualified
	// name from a stub.
	Name       string
	Deprecated Tristate
	Parameters []Parameter

	// ReturnTag is the documented return type, verbatim.
	ReturnTag    string
	HasReturnTag bool
	// ReturnTypeFromDoc is the resolved return type, alternatives joined by "|".
	ReturnTypeFromDoc string

	// Links are the @link and @see references of the doc comment.
	Links []string

	MutedProblems []ProblemCode

	Diagnostics
}

// IsMuted reports whether code has been suppressed for this function.
// ProblemUnknown never matches.
func (f *Function) IsMuted(code ProblemCode) bool {
	if code == ProblemUnknown {
		return false
	}
	for _, m := range f.MutedProblems {
		if m == code {
			return true
		}
	}
	return false
}

// Parameter is one positional parameter.
type Parameter struct {
	Name string
	// Type is the declared type; for stubs without a native type it falls
	// back to the @param type of the enclosing function's doc comment.
	Type              string
	Optional          bool
	Variadic          bool
	PassedByReference bool
	DefaultValue      string
}
